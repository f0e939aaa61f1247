package rest2

import "context"

// RTInfo reports the server's version and high-level configuration
// from the rt endpoint. The shape varies across RT releases, so the
// result stays a generic map.
func (c *Client) RTInfo(ctx context.Context) (map[string]interface{}, error) {
	var info map[string]interface{}
	if err := c.get(ctx, "rt", nil, &info); err != nil {
		return nil, err
	}
	return info, nil
}
