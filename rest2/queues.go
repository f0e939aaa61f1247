package rest2

import (
	"context"
	"net/url"

	"github.com/rt-tools/rt-go/errors"
	"github.com/rt-tools/rt-go/types"
)

var validQueueFields = map[string]bool{
	"Name": true, "Description": true, "CorrespondAddress": true,
	"CommentAddress": true, "Disabled": true, "SLADisabled": true,
	"Lifecycle": true, "SortOrder": true,
}

// GetQueue fetches queue details by name or numeric id. A missing
// queue surfaces as a not-found error.
func (c *Client) GetQueue(ctx context.Context, queueID string) (*types.Queue, error) {
	var queue types.Queue
	if err := c.get(ctx, "queue/"+escapePath(queueID), nil, &queue); err != nil {
		return nil, err
	}
	return &queue, nil
}

// QueuesPager builds a pager over all queues. Disabled queues are
// included when requested.
func (c *Client) QueuesPager(includeDisabled bool) *Pager[types.Queue] {
	params := url.Values{"fields": {"Name,Description"}}
	if includeDisabled {
		params.Set("find_disabled_rows", "1")
	} else {
		params.Set("find_disabled_rows", "0")
	}
	return newPager[types.Queue](c, "queues/all", params, nil)
}

// GetAllQueues lists every queue, walking all result pages.
func (c *Client) GetAllQueues(ctx context.Context, includeDisabled bool) ([]types.Queue, error) {
	return c.QueuesPager(includeDisabled).Collect(ctx)
}

// CreateQueue creates a queue and returns its id. Unknown field names
// are rejected with an invalid-use error before any request is sent.
func (c *Client) CreateQueue(ctx context.Context, name string, extra map[string]interface{}) (int, error) {
	if err := checkFieldNames(extra, validQueueFields); err != nil {
		return 0, err
	}
	body := map[string]interface{}{"Name": name}
	for key, value := range extra {
		body[key] = value
	}
	var result struct {
		ID types.ID `json:"id"`
	}
	if err := c.post(ctx, "queue", body, &result); err != nil {
		return 0, err
	}
	id := result.ID.Int()
	if id == 0 {
		return 0, errors.NewMalformedResponse("create response without a queue id")
	}
	return id, nil
}

// EditQueue updates a queue and returns the server's status messages.
// Unknown field names are rejected with an invalid-use error before
// any request is sent.
func (c *Client) EditQueue(ctx context.Context, queueID string, fields map[string]interface{}) ([]string, error) {
	if err := checkFieldNames(fields, validQueueFields); err != nil {
		return nil, err
	}
	var msgs []string
	if err := c.put(ctx, "queue/"+escapePath(queueID), fields, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// DeleteQueue disables a queue. The server answers 204 on success.
func (c *Client) DeleteQueue(ctx context.Context, queueID string) error {
	return c.delete(ctx, "queue/"+escapePath(queueID))
}
