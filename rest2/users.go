package rest2

import (
	"context"
	"net/url"
	"strings"

	"github.com/rt-tools/rt-go/errors"
	"github.com/rt-tools/rt-go/types"
)

// Field names accepted by the user endpoints; the server silently
// drops anything else, so they are rejected client-side. Names are
// case-sensitive here, unlike in the legacy interface.
var validUserFields = map[string]bool{
	"Name": true, "Password": true, "EmailAddress": true, "RealName": true,
	"Nickname": true, "Gecos": true, "Organization": true, "Address1": true,
	"Address2": true, "City": true, "State": true, "Zip": true,
	"Country": true, "HomePhone": true, "WorkPhone": true,
	"MobilePhone": true, "PagerPhone": true, "ContactInfo": true,
	"Comments": true, "Signature": true, "Lang": true,
	"EmailEncoding": true, "WebEncoding": true,
	"ExternalContactInfoId": true, "ContactInfoSystem": true,
	"ExternalAuthId": true, "AuthSystem": true, "Privileged": true,
	"Disabled": true,
}

// GetUser fetches user details by username or numeric id. A missing
// user surfaces as a not-found error.
func (c *Client) GetUser(ctx context.Context, userID string) (*types.User, error) {
	var user types.User
	if err := c.get(ctx, "user/"+escapePath(userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a user and returns its id. Unknown field names
// are rejected with an invalid-use error before any request is sent.
func (c *Client) CreateUser(ctx context.Context, name, emailAddress string, extra map[string]interface{}) (string, error) {
	if err := checkFieldNames(extra, validUserFields); err != nil {
		return "", err
	}
	body := map[string]interface{}{"Name": name, "EmailAddress": emailAddress}
	for key, value := range extra {
		body[key] = value
	}
	var result struct {
		ID types.ID `json:"id"`
	}
	if err := c.post(ctx, "user", body, &result); err != nil {
		return "", err
	}
	return result.ID.String(), nil
}

// EditUser updates a user and returns the server's status messages.
// Unknown field names are rejected with an invalid-use error before
// any request is sent.
func (c *Client) EditUser(ctx context.Context, userID string, fields map[string]interface{}) ([]string, error) {
	if err := checkFieldNames(fields, validUserFields); err != nil {
		return nil, err
	}
	var msgs []string
	if err := c.put(ctx, "user/"+escapePath(userID), fields, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func checkFieldNames(fields map[string]interface{}, valid map[string]bool) error {
	var invalid []string
	for key := range fields {
		if !valid[key] {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		return errors.NewInvalidUse("unsupported names of fields: " + strings.Join(invalid, ", "))
	}
	return nil
}

// escapePath escapes a user- or queue-supplied path segment; usernames
// may be email addresses.
func escapePath(segment string) string {
	return url.PathEscape(segment)
}
