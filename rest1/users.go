package rest1

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rt-tools/rt-go/errors"
)

// The edit endpoint accepts only these user fields; anything else is
// silently dropped by the server, so it is rejected client-side.
var validUserFields = map[string]bool{
	"name": true, "password": true, "emailaddress": true, "realname": true,
	"nickname": true, "gecos": true, "organization": true, "address1": true,
	"address2": true, "city": true, "state": true, "zip": true,
	"country": true, "homephone": true, "workphone": true,
	"mobilephone": true, "pagerphone": true, "contactinfo": true,
	"comments": true, "signature": true, "lang": true,
	"emailencoding": true, "webencoding": true,
	"externalcontactinfoid": true, "contactinfosystem": true,
	"externalauthid": true, "authsystem": true, "privileged": true,
	"disabled": true,
}

var validQueueFields = map[string]bool{
	"name": true, "description": true, "correspondaddress": true,
	"commentaddress": true, "initialpriority": true, "finalpriority": true,
	"defaultduein": true,
}

// GetUser fetches user details by username or numeric id. It returns
// (nil, nil) when the user does not exist.
func (c *Client) GetUser(ctx context.Context, userID string) (map[string]string, error) {
	return c.getRecord(ctx, "user/"+url.PathEscape(userID))
}

// CreateUser creates a user and returns its id.
func (c *Client) CreateUser(ctx context.Context, name, emailAddress string, extra map[string]string) (int, error) {
	fields := map[string]string{"Name": name, "EmailAddress": emailAddress}
	for key, value := range extra {
		fields[key] = value
	}
	return c.EditUser(ctx, "new", fields)
}

// EditUser updates a user and returns its id. Unknown field names are
// rejected with an invalid-use error before any request is sent.
func (c *Client) EditUser(ctx context.Context, userID string, fields map[string]string) (int, error) {
	if err := checkFieldNames(fields, validUserFields); err != nil {
		return 0, err
	}
	msg, err := c.editRecord(ctx, "user/"+userID, fields)
	if err != nil {
		return 0, err
	}
	lines := strings.Split(msg, "\n")
	if statusLineCode(msg) == http.StatusOK && len(lines) > 2 {
		if m := reUserChanged.FindStringSubmatch(lines[2]); m != nil {
			id, _ := strconv.Atoi(m[1])
			return id, nil
		}
	}
	return 0, errors.NewUnexpectedResponse(statusLineCode(msg), firstComment(msg))
}

// GetQueue fetches queue details by name or numeric id. It returns
// (nil, nil) when the queue does not exist.
func (c *Client) GetQueue(ctx context.Context, queueID string) (map[string]string, error) {
	return c.getRecord(ctx, "queue/"+url.PathEscape(queueID))
}

// CreateQueue creates a queue and returns its id.
func (c *Client) CreateQueue(ctx context.Context, name string, extra map[string]string) (int, error) {
	fields := map[string]string{"Name": name}
	for key, value := range extra {
		fields[key] = value
	}
	result, err := c.EditQueue(ctx, "new", fields)
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(result)
	if err != nil {
		return 0, errors.NewMalformedResponse("queue created with non-numeric id: " + result)
	}
	return id, nil
}

// EditQueue updates a queue and returns its id or name as reported by
// the server. Unknown field names are rejected with an invalid-use
// error before any request is sent.
func (c *Client) EditQueue(ctx context.Context, queueID string, fields map[string]string) (string, error) {
	if err := checkFieldNames(fields, validQueueFields); err != nil {
		return "", err
	}
	msg, err := c.editRecord(ctx, "queue/"+queueID, fields)
	if err != nil {
		return "", err
	}
	lines := strings.Split(msg, "\n")
	if statusLineCode(msg) == http.StatusOK && len(lines) > 2 {
		if m := reQueueChanged.FindStringSubmatch(lines[2]); m != nil {
			return m[1], nil
		}
	}
	return "", errors.NewUnexpectedResponse(statusLineCode(msg), firstComment(msg))
}

// getRecord fetches a user or queue record as a plain field map,
// returning (nil, nil) for does-not-exist responses.
func (c *Client) getRecord(ctx context.Context, selector string) (map[string]string, error) {
	msg, err := c.requestText(ctx, selector, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	if code := statusLineCode(msg); code != http.StatusOK {
		return nil, errors.NewUnexpectedResponse(code, firstLine(msg))
	}
	if matchesLine(msg, 2, reDoesNotExist) {
		return nil, nil
	}
	return parseFields(msg)
}

// editRecord posts `id: <record>` plus field lines to the shared edit
// endpoint used by user and queue changes.
func (c *Client) editRecord(ctx context.Context, recordID string, fields map[string]string) (string, error) {
	content := "id: " + recordID + "\n"
	for key, value := range fields {
		content += fmt.Sprintf("%s: %s\n", key, value)
	}
	return c.requestText(ctx, "edit", nil, url.Values{"content": {content}}, nil)
}

func checkFieldNames(fields map[string]string, valid map[string]bool) error {
	var invalid []string
	for key := range fields {
		if !valid[strings.ToLower(key)] {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		return errors.NewInvalidUse("unsupported names of fields: " + strings.Join(invalid, ", "))
	}
	return nil
}
