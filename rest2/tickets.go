package rest2

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rt-tools/rt-go/errors"
	"github.com/rt-tools/rt-go/types"
)

// searchFields is the field list requested for full search results.
// REST 2.0 names the requestor field in the singular, unlike the
// legacy interface.
const searchFields = "Owner,Status,Created,Subject,Queue,CustomFields,Requestor,Cc,AdminCc,Started,Created,TimeEstimated,Due,Type,InitialPriority,Priority,TimeLeft,LastUpdated"

// SearchPager builds a pager over the tickets matching the search.
func (c *Client) SearchPager(opts types.SearchOptions) *Pager[types.Ticket] {
	params := url.Values{}
	params.Set("query", buildQuery(opts))
	if opts.Order != "" {
		params.Set("orderby", opts.Order)
	}
	if len(opts.Fields) > 0 {
		params.Set("fields", strings.Join(opts.Fields, ","))
	} else {
		params.Set("fields", searchFields)
		params.Set("fields[Queue]", "Name")
	}
	return newPager[types.Ticket](c, "tickets", params, nil)
}

// Search returns every ticket matching the search, walking all result
// pages.
func (c *Client) Search(ctx context.Context, opts types.SearchOptions) ([]types.Ticket, error) {
	return c.SearchPager(opts).Collect(ctx)
}

// buildQuery assembles the TicketSQL expression: each condition in
// parentheses, joined with AND. A raw query replaces the conditions
// but still combines with the queue restriction. Unlike the legacy
// interface there is no default queue; an empty Queue searches all of
// them.
func buildQuery(opts types.SearchOptions) string {
	var parts []string
	if opts.Queue != "" && !opts.AllQueues {
		parts = append(parts, "Queue='"+opts.Queue+"'")
	}
	if opts.RawQuery != "" {
		parts = append(parts, opts.RawQuery)
	} else {
		for _, cond := range opts.Conditions {
			field := cond.Field
			if cond.CustomField {
				field = "'CF.{" + field + "}'"
			}
			op := cond.Op
			if op == "" {
				op = types.OpEqual
			}
			parts = append(parts, field+string(op)+"'"+cond.Value+"'")
		}
	}
	for i, part := range parts {
		parts[i] = "(" + part + ")"
	}
	return strings.Join(parts, " AND ")
}

// GetTicket fetches one ticket with its queue name expanded. A missing
// ticket surfaces as a not-found error.
func (c *Client) GetTicket(ctx context.Context, ticketID int) (*types.Ticket, error) {
	var ticket types.Ticket
	params := url.Values{"fields[Queue]": {"Name"}}
	if err := c.get(ctx, fmt.Sprintf("ticket/%d", ticketID), params, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// CreateTicket creates a ticket and returns its id. Content holds the
// ticket fields (Subject, Requestor, Content, CF.{...} keys and so
// on); attachment content travels base64-encoded inside the JSON body.
func (c *Client) CreateTicket(ctx context.Context, queue string, content map[string]interface{}, attachments ...types.AttachmentUpload) (int, error) {
	body := map[string]interface{}{"Queue": queue}
	for key, value := range content {
		body[key] = value
	}
	if len(attachments) > 0 {
		body["Attachments"] = attachments
	}
	var result struct {
		ID types.ID `json:"id"`
	}
	if err := c.post(ctx, "ticket", body, &result); err != nil {
		return 0, err
	}
	id := result.ID.Int()
	if id == 0 {
		return 0, errors.NewMalformedResponse("create response without a ticket id")
	}
	return id, nil
}

// EditTicket updates ticket fields and returns the server's status
// messages, one per processed field.
func (c *Client) EditTicket(ctx context.Context, ticketID int, fields map[string]interface{}) ([]string, error) {
	var msgs []string
	if err := c.put(ctx, fmt.Sprintf("ticket/%d", ticketID), fields, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// HistoryPager builds a pager over a ticket's transactions, with the
// creator reference expanded.
func (c *Client) HistoryPager(ticketID int) *Pager[types.Transaction] {
	params := url.Values{
		"fields":          {"Type,Creator,Created,Description"},
		"fields[Creator]": {"id,Name,RealName,EmailAddress"},
	}
	return newPager[types.Transaction](c, fmt.Sprintf("ticket/%d/history", ticketID), params, nil)
}

// GetTicketHistory returns every transaction of a ticket in increasing
// time order, walking all result pages.
func (c *Client) GetTicketHistory(ctx context.Context, ticketID int) ([]types.Transaction, error) {
	return c.HistoryPager(ticketID).Collect(ctx)
}

// GetTransaction fetches one transaction.
func (c *Client) GetTransaction(ctx context.Context, transactionID int) (*types.Transaction, error) {
	var tx types.Transaction
	params := url.Values{"fields": {"Description"}}
	if err := c.get(ctx, fmt.Sprintf("transaction/%d", transactionID), params, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Reply sends correspondence to the ticket's requestors and returns
// the server's status messages.
func (c *Client) Reply(ctx context.Context, ticketID int, text, contentType string, attachments ...types.AttachmentUpload) ([]string, error) {
	return c.correspond(ctx, ticketID, "correspond", text, contentType, attachments)
}

// Comment adds an internal comment to the ticket and returns the
// server's status messages.
func (c *Client) Comment(ctx context.Context, ticketID int, text, contentType string, attachments ...types.AttachmentUpload) ([]string, error) {
	return c.correspond(ctx, ticketID, "comment", text, contentType, attachments)
}

func (c *Client) correspond(ctx context.Context, ticketID int, action, text, contentType string, attachments []types.AttachmentUpload) ([]string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	body := map[string]interface{}{
		"Content":     text,
		"ContentType": contentType,
	}
	if len(attachments) > 0 {
		body["Attachments"] = attachments
	}
	var msgs []string
	if err := c.post(ctx, fmt.Sprintf("ticket/%d/%s", ticketID, action), body, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Take makes the calling user the owner of the ticket.
func (c *Client) Take(ctx context.Context, ticketID int) error {
	return c.ownership(ctx, ticketID, "take")
}

// Untake gives up ownership of the ticket.
func (c *Client) Untake(ctx context.Context, ticketID int) error {
	return c.ownership(ctx, ticketID, "untake")
}

// Steal takes ownership of a ticket owned by someone else.
func (c *Client) Steal(ctx context.Context, ticketID int) error {
	return c.ownership(ctx, ticketID, "steal")
}

func (c *Client) ownership(ctx context.Context, ticketID int, action string) error {
	var msgs []string
	if err := c.put(ctx, fmt.Sprintf("ticket/%d/%s", ticketID, action), nil, &msgs); err != nil {
		return err
	}
	if len(msgs) != 1 {
		return errors.NewUnexpectedResponse(0, strings.Join(msgs, "; "))
	}
	if !strings.HasPrefix(strings.ToLower(msgs[0]), "owner changed") {
		return errors.NewUnexpectedResponse(0, msgs[0])
	}
	return nil
}

// MergeTicket merges a ticket into another.
func (c *Client) MergeTicket(ctx context.Context, ticketID, intoID int) error {
	var msgs []string
	body := map[string]interface{}{"MergeInto": intoID}
	if err := c.put(ctx, fmt.Sprintf("ticket/%d", ticketID), body, &msgs); err != nil {
		return err
	}
	if len(msgs) != 1 {
		return errors.NewUnexpectedResponse(0, strings.Join(msgs, "; "))
	}
	if strings.ToLower(msgs[0]) != "merge successful" {
		return errors.NewUnexpectedResponse(0, msgs[0])
	}
	return nil
}

// NewCorrespondence returns the tickets in the queue ordered by last
// update, newest first.
func (c *Client) NewCorrespondence(ctx context.Context, queue string) ([]types.Ticket, error) {
	return c.Search(ctx, types.SearchOptions{Queue: queue, Order: "-LastUpdated"})
}

// LastUpdated returns the tickets updated since the given date (form
// 2006-01-02), newest first.
func (c *Client) LastUpdated(ctx context.Context, since, queue string) ([]types.Ticket, error) {
	if _, err := time.Parse("2006-01-02", since); err != nil {
		return nil, errors.NewInvalidUse("invalid date specified: " + since)
	}
	return c.Search(ctx, types.SearchOptions{
		Queue: queue,
		Order: "-LastUpdated",
		Conditions: []types.Condition{
			{Field: "LastUpdated", Op: types.OpGreaterThan, Value: since},
		},
	})
}
