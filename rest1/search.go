package rest1

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rt-tools/rt-go/errors"
	"github.com/rt-tools/rt-go/types"
)

// TicketSummary is one result of a subject-only search.
type TicketSummary struct {
	ID      int
	Subject string
}

// Search runs a ticket search in the long format and returns full
// ticket records.
func (c *Client) Search(ctx context.Context, opts types.SearchOptions) ([]*Ticket, error) {
	msg, empty, err := c.search(ctx, opts, "l")
	if err != nil || empty {
		return nil, err
	}
	var tickets []*Ticket
	for _, record := range splitRecords(msg) {
		ticket, err := parseTicket(record)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

// SearchIDs runs a ticket search that returns only ticket ids.
func (c *Client) SearchIDs(ctx context.Context, opts types.SearchOptions) ([]int, error) {
	msg, empty, err := c.search(ctx, opts, "i")
	if err != nil || empty {
		return nil, err
	}
	var ids []int
	lines := strings.Split(msg, "\n")
	if len(lines) <= 2 {
		return nil, nil
	}
	for _, line := range lines[2:] {
		if line == "" {
			continue
		}
		_, rawID, found := strings.Cut(line, "/")
		if !found {
			return nil, errors.NewMalformedResponse("id-format search entry without ticket/ prefix: " + line)
		}
		id, err := strconv.Atoi(rawID)
		if err != nil {
			return nil, errors.NewMalformedResponse("id-format search entry with non-numeric id: " + line)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SearchSummaries runs a ticket search that returns ids and subjects.
func (c *Client) SearchSummaries(ctx context.Context, opts types.SearchOptions) ([]TicketSummary, error) {
	msg, empty, err := c.search(ctx, opts, "s")
	if err != nil || empty {
		return nil, err
	}
	fields, err := parseFields(msg)
	if err != nil {
		return nil, err
	}
	summaries := make([]TicketSummary, 0, len(fields))
	for key, subject := range fields {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.NewMalformedResponse("subject-format search entry with non-numeric id: " + key)
		}
		summaries = append(summaries, TicketSummary{ID: id, Subject: subject})
	}
	return summaries, nil
}

// search runs the query and reports an empty result set via the second
// return value.
func (c *Client) search(ctx context.Context, opts types.SearchOptions, format string) (string, bool, error) {
	params := url.Values{}
	params.Set("query", c.buildQuery(opts))
	if opts.Order != "" {
		params.Set("orderby", opts.Order)
	}
	params.Set("format", format)
	if len(opts.Fields) > 0 {
		params.Set("fields", strings.Join(opts.Fields, ","))
	}

	msg, err := c.requestText(ctx, "search/ticket", params, nil, nil)
	if err != nil {
		return "", false, err
	}
	lines := strings.Split(msg, "\n")
	if len(lines) > 2 {
		if statusLineCode(msg) != http.StatusOK && strings.HasPrefix(lines[2], "Invalid query: ") {
			return "", false, errors.NewInvalidQuery(lines[2])
		}
		if strings.HasPrefix(lines[2], "No matching results.") {
			return "", true, nil
		}
	}
	return msg, false, nil
}

// buildQuery assembles the TicketSQL expression: each condition in
// parentheses, joined with AND. A raw query replaces the conditions
// but still combines with the queue restriction.
func (c *Client) buildQuery(opts types.SearchOptions) string {
	var parts []string
	if !opts.AllQueues {
		queue := opts.Queue
		if queue == "" {
			queue = c.defaultQueue
		}
		parts = append(parts, "Queue='"+queue+"'")
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

// NewCorrespondence returns the tickets last updated by someone other
// than the configured user, newest first.
func (c *Client) NewCorrespondence(ctx context.Context, queue string) ([]*Ticket, error) {
	return c.Search(ctx, types.SearchOptions{
		Queue: queue,
		Order: "-LastUpdated",
		Conditions: []types.Condition{
			{Field: "LastUpdatedBy", Op: types.OpNotEqual, Value: c.username},
		},
	})
}

// LastUpdated returns the tickets updated by someone other than the
// configured user since the given date (form 2006-01-02), newest
// first.
func (c *Client) LastUpdated(ctx context.Context, since string, queue string) ([]*Ticket, error) {
	return c.Search(ctx, types.SearchOptions{
		Queue: queue,
		Order: "-LastUpdated",
		Conditions: []types.Condition{
			{Field: "LastUpdatedBy", Op: types.OpNotEqual, Value: c.username},
			{Field: "LastUpdated", Op: types.OpGreaterThan, Value: since},
		},
	})
}
