package rest1

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rt-tools/rt-go/errors"
)

// GetHistory fetches every history item of a ticket in increasing time
// order. It returns (nil, nil) when the ticket does not exist.
func (c *Client) GetHistory(ctx context.Context, ticketID int) ([]*HistoryItem, error) {
	msg, err := c.requestText(ctx, fmt.Sprintf("ticket/%d/history?format=l", ticketID), nil, nil, nil)
	if err != nil {
		return nil, err
	}
	return c.parseHistory(msg)
}

// GetHistoryItem fetches one history item by transaction id. It
// returns (nil, nil) when the ticket or the transaction does not exist
// or the transaction does not belong to this ticket.
func (c *Client) GetHistoryItem(ctx context.Context, ticketID, transactionID int) (*HistoryItem, error) {
	msg, err := c.requestText(ctx, fmt.Sprintf("ticket/%d/history/id/%d", ticketID, transactionID), nil, nil, nil)
	if err != nil {
		return nil, err
	}
	items, err := c.parseHistory(msg)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

func (c *Client) parseHistory(msg string) ([]*HistoryItem, error) {
	if matchesLine(msg, 2, reDoesNotExist) || matchesLine(msg, 2, reNotRelated) {
		return nil, nil
	}
	var items []*HistoryItem
	for _, record := range splitRecords(msg) {
		fields, err := parseFields(record, "Content", "Attachments")
		if err != nil {
			return nil, err
		}
		// RT lists a single attachment inline on the Attachments line
		// but several on continuation lines; parseFields already joins
		// both shapes into one value, so the entries come out the same.
		attachments, err := parseNumberedList(fields["Attachments"])
		if err != nil {
			return nil, err
		}
		delete(fields, "Attachments")
		id, _ := strconv.Atoi(fields["id"])
		items = append(items, &HistoryItem{ID: id, Attachments: attachments, Fields: fields})
	}
	return items, nil
}

// GetShortHistory fetches the ticket's history as id/description
// pairs. It returns (nil, nil) when the ticket does not exist.
func (c *Client) GetShortHistory(ctx context.Context, ticketID int) ([]ListEntry, error) {
	msg, err := c.requestText(ctx, fmt.Sprintf("ticket/%d/history", ticketID), nil, nil, nil)
	if err != nil {
		return nil, err
	}
	if code := statusLineCode(msg); code != http.StatusOK {
		return nil, errors.NewUnexpectedResponse(code, firstLine(msg))
	}
	if matchesLine(msg, 2, reDoesNotExist) {
		return nil, nil
	}
	return parseNumberedList(msg)
}
