package rest1

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rt-tools/rt-go/errors"
)

// GetTicket fetches one ticket. It returns (nil, nil) when the ticket
// does not exist.
func (c *Client) GetTicket(ctx context.Context, ticketID int) (*Ticket, error) {
	msg, err := c.requestText(ctx, fmt.Sprintf("ticket/%d/show", ticketID), nil, nil, nil)
	if err != nil {
		return nil, err
	}
	if code := statusLineCode(msg); code != http.StatusOK {
		return nil, errors.NewUnexpectedResponse(code, firstLine(msg))
	}
	if matchesLine(msg, 2, reDoesNotExist) {
		return nil, nil
	}
	return parseTicket(msg)
}

// CreateTicket creates a ticket in the given queue (the client default
// when empty) and returns its id. Files are attached as
// multipart/form-data alongside Attachment lines in the content.
func (c *Client) CreateTicket(ctx context.Context, queue string, fields []Field, files ...File) (int, error) {
	if queue == "" {
		queue = c.defaultQueue
	}
	all := append([]Field{F("id", "ticket/new"), F("Queue", queue)}, fields...)
	content := encodeTicketFields(all)
	for _, file := range files {
		content += "\nAttachment: " + file.Name
	}
	msg, err := c.requestText(ctx, "ticket/new", nil, url.Values{"content": {content}}, files)
	if err != nil {
		return 0, err
	}
	lines := strings.Split(msg, "\n")
	if len(lines) > 2 {
		for _, line := range lines[2:] {
			if m := reTicketCreated.FindStringSubmatch(line); m != nil {
				id, _ := strconv.Atoi(m[1])
				return id, nil
			}
		}
	}
	return 0, errors.NewBadRequest("ticket not created: " + firstComment(msg))
}

// EditTicket updates ticket fields. An empty response means the ticket
// was already in the requested state.
func (c *Client) EditTicket(ctx context.Context, ticketID int, fields ...Field) error {
	content := encodeTicketFields(fields)
	msg, err := c.requestText(ctx, fmt.Sprintf("ticket/%d/edit", ticketID), nil, url.Values{"content": {content}}, nil)
	if err != nil {
		return err
	}
	if msg == "" {
		return nil
	}
	lines := strings.Split(msg, "\n")
	if len(lines) > 2 {
		state := lines[2]
		if reTicketUpdated.MatchString(state) {
			return nil
		}
		if reDoesNotExist.MatchString(state) {
			return errors.NewNotFound(strings.TrimPrefix(state, "# "))
		}
		return errors.NewUnexpectedResponse(statusLineCode(msg), strings.TrimPrefix(state, "# "))
	}
	return errors.NewMalformedResponse("edit response too short")
}

// Message is the payload of a Reply or Comment.
type Message struct {
	Text        string
	Cc          string
	Bcc         string
	ContentType string // defaults to text/plain
	Files       []File
}

// Reply sends correspondence to the ticket's requestors.
func (c *Client) Reply(ctx context.Context, ticketID int, msg Message) error {
	return c.correspond(ctx, ticketID, "correspond", msg)
}

// Comment adds an internal comment to the ticket.
func (c *Client) Comment(ctx context.Context, ticketID int, msg Message) error {
	return c.correspond(ctx, ticketID, "comment", msg)
}

func (c *Client) correspond(ctx context.Context, ticketID int, action string, msg Message) error {
	contentType := msg.ContentType
	if contentType == "" {
		contentType = "text/plain"
	}
	// Multiline text continues with six spaces, matching the column of
	// the value after "Text: ".
	text := strings.ReplaceAll(msg.Text, "\n", "\n      ")
	content := fmt.Sprintf("id: %d\nAction: %s\nText: %s\nCc: %s\nBcc: %s\nContent-Type: %s",
		ticketID, action, text, msg.Cc, msg.Bcc, contentType)
	for _, file := range msg.Files {
		content += "\nAttachment: " + file.Name
	}
	body, err := c.requestText(ctx, fmt.Sprintf("ticket/%d/comment", ticketID), nil, url.Values{"content": {content}}, msg.Files)
	if err != nil {
		return err
	}
	if code := statusLineCode(body); code != http.StatusOK {
		return errors.NewUnexpectedResponse(code, firstLine(body))
	}
	return nil
}

// MergeTicket merges a ticket into another.
func (c *Client) MergeTicket(ctx context.Context, ticketID, intoID int) error {
	msg, err := c.requestText(ctx, fmt.Sprintf("ticket/%d/merge/%d", ticketID, intoID), nil, nil, nil)
	if err != nil {
		return err
	}
	lines := strings.Split(msg, "\n")
	if len(lines) > 2 && reMergeSuccessful.MatchString(lines[2]) {
		return nil
	}
	return mergeOutcomeError(msg)
}

func mergeOutcomeError(msg string) error {
	lines := strings.Split(msg, "\n")
	if len(lines) > 2 {
		state := lines[2]
		if reDoesNotExist.MatchString(state) {
			return errors.NewNotFound(strings.TrimPrefix(state, "# "))
		}
		return errors.NewUnexpectedResponse(statusLineCode(msg), strings.TrimPrefix(state, "# "))
	}
	return errors.NewMalformedResponse("merge response too short")
}

// Take makes the calling user the owner of the ticket.
func (c *Client) Take(ctx context.Context, ticketID int) error {
	return c.ownership(ctx, ticketID, "take")
}

// Steal takes ownership of a ticket owned by someone else.
func (c *Client) Steal(ctx context.Context, ticketID int) error {
	return c.ownership(ctx, ticketID, "steal")
}

// Untake gives up ownership of the ticket.
func (c *Client) Untake(ctx context.Context, ticketID int) error {
	return c.ownership(ctx, ticketID, "untake")
}

// All three ownership actions post to the take selector; the action
// line in the content decides what happens.
func (c *Client) ownership(ctx context.Context, ticketID int, action string) error {
	content := fmt.Sprintf("Ticket: %d\nAction: %s", ticketID, action)
	msg, err := c.requestText(ctx, fmt.Sprintf("ticket/%d/take", ticketID), nil, url.Values{"content": {content}}, nil)
	if err != nil {
		return err
	}
	if code := statusLineCode(msg); code != http.StatusOK {
		return errors.NewUnexpectedResponse(code, firstLine(msg))
	}
	return nil
}

// matchesLine reports whether line n of the message exists and matches
// the pattern.
func matchesLine(msg string, n int, re *regexp.Regexp) bool {
	lines := strings.Split(msg, "\n")
	return len(lines) > n && re.MatchString(lines[n])
}
