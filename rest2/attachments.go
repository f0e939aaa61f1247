package rest2

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rt-tools/rt-go/types"
)

// attachmentFilter keeps only real file attachments; every transaction
// carries a nameless attachment for its message body.
var attachmentFilter = []map[string]string{
	{"field": "Filename", "operator": "IS NOT", "value": ""},
}

// AttachmentsPager builds a pager over a ticket's file attachments.
func (c *Client) AttachmentsPager(ticketID int) *Pager[types.Attachment] {
	params := url.Values{"fields": {"Filename,ContentType,ContentLength"}}
	return newPager[types.Attachment](c, fmt.Sprintf("ticket/%d/attachments", ticketID), params, attachmentFilter)
}

// GetAttachments lists the file attachments of a ticket, walking all
// result pages.
func (c *Client) GetAttachments(ctx context.Context, ticketID int) ([]types.Attachment, error) {
	return c.AttachmentsPager(ticketID).Collect(ctx)
}

// GetAttachmentIDs lists the ids of a ticket's file attachments.
func (c *Client) GetAttachmentIDs(ctx context.Context, ticketID int) ([]int, error) {
	pager := newPager[types.Attachment](c, fmt.Sprintf("ticket/%d/attachments", ticketID), nil, attachmentFilter)
	attachments, err := pager.Collect(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(attachments))
	for i, att := range attachments {
		ids[i] = att.ID.Int()
	}
	return ids, nil
}

// GetAttachment fetches one attachment with metadata, headers and
// base64-encoded content. Attachment ids are global, not scoped to a
// ticket.
func (c *Client) GetAttachment(ctx context.Context, attachmentID int) (*types.Attachment, error) {
	var att types.Attachment
	if err := c.get(ctx, fmt.Sprintf("attachment/%d", attachmentID), nil, &att); err != nil {
		return nil, err
	}
	return &att, nil
}
