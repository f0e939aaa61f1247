package rest2

import (
	"context"
	"fmt"
	"strings"

	"github.com/rt-tools/rt-go/errors"
	"github.com/rt-tools/rt-go/types"
)

// ValidTicketLinkNames are the link kinds EditLink accepts.
var ValidTicketLinkNames = []string{
	"Parent", "Child", "RefersTo", "ReferredToBy", "DependsOn", "DependedOnBy",
}

// GetLinks returns the ticket's links to other tickets, taken from its
// hyperlink table.
func (c *Client) GetLinks(ctx context.Context, ticketID int) ([]types.Hyperlink, error) {
	ticket, err := c.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	var links []types.Hyperlink
	for _, link := range ticket.Hyperlinks {
		if link.Type == "ticket" && link.Ref != "self" {
			links = append(links, link)
		}
	}
	return links, nil
}

// EditLink creates or deletes one link between a ticket and a target
// (a ticket id or an external URL). Valid link names are listed in
// ValidTicketLinkNames; an unresolvable target surfaces as a not-found
// error.
func (c *Client) EditLink(ctx context.Context, ticketID int, linkName, linkValue string, remove bool) error {
	valid := false
	for _, name := range ValidTicketLinkNames {
		if linkName == name {
			valid = true
			break
		}
	}
	if !valid {
		return errors.NewInvalidUse("unsupported link name, use one of " + strings.Join(ValidTicketLinkNames, ", "))
	}

	key := "Add" + linkName
	if remove {
		key = "Delete" + linkName
	}
	var msgs []string
	if err := c.put(ctx, fmt.Sprintf("ticket/%d", ticketID), map[string]interface{}{key: linkValue}, &msgs); err != nil {
		return err
	}
	if len(msgs) > 0 && strings.HasPrefix(msgs[0], "Couldn't resolve") {
		return errors.NewNotFound(msgs[0])
	}
	return nil
}
