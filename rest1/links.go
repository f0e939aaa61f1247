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

var validLinkNames = map[string]bool{
	"dependson": true, "dependedonby": true, "refersto": true,
	"referredtoby": true, "hasmember": true, "memberof": true,
}

// GetLinks fetches the link table of a ticket, keyed by link name
// (Members, MemberOf, RefersTo, ...). It returns (nil, nil) when the
// ticket does not exist.
func (c *Client) GetLinks(ctx context.Context, ticketID int) (map[string][]string, error) {
	msg, err := c.requestText(ctx, fmt.Sprintf("ticket/%d/links/show", ticketID), nil, nil, nil)
	if err != nil {
		return nil, err
	}
	if code := statusLineCode(msg); code != http.StatusOK {
		return nil, errors.NewUnexpectedResponse(code, firstLine(msg))
	}
	if matchesLine(msg, 2, reDoesNotExist) {
		return nil, nil
	}
	fields, err := parseFields(msg)
	if err != nil {
		return nil, err
	}
	links := make(map[string][]string, len(fields))
	for key, value := range fields {
		var targets []string
		for _, link := range strings.Fields(value) {
			targets = append(targets, strings.TrimRight(link, ","))
		}
		links[key] = targets
	}
	return links, nil
}

// EditTicketLinks updates several links at once. Use an empty value to
// delete a link.
//
// Deprecated: RT 3.8 misattributes links created through this endpoint
// to ticket 1. Use EditLink, which processes one link per call but is
// not affected.
func (c *Client) EditTicketLinks(ctx context.Context, ticketID int, links map[string]string) error {
	var content strings.Builder
	for key, value := range links {
		fmt.Fprintf(&content, "%s: %s\n", key, value)
	}
	msg, err := c.requestText(ctx, fmt.Sprintf("ticket/%d/links", ticketID), nil, url.Values{"content": {content.String()}}, nil)
	if err != nil {
		return err
	}
	lines := strings.Split(msg, "\n")
	if len(lines) > 2 && reLinksUpdated.MatchString(lines[2]) {
		return nil
	}
	return linkOutcomeError(msg)
}

// EditLink creates or deletes one link between a ticket and a target
// (a ticket id or an external URL). Valid link names are DependsOn,
// DependedOnBy, RefersTo, ReferredToBy, HasMember and MemberOf.
func (c *Client) EditLink(ctx context.Context, ticketID int, linkName, linkValue string, remove bool) error {
	name := strings.ToLower(linkName)
	if !validLinkNames[name] {
		return errors.NewInvalidUse("unsupported name of link: " + linkName)
	}
	del := "0"
	if remove {
		del = "1"
	}
	form := url.Values{
		"rel": {name},
		"to":  {linkValue},
		"id":  {strconv.Itoa(ticketID)},
		"del": {del},
	}
	msg, err := c.requestText(ctx, "ticket/link", nil, form, nil)
	if err != nil {
		return err
	}
	lines := strings.Split(msg, "\n")
	if len(lines) > 2 {
		state := lines[2]
		if remove && reDeletedLink.MatchString(state) {
			return nil
		}
		if !remove && reCreatedLink.MatchString(state) {
			return nil
		}
	}
	return linkOutcomeError(msg)
}

func linkOutcomeError(msg string) error {
	lines := strings.Split(msg, "\n")
	if len(lines) > 2 {
		state := lines[2]
		if reDoesNotExist.MatchString(state) {
			return errors.NewNotFound(strings.TrimPrefix(state, "# "))
		}
		return errors.NewUnexpectedResponse(statusLineCode(msg), strings.TrimPrefix(state, "# "))
	}
	return errors.NewMalformedResponse("link response too short")
}
