package rest1

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/rt-tools/rt-go/errors"
)

// Byte-level patterns for attachment bodies, which may not be valid
// text in any declared charset.
var (
	reHeadersBytes           = regexp.MustCompile(`^Headers:`)
	reContentBytes           = regexp.MustCompile(`^Content:`)
	reDoesNotExistBytes      = regexp.MustCompile(`^# (?:Queue|User|Ticket) \w* does not exist\.$`)
	reInvalidAttachmentBytes = regexp.MustCompile(`^# Invalid attachment id: \d+$`)
)

// Attachment is one fetched attachment: the metadata fields before the
// Headers section, the original mail headers, and the raw content
// bytes.
type Attachment struct {
	Fields  map[string]string
	Headers map[string]string
	Content []byte
}

// GetAttachments lists the attachments of a ticket. It returns
// (nil, nil) when the ticket does not exist.
func (c *Client) GetAttachments(ctx context.Context, ticketID int) ([]AttachmentInfo, error) {
	msg, err := c.requestText(ctx, fmt.Sprintf("ticket/%d/attachments", ticketID), nil, nil, nil)
	if err != nil {
		return nil, err
	}
	if matchesLine(msg, 2, reDoesNotExist) {
		return nil, nil
	}
	infos := []AttachmentInfo{}
	lines := strings.Split(msg, "\n")
	if statusLineCode(msg) == http.StatusOK && len(lines) >= 4 {
		for _, line := range lines[4:] {
			m := reAttachmentsEntry.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			id, _ := strconv.Atoi(m[1])
			infos = append(infos, AttachmentInfo{ID: id, Name: m[2], ContentType: m[3], Size: m[4]})
		}
	}
	return infos, nil
}

// GetAttachmentIDs lists the attachment ids of a ticket. It returns
// (nil, nil) when the ticket does not exist.
func (c *Client) GetAttachmentIDs(ctx context.Context, ticketID int) ([]int, error) {
	infos, err := c.GetAttachments(ctx, ticketID)
	if err != nil || infos == nil {
		return nil, err
	}
	ids := make([]int, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	return ids, nil
}

// GetAttachment fetches one attachment with metadata, headers and
// content. The body is parsed at the byte level because the content
// may be binary. It returns (nil, nil) when the ticket or attachment
// does not exist.
func (c *Client) GetAttachment(ctx context.Context, ticketID, attachmentID int) (*Attachment, error) {
	body, _, err := c.request(ctx, fmt.Sprintf("ticket/%d/attachments/%d", ticketID, attachmentID), nil, nil, nil, false)
	if err != nil {
		return nil, err
	}
	lines := bytes.Split(body, []byte("\n"))
	if len(lines) > 2 && (reInvalidAttachmentBytes.Match(lines[2]) || reDoesNotExistBytes.Match(lines[2])) {
		return nil, nil
	}
	// Skip the status line and the blank line after it.
	if len(lines) > 2 {
		lines = lines[2:]
	}

	headersIdx := -1
	for i, line := range lines {
		if reHeadersBytes.Match(line) {
			headersIdx = i
			break
		}
	}
	if headersIdx <= 0 {
		return nil, errors.NewMalformedResponse("attachment entry is missing a line starting with `Headers:`")
	}
	// The first header shares its line with the section marker.
	lines[headersIdx] = bytes.TrimPrefix(lines[headersIdx], []byte("Headers: "))

	contentIdx := -1
	for i, line := range lines {
		if reContentBytes.Match(line) {
			contentIdx = i
			break
		}
	}
	if contentIdx < 0 {
		return nil, errors.NewMalformedResponse("attachment entry is missing a line starting with `Content:`")
	}

	att := &Attachment{
		Fields:  splitHeaderLines(lines[:headersIdx]),
		Headers: splitHeaderLines(lines[headersIdx:contentIdx]),
	}

	// Content starts after "Content: " and continues on lines indented
	// with nine spaces. A bare "Content:" line means empty content.
	content := []byte{}
	if line := lines[contentIdx]; len(line) > 9 {
		content = append(content, line[9:]...)
	}
	indent := bytes.Repeat([]byte(" "), 9)
	for _, line := range lines[contentIdx+1:] {
		if !bytes.HasPrefix(line, indent) {
			continue
		}
		content = append(content, '\n')
		content = append(content, line[9:]...)
	}
	att.Content = content
	return att, nil
}

// GetAttachmentContent fetches the raw bytes of an attachment without
// metadata, the safe way to download binary content. It returns
// (nil, nil) when the ticket or attachment does not exist.
func (c *Client) GetAttachmentContent(ctx context.Context, ticketID, attachmentID int) ([]byte, error) {
	body, _, err := c.request(ctx, fmt.Sprintf("ticket/%d/attachments/%d/content", ticketID, attachmentID), nil, nil, nil, false)
	if err != nil {
		return nil, err
	}
	lines := bytes.SplitN(body, []byte("\n"), 4)
	if len(lines) == 4 && (reInvalidAttachmentBytes.Match(lines[2]) || reDoesNotExistBytes.Match(lines[2])) {
		return nil, nil
	}
	// The content sits after the status line and one blank line, with
	// three trailing newlines appended by the server.
	idx := bytes.IndexByte(body, '\n')
	if idx < 0 || idx+2 > len(body) {
		return nil, errors.NewMalformedResponse("attachment content response too short")
	}
	content := body[idx+2:]
	content = bytes.TrimSuffix(content, []byte("\n\n\n"))
	return content, nil
}

// splitHeaderLines parses `Name: value` byte lines into a string map,
// skipping lines without a separator.
func splitHeaderLines(lines [][]byte) map[string]string {
	pairs := make(map[string]string)
	for _, line := range lines {
		idx := bytes.Index(line, []byte(": "))
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(string(line[:idx]))
		value := strings.TrimSpace(string(line[idx+2:]))
		pairs[key] = value
	}
	return pairs
}
