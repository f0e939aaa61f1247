package rest1

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rt-tools/rt-go/errors"
)

// The REST 1.0 interface reports outcomes as free-text message lines.
// These patterns are the recognized shapes.
var (
	reNotAllowed          = regexp.MustCompile(`^# You are not allowed to`)
	reCredentialsRequired = regexp.MustCompile(`.* 401 Credentials required$`)
	reSyntaxError         = regexp.MustCompile(`.* 409 Syntax Error$`)
	reBadRequest          = regexp.MustCompile(`.* 400 Bad Request$`)
	reTicketCreated       = regexp.MustCompile(`^# Ticket ([0-9]+) created\.$`)
	reTicketUpdated       = regexp.MustCompile(`^# Ticket [0-9]+ updated\.$`)
	reDoesNotExist        = regexp.MustCompile(`^# (?:Queue|User|Ticket) \w* does not exist\.$`)
	reNotRelated          = regexp.MustCompile(`^# Transaction \d+ is not related to Ticket \d+`)
	reLinksUpdated        = regexp.MustCompile(`^# Links for ticket [0-9]+ updated\.$`)
	reCreatedLink         = regexp.MustCompile(`.* Created link `)
	reDeletedLink         = regexp.MustCompile(`.* Deleted link `)
	reMergeSuccessful     = regexp.MustCompile(`^# Merge completed\.|^Merge Successful$`)
	reUserChanged         = regexp.MustCompile(`^# User ([0-9]*) (?:updated|created)\.$`)
	reQueueChanged        = regexp.MustCompile(`^# Queue (\w*) (?:updated|created)\.$`)
	reStatusLine          = regexp.MustCompile(`^\S+ (\d{3}) `)
	reAttachmentsEntry    = regexp.MustCompile(`[^0-9]*(\d+): (.+) \((.+) / (.+)\),?$`)
)

// Ticket is one parsed long-format ticket record. Fields holds every
// field verbatim, custom fields under their CF.{Name} keys. The People
// fields are split out of Fields into ordered slices.
type Ticket struct {
	ID         int
	Requestors []string
	Cc         []string
	AdminCc    []string
	Fields     map[string]string
}

// HistoryItem is one transaction of a ticket's history.
type HistoryItem struct {
	ID          int
	Attachments []ListEntry
	Fields      map[string]string
}

// ListEntry is one entry of a numbered list response (short history,
// per-transaction attachments).
type ListEntry struct {
	ID          int
	Description string
}

// AttachmentInfo is one row of a ticket's attachment listing.
type AttachmentInfo struct {
	ID          int
	Name        string
	ContentType string
	Size        string
}

// parseFields parses `Name: value` lines into a field map. Indented
// lines continue the previous value with a newline. `CF.{Some: Name}`
// keys may contain colons, so custom fields split on `}: ` and keep
// the closing brace. A line `Name:` with nothing after the colon opens
// an empty value. Blank lines, `# ...` comment lines and a leading
// status line reset the current field.
func parseFields(msg string, expectKeys ...string) (map[string]string, error) {
	lines := strings.Split(msg, "\n")
	fields := make(map[string][]string)
	key := ""
	haveKey := false
	for _, line := range lines {
		switch {
		case line == "" || strings.HasPrefix(line, "#") || (len(fields) == 0 && reStatusLine.MatchString(line)):
			haveKey = false
		case line[0] == ' ' || line[0] == '\t':
			if !haveKey {
				return nil, errors.NewMalformedResponse("response has a continuation line with no field to continue")
			}
			fields[key] = append(fields[key], strings.TrimLeft(line, " \t"))
		default:
			sep := ": "
			if strings.HasPrefix(line, "CF.{") {
				sep = "}: "
			}
			if idx := strings.Index(line, sep); idx >= 0 {
				// Keep the brace of the custom field key.
				key = line[:idx+len(sep)-2]
				fields[key] = []string{line[idx+len(sep):]}
				haveKey = true
			} else if strings.HasSuffix(line, ":") {
				key = strings.TrimSuffix(line, ":")
				fields[key] = []string{}
				haveKey = true
			} else {
				return nil, errors.NewMalformedResponse("response has a line without a field name: " + line)
			}
		}
	}
	for _, want := range expectKeys {
		if _, ok := fields[want]; !ok {
			return nil, errors.NewMalformedResponse("missing line starting with `" + want + ":`")
		}
	}
	result := make(map[string]string, len(fields))
	for key, parts := range fields {
		result[key] = strings.Join(parts, "\n")
	}
	return result, nil
}

// parseNumberedList parses `id: description` fields into entries
// sorted by id.
func parseNumberedList(msg string) ([]ListEntry, error) {
	fields, err := parseFields(msg)
	if err != nil {
		return nil, err
	}
	entries := make([]ListEntry, 0, len(fields))
	for key, value := range fields {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.NewMalformedResponse("list entry with non-numeric id: " + key)
		}
		entries = append(entries, ListEntry{ID: id, Description: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// parseTicket parses one long-format ticket record. The id field must
// have the `ticket/N` form and Requestors must be present; the People
// fields are comma-split.
func parseTicket(msg string) (*Ticket, error) {
	fields, err := parseFields(msg, "Requestors")
	if err != nil {
		return nil, err
	}
	rawID, ok := fields["id"]
	if !ok || !strings.HasPrefix(rawID, "ticket/") {
		return nil, errors.NewMalformedResponse("response did not contain a valid ticket id")
	}
	id, err := strconv.Atoi(strings.TrimPrefix(rawID, "ticket/"))
	if err != nil {
		return nil, errors.NewMalformedResponse("response did not contain a valid ticket id")
	}
	ticket := &Ticket{ID: id, Fields: fields}
	ticket.Requestors = splitList(fields["Requestors"])
	delete(fields, "Requestors")
	if value, ok := fields["Cc"]; ok {
		ticket.Cc = splitList(value)
		delete(fields, "Cc")
	}
	if value, ok := fields["AdminCc"]; ok {
		ticket.AdminCc = splitList(value)
		delete(fields, "AdminCc")
	}
	return ticket, nil
}

// splitRecords splits a long-format response into its `--`-separated
// records.
func splitRecords(msg string) []string {
	return strings.Split(msg, "\n--\n")
}

// splitList splits a comma-separated field value and trims whitespace,
// including the newlines left by continuation lines.
func splitList(value string) []string {
	if value == "" {
		return []string{}
	}
	value = strings.ReplaceAll(value, "\n", "")
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
