// Package types defines the data model shared by the rt-go clients.
//
// RT's REST 2.0 interface is schemaless from the client's point of
// view: field values are strings, lists of strings, or references to
// other records. The types here mirror the wire shapes without
// client-side validation beyond the required identifiers.
package types

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strconv"
)

// ID is a record identifier. RT serializes ids inconsistently, as JSON
// numbers for some records and strings for others (e.g. "root" for
// users), so ID accepts both.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Int returns the numeric value of the id, or 0 if it is not numeric.
func (id ID) Int() int {
	n, err := strconv.Atoi(string(id))
	if err != nil {
		return 0
	}
	return n
}

func (id ID) String() string { return string(id) }

// EntityRef is a reference to another record (user, queue, ticket).
// When the request asked for expanded fields, RT inlines them next to
// the reference.
type EntityRef struct {
	ID   ID     `json:"id"`
	Type string `json:"type"`
	URL  string `json:"_url"`

	// Inlined when requested via fields[...] parameters.
	Name         string `json:"Name,omitempty"`
	RealName     string `json:"RealName,omitempty"`
	EmailAddress string `json:"EmailAddress,omitempty"`
}

// Hyperlink is an entry of a record's _hyperlinks list. Ticket links
// (parent, child, depends-on, ...) are relayed through these.
type Hyperlink struct {
	Ref  string `json:"ref"`
	Type string `json:"type,omitempty"`
	ID   ID     `json:"id,omitempty"`
	URL  string `json:"_url"`
	From ID     `json:"from,omitempty"`
	To   ID     `json:"to,omitempty"`
}

// CustomFieldValue is one custom field with its ordered values.
type CustomFieldValue struct {
	ID     ID       `json:"id"`
	Name   string   `json:"name"`
	Type   string   `json:"type,omitempty"`
	URL    string   `json:"_url,omitempty"`
	Values []string `json:"values"`
}

// Ticket is an RT ticket as returned by REST 2.0. Date fields stay
// strings as sent by the server (UTC, RFC 3339).
type Ticket struct {
	ID      ID     `json:"id"`
	Type    string `json:"type,omitempty"`
	Subject string `json:"Subject,omitempty"`
	Status  string `json:"Status,omitempty"`

	Queue   *EntityRef `json:"Queue,omitempty"`
	Owner   *EntityRef `json:"Owner,omitempty"`
	Creator *EntityRef `json:"Creator,omitempty"`

	// People fields. REST 2.0 uses the singular Requestor, unlike the
	// legacy interface's Requestors; call sites must match the endpoint.
	Requestor []EntityRef `json:"Requestor,omitempty"`
	Cc        []EntityRef `json:"Cc,omitempty"`
	AdminCc   []EntityRef `json:"AdminCc,omitempty"`

	Created     string `json:"Created,omitempty"`
	Starts      string `json:"Starts,omitempty"`
	Started     string `json:"Started,omitempty"`
	Due         string `json:"Due,omitempty"`
	Resolved    string `json:"Resolved,omitempty"`
	Told        string `json:"Told,omitempty"`
	LastUpdated string `json:"LastUpdated,omitempty"`

	Priority        string `json:"Priority,omitempty"`
	InitialPriority string `json:"InitialPriority,omitempty"`
	FinalPriority   string `json:"FinalPriority,omitempty"`
	TimeEstimated   string `json:"TimeEstimated,omitempty"`
	TimeWorked      string `json:"TimeWorked,omitempty"`
	TimeLeft        string `json:"TimeLeft,omitempty"`

	EffectiveID  *EntityRef         `json:"EffectiveId,omitempty"`
	CustomFields []CustomFieldValue `json:"CustomFields,omitempty"`
	Hyperlinks   []Hyperlink        `json:"_hyperlinks,omitempty"`
}

// Queue is an RT queue.
type Queue struct {
	ID                ID          `json:"id"`
	Name              string      `json:"Name,omitempty"`
	Description       string      `json:"Description,omitempty"`
	Lifecycle         string      `json:"Lifecycle,omitempty"`
	CorrespondAddress string      `json:"CorrespondAddress,omitempty"`
	CommentAddress    string      `json:"CommentAddress,omitempty"`
	Disabled          ID          `json:"Disabled,omitempty"`
	SLADisabled       ID          `json:"SLADisabled,omitempty"`
	SortOrder         ID          `json:"SortOrder,omitempty"`
	Created           string      `json:"Created,omitempty"`
	LastUpdated       string      `json:"LastUpdated,omitempty"`
	Hyperlinks        []Hyperlink `json:"_hyperlinks,omitempty"`
}

// User is an RT user. Privileged and Disabled arrive as 0/1 numbers.
type User struct {
	ID           ID          `json:"id"`
	Name         string      `json:"Name,omitempty"`
	RealName     string      `json:"RealName,omitempty"`
	NickName     string      `json:"NickName,omitempty"`
	EmailAddress string      `json:"EmailAddress,omitempty"`
	Gecos        string      `json:"Gecos,omitempty"`
	Lang         string      `json:"Lang,omitempty"`
	Organization string      `json:"Organization,omitempty"`
	Privileged   ID          `json:"Privileged,omitempty"`
	Disabled     ID          `json:"Disabled,omitempty"`
	Created      string      `json:"Created,omitempty"`
	LastUpdated  string      `json:"LastUpdated,omitempty"`
	Hyperlinks   []Hyperlink `json:"_hyperlinks,omitempty"`
}

// Transaction is one recorded change or message on a ticket.
type Transaction struct {
	ID          ID          `json:"id"`
	Type        string      `json:"Type,omitempty"`
	Field       string      `json:"Field,omitempty"`
	OldValue    string      `json:"OldValue,omitempty"`
	NewValue    string      `json:"NewValue,omitempty"`
	Data        string      `json:"Data,omitempty"`
	Description string      `json:"Description,omitempty"`
	TimeTaken   ID          `json:"TimeTaken,omitempty"`
	Creator     *EntityRef  `json:"Creator,omitempty"`
	Created     string      `json:"Created,omitempty"`
	Object      *EntityRef  `json:"Object,omitempty"`
	Hyperlinks  []Hyperlink `json:"_hyperlinks,omitempty"`
}

// Attachment is attachment metadata plus, when fetched individually,
// its base64-encoded content.
type Attachment struct {
	ID              ID          `json:"id"`
	Subject         string      `json:"Subject,omitempty"`
	Filename        string      `json:"Filename,omitempty"`
	ContentType     string      `json:"ContentType,omitempty"`
	ContentLength   ID          `json:"ContentLength,omitempty"`
	ContentEncoding string      `json:"ContentEncoding,omitempty"`
	Content         string      `json:"Content,omitempty"`
	Headers         string      `json:"Headers,omitempty"`
	MessageID       string      `json:"MessageId,omitempty"`
	Parent          ID          `json:"Parent,omitempty"`
	Creator         *EntityRef  `json:"Creator,omitempty"`
	Created         string      `json:"Created,omitempty"`
	Transaction     *EntityRef  `json:"TransactionId,omitempty"`
	Hyperlinks      []Hyperlink `json:"_hyperlinks,omitempty"`
}

// Bytes decodes the base64 content of an individually fetched
// attachment.
func (a *Attachment) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(a.Content)
}

// AttachmentUpload is a file to attach to a create, reply or comment
// call. REST 2.0 transmits attachment content base64-encoded inside
// the JSON body.
type AttachmentUpload struct {
	FileName    string
	FileType    string
	FileContent []byte
}

// MarshalJSON encodes the upload in the wire shape RT expects.
func (a AttachmentUpload) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"FileName":    a.FileName,
		"FileType":    a.FileType,
		"FileContent": base64.StdEncoding.EncodeToString(a.FileContent),
	})
}
