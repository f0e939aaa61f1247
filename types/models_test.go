package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumberAndString(t *testing.T) {
	var record struct {
		ID ID `json:"id"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"id": 42}`), &record))
	assert.Equal(t, 42, record.ID.Int())
	assert.Equal(t, "42", record.ID.String())

	require.NoError(t, json.Unmarshal([]byte(`{"id": "root"}`), &record))
	assert.Equal(t, "root", record.ID.String())
	assert.Zero(t, record.ID.Int())

	require.NoError(t, json.Unmarshal([]byte(`{"id": null}`), &record))
	assert.Empty(t, record.ID.String())
}

func TestTicketUnmarshal(t *testing.T) {
	body := `{
		"id": 42,
		"type": "ticket",
		"Subject": "printer on fire",
		"Status": "new",
		"Queue": {"id": 1, "type": "queue", "_url": "https://example.com/REST/2.0/queue/1", "Name": "General"},
		"Requestor": [{"id": "alice", "type": "user", "_url": "https://example.com/REST/2.0/user/alice"}],
		"CustomFields": [{"id": 7, "name": "Severity", "values": ["high"]}],
		"_hyperlinks": [
			{"ref": "self", "type": "ticket", "id": 42, "_url": "https://example.com/REST/2.0/ticket/42"},
			{"ref": "depends-on", "type": "ticket", "id": 13, "_url": "https://example.com/REST/2.0/ticket/13"}
		]
	}`

	var ticket Ticket
	require.NoError(t, json.Unmarshal([]byte(body), &ticket))
	assert.Equal(t, 42, ticket.ID.Int())
	require.NotNil(t, ticket.Queue)
	assert.Equal(t, "General", ticket.Queue.Name)
	require.Len(t, ticket.Requestor, 1)
	assert.Equal(t, "alice", ticket.Requestor[0].ID.String())
	require.Len(t, ticket.CustomFields, 1)
	assert.Equal(t, []string{"high"}, ticket.CustomFields[0].Values)
	require.Len(t, ticket.Hyperlinks, 2)
	assert.Equal(t, "depends-on", ticket.Hyperlinks[1].Ref)
}

func TestAttachmentBytes(t *testing.T) {
	att := Attachment{Content: "aGVsbG8="}
	content, err := att.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)
}

func TestAttachmentUploadMarshal(t *testing.T) {
	upload := AttachmentUpload{
		FileName:    "log.txt",
		FileType:    "text/plain",
		FileContent: []byte("hello"),
	}
	data, err := json.Marshal(upload)
	require.NoError(t, err)

	var wire map[string]string
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, map[string]string{
		"FileName":    "log.txt",
		"FileType":    "text/plain",
		"FileContent": "aGVsbG8=",
	}, wire)
}
