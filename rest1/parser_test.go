package rest1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rt-tools/rt-go/errors"
)

func TestParseFields(t *testing.T) {
	msg := "RT/4.4.4 200 Ok\n" +
		"\n" +
		"id: ticket/123\n" +
		"Subject: Some subject\n" +
		"Text: line one\n" +
		"      line two\n" +
		"CF.{Some: Colon}: custom value\n" +
		"Empty:\n"

	fields, err := parseFields(msg)
	require.NoError(t, err)

	assert.Equal(t, "ticket/123", fields["id"])
	assert.Equal(t, "Some subject", fields["Subject"])
	assert.Equal(t, "line one\nline two", fields["Text"])
	assert.Equal(t, "custom value", fields["CF.{Some: Colon}"])
	assert.Equal(t, "", fields["Empty"])
}

func TestParseFieldsCommentResetsContinuation(t *testing.T) {
	msg := "Subject: hello\n" +
		"# a comment line\n" +
		"Owner: root\n"

	fields, err := parseFields(msg)
	require.NoError(t, err)
	assert.Equal(t, "hello", fields["Subject"])
	assert.Equal(t, "root", fields["Owner"])
}

func TestParseFieldsContinuationWithoutField(t *testing.T) {
	msg := "RT/4.4.4 200 Ok\n" +
		"\n" +
		"   dangling continuation\n"

	_, err := parseFields(msg)
	require.Error(t, err)
	assert.True(t, errors.IsMalformedResponse(err))
}

func TestParseFieldsLineWithoutName(t *testing.T) {
	_, err := parseFields("Subject: ok\nnot a field line\n")
	require.Error(t, err)
	assert.True(t, errors.IsMalformedResponse(err))
}

func TestParseFieldsExpectKeys(t *testing.T) {
	_, err := parseFields("Subject: ok\n", "Requestors")
	require.Error(t, err)
	assert.True(t, errors.IsMalformedResponse(err))
}

func TestParseNumberedListSortsByID(t *testing.T) {
	entries, err := parseNumberedList("12: second\n3: first\n")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ListEntry{ID: 3, Description: "first"}, entries[0])
	assert.Equal(t, ListEntry{ID: 12, Description: "second"}, entries[1])
}

func TestParseTicketSplitsPeopleFields(t *testing.T) {
	msg := "id: ticket/42\n" +
		"Queue: General\n" +
		"Requestors: alice@example.com,\n" +
		"            bob@example.com\n" +
		"Cc: carol@example.com\n" +
		"Subject: greetings\n"

	ticket, err := parseTicket(msg)
	require.NoError(t, err)

	assert.Equal(t, 42, ticket.ID)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, ticket.Requestors)
	assert.Equal(t, []string{"carol@example.com"}, ticket.Cc)
	assert.Empty(t, ticket.AdminCc)
	assert.Equal(t, "greetings", ticket.Fields["Subject"])
}

func TestParseTicketRequiresTicketID(t *testing.T) {
	_, err := parseTicket("id: user/7\nRequestors: a@example.com\n")
	require.Error(t, err)
	assert.True(t, errors.IsMalformedResponse(err))
}

func TestHistoryAttachmentShapes(t *testing.T) {
	single := "id: 11\n" +
		"Type: Correspond\n" +
		"Content: hello\n" +
		"Attachments: 10: report.pdf (application/pdf / 1.2k)\n"

	multi := "id: 12\n" +
		"Type: Correspond\n" +
		"Content: hello again\n" +
		"Attachments:\n" +
		"             10: report.pdf (application/pdf / 1.2k)\n" +
		"             11: notes.txt (text/plain / 300b)\n"

	c := &Client{}

	one, err := c.parseHistory(single)
	require.NoError(t, err)
	require.Len(t, one, 1)
	require.Len(t, one[0].Attachments, 1)
	assert.Equal(t, ListEntry{ID: 10, Description: "report.pdf (application/pdf / 1.2k)"}, one[0].Attachments[0])

	two, err := c.parseHistory(multi)
	require.NoError(t, err)
	require.Len(t, two, 1)
	require.Len(t, two[0].Attachments, 2)
	assert.Equal(t, one[0].Attachments[0], two[0].Attachments[0])
	assert.Equal(t, ListEntry{ID: 11, Description: "notes.txt (text/plain / 300b)"}, two[0].Attachments[1])
}

func TestEncodeTicketFields(t *testing.T) {
	content := encodeTicketFields([]Field{
		F("id", "ticket/new"),
		F("Queue", "General"),
		F("Requestors", "alice@example.com", "bob@example.com"),
		F("Text", "first line\nsecond line"),
		F("CF_Domain", "example.com"),
	})

	expected := "id: ticket/new\n" +
		"Queue: General\n" +
		"Requestors: alice@example.com, bob@example.com\n" +
		"Text: first line\n" +
		" second line\n" +
		"CF.{Domain}: example.com"
	assert.Equal(t, expected, content)
}

// Multiline and custom field values must survive encoding followed by
// parsing unchanged.
func TestFieldEncodingRoundTrip(t *testing.T) {
	content := encodeTicketFields([]Field{
		F("Text", "first\nsecond\nthird"),
		F("CF_Notes", "one\ntwo"),
	})
	fields, err := parseFields(content)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\nthird", fields["Text"])
	assert.Equal(t, "one\ntwo", fields["CF.{Notes}"])
}

func TestSplitRecords(t *testing.T) {
	records := splitRecords("a: 1\n--\nb: 2")
	assert.Equal(t, []string{"a: 1", "b: 2"}, records)
}
