package rest2

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rt-tools/rt-go/auth"
	"github.com/rt-tools/rt-go/errors"
	"github.com/rt-tools/rt-go/types"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(&Config{
		BaseURL: srv.URL + "/REST/2.0/",
		Auth:    auth.NewToken("secret"),
	})
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClientRejectsNonRESTURL(t *testing.T) {
	_, err := NewClient(&Config{BaseURL: "https://tracker.example.com/"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidUse(err))
}

func TestAuthHeaderOnEveryRequest(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, map[string]interface{}{})
	}))

	_, err := c.RTInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token secret", gotAuth)
}

func TestStatusCodeClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, "", errors.IsAuthorization},
		{"forbidden", http.StatusForbidden, `{"message":"Permission Denied"}`, errors.IsNotAllowed},
		{"not found", http.StatusNotFound, `{"message":"Resource does not exist"}`, errors.IsNotFound},
		{"bad request", http.StatusBadRequest, `{"message":"Could not create ticket. Queue not set"}`, errors.IsBadRequest},
		{"server error", http.StatusInternalServerError, "boom", errors.IsUnexpectedResponse},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))

			_, err := c.GetTicket(context.Background(), 1)
			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected error kind: %v", err)
		})
	}
}

func TestBadRequestCarriesServerMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message":"Could not create ticket. Queue not set"}`)
	}))

	_, err := c.GetTicket(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Queue not set")
}

func TestGetTicket(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/REST/2.0/ticket/42", r.URL.Path)
		assert.Equal(t, "Name", r.URL.Query().Get("fields[Queue]"))
		writeJSON(t, w, map[string]interface{}{
			"id":      42,
			"type":    "ticket",
			"Subject": "printer on fire",
			"Status":  "new",
			"Queue":   map[string]interface{}{"id": 1, "type": "queue", "Name": "General"},
			"Requestor": []map[string]interface{}{
				{"id": "alice", "type": "user"},
			},
		})
	}))

	ticket, err := c.GetTicket(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, ticket.ID.Int())
	assert.Equal(t, "printer on fire", ticket.Subject)
	require.NotNil(t, ticket.Queue)
	assert.Equal(t, "General", ticket.Queue.Name)
	require.Len(t, ticket.Requestor, 1)
	assert.Equal(t, "alice", ticket.Requestor[0].ID.String())
}

func TestCreateTicket(t *testing.T) {
	var gotBody map[string]interface{}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/REST/2.0/ticket", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, map[string]interface{}{"id": 123, "type": "ticket"})
	}))

	id, err := c.CreateTicket(context.Background(), "General", map[string]interface{}{
		"Subject":   "printer on fire",
		"Requestor": "alice@example.com",
	}, types.AttachmentUpload{FileName: "log.txt", FileType: "text/plain", FileContent: []byte("hi")})
	require.NoError(t, err)
	assert.Equal(t, 123, id)

	assert.Equal(t, "General", gotBody["Queue"])
	assert.Equal(t, "printer on fire", gotBody["Subject"])
	atts, ok := gotBody["Attachments"].([]interface{})
	require.True(t, ok)
	require.Len(t, atts, 1)
	att := atts[0].(map[string]interface{})
	assert.Equal(t, "log.txt", att["FileName"])
	assert.Equal(t, "aGk=", att["FileContent"])
}

func TestCreateTicketWithoutID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{})
	}))

	_, err := c.CreateTicket(context.Background(), "General", nil)
	require.Error(t, err)
	assert.True(t, errors.IsMalformedResponse(err))
}

func TestEditTicket(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		writeJSON(t, w, []string{"Ticket 42: Status changed from 'new' to 'open'"})
	}))

	msgs, err := c.EditTicket(context.Background(), 42, map[string]interface{}{"Status": "open"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ticket 42: Status changed from 'new' to 'open'"}, msgs)
}

func TestEditTicketUnknownQueue(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message":"Queue Nonexistent does not exist"}`)
	}))

	_, err := c.EditTicket(context.Background(), 42, map[string]interface{}{"Queue": "Nonexistent"})
	require.Error(t, err)
	assert.True(t, errors.IsBadRequest(err))
	assert.Contains(t, err.Error(), "does not exist")
}

func TestReply(t *testing.T) {
	var gotBody map[string]interface{}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/REST/2.0/ticket/42/correspond", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, []string{"Correspondence added"})
	}))

	msgs, err := c.Reply(context.Background(), 42, "thanks, fixed", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Correspondence added"}, msgs)
	assert.Equal(t, "thanks, fixed", gotBody["Content"])
	assert.Equal(t, "text/plain", gotBody["ContentType"])
}

func TestTake(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/REST/2.0/ticket/42/take", r.URL.Path)
		writeJSON(t, w, []string{"Owner changed from Nobody to john"})
	}))

	assert.NoError(t, c.Take(context.Background(), 42))
}

func TestTakeRefused(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []string{"You can only take tickets that are unowned"})
	}))

	err := c.Take(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.IsUnexpectedResponse(err))
}

func TestMergeTicket(t *testing.T) {
	var gotBody map[string]interface{}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(t, w, []string{"Merge Successful"})
	}))

	require.NoError(t, c.MergeTicket(context.Background(), 42, 43))
	assert.Equal(t, float64(43), gotBody["MergeInto"])
}

func TestEditLink(t *testing.T) {
	var gotBody map[string]interface{}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(t, w, []string{"Ticket 42: DependsOn ticket 13 added"})
	}))

	require.NoError(t, c.EditLink(context.Background(), 42, "DependsOn", "13", false))
	assert.Equal(t, "13", gotBody["AddDependsOn"])
}

func TestEditLinkUnresolvableTarget(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []string{"Couldn't resolve target 'nonexistent' into a URI."})
	}))

	err := c.EditLink(context.Background(), 42, "RefersTo", "nonexistent", false)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestEditLinkRejectsUnknownName(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	err := c.EditLink(context.Background(), 42, "Sibling", "13", false)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidUse(err))
}

func TestGetLinksFiltersTicketLinks(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{
			"id": 42,
			"_hyperlinks": []map[string]interface{}{
				{"ref": "self", "type": "ticket", "id": 42},
				{"ref": "depends-on", "type": "ticket", "id": 13},
				{"ref": "history"},
			},
		})
	}))

	links, err := c.GetLinks(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "depends-on", links[0].Ref)
	assert.Equal(t, 13, links[0].ID.Int())
}

func TestGetAttachmentsPostsFilter(t *testing.T) {
	var gotFilter []map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/REST/2.0/ticket/42/attachments", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotFilter))
		writeJSON(t, w, map[string]interface{}{
			"items": []map[string]interface{}{
				{"id": 10, "Filename": "report.pdf", "ContentType": "application/pdf"},
			},
			"page": 1, "pages": 1, "per_page": 20, "total": 1,
		})
	}))

	atts, err := c.GetAttachments(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, "report.pdf", atts[0].Filename)

	require.Len(t, gotFilter, 1)
	assert.Equal(t, map[string]string{"field": "Filename", "operator": "IS NOT", "value": ""}, gotFilter[0])
}

func TestGetAttachmentContent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/REST/2.0/attachment/10", r.URL.Path)
		writeJSON(t, w, map[string]interface{}{
			"id":          10,
			"Filename":    "report.pdf",
			"ContentType": "application/pdf",
			"Content":     "aGVsbG8=",
		})
	}))

	att, err := c.GetAttachment(context.Background(), 10)
	require.NoError(t, err)
	content, err := att.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)
}

func TestGetUser(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Usernames may be email addresses and must stay one segment.
		assert.Equal(t, "/REST/2.0/user/john@example.com", r.URL.Path)
		writeJSON(t, w, map[string]interface{}{
			"id":         "john@example.com",
			"Name":       "john@example.com",
			"RealName":   "John Doe",
			"Privileged": 1,
		})
	}))

	user, err := c.GetUser(context.Background(), "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", user.RealName)
	assert.Equal(t, 1, user.Privileged.Int())
}

func TestCreateUser(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, map[string]interface{}{"id": "jane", "type": "user"})
	}))

	id, err := c.CreateUser(context.Background(), "jane", "jane@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "jane", id)
}

func TestEditUserRejectsUnknownFields(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	_, err := c.EditUser(context.Background(), "jane", map[string]interface{}{"Shoesize": 42})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidUse(err))
}

func TestGetAllQueues(t *testing.T) {
	var gotDisabled string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/REST/2.0/queues/all", r.URL.Path)
		gotDisabled = r.URL.Query().Get("find_disabled_rows")
		writeJSON(t, w, map[string]interface{}{
			"items": []map[string]interface{}{
				{"id": 1, "Name": "General"},
				{"id": 2, "Name": "Support"},
			},
			"page": 1, "pages": 1, "per_page": 20, "total": 2,
		})
	}))

	queues, err := c.GetAllQueues(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, queues, 2)
	assert.Equal(t, "Support", queues[1].Name)
	assert.Equal(t, "1", gotDisabled)
}

func TestDeleteQueue(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/REST/2.0/queue/5", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.NoError(t, c.DeleteQueue(context.Background(), "5"))
}

func TestSearchQueryBuilding(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		writeJSON(t, w, map[string]interface{}{
			"items": []map[string]interface{}{}, "page": 1, "pages": 0, "per_page": 20, "total": 0,
		})
	}))

	_, err := c.Search(context.Background(), types.SearchOptions{
		Queue: "General",
		Conditions: []types.Condition{
			types.Eq("Status", "new"),
			types.CF("Severity", "high"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "(Queue='General') AND (Status='new') AND ('CF.{Severity}'='high')", gotQuery)
}

func TestRTInfo(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/REST/2.0/rt", r.URL.Path)
		writeJSON(t, w, map[string]interface{}{"Version": "5.0.3"})
	}))

	info, err := c.RTInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "5.0.3", info["Version"])
}
