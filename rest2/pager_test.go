package rest2

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rt-tools/rt-go/auth"
	"github.com/rt-tools/rt-go/types"
)

// pagedTickets serves /REST/2.0/tickets from an in-memory slice,
// honoring the page and per_page parameters and counting requests.
func pagedTickets(t *testing.T, total int, requests *int) http.Handler {
	t.Helper()
	items := make([]types.Ticket, total)
	for i := range items {
		items[i] = types.Ticket{ID: types.ID(strconv.Itoa(i + 1))}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/REST/2.0/tickets", r.URL.Path)
		if requests != nil {
			*requests++
		}
		pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		require.Positive(t, pageNum)
		require.Positive(t, perPage)

		pages := (total + perPage - 1) / perPage
		start := (pageNum - 1) * perPage
		end := start + perPage
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items":    items[start:end],
			"page":     pageNum,
			"pages":    pages,
			"per_page": perPage,
			"total":    total,
		})
	})
}

func newPagerClient(t *testing.T, handler http.Handler) *Client {
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

func ticketIDs(tickets []types.Ticket) []int {
	ids := make([]int, len(tickets))
	for i, tk := range tickets {
		ids[i] = tk.ID.Int()
	}
	return ids
}

func TestPagerWalksAllPages(t *testing.T) {
	requests := 0
	c := newPagerClient(t, pagedTickets(t, 5, &requests))

	pager := c.SearchPager(types.SearchOptions{}).PageSize(2)
	tickets, err := pager.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ticketIDs(tickets))
	assert.Equal(t, 5, pager.Total())
	assert.Equal(t, 3, requests)
}

func TestPagerEmptyResult(t *testing.T) {
	c := newPagerClient(t, pagedTickets(t, 0, nil))

	pager := c.SearchPager(types.SearchOptions{})
	assert.False(t, pager.Next(context.Background()))
	assert.NoError(t, pager.Err())
	assert.Zero(t, pager.Total())
}

func TestPagerRestart(t *testing.T) {
	c := newPagerClient(t, pagedTickets(t, 3, nil))

	pager := c.SearchPager(types.SearchOptions{}).PageSize(2)
	first, err := pager.Collect(context.Background())
	require.NoError(t, err)

	pager.Restart()
	second, err := pager.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ticketIDs(first), ticketIDs(second))
}

func TestPagerScannerLoop(t *testing.T) {
	c := newPagerClient(t, pagedTickets(t, 4, nil))

	pager := c.SearchPager(types.SearchOptions{}).PageSize(3)
	var ids []int
	for pager.Next(context.Background()) {
		ids = append(ids, pager.Item().ID.Int())
	}
	require.NoError(t, pager.Err())
	assert.Equal(t, []int{1, 2, 3, 4}, ids)
}

func TestStream(t *testing.T) {
	c := newPagerClient(t, pagedTickets(t, 5, nil))

	items, errc := c.SearchPager(types.SearchOptions{}).PageSize(2).Stream(context.Background())
	var ids []int
	for tk := range items {
		ids = append(ids, tk.ID.Int())
	}
	require.NoError(t, <-errc)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids)
}

func TestStreamCanceledContext(t *testing.T) {
	c := newPagerClient(t, pagedTickets(t, 100, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, errc := c.SearchPager(types.SearchOptions{}).Stream(ctx)
	for range items {
	}
	assert.Error(t, <-errc)
}

func TestPagerStopsOnStalePageEcho(t *testing.T) {
	// A server echoing page 0 with no items must not make the walk
	// re-request the same page forever.
	requests := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items":    []map[string]interface{}{},
			"page":     0,
			"pages":    3,
			"per_page": 20,
			"total":    60,
		})
	})
	c := newPagerClient(t, handler)

	pager := c.SearchPager(types.SearchOptions{})
	assert.False(t, pager.Next(context.Background()))
	assert.NoError(t, pager.Err())
	assert.Equal(t, 1, requests)
}

func TestPagerAdoptsServerPageSize(t *testing.T) {
	// A server that caps per_page at 2 regardless of the request.
	total := 4
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))
		items := []map[string]interface{}{}
		for i := (pageNum-1)*2 + 1; i <= pageNum*2 && i <= total; i++ {
			items = append(items, map[string]interface{}{"id": i})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items":    items,
			"page":     pageNum,
			"pages":    2,
			"per_page": 2,
			"total":    total,
		})
	})
	c := newPagerClient(t, handler)

	tickets, err := c.SearchPager(types.SearchOptions{}).PageSize(50).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, ticketIDs(tickets))
}
