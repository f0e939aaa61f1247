package rest2

import (
	"context"
	"net/url"
	"strconv"
)

// DefaultPageSize is the per_page value pagers request when the caller
// sets none.
const DefaultPageSize = 20

// page is the envelope every paginated endpoint wraps its items in.
type page[T any] struct {
	Items   []T `json:"items"`
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// Pager iterates over a paginated collection, fetching pages on
// demand. The zero-cost way to consume it is the scanner loop:
//
//	for pager.Next(ctx) {
//	    item := pager.Item()
//	    ...
//	}
//	if err := pager.Err(); err != nil { ... }
//
// Collect drains it into a slice and Stream turns it into a channel. A
// Pager is single-goroutine; Restart rewinds it for another pass.
type Pager[T any] struct {
	client   *Client
	selector string
	params   url.Values
	// body is the JSON filter of POST-based listings; nil means GET.
	body    interface{}
	perPage int

	buf      []T
	pos      int
	nextPage int
	pages    int
	total    int
	started  bool
	err      error
}

func newPager[T any](c *Client, selector string, params url.Values, body interface{}) *Pager[T] {
	if params == nil {
		params = url.Values{}
	}
	return &Pager[T]{
		client:   c,
		selector: selector,
		params:   params,
		body:     body,
		perPage:  DefaultPageSize,
		nextPage: 1,
	}
}

// PageSize sets how many items each request fetches. It must be called
// before iteration starts.
func (p *Pager[T]) PageSize(n int) *Pager[T] {
	if n > 0 {
		p.perPage = n
	}
	return p
}

// Next advances to the next item, fetching the next page when the
// buffered one is exhausted. It returns false at the end of the
// collection or on error; Err tells which.
func (p *Pager[T]) Next(ctx context.Context) bool {
	if p.err != nil {
		return false
	}
	for p.pos >= len(p.buf) {
		if p.started && p.nextPage > p.pages {
			return false
		}
		if err := p.fetch(ctx); err != nil {
			p.err = err
			return false
		}
		// An empty page ends the collection even when the server
		// claims more pages.
		if len(p.buf) == 0 {
			return false
		}
	}
	p.pos++
	return true
}

// Item returns the item Next advanced to.
func (p *Pager[T]) Item() T {
	return p.buf[p.pos-1]
}

// Err returns the error that stopped iteration, if any.
func (p *Pager[T]) Err() error {
	return p.err
}

// Total returns the collection size reported by the server. It is
// valid once Next has been called at least once.
func (p *Pager[T]) Total() int {
	return p.total
}

// Restart rewinds the pager for another full pass.
func (p *Pager[T]) Restart() {
	p.buf = nil
	p.pos = 0
	p.nextPage = 1
	p.pages = 0
	p.total = 0
	p.started = false
	p.err = nil
}

// Collect drains the remaining items into a slice.
func (p *Pager[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for p.Next(ctx) {
		items = append(items, p.Item())
	}
	return items, p.Err()
}

// Stream fetches pages in a background goroutine and yields items over
// a channel as they arrive. Both channels close when the collection is
// exhausted, the context is canceled or an error occurs; the error
// channel delivers at most one error.
func (p *Pager[T]) Stream(ctx context.Context) (<-chan T, <-chan error) {
	items := make(chan T)
	errc := make(chan error, 1)
	go func() {
		defer close(items)
		defer close(errc)
		for p.Next(ctx) {
			select {
			case items <- p.Item():
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		if err := p.Err(); err != nil {
			errc <- err
		}
	}()
	return items, errc
}

// fetch loads the next page into the buffer.
func (p *Pager[T]) fetch(ctx context.Context) error {
	params := url.Values{}
	for key, values := range p.params {
		params[key] = values
	}
	params.Set("page", strconv.Itoa(p.nextPage))
	params.Set("per_page", strconv.Itoa(p.perPage))

	var result page[T]
	var err error
	if p.body != nil {
		// Filtered listings POST their filter and carry the paging in
		// the query string.
		sel := p.selector
		if encoded := params.Encode(); encoded != "" {
			sel += "?" + encoded
		}
		err = p.client.post(ctx, sel, p.body, &result)
	} else {
		err = p.client.get(ctx, p.selector, params, &result)
	}
	if err != nil {
		return err
	}

	p.buf = result.Items
	p.pos = 0
	p.pages = result.Pages
	p.total = result.Total
	if result.PerPage > 0 {
		p.perPage = result.PerPage
	}
	// Advance from the page that was requested, not the echoed one; a
	// server echoing a stale page number must not rewind the walk.
	p.nextPage++
	p.started = true
	return nil
}
