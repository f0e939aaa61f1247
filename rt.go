// Package rt provides a Go client library for the Request Tracker
// (RT) ticketing system.
//
// RT exposes two generations of its REST API and this library covers
// both:
//   - REST 1.0 (package rest1): the legacy form-encoded, plain-text
//     interface available on every RT 3.x/4.x installation
//   - REST 2.0 (package rest2): the JSON interface shipped with RT 5,
//     with paginated collections and streaming iteration
//
// Basic usage against REST 2.0:
//
//	client, err := rt.NewREST2(&rt.REST2Config{
//		BaseURL: "https://tracker.example.com/REST/2.0/",
//		Auth:    rt.NewToken("1-14-abcdef"),
//	})
//	tickets, err := client.Search(ctx, rt.SearchOptions{Queue: "General"})
//
// And against REST 1.0:
//
//	client, err := rt.NewREST1(&rt.REST1Config{
//		BaseURL: "https://tracker.example.com/REST/1.0/",
//		Auth:    rt.NewCredentials("user", "secret"),
//	})
//	if err := client.Login(ctx); err != nil { ... }
//	ticket, err := client.GetTicket(ctx, 1)
//
// Authentication strategies live in the auth package and are shared by
// both clients; typed errors live in the errors package with Is*
// helpers for classification.
package rt

import (
	"github.com/rt-tools/rt-go/auth"
	"github.com/rt-tools/rt-go/rest1"
	"github.com/rt-tools/rt-go/rest2"
	"github.com/rt-tools/rt-go/types"
)

// REST1 is the legacy REST 1.0 client.
type REST1 = rest1.Client

// REST1Config configures a REST 1.0 client.
type REST1Config = rest1.Config

// REST2 is the REST 2.0 client.
type REST2 = rest2.Client

// REST2Config configures a REST 2.0 client.
type REST2Config = rest2.Config

// SearchOptions narrows and orders ticket searches on both clients.
type SearchOptions = types.SearchOptions

// Condition is one field comparison of a ticket search.
type Condition = types.Condition

// NewREST1 creates a REST 1.0 client.
func NewREST1(cfg *REST1Config) (*REST1, error) {
	return rest1.NewClient(cfg)
}

// NewREST2 creates a REST 2.0 client.
func NewREST2(cfg *REST2Config) (*REST2, error) {
	return rest2.NewClient(cfg)
}

// Authentication helpers
var (
	// NewCredentials creates a username/password strategy (form login
	// on REST 1.0, basic auth on REST 2.0)
	NewCredentials = auth.NewCredentials

	// NewBasic creates an HTTP basic auth strategy
	NewBasic = auth.NewBasic

	// NewToken creates an RT auth token strategy (REST 2.0)
	NewToken = auth.NewToken

	// NewCookie creates a pre-supplied session cookie strategy
	NewCookie = auth.NewCookie

	// NewCustom creates a caller-supplied request mutator strategy
	NewCustom = auth.NewCustom

	// NewNone creates a no-auth strategy
	NewNone = auth.NewNone
)

// Version information
const (
	// Version is the current library version
	Version = "1.0.0"
)
