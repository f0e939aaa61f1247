// Package auth provides the authentication strategies accepted by the
// rt-go clients.
//
// RT installations authenticate in several ways: the legacy REST 1.0
// interface uses a form login that yields a session cookie, while
// REST 2.0 accepts HTTP basic auth or an auth token on every request.
// Deployments behind external auth (e.g. a reverse proxy) need a
// caller-supplied request mutator. A client is handed one
// Authenticator and derives its login behavior from Method.
package auth

import "net/http"

// Method identifies the authentication strategy.
type Method int

const (
	// MethodNone disables authentication.
	MethodNone Method = iota
	// MethodCredentials authenticates with username/password. The REST 1.0
	// client performs an explicit form login; the REST 2.0 client sends
	// the credentials as HTTP basic auth on every request.
	MethodCredentials
	// MethodBasic attaches HTTP basic auth to every request without a
	// login round-trip.
	MethodBasic
	// MethodToken attaches an RT auth token to every request (REST 2.0).
	MethodToken
	// MethodCookie reuses a previously established session cookie.
	MethodCookie
	// MethodCustom delegates request mutation to a caller-supplied function.
	MethodCustom
)

// Authenticator attaches credentials to outgoing requests.
type Authenticator interface {
	// Method reports the strategy kind.
	Method() Method
	// Apply mutates the request with per-request credentials. Strategies
	// that authenticate out of band (form login, session cookie) leave
	// the request untouched.
	Apply(req *http.Request)
}

// RequiresLogin reports whether the strategy needs an explicit login
// round-trip before other operations (REST 1.0 form login).
func RequiresLogin(a Authenticator) bool {
	return a != nil && a.Method() == MethodCredentials
}

// Credentials holds a username/password pair.
type Credentials struct {
	Username string
	Password string
	// basic marks the pair for per-request basic auth instead of a
	// form login.
	basic bool
}

// NewCredentials creates a username/password strategy. The REST 1.0
// client logs in with a form POST; the REST 2.0 client falls back to
// basic auth.
func NewCredentials(username, password string) *Credentials {
	return &Credentials{Username: username, Password: password}
}

// NewBasic creates an HTTP basic auth strategy that needs no login
// round-trip.
func NewBasic(username, password string) *Credentials {
	return &Credentials{Username: username, Password: password, basic: true}
}

// Method implements Authenticator.
func (c *Credentials) Method() Method {
	if c.basic {
		return MethodBasic
	}
	return MethodCredentials
}

// Apply implements Authenticator. The REST 1.0 client sends form-login
// credentials out of band and never calls Apply for them; everything
// else gets HTTP basic auth.
func (c *Credentials) Apply(req *http.Request) {
	req.SetBasicAuth(c.Username, c.Password)
}

// Token authenticates with an RT auth token (REST 2.0 only).
type Token struct {
	Token string
}

// NewToken creates a token strategy.
func NewToken(token string) *Token {
	return &Token{Token: token}
}

// Method implements Authenticator.
func (t *Token) Method() Method { return MethodToken }

// Apply implements Authenticator.
func (t *Token) Apply(req *http.Request) {
	req.Header.Set("Authorization", "token "+t.Token)
}

// Cookie reuses a session cookie from an earlier login.
type Cookie struct {
	Cookies []*http.Cookie
}

// NewCookie creates a pre-supplied session cookie strategy.
func NewCookie(cookies ...*http.Cookie) *Cookie {
	return &Cookie{Cookies: cookies}
}

// Method implements Authenticator.
func (c *Cookie) Method() Method { return MethodCookie }

// Apply implements Authenticator.
func (c *Cookie) Apply(req *http.Request) {
	for _, cookie := range c.Cookies {
		req.AddCookie(cookie)
	}
}

// Custom delegates authentication to a caller-supplied function, e.g.
// for external auth handlers or exotic header schemes.
type Custom struct {
	Fn func(*http.Request)
}

// NewCustom creates a custom strategy from a request mutator.
func NewCustom(fn func(*http.Request)) *Custom {
	return &Custom{Fn: fn}
}

// Method implements Authenticator.
func (c *Custom) Method() Method { return MethodCustom }

// Apply implements Authenticator.
func (c *Custom) Apply(req *http.Request) {
	if c.Fn != nil {
		c.Fn(req)
	}
}

// None is the no-auth strategy.
type None struct{}

// NewNone creates a no-auth strategy.
func NewNone() *None { return &None{} }

// Method implements Authenticator.
func (n *None) Method() Method { return MethodNone }

// Apply implements Authenticator.
func (n *None) Apply(*http.Request) {}
