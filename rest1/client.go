// Package rest1 implements a client for the legacy Request Tracker
// REST 1.0 interface.
//
// REST 1.0 is not a JSON API. Requests are form-encoded (most write
// operations pack their payload into a single `content` field) and
// responses are plain text: a leading status line in the form
// `RT/4.4.4 200 Ok`, a blank line, then `Name: value` fields with
// indented continuation lines. All parsing here follows that wire
// format, including the server quirks it is known for.
package rest1

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/rt-tools/rt-go/auth"
	"github.com/rt-tools/rt-go/errors"
)

// DefaultQueue is used by ticket creation and search when the caller
// configures none.
const DefaultQueue = "General"

// Config configures a REST 1.0 client.
type Config struct {
	// BaseURL is the API root, e.g. http://tracker.example.com/REST/1.0/.
	// A trailing slash is added when missing.
	BaseURL string
	// Auth selects the authentication strategy. Credentials require an
	// explicit Login call; every other strategy is ready immediately.
	Auth auth.Authenticator
	// DefaultQueue is used when an operation takes no queue.
	DefaultQueue string
	// HTTPClient overrides the transport. The client installs its own
	// cookie jar when the provided client has none.
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     zerolog.Logger
	Debug      bool
}

// Client talks to one RT instance over REST 1.0. It is safe for
// concurrent use after a successful login.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	auth         auth.Authenticator
	defaultQueue string
	logger       zerolog.Logger
	username     string
	loggedIn     bool
}

// NewClient creates a REST 1.0 client. Sessions authenticate through
// a cookie issued by the form login, so the underlying http.Client
// always carries a cookie jar.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.NewInvalidUse("base URL is required")
	}
	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.NewInvalidUse("invalid base URL: " + err.Error())
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, errors.NewConnection("cookie jar", err)
		}
		httpClient.Jar = jar
	}

	queue := cfg.DefaultQueue
	if queue == "" {
		queue = DefaultQueue
	}

	logger := cfg.Logger
	if !cfg.Debug {
		logger = logger.Level(zerolog.InfoLevel)
	}

	c := &Client{
		baseURL:      u,
		httpClient:   httpClient,
		auth:         cfg.Auth,
		defaultQueue: queue,
		logger:       logger,
		// Strategies without a login round-trip are usable at once.
		loggedIn: !auth.RequiresLogin(cfg.Auth),
	}
	if creds, ok := cfg.Auth.(*auth.Credentials); ok {
		c.username = creds.Username
	}
	return c, nil
}

// Username returns the configured login name, when the strategy
// carries one.
func (c *Client) Username() string { return c.username }

// Login performs the form login that establishes the session cookie.
// It is required before any other operation when the client was built
// with credentials; other strategies may still call it to verify that
// the server accepts them. Invalid credentials surface as an
// authorization error.
func (c *Client) Login(ctx context.Context) error {
	var form url.Values
	if creds, ok := c.auth.(*auth.Credentials); ok && c.auth.Method() == auth.MethodCredentials {
		form = url.Values{"user": {creds.Username}, "pass": {creds.Password}}
	}
	body, _, err := c.request(ctx, "", nil, form, nil, true)
	if err != nil {
		return err
	}
	if statusLineCode(string(body)) != http.StatusOK {
		c.loggedIn = false
		return errors.NewAuthorization(firstComment(string(body)))
	}
	c.loggedIn = true
	return nil
}

// Logout invalidates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	if !c.loggedIn {
		return nil
	}
	body, _, err := c.request(ctx, "logout", nil, nil, nil, false)
	c.loggedIn = false
	if err != nil {
		return err
	}
	if statusLineCode(string(body)) != http.StatusOK {
		return errors.NewUnexpectedResponse(http.StatusOK, firstLine(string(body)))
	}
	return nil
}

// File is one attachment of a create, reply or comment request,
// transmitted as the multipart field attachment_<n>.
type File struct {
	Name        string
	Content     io.Reader
	ContentType string
}

// request performs one round-trip: GET with params when no form data
// is given, form POST otherwise, multipart POST when files are
// attached. It returns the raw body bytes untouched so that binary
// attachment content survives; in-band errors have already been
// checked against a best-effort decoding. The second return value is
// the response Content-Type, for charset-aware decoding by the caller.
func (c *Client) request(ctx context.Context, selector string, params url.Values, form url.Values, files []File, withoutLogin bool) ([]byte, string, error) {
	if !c.loggedIn && !withoutLogin {
		return nil, "", errors.NewAuthorization("not logged in, call Login first")
	}

	ref, err := url.Parse(selector)
	if err != nil {
		return nil, "", errors.NewInvalidUse("invalid selector: " + err.Error())
	}
	u := c.baseURL.ResolveReference(ref)

	var req *http.Request
	switch {
	case len(files) > 0:
		req, err = c.newMultipartRequest(ctx, u, form, files)
	case len(form) > 0:
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	default:
		if len(params) > 0 {
			q := u.Query()
			for key, values := range params {
				for _, value := range values {
					q.Add(key, value)
				}
			}
			u.RawQuery = q.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}
	if err != nil {
		return nil, "", errors.NewConnection("building request", err)
	}
	if c.auth != nil && c.auth.Method() != auth.MethodCredentials {
		c.auth.Apply(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", errors.NewConnection("request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.NewConnection("reading response", err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", u.String()).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Msg("rt rest1 request")

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, "", errors.NewAuthorization("server could not verify that you are authorized to access the requested document")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.FromStatusCode(resp.StatusCode, string(raw))
	}

	contentType := resp.Header.Get("Content-Type")

	// The in-band error check tolerates bodies that do not decode
	// cleanly; the message lines it looks for are plain ASCII.
	check := raw
	if decoded, err := decodeCharset(raw, contentType); err == nil {
		check = decoded
	}
	if err := checkResponse(string(check)); err != nil {
		return nil, "", err
	}
	return raw, contentType, nil
}

// requestText is request with the body decoded to a string per the
// response charset, for the line-based endpoints. The attachment
// endpoints use request directly and keep raw bytes.
func (c *Client) requestText(ctx context.Context, selector string, params url.Values, form url.Values, files []File) (string, error) {
	body, contentType, err := c.request(ctx, selector, params, form, files, false)
	if err != nil {
		return "", err
	}
	decoded, err := decodeCharset(body, contentType)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func (c *Client) newMultipartRequest(ctx context.Context, u *url.URL, form url.Values, files []File) (*http.Request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, values := range form {
		for _, value := range values {
			if err := w.WriteField(key, value); err != nil {
				return nil, err
			}
		}
	}
	for i, file := range files {
		part, err := w.CreateFormFile("attachment_"+strconv.Itoa(i+1), file.Name)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, nil
}

// decodeCharset converts the body to UTF-8 according to the charset
// parameter of the Content-Type header. Bodies without a declared
// charset pass through unchanged.
func decodeCharset(raw []byte, contentType string) ([]byte, error) {
	if contentType == "" {
		return raw, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return raw, nil
	}
	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return raw, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, errors.NewUnexpectedResponse(http.StatusOK, "unknown response encoding: "+charset)
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, errors.NewUnexpectedResponse(http.StatusOK, "undecodable response body: "+err.Error())
	}
	return decoded, nil
}

// statusLineCode extracts the numeric code of the in-band status line
// (`RT/4.4.4 200 Ok`). It returns 0 when the line does not carry one.
func statusLineCode(msg string) int {
	line := firstLine(msg)
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return 0
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return code
}

// checkResponse scans a decoded body for the in-band errors RT reports
// with an HTTP 200.
func checkResponse(msg string) error {
	lines := strings.Split(msg, "\n")
	if len(lines) > 2 && reNotAllowed.MatchString(lines[2]) {
		return errors.NewNotAllowed(strings.TrimPrefix(lines[2], "# "))
	}
	if len(lines) > 0 {
		switch {
		case reCredentialsRequired.MatchString(lines[0]):
			return errors.NewAuthorization("credentials required")
		case reSyntaxError.MatchString(lines[0]):
			detail := "syntax error"
			if len(lines) > 2 {
				detail = strings.TrimPrefix(lines[2], "# ")
			}
			return errors.NewSyntaxError(detail)
		case reBadRequest.MatchString(lines[0]):
			detail := "bad request"
			if len(lines) > 3 {
				detail = lines[3]
			}
			return errors.NewBadRequest(detail)
		}
	}
	return nil
}

func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}

// firstComment returns the first `# ...` message line after the status
// line, for error details.
func firstComment(msg string) string {
	for _, line := range strings.Split(msg, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimPrefix(line, "# ")
		}
	}
	return firstLine(msg)
}
