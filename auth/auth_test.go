package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	return httptest.NewRequest(http.MethodGet, "http://tracker.example.com/REST/2.0/rt", nil)
}

func TestCredentialsLoginFlow(t *testing.T) {
	creds := NewCredentials("john", "hunter2")
	assert.Equal(t, MethodCredentials, creds.Method())
	assert.True(t, RequiresLogin(creds))
}

func TestBasicAppliesHeader(t *testing.T) {
	basic := NewBasic("john", "hunter2")
	assert.Equal(t, MethodBasic, basic.Method())
	assert.False(t, RequiresLogin(basic))

	req := newRequest(t)
	basic.Apply(req)
	user, pass, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "john", user)
	assert.Equal(t, "hunter2", pass)
}

func TestTokenAppliesHeader(t *testing.T) {
	token := NewToken("1-14-abc123")
	assert.False(t, RequiresLogin(token))

	req := newRequest(t)
	token.Apply(req)
	assert.Equal(t, "token 1-14-abc123", req.Header.Get("Authorization"))
}

func TestCookieAppliesCookies(t *testing.T) {
	cookie := NewCookie(&http.Cookie{Name: "RT_SID_example.443", Value: "abc"})
	assert.False(t, RequiresLogin(cookie))

	req := newRequest(t)
	cookie.Apply(req)
	got, err := req.Cookie("RT_SID_example.443")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Value)
}

func TestCustomDelegates(t *testing.T) {
	custom := NewCustom(func(req *http.Request) {
		req.Header.Set("X-Remote-User", "john")
	})
	assert.False(t, RequiresLogin(custom))

	req := newRequest(t)
	custom.Apply(req)
	assert.Equal(t, "john", req.Header.Get("X-Remote-User"))
}

func TestNoneLeavesRequestUntouched(t *testing.T) {
	none := NewNone()
	assert.False(t, RequiresLogin(none))

	req := newRequest(t)
	none.Apply(req)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestRequiresLoginNil(t *testing.T) {
	assert.False(t, RequiresLogin(nil))
}
