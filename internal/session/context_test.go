package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHTTPRequest_ExistingSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	req.AddCookie(&http.Cookie{Name: IdentityCookieName, Value: "tok"})

	rc := FromHTTPRequest(req)

	assert.Equal(t, "sess-1", rc.SessionID())
	v, ok := rc.Cookie(IdentityCookieName)
	require.True(t, ok)
	assert.Equal(t, "tok", v)

	// no new session cookie queued
	assert.Empty(t, rc.Outbound())
}

func TestFromHTTPRequest_NewSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rc := FromHTTPRequest(req)

	require.NotEmpty(t, rc.SessionID())
	require.Len(t, rc.Outbound(), 1)

	cookie := rc.Outbound()[0]
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, rc.SessionID(), cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestRequestContext_SetCookieVisibleOnReread(t *testing.T) {
	rc := NewRequestContext("sess-1", nil)

	rc.SetCookie(IdentityCookieName, "tok", time.Hour)

	v, ok := rc.Cookie(IdentityCookieName)
	require.True(t, ok)
	assert.Equal(t, "tok", v)

	require.Len(t, rc.Outbound(), 1)
	assert.Positive(t, rc.Outbound()[0].MaxAge)
}

func TestRequestContext_ClearCookie(t *testing.T) {
	rc := NewRequestContext("sess-1", map[string]string{IdentityCookieName: "tok"})

	rc.ClearCookie(IdentityCookieName)

	_, ok := rc.Cookie(IdentityCookieName)
	assert.False(t, ok)

	require.Len(t, rc.Outbound(), 1)
	assert.Equal(t, -1, rc.Outbound()[0].MaxAge)
}

func TestRequestContext_Apply(t *testing.T) {
	rc := NewRequestContext("sess-1", nil)
	rc.SetCookie(IdentityCookieName, "tok", time.Hour)

	rec := httptest.NewRecorder()
	rc.Apply(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, IdentityCookieName, cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
}
