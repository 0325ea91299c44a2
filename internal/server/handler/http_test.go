package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wxkit/wechat-oauth/internal/config"
	"github.com/wxkit/wechat-oauth/wechat"
)

// newTestHandler builds a Handler whose session talks to an httptest fake
// of the provider's token and userinfo endpoints.
func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/sns/oauth2/access_token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"AT-1","expires_in":7200,"refresh_token":"RT-1","openid":"U1","scope":"snsapi_userinfo"}`))
	})
	mux.HandleFunc("/sns/userinfo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"openid":"U1","nickname":"Pat"}`))
	})
	provider := httptest.NewServer(mux)
	t.Cleanup(provider.Close)

	cfg := &config.WeChatConfig{RedirectURL: "https://example.com/auth/callback"}
	session := wechat.NewSession(
		wechat.Config{AppID: "wx-test-app", Secret: "shh"},
		wechat.WithEndpoints(wechat.Endpoints{
			Authorize: provider.URL + "/connect/oauth2/authorize",
			Token:     provider.URL + "/sns/oauth2/access_token",
			Refresh:   provider.URL + "/sns/oauth2/refresh_token",
			UserInfo:  provider.URL + "/sns/userinfo",
		}),
	)
	return NewHandler(cfg, session)
}

func TestHandleLogin(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/login?state=xyzzy", nil)
	h.HandleLogin(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	q := location.Query()
	assert.Equal(t, "wx-test-app", q.Get("appid"))
	assert.Equal(t, "https://example.com/auth/callback", q.Get("redirect_uri"))
	assert.Equal(t, "xyzzy", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
}

func TestHandleLoginMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	h.HandleLogin(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleCallback(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=the-code", nil)
	h.HandleCallback(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var profile map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "Pat", profile["nickname"])

	// The exchange populated the cache, so the profile route works now.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/auth/profile?openid=U1", nil)
	h.HandleProfile(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleCallbackMissingCode(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	h.HandleCallback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleProfileUnknownOpenID(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/profile?openid=nobody", nil)
	h.HandleProfile(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body["error"])
}

func TestHandleProfileMissingOpenID(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	h.HandleProfile(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	h.HandleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
