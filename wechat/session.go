package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultScope is used when AuthorizeURL is called with an empty scope.
	DefaultScope = "snsapi_base"
	// DefaultLang is the locale sent with profile requests unless overridden.
	DefaultLang = "en"
)

// Config holds the application identity issued by the provider.
type Config struct {
	AppID  string
	Secret string
}

// UserProfile is the provider's profile payload, passed through verbatim.
// The upstream contract is not versioned here, so fields are kept opaque;
// callers that need specific fields must validate them.
type UserProfile map[string]any

// Session implements the WeChat authorization-code grant with a volatile,
// process-local token cache. Construct one per application identity and
// keep it for the application's lifetime; the cache lives on it.
//
// Concurrent calls are safe with the default store, but two simultaneous
// refreshes for the same openid may both hit the provider and the later
// response wins the cache slot.
type Session struct {
	cfg       Config
	endpoints Endpoints
	store     TokenStore
	client    *http.Client
	scope     string
	lang      string
	log       *zap.Logger
	now       func() time.Time
}

// Option configures a Session at construction.
type Option func(*Session)

// WithHTTPClient replaces the HTTP client used for provider calls. The
// session sets no timeouts of its own; supply a client with one, or bound
// individual calls through their context.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) { s.client = client }
}

// WithEndpoints replaces the provider endpoints, typically with a test fake.
func WithEndpoints(endpoints Endpoints) Option {
	return func(s *Session) { s.endpoints = endpoints }
}

// WithTokenStore replaces the default in-memory token cache, for sharing a
// cache across sessions or backing it with external storage.
func WithTokenStore(store TokenStore) Option {
	return func(s *Session) { s.store = store }
}

// WithScope sets the scope used when AuthorizeURL receives an empty one.
func WithScope(scope string) Option {
	return func(s *Session) { s.scope = scope }
}

// WithLang sets the locale code sent with profile requests.
func WithLang(lang string) Option {
	return func(s *Session) { s.lang = lang }
}

// WithLogger attaches a logger. Without it the session is silent.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.log = log }
}

// NewSession creates a session with an empty token cache. No network calls
// are made at construction.
func NewSession(cfg Config, opts ...Option) *Session {
	s := &Session{
		cfg:       cfg,
		endpoints: DefaultEndpoints(),
		store:     NewMemoryTokenStore(),
		client:    http.DefaultClient,
		scope:     DefaultScope,
		lang:      DefaultLang,
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthorizeURL builds the consent-page URL the browser should be redirected
// to. An empty scope falls back to the session's default scope; state is
// passed through as-is, empty included. Pure string construction, no I/O.
func (s *Session) AuthorizeURL(redirectURI, scope, state string) string {
	if scope == "" {
		scope = s.scope
	}
	q := url.Values{}
	q.Set("appid", s.cfg.AppID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", scope)
	q.Set("state", state)
	// The provider requires the literal fragment after the query string.
	return s.endpoints.Authorize + "?" + q.Encode() + "#wechat_redirect"
}

// ExchangeCode trades the authorization code from the provider's redirect
// callback for a token, caches it under the returned openid, and returns
// the cached record. A failed exchange leaves the cache untouched.
func (s *Session) ExchangeCode(ctx context.Context, code string) (*TokenRecord, error) {
	form := url.Values{}
	form.Set("appid", s.cfg.AppID)
	form.Set("secret", s.cfg.Secret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	return s.fetchToken(ctx, "exchange_code", s.endpoints.Token, form)
}

// RefreshToken obtains a fresh token using a refresh token from a prior
// record. The new record fully replaces the cached one for that openid.
func (s *Session) RefreshToken(ctx context.Context, refreshToken string) (*TokenRecord, error) {
	form := url.Values{}
	form.Set("appid", s.cfg.AppID)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return s.fetchToken(ctx, "refresh_token", s.endpoints.Refresh, form)
}

func (s *Session) fetchToken(ctx context.Context, op, endpoint string, form url.Values) (*TokenRecord, error) {
	var record TokenRecord
	body, err := s.postForm(ctx, op, endpoint, form, &record)
	if err != nil {
		return nil, err
	}
	if record.OpenID == "" {
		// Without an openid there is no cache key; the provider reports
		// errors as JSON bodies with a 200 status, which land here.
		return nil, &ProtocolError{Op: op, Status: http.StatusOK, Body: body}
	}
	record.CreatedAt = s.now().UnixMilli()
	s.store.Put(&record)
	s.log.Debug("token cached",
		zap.String("op", op),
		zap.String("openid", record.OpenID),
		zap.Int64("expires_in", record.ExpiresIn),
	)
	return &record, nil
}

// UserProfile fetches the profile for an openid that has previously
// completed a code exchange in this process. A valid cached access token is
// used directly; an expired one is refreshed first, transparently. If no
// token is cached the call fails with ErrNoToken before any network I/O.
func (s *Session) UserProfile(ctx context.Context, openid string) (UserProfile, error) {
	record, ok := s.store.Get(openid)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoToken, openid)
	}
	if !record.ValidAt(s.now()) {
		s.log.Debug("access token expired, refreshing", zap.String("openid", openid))
		refreshed, err := s.RefreshToken(ctx, record.RefreshToken)
		if err != nil {
			return nil, err
		}
		record = refreshed
	}

	form := url.Values{}
	form.Set("access_token", record.AccessToken)
	form.Set("openid", openid)
	form.Set("lang", s.lang)

	var profile UserProfile
	if _, err := s.postForm(ctx, "userinfo", s.endpoints.UserInfo, form, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UserProfileByCode is ExchangeCode followed by UserProfile on the returned
// openid, for callers that want the callback handler to be one call.
func (s *Session) UserProfileByCode(ctx context.Context, code string) (UserProfile, error) {
	record, err := s.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.UserProfile(ctx, record.OpenID)
}

// postForm sends a urlencoded POST and decodes the JSON response into out.
// It returns the raw body so callers can attach it to protocol errors.
func (s *Session) postForm(ctx context.Context, op, endpoint string, form url.Values, out any) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.log.Error("failed to close response body", zap.Error(closeErr))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProtocolError{Op: op, Status: resp.StatusCode, Body: body}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, &ProtocolError{Op: op, Status: resp.StatusCode, Body: body, Err: err}
	}
	return body, nil
}
