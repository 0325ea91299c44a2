// Package handler implements the HTTP routes of the demo server: the
// login redirect, the provider callback, and profile lookup. It is the
// embedding pattern the wechat package is designed for.
package handler

import (
	"errors"
	"net/http"

	"github.com/wxkit/wechat-oauth/internal/config"
	"github.com/wxkit/wechat-oauth/internal/logger"
	"github.com/wxkit/wechat-oauth/internal/utils"
	"github.com/wxkit/wechat-oauth/wechat"
	"go.uber.org/zap"
)

// Handler handles the OAuth flow routes
type Handler struct {
	session     *wechat.Session
	redirectURL string
}

// NewHandler creates a new Handler instance
func NewHandler(cfg *config.WeChatConfig, session *wechat.Session) *Handler {
	return &Handler{
		session:     session,
		redirectURL: cfg.RedirectURL,
	}
}

// HandleLogin redirects the browser to the provider's consent page. An
// optional state query parameter is passed through to the provider.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := r.URL.Query().Get("state")
	authURL := h.session.AuthorizeURL(h.redirectURL, r.URL.Query().Get("scope"), state)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleCallback receives the provider redirect, exchanges the code and
// responds with the user's profile.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		utils.WriteError(w, "invalid_request", "Code is required", http.StatusBadRequest)
		return
	}

	profile, err := h.session.UserProfileByCode(r.Context(), code)
	if err != nil {
		logger.Error("Failed to complete code exchange", zap.Error(err))
		writeSessionError(w, err)
		return
	}
	utils.WriteJSON(w, profile)
}

// HandleProfile returns the profile for a previously authorized openid,
// served from the cached token (refreshed transparently when expired).
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	openid := r.URL.Query().Get("openid")
	if openid == "" {
		utils.WriteError(w, "invalid_request", "Openid is required", http.StatusBadRequest)
		return
	}

	profile, err := h.session.UserProfile(r.Context(), openid)
	if err != nil {
		logger.Error("Failed to fetch profile", zap.String("openid", openid), zap.Error(err))
		writeSessionError(w, err)
		return
	}
	utils.WriteJSON(w, profile)
}

// HandleHealth handles the liveness probe
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, map[string]string{"status": "ok"})
}

// writeSessionError maps the session's error taxonomy onto HTTP statuses.
func writeSessionError(w http.ResponseWriter, err error) {
	var protoErr *wechat.ProtocolError
	var transportErr *wechat.TransportError

	switch {
	case errors.Is(err, wechat.ErrNoToken):
		utils.WriteError(w, "unauthorized", "No token for this openid, authorize first", http.StatusUnauthorized)
	case errors.As(err, &protoErr):
		utils.WriteError(w, "provider_error", err.Error(), http.StatusBadGateway)
	case errors.As(err, &transportErr):
		utils.WriteError(w, "provider_unreachable", err.Error(), http.StatusBadGateway)
	default:
		utils.WriteError(w, "internal_error", err.Error(), http.StatusInternalServerError)
	}
}
