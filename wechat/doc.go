// Package wechat implements the WeChat web OAuth2 authorization-code flow:
// building the authorization URL, exchanging a callback code for an access
// token, refreshing expired tokens, and fetching user profiles by openid.
//
// A Session keeps a process-local token cache keyed by openid. Profile
// fetches reuse the cached access token and transparently refresh it once
// it has expired. The cache is volatile; nothing is persisted.
//
// The package is intended to be embedded in a web server's route handlers:
//
//	session := wechat.NewSession(wechat.Config{AppID: id, Secret: secret})
//
//	// GET /auth/login
//	http.Redirect(w, r, session.AuthorizeURL(callbackURL, "", state), http.StatusFound)
//
//	// GET /auth/callback?code=...
//	profile, err := session.UserProfileByCode(r.Context(), r.URL.Query().Get("code"))
package wechat
