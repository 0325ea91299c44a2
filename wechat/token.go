package wechat

import "time"

// TokenRecord is one user's token state as returned by the provider's token
// and refresh endpoints. CreatedAt is stamped locally by the Session at the
// moment the record is received, overwriting anything the provider sent, so
// expiry checks are always against the local clock.
type TokenRecord struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	OpenID       string `json:"openid"`
	Scope        string `json:"scope"`

	// CreatedAt is the local receipt time in epoch milliseconds.
	CreatedAt int64 `json:"created_at"`
}

// ValidAt reports whether the access token is usable at the given instant:
// the token must be non-empty and now must be strictly before
// CreatedAt + ExpiresIn. A token at its exact expiry instant is expired.
func (t *TokenRecord) ValidAt(now time.Time) bool {
	if t.AccessToken == "" {
		return false
	}
	return now.UnixMilli() < t.CreatedAt+t.ExpiresIn*1000
}
