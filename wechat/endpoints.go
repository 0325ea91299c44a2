package wechat

// Endpoints holds the provider URLs a Session talks to. The zero value is
// not usable; start from DefaultEndpoints and override individual fields,
// which tests do to point a Session at a local fake.
type Endpoints struct {
	// Authorize is the user-facing consent page. The session never calls
	// it; AuthorizeURL only builds redirect URLs against it.
	Authorize string
	// Token exchanges an authorization code for an access token.
	Token string
	// Refresh trades a refresh token for a fresh access token.
	Refresh string
	// UserInfo returns the profile for an (access token, openid) pair.
	UserInfo string
}

// DefaultEndpoints returns the production WeChat endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Authorize: "https://open.weixin.qq.com/connect/oauth2/authorize",
		Token:     "https://api.weixin.qq.com/sns/oauth2/access_token",
		Refresh:   "https://api.weixin.qq.com/sns/oauth2/refresh_token",
		UserInfo:  "https://api.weixin.qq.com/sns/userinfo",
	}
}
