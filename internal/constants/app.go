package constants

// Cookie settings for the refresh token. The token is only ever sent to the
// refresh and logout endpoints.
const (
	RefreshTokenCookie     = "refresh_token"
	RefreshTokenCookiePath = "/auth"
)

// Public URL prefix under which avatar files are served.
const AvatarURLPrefix = "/static/avatars"
