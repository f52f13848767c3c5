package ctxkeys

import (
	"context"

	"github.com/mycloudbox/mycloudbox/internal/config"
	"github.com/mycloudbox/mycloudbox/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey       contextKey = "user"
	CookieAuthKey contextKey = "cookie_auth"
	ConfigKey     contextKey = "config"
	CSRFTokenKey  contextKey = "csrf_token"
)

func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// CookieAuth reports whether the request was authenticated by the session
// cookie rather than an Authorization header.
func CookieAuth(ctx context.Context) bool {
	v, _ := ctx.Value(CookieAuthKey).(bool)
	return v
}

func WithCookieAuth(ctx context.Context, fromCookie bool) context.Context {
	return context.WithValue(ctx, CookieAuthKey, fromCookie)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}

func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFTokenKey).(string)
	return token
}

func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CSRFTokenKey, token)
}
