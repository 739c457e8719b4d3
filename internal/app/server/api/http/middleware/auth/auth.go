package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Auth проверяет статический токен локального API.
// Пустой токен отключает проверку: API слушает только loopback.
type Auth struct {
	token string
	log   *slog.Logger
}

func New(token string, log *slog.Logger) *Auth {
	return &Auth{
		token: token,
		log:   log.With("component", "auth_middleware"),
	}
}

func (a *Auth) Enabled() bool {
	return a.token != ""
}

// Middleware возвращает middleware для Huma с сигнатурой func(ctx Context, next func(Context))
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !a.Enabled() {
			next(ctx)
			return
		}

		header := ctx.Header("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			a.log.Warn("rejected local API request", "path", ctx.URL().Path, "has_bearer", ok)
			unauthorized(ctx, a.log)
			return
		}

		next(ctx)
	}
}

func unauthorized(ctx huma.Context, log *slog.Logger) {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetStatus(http.StatusUnauthorized)
	if err := json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
		"error": "Unauthorized",
	}); err != nil {
		log.Error("encode unauthorized response", "error", err)
	}
}
