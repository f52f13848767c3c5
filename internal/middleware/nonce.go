package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

// nonceKey is separate from templ's internal key so SecurityHeaders can
// read the nonce when it builds the CSP header
type nonceKey struct{}

// NonceMiddleware generates a random nonce per request. Templates read it
// with templ.GetNonce(ctx) and SecurityHeaders puts it into script-src and
// style-src, so only inline blocks carrying the nonce run.
func NonceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce, err := generateNonce()
		if err != nil {
			// Continue without nonce: the CSP then blocks every inline block
			slog.Error("failed to generate csp nonce", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		ctx := templ.WithNonce(r.Context(), nonce)
		ctx = context.WithValue(ctx, nonceKey{}, nonce)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetNonce retrieves the nonce from context for use in middleware
// (templates should use templ.GetNonce() instead)
func GetNonce(ctx context.Context) string {
	nonce, _ := ctx.Value(nonceKey{}).(string)
	return nonce
}

// generateNonce returns 16 random bytes, base64 encoded
func generateNonce() (string, error) {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
