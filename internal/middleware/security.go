package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mycloudbox/mycloudbox/internal/config"
	"github.com/mycloudbox/mycloudbox/internal/ctxkeys"
)

// SecurityHeaders sets the browser hardening headers. Stored files are
// served from the storage URL, so it is allowed as an image and media source.
// Must run after Config and NonceMiddleware.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := ctxkeys.Config(r.Context())

		mediaSrc := "'self'"
		if base := storageOrigin(cfg); base != "" {
			mediaSrc += " " + base
		}

		scriptSrc := "'self'"
		if nonce := GetNonce(r.Context()); nonce != "" {
			scriptSrc += fmt.Sprintf(" 'nonce-%s'", nonce)
		}

		csp := strings.Join([]string{
			"default-src 'self'",
			"script-src " + scriptSrc,
			"style-src " + scriptSrc,
			"img-src " + mediaSrc + " data:",
			"media-src " + mediaSrc,
			"frame-src " + mediaSrc,
			"object-src 'none'",
			"base-uri 'self'",
			"frame-ancestors 'none'",
		}, "; ")

		h := w.Header()
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if cfg != nil && cfg.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

// storageOrigin is the scheme://host that stored file URLs point at.
func storageOrigin(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}

	base := cfg.S3PublicURL
	if base == "" {
		base = cfg.S3Endpoint
	}
	if base == "" && cfg.StorageDriver == config.StorageDriverS3 && cfg.S3Bucket != "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}

	scheme, rest, ok := strings.Cut(base, "://")
	if !ok {
		return ""
	}
	host, _, _ := strings.Cut(rest, "/")
	return scheme + "://" + host
}
