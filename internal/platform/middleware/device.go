package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/mssola/useragent"

	"moreminutes/pkg/requestcontext"
)

// DeviceFingerprint derives a stable device identifier from request headers
// and injects it into the context. Anonymous predictions use it as the
// identity seed so guests see the same countdown across page loads from the
// same device. It is a best-effort identifier, not an auth mechanism.
func DeviceFingerprint(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := useragent.New(r.Header.Get("User-Agent"))
		browser, version := ua.Browser()

		h := sha256.New()
		h.Write([]byte(ua.OS()))
		h.Write([]byte(ua.Platform()))
		h.Write([]byte(browser))
		h.Write([]byte(version))
		h.Write([]byte(r.Header.Get("Accept-Language")))
		fingerprint := hex.EncodeToString(h.Sum(nil)[:16])

		ctx := requestcontext.WithDeviceID(r.Context(), fingerprint)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
