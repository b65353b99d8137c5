package testutil

import (
	"net/http"
	"time"

	"moreminutes/pkg/requestcontext"
)

// WithUserID stamps an authenticated user ID on the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithUserID(req *http.Request, userID string) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithDeviceID stamps a device fingerprint on the request context, as the
// fingerprint middleware would.
func WithDeviceID(req *http.Request, deviceID string) *http.Request {
	return req.WithContext(requestcontext.WithDeviceID(req.Context(), deviceID))
}

// WithTime pins the request-scoped clock so handlers under test see a
// deterministic "now".
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
