// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logctx

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Middleware records [Fields] for every request. It expects to run after
// chi's RequestID and RealIP middleware. When sessionCookie is not empty
// the value of that cookie is recorded as the session id.
func Middleware(sessionCookie string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f := Fields{
				RequestID: middleware.GetReqID(r.Context()),
				IPAddress: stripPort(r.RemoteAddr),
				Domain:    stripPort(r.Host),
				StartTime: time.Now(),
			}
			if sessionCookie != "" {
				if c, err := r.Cookie(sessionCookie); err == nil {
					f.SessionID = c.Value
				}
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), f)))
		})
	}
}

func stripPort(hostport string) string {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport
	}
	return host
}
