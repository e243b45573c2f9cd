package middleware

import (
	"net/http"

	"github.com/roamjs/gateway/pkg/environment"
)

// Environment resolves the request's environment once from the
// x-roamjs-dev header and stores it in the request context
func Environment(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := environment.WithEnvironment(r.Context(), environment.FromHeader(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
