// Package httputil provides the request/response plumbing shared by guards
// and handlers.
//
// # Handlers
//
// Handlers return a *Result instead of writing the response, so guards can
// wrap them and map their outcome:
//
//	func meter(r *http.Request) (*httputil.Result, error) {
//		return httputil.OK(map[string]string{"id": recordID}), nil
//	}
//	router.Handle("/meter", httputil.Serve(guard.Wrap(meter), logger))
//
// A nil result is written as 204 and an error as 500 with the error's
// message. String bodies are written as text/plain, other bodies as JSON.
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.AllowOriginMiddleware("https://roamresearch.com", headers),
//		httputil.MaxBytesMiddleware(1<<20),
//	)
//
// # Related Packages
//
//   - pkg/middleware: Authentication guards
package httputil
