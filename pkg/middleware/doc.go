// Package middleware provides the authentication guards and request
// environment resolution.
//
// # Guards
//
// DeveloperGuard verifies the Authorization credential against the
// production directory, loads the developer's extensions and rejects
// requests targeting an extension the developer does not own:
//
//	dev := middleware.NewDeveloperGuard(verifier, store, logger, instruments)
//	router.Handle("/meter", httputil.Serve(dev.Wrap(meterHandler), logger))
//
// UserGuard verifies an end-user credential, read from a configurable
// header, against the request's environment:
//
//	user := middleware.NewUserGuard(verifier, middleware.UserTokenHeader, logger, instruments)
//	router.Handle("/user", httputil.Serve(dev.Wrap(user.Wrap(userHandler)), logger))
//
// Both guards answer 401 on failed verification without revealing the
// reason, map a nil handler result to 204 and a handler error to 500.
//
// # Environment
//
// Environment must run before the guards; it resolves production or
// development from the x-roamjs-dev header once per request.
//
// # Related Packages
//
//   - pkg/auth: Credential verification
//   - pkg/registry: Extension ownership
package middleware
