// Package api exposes the gateway's HTTP surface.
//
// # Routes
//
//	POST /meter    developer guard; applies a usage delta for a customer
//	GET  /user     developer guard then user guard on x-roamjs-token
//	POST /error    e-mails a client error report
//	GET  /healthz  liveness
//	GET  /readyz   readiness of the registration store
//	GET  /metrics  Prometheus exposition
//
// Every response carries the allowed browser origin. The environment
// partition is resolved once per request from the x-roamjs-dev header.
//
// # Usage
//
//	srv := api.NewServer(api.Config{
//		Verifier:  verifier,
//		Directory: dir,
//		Store:     store,
//		Billing:   reconciler,
//		Notifier:  notifier,
//		Logger:    logger,
//	})
//	http.ListenAndServe(":8080", srv)
package api
