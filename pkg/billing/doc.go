// Package billing reconciles metered and licensed extension usage with the
// billing provider.
//
// # Overview
//
// Each registered extension carries a provider price id. A customer is
// subscribed to an extension when one of their subscription items uses that
// price. Reconcile locates that item and applies a usage delta according to
// the item's usage type:
//
//   - licensed: the item quantity becomes current + delta
//   - metered: a usage record with action "increment" is created for delta,
//     timestamped with the current time truncated to seconds
//
// Reconcile performs no retries and no deduplication. Two identical calls
// produce two usage records.
//
// # Errors
//
// Every unsuccessful reconciliation returns a *Error carrying the HTTP status
// and message the caller should respond with:
//
//	outcome, err := reconciler.Reconcile(ctx, billing.UsageRequest{
//		ExtensionID: "query-builder",
//		CustomerID:  "cus_123",
//		Quantity:    10,
//		Environment: environment.Production,
//	})
//	var berr *billing.Error
//	if errors.As(err, &berr) {
//		http.Error(w, berr.Message, berr.Status)
//	}
//
// # Related Packages
//
//   - pkg/registry: extension registrations and their price ids
//   - pkg/environment: production/development partition selection
package billing
