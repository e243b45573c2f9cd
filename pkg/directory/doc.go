// Package directory resolves user identities from the external identity
// directory.
//
// Identities are owned by the directory and never copied into local storage.
// Each identity carries two attribute bags:
//
//   - private attributes, visible only to the server: the encrypted user
//     token, the billing customer id and the billing (connect) account id
//   - public attributes, keyed by the camelCase form of an extension id,
//     holding per-extension subscription data
//
// Lookups are environment scoped; production and development use separate
// directory API keys.
package directory
