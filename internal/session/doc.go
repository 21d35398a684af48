// Package session owns the operator's session credential.
//
// The credential is kept in two places: the local store (metadata table) and
// the access_token cookie. Manager is the only code that writes either copy,
// and every write or clear touches both. The store copy is authoritative: the
// API client and page handlers read it through Get. The cookie is a routing
// hint read by the guard through FromRequest.
//
// Tokens are treated as opaque, except that a JWT exp claim, when present, is
// read without verification to give the credential a local expiry.
package session
