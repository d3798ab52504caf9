// Package drafts persists unsubmitted form values so a user can resume them.
//
// Values are CBOR-encoded with deterministic encoding and stored in Redis
// under prefix:owner:form with a TTL. [Autosaver] debounces writes so a
// burst of edits produces one save.
//
// # Architecture boundaries
//
// Drafts are keyed by an opaque owner string chosen by the caller (a user
// id, or an anonymous device id before login). This package never reads the
// session.
//
// # What this package must NOT do
//
//   - Store credentials. Callers must strip password fields before saving.
//   - Block the caller on Redis from Autosaver.Update.
package drafts
