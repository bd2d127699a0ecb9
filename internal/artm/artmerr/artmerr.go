// Package artmerr defines the error taxonomy shared across the artm core.
//
// Callers compare with errors.Is against the sentinel values below; call
// sites wrap them with context via fmt.Errorf("...: %w", sentinel).
package artmerr

import "errors"

var (
	// InvalidArgument reports a malformed or inconsistent request: a
	// required field missing, parallel array sizes disagreeing, a
	// non-increasing update_after sequence, gamma outside [0,1], and so on.
	InvalidArgument = errors.New("artm: invalid argument")

	// NotFound reports that a named model, dictionary, regularizer, score,
	// or batch does not exist.
	NotFound = errors.New("artm: not found")

	// AlreadyExists reports a name collision on create.
	AlreadyExists = errors.New("artm: already exists")

	// CorruptedMessage reports that a serialized message could not be
	// parsed.
	CorruptedMessage = errors.New("artm: corrupted message")

	// DiskRead reports an I/O failure reading a batch, model, or
	// dictionary file.
	DiskRead = errors.New("artm: disk read failed")

	// DiskWrite reports an I/O failure writing a batch, model, or
	// dictionary file.
	DiskWrite = errors.New("artm: disk write failed")

	// InvalidOperation reports an operation that is well-formed but not
	// permitted in the current state: topic-count mismatch on
	// Merge/Overwrite, reconfiguring topics while attached, and so on.
	InvalidOperation = errors.New("artm: invalid operation")

	// Internal reports a runtime invariant violation. It is reported, not
	// silently coerced.
	Internal = errors.New("artm: internal error")
)
