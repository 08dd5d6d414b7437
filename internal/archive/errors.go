package archive

import "fmt"

// NotFoundError reports that the remote artifact does not exist: the
// existence probe returned a non-success status.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("archive not found: %s", e.URL)
}

// IntegrityError reports that freshly downloaded bytes do not match the
// expected checksum. The corrupt file is left on disk for inspection.
type IntegrityError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("bad checksum for %s:\nactual:   %s\nexpected: %s", e.Path, e.Actual, e.Expected)
}

// ChecksumMismatchError reports that an on-disk file does not match its
// .sha256 companion during full verification.
type ChecksumMismatchError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s:\nactual:   %s\nexpected: %s", e.Path, e.Actual, e.Expected)
}

// SignatureInvalidError reports that the checksum matched but the signature
// over it did not verify. This indicates tampering or the wrong key; callers
// must refuse to use the artifact.
type SignatureInvalidError struct {
	Path string
	Err  error
}

func (e *SignatureInvalidError) Error() string {
	return fmt.Sprintf("invalid signature for %s: %v", e.Path, e.Err)
}

func (e *SignatureInvalidError) Unwrap() error {
	return e.Err
}

// ArchiveError reports that a download completed but a post-check failed for
// a reason not covered by a more specific error kind.
type ArchiveError struct {
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive error for %s: %v", e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}
