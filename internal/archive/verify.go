package archive

import (
	"fmt"
	"os"

	"github.com/heavyprofile/hprofile/internal/signing"
)

// Verify performs the full trust check on an already-downloaded artifact.
//
// The file is re-hashed in fixed-size chunks and compared against its
// checksum companion at path+ChecksumSuffix, exact byte match against the
// companion's full contents. On mismatch this fails with
// *ChecksumMismatchError. The detached signature alongside the file is then
// validated over the checksum's raw bytes; a failure there is
// *SignatureInvalidError. Only a nil return makes the artifact trusted.
func Verify(path string, signer *signing.Signer) error {
	actual, err := signing.FileChecksum(path)
	if err != nil {
		return fmt.Errorf("checksum %s: %w", path, err)
	}

	expected, err := os.ReadFile(path + ChecksumSuffix)
	if err != nil {
		return fmt.Errorf("read checksum companion: %w", err)
	}

	if actual != string(expected) {
		return &ChecksumMismatchError{Path: path, Expected: string(expected), Actual: actual}
	}

	if err := signer.Verify(path, []byte(actual)); err != nil {
		return &SignatureInvalidError{Path: path, Err: err}
	}

	return nil
}
