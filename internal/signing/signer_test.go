package signing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewSignerDefaultKey(t *testing.T) {
	signer, err := NewSigner("", "")
	if err != nil {
		t.Fatalf("load bundled key: %v", err)
	}

	if signer.entity.PrivateKey == nil {
		t.Error("bundled key should carry private material")
	}
}

func TestNewSignerMissingFile(t *testing.T) {
	_, err := NewSigner(filepath.Join(t.TempDir(), "no-such-key.asc"), "")
	if err == nil {
		t.Fatal("expected error for missing key file")
	}
}

func TestNewSignerGarbageFile(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "garbage.asc")
	if err := os.WriteFile(keyPath, []byte("not a key"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := NewSigner(keyPath, "")
	if err == nil {
		t.Fatal("expected error for garbage key file")
	}
}

func TestNewSignerProtectedKey(t *testing.T) {
	tests := []struct {
		name       string
		passphrase string
		wantErr    bool
	}{
		{
			name:       "correct_passphrase",
			passphrase: "opensesame",
			wantErr:    false,
		},
		{
			name:       "wrong_passphrase",
			passphrase: "letmein",
			wantErr:    true,
		},
		{
			name:       "empty_passphrase",
			passphrase: "",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSigner(filepath.Join("testdata", "protected-private.asc"), tt.passphrase)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFileChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob")

	// Larger than one checksum block to exercise the chunked path
	content := strings.Repeat("heavyprofile", 1024)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	want := sha256.Sum256([]byte(content))

	got, err := FileChecksum(path)
	if err != nil {
		t.Fatalf("checksum: %v", err)
	}

	if got != hex.EncodeToString(want[:]) {
		t.Errorf("checksum mismatch:\ngot:  %s\nwant: %s", got, hex.EncodeToString(want[:]))
	}
}

func TestFileChecksumMissingFile(t *testing.T) {
	_, err := FileChecksum(filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	signer, err := NewSigner("", "")
	if err != nil {
		t.Fatalf("load bundled key: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "artifact")
	if err := os.WriteFile(path, []byte("artifact bytes"), 0600); err != nil {
		t.Fatal(err)
	}

	checksum, err := signer.Checksum(path)
	if err != nil {
		t.Fatalf("checksum: %v", err)
	}

	if err := signer.SignFile(path, []byte(checksum)); err != nil {
		t.Fatalf("sign file: %v", err)
	}

	if _, err := os.Stat(path + SignatureSuffix); err != nil {
		t.Fatalf("signature companion not written: %v", err)
	}

	if err := signer.Verify(path, []byte(checksum)); err != nil {
		t.Errorf("verify should succeed for freshly signed checksum: %v", err)
	}
}

func TestVerifyRejectsTamperedData(t *testing.T) {
	signer, err := NewSigner("", "")
	if err != nil {
		t.Fatalf("load bundled key: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "artifact")
	if err := os.WriteFile(path, []byte("artifact bytes"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := signer.SignFile(path, []byte("original checksum")); err != nil {
		t.Fatalf("sign file: %v", err)
	}

	if err := signer.Verify(path, []byte("tampered checksum")); err == nil {
		t.Error("verify must fail when signed data does not match")
	}
}

func TestVerifyMissingSignature(t *testing.T) {
	signer, err := NewSigner("", "")
	if err != nil {
		t.Fatalf("load bundled key: %v", err)
	}

	path := filepath.Join(t.TempDir(), "artifact")
	if err := os.WriteFile(path, []byte("bytes"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := signer.Verify(path, []byte("whatever")); err == nil {
		t.Error("verify must fail when no signature companion exists")
	}
}

func TestSignRequiresPrivateKey(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "public.asc")
	if err := os.WriteFile(keyPath, DevPublicKey(), 0600); err != nil {
		t.Fatal(err)
	}

	signer, err := NewSigner(keyPath, "")
	if err != nil {
		t.Fatalf("load public key: %v", err)
	}

	_, err = signer.Sign([]byte("data"))
	if !errors.Is(err, ErrNoPrivateKey) {
		t.Errorf("expected ErrNoPrivateKey, got %v", err)
	}
}

func TestVerifyWithPublicKeyOnly(t *testing.T) {
	// Sign with the bundled private key, verify with only the public half.
	privSigner, err := NewSigner("", "")
	if err != nil {
		t.Fatalf("load bundled key: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "artifact")
	if err := os.WriteFile(path, []byte("bytes"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := privSigner.SignFile(path, []byte("checked bytes")); err != nil {
		t.Fatalf("sign file: %v", err)
	}

	pubPath := filepath.Join(dir, "public.asc")
	if err := os.WriteFile(pubPath, DevPublicKey(), 0600); err != nil {
		t.Fatal(err)
	}

	pubSigner, err := NewSigner(pubPath, "")
	if err != nil {
		t.Fatalf("load public key: %v", err)
	}

	if err := pubSigner.Verify(path, []byte("checked bytes")); err != nil {
		t.Errorf("public-key verification should succeed: %v", err)
	}
}
