// Package signing wraps an OpenPGP key pair and provides the checksum and
// signature primitives used by archive fetching and publishing.
//
// A Signer computes streaming SHA-256 checksums over files, produces armored
// detached signatures over arbitrary bytes, and verifies signatures read from
// companion files against its public key. When no key file is supplied, a
// development key bundled with the binary is used.
package signing

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

const (
	// ChecksumBlockSize is the read chunk size for streaming checksums.
	ChecksumBlockSize = 4096

	// SignatureSuffix is appended to a file path to locate its detached
	// signature companion.
	SignatureSuffix = ".asc"
)

var (
	ErrEmptyKeyring = errors.New("signing: key file contains no keys")
	ErrNoPrivateKey = errors.New("signing: key has no private material")
)

// Signer holds an OpenPGP key pair loaded from an armored key file.
type Signer struct {
	entity  *openpgp.Entity
	keyring openpgp.EntityList
}

// NewSigner loads an armored OpenPGP key from keyPath. An empty keyPath
// resolves to the bundled development key. passphrase unlocks a protected
// private key and is ignored for unprotected keys.
func NewSigner(keyPath, passphrase string) (*Signer, error) {
	var source io.Reader
	if keyPath == "" {
		source = bytes.NewReader(devKey)
	} else {
		file, err := os.Open(keyPath)
		if err != nil {
			return nil, fmt.Errorf("open key file: %w", err)
		}
		defer file.Close()
		source = file
	}

	keyring, err := openpgp.ReadArmoredKeyRing(source)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	if len(keyring) == 0 {
		return nil, ErrEmptyKeyring
	}

	entity := keyring[0]
	if err := unlockEntity(entity, passphrase); err != nil {
		return nil, err
	}

	return &Signer{entity: entity, keyring: keyring}, nil
}

// unlockEntity decrypts the private key material of an entity, including
// subkeys, using the supplied passphrase.
func unlockEntity(entity *openpgp.Entity, passphrase string) error {
	if entity.PrivateKey != nil && entity.PrivateKey.Encrypted {
		if err := entity.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
			return fmt.Errorf("decrypt private key: %w", err)
		}
	}

	for _, subkey := range entity.Subkeys {
		if subkey.PrivateKey != nil && subkey.PrivateKey.Encrypted {
			if err := subkey.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
				return fmt.Errorf("decrypt subkey: %w", err)
			}
		}
	}

	return nil
}

// Checksum returns the hex-encoded SHA-256 digest of the file at path.
func (s *Signer) Checksum(path string) (string, error) {
	return FileChecksum(path)
}

// Sign produces an armored detached signature over data using the private key.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	if s.entity.PrivateKey == nil {
		return nil, ErrNoPrivateKey
	}

	var buf bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&buf, s.entity, bytes.NewReader(data), nil); err != nil {
		return nil, fmt.Errorf("detach sign: %w", err)
	}

	return buf.Bytes(), nil
}

// SignFile signs data and writes the signature to path + SignatureSuffix.
// This is the publishing-side companion to Verify.
func (s *Signer) SignFile(path string, data []byte) error {
	signature, err := s.Sign(data)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path+SignatureSuffix, signature, 0644); err != nil {
		return fmt.Errorf("write signature file: %w", err)
	}

	return nil
}

// Verify checks that the detached signature stored alongside path validates
// against expected using the held public key. Any failure surfaces as an
// error; a nil return is the only trusted outcome.
func (s *Signer) Verify(path string, expected []byte) error {
	sigFile, err := os.Open(path + SignatureSuffix)
	if err != nil {
		return fmt.Errorf("open signature file: %w", err)
	}
	defer sigFile.Close()

	_, err = openpgp.CheckArmoredDetachedSignature(s.keyring, bytes.NewReader(expected), sigFile, nil)
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}

	return nil
}

// FileChecksum computes the hex-encoded SHA-256 digest of a file in
// fixed-size chunks, holding constant memory regardless of file size.
func FileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	buf := make([]byte, ChecksumBlockSize)
	if _, err := io.CopyBuffer(hasher, file, buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
