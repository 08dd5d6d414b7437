package signing

import (
	_ "embed"
)

// Development key pair bundled at compile time. It backs NewSigner("", ...)
// so that local workflows and tests work without provisioning a key. Anything
// published for real consumption must be signed with an operator-supplied key.

//go:embed keys/dev-private.asc
var devKey []byte

//go:embed keys/dev-public.asc
var devPublicKey []byte

// DevPublicKey returns the armored public half of the bundled development key.
func DevPublicKey() []byte {
	out := make([]byte, len(devPublicKey))
	copy(out, devPublicKey)
	return out
}
