// Package commitment implements the reporter identity scheme used by RoadGuard.
// A reporter derives a private 32-byte secret from a memorized passphrase and
// publishes only its keccak256 commitment, so reports can be attributed to an
// identity on-chain without revealing the secret (commit/reveal).
package commitment

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ValueLength is the byte width of secrets and commitments (keccak256 digest).
const ValueLength = 32

// ErrEmptyPassphrase is returned when an identity is requested for an empty passphrase.
var ErrEmptyPassphrase = errors.New("passphrase must not be empty")

var hexValueRe = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Identity is a reporter identity. Secret and Commitment are 0x-prefixed
// 64-hex-digit strings, each encoding a fixed 32-byte value.
type Identity struct {
	Secret     string `json:"secret"`
	Commitment string `json:"commitment"`
}

// Generate deterministically derives an identity from a passphrase:
// secret = keccak256(passphrase bytes), commitment = keccak256(secret bytes).
// The same passphrase always yields the same identity, so a reporter can
// recover theirs from the memorized phrase alone, with no stored state.
func Generate(passphrase string) (Identity, error) {
	if passphrase == "" {
		return Identity{}, ErrEmptyPassphrase
	}
	secret := crypto.Keccak256Hash([]byte(passphrase))
	commit := crypto.Keccak256Hash(secret.Bytes())
	return Identity{
		Secret:     secret.Hex(),
		Commitment: commit.Hex(),
	}, nil
}

// CommitmentOf recomputes the public commitment for a hex-encoded secret.
// Independent verifiers reproduce the same value from keccak256 over the
// secret packed as a fixed 32-byte word.
func CommitmentOf(secret string) (string, error) {
	if !IsHexValue(secret) {
		return "", fmt.Errorf("invalid secret: want 0x-prefixed 64 hex digits")
	}
	return crypto.Keccak256Hash(common.HexToHash(secret).Bytes()).Hex(), nil
}

// Valid reports whether the identity is well formed and the commitment is
// the keccak256 digest of the secret.
func (id Identity) Valid() bool {
	if !IsHexValue(id.Secret) || !IsHexValue(id.Commitment) {
		return false
	}
	want := crypto.Keccak256Hash(common.HexToHash(id.Secret).Bytes())
	return common.HexToHash(id.Commitment) == want
}

// WellFormed reports whether both fields carry the 0x + 64 hex digit format.
// Unlike Valid it does not check the derivation law, so identities restored
// from storage are accepted as written.
func (id Identity) WellFormed() bool {
	return IsHexValue(id.Secret) && IsHexValue(id.Commitment)
}

// CommitmentHash returns the commitment as a common.Hash for on-chain payloads.
func (id Identity) CommitmentHash() common.Hash {
	return common.HexToHash(id.Commitment)
}

// IsHexValue reports whether s is a 0x-prefixed 64-hex-digit string.
// Hex case is not significant.
func IsHexValue(s string) bool {
	return hexValueRe.MatchString(s)
}
