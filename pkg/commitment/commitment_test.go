package commitment

import (
	"regexp"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var hexValuePattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

func TestGenerateDeterministic(t *testing.T) {
	first, err := Generate("test_passphrase")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := Generate("test_passphrase")
	if err != nil {
		t.Fatalf("Generate (2nd call) failed: %v", err)
	}

	if first.Secret != second.Secret {
		t.Errorf("secrets differ across calls: %s vs %s", first.Secret, second.Secret)
	}
	if first.Commitment != second.Commitment {
		t.Errorf("commitments differ across calls: %s vs %s", first.Commitment, second.Commitment)
	}
}

func TestGenerateDistinctPassphrases(t *testing.T) {
	a, err := Generate("correct horse battery staple")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := Generate("correct horse battery stapl")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if a.Secret == b.Secret {
		t.Error("different passphrases produced the same secret")
	}
	if a.Commitment == b.Commitment {
		t.Error("different passphrases produced the same commitment")
	}
}

func TestGenerateFormat(t *testing.T) {
	id, err := Generate("test_passphrase")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !hexValuePattern.MatchString(id.Secret) {
		t.Errorf("secret %q does not match 0x + 64 hex digits", id.Secret)
	}
	if !hexValuePattern.MatchString(id.Commitment) {
		t.Errorf("commitment %q does not match 0x + 64 hex digits", id.Commitment)
	}
}

func TestGenerateDerivationLaw(t *testing.T) {
	id, err := Generate("test_passphrase")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// commitment must equal keccak256 over the secret packed as bytes32
	want := crypto.Keccak256Hash(common.HexToHash(id.Secret).Bytes()).Hex()
	if id.Commitment != want {
		t.Errorf("commitment %s does not match keccak256(secret) %s", id.Commitment, want)
	}

	got, err := CommitmentOf(id.Secret)
	if err != nil {
		t.Fatalf("CommitmentOf failed: %v", err)
	}
	if got != id.Commitment {
		t.Errorf("CommitmentOf returned %s, want %s", got, id.Commitment)
	}
}

func TestGenerateEmptyPassphrase(t *testing.T) {
	_, err := Generate("")
	if err != ErrEmptyPassphrase {
		t.Errorf("expected ErrEmptyPassphrase, got %v", err)
	}
}

func TestCommitmentOfInvalidSecret(t *testing.T) {
	for _, secret := range []string{"", "0x1234", "not-hex", "0x" + string(make([]byte, 64))} {
		if _, err := CommitmentOf(secret); err == nil {
			t.Errorf("expected error for secret %q", secret)
		}
	}
}

func TestIdentityValid(t *testing.T) {
	id, err := Generate("test_passphrase")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !id.Valid() {
		t.Error("generated identity should be valid")
	}

	// A format-correct but mismatched pair is well formed yet not valid.
	other, err := Generate("another passphrase")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	forged := Identity{Secret: id.Secret, Commitment: other.Commitment}
	if forged.Valid() {
		t.Error("identity with mismatched commitment reported valid")
	}
	if !forged.WellFormed() {
		t.Error("forged identity should still be well formed")
	}
}

func TestIsHexValue(t *testing.T) {
	id, _ := Generate("p")
	cases := []struct {
		in   string
		want bool
	}{
		{id.Secret, true},
		{id.Commitment, true},
		{"0x" + strings.ToUpper(id.Secret[2:]), true}, // case-insensitive
		{id.Secret[2:], false},                        // missing prefix
		{id.Secret + "00", false},                     // too long
		{"0x1234", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsHexValue(c.in); got != c.want {
			t.Errorf("IsHexValue(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
