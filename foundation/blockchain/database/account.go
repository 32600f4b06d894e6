package database

import (
	"crypto/ecdsa"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidAccountID is returned when an account id is not a properly
// formatted hex address.
var ErrInvalidAccountID = errors.New("invalid account format")

// AccountID represents an account id that is used to sign transactions and is
// associated with transactions on the blockchain. The id is derived from the
// public key of the account, so a signer public key can always be checked
// against the id it claims.
type AccountID string

// ToAccountID converts a hex-encoded string to an account and validates the
// hex-encoded string is formatted correctly.
func ToAccountID(hex string) (AccountID, error) {
	a := AccountID(hex)
	if !a.IsAccountID() {
		return "", ErrInvalidAccountID
	}

	return a, nil
}

// PublicKeyToAccountID converts the public key to an account value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(crypto.PubkeyToAddress(pk).Hex())
}

// IsAccountID verifies whether the underlying data represents a valid
// hex-encoded account.
func (a AccountID) IsAccountID() bool {
	const addressLength = 20

	if has0xPrefix(a) {
		a = a[2:]
	}

	return len(a) == 2*addressLength && isHex(a)
}

// Equal reports whether both ids name the same account. The comparison
// ignores the 0x prefix and hex letter case.
func (a AccountID) Equal(other AccountID) bool {
	if !a.IsAccountID() || !other.IsAccountID() {
		return false
	}

	return a.address() == other.address()
}

// Checksum returns the id in its 0x prefixed, mixed case checksum form.
func (a AccountID) Checksum() AccountID {
	return AccountID(a.address().Hex())
}

// address returns the fixed 20 byte form of the id used in canonical
// encodings.
func (a AccountID) address() common.Address {
	return common.HexToAddress(strings.ToLower(string(a)))
}

// =============================================================================

// has0xPrefix validates the account starts with a 0x.
func has0xPrefix(a AccountID) bool {
	return len(a) >= 2 && a[0] == '0' && (a[1] == 'x' || a[1] == 'X')
}

// isHex validates whether each byte is valid hexadecimal string.
func isHex(a AccountID) bool {
	if len(a)%2 != 0 {
		return false
	}

	for _, c := range []byte(a) {
		if !isHexCharacter(c) {
			return false
		}
	}

	return true
}

// isHexCharacter returns bool of c being a valid hexadecimal.
func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
