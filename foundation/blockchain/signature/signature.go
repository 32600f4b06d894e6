// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// Set of errors returned when a signature does not check out.
var (
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrInvalidRecoveryID = errors.New("invalid recovery id")
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// =============================================================================

// Digest is the fixed length output of the ledger hash function.
type Digest [sha256.Size]byte

// Hash returns the sha256 digest for the specified data. This is a total
// function, any byte slice including nil produces a digest.
func Hash(data []byte) Digest {
	return sha256.Sum256(data)
}

// Hex returns the lowercase hex encoding of the digest without a 0x prefix.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Bytes returns the digest as a slice of bytes.
func (d Digest) Bytes() []byte {
	return d[:]
}

// String implements the fmt.Stringer interface.
func (d Digest) String() string {
	return d.Hex()
}

// =============================================================================

// Sign uses the specified private key to sign the data. The signature is the
// 65 byte [R|S|V] format and the public key is the 65 byte uncompressed form.
func Sign(data []byte, privateKey *ecdsa.PrivateKey) (sig []byte, publicKey []byte, err error) {

	// Prepare the data for signing.
	digest := stamp(data)

	// Sign the hash with the private key to produce a signature.
	sig, err = crypto.Sign(digest, privateKey)
	if err != nil {
		return nil, nil, err
	}

	// Check the public key extracted from the data and signature matches
	// the key we signed with.
	publicKey = crypto.FromECDSAPub(&privateKey.PublicKey)
	if err := Verify(data, sig, publicKey); err != nil {
		return nil, nil, err
	}

	return sig, publicKey, nil
}

// Verify checks the signature was produced over the data by the private key
// that belongs to the specified public key.
func Verify(data []byte, sig []byte, publicKey []byte) error {
	if len(sig) != crypto.SignatureLength {
		return ErrInvalidSignature
	}

	if _, err := crypto.UnmarshalPubkey(publicKey); err != nil {
		return ErrInvalidPublicKey
	}

	// Check the recovery id is either 0 or 1.
	v := sig[crypto.RecoveryIDOffset]
	if v != 0 && v != 1 {
		return ErrInvalidRecoveryID
	}

	// Check the signature values are valid.
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, false) {
		return ErrInvalidSignature
	}

	digest := stamp(data)

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(publicKey, digest, rs) {
		return ErrInvalidSignature
	}

	// The recovery id must point back at the same key.
	recovered, err := crypto.Ecrecover(digest, sig)
	if err != nil || !bytes.Equal(recovered, publicKey) {
		return ErrInvalidSignature
	}

	return nil
}

// Address returns the 0x prefixed, checksummed address for the specified
// uncompressed public key.
func Address(publicKey []byte) (string, error) {
	pk, err := crypto.UnmarshalPubkey(publicKey)
	if err != nil {
		return "", ErrInvalidPublicKey
	}

	return crypto.PubkeyToAddress(*pk).Hex(), nil
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this data with
// the ledger stamp embedded into the final hash.
func stamp(data []byte) []byte {

	// Hash the data into a 32 byte array. This will provide
	// a data length consistency with all data.
	txHash := crypto.Keccak256(data)

	// This stamp is used so signatures we produce when signing data
	// are always unique to this ledger.
	stamp := []byte("\x19Ledger Signed Message:\n32")

	return crypto.Keccak256(stamp, txHash)
}
