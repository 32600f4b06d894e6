package database

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/rlp"
)

// Set of errors related to signing and verifying transactions.
var (
	ErrInvalidKeyState       = errors.New("transaction is already signed")
	ErrMissingSignature      = errors.New("transaction is not signed")
	ErrSenderMismatch        = errors.New("signer public key does not belong to the sender")
	ErrUnverifiedTransaction = errors.New("unverified transaction")
)

// =============================================================================

// Tx is a transfer of value between two accounts. A transaction is created
// unsigned and is signed exactly once by the sender.
type Tx struct {
	Sender          AccountID `json:"sender"`                      // Account paying the amount.
	Receiver        AccountID `json:"receiver"`                    // Account receiving the amount.
	Amount          uint64    `json:"amount"`                      // Unit-less value being transferred.
	Signature       []byte    `json:"signature,omitempty"`         // [R|S|V] signature, nil until signed.
	SignerPublicKey []byte    `json:"signer_public_key,omitempty"` // Uncompressed public key, nil until signed.
}

// NewTx constructs a new unsigned transaction. The accounts are stored in
// their checksum form, the only form Validate accepts.
func NewTx(sender AccountID, receiver AccountID, amount uint64) (Tx, error) {
	if !sender.IsAccountID() {
		return Tx{}, fmt.Errorf("sender: %w", ErrInvalidAccountID)
	}

	if !receiver.IsAccountID() {
		return Tx{}, fmt.Errorf("receiver: %w", ErrInvalidAccountID)
	}

	tx := Tx{
		Sender:   sender.Checksum(),
		Receiver: receiver.Checksum(),
		Amount:   amount,
	}

	return tx, nil
}

// CanonicalBytes returns the RLP encoding of the list [sender, receiver,
// amount] where the accounts are encoded as their 20 byte form. The
// signature and public key are not part of the signed document.
func (tx Tx) CanonicalBytes() []byte {
	sender := tx.Sender.address()
	receiver := tx.Receiver.address()

	w := rlp.NewEncoderBuffer(nil)
	l := w.List()
	w.WriteBytes(sender[:])
	w.WriteBytes(receiver[:])
	w.WriteUint64(tx.Amount)
	w.ListEnd(l)

	return w.ToBytes()
}

// IsSigned reports whether any signing material is attached.
func (tx Tx) IsSigned() bool {
	return len(tx.Signature) > 0 || len(tx.SignerPublicKey) > 0
}

// Sign uses the specified private key to sign the transaction. A transaction
// can only be signed once, signing again returns ErrInvalidKeyState and
// leaves the transaction untouched.
func (tx *Tx) Sign(privateKey *ecdsa.PrivateKey) error {
	if tx.IsSigned() {
		return ErrInvalidKeyState
	}

	if !tx.Sender.IsAccountID() || !tx.Receiver.IsAccountID() {
		return ErrInvalidAccountID
	}

	if !tx.Sender.Equal(PublicKeyToAccountID(privateKey.PublicKey)) {
		return ErrSenderMismatch
	}

	tx.Sender = tx.Sender.Checksum()
	tx.Receiver = tx.Receiver.Checksum()

	sig, pub, err := signature.Sign(tx.CanonicalBytes(), privateKey)
	if err != nil {
		return err
	}

	tx.Signature = sig
	tx.SignerPublicKey = pub

	return nil
}

// Validate verifies the transaction has a signature that was produced by
// the sender over the canonical bytes of this transaction.
func (tx Tx) Validate() error {
	if len(tx.Signature) == 0 || len(tx.SignerPublicKey) == 0 {
		return ErrMissingSignature
	}

	if !tx.Sender.IsAccountID() || !tx.Receiver.IsAccountID() {
		return ErrInvalidAccountID
	}

	// The hashes cover the 20 byte form of the accounts, so only one spelling
	// of each account is accepted.
	if tx.Sender != tx.Sender.Checksum() || tx.Receiver != tx.Receiver.Checksum() {
		return fmt.Errorf("%w: not in checksum form", ErrInvalidAccountID)
	}

	address, err := signature.Address(tx.SignerPublicKey)
	if err != nil {
		return err
	}

	if !tx.Sender.Equal(AccountID(address)) {
		return ErrSenderMismatch
	}

	return signature.Verify(tx.CanonicalBytes(), tx.Signature, tx.SignerPublicKey)
}

// Verify is the fail closed form of Validate. It returns true only when
// every check passes.
func (tx Tx) Verify() bool {
	return tx.Validate() == nil
}

// Hash returns the digest of the transaction as it's recorded inside a block.
// Unlike the canonical bytes, this covers the signature and public key.
func (tx Tx) Hash() signature.Digest {
	w := rlp.NewEncoderBuffer(nil)
	l := w.List()
	w.WriteBytes(tx.CanonicalBytes())
	w.WriteBytes(tx.Signature)
	w.WriteBytes(tx.SignerPublicKey)
	w.ListEnd(l)

	return signature.Hash(w.ToBytes())
}

// Equals reports whether both transactions carry the same content and the
// same signature.
func (tx Tx) Equals(otherTx Tx) bool {
	return bytes.Equal(tx.CanonicalBytes(), otherTx.CanonicalBytes()) &&
		bytes.Equal(tx.Signature, otherTx.Signature) &&
		bytes.Equal(tx.SignerPublicKey, otherTx.SignerPublicKey)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%d", tx.Sender, tx.Receiver, tx.Amount)
}

// clone returns a deep copy so the signature bytes are not shared.
func (tx Tx) clone() Tx {
	tx.Signature = bytes.Clone(tx.Signature)
	tx.SignerPublicKey = bytes.Clone(tx.SignerPublicKey)
	return tx
}
