package public

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/validate"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// newData is what a client sends to append an opaque block.
type newData struct {
	Data string `json:"data" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (nd newData) Validate() error {
	return validate.Check(nd)
}

// newTx is what a wallet sends to submit or verify a transaction.
type newTx struct {
	Sender          string `json:"sender" validate:"required,eth_addr"`
	Receiver        string `json:"receiver" validate:"required,eth_addr"`
	Amount          uint64 `json:"amount"`
	Signature       []byte `json:"signature" validate:"required"`
	SignerPublicKey []byte `json:"signer_public_key" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (nt newTx) Validate() error {
	return validate.Check(nt)
}

func (nt newTx) toTx() database.Tx {
	return database.Tx{
		Sender:          database.AccountID(nt.Sender),
		Receiver:        database.AccountID(nt.Receiver),
		Amount:          nt.Amount,
		Signature:       nt.Signature,
		SignerPublicKey: nt.SignerPublicKey,
	}
}

// =============================================================================

type tx struct {
	Hash         string             `json:"hash"`
	Sender       database.AccountID `json:"sender"`
	SenderName   string             `json:"sender_name"`
	Receiver     database.AccountID `json:"receiver"`
	ReceiverName string             `json:"receiver_name"`
	Amount       uint64             `json:"amount"`
	Sig          string             `json:"sig"`
}

type verification struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type status struct {
	Status string `json:"status"`
	Hash   string `json:"hash,omitempty"`
}

func toTx(dbTx database.Tx, lookup func(database.AccountID) string) tx {
	return tx{
		Hash:         dbTx.Hash().Hex(),
		Sender:       dbTx.Sender,
		SenderName:   lookup(dbTx.Sender),
		Receiver:     dbTx.Receiver,
		ReceiverName: lookup(dbTx.Receiver),
		Amount:       dbTx.Amount,
		Sig:          hexutil.Encode(dbTx.Signature),
	}
}

func toVerification(err error) verification {
	if err != nil {
		return verification{Error: err.Error()}
	}
	return verification{Valid: true}
}
