// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/validate"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(evt); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Blocks returns every block in the chain in its serialized form.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveExport(), http.StatusOK)
}

// BlockByNumber returns the specified block. The number "latest" returns the
// last block in the chain.
func (h Handlers) BlockByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.block(web.Param(r, "number"))
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, database.NewBlockData(block), http.StatusOK)
}

// BlocksByAccount returns the blocks holding transactions for the account.
func (h Handlers) BlocksByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := database.ToAccountID(web.Param(r, "account"))
	if err != nil {
		return errs.FromLedger(err)
	}

	blocks := h.State.QueryBlocksByAccount(accountID)
	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	out := make([]database.BlockData, len(blocks))
	for i, block := range blocks {
		out[i] = database.NewBlockData(block)
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// ValidateChain recomputes every hash and link in the chain.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	err := h.State.ValidateChain()
	if err != nil {
		h.Log.Errorw("validate chain", "traceid", web.GetTraceID(ctx), "ERROR", err)
	}

	return web.Respond(ctx, w, toVerification(err), http.StatusOK)
}

// AppendData mines a new block holding an opaque text payload.
func (h Handlers) AppendData(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nd newData
	if err := decode(r, &nd); err != nil {
		return err
	}

	block, err := h.State.AppendData(ctx, nd.Data)
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.Respond(ctx, w, database.NewBlockData(block), http.StatusCreated)
}

// SubmitWalletTransaction adds a new signed transaction to the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nt newTx
	if err := decode(r, &nt); err != nil {
		return err
	}

	tx := nt.toTx()

	h.Log.Infow("submit tx", "traceid", web.GetTraceID(ctx), "sender", tx.Sender, "receiver", tx.Receiver, "amount", tx.Amount)

	if err := h.State.SubmitWalletTransaction(tx); err != nil {
		return errs.FromLedger(err)
	}

	resp := status{
		Status: "transaction added to mempool",
		Hash:   tx.Hash().Hex(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// VerifyTransaction reports whether a transaction carries a valid signature
// from its sender.
func (h Handlers) VerifyTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nt newTx
	if err := decode(r, &nt); err != nil {
		return err
	}

	err := h.State.VerifyTransaction(nt.toTx())

	return web.Respond(ctx, w, toVerification(err), http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mempool := h.State.RetrieveMempool()

	trans := make([]tx, len(mempool))
	for i, tran := range mempool {
		trans[i] = toTx(tran, h.NS.Lookup)
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Proof returns the merkle proof that a transaction is part of a block.
func (h Handlers) Proof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.block(web.Param(r, "number"))
	if err != nil {
		return err
	}

	proof, err := h.State.QueryProof(block.Header.Number, web.Param(r, "hash"))
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.Respond(ctx, w, proof, http.StatusOK)
}

// =============================================================================

// decode reads the request body. Anything other than a field validation
// failure is reported as a bad request.
func decode(r *http.Request, val any) error {
	err := web.Decode(r, val)
	if err == nil || validate.IsFieldErrors(err) {
		return err
	}

	return errs.NewTrusted(err, http.StatusBadRequest)
}

// block looks up the block named by the number parameter. The value
// "latest" names the tip of the chain.
func (h Handlers) block(param string) (database.Block, error) {
	if param == "latest" {
		block, err := h.State.RetrieveLatestBlock()
		if err != nil {
			return database.Block{}, errs.FromLedger(err)
		}
		return block, nil
	}

	number, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return database.Block{}, errs.NewTrusted(fmt.Errorf("invalid block number %q", param), http.StatusBadRequest)
	}

	block, err := h.State.QueryBlock(number)
	if err != nil {
		return database.Block{}, errs.FromLedger(err)
	}

	return block, nil
}
