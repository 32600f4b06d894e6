package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLedger(t *testing.T) {
	tt := []struct {
		name   string
		err    error
		status int
	}{
		{name: "unverified", err: fmt.Errorf("%w: tx[0]", database.ErrUnverifiedTransaction), status: http.StatusBadRequest},
		{name: "account", err: database.ErrInvalidAccountID, status: http.StatusBadRequest},
		{name: "block", err: fmt.Errorf("%w: blk[9]", chain.ErrBlockNotFound), status: http.StatusNotFound},
		{name: "tx", err: state.ErrTxNotFound, status: http.StatusNotFound},
		{name: "cancelled", err: pow.ErrCancelled, status: http.StatusServiceUnavailable},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			err := errs.FromLedger(tst.err)

			require.True(t, errs.IsTrusted(err))
			assert.Equal(t, tst.status, errs.GetTrusted(err).Status)
			assert.ErrorIs(t, err, tst.err)
		})
	}

	assert.NoError(t, errs.FromLedger(nil))
	assert.True(t, web.IsShutdown(errs.FromLedger(chain.ErrEmptyChain)))

	plain := errors.New("plain")
	assert.Equal(t, plain, errs.FromLedger(plain))
	assert.False(t, errs.IsTrusted(plain))
	assert.Nil(t, errs.GetTrusted(plain))
}
