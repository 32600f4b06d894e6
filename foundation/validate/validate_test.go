package validate_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ardanlabs/powledger/foundation/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type newTx struct {
	Sender   string `json:"sender" validate:"required,eth_addr"`
	Receiver string `json:"receiver" validate:"required,eth_addr"`
	Data     string `json:"data" validate:"required"`
}

func TestCheck(t *testing.T) {
	good := newTx{
		Sender:   "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4",
		Receiver: "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32",
		Data:     "Alice pays Bob 5",
	}
	require.NoError(t, validate.Check(good))

	bad := good
	bad.Sender = "bill"
	bad.Data = ""

	err := validate.Check(bad)
	require.Error(t, err)
	require.True(t, validate.IsFieldErrors(err))

	fields := validate.GetFieldErrors(fmt.Errorf("wrapped: %w", err)).Fields()
	assert.Len(t, fields, 2)
	assert.Contains(t, fields, "sender")
	assert.Equal(t, "data is a required field", fields["data"])

	assert.False(t, validate.IsFieldErrors(errors.New("plain")))
	assert.Nil(t, validate.GetFieldErrors(errors.New("plain")))
}
