package trm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopRunsFn(t *testing.T) {
	want := errors.New("boom")
	calls := 0

	err := Nop{}.Do(context.Background(), func(ctx context.Context) error {
		calls++
		_, ok := Tx(ctx)
		assert.False(t, ok)
		return want
	})

	require.ErrorIs(t, err, want)
	assert.Equal(t, 1, calls)
}

func TestTxMissing(t *testing.T) {
	tx, ok := Tx(context.Background())
	assert.False(t, ok)
	assert.Nil(t, tx)
}
