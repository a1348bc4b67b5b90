package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

func TestFrameValidate(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		ok    bool
	}{
		{name: "valid", frame: Frame{Size: 3, Cells: make([]int8, 9)}, ok: true},
		{name: "valid with heat", frame: Frame{Size: 2, Cells: make([]int8, 4), Heat: make([]float64, 4)}, ok: true},
		{name: "zero size", frame: Frame{}},
		{name: "negative size", frame: Frame{Size: -2, Cells: make([]int8, 4)}},
		{name: "too many cells", frame: Frame{Size: 2, Cells: make([]int8, 9)}},
		{name: "too few cells", frame: Frame{Size: 3, Cells: make([]int8, 8)}},
		{name: "heat mismatch", frame: Frame{Size: 2, Cells: make([]int8, 4), Heat: make([]float64, 3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, types.ErrInvalidGrid)
		})
	}
}
