package postgres

import (
	"math"
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 100, math.MaxUint64} {
		got, err := fromNumeric(toNumeric(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestFromNumeric(t *testing.T) {
	tests := []struct {
		name    string
		in      pgtype.Numeric
		want    uint64
		wantErr bool
	}{
		{"null reads as zero", pgtype.Numeric{}, 0, false},
		{"positive exponent", pgtype.Numeric{Int: big.NewInt(12), Exp: 2, Valid: true}, 1200, false},
		{"integral negative exponent", pgtype.Numeric{Int: big.NewInt(1200), Exp: -2, Valid: true}, 12, false},
		{"fraction", pgtype.Numeric{Int: big.NewInt(1234), Exp: -2, Valid: true}, 0, true},
		{"negative", pgtype.Numeric{Int: big.NewInt(-1), Valid: true}, 0, true},
		{"nan", pgtype.Numeric{NaN: true, Valid: true}, 0, true},
		{"too large", pgtype.Numeric{Int: new(big.Int).Lsh(big.NewInt(1), 64), Valid: true}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fromNumeric(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToID(t *testing.T) {
	id, ok := toID(42)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = toID(math.MaxInt64 + 1)
	assert.False(t, ok)
}
