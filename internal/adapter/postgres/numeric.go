package postgres

import (
	"fmt"
	"math"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// Amounts are stored as NUMERIC(20,0) so the whole uint64 range fits.

func toNumeric(v uint64) pgtype.Numeric {
	return pgtype.Numeric{Int: new(big.Int).SetUint64(v), Valid: true}
}

func fromNumeric(n pgtype.Numeric) (uint64, error) {
	if !n.Valid {
		return 0, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return 0, fmt.Errorf("amount is not a finite number")
	}
	v := new(big.Int).Set(n.Int)
	if n.Exp != 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(n.Exp))), nil)
		if n.Exp > 0 {
			v.Mul(v, scale)
		} else {
			var rem big.Int
			v.QuoRem(v, scale, &rem)
			if rem.Sign() != 0 {
				return 0, fmt.Errorf("amount %s is not an integer", n.Int)
			}
		}
	}
	if v.Sign() < 0 || !v.IsUint64() {
		return 0, fmt.Errorf("amount %s out of range", v)
	}
	return v.Uint64(), nil
}

func abs(e int32) int32 {
	if e < 0 {
		return -e
	}
	return e
}

// toID converts a campaign id to the BIGINT column type. Ids beyond the
// column range cannot exist.
func toID(id uint64) (int64, bool) {
	if id > math.MaxInt64 {
		return 0, false
	}
	return int64(id), true
}
