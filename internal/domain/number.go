package domain

import (
	"database/sql/driver"
	"encoding/json"
	"math"
	"strconv"
)

// Number is an optional numeric field. The zero value is absent and is
// stored as NULL.
type Number struct {
	Float64 float64
	Valid   bool
}

func NumberOf(v float64) Number {
	return Number{Float64: v, Valid: true}
}

func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(n.String()), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = Number{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = NumberOf(v)
	return nil
}

// Value implements driver.Valuer. Whole numbers are sent as int64 so they
// bind cleanly to INTEGER columns on every driver.
func (n Number) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	if n.Float64 == math.Trunc(n.Float64) && math.Abs(n.Float64) < 1<<53 {
		return int64(n.Float64), nil
	}
	return n.Float64, nil
}
