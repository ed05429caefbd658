package domain

import (
	"fmt"
	"math"
)

// Money is an amount in minor currency units (cents).
type Money int64

// MaxBookingTotal is the upper bound accepted for a booking total.
const MaxBookingTotal Money = 100000 * 100

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Mul multiplies m by n. ok is false when the product does not fit in an
// int64.
func (m Money) Mul(n int) (product Money, ok bool) {
	if m == 0 || n == 0 {
		return 0, true
	}
	p := m * Money(n)
	if p/Money(n) != m || (n == -1 && m == math.MinInt64) {
		return 0, false
	}
	return p, true
}

// Times multiplies a per-passenger amount by a passenger count. A product
// that overflows saturates at the int64 bound of its sign.
func (m Money) Times(n int) Money {
	p, ok := m.Mul(n)
	if ok {
		return p
	}
	if (m < 0) != (n < 0) {
		return math.MinInt64
	}
	return math.MaxInt64
}

// Saturated reports whether m sits at an int64 bound, which no real amount
// reaches.
func (m Money) Saturated() bool {
	return m == math.MaxInt64 || m <= math.MinInt64+1
}
