package gm

import "github.com/holiman/uint256"

// MulDiv computes (n0 * n1) / d in a 256-bit intermediate so the product never
// overflows, returning ErrDivideByZero when d is zero and ErrMathOverflow when
// the quotient leaves the 64-bit domain. With roundUp the ceiling is taken via
// ceil(a/b) = (a + b - 1) / b; otherwise the result is floored.
func MulDiv(n0, n1, d uint64, roundUp bool) (uint64, error) {
	if d == 0 {
		return 0, ErrDivideByZero
	}
	p := new(uint256.Int).Mul(uint256.NewInt(n0), uint256.NewInt(n1))
	if roundUp {
		p.AddUint64(p, d-1)
	}
	p.Div(p, uint256.NewInt(d))
	if !p.IsUint64() {
		return 0, ErrMathOverflow
	}
	return p.Uint64(), nil
}

// NormalizeDecimals rescales amount between two decimal precisions. Scaling up
// multiplies by a power of ten and fails with ErrMathOverflow when the result
// exceeds 64 bits; scaling down divides, optionally taking the ceiling.
func NormalizeDecimals(amount uint64, fromDecimals, toDecimals uint8, roundUp bool) (uint64, error) {
	switch {
	case toDecimals > fromDecimals:
		scaled := new(uint256.Int).Mul(uint256.NewInt(amount), pow10(toDecimals-fromDecimals))
		if !scaled.IsUint64() {
			return 0, ErrMathOverflow
		}
		return scaled.Uint64(), nil
	case fromDecimals > toDecimals:
		d := pow10(fromDecimals - toDecimals)
		n := uint256.NewInt(amount)
		if roundUp {
			n.Add(n, new(uint256.Int).SubUint64(d, 1))
		}
		n.Div(n, d)
		if !n.IsUint64() {
			return 0, ErrMathOverflow
		}
		return n.Uint64(), nil
	default:
		return amount, nil
	}
}

func pow10(n uint8) *uint256.Int {
	p := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := uint8(0); i < n; i++ {
		p.Mul(p, ten)
	}
	return p
}
