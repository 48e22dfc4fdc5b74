package model

import "github.com/holiman/uint256"

// WeiPerToken is the smallest-unit scale: 1 token = 1e18 wei.
var WeiPerToken = uint256.NewInt(1e18)

// Ether returns n whole tokens in wei.
func Ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), WeiPerToken)
}

// MulDiv computes a*b/den with a 512-bit intermediate, flooring the result.
func MulDiv(a, b, den *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, den)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// BpsOf returns amount*bps/10000, floored.
func BpsOf(amount *uint256.Int, bps uint16) (*uint256.Int, error) {
	return MulDiv(amount, uint256.NewInt(uint64(bps)), uint256.NewInt(10000))
}
