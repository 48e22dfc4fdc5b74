package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// NativeToken is the zero-address sentinel for orders priced in the native
// currency rather than the quote ERC-20.
var NativeToken = common.Address{}

// Order is a marketplace listing. Amount is the net escrowed quantity (the
// fee-on-transfer engine fires on the way into escrow) and only ever
// decreases. Active goes false on full fill or cancel and never comes back.
type Order struct {
	ID            uint64
	Seller        common.Address
	Token         common.Address
	Amount        *uint256.Int
	PricePerToken *uint256.Int
	PaymentToken  common.Address
	Active        bool
}

// TokenInfo is the registry record kept per deployed tick.
type TokenInfo struct {
	Deployer  common.Address
	MaxSupply *uint256.Int
	Burned    *uint256.Int // reference currency burned at deployment (V2)
}
