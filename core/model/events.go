package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Event is a settlement-state change notification. Events are buffered while
// an operation runs and only reach the sink if the operation commits; the
// external indexer rebuilds its database by replaying them in order.
type Event interface {
	Kind() string
}

type TokenCreatedEvent struct {
	Tick      string         `json:"tick"`
	Token     common.Address `json:"token"`
	Deployer  common.Address `json:"deployer"`
	MaxSupply *uint256.Int   `json:"maxSupply"`
}

type ClaimedEvent struct {
	Tick   string         `json:"tick"`
	Wallet common.Address `json:"wallet"`
	Total  *uint256.Int   `json:"total"`
	Minted *uint256.Int   `json:"minted"`
	Nonce  uint64         `json:"nonce"`
}

type AirdroppedEvent struct {
	Tick   string         `json:"tick"`
	Wallet common.Address `json:"wallet"`
	Minted *uint256.Int   `json:"minted"`
}

type TransferEvent struct {
	Tick   string         `json:"tick"`
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Amount *uint256.Int   `json:"amount"`
}

// FeeEvent is the burn-accounting side effect of a pool transfer, distinct
// from a holder-initiated burn.
type FeeEvent struct {
	Tick     string         `json:"tick"`
	Payer    common.Address `json:"payer"`
	Gross    *uint256.Int   `json:"gross"`
	Burned   *uint256.Int   `json:"burned"`
	Discount uint16         `json:"discountBps"`
}

type BurnedEvent struct {
	Tick       string         `json:"tick"`
	Wallet     common.Address `json:"wallet"`
	Amount     *uint256.Int   `json:"amount"`
	Cumulative *uint256.Int   `json:"cumulative"`
}

type PoolSetEvent struct {
	Tick string         `json:"tick"`
	Pool common.Address `json:"pool"`
	Flag bool           `json:"flag"`
}

type OwnershipRenouncedEvent struct {
	Tick  string         `json:"tick"`
	Owner common.Address `json:"owner"`
}

type ListedEvent struct {
	OrderID  uint64         `json:"orderId"`
	Seller   common.Address `json:"seller"`
	Token    common.Address `json:"token"`
	Amount   *uint256.Int   `json:"amount"`
	Price    *uint256.Int   `json:"pricePerToken"`
	Payment  common.Address `json:"paymentToken"`
	Escrowed *uint256.Int   `json:"escrowed"`
}

type OrderFilledEvent struct {
	OrderID   uint64         `json:"orderId"`
	Buyer     common.Address `json:"buyer"`
	Amount    *uint256.Int   `json:"amount"`
	Cost      *uint256.Int   `json:"cost"`
	Remaining *uint256.Int   `json:"remaining"`
}

type OrderCancelledEvent struct {
	OrderID  uint64         `json:"orderId"`
	Seller   common.Address `json:"seller"`
	Returned *uint256.Int   `json:"returned"`
}

type DeploymentCostChangedEvent struct {
	Cost *uint256.Int `json:"cost"`
}

func (TokenCreatedEvent) Kind() string          { return "token_created" }
func (ClaimedEvent) Kind() string               { return "claimed" }
func (AirdroppedEvent) Kind() string            { return "airdropped" }
func (TransferEvent) Kind() string              { return "transfer" }
func (FeeEvent) Kind() string                   { return "fee" }
func (BurnedEvent) Kind() string                { return "burned" }
func (PoolSetEvent) Kind() string               { return "pool_set" }
func (OwnershipRenouncedEvent) Kind() string    { return "ownership_renounced" }
func (ListedEvent) Kind() string                { return "listed" }
func (OrderFilledEvent) Kind() string           { return "order_filled" }
func (OrderCancelledEvent) Kind() string        { return "order_cancelled" }
func (DeploymentCostChangedEvent) Kind() string { return "deployment_cost_changed" }
