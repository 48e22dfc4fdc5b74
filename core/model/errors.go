package model

import "errors"

// Every failure in the settlement core is one of these sentinels, surfaced to
// the caller verbatim. Operations either complete or fail atomically; there is
// no partial application and no retry path.
var (
	// authorization
	ErrOnlyOwner    = errors.New("only owner")
	ErrOnlyMinter   = errors.New("only minter")
	ErrOnlyTreasury = errors.New("only treasury")
	ErrOnlyAdmin    = errors.New("only admin")
	ErrOnlyDeployer = errors.New("only deployer")
	ErrNotSeller    = errors.New("not seller")

	// validation
	ErrZeroAmount          = errors.New("zero amount")
	ErrLengthMismatch      = errors.New("length mismatch")
	ErrInvalidPaymentToken = errors.New("invalid payment token")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrInvalidNonce        = errors.New("invalid nonce")
	ErrInvalidTick         = errors.New("invalid tick")

	// state
	ErrTokenAlreadyExists = errors.New("token already exists")
	ErrTokenNotFound      = errors.New("token not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotActive     = errors.New("order not active")
	ErrNothingToClaim     = errors.New("nothing to claim")

	// economic
	ErrInsufficientFee         = errors.New("insufficient fee")
	ErrInsufficientPayment     = errors.New("insufficient payment")
	ErrInsufficientOrderAmount = errors.New("insufficient order amount")
	ErrNoETHExpected           = errors.New("no ETH expected")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrInsufficientAllowance   = errors.New("insufficient allowance")
	ErrExceedsMaxSupply        = errors.New("exceeds max supply")
	ErrOverflow                = errors.New("arithmetic overflow")
)
