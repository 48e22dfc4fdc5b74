package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/floflo777/mbc20/core/model"
)

// Marketplace is a fully on-chain order book over mbc-20 ledgers. Sellers
// escrow tokens into the marketplace address; buyers fill fully or partially
// in native currency or the configured quote token. The marketplace is meant
// to be flagged as a pool on traded tokens, so both the escrow-in and
// escrow-out transfers bear the transfer fee.
type Marketplace struct {
	chain  *Chain
	addr   common.Address
	quote  common.Address
	orders []*model.Order
}

func NewMarketplace(chain *Chain, deployer, quote common.Address) *Marketplace {
	m := &Marketplace{chain: chain, quote: quote}
	m.addr = chain.deployLocked(deployer, m)
	return m
}

func (m *Marketplace) Address() common.Address { return m.addr }
func (m *Marketplace) Quote() common.Address   { return m.quote }

func (m *Marketplace) OrderCount() uint64 {
	m.chain.mu.Lock()
	defer m.chain.mu.Unlock()
	return uint64(len(m.orders))
}

// Order returns a snapshot of an order.
func (m *Marketplace) Order(id uint64) (model.Order, bool) {
	m.chain.mu.Lock()
	defer m.chain.mu.Unlock()
	if id >= uint64(len(m.orders)) {
		return model.Order{}, false
	}
	o := m.orders[id]
	return model.Order{
		ID:            o.ID,
		Seller:        o.Seller,
		Token:         o.Token,
		Amount:        o.Amount.Clone(),
		PricePerToken: o.PricePerToken.Clone(),
		PaymentToken:  o.PaymentToken,
		Active:        o.Active,
	}, true
}

// List escrows amount tokens from the seller and opens an order. The stored
// order amount is the net quantity that actually reached escrow after the
// transfer fee.
func (m *Marketplace) List(caller, token common.Address, amount, pricePerToken *uint256.Int, paymentToken common.Address) (uint64, error) {
	var id uint64
	err := m.chain.transact(caller, nil, m.addr, func() error {
		if paymentToken != model.NativeToken && paymentToken != m.quote {
			return model.ErrInvalidPaymentToken
		}
		tok, ok := m.chain.tokenAt(token)
		if !ok {
			return model.ErrTokenNotFound
		}
		if amount.IsZero() {
			return model.ErrZeroAmount
		}
		before := tok.balanceOf(m.addr).Clone()
		if err := tok.spendAllowance(caller, m.addr, amount); err != nil {
			return err
		}
		if err := tok.transfer(caller, m.addr, amount); err != nil {
			return err
		}
		escrowed := new(uint256.Int).Sub(tok.balanceOf(m.addr), before)

		id = uint64(len(m.orders))
		order := &model.Order{
			ID:            id,
			Seller:        caller,
			Token:         token,
			Amount:        escrowed,
			PricePerToken: pricePerToken.Clone(),
			PaymentToken:  paymentToken,
			Active:        true,
		}
		n := len(m.orders)
		m.chain.onRevert(func() { m.orders = m.orders[:n] })
		m.orders = append(m.orders, order)

		m.chain.emit(model.ListedEvent{
			OrderID:  id,
			Seller:   caller,
			Token:    token,
			Amount:   amount.Clone(),
			Price:    pricePerToken.Clone(),
			Payment:  paymentToken,
			Escrowed: escrowed.Clone(),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Buy fills an order fully or partially. Cost is amount*pricePerToken/1e18 in
// the order's payment asset; the payment leg carries no marketplace fee, only
// the token leg is fee-bearing via the ledger.
func (m *Marketplace) Buy(caller common.Address, orderID uint64, amount, value *uint256.Int) error {
	return m.chain.transact(caller, value, m.addr, func() error {
		if orderID >= uint64(len(m.orders)) {
			return model.ErrOrderNotFound
		}
		order := m.orders[orderID]
		if !order.Active {
			return model.ErrOrderNotActive
		}
		if amount.IsZero() {
			return model.ErrZeroAmount
		}
		if amount.Gt(order.Amount) {
			return model.ErrInsufficientOrderAmount
		}
		cost, err := model.MulDiv(amount, order.PricePerToken, model.WeiPerToken)
		if err != nil {
			return err
		}

		if order.PaymentToken == model.NativeToken {
			paid := value
			if paid == nil {
				paid = uint256.NewInt(0)
			}
			if paid.Lt(cost) {
				return model.ErrInsufficientPayment
			}
			if err := m.chain.moveNative(m.addr, order.Seller, cost); err != nil {
				return err
			}
			excess := new(uint256.Int).Sub(paid, cost)
			if !excess.IsZero() {
				if err := m.chain.moveNative(m.addr, caller, excess); err != nil {
					return err
				}
			}
		} else {
			if value != nil && !value.IsZero() {
				return model.ErrNoETHExpected
			}
			quote, ok := m.chain.tokenAt(order.PaymentToken)
			if !ok {
				return model.ErrInvalidPaymentToken
			}
			if err := quote.spendAllowance(caller, m.addr, cost); err != nil {
				return err
			}
			if err := quote.transfer(caller, order.Seller, cost); err != nil {
				return err
			}
		}

		tok, ok := m.chain.tokenAt(order.Token)
		if !ok {
			return model.ErrTokenNotFound
		}
		if err := tok.transfer(m.addr, caller, amount); err != nil {
			return err
		}

		remaining := new(uint256.Int).Sub(order.Amount, amount)
		m.setOrder(order, remaining, !remaining.IsZero())

		m.chain.emit(model.OrderFilledEvent{
			OrderID:   orderID,
			Buyer:     caller,
			Amount:    amount.Clone(),
			Cost:      cost.Clone(),
			Remaining: remaining.Clone(),
		})
		return nil
	})
}

// Cancel returns the remaining escrow to the seller and closes the order for
// good; a cancelled order is never reactivated.
func (m *Marketplace) Cancel(caller common.Address, orderID uint64) error {
	return m.chain.transact(caller, nil, m.addr, func() error {
		if orderID >= uint64(len(m.orders)) {
			return model.ErrOrderNotFound
		}
		order := m.orders[orderID]
		if order.Seller != caller {
			return model.ErrNotSeller
		}
		if !order.Active {
			return model.ErrOrderNotActive
		}
		tok, ok := m.chain.tokenAt(order.Token)
		if !ok {
			return model.ErrTokenNotFound
		}
		if err := tok.transfer(m.addr, caller, order.Amount); err != nil {
			return err
		}
		returned := order.Amount.Clone()
		m.setOrder(order, order.Amount, false)

		m.chain.emit(model.OrderCancelledEvent{
			OrderID:  orderID,
			Seller:   caller,
			Returned: returned,
		})
		return nil
	})
}

func (m *Marketplace) setOrder(o *model.Order, amount *uint256.Int, active bool) {
	oldAmount, oldActive := o.Amount, o.Active
	m.chain.onRevert(func() { o.Amount, o.Active = oldAmount, oldActive })
	o.Amount, o.Active = amount, active
}
