package core

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/floflo777/mbc20/core/model"
)

// EventSink receives committed settlement events, in order.
type EventSink interface {
	Append(ev model.Event)
}

// Verifier recovers the signer of a claim digest. Injected so the signing key
// and envelope format can be swapped independently of the ledger logic.
type Verifier interface {
	Verify(digest []byte, sig []byte) (common.Address, error)
}

// Chain is the execution environment the settlement contracts share: native
// currency accounts, deterministic contract addressing, and a transaction
// wrapper that serializes every public operation and unwinds all of its
// mutations on error. One mutex gives the single global operation sequence
// the ledger semantics assume.
type Chain struct {
	mu      sync.Mutex
	chainID uint64

	native    map[common.Address]*uint256.Int
	acctNonce map[common.Address]uint64
	contracts map[common.Address]any

	sink EventSink

	inTx   bool
	undo   []func()
	events []model.Event
}

func NewChain(chainID uint64) *Chain {
	return &Chain{
		chainID:   chainID,
		native:    make(map[common.Address]*uint256.Int),
		acctNonce: make(map[common.Address]uint64),
		contracts: make(map[common.Address]any),
	}
}

func (c *Chain) ChainID() uint64 { return c.chainID }

func (c *Chain) SetSink(s EventSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = s
}

// Fund credits native currency to an account (genesis allocation, faucet).
func (c *Chain) Fund(addr common.Address, amount *uint256.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bal := c.native[addr]
	if bal == nil {
		bal = uint256.NewInt(0)
	}
	c.native[addr] = new(uint256.Int).Add(bal, amount)
}

// NativeBalance reads an account's native currency balance.
func (c *Chain) NativeBalance(addr common.Address) *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if bal, ok := c.native[addr]; ok {
		return bal.Clone()
	}
	return uint256.NewInt(0)
}

// PredictAddress returns the address the deployer's (current nonce + offset)-th
// deployment will land on. Binds a gateway to its factory before the factory
// exists.
func (c *Chain) PredictAddress(deployer common.Address, offset uint64) common.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return crypto.CreateAddress(deployer, c.acctNonce[deployer]+offset)
}

// deploy assigns the next deterministic address for the deployer and registers
// the contract instance under it. Must be called with the chain lock held
// (constructors lock; in-transaction deploys already hold it).
func (c *Chain) deploy(deployer common.Address, contract any) common.Address {
	nonce := c.acctNonce[deployer]
	addr := crypto.CreateAddress(deployer, nonce)
	setMap(c, c.acctNonce, deployer, nonce+1)
	setMap(c, c.contracts, addr, contract)
	return addr
}

// deployLocked is the constructor entry point: takes the lock itself.
func (c *Chain) deployLocked(deployer common.Address, contract any) common.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deploy(deployer, contract)
}

func (c *Chain) tokenAt(addr common.Address) (*Token, bool) {
	t, ok := c.contracts[addr].(*Token)
	return t, ok
}

func (c *Chain) registryAt(addr common.Address) (Registry, bool) {
	r, ok := c.contracts[addr].(Registry)
	return r, ok
}

// transact runs one public operation atomically: the attached value moves from
// the caller to the callee contract up front, fn runs with the lock held, and
// any error rolls back every recorded mutation and drops buffered events.
func (c *Chain) transact(caller common.Address, value *uint256.Int, callee common.Address, fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inTx = true
	c.undo = c.undo[:0]
	c.events = c.events[:0]

	err := func() error {
		if value != nil && !value.IsZero() {
			if err := c.moveNative(caller, callee, value); err != nil {
				return err
			}
		}
		return fn()
	}()

	if err != nil {
		for i := len(c.undo) - 1; i >= 0; i-- {
			c.undo[i]()
		}
	} else if c.sink != nil {
		for _, ev := range c.events {
			c.sink.Append(ev)
		}
	}

	c.inTx = false
	c.undo = c.undo[:0]
	c.events = c.events[:0]
	return err
}

func (c *Chain) onRevert(fn func()) {
	if c.inTx {
		c.undo = append(c.undo, fn)
	}
}

func (c *Chain) emit(ev model.Event) {
	if c.inTx {
		c.events = append(c.events, ev)
	} else if c.sink != nil {
		c.sink.Append(ev)
	}
}

func (c *Chain) setNative(addr common.Address, v *uint256.Int) {
	setMap(c, c.native, addr, v)
}

// moveNative transfers native currency, failing on insufficient balance.
func (c *Chain) moveNative(from, to common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	fromBal := c.native[from]
	if fromBal == nil || fromBal.Lt(amount) {
		return model.ErrInsufficientBalance
	}
	toBal := c.native[to]
	if toBal == nil {
		toBal = uint256.NewInt(0)
	}
	c.setNative(from, new(uint256.Int).Sub(fromBal, amount))
	c.setNative(to, new(uint256.Int).Add(toBal, amount))
	return nil
}

// setMap records the previous binding for rollback before writing.
func setMap[K comparable, V any](c *Chain, m map[K]V, k K, v V) {
	old, had := m[k]
	c.onRevert(func() {
		if had {
			m[k] = old
		} else {
			delete(m, k)
		}
	})
	m[k] = v
}
