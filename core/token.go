package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/floflo777/mbc20/core/model"
)

type allowanceKey struct {
	owner   common.Address
	spender common.Address
}

// TokenConfig fixes everything immutable about a token at creation: supply
// cap, the single minter, the fee schedule and where each component routes.
type TokenConfig struct {
	Name      string
	Symbol    string
	Tick      string
	MaxSupply *uint256.Int
	Minter    common.Address
	Owner     common.Address
	Schedule  Schedule
	Routes    map[string]common.Address
}

// Token is one tick's ledger: balances, allowances, the pool set that makes
// transfers fee-bearing, and the cumulative self-burn totals that drive the
// discount tiers. All mutation goes through the chain's transaction wrapper.
type Token struct {
	chain *Chain
	addr  common.Address

	name      string
	symbol    string
	tick      string
	maxSupply *uint256.Int
	minter    common.Address
	schedule  Schedule
	routes    map[string]common.Address

	totalSupply *uint256.Int
	owner       authority
	balances    map[common.Address]*uint256.Int
	allowances  map[allowanceKey]*uint256.Int
	pools       map[common.Address]bool
	burnedBy    map[common.Address]*uint256.Int
}

func makeToken(chain *Chain, cfg TokenConfig) *Token {
	routes := make(map[string]common.Address, len(cfg.Routes))
	for role, addr := range cfg.Routes {
		routes[role] = addr
	}
	return &Token{
		chain:       chain,
		name:        cfg.Name,
		symbol:      cfg.Symbol,
		tick:        cfg.Tick,
		maxSupply:   cfg.MaxSupply.Clone(),
		minter:      cfg.Minter,
		schedule:    cfg.Schedule,
		routes:      routes,
		totalSupply: uint256.NewInt(0),
		owner:       newAuthority(cfg.Owner),
		balances:    make(map[common.Address]*uint256.Int),
		allowances:  make(map[allowanceKey]*uint256.Int),
		pools:       make(map[common.Address]bool),
		burnedBy:    make(map[common.Address]*uint256.Int),
	}
}

// NewToken deploys a standalone token ledger.
func NewToken(chain *Chain, deployer common.Address, cfg TokenConfig) *Token {
	t := makeToken(chain, cfg)
	t.addr = chain.deployLocked(deployer, t)
	return t
}

// newTokenInTx deploys from inside a running transaction (factory path).
func newTokenInTx(chain *Chain, deployer common.Address, cfg TokenConfig) *Token {
	t := makeToken(chain, cfg)
	t.addr = chain.deploy(deployer, t)
	return t
}

// ───────────────────────── public operations ─────────────────────────

func (t *Token) Transfer(caller, to common.Address, amount *uint256.Int) error {
	return t.chain.transact(caller, nil, t.addr, func() error {
		return t.transfer(caller, to, amount)
	})
}

func (t *Token) Approve(caller, spender common.Address, amount *uint256.Int) error {
	return t.chain.transact(caller, nil, t.addr, func() error {
		setMap(t.chain, t.allowances, allowanceKey{caller, spender}, amount.Clone())
		return nil
	})
}

func (t *Token) TransferFrom(caller, from, to common.Address, amount *uint256.Int) error {
	return t.chain.transact(caller, nil, t.addr, func() error {
		if err := t.spendAllowance(from, caller, amount); err != nil {
			return err
		}
		return t.transfer(from, to, amount)
	})
}

// Mint creates new supply. Restricted to the single configured minter; the
// claim gateway is the only minter for factory-deployed tokens.
func (t *Token) Mint(caller, to common.Address, amount *uint256.Int) error {
	return t.chain.transact(caller, nil, t.addr, func() error {
		if caller != t.minter {
			return model.ErrOnlyMinter
		}
		return t.mint(to, amount)
	})
}

// Burn destroys the caller's own tokens and grows their cumulative burned
// total, the sole driver of discount eligibility.
func (t *Token) Burn(caller common.Address, amount *uint256.Int) error {
	return t.chain.transact(caller, nil, t.addr, func() error {
		return t.burnAs(caller, amount)
	})
}

func (t *Token) SetPool(caller, pool common.Address, flag bool) error {
	return t.chain.transact(caller, nil, t.addr, func() error {
		if !t.owner.is(caller) {
			return model.ErrOnlyOwner
		}
		setMap(t.chain, t.pools, pool, flag)
		t.chain.emit(model.PoolSetEvent{Tick: t.tick, Pool: pool, Flag: flag})
		return nil
	})
}

// RenounceOwnership is one-way: every owner-gated call fails forever after.
func (t *Token) RenounceOwnership(caller common.Address) error {
	return t.chain.transact(caller, nil, t.addr, func() error {
		if !t.owner.is(caller) {
			return model.ErrOnlyOwner
		}
		old := t.owner
		t.chain.onRevert(func() { t.owner = old })
		t.owner = t.owner.renounce()
		t.chain.emit(model.OwnershipRenouncedEvent{Tick: t.tick, Owner: caller})
		return nil
	})
}

// ───────────────────────── reads ─────────────────────────

func (t *Token) Address() common.Address { return t.addr }
func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Tick() string            { return t.tick }
func (t *Token) MaxSupply() *uint256.Int { return t.maxSupply.Clone() }
func (t *Token) Minter() common.Address  { return t.minter }

func (t *Token) TotalSupply() *uint256.Int {
	t.chain.mu.Lock()
	defer t.chain.mu.Unlock()
	return t.totalSupply.Clone()
}

func (t *Token) BalanceOf(addr common.Address) *uint256.Int {
	t.chain.mu.Lock()
	defer t.chain.mu.Unlock()
	return t.balanceOf(addr).Clone()
}

func (t *Token) Allowance(owner, spender common.Address) *uint256.Int {
	t.chain.mu.Lock()
	defer t.chain.mu.Unlock()
	if a, ok := t.allowances[allowanceKey{owner, spender}]; ok {
		return a.Clone()
	}
	return uint256.NewInt(0)
}

func (t *Token) IsPool(addr common.Address) bool {
	t.chain.mu.Lock()
	defer t.chain.mu.Unlock()
	return t.pools[addr]
}

func (t *Token) BurnedByUser(addr common.Address) *uint256.Int {
	t.chain.mu.Lock()
	defer t.chain.mu.Unlock()
	return t.burnedOf(addr).Clone()
}

func (t *Token) BurnDiscountBps(addr common.Address) uint16 {
	t.chain.mu.Lock()
	defer t.chain.mu.Unlock()
	return DiscountBps(t.burnedOf(addr))
}

// Owner reports the current owner; ok is false once ownership is renounced.
func (t *Token) Owner() (common.Address, bool) {
	t.chain.mu.Lock()
	defer t.chain.mu.Unlock()
	return t.owner.holder()
}

// ───────────────────────── internals ─────────────────────────

func (t *Token) balanceOf(addr common.Address) *uint256.Int {
	if b, ok := t.balances[addr]; ok {
		return b
	}
	return uint256.NewInt(0)
}

func (t *Token) burnedOf(addr common.Address) *uint256.Int {
	if b, ok := t.burnedBy[addr]; ok {
		return b
	}
	return uint256.NewInt(0)
}

func (t *Token) credit(addr common.Address, amount *uint256.Int) {
	setMap(t.chain, t.balances, addr, new(uint256.Int).Add(t.balanceOf(addr), amount))
}

func (t *Token) debit(addr common.Address, amount *uint256.Int) error {
	bal := t.balanceOf(addr)
	if bal.Lt(amount) {
		return model.ErrInsufficientBalance
	}
	setMap(t.chain, t.balances, addr, new(uint256.Int).Sub(bal, amount))
	return nil
}

func (t *Token) setSupply(v *uint256.Int) {
	old := t.totalSupply
	t.chain.onRevert(func() { t.totalSupply = old })
	t.totalSupply = v
}

func (t *Token) spendAllowance(owner, spender common.Address, amount *uint256.Int) error {
	key := allowanceKey{owner, spender}
	allowed := t.allowances[key]
	if allowed == nil || allowed.Lt(amount) {
		return model.ErrInsufficientAllowance
	}
	setMap(t.chain, t.allowances, key, new(uint256.Int).Sub(allowed, amount))
	return nil
}

// transfer debits the gross amount and routes fee components whenever a pool
// sits on either side. The discount always comes from the sender's burns.
func (t *Token) transfer(from, to common.Address, amount *uint256.Int) error {
	if err := t.debit(from, amount); err != nil {
		return err
	}
	bd, err := ComputeFee(t.schedule, t.pools[from], t.pools[to], DiscountBps(t.burnedOf(from)), amount)
	if err != nil {
		return err
	}
	burned := uint256.NewInt(0)
	for _, p := range bd.Portions {
		if p.Role == FeeBurn {
			t.setSupply(new(uint256.Int).Sub(t.totalSupply, p.Amount))
			burned = new(uint256.Int).Add(burned, p.Amount)
			continue
		}
		t.credit(t.routes[p.Role], p.Amount)
	}
	t.credit(to, bd.Net)
	if len(bd.Portions) > 0 {
		t.chain.emit(model.FeeEvent{
			Tick:     t.tick,
			Payer:    from,
			Gross:    amount.Clone(),
			Burned:   burned,
			Discount: bd.Discount,
		})
	}
	t.chain.emit(model.TransferEvent{Tick: t.tick, From: from, To: to, Amount: amount.Clone()})
	return nil
}

func (t *Token) mint(to common.Address, amount *uint256.Int) error {
	next, overflow := new(uint256.Int).AddOverflow(t.totalSupply, amount)
	if overflow {
		return model.ErrOverflow
	}
	if t.maxSupply.Lt(next) {
		return model.ErrExceedsMaxSupply
	}
	t.setSupply(next)
	t.credit(to, amount)
	t.chain.emit(model.TransferEvent{Tick: t.tick, From: common.Address{}, To: to, Amount: amount.Clone()})
	return nil
}

func (t *Token) burnAs(caller common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return model.ErrZeroAmount
	}
	if err := t.debit(caller, amount); err != nil {
		return err
	}
	t.setSupply(new(uint256.Int).Sub(t.totalSupply, amount))
	cumulative := new(uint256.Int).Add(t.burnedOf(caller), amount)
	setMap(t.chain, t.burnedBy, caller, cumulative)
	t.chain.emit(model.BurnedEvent{
		Tick:       t.tick,
		Wallet:     caller,
		Amount:     amount.Clone(),
		Cumulative: cumulative.Clone(),
	})
	return nil
}
