package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/floflo777/mbc20/core/model"
)

// Registry maps ticks to deployed token ledgers. Both factory versions
// implement it; the claim gateway resolves its factory through the chain by
// the address predicted at construction time.
type Registry interface {
	Address() common.Address
	TokenByTick(tick string) (*Token, bool)
	InfoByTick(tick string) (model.TokenInfo, bool)
	TotalTokens() int
	TokenAt(i int) *Token

	// lock-free variants for use inside a running transaction
	tokenByTick(tick string) (*Token, bool)
	infoByTick(tick string) (model.TokenInfo, bool)
	createFromGateway(caller common.Address, tick string, maxSupply *uint256.Int) (*Token, error)
}

type registry struct {
	chain  *Chain
	addr   common.Address
	tokens map[common.Hash]*Token
	infos  map[common.Hash]model.TokenInfo
	order  []*Token
}

func makeRegistry(chain *Chain) registry {
	return registry{
		chain:  chain,
		tokens: make(map[common.Hash]*Token),
		infos:  make(map[common.Hash]model.TokenInfo),
	}
}

func (r *registry) Address() common.Address { return r.addr }

func (r *registry) TokenByTick(tick string) (*Token, bool) {
	r.chain.mu.Lock()
	defer r.chain.mu.Unlock()
	return r.tokenByTick(tick)
}

func (r *registry) InfoByTick(tick string) (model.TokenInfo, bool) {
	r.chain.mu.Lock()
	defer r.chain.mu.Unlock()
	return r.infoByTick(tick)
}

func (r *registry) TotalTokens() int {
	r.chain.mu.Lock()
	defer r.chain.mu.Unlock()
	return len(r.order)
}

func (r *registry) TokenAt(i int) *Token {
	r.chain.mu.Lock()
	defer r.chain.mu.Unlock()
	if i < 0 || i >= len(r.order) {
		return nil
	}
	return r.order[i]
}

func (r *registry) tokenByTick(tick string) (*Token, bool) {
	tick, err := model.NormalizeTick(tick)
	if err != nil {
		return nil, false
	}
	tok, ok := r.tokens[model.TickHash(tick)]
	return tok, ok
}

func (r *registry) infoByTick(tick string) (model.TokenInfo, bool) {
	tick, err := model.NormalizeTick(tick)
	if err != nil {
		return model.TokenInfo{}, false
	}
	info, ok := r.infos[model.TickHash(tick)]
	return info, ok
}

func (r *registry) register(tick string, tok *Token, info model.TokenInfo) {
	hash := model.TickHash(tick)
	setMap(r.chain, r.tokens, hash, tok)
	setMap(r.chain, r.infos, hash, info)
	n := len(r.order)
	r.chain.onRevert(func() { r.order = r.order[:n] })
	r.order = append(r.order, tok)
}

// Factory is the V1 registry: token creation is reserved to the bound claim
// gateway (via InitToken), and every token it deploys shares the protocol's
// team wallet, reward pool and operator owner.
type Factory struct {
	registry
	gateway    common.Address
	teamWallet common.Address
	rewardPool common.Address
	tokenOwner common.Address
}

func NewFactory(chain *Chain, deployer, gateway, teamWallet, rewardPool, tokenOwner common.Address) *Factory {
	f := &Factory{
		registry:   makeRegistry(chain),
		gateway:    gateway,
		teamWallet: teamWallet,
		rewardPool: rewardPool,
		tokenOwner: tokenOwner,
	}
	f.addr = chain.deployLocked(deployer, f)
	return f
}

func (f *Factory) createFromGateway(caller common.Address, tick string, maxSupply *uint256.Int) (*Token, error) {
	if caller != f.gateway {
		return nil, model.ErrOnlyAdmin
	}
	tick, err := model.NormalizeTick(tick)
	if err != nil {
		return nil, err
	}
	if _, exists := f.tokens[model.TickHash(tick)]; exists {
		return nil, model.ErrTokenAlreadyExists
	}
	tok := newTokenInTx(f.chain, f.addr, TokenConfig{
		Name:      "mbc-20: " + tick,
		Symbol:    tick,
		Tick:      tick,
		MaxSupply: maxSupply,
		Minter:    f.gateway,
		Owner:     f.tokenOwner,
		Schedule:  ScheduleV1,
		Routes: map[string]common.Address{
			FeeTeam:   f.teamWallet,
			FeeReward: f.rewardPool,
		},
	})
	f.register(tick, tok, model.TokenInfo{
		Deployer:  f.tokenOwner,
		MaxSupply: maxSupply.Clone(),
		Burned:    uint256.NewInt(0),
	})
	f.chain.emit(model.TokenCreatedEvent{
		Tick:      tick,
		Token:     tok.addr,
		Deployer:  f.tokenOwner,
		MaxSupply: maxSupply.Clone(),
	})
	return tok, nil
}

// FactoryV2 opens token creation to anyone willing to burn deploymentCost of
// the reference currency; the creator becomes the token's fee-earning
// deployer and owner. The cost is admin-adjustable until the admin renounces,
// after which it is frozen forever.
type FactoryV2 struct {
	registry
	gateway  common.Address
	refToken *Token
	cost     *uint256.Int
	admin    authority
}

func NewFactoryV2(chain *Chain, deployer, gateway common.Address, refToken *Token, cost *uint256.Int) *FactoryV2 {
	f := &FactoryV2{
		registry: makeRegistry(chain),
		gateway:  gateway,
		refToken: refToken,
		cost:     cost.Clone(),
		admin:    newAuthority(deployer),
	}
	f.addr = chain.deployLocked(deployer, f)
	return f
}

// CreateToken burns the deployment cost from the caller and deploys a fresh
// V2 ledger for the tick.
func (f *FactoryV2) CreateToken(caller common.Address, tick string, maxSupply *uint256.Int) (*Token, error) {
	var tok *Token
	err := f.chain.transact(caller, nil, f.addr, func() error {
		normalized, err := model.NormalizeTick(tick)
		if err != nil {
			return err
		}
		if _, exists := f.tokens[model.TickHash(normalized)]; exists {
			return model.ErrTokenAlreadyExists
		}
		if !f.cost.IsZero() {
			if err := f.refToken.spendAllowance(caller, f.addr, f.cost); err != nil {
				return err
			}
			if err := f.refToken.transfer(caller, f.addr, f.cost); err != nil {
				return err
			}
			if err := f.refToken.burnAs(f.addr, f.cost); err != nil {
				return err
			}
		}
		tok = newTokenInTx(f.chain, f.addr, TokenConfig{
			Name:      "mbc-20: " + normalized,
			Symbol:    normalized,
			Tick:      normalized,
			MaxSupply: maxSupply,
			Minter:    f.gateway,
			Owner:     caller,
			Schedule:  ScheduleV2,
			Routes: map[string]common.Address{
				FeeDeployer: caller,
			},
		})
		f.register(normalized, tok, model.TokenInfo{
			Deployer:  caller,
			MaxSupply: maxSupply.Clone(),
			Burned:    f.cost.Clone(),
		})
		f.chain.emit(model.TokenCreatedEvent{
			Tick:      normalized,
			Token:     tok.addr,
			Deployer:  caller,
			MaxSupply: maxSupply.Clone(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// createFromGateway is the V1 creation path; V2 tokens are only created
// through CreateToken, which burns the deployment cost.
func (f *FactoryV2) createFromGateway(common.Address, string, *uint256.Int) (*Token, error) {
	return nil, model.ErrOnlyDeployer
}

func (f *FactoryV2) SetDeploymentCost(caller common.Address, cost *uint256.Int) error {
	return f.chain.transact(caller, nil, f.addr, func() error {
		if !f.admin.is(caller) {
			return model.ErrOnlyAdmin
		}
		old := f.cost
		f.chain.onRevert(func() { f.cost = old })
		f.cost = cost.Clone()
		f.chain.emit(model.DeploymentCostChangedEvent{Cost: cost.Clone()})
		return nil
	})
}

// RenounceAdmin permanently freezes the deployment cost.
func (f *FactoryV2) RenounceAdmin(caller common.Address) error {
	return f.chain.transact(caller, nil, f.addr, func() error {
		if !f.admin.is(caller) {
			return model.ErrOnlyAdmin
		}
		old := f.admin
		f.chain.onRevert(func() { f.admin = old })
		f.admin = f.admin.renounce()
		return nil
	})
}

func (f *FactoryV2) DeploymentCost() *uint256.Int {
	f.chain.mu.Lock()
	defer f.chain.mu.Unlock()
	return f.cost.Clone()
}

func (f *FactoryV2) Admin() (common.Address, bool) {
	f.chain.mu.Lock()
	defer f.chain.mu.Unlock()
	return f.admin.holder()
}
