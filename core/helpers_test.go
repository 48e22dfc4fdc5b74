package core

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/floflo777/mbc20/core/model"
	"github.com/floflo777/mbc20/signer"
)

const testChainID = 4200

var (
	treasury = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	team     = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	reward   = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	carol    = common.HexToAddress("0x00000000000000000000000000000000000000b3")
	pool     = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

var testClaimFee = uint256.NewInt(1e15)

type v1Fixture struct {
	chain   *Chain
	sgn     *signer.Signer
	gateway *ClaimManager
	factory *Factory
}

func newV1(t *testing.T) *v1Fixture {
	t.Helper()
	chain := NewChain(testChainID)
	sgn, err := signer.Generate()
	if err != nil {
		t.Fatalf("generate signer: %v", err)
	}
	operator := sgn.Address()
	factoryAddr := chain.PredictAddress(operator, 1)
	gw := NewClaimManager(chain, operator, factoryAddr, sgn.Address(), signer.Recoverer{}, treasury, testClaimFee)
	f := NewFactory(chain, operator, gw.Address(), team, reward, treasury)
	if f.Address() != factoryAddr {
		t.Fatalf("factory deployed at %s, predicted %s", f.Address(), factoryAddr)
	}
	return &v1Fixture{chain: chain, sgn: sgn, gateway: gw, factory: f}
}

func (fx *v1Fixture) deployToken(t *testing.T, tick string, maxTokens uint64) *Token {
	t.Helper()
	if err := fx.gateway.InitToken(fx.sgn.Address(), tick, model.Ether(maxTokens)); err != nil {
		t.Fatalf("init token %s: %v", tick, err)
	}
	tok, ok := fx.factory.TokenByTick(tick)
	if !ok {
		t.Fatalf("token %s missing after init", tick)
	}
	return tok
}

// claim tops wallet up to total tokens, paying the flat claim fee.
func (fx *v1Fixture) claim(t *testing.T, wallet common.Address, tick string, total *uint256.Int) {
	t.Helper()
	if err := fx.tryClaim(wallet, tick, total); err != nil {
		t.Fatalf("claim %s for %s: %v", tick, wallet, err)
	}
}

func (fx *v1Fixture) tryClaim(wallet common.Address, tick string, total *uint256.Int) error {
	nonce := fx.gateway.Nonce(wallet, tick)
	sig, err := fx.sgn.SignClaim(wallet, tick, total, nonce, testChainID)
	if err != nil {
		return err
	}
	fx.chain.Fund(wallet, testClaimFee)
	return fx.gateway.Claim(wallet, tick, total, nonce, sig, testClaimFee)
}

type v2Fixture struct {
	chain    *Chain
	sgn      *signer.Signer
	gateway  *ClaimManager
	factory  *FactoryV2
	refToken *Token
}

// newV2 deploys the permissionless stack. The reference token is minted by
// the operator so tests can hand out deployment-cost balances directly.
func newV2(t *testing.T, cost *uint256.Int) *v2Fixture {
	t.Helper()
	chain := NewChain(testChainID)
	sgn, err := signer.Generate()
	if err != nil {
		t.Fatalf("generate signer: %v", err)
	}
	operator := sgn.Address()
	ref := NewToken(chain, operator, TokenConfig{
		Name:      "mbc-20: MBC",
		Symbol:    "MBC",
		Tick:      "MBC",
		MaxSupply: model.Ether(1_000_000_000),
		Minter:    operator,
		Owner:     operator,
		Schedule:  ScheduleV2,
		Routes:    map[string]common.Address{FeeDeployer: operator},
	})
	factoryAddr := chain.PredictAddress(operator, 1)
	gw := NewClaimManagerV2(chain, operator, factoryAddr, sgn.Address(), signer.Recoverer{})
	f := NewFactoryV2(chain, operator, gw.Address(), ref, cost)
	if f.Address() != factoryAddr {
		t.Fatalf("factory deployed at %s, predicted %s", f.Address(), factoryAddr)
	}
	return &v2Fixture{chain: chain, sgn: sgn, gateway: gw, factory: f, refToken: ref}
}

// fundRef mints reference tokens straight to a wallet.
func (fx *v2Fixture) fundRef(t *testing.T, wallet common.Address, amount *uint256.Int) {
	t.Helper()
	if err := fx.refToken.Mint(fx.sgn.Address(), wallet, amount); err != nil {
		t.Fatalf("mint reference tokens: %v", err)
	}
}

func (fx *v2Fixture) claim(t *testing.T, wallet common.Address, tick string, total *uint256.Int) {
	t.Helper()
	nonce := fx.gateway.Nonce(wallet, tick)
	sig, err := fx.sgn.SignClaim(wallet, tick, total, nonce, testChainID)
	if err != nil {
		t.Fatalf("sign claim: %v", err)
	}
	if err := fx.gateway.Claim(wallet, tick, total, nonce, sig, nil); err != nil {
		t.Fatalf("claim %s for %s: %v", tick, wallet, err)
	}
}

func wantAmount(t *testing.T, label string, got, want *uint256.Int) {
	t.Helper()
	if !got.Eq(want) {
		t.Errorf("%s = %s, want %s", label, got.Dec(), want.Dec())
	}
}

// tokens builds a wei amount from a whole-token count.
func tokens(n uint64) *uint256.Int {
	return model.Ether(n)
}

// weiTokens builds a wei amount from a decimal string of wei.
func weiTokens(t *testing.T, dec string) *uint256.Int {
	t.Helper()
	v, err := uint256.FromDecimal(dec)
	if err != nil {
		t.Fatalf("bad amount %q: %v", dec, err)
	}
	return v
}
