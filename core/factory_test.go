package core

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/floflo777/mbc20/core/model"
)

func TestFactoryTokenWiring(t *testing.T) {
	fx := newV1(t)
	tok := fx.deployToken(t, "CLAW", 21_000_000)

	if tok.Name() != "mbc-20: CLAW" || tok.Symbol() != "CLAW" {
		t.Errorf("token identity = %q / %q", tok.Name(), tok.Symbol())
	}
	if tok.Minter() != fx.gateway.Address() {
		t.Errorf("minter = %s, want gateway %s", tok.Minter(), fx.gateway.Address())
	}
	owner, ok := tok.Owner()
	if !ok || owner != treasury {
		t.Errorf("owner = %s ok=%v, want treasury", owner, ok)
	}

	info, ok := fx.factory.InfoByTick("CLAW")
	if !ok {
		t.Fatal("token info missing")
	}
	if info.Deployer != treasury {
		t.Errorf("deployer = %s, want treasury", info.Deployer)
	}
	wantAmount(t, "max supply", info.MaxSupply, tokens(21_000_000))
}

func TestFactoryCreationOnlyThroughGateway(t *testing.T) {
	fx := newV1(t)
	_, err := fx.factory.createFromGateway(alice, "CLAW", model.Ether(100))
	if !errors.Is(err, model.ErrOnlyAdmin) {
		t.Fatalf("got %v, want ErrOnlyAdmin", err)
	}
}

func TestFactoryRejectsInvalidTick(t *testing.T) {
	fx := newV1(t)
	for _, tick := range []string{"", "TOOLONGTICK", "BAD-1", "ΩMEGA"} {
		err := fx.gateway.InitToken(fx.sgn.Address(), tick, model.Ether(100))
		if !errors.Is(err, model.ErrInvalidTick) {
			t.Errorf("tick %q: got %v, want ErrInvalidTick", tick, err)
		}
	}
}

func TestFactoryEnumeration(t *testing.T) {
	fx := newV1(t)
	fx.deployToken(t, "AAA", 100)
	fx.deployToken(t, "BBB", 100)

	if got := fx.factory.TotalTokens(); got != 2 {
		t.Fatalf("TotalTokens = %d, want 2", got)
	}
	if fx.factory.TokenAt(0).Tick() != "AAA" || fx.factory.TokenAt(1).Tick() != "BBB" {
		t.Error("enumeration order does not follow creation order")
	}
	if fx.factory.TokenAt(2) != nil {
		t.Error("out-of-range TokenAt should be nil")
	}
	if _, ok := fx.factory.TokenByTick("CCC"); ok {
		t.Error("lookup of unknown tick succeeded")
	}
}

func TestFactoryV2CreateBurnsDeploymentCost(t *testing.T) {
	cost := tokens(100)
	fx := newV2(t, cost)
	fx.fundRef(t, alice, tokens(150))

	// without allowance the deploy fails outright
	_, err := fx.factory.CreateToken(alice, "MEME", model.Ether(1_000_000))
	if !errors.Is(err, model.ErrInsufficientAllowance) {
		t.Fatalf("got %v, want ErrInsufficientAllowance", err)
	}

	if err := fx.refToken.Approve(alice, fx.factory.Address(), cost); err != nil {
		t.Fatal(err)
	}
	supplyBefore := fx.refToken.TotalSupply()
	tok, err := fx.factory.CreateToken(alice, "MEME", model.Ether(1_000_000))
	if err != nil {
		t.Fatal(err)
	}

	wantAmount(t, "alice ref balance", fx.refToken.BalanceOf(alice), tokens(50))
	wantAmount(t, "ref supply", fx.refToken.TotalSupply(), new(uint256.Int).Sub(supplyBefore, cost))

	owner, ok := tok.Owner()
	if !ok || owner != alice {
		t.Errorf("owner = %s ok=%v, want creator", owner, ok)
	}
	info, _ := fx.factory.InfoByTick("MEME")
	if info.Deployer != alice {
		t.Errorf("deployer = %s, want creator", info.Deployer)
	}
	wantAmount(t, "recorded burn", info.Burned, cost)
}

func TestFactoryV2DeployerEarnsTransferFee(t *testing.T) {
	fx := newV2(t, uint256.NewInt(0))
	tok, err := fx.factory.CreateToken(alice, "MEME", model.Ether(1_000_000))
	if err != nil {
		t.Fatal(err)
	}
	fx.claim(t, bob, "MEME", tokens(1000))
	if err := tok.SetPool(alice, pool, true); err != nil {
		t.Fatal(err)
	}

	// 1% burns, 1% routes to the token's deployer
	if err := tok.Transfer(bob, pool, tokens(1000)); err != nil {
		t.Fatal(err)
	}
	wantAmount(t, "pool", tok.BalanceOf(pool), tokens(980))
	wantAmount(t, "deployer fee", tok.BalanceOf(alice), tokens(10))
	wantAmount(t, "supply", tok.TotalSupply(), tokens(990))
}

func TestFactoryV2ZeroCostSkipsReferenceToken(t *testing.T) {
	fx := newV2(t, uint256.NewInt(0))
	// no reference balance, no allowance, still deploys
	if _, err := fx.factory.CreateToken(bob, "FREE", model.Ether(1000)); err != nil {
		t.Fatal(err)
	}
}

func TestFactoryV2DuplicateTick(t *testing.T) {
	fx := newV2(t, uint256.NewInt(0))
	if _, err := fx.factory.CreateToken(alice, "MEME", model.Ether(1000)); err != nil {
		t.Fatal(err)
	}
	_, err := fx.factory.CreateToken(bob, "meme", model.Ether(1000))
	if !errors.Is(err, model.ErrTokenAlreadyExists) {
		t.Fatalf("got %v, want ErrTokenAlreadyExists", err)
	}
}

func TestFactoryV2GatewayCannotCreate(t *testing.T) {
	fx := newV2(t, uint256.NewInt(0))
	err := fx.gateway.InitToken(fx.sgn.Address(), "MEME", model.Ether(1000))
	if !errors.Is(err, model.ErrOnlyDeployer) {
		t.Fatalf("got %v, want ErrOnlyDeployer", err)
	}
}

func TestFactoryV2CostAdministration(t *testing.T) {
	fx := newV2(t, tokens(100))
	operator := fx.sgn.Address()

	if err := fx.factory.SetDeploymentCost(alice, tokens(50)); !errors.Is(err, model.ErrOnlyAdmin) {
		t.Fatalf("non-admin: got %v, want ErrOnlyAdmin", err)
	}
	if err := fx.factory.SetDeploymentCost(operator, tokens(50)); err != nil {
		t.Fatal(err)
	}
	wantAmount(t, "cost", fx.factory.DeploymentCost(), tokens(50))

	if err := fx.factory.RenounceAdmin(operator); err != nil {
		t.Fatal(err)
	}
	if _, ok := fx.factory.Admin(); ok {
		t.Error("admin still set after renounce")
	}
	if err := fx.factory.SetDeploymentCost(operator, tokens(10)); !errors.Is(err, model.ErrOnlyAdmin) {
		t.Fatalf("post-renounce: got %v, want ErrOnlyAdmin", err)
	}
	wantAmount(t, "cost frozen", fx.factory.DeploymentCost(), tokens(50))
}

func TestFactoryV2RolledBackDeployLeavesNothing(t *testing.T) {
	cost := tokens(100)
	fx := newV2(t, cost)
	fx.fundRef(t, alice, tokens(100))
	if err := fx.refToken.Approve(alice, fx.factory.Address(), cost); err != nil {
		t.Fatal(err)
	}
	if _, err := fx.factory.CreateToken(alice, "MEME", model.Ether(1000)); err != nil {
		t.Fatal(err)
	}

	// second deploy of the same tick fails after the first succeeded; the
	// failed attempt must not touch balances or the registry
	fx.fundRef(t, bob, tokens(100))
	if err := fx.refToken.Approve(bob, fx.factory.Address(), cost); err != nil {
		t.Fatal(err)
	}
	if _, err := fx.factory.CreateToken(bob, "MEME", model.Ether(1000)); err == nil {
		t.Fatal("duplicate deploy succeeded")
	}
	wantAmount(t, "bob ref balance", fx.refToken.BalanceOf(bob), tokens(100))
	wantAmount(t, "bob allowance", fx.refToken.Allowance(bob, fx.factory.Address()), cost)
	if got := fx.factory.TotalTokens(); got != 1 {
		t.Fatalf("TotalTokens = %d, want 1", got)
	}
}
