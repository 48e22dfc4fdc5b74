package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/floflo777/mbc20/core/model"
)

type nonceKey struct {
	wallet common.Address
	tick   common.Hash
}

// ClaimManager is the sole minting path for factory-deployed tokens. A claim
// carries the wallet's cumulative entitlement signed by the off-chain signer;
// the gateway mints only the delta above the wallet's current balance and
// advances a strict per-(wallet, tick) sequence counter.
type ClaimManager struct {
	chain       *Chain
	addr        common.Address
	factoryAddr common.Address
	signer      common.Address
	verifier    Verifier

	treasury common.Address
	claimFee *uint256.Int
	v2       bool

	nonces map[nonceKey]uint64
}

// NewClaimManager wires the V1 gateway: claims cost a flat native fee
// forwarded to the treasury, and the treasury runs airdrops. The factory
// address is predicted, not yet deployed.
func NewClaimManager(chain *Chain, deployer, factoryAddr, signerAddr common.Address, verifier Verifier, treasury common.Address, claimFee *uint256.Int) *ClaimManager {
	cm := &ClaimManager{
		chain:       chain,
		factoryAddr: factoryAddr,
		signer:      signerAddr,
		verifier:    verifier,
		treasury:    treasury,
		claimFee:    claimFee.Clone(),
		nonces:      make(map[nonceKey]uint64),
	}
	cm.addr = chain.deployLocked(deployer, cm)
	return cm
}

// NewClaimManagerV2 wires the fee-less gateway: no claim fee, and each
// token's recorded deployer runs its airdrops.
func NewClaimManagerV2(chain *Chain, deployer, factoryAddr, signerAddr common.Address, verifier Verifier) *ClaimManager {
	cm := &ClaimManager{
		chain:       chain,
		factoryAddr: factoryAddr,
		signer:      signerAddr,
		verifier:    verifier,
		v2:          true,
		nonces:      make(map[nonceKey]uint64),
	}
	cm.addr = chain.deployLocked(deployer, cm)
	return cm
}

func (cm *ClaimManager) Address() common.Address       { return cm.addr }
func (cm *ClaimManager) SignerAddress() common.Address { return cm.signer }

// ClaimFee returns the flat claim fee, zero for the fee-less gateway.
func (cm *ClaimManager) ClaimFee() *uint256.Int {
	if cm.claimFee == nil {
		return uint256.NewInt(0)
	}
	return cm.claimFee.Clone()
}

// Nonce is the next sequence number a claim for (wallet, tick) must carry.
func (cm *ClaimManager) Nonce(wallet common.Address, tick string) uint64 {
	cm.chain.mu.Lock()
	defer cm.chain.mu.Unlock()
	normalized, err := model.NormalizeTick(tick)
	if err != nil {
		return 0
	}
	return cm.nonces[nonceKey{wallet, model.TickHash(normalized)}]
}

// Claim verifies the signer's authorization for the wallet's cumulative
// totalAmount and mints the shortfall. The nonce must match the stored
// counter exactly; a successful claim advances it by one.
func (cm *ClaimManager) Claim(caller common.Address, tick string, totalAmount *uint256.Int, nonce uint64, sig []byte, value *uint256.Int) error {
	return cm.chain.transact(caller, value, cm.addr, func() error {
		normalized, err := model.NormalizeTick(tick)
		if err != nil {
			return model.ErrTokenNotFound
		}
		reg, ok := cm.chain.registryAt(cm.factoryAddr)
		if !ok {
			return model.ErrTokenNotFound
		}
		tok, ok := reg.tokenByTick(normalized)
		if !ok {
			return model.ErrTokenNotFound
		}
		if cm.v2 {
			if value != nil && !value.IsZero() {
				return model.ErrNoETHExpected
			}
		} else {
			if value == nil || value.Lt(cm.claimFee) {
				return model.ErrInsufficientFee
			}
			// fee forwarded in full to the treasury
			if err := cm.chain.moveNative(cm.addr, cm.treasury, value); err != nil {
				return err
			}
		}
		key := nonceKey{caller, model.TickHash(normalized)}
		if cm.nonces[key] != nonce {
			return model.ErrInvalidNonce
		}
		digest := model.ClaimDigest(caller, normalized, totalAmount, nonce, cm.chain.chainID)
		recovered, err := cm.verifier.Verify(digest, sig)
		if err != nil || recovered != cm.signer {
			return model.ErrInvalidSignature
		}
		bal := tok.balanceOf(caller)
		if !totalAmount.Gt(bal) {
			return model.ErrNothingToClaim
		}
		delta := new(uint256.Int).Sub(totalAmount, bal)
		if err := tok.mint(caller, delta); err != nil {
			return err
		}
		setMap(cm.chain, cm.nonces, key, nonce+1)
		cm.chain.emit(model.ClaimedEvent{
			Tick:   normalized,
			Wallet: caller,
			Total:  totalAmount.Clone(),
			Minted: delta.Clone(),
			Nonce:  nonce,
		})
		return nil
	})
}

// InitToken deploys and registers a fresh ledger for a tick through the bound
// factory. The factory only accepts creation calls from this gateway.
func (cm *ClaimManager) InitToken(caller common.Address, tick string, maxSupply *uint256.Int) error {
	return cm.chain.transact(caller, nil, cm.addr, func() error {
		reg, ok := cm.chain.registryAt(cm.factoryAddr)
		if !ok {
			return model.ErrTokenNotFound
		}
		_, err := reg.createFromGateway(cm.addr, tick, maxSupply)
		return err
	})
}

// BatchAirdrop applies the cumulative-mint rule in bulk: each wallet is
// topped up to its target amount, wallets already at or above it are skipped.
func (cm *ClaimManager) BatchAirdrop(caller common.Address, tick string, wallets []common.Address, amounts []*uint256.Int) error {
	return cm.chain.transact(caller, nil, cm.addr, func() error {
		normalized, err := model.NormalizeTick(tick)
		if err != nil {
			return model.ErrTokenNotFound
		}
		reg, ok := cm.chain.registryAt(cm.factoryAddr)
		if !ok {
			return model.ErrTokenNotFound
		}
		tok, ok := reg.tokenByTick(normalized)
		if !ok {
			return model.ErrTokenNotFound
		}
		if cm.v2 {
			info, _ := reg.infoByTick(normalized)
			if caller != info.Deployer {
				return model.ErrOnlyDeployer
			}
		} else if caller != cm.treasury {
			return model.ErrOnlyTreasury
		}
		if len(wallets) != len(amounts) {
			return model.ErrLengthMismatch
		}
		for i, wallet := range wallets {
			target := amounts[i]
			bal := tok.balanceOf(wallet)
			if !target.Gt(bal) {
				continue
			}
			delta := new(uint256.Int).Sub(target, bal)
			if err := tok.mint(wallet, delta); err != nil {
				return err
			}
			key := nonceKey{wallet, model.TickHash(normalized)}
			setMap(cm.chain, cm.nonces, key, cm.nonces[key]+1)
			cm.chain.emit(model.AirdroppedEvent{
				Tick:   normalized,
				Wallet: wallet,
				Minted: delta.Clone(),
			})
		}
		return nil
	})
}
