package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// TickHash is the registry key for a tick: keccak256 of its normalized form.
func TickHash(tick string) common.Hash {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(tick))
	return common.BytesToHash(hasher.Sum(nil))
}

// ClaimDigest builds the message the off-chain signer commits to:
// keccak256(wallet || tick || totalAmount || nonce || chainId), integers
// packed as 32-byte big-endian words. The signer wraps this digest in the
// signed-message envelope before producing the ECDSA signature.
func ClaimDigest(wallet common.Address, tick string, totalAmount *uint256.Int, nonce uint64, chainID uint64) []byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(wallet.Bytes())
	hasher.Write([]byte(tick))
	total := totalAmount.Bytes32()
	hasher.Write(total[:])
	n := uint256.NewInt(nonce).Bytes32()
	hasher.Write(n[:])
	c := uint256.NewInt(chainID).Bytes32()
	hasher.Write(c[:])
	return hasher.Sum(nil)
}
