package signer

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/floflo777/mbc20/core/model"
)

// Claim digests travel inside the standard signed-message envelope so the
// off-chain signer can use an ordinary wallet key.
const messagePrefix = "\x19Ethereum Signed Message:\n32"

// envelope wraps a 32-byte digest in the signed-message prefix hash.
func envelope(digest []byte) []byte {
	return crypto.Keccak256([]byte(messagePrefix), digest)
}

// Signer holds the protocol's claim-authorization key.
type Signer struct {
	key *ecdsa.PrivateKey
}

func New(key *ecdsa.PrivateKey) *Signer {
	return &Signer{key: key}
}

// FromHex loads the key from its hex encoding (no 0x prefix).
func FromHex(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

// Generate creates a throwaway signer, for tests and development mode.
func Generate() (*Signer, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

func (s *Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// Sign produces a 65-byte wallet-style signature (recovery id 27/28) over the
// enveloped digest.
func (s *Signer) Sign(digest []byte) ([]byte, error) {
	sig, err := crypto.Sign(envelope(digest), s.key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// SignClaim authorizes a wallet's cumulative entitlement for a tick. The tick
// is canonicalized first so the digest matches the one the gateway verifies.
func (s *Signer) SignClaim(wallet common.Address, tick string, totalAmount *uint256.Int, nonce uint64, chainID uint64) ([]byte, error) {
	normalized, err := model.NormalizeTick(tick)
	if err != nil {
		return nil, err
	}
	return s.Sign(model.ClaimDigest(wallet, normalized, totalAmount, nonce, chainID))
}

// Recoverer implements the gateway's verifier capability: it recovers the
// address that signed the enveloped digest.
type Recoverer struct{}

func (Recoverer) Verify(digest []byte, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, model.ErrInvalidSignature
	}
	normalized := make([]byte, 65)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	pub, err := crypto.SigToPub(envelope(digest), normalized)
	if err != nil {
		return common.Address{}, model.ErrInvalidSignature
	}
	return crypto.PubkeyToAddress(*pub), nil
}
