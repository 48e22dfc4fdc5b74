package signer

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/floflo777/mbc20/core/model"
)

var wallet = common.HexToAddress("0x00000000000000000000000000000000000000b1")

func TestSignAndRecoverRoundtrip(t *testing.T) {
	s, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	total := new(uint256.Int).Mul(uint256.NewInt(1000), model.WeiPerToken)
	sig, err := s.SignClaim(wallet, "CLAW", total, 0, 4200)
	if err != nil {
		t.Fatal(err)
	}
	if len(sig) != 65 {
		t.Fatalf("signature length = %d, want 65", len(sig))
	}
	if v := sig[64]; v != 27 && v != 28 {
		t.Fatalf("recovery id = %d, want 27 or 28", v)
	}

	digest := model.ClaimDigest(wallet, "CLAW", total, 0, 4200)
	recovered, err := Recoverer{}.Verify(digest, sig)
	if err != nil {
		t.Fatal(err)
	}
	if recovered != s.Address() {
		t.Fatalf("recovered %s, want %s", recovered, s.Address())
	}
}

func TestRecoverMismatchesOnChangedFields(t *testing.T) {
	s, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	total := new(uint256.Int).Mul(uint256.NewInt(1000), model.WeiPerToken)
	sig, err := s.SignClaim(wallet, "CLAW", total, 0, 4200)
	if err != nil {
		t.Fatal(err)
	}

	variants := [][]byte{
		model.ClaimDigest(wallet, "CLAW", total, 1, 4200),
		model.ClaimDigest(wallet, "CLAW", total, 0, 1),
		model.ClaimDigest(wallet, "MEME", total, 0, 4200),
		model.ClaimDigest(common.Address{0xff}, "CLAW", total, 0, 4200),
	}
	for i, digest := range variants {
		recovered, err := Recoverer{}.Verify(digest, sig)
		if err == nil && recovered == s.Address() {
			t.Errorf("variant %d recovered the signer", i)
		}
	}
}

func TestSignClaimCanonicalizesTick(t *testing.T) {
	s, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	total := new(uint256.Int).Mul(uint256.NewInt(250), model.WeiPerToken)
	sig, err := s.SignClaim(wallet, "claw", total, 2, 4200)
	if err != nil {
		t.Fatal(err)
	}

	digest := model.ClaimDigest(wallet, "CLAW", total, 2, 4200)
	recovered, err := Recoverer{}.Verify(digest, sig)
	if err != nil {
		t.Fatal(err)
	}
	if recovered != s.Address() {
		t.Fatalf("recovered %s, want %s", recovered, s.Address())
	}

	if _, err := s.SignClaim(wallet, "BAD-1", total, 0, 4200); err == nil {
		t.Error("invalid tick accepted")
	}
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	digest := model.ClaimDigest(wallet, "CLAW", uint256.NewInt(1), 0, 4200)
	if _, err := (Recoverer{}).Verify(digest, []byte{1, 2, 3}); !errors.Is(err, model.ErrInvalidSignature) {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
}

func TestFromHex(t *testing.T) {
	gen, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	hexKey := common.Bytes2Hex(gen.key.D.FillBytes(make([]byte, 32)))
	restored, err := FromHex(hexKey)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Address() != gen.Address() {
		t.Fatalf("restored %s, want %s", restored.Address(), gen.Address())
	}

	if _, err := FromHex("not-a-key"); err == nil {
		t.Error("bad hex key accepted")
	}
}

func TestTamperedSignatureFlipsRecovery(t *testing.T) {
	s, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	total := uint256.NewInt(5)
	sig, err := s.SignClaim(wallet, "CLAW", total, 0, 4200)
	if err != nil {
		t.Fatal(err)
	}
	sig[10] ^= 0xff

	digest := model.ClaimDigest(wallet, "CLAW", total, 0, 4200)
	recovered, err := Recoverer{}.Verify(digest, sig)
	if err == nil && recovered == s.Address() {
		t.Error("tampered signature still recovered the signer")
	}
}
