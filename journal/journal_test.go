package journal

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/floflo777/mbc20/core/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndReadBack(t *testing.T) {
	s := openTestStore(t)

	wallet := common.HexToAddress("0x00000000000000000000000000000000000000b1")
	s.Append(model.TransferEvent{
		Tick:   "CLAW",
		From:   common.Address{},
		To:     wallet,
		Amount: uint256.NewInt(100),
	})
	s.Append(model.BurnedEvent{
		Tick:       "CLAW",
		Wallet:     wallet,
		Amount:     uint256.NewInt(40),
		Cumulative: uint256.NewInt(40),
	})

	entries, err := s.ReadSince(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Kind != "transfer" || entries[1].Kind != "burned" {
		t.Errorf("kinds = %s, %s", entries[0].Kind, entries[1].Kind)
	}
	if entries[0].Seq >= entries[1].Seq {
		t.Errorf("sequence not increasing: %d, %d", entries[0].Seq, entries[1].Seq)
	}
	if entries[0].ID == entries[1].ID || entries[0].ID == "" {
		t.Error("entry ids not unique")
	}

	var decoded model.TransferEvent
	if err := json.Unmarshal(entries[0].Payload, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Tick != "CLAW" || decoded.To != wallet {
		t.Errorf("decoded payload = %+v", decoded)
	}
}

func TestReadSinceSkipsConsumed(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		s.Append(model.PoolSetEvent{Tick: "CLAW", Flag: true})
	}

	all, err := s.ReadSince(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Fatalf("got %d entries, want 5", len(all))
	}

	rest, err := s.ReadSince(all[2].Seq)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 2 {
		t.Fatalf("got %d entries after seq %d, want 2", len(rest), all[2].Seq)
	}

	none, err := s.ReadSince(all[4].Seq)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("got %d entries past the end, want 0", len(none))
	}
}
