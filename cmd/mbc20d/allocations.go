package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/floflo777/mbc20/core/model"
)

// fileAllocations serves cumulative claim allocations from a JSON file of the
// form {"TICK": {"0xwallet": "amount-in-wei", ...}, ...}. Production replaces
// this with the social platform's accounting backend.
type fileAllocations struct {
	byTick map[string]map[common.Address]*uint256.Int
}

func loadAllocations(path string) (*fileAllocations, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read allocations file")
	}

	var decoded map[string]map[string]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, errors.Wrap(err, "parse allocations file")
	}

	out := &fileAllocations{byTick: make(map[string]map[common.Address]*uint256.Int)}
	for tick, wallets := range decoded {
		normalized, err := model.NormalizeTick(tick)
		if err != nil {
			return nil, errors.Wrapf(err, "allocations tick %q", tick)
		}
		entries := make(map[common.Address]*uint256.Int, len(wallets))
		for wallet, amount := range wallets {
			if !common.IsHexAddress(wallet) {
				return nil, errors.Errorf("allocations wallet %q: not an address", wallet)
			}
			v, err := uint256.FromDecimal(strings.TrimSpace(amount))
			if err != nil {
				return nil, errors.Wrapf(err, "allocations amount for %s/%s", normalized, wallet)
			}
			entries[common.HexToAddress(wallet)] = v
		}
		out.byTick[normalized] = entries
	}
	return out, nil
}

func (a *fileAllocations) TotalAllocation(wallet common.Address, tick string) (*uint256.Int, error) {
	entries, ok := a.byTick[tick]
	if !ok {
		return uint256.NewInt(0), nil
	}
	v, ok := entries[wallet]
	if !ok {
		return uint256.NewInt(0), nil
	}
	return v.Clone(), nil
}

// emptyAllocations attests to nothing; used when no allocations file is
// configured.
type emptyAllocations struct{}

func (emptyAllocations) TotalAllocation(common.Address, string) (*uint256.Int, error) {
	return uint256.NewInt(0), nil
}
