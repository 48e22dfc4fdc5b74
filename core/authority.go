package core

import "github.com/ethereum/go-ethereum/common"

// authority is a one-way ownership slot: held by exactly one address until
// renounced, after which no holder ever exists again. The renounced state is
// its own case rather than a nil owner so it cannot be reassigned.
type authority struct {
	addr      common.Address
	renounced bool
}

func newAuthority(addr common.Address) authority {
	return authority{addr: addr}
}

func (a authority) is(addr common.Address) bool {
	return !a.renounced && a.addr == addr
}

// holder returns the current holder, or (zero, false) once renounced.
func (a authority) holder() (common.Address, bool) {
	if a.renounced {
		return common.Address{}, false
	}
	return a.addr, true
}

func (a authority) renounce() authority {
	return authority{renounced: true}
}
