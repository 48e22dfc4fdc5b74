package core

import (
	"github.com/holiman/uint256"

	"github.com/floflo777/mbc20/core/model"
)

// Fee component roles. Each names both a split of the gross amount and the
// destination it routes to; FeeBurn reduces total supply instead of paying out.
const (
	FeeBurn     = "burn"
	FeeTeam     = "team"
	FeeReward   = "reward"
	FeeDeployer = "deployer"
)

// Component is one slice of the transfer fee. Order within a schedule is
// load-bearing: the burn discount is consumed left to right, so the leftmost
// components absorb it first.
type Component struct {
	Role string
	Bps  uint16
}

// Schedule is an ordered fee split applied to pool transfers.
type Schedule []Component

var (
	// ScheduleV1: 1% burn, 0.5% reward, 0.5% team. Discount eats the burn
	// first, then the reward pool; the team share only goes at full discount.
	ScheduleV1 = Schedule{{FeeBurn, 100}, {FeeReward, 50}, {FeeTeam, 50}}

	// ScheduleV2: 1% burn, 1% deployer.
	ScheduleV2 = Schedule{{FeeBurn, 100}, {FeeDeployer, 100}}
)

func (s Schedule) TotalBps() uint16 {
	var total uint16
	for _, c := range s {
		total += c.Bps
	}
	return total
}

// Effective returns the schedule with discountBps consumed left to right.
func (s Schedule) Effective(discountBps uint16) Schedule {
	out := make(Schedule, 0, len(s))
	remaining := discountBps
	for _, c := range s {
		cut := c.Bps
		if remaining < cut {
			cut = remaining
		}
		remaining -= cut
		out = append(out, Component{c.Role, c.Bps - cut})
	}
	return out
}

// Cumulative self-burn thresholds (whole tokens) and the fee discount they
// unlock, highest first. Tiers do not stack.
var discountTiers = []struct {
	tokens uint64
	bps    uint16
}{
	{10000, 200},
	{5000, 150},
	{1000, 100},
	{500, 50},
	{200, 20},
	{100, 10},
}

// DiscountBps maps a cumulative burned amount (wei) to its fee discount.
func DiscountBps(burned *uint256.Int) uint16 {
	for _, tier := range discountTiers {
		if !burned.Lt(model.Ether(tier.tokens)) {
			return tier.bps
		}
	}
	return 0
}

// Portion is one computed fee component of a concrete transfer.
type Portion struct {
	Role   string
	Amount *uint256.Int
}

// Breakdown is the exact split of a gross transfer amount. Net plus all
// portions always reconstructs the gross amount; floor division on each
// portion means truncation favors the receiver.
type Breakdown struct {
	Gross    *uint256.Int
	Net      *uint256.Int
	Portions []Portion
	Discount uint16
}

// ComputeFee is a pure function of pool membership, the sender's discount and
// the gross amount. Wallet-to-wallet transfers pay nothing; any transfer
// touching a pool on either side is fee-bearing.
func ComputeFee(s Schedule, poolSender, poolReceiver bool, discountBps uint16, gross *uint256.Int) (Breakdown, error) {
	bd := Breakdown{Gross: gross.Clone(), Net: gross.Clone(), Discount: discountBps}
	if !poolSender && !poolReceiver {
		return bd, nil
	}
	for _, c := range s.Effective(discountBps) {
		if c.Bps == 0 {
			continue
		}
		amount, err := model.BpsOf(gross, c.Bps)
		if err != nil {
			return Breakdown{}, err
		}
		if amount.IsZero() {
			continue
		}
		bd.Portions = append(bd.Portions, Portion{c.Role, amount})
		bd.Net = new(uint256.Int).Sub(bd.Net, amount)
	}
	return bd, nil
}
