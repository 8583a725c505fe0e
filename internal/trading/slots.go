package trading

import "github.com/swipetrade/perps-service/pkg/types"

// NextSlot computes the next free trade slot for a pair: 0 when the wallet
// has no open position on the pair, otherwise 1 + the highest occupied slot.
// Slots are never reused even when a lower slot closes first.
//
// The result is advisory: nothing reserves the slot between this computation
// and submission, so two concurrent opens on the same (wallet, pair) can
// collide and the protocol rejects the second.
func NextSlot(positions []types.PositionRef, pairIndex int) int {
	next := 0
	found := false

	for _, pos := range positions {
		if pos.PairIndex != pairIndex {
			continue
		}

		if !found || pos.TradeIndex >= next {
			next = pos.TradeIndex + 1
		}
		found = true
	}

	return next
}
