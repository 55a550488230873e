package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/pkg/apperror"
	"github.com/gastrolink/mesa-api/pkg/money"
)

// DivisionSpec describes one payer's requested share of an order before
// any amount has been computed. Exactly one of the three shapes applies:
// an explicit item list, a proportional share, or a fixed override amount.
type DivisionSpec struct {
	ItemIDs        []uuid.UUID
	Proportional   bool
	TipPct         decimal.Decimal
	TipEnabled     bool
	OverrideAmount *decimal.Decimal
}

// DivisionResult is the computed money for one spec, in the same order as
// the input specs.
type DivisionResult struct {
	BaseAmount decimal.Decimal
	TipAmount  decimal.Decimal
	// DiscountAmount is the slice of the order discount absorbed by this
	// division. Zero for overrides and proportional shares, whose bases are
	// already net of discount.
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
}

// ComputeDivisions turns a set of division specs into per-payer amounts
// against the order's current items, discount, and what invoices have
// already been applied: the coverage target is the unsettled remainder,
// not the full net payable, so a prior partial settlement shrinks what a
// later division set has to cover.
//
// Rules:
//   - An override amount is taken verbatim; the order discount is not
//     applied on top of it.
//   - An explicit item list is summed at frozen unit prices, discounted by
//     the order discount, and rounded to two places (banker's rounding).
//   - Proportional divisions split what remains of the unsettled amount
//     after overrides and explicit bases, equally, with the last
//     proportional division absorbing the rounding remainder so the whole
//     set sums to the remainder exactly.
//   - When every spec is an explicit item list, the set must partition the
//     order's items completely and the last division absorbs the remainder.
//   - Tip is computed per division from its base and is never discounted.
//
// Each item may appear in at most one division. Violations return
// apperror.ErrDivisionPartition.
func ComputeDivisions(order *entity.Order, specs []DivisionSpec) ([]DivisionResult, error) {
	if len(specs) == 0 {
		return nil, apperror.ErrDivisionPartition.WithMessagef("at least one division is required")
	}

	lines := make(map[uuid.UUID]decimal.Decimal, len(order.Items))
	for i := range order.Items {
		lines[order.Items[i].ID] = order.Items[i].LineTotal()
	}

	payable := order.RemainingPayable()
	results := make([]DivisionResult, len(specs))

	assigned := make(map[uuid.UUID]bool, len(lines))
	allExplicit := true
	proportionalIdx := make([]int, 0, len(specs))
	explicitIdx := -1

	for i := range specs {
		spec := &specs[i]
		switch {
		case spec.OverrideAmount != nil:
			allExplicit = false
			if spec.OverrideAmount.Sign() <= 0 {
				return nil, apperror.ErrDivisionPartition.WithMessagef("override amount must be positive")
			}
			results[i].BaseAmount = money.Round(*spec.OverrideAmount)

		case spec.Proportional:
			allExplicit = false
			proportionalIdx = append(proportionalIdx, i)

		default:
			if len(spec.ItemIDs) == 0 {
				return nil, apperror.ErrDivisionPartition.WithMessagef("division %d covers no items", i)
			}
			raw := decimal.Zero
			for _, itemID := range spec.ItemIDs {
				line, ok := lines[itemID]
				if !ok {
					return nil, apperror.ErrDivisionPartition.WithMessagef("item %s does not belong to the order", itemID)
				}
				if assigned[itemID] {
					return nil, apperror.ErrDivisionPartition.WithMessagef("item %s is assigned to more than one division", itemID)
				}
				assigned[itemID] = true
				raw = raw.Add(line)
			}
			base := money.Round(money.ApplyDiscount(raw, order.DiscountPct))
			results[i].BaseAmount = base
			results[i].DiscountAmount = money.Round(raw.Sub(base))
			explicitIdx = i
		}
	}

	if allExplicit {
		// Fully explicit sets must partition the order: every item covered
		// exactly once, and the rounded bases reassembled to the unsettled
		// amount by pushing the remainder onto the last division.
		if len(assigned) != len(lines) {
			return nil, apperror.ErrDivisionPartition.WithMessagef("%d of %d items are unassigned", len(lines)-len(assigned), len(lines))
		}
		sumOthers := decimal.Zero
		for i := range results {
			if i != explicitIdx {
				sumOthers = sumOthers.Add(results[i].BaseAmount)
			}
		}
		last := payable.Sub(sumOthers)
		if last.Sign() < 0 {
			return nil, apperror.ErrDivisionPartition.WithMessagef("division bases exceed the order's payable amount")
		}
		adjust := last.Sub(results[explicitIdx].BaseAmount)
		results[explicitIdx].BaseAmount = last
		results[explicitIdx].DiscountAmount = results[explicitIdx].DiscountAmount.Sub(adjust)
	}

	if len(proportionalIdx) > 0 {
		fixed := decimal.Zero
		for i := range results {
			fixed = fixed.Add(results[i].BaseAmount)
		}
		remaining := payable.Sub(fixed)
		if remaining.Sign() < 0 {
			return nil, apperror.ErrDivisionPartition.WithMessagef("division bases exceed the order's payable amount")
		}
		n := decimal.NewFromInt(int64(len(proportionalIdx)))
		share := money.Round(remaining.Div(n))
		distributed := decimal.Zero
		for k, i := range proportionalIdx {
			if k == len(proportionalIdx)-1 {
				// Last share takes what is left to the cent.
				results[i].BaseAmount = remaining.Sub(distributed)
			} else {
				results[i].BaseAmount = share
				distributed = distributed.Add(share)
			}
		}
	}

	covering := allExplicit || len(proportionalIdx) > 0
	if covering {
		sum := decimal.Zero
		for i := range results {
			sum = sum.Add(results[i].BaseAmount)
		}
		if !money.EqualWithin(sum, payable) {
			return nil, apperror.ErrDivisionPartition.WithMessagef("division bases sum to %s, expected %s", sum.StringFixed(2), payable.StringFixed(2))
		}
	}

	for i := range specs {
		if specs[i].TipEnabled && specs[i].TipPct.Sign() > 0 {
			results[i].TipAmount = money.Round(money.Percent(results[i].BaseAmount, specs[i].TipPct))
		} else {
			results[i].TipAmount = decimal.Zero
		}
		results[i].TotalAmount = results[i].BaseAmount.Add(results[i].TipAmount)
	}

	return results, nil
}
