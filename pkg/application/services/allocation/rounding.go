package allocation

import "github.com/shopspring/decimal"

// balanceToTotal rounds solved values to the given decimal places and nudges
// them so they sum exactly to total. order lists indexes from highest to
// lowest priority; excess goes to the largest value nearest the front, and
// deficits come one unit at a time from the largest value nearest the back,
// so a non-increasing priority chain stays non-increasing.
func balanceToTotal(values []float64, order []int, total decimal.Decimal, places int32) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	sum := decimal.Zero
	for i, v := range values {
		d := decimal.NewFromFloat(v).Round(places)
		if d.IsNegative() {
			d = decimal.Zero
		}
		out[i] = d
		sum = sum.Add(d)
	}
	if len(out) == 0 {
		return out
	}

	residual := total.Round(places).Sub(sum)
	if residual.IsPositive() {
		i := largest(out, order, true)
		out[i] = out[i].Add(residual)
		return out
	}

	unit := decimal.New(1, -places)
	for residual.IsNegative() {
		i := largest(out, order, false)
		if out[i].IsZero() {
			break
		}
		step := decimal.Min(unit, residual.Neg(), out[i])
		out[i] = out[i].Sub(step)
		residual = residual.Add(step)
	}
	return out
}

// largest returns the index of the largest value, preferring the first or the
// last of equal values in order
func largest(values []decimal.Decimal, order []int, first bool) int {
	best := order[0]
	for _, i := range order[1:] {
		cmp := values[i].Cmp(values[best])
		if cmp > 0 || (!first && cmp == 0) {
			best = i
		}
	}
	return best
}

// priorityOrder lists segment indexes with prioritised segments first, in
// priority order, followed by the rest in input order
func priorityOrder(segments []string, priority []string) []int {
	position := make(map[string]int, len(segments))
	for i, s := range segments {
		position[s] = i
	}

	order := make([]int, 0, len(segments))
	used := make(map[int]bool, len(segments))
	for _, s := range priority {
		if i, ok := position[s]; ok && !used[i] {
			order = append(order, i)
			used[i] = true
		}
	}
	for i := range segments {
		if !used[i] {
			order = append(order, i)
		}
	}
	return order
}
