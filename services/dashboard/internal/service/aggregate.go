package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/tradefund/services/dashboard/internal/transport"
)

const monthLayout = "2006-01"

func monthKey(t time.Time) string { return t.UTC().Format(monthLayout) }

// sums accumulates money per currency.
type sums map[string]decimal.Decimal

func (s sums) add(currency string, amount decimal.Decimal) {
	s[currency] = s[currency].Add(amount)
}

func (s sums) list() []transport.CurrencyAmount {
	out := make([]transport.CurrencyAmount, 0, len(s))
	for cur, amt := range s {
		out = append(out, transport.CurrencyAmount{Currency: cur, Amount: amt})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Currency < out[b].Currency })
	return out
}

// window buckets events into the last n calendar months, oldest first.
// Events outside the window are dropped.
type window struct {
	keys   []string
	index  map[string]int
	counts []int
	totals []sums
}

func newWindow(now time.Time, months int) *window {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	w := &window{
		keys:   make([]string, months),
		index:  make(map[string]int, months),
		counts: make([]int, months),
		totals: make([]sums, months),
	}
	for i := range months {
		k := monthKey(first.AddDate(0, i, 0))
		w.keys[i] = k
		w.index[k] = i
		w.totals[i] = sums{}
	}
	return w
}

func (w *window) add(at time.Time, currency string, amount decimal.Decimal) {
	i, ok := w.index[monthKey(at)]
	if !ok {
		return
	}
	w.counts[i]++
	if currency != "" {
		w.totals[i].add(currency, amount)
	}
}

// addTotals counts one event carrying several currency amounts.
func (w *window) addTotals(at time.Time, totals sums) {
	i, ok := w.index[monthKey(at)]
	if !ok {
		return
	}
	w.counts[i]++
	for cur, amt := range totals {
		w.totals[i].add(cur, amt)
	}
}

func (w *window) series() []transport.MonthPoint {
	out := make([]transport.MonthPoint, len(w.keys))
	for i, k := range w.keys {
		out[i] = transport.MonthPoint{Month: k, Count: w.counts[i], Totals: w.totals[i].list()}
	}
	return out
}

func countStrings(values []string) map[string]int64 {
	out := make(map[string]int64)
	for _, v := range values {
		out[v]++
	}
	return out
}

// percent is raised/target as a percentage with two decimals, zero without a target.
func percent(raised, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	return raised.Mul(decimal.NewFromInt(100)).Div(target).Round(2)
}
