// Package report builds the monthly spend report: completed orders for a
// calendar month, item prices summed per product category.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/suyanik/Einkauflist/internal/store"
)

// Entry is one category's subtotal in the breakdown.
type Entry struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// Monthly is the aggregated report for one calendar month.
type Monthly struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	Breakdown  []Entry         `json:"breakdown"`
}

// Aggregator computes monthly reports from the order store.
type Aggregator struct {
	orders *store.OrderStore
}

func NewAggregator(orders *store.OrderStore) *Aggregator {
	return &Aggregator{orders: orders}
}

// MonthWindow returns the inclusive [first day 00:00:00, last day 23:59:59]
// bounds of the given month in UTC. Day 0 of the following month normalizes
// to the month's last day, so leap years come out right.
func MonthWindow(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.Month(month)+1, 0, 23, 59, 59, 0, time.UTC)
	return start, end
}

// Monthly aggregates every completed order created in the given month.
func (a *Aggregator) Monthly(year, month int) (*Monthly, error) {
	start, end := MonthWindow(year, month)
	items, err := a.orders.ListCompletedItemPrices(start, end)
	if err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}
	return aggregate(year, month, items), nil
}

// aggregate groups item prices by category display name. A missing price
// counts as zero. The breakdown is sorted by subtotal descending; categories
// with equal subtotals keep the order they were first seen in.
func aggregate(year, month int, items []store.PricedItem) *Monthly {
	grandTotal := decimal.Zero
	totals := make(map[string]decimal.Decimal)
	var names []string

	for _, item := range items {
		price := decimal.Zero
		if item.Price.Valid {
			price = item.Price.Decimal
		}
		if _, seen := totals[item.CategoryName]; !seen {
			names = append(names, item.CategoryName)
		}
		totals[item.CategoryName] = totals[item.CategoryName].Add(price)
		grandTotal = grandTotal.Add(price)
	}

	breakdown := make([]Entry, 0, len(names))
	for _, name := range names {
		breakdown = append(breakdown, Entry{Category: name, Total: totals[name]})
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Total.GreaterThan(breakdown[j].Total)
	})

	return &Monthly{Year: year, Month: month, GrandTotal: grandTotal, Breakdown: breakdown}
}
