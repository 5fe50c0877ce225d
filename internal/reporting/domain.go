package reporting

import (
	"sort"
	"time"
)

// Period selects the reporting window.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// Valid reports whether the period is one of the supported windows.
func (p Period) Valid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	}
	return false
}

// Start returns the beginning of the period relative to now, in the server's
// local zone. Week is a rolling seven days; month, quarter and year snap to
// their calendar starts.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PeriodQuarter:
		quarterMonth := ((int(now.Month())-1)/3)*3 + 1
		return time.Date(now.Year(), time.Month(quarterMonth), 1, 0, 0, 0, 0, now.Location())
	case PeriodYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
}

// Overview aggregates the owner's sales inside a period.
type Overview struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalCost        float64 `json:"total_cost"`
	GrossProfit      float64 `json:"gross_profit"`
	ProfitMargin     float64 `json:"profit_margin"`
	TransactionCount int     `json:"transaction_count"`
}

// TopProduct is one row of the best-sellers ranking.
type TopProduct struct {
	ItemID        int64   `json:"item_id"`
	ItemName      string  `json:"item_name"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
	SaleCount     int     `json:"sale_count"`
}

// sortTopProducts orders a ranking by revenue, then quantity, then item id,
// so ties always resolve the same way.
func sortTopProducts(products []TopProduct) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if a.TotalRevenue != b.TotalRevenue {
			return a.TotalRevenue > b.TotalRevenue
		}
		if a.TotalQuantity != b.TotalQuantity {
			return a.TotalQuantity > b.TotalQuantity
		}
		return a.ItemID < b.ItemID
	})
}

// MonthlySummary is one month of the profit and loss trend.
type MonthlySummary struct {
	Month   time.Time `json:"month"`
	Revenue float64   `json:"revenue"`
	Cost    float64   `json:"cost"`
	Profit  float64   `json:"profit"`
}
