// Package analytics derives summary and analytics views from a customer
// record snapshot. Every function is pure and total over well-formed
// input: an empty customer set yields zeroed aggregates, not an error.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/loyaltypro/loyaltypro/internal/store"
)

// Timeframe is a relative date-window filter for transaction history.
type Timeframe string

const (
	TimeframeWeek  Timeframe = "7d"
	TimeframeMonth Timeframe = "30d"
	TimeframeAll   Timeframe = "all"
)

// ParseTimeframe validates a timeframe query value. Empty means all time.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case TimeframeWeek, TimeframeMonth, TimeframeAll:
		return Timeframe(s), nil
	case "":
		return TimeframeAll, nil
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}

// OverviewStats are the unfiltered headline numbers for a customer set.
type OverviewStats struct {
	TotalCustomers int             `json:"total_customers"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalPoints    int64           `json:"total_points"`
}

// Overview sums lifetime spend and outstanding points across all customers.
func Overview(customers []store.Customer) OverviewStats {
	stats := OverviewStats{
		TotalCustomers: len(customers),
		TotalRevenue:   decimal.Zero,
	}
	for _, c := range customers {
		stats.TotalRevenue = stats.TotalRevenue.Add(c.TotalSpent)
		stats.TotalPoints += c.Points
	}
	return stats
}

// DailyPoint is one calendar day's revenue and points.
type DailyPoint struct {
	Date    string          `json:"date"` // YYYY-MM-DD
	Revenue decimal.Decimal `json:"revenue"`
	Points  int64           `json:"points"`
}

// Series is the time-filtered revenue/points view plus derived scalars.
type Series struct {
	Days                  []DailyPoint    `json:"days"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	TotalPoints           int64           `json:"total_points"`
	TotalTxns             int             `json:"total_txns"`
	CustomerLifetimeValue int64           `json:"customer_lifetime_value"`
	AvgTxnsPerUser        string          `json:"avg_txns_per_user"`
}

// TimeSeries groups history entries within the timeframe by calendar
// day (UTC), ascending. Customers with no entries in the window are
// dropped from this view only; overview and spending brackets are
// timeframe-independent.
func TimeSeries(customers []store.Customer, tf Timeframe, now time.Time) Series {
	var cutoff time.Time
	switch tf {
	case TimeframeWeek:
		cutoff = now.AddDate(0, 0, -7)
	case TimeframeMonth:
		cutoff = now.AddDate(0, 0, -30)
	}

	series := Series{
		Days:           []DailyPoint{},
		TotalRevenue:   decimal.Zero,
		AvgTxnsPerUser: "0.00",
	}

	type bucket struct {
		revenue decimal.Decimal
		points  int64
	}
	daily := make(map[string]*bucket)

	activeCustomers := 0
	for _, c := range customers {
		kept := 0
		for _, h := range c.History {
			t, err := time.Parse(time.RFC3339, h.Date)
			if err != nil {
				continue
			}
			if tf != TimeframeAll && t.Before(cutoff) {
				continue
			}
			kept++
			series.TotalRevenue = series.TotalRevenue.Add(h.Bill)
			series.TotalPoints += h.Points
			series.TotalTxns++

			day := t.UTC().Format(time.DateOnly)
			b, ok := daily[day]
			if !ok {
				b = &bucket{revenue: decimal.Zero}
				daily[day] = b
			}
			b.revenue = b.revenue.Add(h.Bill)
			b.points += h.Points
		}
		if tf == TimeframeAll || kept > 0 {
			activeCustomers++
		}
	}

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		series.Days = append(series.Days, DailyPoint{
			Date:    day,
			Revenue: daily[day].revenue,
			Points:  daily[day].points,
		})
	}

	if activeCustomers > 0 {
		count := decimal.NewFromInt(int64(activeCustomers))
		series.CustomerLifetimeValue = series.TotalRevenue.Div(count).Round(0).IntPart()
		series.AvgTxnsPerUser = decimal.NewFromInt(int64(series.TotalTxns)).Div(count).StringFixed(2)
	}
	return series
}

// SpendingBracket is one bucket of the lifetime-spend histogram.
type SpendingBracket struct {
	Label     string `json:"label"`
	Customers int    `json:"customers"`
}

var bracketBounds = []decimal.Decimal{
	decimal.NewFromInt(1000),
	decimal.NewFromInt(5000),
	decimal.NewFromInt(10000),
}

// SpendingDistribution buckets every customer by lifetime spend into
// four fixed brackets. Ties at a boundary fall into the lower bracket.
func SpendingDistribution(customers []store.Customer) []SpendingBracket {
	brackets := []SpendingBracket{
		{Label: "<1k"},
		{Label: "1k-5k"},
		{Label: "5k-10k"},
		{Label: ">10k"},
	}
	for _, c := range customers {
		switch {
		case c.TotalSpent.GreaterThan(bracketBounds[2]):
			brackets[3].Customers++
		case c.TotalSpent.GreaterThan(bracketBounds[1]):
			brackets[2].Customers++
		case c.TotalSpent.GreaterThan(bracketBounds[0]):
			brackets[1].Customers++
		default:
			brackets[0].Customers++
		}
	}
	return brackets
}

// TopSpenders returns the n highest-spending customers, descending by
// lifetime spend. Customers with equal spend keep their original
// relative order.
func TopSpenders(customers []store.Customer, n int) []store.Customer {
	ranked := make([]store.Customer, len(customers))
	copy(ranked, customers)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalSpent.GreaterThan(ranked[j].TotalSpent)
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// ExportCSV renders the customer set as CSV in store-iteration order.
// The column order and quoting are relied on by downstream consumers
// and must not change.
func ExportCSV(customers []store.Customer) string {
	var b strings.Builder
	b.WriteString("Name,Mobile,TotalSpent,Points\n")
	for _, c := range customers {
		fmt.Fprintf(&b, "\"%s\",%s,%s,%d\n", c.Name, c.Mobile, c.TotalSpent.String(), c.Points)
	}
	return b.String()
}
