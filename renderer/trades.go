package renderer

import (
	"fmt"
	"time"

	"github.com/etnz/tradelog"
	"github.com/etnz/tradelog/date"
)

// Options controls how trades are presented.
type Options struct {
	Currency      string         // ISO code used to format amounts, defaults to USD
	Location      *time.Location // time zone of dates and trade weeks, defaults to UTC
	Range         date.Range     // range covered by the report, for the title
	TimespanParts int            // number of units in trade lengths, defaults to 2
}

// Report is the data of the trade report.
type Report struct {
	Title   string
	Summary Summary
	Weeks   []Week
	Open    []OpenRow
}

// Summary holds the account-wide statistics.
type Summary struct {
	Trades, Wins, Losses int
	WinRate              string
	TotalReturn          string
	Fees                 string
	Best, Worst          string
}

// Week groups the trades closed during a trade week.
type Week struct {
	Year, Number int
	From, To     date.Date
	Return       string
	Rows         []Row
}

// Row is a completed trade.
type Row struct {
	Symbol        string
	Strategy      string
	Quantity      string
	Opened        string
	Length        string
	AvgBuy        string
	AvgSell       string
	Return        string
	RunningReturn string
	WinRate       string
}

// OpenRow is a trade still open at the end of the report.
type OpenRow struct {
	Symbol       string
	Bias         string
	Outstanding  string
	Opened       string
	Transactions int
}

// NewReport builds the report of a sorted trade list with statistics, and
// of the trades still open.
func NewReport(list *tradelog.TradeList, open []*tradelog.Trade, opts Options) *Report {
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.TimespanParts <= 0 {
		opts.TimespanParts = 2
	}
	format := func(m tradelog.Money) string { return m.Format(opts.Currency) }

	r := &Report{Title: title(opts.Range)}
	var fees, weekReturn tradelog.Money
	var best, worst *tradelog.Trade
	for _, t := range list.Trades() {
		year, number := date.TradeWeek(date.Of(t.Close.In(opts.Location)))
		if n := len(r.Weeks); n == 0 || r.Weeks[n-1].Year != year || r.Weeks[n-1].Number != number {
			if n > 0 {
				r.Weeks[n-1].Return = format(weekReturn)
			}
			weekReturn = tradelog.Money{}
			days := date.TradeWeekRange(year, number)
			r.Weeks = append(r.Weeks, Week{Year: year, Number: number, From: days.From, To: days.To})
		}
		w := &r.Weeks[len(r.Weeks)-1]
		w.Rows = append(w.Rows, Row{
			Symbol:        t.Symbol,
			Strategy:      t.Strategy,
			Quantity:      t.Quantity.String(),
			Opened:        t.Open.In(opts.Location).Format("Mon 15:04"),
			Length:        tradelog.Timespan(t.LengthSeconds, opts.TimespanParts),
			AvgBuy:        format(t.Buy.AvgPrice.Abs()),
			AvgSell:       format(t.Sell.AvgPrice.Abs()),
			Return:        format(t.Return),
			RunningReturn: format(t.RunningReturn),
			WinRate:       t.RunningWinRate.String(),
		})
		weekReturn = weekReturn.Add(t.Return)
		fees = fees.Add(t.Buy.Fee).Add(t.Sell.Fee)
		if t.Win() {
			r.Summary.Wins++
		} else {
			r.Summary.Losses++
		}
		if best == nil || t.Return.GreaterThan(best.Return) {
			best = t
		}
		if worst == nil || t.Return.LessThan(worst.Return) {
			worst = t
		}
	}
	if n := len(r.Weeks); n > 0 {
		r.Weeks[n-1].Return = format(weekReturn)
		r.Summary.Best = fmt.Sprintf("%s %s", best.Symbol, format(best.Return))
		r.Summary.Worst = fmt.Sprintf("%s %s", worst.Symbol, format(worst.Return))
	}
	r.Summary.Trades = list.TradeCount
	r.Summary.WinRate = list.WinRate.String()
	r.Summary.TotalReturn = format(list.TotalReturn)
	r.Summary.Fees = format(fees)

	for _, t := range open {
		r.Open = append(r.Open, OpenRow{
			Symbol:       t.Symbol,
			Bias:         t.Bias.String(),
			Outstanding:  t.Outstanding().String(),
			Opened:       t.Open.In(opts.Location).Format("2006-01-02 15:04"),
			Transactions: len(t.TransactionIDs),
		})
	}
	return r
}

func title(r date.Range) string {
	switch {
	case r.From.IsZero() && r.To.IsZero():
		return "Trades"
	case r.To.IsZero():
		return fmt.Sprintf("Trades since %s", r.From)
	case r.From.IsZero():
		return fmt.Sprintf("Trades until %s", r.To)
	case r.From == r.To:
		return fmt.Sprintf("Trades on %s", r.From)
	}
	if _, ok := r.Period(); ok {
		return fmt.Sprintf("Trades %s", r.Identifier())
	}
	return fmt.Sprintf("Trades from %s to %s", r.From, r.To)
}
