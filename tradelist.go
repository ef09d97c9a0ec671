package tradelog

import (
	"errors"
	"slices"
)

// ErrEmptyTradeList is returned by statistics on a list without trades.
var ErrEmptyTradeList = errors.New("empty trade list")

// TradeList is an ordered list of completed trades.
//
// TotalReturn, WinRate and TradeCount are only meaningful after Sort and
// AddStatistics.
type TradeList struct {
	trades []*Trade

	TotalReturn Money
	WinRate     Percent
	TradeCount  int
}

// NewTradeList returns a list holding trades, in that order.
func NewTradeList(trades ...*Trade) *TradeList {
	return &TradeList{trades: slices.Clone(trades)}
}

// Merge returns a new list with the trades of all lists, in order.
func Merge(lists ...*TradeList) *TradeList {
	l := NewTradeList()
	for _, o := range lists {
		l.trades = append(l.trades, o.trades...)
	}
	return l
}

// Add appends a trade.
func (l *TradeList) Add(t *Trade) { l.trades = append(l.trades, t) }

// Trades returns the trades in their current order.
func (l *TradeList) Trades() []*Trade { return l.trades }

// Len returns the number of trades.
func (l *TradeList) Len() int { return len(l.trades) }

// Sort orders trades by close time, then by open time. The sort is stable.
func (l *TradeList) Sort() {
	slices.SortStableFunc(l.trades, func(a, b *Trade) int {
		if c := a.Close.Compare(b.Close); c != 0 {
			return c
		}
		return a.Open.Compare(b.Open)
	})
}

// AddStatistics annotates every trade, in list order, with the running win
// rate and the running cumulative return, then sets the list totals from
// the last trade.
func (l *TradeList) AddStatistics() error {
	if len(l.trades) == 0 {
		return ErrEmptyTradeList
	}
	var wins int
	var running Money
	for i, t := range l.trades {
		if t.Win() {
			wins++
		}
		running = running.Add(t.Return).Round(MoneyScale)
		t.RunningWinRate = Ratio(wins, i+1)
		t.RunningReturn = running
	}
	last := l.trades[len(l.trades)-1]
	l.TotalReturn = last.RunningReturn
	l.WinRate = last.RunningWinRate
	l.TradeCount = len(l.trades)
	return nil
}

// GraphPoint is one point of the cumulative return curve.
type GraphPoint struct {
	DayOfYear     int // day of year of the trade close, UTC
	RunningReturn Money
}

// GraphData returns the running return of each trade, in list order.
func (l *TradeList) GraphData() []GraphPoint {
	points := make([]GraphPoint, 0, len(l.trades))
	for _, t := range l.trades {
		points = append(points, GraphPoint{
			DayOfYear:     t.Close.UTC().YearDay(),
			RunningReturn: t.RunningReturn,
		})
	}
	return points
}
