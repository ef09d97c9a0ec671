package tradelog

import (
	"context"
	"errors"
	"testing"
	"time"
)

// memWriter is an in-memory TradeWriter. Transactions are linked only if
// they are known rows.
type memWriter struct {
	rows   map[string]int // transaction id -> number of rows
	links  map[string]int64
	trades []*Trade
}

func newMemWriter(txIDs ...string) *memWriter {
	w := &memWriter{rows: map[string]int{}, links: map[string]int64{}}
	for _, id := range txIDs {
		w.rows[id]++
	}
	return w
}

func (w *memWriter) InsertTrade(_ context.Context, _ int64, t *Trade) (int64, error) {
	w.trades = append(w.trades, t)
	return int64(len(w.trades)), nil
}

func (w *memWriter) LinkTransaction(_ context.Context, txID string, tradeID int64) (int64, error) {
	n := w.rows[txID]
	if n > 0 {
		w.links[txID] = tradeID
	}
	return int64(n), nil
}

func roundTrip(buyID, sellID string) *Trade {
	return mustAdd(
		newTx(buyID, buyID, Buy, 1, "-10", "0", at(0)),
		newTx(sellID, sellID, SellToClose, 1, "11", "0", at(time.Minute)),
	)
}

func TestSaveTrades(t *testing.T) {
	w := newMemWriter("b1", "s1", "b2", "s2")
	n, err := SaveTrades(context.Background(), w, 7, []*Trade{roundTrip("b1", "s1"), roundTrip("b2", "s2")})
	if err != nil {
		t.Fatalf("SaveTrades() error = %v", err)
	}
	if n != 2 {
		t.Errorf("SaveTrades() = %d, want 2", n)
	}
	want := map[string]int64{"b1": 1, "s1": 1, "b2": 2, "s2": 2}
	for id, tradeID := range want {
		if w.links[id] != tradeID {
			t.Errorf("transaction %s linked to %d, want %d", id, w.links[id], tradeID)
		}
	}
}

func TestSaveTrades_LinkError(t *testing.T) {
	testCases := []struct {
		name     string
		rows     []string
		wantTx   string
		affected int64
	}{
		{"missing row", []string{"b1"}, "s1", 0},
		{"duplicated row", []string{"b1", "s1", "s1"}, "s1", 2},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := newMemWriter(tc.rows...)
			_, err := SaveTrades(context.Background(), w, 7, []*Trade{roundTrip("b1", "s1")})
			var linkErr *LinkError
			if !errors.As(err, &linkErr) {
				t.Fatalf("SaveTrades() error = %v, want *LinkError", err)
			}
			if linkErr.TransactionID != tc.wantTx || linkErr.TradeID != 1 || linkErr.Affected != tc.affected {
				t.Errorf("LinkError = %+v, want transaction %s, trade 1, %d rows", linkErr, tc.wantTx, tc.affected)
			}
		})
	}
}

func TestSaveTrades_IncompleteTrade(t *testing.T) {
	open := mustAdd(newTx("b1", "1", Buy, 1, "-10", "0", at(0)))
	w := newMemWriter("b1")
	if _, err := SaveTrades(context.Background(), w, 7, []*Trade{open}); !errors.Is(err, ErrIncompleteTrade) {
		t.Errorf("SaveTrades() error = %v, want %v", err, ErrIncompleteTrade)
	}
	if len(w.trades) != 0 {
		t.Errorf("%d trades written, want 0", len(w.trades))
	}
}
