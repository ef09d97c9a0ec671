package tradelog

import (
	"time"

	"github.com/shopspring/decimal"
)

// t0 is the market open used as a reference time in tests.
var t0 = time.Date(2025, time.March, 3, 14, 30, 0, 0, time.UTC)

// usd is a helper for test to create money from a decimal string.
func usd(s string) Money { return M(decimal.RequireFromString(s)) }

// at returns t0 shifted by d.
func at(d time.Duration) time.Time { return t0.Add(d) }

// newTx is a helper to create an AAPL equity transaction.
func newTx(id, order string, st SubType, qty int, cost, fee string, date time.Time) Transaction {
	return Transaction{
		TransactionID: id,
		OrderID:       order,
		Symbol:        "AAPL",
		AssetType:     "EQUITY",
		SubType:       st,
		Amount:        Q(qty),
		Cost:          usd(cost),
		Fee:           usd(fee),
		Date:          date,
	}
}

// on returns a copy of tx on another symbol.
func on(symbol string, tx Transaction) Transaction {
	tx.Symbol = symbol
	return tx
}

// mustAdd adds transactions to a fresh trade and panics on rejection.
func mustAdd(txs ...Transaction) *Trade {
	t := NewTrade()
	for _, tx := range txs {
		if err := t.Add(tx); err != nil {
			panic(err)
		}
	}
	return t
}

// ids returns the transaction ids of trades.
func ids(trades []*Trade) [][]string {
	out := make([][]string, 0, len(trades))
	for _, t := range trades {
		out = append(out, t.TransactionIDs)
	}
	return out
}
