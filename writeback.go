package tradelog

import (
	"context"
	"errors"
	"fmt"
)

// ErrIncompleteTrade is returned when an open trade is written back.
var ErrIncompleteTrade = errors.New("incomplete trade")

// TradeWriter persists trades and links transactions to them.
type TradeWriter interface {
	// InsertTrade stores a trade and returns its id.
	InsertTrade(ctx context.Context, accountID int64, t *Trade) (tradeID int64, err error)
	// LinkTransaction sets the trade of a transaction and returns the
	// number of affected rows.
	LinkTransaction(ctx context.Context, transactionID string, tradeID int64) (affected int64, err error)
}

// LinkError reports a link that did not affect exactly one transaction row:
// the transaction row is missing or duplicated.
type LinkError struct {
	TransactionID string
	TradeID       int64
	Affected      int64
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("linking transaction %s to trade %d affected %d rows, want 1", e.TransactionID, e.TradeID, e.Affected)
}

// SaveTrades writes trades and links every transaction to its trade. It
// stops at the first failure and returns the number of trades fully saved;
// the caller is expected to roll back the batch.
func SaveTrades(ctx context.Context, w TradeWriter, accountID int64, trades []*Trade) (int, error) {
	for _, t := range trades {
		if t.Status != Complete {
			return 0, fmt.Errorf("%v/%v: %w", t.Symbol, t.AssetType, ErrIncompleteTrade)
		}
	}
	for i, t := range trades {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		id, err := w.InsertTrade(ctx, accountID, t)
		if err != nil {
			return i, fmt.Errorf("cannot insert trade %v/%v: %w", t.Symbol, t.AssetType, err)
		}
		for _, txID := range t.TransactionIDs {
			n, err := w.LinkTransaction(ctx, txID, id)
			if err != nil {
				return i, fmt.Errorf("cannot link transaction %s: %w", txID, err)
			}
			if n != 1 {
				return i, &LinkError{TransactionID: txID, TradeID: id, Affected: n}
			}
		}
	}
	return len(trades), nil
}
