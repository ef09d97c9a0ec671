package cmd

import (
	"context"
	"errors"

	"github.com/etnz/tradelog"
	"github.com/etnz/tradelog/date"
	"github.com/etnz/tradelog/store"
	"go.uber.org/zap"
)

// transactions reads the valid transactions of the account in rng. Invalid
// records are logged and skipped.
func (a *app) transactions(ctx context.Context, rng date.Range, unlinked bool) ([]tradelog.Transaction, error) {
	since, until := rng.Bounds(a.cfg.Location())
	loaded, err := a.store.Transactions(ctx, store.Filter{
		AccountID: a.cfg.AccountID,
		Type:      a.cfg.TransactionType,
		AssetType: a.cfg.AssetType,
		Since:     since,
		Until:     until,
		Unlinked:  unlinked,
	})
	if err != nil {
		return nil, err
	}
	for _, inv := range loaded.Invalid {
		a.log.Warn("invalid transaction skipped", zap.String("transaction_id", inv.TransactionID), zap.Error(inv.Err))
	}
	a.log.Debug("transactions loaded", zap.Int("count", len(loaded.Transactions)), zap.Int("invalid", len(loaded.Invalid)))
	return loaded.Transactions, nil
}

// reconciler returns a reconciler configured for the account. A positive
// workers overrides the configuration.
func (a *app) reconciler(workers int) *tradelog.Reconciler {
	if workers <= 0 {
		workers = a.cfg.Workers
	}
	return tradelog.NewReconciler(
		tradelog.WithLogger(a.log),
		tradelog.WithScalpThreshold(a.cfg.ScalpThreshold),
		tradelog.WithWorkers(workers),
	)
}

// openTrades returns the trades left open by a reconciliation.
func openTrades(res *tradelog.Result) []*tradelog.Trade {
	var open []*tradelog.Trade
	for _, p := range res.Partitions {
		if p.Open != nil {
			open = append(open, p.Open)
		}
	}
	return open
}

// unresolvedCount returns the number of transactions no trade accepted.
func unresolvedCount(res *tradelog.Result) int {
	n := 0
	for _, p := range res.Partitions {
		n += len(p.Unresolved)
	}
	return n
}

// tradeList returns the sorted trades of rng with statistics, and the trades
// still open. Trades are rebuilt from all the transactions of rng, or read
// from the saved trades closed in rng.
func (a *app) tradeList(ctx context.Context, rng date.Range, saved bool) (*tradelog.TradeList, []*tradelog.Trade, error) {
	var list *tradelog.TradeList
	var open []*tradelog.Trade
	if saved {
		since, until := rng.Bounds(a.cfg.Location())
		stored, err := a.store.Trades(ctx, a.cfg.AccountID, since, until)
		if err != nil {
			return nil, nil, err
		}
		list = tradelog.NewTradeList()
		for _, st := range stored {
			list.Add(st.Trade)
		}
	} else {
		txs, err := a.transactions(ctx, rng, false)
		if err != nil {
			return nil, nil, err
		}
		res, unresolved := a.reconciler(0).Reconcile(txs)
		printDiagnostics(res.Diagnostics(), *Verbose)
		if unresolved != nil {
			a.log.Warn("some transactions are unresolved", zap.Int("count", unresolvedCount(res)))
		}
		list = res.TradeList()
		open = openTrades(res)
	}
	list.Sort()
	if err := list.AddStatistics(); err != nil && !errors.Is(err, tradelog.ErrEmptyTradeList) {
		return nil, nil, err
	}
	return list, open, nil
}
