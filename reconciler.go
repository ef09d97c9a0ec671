package tradelog

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Partition identifies the transactions reconciled together.
type Partition struct {
	Symbol    string
	AssetType string
}

func (p Partition) String() string { return p.Symbol + "/" + p.AssetType }

// DiagnosticKind classifies reconciliation diagnostics.
type DiagnosticKind int

const (
	Rejected   DiagnosticKind = iota + 1 // a transaction was held by the open trade
	Resolved                             // a held transaction was accepted later
	Unresolved                           // a held transaction was never accepted
)

func (k DiagnosticKind) String() string {
	switch k {
	case Rejected:
		return "rejected"
	case Resolved:
		return "resolved"
	case Unresolved:
		return "unresolved"
	}
	return fmt.Sprintf("DiagnosticKind(%d)", int(k))
}

// Diagnostic is an informational event of a reconciliation.
type Diagnostic struct {
	Kind          DiagnosticKind
	Partition     Partition
	TransactionID string
	Positions     int    // for Resolved, how many positions out of place the transaction was
	Reason        string // for Rejected and Unresolved, the last rejection reason
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case Resolved:
		return fmt.Sprintf("%v: transaction %s was out of place by %d positions", d.Partition, d.TransactionID, d.Positions)
	default:
		return fmt.Sprintf("%v: transaction %s %v: %s", d.Partition, d.TransactionID, d.Kind, d.Reason)
	}
}

// UnresolvedError lists the transactions of a partition that no trade
// could accept.
type UnresolvedError struct {
	Partition      Partition
	TransactionIDs []string
	Reasons        []string
}

func (e *UnresolvedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %d unresolved transactions:", e.Partition, len(e.TransactionIDs))
	for i, id := range e.TransactionIDs {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, " %s (%s)", id, e.Reasons[i])
	}
	return b.String()
}

// PartitionResult is the outcome of the reconciliation of one partition.
type PartitionResult struct {
	Partition   Partition
	Trades      *TradeList    // completed trades in order of completion
	Open        *Trade        // trade still open at the end, never written back
	Unresolved  []Transaction // held transactions never accepted
	Diagnostics []Diagnostic
}

// Err returns an *UnresolvedError if some transactions were never accepted.
func (p *PartitionResult) Err() error {
	if len(p.Unresolved) == 0 {
		return nil
	}
	err := &UnresolvedError{Partition: p.Partition}
	for _, d := range p.Diagnostics {
		if d.Kind == Unresolved {
			err.TransactionIDs = append(err.TransactionIDs, d.TransactionID)
			err.Reasons = append(err.Reasons, d.Reason)
		}
	}
	return err
}

// Result is the outcome of a reconciliation.
type Result struct {
	Partitions []*PartitionResult // in order of first appearance
}

// Trades returns the completed trades of all partitions, partition by
// partition, in order of completion.
func (r *Result) Trades() []*Trade {
	var trades []*Trade
	for _, p := range r.Partitions {
		trades = append(trades, p.Trades.Trades()...)
	}
	return trades
}

// TradeList returns a new list of all completed trades.
func (r *Result) TradeList() *TradeList {
	lists := make([]*TradeList, 0, len(r.Partitions))
	for _, p := range r.Partitions {
		lists = append(lists, p.Trades)
	}
	return Merge(lists...)
}

// Diagnostics returns the diagnostics of all partitions.
func (r *Result) Diagnostics() []Diagnostic {
	var ds []Diagnostic
	for _, p := range r.Partitions {
		ds = append(ds, p.Diagnostics...)
	}
	return ds
}

// Reconciler groups transactions into trades.
//
// Transactions are expected in ascending order id but their order is not
// trusted: a transaction rejected by the open trade is held and retried
// once after each following arrival.
type Reconciler struct {
	log     *zap.Logger
	scalp   time.Duration
	workers int
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithLogger sets the logger receiving diagnostics.
func WithLogger(log *zap.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if log != nil {
			r.log = log
		}
	}
}

// WithScalpThreshold sets the longest trade classified as a scalp.
func WithScalpThreshold(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) { r.scalp = d }
}

// WithWorkers sets how many partitions are reconciled concurrently.
func WithWorkers(n int) ReconcilerOption {
	return func(r *Reconciler) { r.workers = n }
}

// NewReconciler returns a sequential Reconciler with the default scalp threshold.
func NewReconciler(opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{log: zap.NewNop(), scalp: DefaultScalpThreshold, workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Partitions splits txs by (symbol, asset type), keeping the arrival order
// within each partition and the order of first appearance of partitions.
func Partitions(txs []Transaction) ([]Partition, map[Partition][]Transaction) {
	var keys []Partition
	parts := make(map[Partition][]Transaction)
	for _, tx := range txs {
		p := Partition{Symbol: tx.Symbol, AssetType: tx.AssetType}
		if _, ok := parts[p]; !ok {
			keys = append(keys, p)
		}
		parts[p] = append(parts[p], tx)
	}
	return keys, parts
}

// Reconcile reconciles every partition of txs.
//
// The result is always returned. The error, if any, joins the
// *UnresolvedError of each partition left with held transactions.
func (r *Reconciler) Reconcile(txs []Transaction) (*Result, error) {
	keys, parts := Partitions(txs)
	res := &Result{Partitions: make([]*PartitionResult, len(keys))}

	if r.workers <= 1 {
		for i, p := range keys {
			res.Partitions[i] = r.ReconcilePartition(parts[p])
		}
	} else {
		sem := make(chan struct{}, r.workers)
		var wg sync.WaitGroup
		for i, p := range keys {
			wg.Add(1)
			go func(i int, txs []Transaction) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				res.Partitions[i] = r.ReconcilePartition(txs)
			}(i, parts[p])
		}
		wg.Wait()
	}

	var errs []error
	for _, p := range res.Partitions {
		if err := p.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return res, errors.Join(errs...)
}

// ReconcilePartition reconciles the transactions of a single partition, in
// the order given.
func (r *Reconciler) ReconcilePartition(txs []Transaction) *PartitionResult {
	res := &PartitionResult{Trades: NewTradeList()}
	if len(txs) > 0 {
		res.Partition = Partition{Symbol: txs[0].Symbol, AssetType: txs[0].AssetType}
	}
	log := r.log.With(zap.Stringer("partition", res.Partition))

	open := NewTrade(ScalpThreshold(r.scalp))
	try := func(tx Transaction) error {
		if err := open.Add(tx); err != nil {
			return err
		}
		if open.Status == Complete {
			res.Trades.Add(open)
			open = NewTrade(ScalpThreshold(r.scalp))
		}
		return nil
	}

	var held heldQueue
	for _, tx := range txs {
		rejected := try(tx)
		if rejected != nil {
			log.Debug("transaction held",
				zap.String("transaction_id", tx.TransactionID),
				zap.Error(rejected))
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Kind:          Rejected,
				Partition:     res.Partition,
				TransactionID: tx.TransactionID,
				Reason:        rejected.Error(),
			})
		}
		// A rejected transaction joins the queue after the pass, so it is
		// first retried when the next transaction arrives.
		held.sweep(try, func(h heldTx) {
			log.Info("held transaction resolved",
				zap.String("transaction_id", h.tx.TransactionID),
				zap.Int("positions", h.holds))
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Kind:          Resolved,
				Partition:     res.Partition,
				TransactionID: h.tx.TransactionID,
				Positions:     h.holds,
			})
		})
		if rejected != nil {
			held.push(tx, rejected)
		}
	}

	for _, h := range held.items {
		log.Warn("transaction unresolved",
			zap.String("transaction_id", h.tx.TransactionID),
			zap.String("reason", h.reason.Error()))
		res.Unresolved = append(res.Unresolved, h.tx)
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Kind:          Unresolved,
			Partition:     res.Partition,
			TransactionID: h.tx.TransactionID,
			Reason:        h.reason.Error(),
		})
	}
	if len(open.TransactionIDs) > 0 {
		res.Open = open
	}
	return res
}
