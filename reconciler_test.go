package tradelog

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestReconciler_OutOfOrderDates(t *testing.T) {
	day1 := t0
	day2 := t0.Add(24 * time.Hour)
	a := newTx("A", "100", Buy, 10, "-1000", "0.01", day2)
	b := newTx("B", "101", SellToClose, 10, "1050", "0.03", day1)

	res, err := NewReconciler().Reconcile([]Transaction{a, b})
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	trades := res.Trades()
	if len(trades) != 1 {
		t.Fatalf("len(Trades()) = %d, want 1", len(trades))
	}
	if want := usd("49.96"); !trades[0].Return.Equal(want) {
		t.Errorf("Return = %v, want %v", trades[0].Return, want)
	}
}

func TestReconciler_HeldTransactionResolved(t *testing.T) {
	// The sale carries a lower order id than the purchase it closes.
	txs := []Transaction{
		newTx("s1", "100", SellToClose, 10, "1100", "0", at(time.Hour)),
		newTx("b1", "101", Buy, 10, "-1000", "0", at(0)),
	}
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewReconciler(WithLogger(zap.New(core)))

	res, err := r.Reconcile(txs)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if got := ids(res.Trades()); !reflect.DeepEqual(got, [][]string{{"b1", "s1"}}) {
		t.Errorf("trades = %v, want [[b1 s1]]", got)
	}

	want := []Diagnostic{
		{Kind: Rejected, Partition: Partition{"AAPL", "EQUITY"}, TransactionID: "s1"},
		{Kind: Resolved, Partition: Partition{"AAPL", "EQUITY"}, TransactionID: "s1", Positions: 1},
	}
	got := res.Diagnostics()
	if len(got) != len(want) {
		t.Fatalf("Diagnostics() = %v, want %v", got, want)
	}
	for i := range want {
		got[i].Reason = ""
		if got[i] != want[i] {
			t.Errorf("Diagnostics()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	resolved := logs.FilterMessage("held transaction resolved").All()
	if len(resolved) != 1 {
		t.Fatalf("got %d resolution logs, want 1", len(resolved))
	}
	if got := resolved[0].ContextMap()["positions"]; got != int64(1) {
		t.Errorf("positions = %v, want 1", got)
	}
}

func TestReconciler_HeldRetriedInFIFOOrder(t *testing.T) {
	// Both closing transactions arrive before the opening one. They are
	// retried in the order they were held.
	txs := []Transaction{
		newTx("s1", "100", SellToClose, 4, "440", "0", at(time.Hour)),
		newTx("s2", "101", SellToClose, 6, "660", "0", at(2*time.Hour)),
		newTx("b1", "102", Buy, 10, "-1000", "0", at(0)),
	}
	res, err := NewReconciler().Reconcile(txs)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if got := ids(res.Trades()); !reflect.DeepEqual(got, [][]string{{"b1", "s1", "s2"}}) {
		t.Errorf("trades = %v, want [[b1 s1 s2]]", got)
	}
	if got := res.Trades()[0].Return; !got.Equal(usd("100")) {
		t.Errorf("Return = %v, want 100", got)
	}
}

func TestReconciler_HeldWaitsForNextArrival(t *testing.T) {
	// A held transaction is not retried in its own arrival pass: the short
	// sale a5 must not open a trade before the purchase a6 arrives.
	txs := []Transaction{
		newTx("a1", "1", SellShort, 5, "500", "0", at(0)),
		newTx("a2", "2", SellToClose, 10, "1100", "0", at(time.Minute)),
		newTx("a3", "3", Buy, 10, "-1000", "0", at(2*time.Minute)),
		newTx("a4", "4", CoverShort, 5, "-450", "0", at(3*time.Minute)),
		newTx("a5", "5", SellShort, 4, "400", "0", at(4*time.Minute)),
		newTx("a6", "6", Buy, 4, "-400", "0", at(5*time.Minute)),
		newTx("a7", "7", SellToClose, 4, "420", "0", at(6*time.Minute)),
	}
	res, err := NewReconciler().Reconcile(txs)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	want := [][]string{{"a1", "a4"}, {"a3", "a2"}, {"a6", "a7"}}
	if got := ids(res.Trades()); !reflect.DeepEqual(got, want) {
		t.Errorf("trades = %v, want %v", got, want)
	}
	open := res.Partitions[0].Open
	if open == nil || !reflect.DeepEqual(open.TransactionIDs, []string{"a5"}) {
		t.Errorf("Open = %v, want a trade holding a5", open)
	}
	if n := len(res.Partitions[0].Unresolved); n != 0 {
		t.Errorf("len(Unresolved) = %d, want 0", n)
	}

	positions := make(map[string]int)
	for _, d := range res.Diagnostics() {
		if d.Kind == Resolved {
			positions[d.TransactionID] = d.Positions
		}
	}
	wantPositions := map[string]int{"a2": 3, "a3": 1, "a5": 2}
	if !reflect.DeepEqual(positions, wantPositions) {
		t.Errorf("resolved positions = %v, want %v", positions, wantPositions)
	}
}

func TestReconciler_Unresolved(t *testing.T) {
	lone := newTx("s1", "100", SellToClose, 10, "1100", "0", at(0))

	res, err := NewReconciler().Reconcile([]Transaction{lone})
	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Reconcile() error = %v, want *UnresolvedError", err)
	}
	if !reflect.DeepEqual(unresolved.TransactionIDs, []string{"s1"}) {
		t.Errorf("TransactionIDs = %v, want [s1]", unresolved.TransactionIDs)
	}
	if len(unresolved.Reasons) != 1 || unresolved.Reasons[0] == "" {
		t.Errorf("Reasons = %q, want one rejection reason", unresolved.Reasons)
	}
	if res == nil {
		t.Fatal("Reconcile() result is nil")
	}
	if n := len(res.Trades()); n != 0 {
		t.Errorf("len(Trades()) = %d, want 0", n)
	}
	if p := res.Partitions[0]; len(p.Unresolved) != 1 || p.Unresolved[0].TransactionID != "s1" {
		t.Errorf("Unresolved = %v, want [s1]", p.Unresolved)
	}
}

func TestReconciler_OpenTradeIsNotATrade(t *testing.T) {
	txs := []Transaction{
		newTx("b1", "100", Buy, 10, "-1000", "0", at(0)),
		newTx("s1", "101", SellToClose, 5, "550", "0", at(time.Hour)),
	}
	res, err := NewReconciler().Reconcile(txs)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if n := len(res.Trades()); n != 0 {
		t.Errorf("len(Trades()) = %d, want 0", n)
	}
	open := res.Partitions[0].Open
	if open == nil || !open.Outstanding().Equal(Q(5)) {
		t.Errorf("Open = %v, want a trade with 5 outstanding", open)
	}
}

func TestReconciler_Partitions(t *testing.T) {
	txs := []Transaction{
		newTx("1", "1", Buy, 10, "-1000", "0", at(0)),
		on("MSFT", newTx("2", "2", SellShort, 5, "2000", "0", at(time.Minute))),
		on("MSFT", newTx("3", "3", CoverShort, 5, "-1900", "0", at(2*time.Minute))),
		newTx("4", "4", SellToClose, 10, "1010", "0", at(3*time.Minute)),
	}
	res, err := NewReconciler().Reconcile(txs)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	var parts []string
	for _, p := range res.Partitions {
		parts = append(parts, p.Partition.String())
	}
	if want := []string{"AAPL/EQUITY", "MSFT/EQUITY"}; !reflect.DeepEqual(parts, want) {
		t.Errorf("partitions = %v, want %v", parts, want)
	}
	if got := ids(res.Trades()); !reflect.DeepEqual(got, [][]string{{"1", "4"}, {"2", "3"}}) {
		t.Errorf("trades = %v, want [[1 4] [2 3]]", got)
	}
}

func TestReconciler_WorkersKeepOrder(t *testing.T) {
	var txs []Transaction
	for i := 0; i < 50; i++ {
		sym := fmt.Sprintf("S%02d", i%7)
		buy := on(sym, newTx(fmt.Sprintf("b%d", i), fmt.Sprint(2*i), Buy, i+1, "-10", "0", at(time.Duration(i)*time.Minute)))
		sell := on(sym, newTx(fmt.Sprintf("s%d", i), fmt.Sprint(2*i+1), SellToClose, i+1, "11", "0", at(time.Duration(i)*time.Minute+time.Second)))
		if i%5 == 0 {
			txs = append(txs, sell, buy)
		} else {
			txs = append(txs, buy, sell)
		}
	}

	seq, seqErr := NewReconciler().Reconcile(txs)
	par, parErr := NewReconciler(WithWorkers(4)).Reconcile(txs)
	if (seqErr == nil) != (parErr == nil) {
		t.Fatalf("errors differ: %v, %v", seqErr, parErr)
	}
	if got, want := ids(par.Trades()), ids(seq.Trades()); !reflect.DeepEqual(got, want) {
		t.Errorf("parallel trades = %v, want %v", got, want)
	}
	if len(seq.Trades()) != 50 {
		t.Errorf("len(Trades()) = %d, want 50", len(seq.Trades()))
	}
}

func TestSortTransactions(t *testing.T) {
	txs := []Transaction{
		newTx("7", "10", Buy, 1, "0", "0", t0),
		newTx("5", "9", Buy, 1, "0", "0", t0),
		newTx("3", "10", Buy, 1, "0", "0", t0),
		newTx("1", "100", Buy, 1, "0", "0", t0),
	}
	SortTransactions(txs)
	var got []string
	for _, tx := range txs {
		got = append(got, tx.TransactionID)
	}
	if want := []string{"5", "3", "7", "1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SortTransactions() = %v, want %v", got, want)
	}
}
