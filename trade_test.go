package tradelog

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func TestTrade_LongRoundTrip(t *testing.T) {
	trade := mustAdd(
		newTx("1", "100", Buy, 10, "-1000", "0", at(0)),
		newTx("2", "101", SellToClose, 10, "1100", "0.02", at(30*time.Minute)),
	)

	if trade.Status != Complete {
		t.Fatalf("Status = %v, want %v", trade.Status, Complete)
	}
	checks := []struct {
		name      string
		got, want Money
	}{
		{"Buy.Cost", trade.Buy.Cost, usd("-1000")},
		{"Buy.NetCost", trade.Buy.NetCost, usd("-1000")},
		{"Buy.AvgPrice", trade.Buy.AvgPrice, usd("-100")},
		{"Sell.Fee", trade.Sell.Fee, usd("0.02")},
		{"Sell.NetCost", trade.Sell.NetCost, usd("1099.98")},
		{"Sell.AvgPrice", trade.Sell.AvgPrice, usd("109.998")},
		{"Return", trade.Return, usd("99.98")},
	}
	for _, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if !trade.Quantity.Equal(Q(10)) {
		t.Errorf("Quantity = %v, want 10", trade.Quantity)
	}
	if trade.LengthSeconds != 1800 {
		t.Errorf("LengthSeconds = %d, want 1800", trade.LengthSeconds)
	}
	if trade.Bias != Long {
		t.Errorf("Bias = %v, want %v", trade.Bias, Long)
	}
	if trade.Strategy != "LongScalp" {
		t.Errorf("Strategy = %q, want %q", trade.Strategy, "LongScalp")
	}
}

func TestTrade_Strategy(t *testing.T) {
	testCases := []struct {
		name string
		txs  []Transaction
		want string
	}{
		{
			name: "single order scalp",
			txs: []Transaction{
				newTx("1", "100", Buy, 10, "-1000", "0", at(0)),
				newTx("2", "100", SellToClose, 10, "1010", "0", at(30*time.Minute)),
			},
			want: "LongScalp",
		},
		{
			name: "three orders swing",
			txs: []Transaction{
				newTx("1", "100", Buy, 5, "-500", "0", at(0)),
				newTx("2", "101", Buy, 5, "-505", "0", at(time.Hour)),
				newTx("3", "102", SellToClose, 10, "1020", "0", at(2*time.Hour)),
			},
			want: "LongScaled Swing",
		},
		{
			name: "short on the scalp boundary",
			txs: []Transaction{
				newTx("1", "100", SellShort, 10, "1000", "0.01", at(0)),
				newTx("2", "101", CoverShort, 10, "-990", "0", at(time.Hour)),
			},
			want: "ShortScaled Scalp",
		},
		{
			name: "short just over the boundary",
			txs: []Transaction{
				newTx("1", "100", SellShort, 10, "1000", "0.01", at(0)),
				newTx("2", "100", CoverShort, 10, "-990", "0", at(time.Hour+time.Second)),
			},
			want: "ShortSwing",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trade := mustAdd(tc.txs...)
			if trade.Strategy != tc.want {
				t.Errorf("Strategy = %q, want %q", trade.Strategy, tc.want)
			}
		})
	}
}

func TestTrade_ScalpThreshold(t *testing.T) {
	trade := NewTrade(ScalpThreshold(5 * time.Minute))
	trade.Add(newTx("1", "100", Buy, 1, "-10", "0", at(0)))
	trade.Add(newTx("2", "101", SellToClose, 1, "11", "0", at(10*time.Minute)))
	if trade.Strategy != "LongScaled Swing" {
		t.Errorf("Strategy = %q, want %q", trade.Strategy, "LongScaled Swing")
	}
}

func TestTrade_Rejections(t *testing.T) {
	buy := newTx("1", "100", Buy, 10, "-1000", "0", at(0))
	short := newTx("1", "100", SellShort, 10, "1000", "0", at(0))

	testCases := []struct {
		name  string
		setup []Transaction
		tx    Transaction
		want  error
	}{
		{"close without open", nil, newTx("2", "101", SellToClose, 10, "1000", "0", at(0)), ErrInvalidTransition},
		{"cover without open", nil, newTx("2", "101", CoverShort, 10, "-1000", "0", at(0)), ErrInvalidTransition},
		{"short a long", []Transaction{buy}, newTx("2", "101", SellShort, 5, "500", "0", at(0)), ErrInvalidTransition},
		{"cover a long", []Transaction{buy}, newTx("2", "101", CoverShort, 5, "-500", "0", at(0)), ErrInvalidTransition},
		{"buy a short", []Transaction{short}, newTx("2", "101", Buy, 5, "-500", "0", at(0)), ErrInvalidTransition},
		{"sell a short", []Transaction{short}, newTx("2", "101", SellToClose, 5, "500", "0", at(0)), ErrInvalidTransition},
		{"other symbol", []Transaction{buy}, on("MSFT", newTx("2", "101", SellToClose, 10, "1000", "0", at(0))), ErrSymbolMismatch},
		{"duplicate", []Transaction{buy}, buy, ErrDuplicateTransaction},
		{"complete", []Transaction{buy, newTx("2", "101", SellToClose, 10, "1000", "0", at(0))}, newTx("3", "102", Buy, 1, "-100", "0", at(0)), ErrTradeComplete},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trade := mustAdd(tc.setup...)
			before := *trade
			beforeIDs := slices.Clone(trade.TransactionIDs)

			err := trade.Add(tc.tx)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Add() error = %v, want %v", err, tc.want)
			}
			if trade.AddTransaction(tc.tx) {
				t.Errorf("AddTransaction() = true, want false")
			}
			if !slices.Equal(trade.TransactionIDs, beforeIDs) {
				t.Errorf("TransactionIDs = %v, want %v", trade.TransactionIDs, beforeIDs)
			}
			if trade.Symbol != before.Symbol || trade.Bias != before.Bias || trade.Status != before.Status {
				t.Errorf("trade changed: got %v %v %v, want %v %v %v", trade.Symbol, trade.Bias, trade.Status, before.Symbol, before.Bias, before.Status)
			}
			if !trade.Outstanding().Equal(before.outstanding) {
				t.Errorf("Outstanding() = %v, want %v", trade.Outstanding(), before.outstanding)
			}
		})
	}
}

func TestTrade_AssetTypeMismatch(t *testing.T) {
	trade := mustAdd(newTx("1", "100", Buy, 10, "-1000", "0", at(0)))
	opt := newTx("2", "101", SellToClose, 10, "1000", "0", at(0))
	opt.AssetType = "OPTION"
	if err := trade.Add(opt); !errors.Is(err, ErrAssetTypeMismatch) {
		t.Errorf("Add() error = %v, want %v", err, ErrAssetTypeMismatch)
	}
}

func TestTrade_RejectedFirstTransactionLeavesTradeEmpty(t *testing.T) {
	trade := NewTrade()
	if trade.AddTransaction(newTx("1", "100", SellToClose, 10, "1000", "0", at(0))) {
		t.Fatal("AddTransaction() = true, want false")
	}
	if trade.Symbol != "" || trade.AssetType != "" || trade.Bias != NoBias {
		t.Errorf("rejected transaction adopted: symbol %q, asset type %q, bias %v", trade.Symbol, trade.AssetType, trade.Bias)
	}
	// The trade can still open on another symbol.
	if !trade.AddTransaction(on("MSFT", newTx("2", "101", Buy, 1, "-400", "0", at(0)))) {
		t.Error("AddTransaction() = false, want true")
	}
}

func TestTrade_Idempotence(t *testing.T) {
	buy := newTx("1", "100", Buy, 10, "-1000", "0.5", at(0))
	trade := NewTrade()
	if !trade.AddTransaction(buy) {
		t.Fatal("first AddTransaction() = false, want true")
	}
	openAt, closeAt := trade.Open, trade.Close
	if trade.AddTransaction(buy) {
		t.Fatal("second AddTransaction() = true, want false")
	}
	if len(trade.TransactionIDs) != 1 || len(trade.OrderIDs) != 1 {
		t.Errorf("ids = %v %v, want one of each", trade.TransactionIDs, trade.OrderIDs)
	}
	if !trade.Outstanding().Equal(Q(10)) {
		t.Errorf("Outstanding() = %v, want 10", trade.Outstanding())
	}
	if !trade.Open.Equal(openAt) || !trade.Close.Equal(closeAt) {
		t.Errorf("dates changed")
	}
}

func TestTrade_Conservation(t *testing.T) {
	testCases := []struct {
		name string
		txs  []Transaction
	}{
		{"scaled long", []Transaction{
			newTx("1", "1", Buy, 3, "-30", "0", at(0)),
			newTx("2", "2", Buy, 7, "-71", "0", at(time.Minute)),
			newTx("3", "3", SellToClose, 4, "41", "0.01", at(2*time.Minute)),
			newTx("4", "4", SellToClose, 6, "62", "0.01", at(3*time.Minute)),
		}},
		{"scaled short", []Transaction{
			newTx("1", "1", SellShort, 5, "50", "0.01", at(0)),
			newTx("2", "2", SellShort, 5, "51", "0.01", at(time.Minute)),
			newTx("3", "3", CoverShort, 10, "-98", "0", at(2*time.Minute)),
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trade := mustAdd(tc.txs...)
			if trade.Status != Complete {
				t.Fatalf("Status = %v, want %v", trade.Status, Complete)
			}
			if !trade.Buy.Amount.Equal(trade.Sell.Amount) {
				t.Errorf("Buy.Amount = %v, Sell.Amount = %v, want equal", trade.Buy.Amount, trade.Sell.Amount)
			}
		})
	}
}

func TestTrade_FractionalShares(t *testing.T) {
	buy := newTx("1", "1", Buy, 0, "-50.25", "0", at(0))
	buy.Amount = Q(0.5)
	sell := newTx("2", "2", SellToClose, 0, "51", "0", at(time.Minute))
	sell.Amount = Q(0.5)
	trade := mustAdd(buy, sell)
	if trade.Status != Complete {
		t.Fatalf("Status = %v, want %v", trade.Status, Complete)
	}
	if !trade.Buy.AvgPrice.Equal(usd("-100.5")) {
		t.Errorf("Buy.AvgPrice = %v, want -100.5", trade.Buy.AvgPrice)
	}
}

func TestTrade_ReturnRoundTrip(t *testing.T) {
	testCases := []struct {
		buyCost, buyFee, sellCost, sellFee string
	}{
		{"-1000", "0", "1100", "0"},
		{"-1000.005", "0.004", "999.995", "0.026"},
		{"-33.33", "0.01", "33.34", "0.01"},
		{"-12345.6789", "1.2345", "12000.0001", "0.9999"},
	}
	for _, tc := range testCases {
		trade := mustAdd(
			newTx("1", "1", Buy, 3, tc.buyCost, tc.buyFee, at(0)),
			newTx("2", "2", SellToClose, 3, tc.sellCost, tc.sellFee, at(time.Minute)),
		)
		want := trade.Sell.NetCost.Add(trade.Buy.NetCost)
		if !trade.Return.Equal(want) {
			t.Errorf("Return = %v, want %v (%+v)", trade.Return, want, tc)
		}
	}
}

func TestTrade_OutOfOrderDates(t *testing.T) {
	day1 := t0
	day2 := t0.Add(24 * time.Hour)

	// A is recorded after B, but has the lowest order id.
	a := newTx("A", "100", Buy, 10, "-1000", "0.01", day2)
	b := newTx("B", "101", SellToClose, 10, "1050", "0.03", day1)
	misdated := mustAdd(a, b)

	a.Date, b.Date = day1, day2
	chrono := mustAdd(a, b)

	if !misdated.Return.Equal(chrono.Return) {
		t.Errorf("Return = %v, want %v", misdated.Return, chrono.Return)
	}
	if want := b.Cost.Sub(b.Fee).Add(a.Cost.Sub(a.Fee)); !misdated.Return.Equal(want) {
		t.Errorf("Return = %v, want %v", misdated.Return, want)
	}
	if !misdated.Open.Equal(day1) || !misdated.Close.Equal(day2) {
		t.Errorf("Open, Close = %v, %v, want %v, %v", misdated.Open, misdated.Close, day1, day2)
	}
}
