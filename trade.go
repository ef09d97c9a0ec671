package tradelog

import (
	"errors"
	"fmt"
	"time"
)

// Reasons for a transaction to be rejected by a trade.
var (
	ErrTradeComplete        = errors.New("trade is already complete")
	ErrSymbolMismatch       = errors.New("symbol mismatch")
	ErrAssetTypeMismatch    = errors.New("asset type mismatch")
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrInvalidTransition    = errors.New("invalid transition")
)

// DefaultScalpThreshold is the longest trade still classified as a scalp.
const DefaultScalpThreshold = time.Hour

// Status of a trade. Complete is terminal.
type Status int

const (
	Incomplete Status = iota
	Complete
)

func (s Status) String() string {
	if s == Complete {
		return "Complete"
	}
	return "Incomplete"
}

// Bias is the direction of a trade, fixed by its first transaction.
type Bias int

const (
	NoBias Bias = iota
	Long
	Short
)

func (b Bias) String() string {
	switch b {
	case Long:
		return "Long"
	case Short:
		return "Short"
	}
	return ""
}

// MarshalText writes the bias name.
func (b Bias) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// ParseBias returns the bias named s, or NoBias.
func ParseBias(s string) Bias {
	switch s {
	case "Long":
		return Long
	case "Short":
		return Short
	}
	return NoBias
}

// Trade is a round trip on one symbol: it opens with a Buy (long) or a
// SellShort (short), accumulates transactions, and completes when the
// outstanding quantity returns to zero.
//
// The zero value is an empty trade ready to accept its first transaction.
// Fields describing the result (legs, Return, Quantity, LengthSeconds,
// Strategy) are only set once the trade is Complete. RunningWinRate and
// RunningReturn are set by TradeList.AddStatistics.
type Trade struct {
	Symbol         string
	AssetType      string
	Status         Status
	Bias           Bias
	Open           time.Time
	Close          time.Time
	OrderIDs       []string // distinct, in order of acceptance
	TransactionIDs []string // in order of acceptance
	Buy            Leg
	Sell           Leg
	Return         Money // Sell.NetCost + Buy.NetCost
	Quantity       Quantity
	LengthSeconds  int64
	Strategy       string

	RunningWinRate Percent
	RunningReturn  Money

	outstanding Quantity
	accepted    []Transaction
	orders      map[string]bool
	txs         map[string]bool
	scalp       time.Duration
}

// TradeOption configures a new Trade.
type TradeOption func(*Trade)

// ScalpThreshold sets the longest duration classified as a scalp.
func ScalpThreshold(d time.Duration) TradeOption {
	return func(t *Trade) { t.scalp = d }
}

// NewTrade returns an empty trade.
func NewTrade(opts ...TradeOption) *Trade {
	t := &Trade{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddTransaction adds tx to the trade and reports whether it was accepted.
// See Add for the rejection reasons.
func (t *Trade) AddTransaction(tx Transaction) bool {
	return t.Add(tx) == nil
}

// Add adds tx to the trade.
//
// The trade is left unchanged when tx is rejected: the returned error wraps
// ErrTradeComplete, ErrSymbolMismatch, ErrAssetTypeMismatch,
// ErrDuplicateTransaction or ErrInvalidTransition.
func (t *Trade) Add(tx Transaction) error {
	if t.Status == Complete {
		return fmt.Errorf("transaction %s: %w", tx.TransactionID, ErrTradeComplete)
	}
	if t.Symbol != "" && tx.Symbol != t.Symbol {
		return fmt.Errorf("transaction %s: %w: %q, trade is %q", tx.TransactionID, ErrSymbolMismatch, tx.Symbol, t.Symbol)
	}
	if t.AssetType != "" && tx.AssetType != t.AssetType {
		return fmt.Errorf("transaction %s: %w: %q, trade is %q", tx.TransactionID, ErrAssetTypeMismatch, tx.AssetType, t.AssetType)
	}
	if t.txs[tx.TransactionID] {
		return fmt.Errorf("transaction %s: %w", tx.TransactionID, ErrDuplicateTransaction)
	}
	bias, err := t.transition(tx.SubType)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", tx.TransactionID, err)
	}

	t.Symbol, t.AssetType, t.Bias = tx.Symbol, tx.AssetType, bias
	if t.txs == nil {
		t.txs = make(map[string]bool)
		t.orders = make(map[string]bool)
	}
	t.txs[tx.TransactionID] = true
	t.TransactionIDs = append(t.TransactionIDs, tx.TransactionID)
	if !t.orders[tx.OrderID] {
		t.orders[tx.OrderID] = true
		t.OrderIDs = append(t.OrderIDs, tx.OrderID)
	}
	if t.Open.IsZero() || tx.Date.Before(t.Open) {
		t.Open = tx.Date
	}
	if t.Close.IsZero() || tx.Date.After(t.Close) {
		t.Close = tx.Date
	}

	t.accepted = append(t.accepted, tx)
	if buying(tx.SubType) {
		t.outstanding = t.outstanding.Add(tx.Amount)
	} else {
		t.outstanding = t.outstanding.Sub(tx.Amount)
	}

	if t.outstanding.IsZero() {
		t.complete()
	}
	return nil
}

// transition returns the trade bias after accepting a transaction of type st.
func (t *Trade) transition(st SubType) (Bias, error) {
	switch t.Bias {
	case NoBias:
		switch st {
		case Buy:
			return Long, nil
		case SellShort:
			return Short, nil
		}
		return NoBias, fmt.Errorf("%w: %v without an open position", ErrInvalidTransition, st)
	case Long:
		if st == Buy || st == SellToClose {
			return Long, nil
		}
	case Short:
		if st == SellShort || st == CoverShort {
			return Short, nil
		}
	}
	return t.Bias, fmt.Errorf("%w: %v on a %v trade", ErrInvalidTransition, st, t.Bias)
}

// buying reports whether st belongs to the buy leg.
func buying(st SubType) bool { return st == Buy || st == CoverShort }

func (t *Trade) complete() {
	var buys, sells []Transaction
	for _, tx := range t.accepted {
		if buying(tx.SubType) {
			buys = append(buys, tx)
		} else {
			sells = append(sells, tx)
		}
	}
	t.Buy = newLeg(buys)
	t.Sell = newLeg(sells)
	t.Return = t.Sell.NetCost.Add(t.Buy.NetCost).Round(MoneyScale)
	t.Quantity = t.Buy.Amount
	t.LengthSeconds = int64(t.Close.Sub(t.Open) / time.Second)
	t.Strategy = t.strategy()
	t.Status = Complete
}

func (t *Trade) strategy() string {
	limit := t.scalp
	if limit == 0 {
		limit = DefaultScalpThreshold
	}
	s := t.Bias.String()
	if len(t.OrderIDs) > 1 {
		s += "Scaled "
	}
	if time.Duration(t.LengthSeconds)*time.Second <= limit {
		return s + "Scalp"
	}
	return s + "Swing"
}

// Outstanding returns the signed open quantity: positive for a long
// position, negative for a short one, zero once complete.
func (t *Trade) Outstanding() Quantity { return t.outstanding }

// Transactions returns the accepted transactions in order of acceptance.
func (t *Trade) Transactions() []Transaction {
	return append([]Transaction(nil), t.accepted...)
}

// Length returns the duration between the first and the last transaction.
func (t *Trade) Length() time.Duration {
	return time.Duration(t.LengthSeconds) * time.Second
}

// Win reports whether the trade made money.
func (t *Trade) Win() bool { return t.Return.IsPositive() }

// MarshalJSON writes the trade in a stable field order, legs flattened with
// a buy/sell prefix.
func (t *Trade) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", t.Symbol)
	w.Append("assetType", t.AssetType)
	w.Append("status", t.Status.String())
	w.Append("bias", t.Bias)
	w.Append("open", t.Open.Format(time.RFC3339))
	w.Append("close", t.Close.Format(time.RFC3339))
	w.Append("orderIds", t.OrderIDs)
	w.Append("transactionIds", t.TransactionIDs)
	w.PrefixFrom("buy", t.Buy)
	w.PrefixFrom("sell", t.Sell)
	w.Append("return", t.Return)
	w.Append("quantity", t.Quantity)
	w.Append("length", t.LengthSeconds)
	w.Append("strategy", t.Strategy)
	w.Optional("runningWinRate", t.RunningWinRate)
	w.Optional("runningReturn", t.RunningReturn)
	return w.MarshalJSON()
}
