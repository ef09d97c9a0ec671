package tradelog

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// SubType is the kind of a brokerage transaction.
type SubType int

const (
	Buy         SubType = iota + 1 // opens or adds to a long position
	SellToClose                    // reduces or closes a long position
	SellShort                      // opens or adds to a short position
	CoverShort                     // reduces or closes a short position
)

var subTypeCodes = map[SubType]string{
	Buy:         "BY",
	SellToClose: "SL",
	SellShort:   "SS",
	CoverShort:  "CS",
}

var subTypeNames = map[SubType]string{
	Buy:         "Buy",
	SellToClose: "SellToClose",
	SellShort:   "SellShort",
	CoverShort:  "CoverShort",
}

// ParseSubType accepts the broker codes (BY, SL, SS, CS) and the long names,
// case insensitively.
func ParseSubType(s string) (SubType, error) {
	for st, code := range subTypeCodes {
		if strings.EqualFold(s, code) || strings.EqualFold(s, subTypeNames[st]) {
			return st, nil
		}
	}
	return 0, &InvalidSubTypeError{Code: s}
}

// Code returns the broker code of the sub-type.
func (s SubType) Code() string { return subTypeCodes[s] }

func (s SubType) String() string {
	if n, ok := subTypeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("SubType(%d)", int(s))
}

// Opening reports whether the sub-type opens a position.
func (s SubType) Opening() bool { return s == Buy || s == SellShort }

// MarshalText writes the broker code.
func (s SubType) MarshalText() ([]byte, error) {
	code, ok := subTypeCodes[s]
	if !ok {
		return nil, fmt.Errorf("invalid sub-type %d", int(s))
	}
	return []byte(code), nil
}

func (s *SubType) UnmarshalText(text []byte) error {
	st, err := ParseSubType(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Transaction is one validated broker transaction. It is a value and never
// mutated once built; use NewTransaction to build one from a raw record.
type Transaction struct {
	TransactionID string
	OrderID       string
	Symbol        string
	AssetType     string
	SubType       SubType
	Amount        Quantity  // number of shares, always positive
	Cost          Money     // signed: negative when cash leaves the account
	Fee           Money     // regulatory fee
	Date          time.Time // as reported by the broker, not trusted for ordering
}

// MarshalJSON writes the transaction with the same keys a TransactionRecord reads.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("transactionId", t.TransactionID)
	w.Append("orderId", t.OrderID)
	w.Append("symbol", t.Symbol)
	w.Append("assetType", t.AssetType)
	w.Append("transactionSubType", t.SubType)
	w.Append("amount", t.Amount)
	w.Append("cost", t.Cost)
	w.Append("fee", t.Fee)
	w.Append("transactionDate", t.Date.Format(time.RFC3339))
	return w.MarshalJSON()
}

// UnmarshalJSON reads a transaction through NewTransaction, so missing
// fields are reported.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var r TransactionRecord
	if err := r.UnmarshalJSON(data); err != nil {
		return err
	}
	tx, err := NewTransaction(r)
	if err != nil {
		return err
	}
	*t = tx
	return nil
}

// SortTransactions sorts txs by order id, then by transaction id. Ids are
// compared as numbers when both are integers. The sort is stable.
func SortTransactions(txs []Transaction) {
	slices.SortStableFunc(txs, func(a, b Transaction) int {
		if c := compareIDs(a.OrderID, b.OrderID); c != 0 {
			return c
		}
		return compareIDs(a.TransactionID, b.TransactionID)
	})
}

func compareIDs(a, b string) int {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(x, y)
	}
	return strings.Compare(a, b)
}
