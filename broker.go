package tradelog

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// BrokerDateFormat is the layout of dates in broker transaction histories.
const BrokerDateFormat = "2006-01-02T15:04:05-0700"

// brokerFields maps each record field to its location in a broker
// transaction item.
var brokerFields = []struct {
	name string
	path string
}{
	{"transactionId", "$.transactionId"},
	{"orderId", "$.orderId"},
	{"symbol", "$.transactionItem.instrument.symbol"},
	{"assetType", "$.transactionItem.instrument.assetType"},
	{"transactionSubType", "$.transactionSubType"},
	{"amount", "$.transactionItem.amount"},
	{"cost", "$.transactionItem.cost"},
	{"fee", "$.fees.regFee"},
	{"transactionDate", "$.transactionDate"},
}

// BrokerImport is the content of a broker transaction history.
type BrokerImport struct {
	Records []TransactionRecord // settled trade transactions, oldest first
	Pending int                 // orders without a sub-type, not imported
	Skipped int                 // items that are not trades (dividends, transfers...)
}

// ImportBrokerJSON reads a broker transaction history: a JSON array of
// items, newest first. Only items of type TRADE are kept; those without a
// transactionSubType are pending orders and are only counted.
//
// Records are returned oldest first. They are not validated: fields missing
// from an item are left nil for NewTransaction to report.
func ImportBrokerJSON(r io.Reader) (*BrokerImport, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("cannot decode broker transactions: %w", err)
	}
	slices.Reverse(items)

	res := new(BrokerImport)
	for i, item := range items {
		if typ, _ := brokerString(item, "$.type"); typ != "TRADE" {
			res.Skipped++
			continue
		}
		if _, ok := brokerString(item, "$.transactionSubType"); !ok {
			res.Pending++
			continue
		}
		rec, err := brokerRecord(item)
		if err != nil {
			return nil, fmt.Errorf("broker item %d: %w", len(items)-i, err)
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func brokerRecord(item any) (TransactionRecord, error) {
	var rec TransactionRecord
	for _, f := range brokerFields {
		v, ok := brokerString(item, f.path)
		if !ok {
			continue
		}
		switch f.name {
		case "transactionId":
			rec.TransactionID = &v
		case "orderId":
			rec.OrderID = &v
		case "symbol":
			rec.Symbol = &v
		case "assetType":
			rec.AssetType = &v
		case "transactionSubType":
			rec.TransactionSubType = &v
		case "amount", "cost", "fee":
			d, err := decimal.NewFromString(v)
			if err != nil {
				return rec, fmt.Errorf("invalid %s %q: %w", f.name, v, err)
			}
			switch f.name {
			case "amount":
				q := Q(d)
				rec.Amount = &q
			case "cost":
				m := M(d)
				rec.Cost = &m
			default:
				m := M(d)
				rec.Fee = &m
			}
		case "transactionDate":
			t, err := time.Parse(BrokerDateFormat, v)
			if err != nil {
				if t, err = time.Parse(time.RFC3339, v); err != nil {
					return rec, fmt.Errorf("invalid %s %q: %w", f.name, v, err)
				}
			}
			rec.TransactionDate = &t
		}
	}
	return rec, nil
}

// brokerString returns the scalar at path, as a string.
func brokerString(item any, path string) (string, bool) {
	v, err := jsonpath.Get(path, item)
	if err != nil || v == nil {
		return "", false
	}
	switch v := v.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return decimal.NewFromFloat(v).String(), true
	case bool:
		return fmt.Sprint(v), true
	}
	return "", false
}
