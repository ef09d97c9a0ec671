package tradelog

import (
	"encoding/json"
	"fmt"
	"time"
)

// TransactionRecord is a raw transaction row as delivered by storage or by
// an import. A nil field is an absent field.
type TransactionRecord struct {
	TransactionID      *string
	OrderID            *string
	Symbol             *string
	AssetType          *string
	TransactionSubType *string
	Amount             *Quantity
	Cost               *Money
	Fee                *Money
	TransactionDate    *time.Time
}

// MissingFieldError reports the first required field absent from a record.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// InvalidSubTypeError reports a transaction sub-type code that is not one of
// BY, SL, SS, CS.
type InvalidSubTypeError struct {
	Code string
}

func (e *InvalidSubTypeError) Error() string {
	return fmt.Sprintf("invalid transaction sub-type %q", e.Code)
}

// NewTransaction validates r and returns the corresponding Transaction.
//
// Fields are checked in declaration order and the first absent one is
// reported as a *MissingFieldError. The amount is stored as a magnitude,
// the direction being carried by the sub-type.
func NewTransaction(r TransactionRecord) (Transaction, error) {
	switch {
	case r.TransactionID == nil:
		return Transaction{}, &MissingFieldError{Field: "transactionId"}
	case r.OrderID == nil:
		return Transaction{}, &MissingFieldError{Field: "orderId"}
	case r.Symbol == nil:
		return Transaction{}, &MissingFieldError{Field: "symbol"}
	case r.AssetType == nil:
		return Transaction{}, &MissingFieldError{Field: "assetType"}
	case r.TransactionSubType == nil:
		return Transaction{}, &MissingFieldError{Field: "transactionSubType"}
	case r.Amount == nil:
		return Transaction{}, &MissingFieldError{Field: "amount"}
	case r.Cost == nil:
		return Transaction{}, &MissingFieldError{Field: "cost"}
	case r.Fee == nil:
		return Transaction{}, &MissingFieldError{Field: "fee"}
	case r.TransactionDate == nil:
		return Transaction{}, &MissingFieldError{Field: "transactionDate"}
	}
	st, err := ParseSubType(*r.TransactionSubType)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		TransactionID: *r.TransactionID,
		OrderID:       *r.OrderID,
		Symbol:        *r.Symbol,
		AssetType:     *r.AssetType,
		SubType:       st,
		Amount:        r.Amount.Abs(),
		Cost:          *r.Cost,
		Fee:           *r.Fee,
		Date:          *r.TransactionDate,
	}, nil
}

// Record returns the raw record of a transaction.
func (t Transaction) Record() TransactionRecord {
	code := t.SubType.Code()
	return TransactionRecord{
		TransactionID:      &t.TransactionID,
		OrderID:            &t.OrderID,
		Symbol:             &t.Symbol,
		AssetType:          &t.AssetType,
		TransactionSubType: &code,
		Amount:             &t.Amount,
		Cost:               &t.Cost,
		Fee:                &t.Fee,
		TransactionDate:    &t.Date,
	}
}

// UnmarshalJSON reads a record. Ids may be JSON strings or numbers, dates
// are RFC 3339.
func (r *TransactionRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		TransactionID      json.RawMessage `json:"transactionId"`
		OrderID            json.RawMessage `json:"orderId"`
		Symbol             *string         `json:"symbol"`
		AssetType          *string         `json:"assetType"`
		TransactionSubType *string         `json:"transactionSubType"`
		Amount             *Quantity       `json:"amount"`
		Cost               *Money          `json:"cost"`
		Fee                *Money          `json:"fee"`
		TransactionDate    *string         `json:"transactionDate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = TransactionRecord{
		Symbol:             raw.Symbol,
		AssetType:          raw.AssetType,
		TransactionSubType: raw.TransactionSubType,
		Amount:             raw.Amount,
		Cost:               raw.Cost,
		Fee:                raw.Fee,
	}
	var err error
	if r.TransactionID, err = rawID(raw.TransactionID); err != nil {
		return fmt.Errorf("invalid transactionId: %w", err)
	}
	if r.OrderID, err = rawID(raw.OrderID); err != nil {
		return fmt.Errorf("invalid orderId: %w", err)
	}
	if raw.TransactionDate != nil {
		d, err := time.Parse(time.RFC3339, *raw.TransactionDate)
		if err != nil {
			return fmt.Errorf("invalid transactionDate: %w", err)
		}
		r.TransactionDate = &d
	}
	return nil
}

// rawID reads an id written either as a JSON string or a JSON number.
func rawID(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	s = n.String()
	return &s, nil
}
