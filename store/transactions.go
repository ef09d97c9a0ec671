package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/tradelog"
	"github.com/shopspring/decimal"
)

// InsertTransactions stores raw transaction records of the given type
// (e.g. "TRADE"). Records already stored for the account, by transaction
// id, are skipped and counted as duplicates. Other fields may be absent:
// they are validated when read back.
func (s *Store) InsertTransactions(ctx context.Context, accountID int64, txType string, records []tradelog.TransactionRecord) (inserted, duplicates int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	for i, r := range records {
		if r.TransactionID == nil {
			return 0, 0, fmt.Errorf("record %d: %w", i, &tradelog.MissingFieldError{Field: "transactionId"})
		}
		var date any
		if r.TransactionDate != nil {
			date = r.TransactionDate.Unix()
		}
		res, err := s.exec(ctx, tx, `INSERT INTO transactions
	(account_id, transaction_id, type, order_id, symbol, asset_type, sub_type, amount, cost, fee, transaction_date)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (account_id, transaction_id) DO NOTHING`,
			accountID, *r.TransactionID, txType,
			nullString(r.OrderID), nullString(r.Symbol), nullString(r.AssetType), nullString(r.TransactionSubType),
			nullDecimal(r.Amount), nullDecimal(r.Cost), nullDecimal(r.Fee), date)
		if err != nil {
			return 0, 0, fmt.Errorf("cannot insert transaction %s: %w", *r.TransactionID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, 0, err
		}
		if n == 0 {
			duplicates++
		} else {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return inserted, duplicates, nil
}

// Filter selects stored transactions. Zero fields do not filter.
type Filter struct {
	AccountID int64
	Type      string
	AssetType string
	Since     time.Time // inclusive
	Until     time.Time // exclusive
	Unlinked  bool      // only transactions not yet part of a saved trade
}

// Invalid is a stored record that is not a valid transaction.
type Invalid struct {
	TransactionID string
	Err           error
}

// Loaded holds the transactions read from the store.
type Loaded struct {
	Transactions []tradelog.Transaction // ascending order id, then transaction id
	Invalid      []Invalid
}

// Transactions reads the transactions matching f.
func (s *Store) Transactions(ctx context.Context, f Filter) (*Loaded, error) {
	conds := []string{"account_id = ?"}
	args := []any{f.AccountID}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, f.Type)
	}
	if f.AssetType != "" {
		conds = append(conds, "asset_type = ?")
		args = append(args, f.AssetType)
	}
	if !f.Since.IsZero() {
		conds = append(conds, "transaction_date >= ?")
		args = append(args, f.Since.Unix())
	}
	if !f.Until.IsZero() {
		conds = append(conds, "transaction_date < ?")
		args = append(args, f.Until.Unix())
	}
	if f.Unlinked {
		conds = append(conds, "trade_id IS NULL")
	}
	query := `SELECT transaction_id, order_id, symbol, asset_type, sub_type, amount, cost, fee, transaction_date
	FROM transactions WHERE ` + strings.Join(conds, " AND ") + `
	ORDER BY order_id, transaction_id`

	rows, err := s.db.QueryContext(ctx, s.d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("cannot query transactions: %w", err)
	}
	defer rows.Close()

	loaded := &Loaded{}
	for rows.Next() {
		var (
			id                        string
			order, symbol, asset, sub sql.NullString
			amount, cost, fee         sql.NullString
			date                      sql.NullInt64
		)
		if err := rows.Scan(&id, &order, &symbol, &asset, &sub, &amount, &cost, &fee, &date); err != nil {
			return nil, err
		}
		r := tradelog.TransactionRecord{
			TransactionID:      &id,
			OrderID:            ptr(order),
			Symbol:             ptr(symbol),
			AssetType:          ptr(asset),
			TransactionSubType: ptr(sub),
		}
		if r.Amount, err = decimalPtr(amount, tradelog.Q[decimal.Decimal]); err != nil {
			loaded.Invalid = append(loaded.Invalid, Invalid{TransactionID: id, Err: fmt.Errorf("invalid amount: %w", err)})
			continue
		}
		if r.Cost, err = decimalPtr(cost, tradelog.M[decimal.Decimal]); err != nil {
			loaded.Invalid = append(loaded.Invalid, Invalid{TransactionID: id, Err: fmt.Errorf("invalid cost: %w", err)})
			continue
		}
		if r.Fee, err = decimalPtr(fee, tradelog.M[decimal.Decimal]); err != nil {
			loaded.Invalid = append(loaded.Invalid, Invalid{TransactionID: id, Err: fmt.Errorf("invalid fee: %w", err)})
			continue
		}
		if date.Valid {
			d := time.Unix(date.Int64, 0).UTC()
			r.TransactionDate = &d
		}
		t, err := tradelog.NewTransaction(r)
		if err != nil {
			loaded.Invalid = append(loaded.Invalid, Invalid{TransactionID: id, Err: err})
			continue
		}
		loaded.Transactions = append(loaded.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	tradelog.SortTransactions(loaded.Transactions)
	return loaded, nil
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullDecimal[T interface{ Decimal() decimal.Decimal }](p *T) any {
	if p == nil {
		return nil
	}
	return (*p).Decimal().String()
}

func ptr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func decimalPtr[T any](s sql.NullString, conv func(decimal.Decimal) T) (*T, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, err
	}
	v := conv(d)
	return &v, nil
}
