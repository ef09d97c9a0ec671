package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/tradelog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WriteTrades saves completed trades and links their transactions to them,
// all in a single SQL transaction tagged with a new batch id. Any failure,
// including a link that does not affect exactly one unlinked transaction,
// rolls the whole batch back.
func (s *Store) WriteTrades(ctx context.Context, accountID int64, trades []*tradelog.Trade) (batchID string, ids []int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", nil, err
	}
	defer tx.Rollback()

	w, err := s.writeTrades(ctx, tx, accountID, trades)
	if err != nil {
		return "", nil, err
	}
	if err := tx.Commit(); err != nil {
		return "", nil, fmt.Errorf("cannot commit trades: %w", err)
	}
	return w.batchID, w.ids, nil
}

// ReplaceTrades deletes the saved trades of the account and saves trades
// instead, in a single SQL transaction: on any failure the previous trades
// and links are kept.
func (s *Store) ReplaceTrades(ctx context.Context, accountID int64, trades []*tradelog.Trade) (deleted int64, batchID string, ids []int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", nil, err
	}
	defer tx.Rollback()

	deleted, err = s.deleteTrades(ctx, tx, accountID)
	if err != nil {
		return 0, "", nil, err
	}
	w, err := s.writeTrades(ctx, tx, accountID, trades)
	if err != nil {
		return 0, "", nil, err
	}
	if err := tx.Commit(); err != nil {
		return 0, "", nil, fmt.Errorf("cannot commit trades: %w", err)
	}
	return deleted, w.batchID, w.ids, nil
}

func (s *Store) writeTrades(ctx context.Context, tx *sql.Tx, accountID int64, trades []*tradelog.Trade) (*txWriter, error) {
	w := &txWriter{s: s, tx: tx, accountID: accountID, batchID: uuid.NewString()}
	if _, err := tradelog.SaveTrades(ctx, w, accountID, trades); err != nil {
		return nil, err
	}
	return w, nil
}

// txWriter implements tradelog.TradeWriter inside a SQL transaction.
type txWriter struct {
	s         *Store
	tx        *sql.Tx
	accountID int64
	batchID   string
	ids       []int64
}

func (w *txWriter) InsertTrade(ctx context.Context, accountID int64, t *tradelog.Trade) (int64, error) {
	var id int64
	err := w.tx.QueryRowContext(ctx, w.s.d.rebind(`INSERT INTO trades
	(account_id, batch_id, symbol, asset_type, bias, strategy, open_date, close_date, length, quantity,
	 buy_fee, buy_cost, buy_amount, buy_net_cost, buy_avg_price,
	 sell_fee, sell_cost, sell_amount, sell_net_cost, sell_avg_price,
	 trade_return, order_ids)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id`),
		accountID, w.batchID, t.Symbol, t.AssetType, t.Bias.String(), t.Strategy,
		t.Open.Unix(), t.Close.Unix(), t.LengthSeconds, t.Quantity.String(),
		t.Buy.Fee.String(), t.Buy.Cost.String(), t.Buy.Amount.String(), t.Buy.NetCost.String(), t.Buy.AvgPrice.String(),
		t.Sell.Fee.String(), t.Sell.Cost.String(), t.Sell.Amount.String(), t.Sell.NetCost.String(), t.Sell.AvgPrice.String(),
		t.Return.String(), strings.Join(t.OrderIDs, ","),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	w.ids = append(w.ids, id)
	return id, nil
}

func (w *txWriter) LinkTransaction(ctx context.Context, transactionID string, tradeID int64) (int64, error) {
	res, err := w.s.exec(ctx, w.tx, `UPDATE transactions SET trade_id = ?
	WHERE account_id = ? AND transaction_id = ? AND trade_id IS NULL`,
		tradeID, w.accountID, transactionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StoredTrade is a trade read back from the store. Only the summary fields
// of Trade are restored: transactions are not loaded.
type StoredTrade struct {
	ID      int64
	BatchID string
	*tradelog.Trade
}

// Trades reads the saved trades of an account closed in [since, until),
// zero times leaving that side open, ordered by close date.
func (s *Store) Trades(ctx context.Context, accountID int64, since, until time.Time) ([]StoredTrade, error) {
	conds := []string{"account_id = ?"}
	args := []any{accountID}
	if !since.IsZero() {
		conds = append(conds, "close_date >= ?")
		args = append(args, since.Unix())
	}
	if !until.IsZero() {
		conds = append(conds, "close_date < ?")
		args = append(args, until.Unix())
	}
	query := `SELECT id, batch_id, symbol, asset_type, bias, strategy, open_date, close_date, length, quantity,
	buy_fee, buy_cost, buy_amount, buy_net_cost, buy_avg_price,
	sell_fee, sell_cost, sell_amount, sell_net_cost, sell_avg_price,
	trade_return, order_ids
	FROM trades WHERE ` + strings.Join(conds, " AND ") + `
	ORDER BY close_date, open_date, id`

	rows, err := s.db.QueryContext(ctx, s.d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("cannot query trades: %w", err)
	}
	defer rows.Close()

	var out []StoredTrade
	for rows.Next() {
		var (
			st             StoredTrade
			bias           string
			opened, closed int64
			qty, ret       string
			buy, sell      [5]string
			orders         string
		)
		st.Trade = &tradelog.Trade{Status: tradelog.Complete}
		err := rows.Scan(&st.ID, &st.BatchID, &st.Symbol, &st.AssetType, &bias, &st.Strategy,
			&opened, &closed, &st.LengthSeconds, &qty,
			&buy[0], &buy[1], &buy[2], &buy[3], &buy[4],
			&sell[0], &sell[1], &sell[2], &sell[3], &sell[4],
			&ret, &orders)
		if err != nil {
			return nil, err
		}
		st.Bias = tradelog.ParseBias(bias)
		st.Open = time.Unix(opened, 0).UTC()
		st.Close = time.Unix(closed, 0).UTC()
		if orders != "" {
			st.OrderIDs = strings.Split(orders, ",")
		}
		var p parser
		st.Quantity = tradelog.Q(p.decimal(qty))
		st.Return = tradelog.M(p.decimal(ret))
		st.Buy = p.leg(buy)
		st.Sell = p.leg(sell)
		if p.err != nil {
			return nil, fmt.Errorf("trade %d: %w", st.ID, p.err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// DeleteTrades unlinks every transaction of the account and deletes its
// trades, so that they can be processed again. It returns the number of
// deleted trades.
func (s *Store) DeleteTrades(ctx context.Context, accountID int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	n, err := s.deleteTrades(ctx, tx, accountID)
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func (s *Store) deleteTrades(ctx context.Context, tx *sql.Tx, accountID int64) (int64, error) {
	if _, err := s.exec(ctx, tx, `UPDATE transactions SET trade_id = NULL WHERE account_id = ?`, accountID); err != nil {
		return 0, fmt.Errorf("cannot unlink transactions: %w", err)
	}
	res, err := s.exec(ctx, tx, `DELETE FROM trades WHERE account_id = ?`, accountID)
	if err != nil {
		return 0, fmt.Errorf("cannot delete trades: %w", err)
	}
	return res.RowsAffected()
}

// parser keeps the first decimal parsing error.
type parser struct{ err error }

func (p *parser) decimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return d
}

func (p *parser) leg(f [5]string) tradelog.Leg {
	return tradelog.Leg{
		Fee:      tradelog.M(p.decimal(f[0])),
		Cost:     tradelog.M(p.decimal(f[1])),
		Amount:   tradelog.Q(p.decimal(f[2])),
		NetCost:  tradelog.M(p.decimal(f[3])),
		AvgPrice: tradelog.M(p.decimal(f[4])),
	}
}
