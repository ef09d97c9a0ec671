// Package tradelog rebuilds round-trip trades from brokerage transactions.
//
// A Transaction is one fill reported by the broker: a buy, a sale to close,
// a short sale or a short cover. Transactions of the same symbol and asset
// type are fed, in ascending order id, to a Trade until its outstanding
// quantity returns to zero. Broker dates cannot be trusted for ordering: the
// Reconciler holds the transactions the open trade rejects and retries them
// as new transactions arrive.
//
// Completed trades are gathered in a TradeList, sorted by close time and
// annotated with a running win rate and a running return. SaveTrades writes
// them back through a TradeWriter, checking that every transaction is linked
// to exactly one stored row.
//
// Amounts are exact decimals. Money sums are rounded to MoneyScale digits,
// average prices to PriceScale digits and win rates to PercentScale digits.
//
// This package holds the engine and its codecs; storage, publishing,
// reports and the tl command live in sub packages.
package tradelog
