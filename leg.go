package tradelog

// Leg aggregates either the buying or the selling side of a trade.
//
// Fee and Cost are exact sums rounded to MoneyScale, Amount is exact.
type Leg struct {
	Fee      Money
	Cost     Money
	Amount   Quantity
	NetCost  Money // Cost - Fee
	AvgPrice Money // NetCost / Amount, PriceScale digits
}

// newLeg sums the transactions of one side of a trade.
func newLeg(txs []Transaction) Leg {
	var l Leg
	for _, tx := range txs {
		l.Fee = l.Fee.Add(tx.Fee)
		l.Cost = l.Cost.Add(tx.Cost)
		l.Amount = l.Amount.Add(tx.Amount)
	}
	l.Fee = l.Fee.Round(MoneyScale)
	l.Cost = l.Cost.Round(MoneyScale)
	l.NetCost = l.Cost.Sub(l.Fee).Round(MoneyScale)
	if !l.Amount.IsZero() {
		l.AvgPrice = l.NetCost.DivRound(l.Amount, PriceScale)
	}
	return l
}

// MarshalJSON writes the leg fields in a stable order.
func (l Leg) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("fee", l.Fee)
	w.Append("cost", l.Cost)
	w.Append("amount", l.Amount)
	w.Append("netCost", l.NetCost)
	w.Append("avgPrice", l.AvgPrice)
	return w.MarshalJSON()
}
