package tradelog

import (
	"strings"
	"testing"
	"time"
)

// brokerHistory is a transaction history as returned by the broker: newest first.
const brokerHistory = `[
  {
    "type": "TRADE",
    "transactionId": 1002,
    "orderId": "T-501",
    "transactionSubType": "SL",
    "transactionDate": "2025-03-03T15:00:00+0000",
    "fees": {"regFee": 0.02, "commission": 0},
    "transactionItem": {"amount": 10, "cost": 1100, "instrument": {"symbol": "AAPL", "assetType": "EQUITY"}}
  },
  {
    "type": "TRADE",
    "orderId": "T-502",
    "transactionDate": "2025-03-03T15:01:00+0000",
    "transactionItem": {"amount": 5, "instrument": {"symbol": "MSFT", "assetType": "EQUITY"}}
  },
  {
    "type": "DIVIDEND_OR_INTEREST",
    "transactionId": 1001,
    "transactionDate": "2025-03-03T14:45:00+0000"
  },
  {
    "type": "TRADE",
    "transactionId": 1000,
    "orderId": "T-500",
    "transactionSubType": "BY",
    "transactionDate": "2025-03-03T14:30:00+0000",
    "fees": {"regFee": 0},
    "transactionItem": {"amount": 10, "cost": -1000.25, "instrument": {"symbol": "AAPL", "assetType": "EQUITY"}}
  }
]`

func TestImportBrokerJSON(t *testing.T) {
	imp, err := ImportBrokerJSON(strings.NewReader(brokerHistory))
	if err != nil {
		t.Fatalf("ImportBrokerJSON() error = %v", err)
	}
	if imp.Pending != 1 || imp.Skipped != 1 {
		t.Errorf("Pending, Skipped = %d, %d, want 1, 1", imp.Pending, imp.Skipped)
	}
	if len(imp.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(imp.Records))
	}

	var txs []Transaction
	for _, r := range imp.Records {
		tx, err := NewTransaction(r)
		if err != nil {
			t.Fatalf("NewTransaction() error = %v", err)
		}
		txs = append(txs, tx)
	}
	if txs[0].TransactionID != "1000" || txs[1].TransactionID != "1002" {
		t.Errorf("transaction ids = %s, %s, want oldest first", txs[0].TransactionID, txs[1].TransactionID)
	}
	buy := txs[0]
	if buy.OrderID != "T-500" || buy.Symbol != "AAPL" || buy.AssetType != "EQUITY" || buy.SubType != Buy {
		t.Errorf("buy = %+v", buy)
	}
	if !buy.Cost.Equal(usd("-1000.25")) || !buy.Amount.Equal(Q(10)) {
		t.Errorf("buy cost, amount = %v, %v, want -1000.25, 10", buy.Cost, buy.Amount)
	}
	if want := time.Date(2025, time.March, 3, 14, 30, 0, 0, time.UTC); !buy.Date.Equal(want) {
		t.Errorf("buy date = %v, want %v", buy.Date, want)
	}
	if !txs[1].Fee.Equal(usd("0.02")) {
		t.Errorf("sell fee = %v, want 0.02", txs[1].Fee)
	}
}

func TestImportBrokerJSON_MissingField(t *testing.T) {
	doc := `[{"type":"TRADE","transactionId":1,"orderId":"1","transactionSubType":"BY","transactionDate":"2025-03-03T14:30:00+0000","transactionItem":{"amount":1,"cost":-1,"instrument":{"symbol":"AAPL","assetType":"EQUITY"}}}]`
	imp, err := ImportBrokerJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ImportBrokerJSON() error = %v", err)
	}
	if _, err := NewTransaction(imp.Records[0]); err == nil || !strings.Contains(err.Error(), `"fee"`) {
		t.Errorf("NewTransaction() error = %v, want missing fee", err)
	}
}

func TestImportBrokerJSON_Invalid(t *testing.T) {
	if _, err := ImportBrokerJSON(strings.NewReader(`{"not":"an array"}`)); err == nil {
		t.Error("ImportBrokerJSON() error = nil, want an error")
	}
}
