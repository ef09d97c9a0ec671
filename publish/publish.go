// Package publish sends saved trades to a Kafka topic.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/etnz/tradelog"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter writes messages to a topic. *kafka.Writer implements it.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter returns a writer on topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Dialer:       &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
		BatchTimeout: 200 * time.Millisecond,
		RequiredAcks: int(kafka.RequireAll),
	})
}

// Event is the message value of a published trade.
type Event struct {
	TradeID   int64           `json:"tradeId"`
	AccountID int64           `json:"accountId"`
	BatchID   string          `json:"batchId"`
	Trade     *tradelog.Trade `json:"trade"`
}

// Publisher publishes trade events.
type Publisher struct {
	w   MessageWriter
	log *zap.Logger
}

// New returns a Publisher writing to w. A nil log discards logs.
func New(w MessageWriter, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{w: w, log: log}
}

// Publish writes one message per trade, keyed by "symbol/assetType" so that
// the trades of a partition keep their order. ids are the stored trade ids,
// in the order of trades.
func (p *Publisher) Publish(ctx context.Context, accountID int64, batchID string, ids []int64, trades []*tradelog.Trade) error {
	if len(ids) != len(trades) {
		return fmt.Errorf("got %d trade ids for %d trades", len(ids), len(trades))
	}
	if len(trades) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(trades))
	for i, t := range trades {
		value, err := json.Marshal(Event{TradeID: ids[i], AccountID: accountID, BatchID: batchID, Trade: t})
		if err != nil {
			return fmt.Errorf("cannot encode trade %d: %w", ids[i], err)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(t.Symbol + "/" + t.AssetType),
			Value:   value,
			Headers: []kafka.Header{{Key: "batch", Value: []byte(batchID)}},
		})
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("cannot publish batch %s: %w", batchID, err)
	}
	p.log.Info("trades published", zap.String("batch_id", batchID), zap.Int("count", len(msgs)))
	return nil
}

// Close closes the underlying writer.
func (p *Publisher) Close() error { return p.w.Close() }
