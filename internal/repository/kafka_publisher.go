package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"OrderFlow/internal/domain/models"
	domrepo "OrderFlow/internal/domain/repository"
	pkgkafka "OrderFlow/pkg/kafka"
)

// Publisher is the producer surface the publisher needs.
type Publisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// Topics names where reports and alerts go.
type Topics struct {
	Snapshots   string
	Divergences string
	VenueHealth string
}

// AlertEvent wraps one divergence alert for the divergences topic.
type AlertEvent struct {
	EventID string                 `json:"eventId"`
	Symbol  string                 `json:"symbol"`
	SentAt  time.Time              `json:"sentAt"`
	Alert   models.DivergenceAlert `json:"alert"`
}

// KafkaReportPublisher publishes reports keyed by symbol so a consumer sees a
// symbol's snapshots in order.
type KafkaReportPublisher struct {
	producer Publisher
	topics   Topics
	now      func() time.Time
}

var _ domrepo.ReportPublisher = (*KafkaReportPublisher)(nil)

func NewKafkaReportPublisher(p Publisher, topics Topics) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: p, topics: topics, now: time.Now}
}

func (k *KafkaReportPublisher) PublishReport(ctx context.Context, requestID string, report *models.Report) error {
	if report == nil {
		return nil
	}
	return k.producer.PublishBatch(ctx, k.topics.Snapshots, []pkgkafka.Message{{
		Key:     []byte(report.Metadata.Symbol),
		Value:   report,
		Headers: headers("report", requestID, report.Metadata.RunID),
	}})
}

func (k *KafkaReportPublisher) PublishFailure(ctx context.Context, requestID string, failure *models.FailureReport) error {
	if failure == nil {
		return nil
	}
	return k.producer.PublishBatch(ctx, k.topics.Snapshots, []pkgkafka.Message{{
		Key:     []byte(failure.Metadata.Symbol),
		Value:   failure,
		Headers: headers("failure", requestID, ""),
	}})
}

func (k *KafkaReportPublisher) PublishAlerts(ctx context.Context, symbol string, alerts []models.DivergenceAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	now := k.now().UTC()
	msgs := make([]pkgkafka.Message, len(alerts))
	for i, a := range alerts {
		ev := AlertEvent{EventID: uuid.NewString(), Symbol: symbol, SentAt: now, Alert: a}
		msgs[i] = pkgkafka.Message{
			Key:     []byte(symbol),
			Value:   ev,
			Headers: []kafka.Header{{Key: "kind", Value: []byte(a.Kind)}},
		}
	}
	return k.producer.PublishBatch(ctx, k.topics.Divergences, msgs)
}

// PublishMessage lets the log collector ship venue-health digests through the
// same producer.
func (k *KafkaReportPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	if topic == "" {
		topic = k.topics.VenueHealth
	}
	return k.producer.PublishBatch(ctx, topic, []pkgkafka.Message{{Key: []byte(uuid.NewString()), Value: payload}})
}

func (k *KafkaReportPublisher) Close() error {
	return k.producer.Close()
}

func headers(msgType, requestID, runID string) []kafka.Header {
	h := []kafka.Header{{Key: "type", Value: []byte(msgType)}}
	if requestID != "" {
		h = append(h, kafka.Header{Key: "request_id", Value: []byte(requestID)})
	}
	if runID != "" {
		h = append(h, kafka.Header{Key: "run_id", Value: []byte(runID)})
	}
	return h
}
