package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"OrderFlow/internal/domain/models"
	pkgkafka "OrderFlow/pkg/kafka"
)

// SnapshotHandler answers run requests arriving on Kafka. The report (or the
// failure report) is published by the service on the snapshots topic.
type SnapshotHandler struct {
	topic    string
	svc      Snapshotter
	validate *validator.Validate
}

func NewSnapshotHandler(topic string, svc Snapshotter) *SnapshotHandler {
	return &SnapshotHandler{topic: topic, svc: svc, validate: validator.New()}
}

func (h *SnapshotHandler) Topic() string { return h.topic }

func (h *SnapshotHandler) Handle(ctx context.Context, b []byte) error {
	var req models.SnapshotRequest
	if err := json.Unmarshal(b, &req); err != nil {
		return fmt.Errorf("%w: decode snapshot request: %v", pkgkafka.ErrPermanent, err)
	}
	if err := defaults.Set(&req); err != nil {
		return fmt.Errorf("%w: defaults: %v", pkgkafka.ErrPermanent, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: invalid snapshot request: %v", pkgkafka.ErrPermanent, err)
	}

	_, err := h.svc.Snapshot(ctx, SnapshotParams{
		RequestID: req.RequestID,
		Symbol:    req.Symbol,
		Interval:  req.Interval,
		Lookback:  req.Lookback,
		Period:    req.Period,
		Fresh:     true,
	})
	if _, ok := models.IsQuorumError(err); ok {
		// already answered with a failure report; a retry would only hammer the venues
		return nil
	}
	return err
}
