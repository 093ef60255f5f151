package amqp

import (
	"context"
	"log/slog"
)

// Handlers receives decoded messages. A nil handler acks and ignores its type.
type Handlers struct {
	Refresh         func(context.Context, *MetricsRefreshMessage) error
	FavoriteToggled func(context.Context, *FavoriteToggledMessage) error
}

type outcome int

const (
	outcomeAck outcome = iota
	outcomeReject
	outcomeRequeue
)

func (h Handlers) handle(ctx context.Context, msgType string, body []byte) outcome {
	var err error
	switch msgType {
	case TypeMetricsRefresh:
		msg, derr := MetricsRefreshMessageFromJSON(body)
		if derr != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal message", "type", msgType, "error", derr)
			return outcomeReject
		}
		if h.Refresh == nil {
			return outcomeAck
		}
		slog.InfoContext(ctx, "Processing metrics refresh message",
			"message_id", msg.MessageID, "report_id", msg.ReportID, "query_key", msg.QueryKey)
		err = h.Refresh(ctx, msg)
	case TypeFavoriteToggled:
		msg, derr := FavoriteToggledMessageFromJSON(body)
		if derr != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal message", "type", msgType, "error", derr)
			return outcomeReject
		}
		if h.FavoriteToggled == nil {
			return outcomeAck
		}
		err = h.FavoriteToggled(ctx, msg)
	default:
		slog.WarnContext(ctx, "Dropping message of unknown type", "type", msgType)
		return outcomeReject
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to handle message", "type", msgType, "error", err)
		return outcomeRequeue
	}
	return outcomeAck
}
