package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"subboard/internal/core"
)

// Message types carried in the AMQP Type property.
const (
	TypeMetricsRefresh  = "metrics.refresh"
	TypeFavoriteToggled = "favorite.toggled"
)

// MetricsRefreshMessage asks the worker to pull one report (or every report
// when ReportID is empty) for a selection and store the snapshot.
type MetricsRefreshMessage struct {
	MessageID     string    `json:"message_id"`
	ReportID      string    `json:"report_id,omitempty"`
	QueryKey      string    `json:"query_key"`
	Products      []string  `json:"products,omitempty"`
	BusinessUnits []string  `json:"business_units,omitempty"`
	From          string    `json:"from,omitempty"`
	To            string    `json:"to,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewMetricsRefreshMessage stamps a refresh request for the normalized query.
func NewMetricsRefreshMessage(reportID string, q core.ReportQuery) *MetricsRefreshMessage {
	q = q.Normalized()
	return &MetricsRefreshMessage{
		MessageID:     uuid.NewString(),
		ReportID:      reportID,
		QueryKey:      q.Key(),
		Products:      q.ProductIDs,
		BusinessUnits: q.BusinessUnitIDs,
		From:          q.Range.From.String(),
		To:            q.Range.To.String(),
		Timestamp:     time.Now(),
	}
}

// Query rebuilds the selection the message was created from.
func (m *MetricsRefreshMessage) Query() (core.ReportQuery, error) {
	from, err := core.ParseDate(m.From)
	if err != nil {
		return core.ReportQuery{}, fmt.Errorf("from: %w", err)
	}
	to, err := core.ParseDate(m.To)
	if err != nil {
		return core.ReportQuery{}, fmt.Errorf("to: %w", err)
	}
	q := core.ReportQuery{
		ProductIDs:      m.Products,
		BusinessUnitIDs: m.BusinessUnits,
		Range:           core.DateRange{From: from, To: to},
	}
	if err := q.Validate(); err != nil {
		return core.ReportQuery{}, err
	}
	return q.Normalized(), nil
}

func (m *MetricsRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MetricsRefreshMessageFromJSON(data []byte) (*MetricsRefreshMessage, error) {
	var msg MetricsRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// FavoriteToggledMessage announces a persisted favorite toggle.
type FavoriteToggledMessage struct {
	MessageID string    `json:"message_id"`
	SessionID string    `json:"session_id"`
	ReportID  string    `json:"report_id"`
	Favorite  bool      `json:"favorite"`
	Timestamp time.Time `json:"timestamp"`
}

func NewFavoriteToggledMessage(sessionID, reportID string, favorite bool) *FavoriteToggledMessage {
	return &FavoriteToggledMessage{
		MessageID: uuid.NewString(),
		SessionID: sessionID,
		ReportID:  reportID,
		Favorite:  favorite,
		Timestamp: time.Now(),
	}
}

func (m *FavoriteToggledMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func FavoriteToggledMessageFromJSON(data []byte) (*FavoriteToggledMessage, error) {
	var msg FavoriteToggledMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
