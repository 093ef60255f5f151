package services

import (
	"context"
	"fmt"

	"subboard/internal/catalog"
	"subboard/internal/core"
	applog "subboard/internal/log"
)

// ViewState is the lifecycle of a report view.
type ViewState int

const (
	ViewLoading ViewState = iota
	ViewReady
	ViewFailed
)

func (s ViewState) String() string {
	switch s {
	case ViewLoading:
		return "loading"
	case ViewReady:
		return "ready"
	case ViewFailed:
		return "failed"
	default:
		return fmt.Sprintf("ViewState(%d)", int(s))
	}
}

// FailedMessage is shown in place of a report whose data could not be loaded.
const FailedMessage = "Report data is unavailable right now."

// ReportView is what a report screen renders: the descriptor, the selection
// it was fetched with and, once ready, the payload.
type ReportView struct {
	Report  catalog.ReportDescriptor
	Query   core.ReportQuery
	State   ViewState
	Payload core.ReportPayload
	Message string
}

// Ready reports whether the payload can be rendered.
func (v ReportView) Ready() bool { return v.State == ViewReady }

// PendingView returns the loading view for reportID. Unknown ids fail with
// core.ErrUnknownReport.
func (s *ReportService) PendingView(reportID string, q core.ReportQuery) (ReportView, error) {
	desc, ok := s.catalog.Get(reportID)
	if !ok {
		return ReportView{}, fmt.Errorf("%w: %s", core.ErrUnknownReport, reportID)
	}
	return ReportView{Report: desc, Query: q.Normalized(), State: ViewLoading}, nil
}

// LoadView fetches the report and folds a query-layer failure into a Failed
// view carrying FailedMessage. Input errors (unknown id, inverted range) are
// returned as errors. There is no retry.
func (s *ReportService) LoadView(ctx context.Context, reportID string, q core.ReportQuery) (ReportView, error) {
	view, err := s.PendingView(reportID, q)
	if err != nil {
		return ReportView{}, err
	}
	p, err := s.Fetch(ctx, reportID, q)
	switch {
	case err == nil:
		view.State = ViewReady
		view.Payload = p
	case IsClientError(err):
		return ReportView{}, err
	default:
		s.logger.WarnContext(ctx, "Report view failed",
			applog.FieldReportID, reportID,
			applog.FieldError, err)
		view.State = ViewFailed
		view.Message = FailedMessage
	}
	return view, nil
}
