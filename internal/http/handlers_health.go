package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks templates and the data backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	checks["backend"] = "ok"
	if s.ping != nil {
		if err := s.ping(ctx); err != nil {
			checks["backend"] = fmt.Sprintf("failed: %v", err)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides request, cache and security counters in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	reportStats := s.reports.Stats()

	fmt.Fprintf(w, "# Request metrics\n")
	fmt.Fprintf(w, "http_requests_total %d\n", traceMetrics.TotalRequests)
	fmt.Fprintf(w, "http_server_errors_total %d\n", traceMetrics.ServerErrors)
	fmt.Fprintf(w, "http_response_time_avg_us %d\n", traceMetrics.AverageResponseTime)
	fmt.Fprintf(w, "\n# Report cache\n")
	fmt.Fprintf(w, "report_cache_hits_total %d\n", reportStats.Hits)
	fmt.Fprintf(w, "report_cache_misses_total %d\n", reportStats.Misses)
	fmt.Fprintf(w, "report_fetch_errors_total %d\n", reportStats.Errors)
	fmt.Fprintf(w, "report_cache_entries %d\n", reportStats.Cached)
	fmt.Fprintf(w, "\n# Security\n")
	fmt.Fprintf(w, "rate_limit_rejected_total %d\n", rateLimitMetrics.Rejected)
	fmt.Fprintf(w, "rate_limit_clients %d\n", rateLimitMetrics.ClientCount)
	fmt.Fprintf(w, "suspicious_requests_total %d\n", securityMetrics.SuspiciousRequests)
	fmt.Fprintf(w, "blocked_requests_total %d\n", securityMetrics.BlockedRequests)
	fmt.Fprintf(w, "\n# Uptime\n")
	fmt.Fprintf(w, "uptime_seconds %d\n", int64(time.Since(s.started).Seconds()))
}
