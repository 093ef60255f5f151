package log

import (
	"net/http"
	"sort"
	"time"
)

// Attribute keys shared by every subboard process.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldDurationHuman = "duration_human"
	FieldUserAgent     = "user_agent"
	FieldError         = "error"
	FieldReportID      = "report_id"
	FieldSessionID     = "session_id"
	FieldCategory      = "category"
	FieldSearch        = "search"
	FieldQueryKey      = "query_key"
	FieldFavorite      = "favorite"
	FieldVisible       = "visible"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentReports   = "reports"
	ComponentFavorites = "favorites"
	ComponentCatalog   = "catalog"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentSnapshot  = "snapshot"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
)

// Fields collects attributes before they are handed to slog.
type Fields map[string]any

func NewFields() Fields {
	return make(Fields)
}

func (f Fields) WithClientIP(ip string) Fields {
	if ip != "" {
		f[FieldClientIP] = ip
	}
	return f
}

// WithError records err.Error(); a nil error is skipped.
func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithReport adds the report id and, when set, the cache key of the selection.
func (f Fields) WithReport(reportID, queryKey string) Fields {
	f[FieldReportID] = reportID
	if queryKey != "" {
		f[FieldQueryKey] = queryKey
	}
	return f
}

// WithFilter adds the directory filter state and the number of matching reports.
func (f Fields) WithFilter(search, category string, visible int) Fields {
	f[FieldSearch] = search
	f[FieldCategory] = category
	f[FieldVisible] = visible
	return f
}

// WithRequest adds method, path and query. The user agent is only kept
// when verbose is set.
func (f Fields) WithRequest(r *http.Request, verbose bool) Fields {
	f[FieldMethod] = r.Method
	f[FieldPath] = r.URL.Path
	if r.URL.RawQuery != "" {
		f[FieldQuery] = r.URL.RawQuery
	}
	if verbose {
		f[FieldUserAgent] = r.UserAgent()
	}
	return f
}

func (f Fields) WithResponse(status int, elapsed time.Duration) Fields {
	f[FieldStatusCode] = status
	f[FieldDuration] = elapsed.Milliseconds()
	f[FieldDurationHuman] = elapsed.String()
	return f
}

// Args flattens the fields into key/value pairs ordered by key.
func (f Fields) Args() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(f)*2)
	for _, k := range keys {
		args = append(args, k, f[k])
	}
	return args
}
