package errors

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Problem type references, relative to the API base.
const (
	TypeBadRequest       = "/errors/bad-request"
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeRateLimit        = "/errors/rate-limit"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeInternal         = "/errors/internal"

	TypeLoadFailed    = "/errors/input/unreadable"
	TypeParseFailed   = "/errors/input/malformed-xml"
	TypeInputTooLarge = "/errors/input/size-limit"
	TypeExportFailed  = "/errors/export/failed"
)

var problemTitles = map[string]string{
	TypeBadRequest:       "Bad Request",
	TypeValidation:       "Validation Failed",
	TypeNotFound:         "Not Found",
	TypeMethodNotAllowed: "Method Not Allowed",
	TypeRateLimit:        "Too Many Requests",
	TypeTimeout:          "Request Timeout",
	TypePayloadTooLarge:  "Payload Too Large",
	TypeInternal:         "Internal Server Error",
	TypeLoadFailed:       "Unreadable Input",
	TypeParseFailed:      "Malformed Document",
	TypeInputTooLarge:    "Input Too Large",
	TypeExportFailed:     "Export Failed",
}

// ProblemDetails is an RFC 7807 problem document. Members after Instance
// are extension members and are omitted when empty.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	TraceID    string      `json:"trace_id,omitempty"`
	ErrorType  ErrorType   `json:"error_type,omitempty"`
	ErrorCode  string      `json:"error_code,omitempty"`
	Fields     []string    `json:"fields,omitempty"`
	Details    interface{} `json:"details,omitempty"`
	RetryAfter int         `json:"retry_after,omitempty"`
	Panic      string      `json:"panic,omitempty"`
	Stack      string      `json:"stack,omitempty"`
}

// NewProblem builds a problem for r. The title comes from the problem type,
// the instance from the request path and the trace ID from the request ID.
func NewProblem(status int, problemType, detail string, r *http.Request) *ProblemDetails {
	title, ok := problemTitles[problemType]
	if !ok {
		title = http.StatusText(status)
	}
	pd := &ProblemDetails{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
	}
	if r != nil {
		pd.Instance = r.URL.Path
		pd.TraceID = middleware.GetReqID(r.Context())
	}
	return pd
}

// Render implements render.Renderer.
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// Write renders pd as the response.
func (pd *ProblemDetails) Write(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, pd)
}
