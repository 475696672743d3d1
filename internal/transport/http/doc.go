// Package http implements the HTTP handlers of the nominacli service. It
// is a thin layer between HTTP transport and the services package:
// handlers parse requests, delegate, and format responses.
//
// # Endpoints
//
//	POST /api/v1/runs                   multipart "files" → RunResult JSON
//	POST /api/v1/runs/export?format=F   multipart "files" → xlsx, csv or json attachment
//	GET  /api/v1/version                build information
//	GET  /healthz                       pipeline and catalog readiness
//
// Each uploaded file is one input unit: a single XML document or a zip
// archive of them. The request body is capped with http.MaxBytesReader, so
// an oversized upload fails with 413 before the pipeline sees it.
//
// # Error Handling
//
// Every failure is rendered as RFC 7807 problem details by
// errors.ErrorHandler, which maps the pipeline's error types to statuses:
// size limits to 413, unreadable or malformed input to 422, and an
// expired run deadline to 504.
package http
