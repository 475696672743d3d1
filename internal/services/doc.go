// Package services implements the business logic layer between the HTTP
// and CLI front ends and the batch pipeline.
//
// # Available Services
//
//	- PayrollService: runs a batch of uploaded units under a time budget and
//	  exports the result as xlsx, csv or json
//	- HealthService: reports the configured strategy order, loaded catalogs
//	  and runtime information
//
// Services take their collaborators as small interfaces (Runner, Exporter,
// CatalogInfo) so handlers and tests can substitute them:
//
//	runner := new(MockRunner)
//	runner.On("Run", mock.Anything, units).Return(result, nil)
//	svc := NewPayrollService(runner, exp, time.Minute, logger)
//
// # Error Handling
//
// Pipeline errors pass through unchanged so the HTTP error handler can map
// their AppError type. The service adds two sentinels of its own:
// ErrNoInputs and ErrRunTimeout.
package services
