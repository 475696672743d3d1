// Package shared holds helpers used by more than one package.
//
// The testutil subpackage builds CFDI receipts and zip archives for tests
// and provides a buffered slog handler for asserting on log output. It has
// no production callers.
package shared
