// Command nomina extracts payroll records from CFDI nómina receipts and
// serves the same pipeline over HTTP.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
