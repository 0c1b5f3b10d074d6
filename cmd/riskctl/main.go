// Command riskctl checks the configured model artifacts and runs single
// risk assessments from the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
