package main

import (
	"fmt"
	"os"

	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to a process exit status so scripts can tell
// bad input from an unreachable store
func exitCode(err error) int {
	switch model.KindOf(err) {
	case model.KindConfig:
		return 2
	case model.KindInputRead, model.KindMissingColumn, model.KindEmptyColumn:
		return 3
	case model.KindDivergentGroup:
		return 4
	case model.KindOutputWrite, model.KindStoreWrite:
		return 5
	default:
		return 1
	}
}
