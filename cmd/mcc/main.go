// Command mcc compiles MCCompiled sources into behaviour-pack files.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zurustar/mccompiled/pkg/app"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the exit code: 0 on success, 1 when a source failed to
// compile, 2 for usage and I/O errors.
func run(args []string, stdout, stderr io.Writer) int {
	err := app.New(stdout, stderr).Run(args)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrCompilation):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
}
