package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/cognicore/labelphrase/pkg/labelphrase/internalerr"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	root := newRootCmd(version)
	err := root.ExecuteContext(ctx)
	report(os.Stderr, err)
	return exitCode(err)
}

// exitCode maps a command error to the process exit status: 0 on success,
// 2 for usage and configuration mistakes, 1 for everything else.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.Code
	}
	switch {
	case errors.Is(err, internalerr.ErrInvalidConfig),
		errors.Is(err, internalerr.ErrInvalidInput):
		return 2
	case errors.Is(err, context.Canceled):
		return 130
	}
	return 1
}

// report prints err and, for usage errors raised by a command, its usage.
func report(w io.Writer, err error) {
	if err == nil {
		return
	}
	var ce *cliError
	if !errors.As(err, &ce) {
		fmt.Fprintln(w, err.Error())
		return
	}
	if ce.Err != nil && ce.Err.Error() != "" {
		fmt.Fprintln(w, ce.Err.Error())
		fmt.Fprintln(w)
	}
	if ce.ShowUsage && ce.Cmd != nil {
		_ = ce.Cmd.Usage()
	}
}
