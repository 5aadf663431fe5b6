package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/macropower/chores/cmd/chores/commands"
	"github.com/macropower/chores/pkg/log"
)

func init() {
	h, err := log.CreateHandlerWithStrings(os.Stderr, "warn", log.TextFormat)
	if err != nil {
		panic(err)
	}

	slog.SetDefault(slog.New(h))
}

const (
	cmdName = "chores"

	shortDesc = "Mutex and condition variable demonstrations."
	longDesc  = `Mutex and condition variable demonstrations.

The mut mode holds a lock while another goroutine waits for it, and releases
it when you enter anything.

The cond mode starts a crew of workers that nap on a condition variable until
chores arrive. Enter how many chores to send out; a negative number calls it a
day, and every worker finishes up and leaves.
`
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := commands.NewRootCmd(cmdName, shortDesc, longDesc)

	err := cmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
