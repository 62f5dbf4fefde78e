package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/typstmath/internal/engine"
	"github.com/zjrosen/typstmath/internal/log"
	"github.com/zjrosen/typstmath/internal/preview"
	"github.com/zjrosen/typstmath/internal/pubsub"
	"github.com/zjrosen/typstmath/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>...",
	Short: "Re-render documents whenever they change",
	Long: `Watch renders each file once, then again every time it is saved.
Bursts of writes are debounced (watch.debounce in the config). Press
Ctrl+C to stop.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Bool("plain", false, "print without colors")
}

func runWatch(cmd *cobra.Command, args []string) error {
	plain, _ := cmd.Flags().GetBool("plain")
	th, err := theme()
	if err != nil {
		return err
	}

	eng, _, shutdown, err := newEngine()
	if err != nil {
		return err
	}
	defer shutdown()

	w, err := watcher.New(watcher.Config{Paths: args, DebounceDur: cfg.Watch.Debounce})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	broker := pubsub.NewBroker[watcher.Update]()
	renderer := watcher.NewRenderer(eng, broker, cfg.WalkOptions())

	events := broker.Subscribe(ctx)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for ev := range events {
			printUpdate(cmd.OutOrStdout(), ev, th, plain)
		}
	}()

	changes, err := w.Start()
	if err != nil {
		broker.Close()
		<-printed
		return err
	}

	for _, path := range w.Paths() {
		// Failures are published and printed; keep watching the others.
		_ = renderer.Render(ctx, path)
	}

	runErr := renderer.Run(ctx, changes)
	if err := w.Stop(); err != nil {
		log.ErrorErr(log.CatWatcher, "stopping watcher", err)
	}
	broker.Close()
	<-printed

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// printUpdate writes one watch event: a header line, then the rendered
// document for successful renders.
func printUpdate(out io.Writer, ev pubsub.Event[watcher.Update], th preview.Theme, plain bool) {
	u := ev.Payload
	switch ev.Type {
	case pubsub.DeletedEvent:
		fmt.Fprintf(out, "── %s removed\n", u.Path)
	case pubsub.FailedEvent:
		fmt.Fprintf(out, "── %s failed: %v\n", u.Path, u.Err)
	case pubsub.CreatedEvent, pubsub.UpdatedEvent:
		problems := engine.Flatten(u.Result.Problems)
		fmt.Fprintf(out, "── %s · %d decorations · %d problems\n", u.Path, u.Result.Decorations.Len(), len(problems))
		for _, problem := range problems {
			fmt.Fprintf(out, "warning: %v\n", problem)
		}
		if plain {
			fmt.Fprintln(out, preview.Plain(u.Text, u.Result.Decorations))
		} else {
			fmt.Fprintln(out, preview.Render(u.Text, u.Result.Decorations, th))
		}
	}
}
