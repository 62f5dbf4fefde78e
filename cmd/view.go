package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/typstmath/internal/log"
	"github.com/zjrosen/typstmath/internal/pubsub"
	"github.com/zjrosen/typstmath/internal/viewer"
	"github.com/zjrosen/typstmath/internal/watcher"
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Open the interactive preview",
	Long: `View opens a full-screen preview of the document. The tier and the
outside-math toggle can be changed live and are saved back to the config
file. When a file is given it is watched and re-rendered on save.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().Bool("no-watch", false, "do not re-render the file when it changes")
	viewCmd.Flags().Bool("no-save", false, "do not save toggles to the config file")
}

func runView(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 && args[0] != "-" {
		path = args[0]
	}
	text, err := readSource(cmd, path)
	if err != nil {
		return err
	}
	th, err := theme()
	if err != nil {
		return err
	}

	eng, _, shutdown, err := newEngine()
	if err != nil {
		return err
	}
	defer shutdown()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	vcfg := viewer.Config{
		Text:      text,
		Decorator: eng,
		Options:   cfg.WalkOptions(),
		Theme:     th,
	}
	if path != "" {
		vcfg.Path = filepath.Base(path)
	}
	if noSave, _ := cmd.Flags().GetBool("no-save"); !noSave {
		vcfg.ConfigPath = configPath()
	}

	if noWatch, _ := cmd.Flags().GetBool("no-watch"); path != "" && !noWatch {
		w, err := watcher.New(watcher.Config{Paths: []string{path}, DebounceDur: cfg.Watch.Debounce})
		if err != nil {
			return err
		}
		changes, err := w.Start()
		if err != nil {
			return err
		}
		defer func() {
			if err := w.Stop(); err != nil {
				log.ErrorErr(log.CatWatcher, "stopping watcher", err)
			}
		}()

		broker := pubsub.NewBroker[watcher.Update]()
		defer broker.Close()
		renderer := watcher.NewRenderer(eng, broker, vcfg.Options)
		vcfg.Renderer = renderer
		vcfg.Updates = pubsub.NewContinuousListener[watcher.Update](ctx, broker)
		go func() {
			if err := renderer.Run(ctx, changes); err != nil && ctx.Err() == nil {
				log.ErrorErr(log.CatWatcher, "watch loop stopped", err)
			}
		}()
	}

	if log.Enabled() {
		vcfg.Logs = log.NewListener(ctx)
	}

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if path == "" {
		// The document came from stdin; keys come from the terminal.
		opts = append(opts, tea.WithInputTTY())
	}
	if _, err := tea.NewProgram(viewer.New(ctx, vcfg), opts...).Run(); err != nil {
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}
