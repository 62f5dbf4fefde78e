package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/typstmath/internal/preview"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Print a document with its decorations applied",
	Long: `Render decorates a Typst document and prints it with every decorated
span replaced by its glyph. Without a file (or with "-") the document is
read from stdin.

Example:
  typstmath render notes.typ
  typstmath render --diff notes.typ
  echo '$alpha^2$' | typstmath render --plain --mode 1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().Bool("plain", false, "print without colors")
	renderCmd.Flags().Bool("diff", false, "show source and glyphs as a word diff")
	renderCmd.Flags().Bool("legend", false, "list the decorations instead of the document")
}

func runRender(cmd *cobra.Command, args []string) error {
	plain, _ := cmd.Flags().GetBool("plain")
	diff, _ := cmd.Flags().GetBool("diff")
	legend, _ := cmd.Flags().GetBool("legend")
	if diff && legend {
		return errors.New("--diff and --legend are mutually exclusive")
	}

	var path string
	if len(args) == 1 {
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

	res, err := eng.Decorate(cmd.Context(), text, cfg.WalkOptions())
	if err != nil {
		return fmt.Errorf("decorating: %w", err)
	}
	reportProblems(cmd, res)

	out := cmd.OutOrStdout()
	switch {
	case legend:
		_, err = fmt.Fprintln(out, preview.Legend(res.Decorations, th))
	case diff:
		_, err = fmt.Fprint(out, preview.Diff(text, res.Decorations))
	case plain:
		_, err = fmt.Fprint(out, preview.Plain(text, res.Decorations))
	default:
		_, err = fmt.Fprint(out, preview.Render(text, res.Decorations, th))
	}
	return err
}
