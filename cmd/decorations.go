package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/typstmath/internal/api"
	"github.com/zjrosen/typstmath/internal/engine"
	"github.com/zjrosen/typstmath/internal/log"
	"github.com/zjrosen/typstmath/internal/syntax"
)

var decorationsCmd = &cobra.Command{
	Use:     "decorations [file]",
	Aliases: []string{"deco"},
	Short:   "Print the decorations of a document as JSON",
	Long: `Decorations prints the same JSON document the HTTP API returns for
POST /decorations: the result ID, every decoration with its spans, and the
walk problems, if any.

--at limits the output to the innermost syntax node around a byte offset,
which is what an editor needs for the symbol under the cursor.

Example:
  typstmath decorations notes.typ --at 42 --compact`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecorations,
}

func init() {
	rootCmd.AddCommand(decorationsCmd)

	decorationsCmd.Flags().Bool("compact", false, "print the JSON on one line")
	decorationsCmd.Flags().Int("at", -1, "only decorations of the node at this byte offset")
}

func runDecorations(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	text, err := readSource(cmd, path)
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

	set := res.Decorations
	if at, _ := cmd.Flags().GetInt("at"); cmd.Flags().Changed("at") {
		node := res.Source.Enclosing(syntax.Span{Start: at, End: at + 1})
		if node == nil {
			return fmt.Errorf("offset %d is outside the document (%d bytes)", at, len(text))
		}
		log.Debug(log.CatParse, "decorations at offset", "offset", at, "node", node.Kind().String(), "span", node.Span().String())
		set = set.Within(node.Span())
	}

	resp := api.DecorateResponse{
		ID:          res.ID,
		Decorations: set,
		CacheHit:    res.CacheHit,
		TraceID:     res.TraceID,
	}
	for _, problem := range engine.Flatten(res.Problems) {
		resp.Problems = append(resp.Problems, problem.Error())
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if compact, _ := cmd.Flags().GetBool("compact"); !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("encoding decorations: %w", err)
	}
	return nil
}
