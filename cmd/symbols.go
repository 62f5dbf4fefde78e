package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/zjrosen/typstmath/internal/config"
	"github.com/zjrosen/typstmath/internal/log"
	"github.com/zjrosen/typstmath/internal/preview"
	"github.com/zjrosen/typstmath/internal/symbols"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols [name...]",
	Short: "Look up symbol names",
	Long: `Symbols resolves each name to its glyph and color category, honoring
custom_symbols and blacklist from the config. Without names it lists every
resolvable symbol. A leading "sym." is ignored.

--hide and --unhide edit the blacklist in the config file instead.

Example:
  typstmath symbols alpha arrow.r sym.RR
  typstmath symbols --prefix arrow --markdown
  typstmath symbols --hide dot,star --unhide alpha`,
	RunE: runSymbols,
}

func init() {
	rootCmd.AddCommand(symbolsCmd)

	symbolsCmd.Flags().String("prefix", "", "only list names with this prefix")
	symbolsCmd.Flags().Bool("markdown", false, "render the list as a markdown table")
	symbolsCmd.Flags().Int("width", 100, "wrap width for --markdown")
	symbolsCmd.Flags().StringSlice("hide", nil, "add names to the blacklist")
	symbolsCmd.Flags().StringSlice("unhide", nil, "remove names from the blacklist")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("hide") || cmd.Flags().Changed("unhide") {
		hide, _ := cmd.Flags().GetStringSlice("hide")
		unhide, _ := cmd.Flags().GetStringSlice("unhide")
		return updateBlacklist(cmd, hide, unhide)
	}

	resolver, err := cfg.Resolver()
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		prefix, _ := cmd.Flags().GetString("prefix")
		for _, name := range resolver.Names() {
			if strings.HasPrefix(name, prefix) {
				names = append(names, name)
			}
		}
	} else {
		var unknown []string
		for _, name := range names {
			if _, ok := resolver.Resolve(name); !ok {
				unknown = append(unknown, name)
			}
		}
		if len(unknown) > 0 {
			return fmt.Errorf("unknown symbol: %s", strings.Join(unknown, ", "))
		}
	}

	out := cmd.OutOrStdout()
	if markdown, _ := cmd.Flags().GetBool("markdown"); markdown {
		width, _ := cmd.Flags().GetInt("width")
		rendered, err := preview.RenderMarkdown(preview.SymbolTable(resolver, names), width, "")
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	}
	return writeSymbols(cmd, resolver, names)
}

// writeSymbols prints name, glyph and color columns. Glyphs can be wide,
// so columns are padded by display width.
func writeSymbols(cmd *cobra.Command, resolver *symbols.Resolver, names []string) error {
	nameWidth := 0
	for _, name := range names {
		nameWidth = max(nameWidth, runewidth.StringWidth(name))
	}
	out := cmd.OutOrStdout()
	for _, name := range names {
		glyph, _ := resolver.Resolve(name)
		line := runewidth.FillRight(name, nameWidth) + "  " +
			runewidth.FillRight(glyph.Content, 3) + "  " + glyph.Color.String()
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

// updateBlacklist rewrites the blacklist in the config file. Names are
// stored without a "sym." prefix, sorted and without duplicates.
func updateBlacklist(cmd *cobra.Command, hide, unhide []string) error {
	set := make(map[string]struct{}, len(cfg.Blacklist)+len(hide))
	for _, name := range cfg.Blacklist {
		set[name] = struct{}{}
	}
	for _, name := range hide {
		set[strings.TrimPrefix(name, "sym.")] = struct{}{}
	}
	for _, name := range unhide {
		delete(set, strings.TrimPrefix(name, "sym."))
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	path := configPath()
	if err := config.SaveBlacklist(path, names); err != nil {
		return err
	}
	log.Info(log.CatConfig, "blacklist saved", "path", path, "names", len(names))
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "blacklist: %s\n", strings.Join(names, ", "))
	return err
}
