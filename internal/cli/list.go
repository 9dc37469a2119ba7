package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"docblock/config"
	"docblock/internal/adapter/store"
	"docblock/internal/domain"
)

var (
	listUndocumented bool
	listJSON         bool
	listKind         string
	listLang         string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show stored declarations",
	Long: `List the declarations found by the last scan.

Examples:
  docblock list
  docblock list --undocumented
  docblock list --kind function --lang php --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listUndocumented, "undocumented", "u", false, "only declarations without a doc comment")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	listCmd.Flags().StringVar(&listKind, "kind", "", "only this kind: function, class or variable")
	listCmd.Flags().StringVar(&listLang, "lang", "", "only this language")
}

func runList(cmd *cobra.Command, args []string) error {
	dbPath := config.DBPath(GetRootDir())
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no scan results found. Run 'docblock scan' first")
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open declaration store: %w", err)
	}
	defer st.Close()

	decls, err := st.ListDeclarations()
	if err != nil {
		return fmt.Errorf("failed to list declarations: %w", err)
	}
	decls = filterDeclarations(decls, listUndocumented, listKind, listLang)

	out := cmd.OutOrStdout()
	if listJSON {
		if decls == nil {
			decls = []domain.Declaration{}
		}
		output, err := json.MarshalIndent(decls, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	if len(decls) == 0 {
		fmt.Fprintln(out, "No declarations found.")
		return nil
	}
	for _, d := range decls {
		mark := " "
		if !d.Documented {
			mark = "!"
		}
		fmt.Fprintf(out, "%s %s:%d  %-8s %s\n", mark, d.Path, d.Line, d.Symbols.Type, signature(d.Symbols))
	}

	stats, err := st.GetStats()
	if err == nil && stats.TotalDeclarations > 0 {
		fmt.Fprintf(out, "\n%d of %d declarations undocumented in %d files\n",
			stats.Undocumented, stats.TotalDeclarations, stats.TotalDocs)
	}
	return nil
}

func filterDeclarations(decls []domain.Declaration, undocumented bool, kind, lang string) []domain.Declaration {
	var out []domain.Declaration
	for _, d := range decls {
		if undocumented && d.Documented {
			continue
		}
		if kind != "" && d.Symbols.Type.String() != kind {
			continue
		}
		if lang != "" && !strings.EqualFold(d.Lang, lang) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// signature renders symbols as a one-line declaration summary.
func signature(sym *domain.Symbols) string {
	if sym.Type != domain.KindFunction {
		if sym.VarType != "" {
			return sym.VarType + " " + sym.Name
		}
		return sym.Name
	}

	params := make([]string, len(sym.Params))
	for i, p := range sym.Params {
		params[i] = formatParam(p)
	}
	s := sym.Name + "(" + strings.Join(params, ", ") + ")"
	if sym.Return.Type != "" {
		s += ": " + sym.Return.Type
	}
	return s
}
