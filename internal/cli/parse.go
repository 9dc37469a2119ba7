package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"docblock/internal/adapter/parser"
	"docblock/internal/domain"
)

var (
	parseLang string
	parseFile string
	parseJSON bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [code]",
	Short: "Classify the declaration in a line of code",
	Long: `Parse one declaration and print what was recognized. Without a code
argument the declaration is read from stdin; a parameter list spanning
several lines is joined until it closes.

Examples:
  docblock parse --lang c "int add(int a, int b) {"
  docblock parse --file src/app.js "const add = (a, b) => a + b;"
  cat decl.java | docblock parse --lang java --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseLang, "lang", "l", "", "language name or extension")
	parseCmd.Flags().StringVarP(&parseFile, "file", "f", "", "file name to pick the language from")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "output as JSON")
	parseCmd.MarkFlagsMutuallyExclusive("lang", "file")
	parseCmd.MarkFlagsOneRequired("lang", "file")
}

func runParse(cmd *cobra.Command, args []string) error {
	registry, err := newRegistry(GetConfig())
	if err != nil {
		return err
	}

	key := parseLang
	if parseFile != "" {
		key = parseFile
	}
	p, err := registry.NewParser(key)
	if err != nil {
		return err
	}

	var sym *domain.Symbols
	if len(args) == 1 {
		sym, err = p.Tokenize(args[0])
	} else {
		sym, err = parseStdin(cmd.InOrStdin(), p)
	}
	if err != nil {
		return describeSyntaxError(err)
	}

	out := cmd.OutOrStdout()
	if parseJSON {
		data, err := json.MarshalIndent(sym, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	printSymbols(out, sym)
	return nil
}

func parseStdin(r io.Reader, p *parser.Parser) (*domain.Symbols, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimRight(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	lines := strings.Split(text, "\n")
	sym, _, err := p.TokenizeLines(lines)
	return sym, err
}

func describeSyntaxError(err error) error {
	var se *domain.SyntaxError
	if errors.As(err, &se) {
		return fmt.Errorf("%s at %d:%d: %s", se.Kind.Code(), se.Line, se.Column, se.Message)
	}
	return err
}

func printSymbols(w io.Writer, sym *domain.Symbols) {
	if !sym.Resolved() {
		fmt.Fprintln(w, "No declaration recognized.")
		return
	}

	fmt.Fprintf(w, "kind:    %s\n", sym.Type)
	fmt.Fprintf(w, "name:    %s\n", sym.Name)
	if sym.VarType != "" {
		fmt.Fprintf(w, "type:    %s\n", sym.VarType)
	}
	if sym.Type != domain.KindFunction {
		return
	}

	params := make([]string, len(sym.Params))
	for i, p := range sym.Params {
		params[i] = formatParam(p)
	}
	fmt.Fprintf(w, "params:  %s\n", strings.Join(params, ", "))

	switch {
	case !sym.Return.Present:
		fmt.Fprintln(w, "return:  none")
	case sym.Return.Type != "":
		fmt.Fprintf(w, "return:  %s\n", sym.Return.Type)
	default:
		fmt.Fprintln(w, "return:  yes")
	}
}

func formatParam(p domain.Param) string {
	s := p.Name
	if s == "" {
		s = "_"
	}
	if p.Type != "" {
		s += " (" + p.Type + ")"
	}
	if p.Val != "" {
		s += " = " + p.Val
	}
	return s
}
