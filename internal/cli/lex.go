package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"docblock/internal/adapter/lexer"
)

var (
	lexLang    string
	lexJSON    bool
	lexLenient bool
)

var lexCmd = &cobra.Command{
	Use:   "lex <code>",
	Short: "Print the token stream of a line of code",
	Long: `Lex a line of code and print its tokens. With --lang the language's
expression validator and extra lexing rules are used.

Examples:
  docblock lex "foo(a, b = 1)"
  docblock lex --lang scss "@mixin pad(\$n: 4px) {"`,
	Args: cobra.ExactArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexLang, "lang", "l", "", "language name or extension")
	lexCmd.Flags().BoolVar(&lexJSON, "json", false, "output as JSON")
	lexCmd.Flags().BoolVar(&lexLenient, "lenient", false, "stop at the first unrecognized character instead of failing")
}

func runLex(cmd *cobra.Command, args []string) error {
	var opts []lexer.Option
	if lexLang != "" {
		registry, err := newRegistry(GetConfig())
		if err != nil {
			return err
		}
		def, ok := registry.Lookup(lexLang)
		if !ok {
			return fmt.Errorf("unsupported language: %s", lexLang)
		}
		opts = append(opts, lexer.WithValidator(def.Validator), lexer.WithRules(def.Rules...))
	}
	if lexLenient {
		opts = append(opts, lexer.WithStopAtUnrecognized())
	}

	lx := lexer.New(args[0], opts...)
	tokens, err := lx.Tokens()
	if err != nil {
		return describeSyntaxError(err)
	}

	out := cmd.OutOrStdout()
	if lexJSON {
		data, err := json.MarshalIndent(tokens, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tTYPE\tNAME\tVALUE")
	for _, t := range tokens {
		fmt.Fprintf(tw, "%d:%d\t%s\t%s\t%q\n", t.Line, t.Col, t.Type, t.Name, t.Val)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if rest := lx.Remainder(); rest != "" {
		fmt.Fprintf(out, "\nunlexed: %q\n", rest)
	}
	return nil
}
