package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"docblock/config"
	"docblock/internal/adapter/parser"
	"docblock/internal/pkg/logger"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
	log      *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docblock",
	Short: "Docblock - classify declarations and find the undocumented ones",
	Long: `Docblock reads a line of source code, works out whether it declares a
function, a class or a variable, and reports its name, parameters, defaults
and return type. Supported languages: C, Java, JavaScript, PHP and SCSS.

Example usage:
  docblock parse --lang c "int add(int a, int b) {"
  docblock scan .                    # Find declarations in a tree
  docblock list --undocumented       # Show the ones without doc comments`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		log = logger.New(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docblock.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

// newRegistry builds the language registry described by the loaded config.
func newRegistry(c *config.Config) (*parser.Registry, error) {
	registry, err := parser.NewRegistry(parser.RegistryOptions{
		DefaultValidator: c.Parse.Validator,
		Validators:       c.Parse.Validators,
		Grammars:         c.Grammars,
		MaxContinuations: c.Parse.MaxContinuations,
		MaxBufferLines:   c.Parse.MaxBufferLines,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build language registry: %w", err)
	}
	return registry, nil
}
