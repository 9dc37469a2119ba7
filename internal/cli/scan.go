package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docblock/config"
	"docblock/internal/adapter/cache"
	"docblock/internal/adapter/fs"
	"docblock/internal/adapter/store"
	"docblock/internal/usecase"
)

var (
	scanRebuild    bool
	scanNoProgress bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Find declarations in a source tree",
	Long: `Scan files in the specified directory, classify every declaration and
record whether a doc comment precedes it. Results are stored in
.docblock/index.db within the target directory. Unchanged files are
skipped on later runs.

Examples:
  docblock scan .                 # Scan current directory
  docblock scan /path/to/project  # Scan specific directory
  docblock scan --rebuild         # Discard stored results first`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanRebuild, "rebuild", false, "clear stored declarations before scanning")
	scanCmd.Flags().BoolVar(&scanNoProgress, "no-progress", false, "do not draw a progress bar")
}

func runScan(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()

	if err := config.EnsureDir(path); err != nil {
		return fmt.Errorf("failed to create .docblock directory: %w", err)
	}

	dbPath := config.DBPath(path)
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open declaration store: %w", err)
	}
	defer st.Close()

	migration, err := st.CheckMigration(cfg)
	if err != nil {
		return fmt.Errorf("failed to check migration: %w", err)
	}
	switch {
	case migration.NeedsRebuild || scanRebuild:
		reason := migration.Reason
		if scanRebuild {
			reason = "requested"
		}
		log.Info("clearing stored declarations", "reason", reason)
		if err := st.Clear(); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
	case migration.NeedsMigration:
		log.Info("running schema migration", "reason", migration.Reason)
		if err := st.Migrate(cfg); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	walker := fs.NewWalker(cfg.Scan.Includes, cfg.Scan.Excludes, fs.WithMaxFileSize(cfg.Scan.MaxFileSize))
	symbols := cache.NewSymbolsCache(cfg.Scan.CacheSize, cfg.Scan.CacheTTL)
	scanUC := usecase.NewScanUseCase(st, walker, fs.NewReader(nil), registry, symbols, log, cfg.Scan.Workers)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanning %s...\n", path)

	var progress usecase.ProgressFunc
	if !scanNoProgress {
		progress = newProgress()
	}

	start := time.Now()
	result, err := scanUC.Scan(cmd.Context(), path, progress)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if err := st.Migrate(cfg); err != nil {
		return fmt.Errorf("failed to update schema info: %w", err)
	}

	hits, misses := symbols.Stats()

	fmt.Fprintf(out, "\nScan complete in %s:\n", formatDuration(time.Since(start)))
	fmt.Fprintf(out, "  Files scanned:  %d\n", result.FilesScanned)
	fmt.Fprintf(out, "  Files skipped:  %d (unchanged)\n", result.FilesSkipped)
	fmt.Fprintf(out, "  Files deleted:  %d (removed)\n", result.FilesDeleted)
	fmt.Fprintf(out, "  Declarations:   %d\n", result.Declarations)
	fmt.Fprintf(out, "  Undocumented:   %d\n", result.Undocumented)
	if hits > 0 {
		fmt.Fprintf(out, "  Cache hits:     %d of %d\n", hits, hits+misses)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", e)
		}
	}

	fmt.Fprintf(out, "\nDeclarations stored at: %s\n", dbPath)
	return nil
}

// newProgress returns a progress callback that draws a bar once the total
// is known.
func newProgress() usecase.ProgressFunc {
	var (
		bar       *progressbar.ProgressBar
		mu        sync.Mutex
		startTime time.Time
	)

	return func(processed, total int, _ string) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Scanning[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}

		bar.Set(processed)

		if processed > 0 {
			elapsed := time.Since(startTime)
			rate := float64(processed) / elapsed.Seconds()
			if rate > 0 {
				eta := time.Duration(float64(total-processed)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Scanning[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
