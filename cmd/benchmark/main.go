package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"docblock/config"
	"docblock/internal/adapter/cache"
	"docblock/internal/adapter/fs"
	"docblock/internal/adapter/parser"
	"docblock/internal/pkg/logger"
	"docblock/internal/usecase"
)

type langStats struct {
	files        int
	lines        int
	declarations int
	undocumented int
	elapsed      time.Duration
}

func main() {
	dir := flag.String("dir", ".", "Directory to scan")
	rounds := flag.Int("n", 3, "Number of passes over the tree")
	noCache := flag.Bool("no-cache", false, "Parse without the symbols cache")
	flag.Parse()

	if *rounds < 1 {
		fmt.Println("Usage: go run cmd/benchmark/main.go -dir ./src [-n 3] [-no-cache]")
		os.Exit(1)
	}

	root, err := filepath.Abs(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	registry, err := parser.NewRegistry(parser.RegistryOptions{
		DefaultValidator: cfg.Parse.Validator,
		Validators:       cfg.Parse.Validators,
		Grammars:         cfg.Grammars,
		MaxContinuations: cfg.Parse.MaxContinuations,
		MaxBufferLines:   cfg.Parse.MaxBufferLines,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building registry: %v\n", err)
		os.Exit(1)
	}

	walker := fs.NewWalker(cfg.Scan.Includes, cfg.Scan.Excludes, fs.WithMaxFileSize(cfg.Scan.MaxFileSize))
	files, err := walker.Walk(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Walk error: %v\n", err)
		os.Exit(1)
	}

	var symbols *cache.SymbolsCache
	if !*noCache {
		symbols = cache.NewSymbolsCache(cfg.Scan.CacheSize, cfg.Scan.CacheTTL)
	}
	reader := fs.NewReader(nil)
	scanUC := usecase.NewScanUseCase(nil, walker, reader, registry, symbols, logger.Nop(), 1)

	fmt.Println("DECLARATION PARSE BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Root:       %s\n", root)
	fmt.Printf("Validator:  %s\n", cfg.Parse.Validator)
	fmt.Printf("Passes:     %d\n", *rounds)
	fmt.Println()

	stats := make(map[string]*langStats)
	var total time.Duration

	for round := 0; round < *rounds; round++ {
		var passTime time.Duration
		for _, f := range files {
			def, ok := registry.ForPath(f.Path)
			if !ok {
				continue
			}
			content, err := reader.ReadFile(f.Path)
			if err != nil {
				continue
			}

			start := time.Now()
			decls, err := scanUC.ScanSource(def.Name, content)
			elapsed := time.Since(start)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", f.Path, err)
				continue
			}
			passTime += elapsed

			if round > 0 {
				continue
			}
			s := stats[def.Name]
			if s == nil {
				s = &langStats{}
				stats[def.Name] = s
			}
			s.files++
			s.lines += strings.Count(content, "\n") + 1
			s.declarations += len(decls)
			for _, d := range decls {
				if !d.Documented {
					s.undocumented++
				}
			}
			s.elapsed += elapsed
		}
		fmt.Printf("Pass %d: %s\n", round+1, passTime.Round(time.Microsecond))
		total += passTime
	}

	if len(stats) == 0 {
		fmt.Println("\nNo supported source files found.")
		return
	}

	langs := make([]string, 0, len(stats))
	for name := range stats {
		langs = append(langs, name)
	}
	sort.Strings(langs)

	fmt.Println()
	fmt.Printf("%-12s %6s %8s %8s %8s %12s\n", "LANGUAGE", "FILES", "LINES", "DECLS", "UNDOC", "LINES/SEC")
	fmt.Println(strings.Repeat("-", 70))

	totalLines := 0
	for _, name := range langs {
		s := stats[name]
		totalLines += s.lines
		fmt.Printf("%-12s %6d %8d %8d %8d %12.0f\n",
			name, s.files, s.lines, s.declarations, s.undocumented, rate(s.lines, s.elapsed))
	}

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("RESULTS:\n")
	fmt.Printf("  Average pass:       %s\n", (total / time.Duration(*rounds)).Round(time.Microsecond))
	fmt.Printf("  Lines/sec (avg):    %.0f\n", rate(totalLines*(*rounds), total))
	if symbols != nil {
		hits, misses := symbols.Stats()
		ratio := 0.0
		if hits+misses > 0 {
			ratio = float64(hits) / float64(hits+misses)
		}
		fmt.Printf("  Cache hit ratio:    %.1f%% (%d entries)\n", ratio*100, symbols.Size())
	}
}

func rate(lines int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(lines) / d.Seconds()
}
