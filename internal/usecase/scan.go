package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"docblock/internal/adapter/analyzer"
	"docblock/internal/adapter/cache"
	"docblock/internal/adapter/grammar"
	"docblock/internal/adapter/parser"
	"docblock/internal/domain"
	"docblock/internal/pkg/logger"
	"docblock/internal/port"
)

// ScanUseCase finds the declarations in a source tree and records which
// of them lack a doc comment.
type ScanUseCase struct {
	store    port.DeclarationStore
	walker   port.FileWalker
	reader   port.FileReader
	registry *parser.Registry
	comments *analyzer.CommentExtractor
	cache    *cache.SymbolsCache
	log      *logger.Logger
	workers  int
}

// NewScanUseCase creates a scan use case. A nil cache disables memoizing
// and workers <= 0 means one per CPU.
func NewScanUseCase(
	store port.DeclarationStore,
	walker port.FileWalker,
	reader port.FileReader,
	registry *parser.Registry,
	symbols *cache.SymbolsCache,
	log *logger.Logger,
	workers int,
) *ScanUseCase {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ScanUseCase{
		store:    store,
		walker:   walker,
		reader:   reader,
		registry: registry,
		comments: analyzer.NewCommentExtractor(),
		cache:    symbols,
		log:      log,
		workers:  workers,
	}
}

// ScanResult contains the results of a scan.
type ScanResult struct {
	FilesScanned     int
	FilesSkipped     int
	FilesDeleted     int
	FilesUnsupported int
	Declarations     int
	Undocumented     int
	Errors           []string
}

// ProgressFunc is called after each file. It may be called from several
// goroutines at once.
type ProgressFunc func(processed, total int, path string)

// Scan walks root and stores the declarations of every new or modified
// file. Files whose modification time did not change are skipped; files
// that disappeared are purged.
func (u *ScanUseCase) Scan(ctx context.Context, root string, progress ProgressFunc) (*ScanResult, error) {
	result := &ScanResult{}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	existingDocs, err := u.store.ListDocs()
	if err != nil {
		return nil, fmt.Errorf("failed to list existing docs: %w", err)
	}
	existing := make(map[string]domain.Document, len(existingDocs))
	for _, doc := range existingDocs {
		existing[doc.Path] = doc
	}

	seen := make(map[string]bool)
	var todo []port.FileInfo
	for _, file := range files {
		if !u.registry.CanParse(file.Path) {
			result.FilesUnsupported++
			continue
		}
		rel := relativePath(root, file.Path)
		seen[rel] = true

		if doc, ok := existing[rel]; ok && doc.ModTime.Unix() >= file.ModTime {
			result.FilesSkipped++
			continue
		}
		todo = append(todo, file)
	}

	scanned := make([]*port.ScannedFile, len(todo))
	var (
		mu        sync.Mutex
		processed atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for i, file := range todo {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			sf, err := u.scanFile(root, file)
			if err != nil {
				u.log.WithPath(file.Path).WithError(err).Warn("skipping file")
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Sprintf("failed to scan %s: %v", file.Path, err))
				mu.Unlock()
			} else {
				scanned[i] = sf
			}

			n := processed.Add(1)
			if progress != nil {
				progress(int(n), len(todo), file.Path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := make([]port.ScannedFile, 0, len(scanned))
	for _, sf := range scanned {
		if sf != nil {
			batch = append(batch, *sf)
		}
	}
	if err := u.store.BatchPut(batch); err != nil {
		return nil, fmt.Errorf("failed to store declarations: %w", err)
	}
	result.FilesScanned = len(batch)

	for path, doc := range existing {
		if seen[path] {
			continue
		}
		if err := u.store.DeleteDoc(doc.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", path, err))
			continue
		}
		result.FilesDeleted++
	}

	stats, err := u.computeStats()
	if err != nil {
		return nil, err
	}
	if err := u.store.UpdateStats(stats); err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}
	result.Declarations = stats.TotalDeclarations
	result.Undocumented = stats.Undocumented

	return result, nil
}

func (u *ScanUseCase) computeStats() (domain.Stats, error) {
	docs, err := u.store.ListDocs()
	if err != nil {
		return domain.Stats{}, fmt.Errorf("failed to list docs: %w", err)
	}
	decls, err := u.store.ListDeclarations()
	if err != nil {
		return domain.Stats{}, fmt.Errorf("failed to list declarations: %w", err)
	}

	stats := domain.Stats{TotalDocs: len(docs), TotalDeclarations: len(decls)}
	for _, d := range decls {
		if !d.Documented {
			stats.Undocumented++
		}
	}
	return stats, nil
}

func (u *ScanUseCase) scanFile(root string, file port.FileInfo) (*port.ScannedFile, error) {
	def, ok := u.registry.ForPath(file.Path)
	if !ok {
		return nil, errors.New("unsupported file")
	}

	content, err := u.reader.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	rel := relativePath(root, file.Path)
	doc := domain.Document{
		ID:      generateDocID(rel),
		Path:    rel,
		ModTime: time.Unix(file.ModTime, 0),
		Lang:    def.Name,
	}

	decls, err := u.ScanSource(def.Name, content)
	if err != nil {
		return nil, err
	}
	for i := range decls {
		decls[i].ID = fmt.Sprintf("%s:%d", doc.ID, decls[i].Line)
		decls[i].DocID = doc.ID
		decls[i].Path = rel
	}

	return &port.ScannedFile{Doc: doc, Decls: decls}, nil
}

// ScanSource returns the declarations found in content, which is source
// code of language lang. Returned declarations carry no document fields.
func (u *ScanUseCase) ScanSource(lang, content string) ([]domain.Declaration, error) {
	p, err := u.registry.NewParser(lang)
	if err != nil {
		return nil, err
	}
	def := p.Language()

	var dp port.DeclarationParser = p
	if u.cache != nil {
		dp = cache.NewCachedParser(def.Name, p, u.cache)
	}

	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	comments := u.comments.Index(lines, def.Name)
	log := u.log.WithLanguage(def.Name)

	var decls []domain.Declaration
	depth := 0
	bodyDepth := -1
	pendingBody := false

	for i := 0; i < len(lines); i++ {
		lineNo := i + 1
		line := lines[i]

		if comments.InComment(lineNo) {
			continue
		}

		// Inside a function body nothing is a declaration.
		if bodyDepth >= 0 {
			depth += braceDelta(line)
			if depth <= bodyDepth {
				bodyDepth = -1
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if pendingBody {
			pendingBody = false
			if strings.HasPrefix(trimmed, "{") {
				bodyDepth = depth
				depth += braceDelta(line)
				if depth <= bodyDepth {
					bodyDepth = -1
				}
				continue
			}
		}

		if !looksLikeDeclaration(trimmed, def.Grammar) {
			depth += braceDelta(line)
			continue
		}

		sym, n, err := dp.TokenizeLines(lines[i:])
		if err != nil {
			log.Debug("line not parsed", "line", lineNo, "error", err)
			depth += braceDelta(line)
			continue
		}
		consumed := lines[i : i+n]
		source := strings.Join(consumed, "\n")
		if !sym.Resolved() || (sym.Type == domain.KindFunction && isCallStatement(source)) {
			depth += braceDelta(line)
			continue
		}

		decls = append(decls, domain.Declaration{
			Lang:       def.Name,
			Line:       lineNo,
			EndLine:    lineNo + n - 1,
			Source:     source,
			Documented: comments.Documented(lineNo),
			Symbols:    sym,
		})

		before := depth
		for _, l := range consumed {
			depth += braceDelta(l)
		}
		if sym.Type == domain.KindFunction {
			last := strings.TrimSpace(consumed[len(consumed)-1])
			switch {
			case depth > before:
				bodyDepth = before
			case !strings.HasSuffix(last, ";") && !strings.HasSuffix(last, "}"):
				pendingBody = true
			}
		}
		i += n - 1
	}

	return decls, nil
}

// statementWords start lines that are never declarations.
var statementWords = map[string]bool{
	"return": true, "if": true, "else": true, "for": true, "foreach": true, "while": true,
	"do": true, "switch": true, "case": true, "default": true, "break": true, "continue": true,
	"goto": true, "throw": true, "try": true, "catch": true, "finally": true, "new": true,
	"delete": true, "echo": true, "print": true, "import": true, "package": true,
	"namespace": true, "use": true, "require": true, "require_once": true, "include": true,
	"include_once": true,
}

func looksLikeDeclaration(trimmed string, g *grammar.Grammar) bool {
	if trimmed == "" {
		return false
	}
	switch trimmed[0] {
	case '@', '$':
		return true
	}
	if !g.StartsIdentifier(trimmed) {
		return false
	}
	return !statementWords[g.LeadingIdentifier(trimmed)]
}

var callStatement = regexp.MustCompile(`^[\w$.]+\s*\(.*\)\s*;$`)

// isCallStatement reports whether source is a bare call such as
// `init(config);`, which the JavaScript rules would otherwise read as a
// method shorthand.
func isCallStatement(source string) bool {
	return callStatement.MatchString(strings.TrimSpace(source))
}

// braceDelta returns the number of '{' minus '}' outside string literals
// and line comments.
func braceDelta(line string) int {
	delta := 0
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return delta
			}
		case '{':
			delta++
		case '}':
			delta--
		}
	}
	return delta
}

func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// generateDocID creates a stable ID for a document from its path.
func generateDocID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}
