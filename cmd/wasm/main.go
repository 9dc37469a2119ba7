//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"syscall/js"
	"time"

	"github.com/spf13/afero"

	"docblock/internal/adapter/cache"
	"docblock/internal/adapter/fs"
	"docblock/internal/adapter/lexer"
	"docblock/internal/adapter/memstore"
	"docblock/internal/adapter/parser"
	"docblock/internal/domain"
	"docblock/internal/pkg/logger"
	"docblock/internal/port"
	"docblock/internal/usecase"
)

const srcRoot = "/src"

var (
	registry *parser.Registry
	symbols  *cache.SymbolsCache
	files    afero.Fs
	store    *memstore.MemoryStore
	scanUC   *usecase.ScanUseCase
)

func init() {
	registry = parser.DefaultRegistry()
	symbols = cache.NewSymbolsCache(1000, 0)
	reset()
}

func reset() {
	files = afero.NewMemMapFs()
	store = memstore.NewMemoryStore()
	walker := fs.NewWalker(nil, nil, fs.WithFs(files))
	scanUC = usecase.NewScanUseCase(store, walker, fs.NewReader(files), registry, symbols, logger.Nop(), 1)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("docblockParse", js.FuncOf(parseDeclaration))
	js.Global().Set("docblockLex", js.FuncOf(lexLine))
	js.Global().Set("docblockLanguages", js.FuncOf(listLanguages))
	js.Global().Set("docblockScan", js.FuncOf(scanContent))
	js.Global().Set("docblockStats", js.FuncOf(getStats))
	js.Global().Set("docblockClear", js.FuncOf(clearAll))

	<-c
}

func parseDeclaration(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: docblockParse(lang, code)")
	}

	p, err := registry.NewParser(args[0].String())
	if err != nil {
		return makeError(err.Error())
	}
	var dp port.DeclarationParser = cache.NewCachedParser(p.Language().Name, p, symbols)

	sym, err := dp.Tokenize(args[1].String())
	if err != nil {
		return syntaxError(err)
	}

	return makeResult(map[string]interface{}{
		"resolved": sym.Resolved(),
		"symbols":  sym,
	})
}

func lexLine(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: docblockLex(code, [lang])")
	}

	var opts []lexer.Option
	if len(args) > 1 {
		def, ok := registry.Lookup(args[1].String())
		if !ok {
			return makeError("unsupported language: " + args[1].String())
		}
		opts = append(opts, lexer.WithValidator(def.Validator), lexer.WithRules(def.Rules...))
	}

	tokens, err := lexer.New(args[0].String(), opts...).Tokens()
	if err != nil {
		return syntaxError(err)
	}

	return makeResult(map[string]interface{}{
		"tokens": tokens,
	})
}

func listLanguages(this js.Value, args []js.Value) interface{} {
	defs := registry.Languages()
	langs := make([]map[string]interface{}, 0, len(defs))
	for _, def := range defs {
		langs = append(langs, map[string]interface{}{
			"name":       def.Name,
			"extensions": def.Extensions,
			"validator":  def.Validator.Name(),
		})
	}
	return makeResult(map[string]interface{}{
		"languages": langs,
	})
}

func scanContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: docblockScan(filename, content)")
	}

	filename := path.Clean("/" + args[0].String())[1:]
	if !registry.CanParse(filename) {
		return makeError("unsupported file: " + filename)
	}

	// A file uploaded twice within a second keeps its mtime, so drop the
	// old document explicitly.
	docs, _ := store.ListDocs()
	for _, doc := range docs {
		if doc.Path == filename {
			store.DeleteDoc(doc.ID)
		}
	}

	full := path.Join(srcRoot, filename)
	if err := afero.WriteFile(files, full, []byte(args[1].String()), 0644); err != nil {
		return makeError("write failed: " + err.Error())
	}
	now := time.Now()
	files.Chtimes(full, now, now)

	result, err := scanUC.Scan(context.Background(), srcRoot, nil)
	if err != nil {
		return makeError("scan failed: " + err.Error())
	}
	if len(result.Errors) > 0 {
		return makeError(result.Errors[0])
	}

	all, err := store.ListDeclarations()
	if err != nil {
		return makeError(err.Error())
	}
	decls := make([]domain.Declaration, 0)
	for _, d := range all {
		if d.Path == filename {
			decls = append(decls, d)
		}
	}

	return makeResult(map[string]interface{}{
		"filename":     filename,
		"declarations": decls,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	stats, _ := store.GetStats()
	docs, _ := store.ListDocs()

	filenames := make([]string, len(docs))
	for i, doc := range docs {
		filenames[i] = doc.Path
	}

	hits, misses := symbols.Stats()
	return makeResult(map[string]interface{}{
		"totalDocs":         stats.TotalDocs,
		"totalDeclarations": stats.TotalDeclarations,
		"undocumented":      stats.Undocumented,
		"files":             filenames,
		"cacheHits":         hits,
		"cacheMisses":       misses,
	})
}

func clearAll(this js.Value, args []js.Value) interface{} {
	symbols.Invalidate()
	reset()
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func syntaxError(err error) interface{} {
	var se *domain.SyntaxError
	if !errors.As(err, &se) {
		return makeError(err.Error())
	}
	result, _ := json.Marshal(map[string]interface{}{
		"error":  se.Message,
		"code":   se.Kind.Code(),
		"line":   se.Line,
		"column": se.Column,
	})
	return string(result)
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
