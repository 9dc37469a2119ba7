// Package analyzer finds the comments in a source file and decides which
// declarations already carry a doc comment.
package analyzer

import (
	"regexp"
	"sort"
	"strings"
)

// Comment block kinds.
const (
	TypeDoc   = "doc"
	TypeBlock = "block"
	TypeLine  = "line"
)

type CommentBlock struct {
	Text      string
	StartLine int
	EndLine   int
	Type      string
}

type CommentExtractor struct {
	patterns map[string]languageCommentPatterns
}

type languageCommentPatterns struct {
	lineComment *regexp.Regexp
	docLine     *regexp.Regexp
	blockStart  *regexp.Regexp
	blockEnd    *regexp.Regexp
	docStart    *regexp.Regexp
	// annotation matches lines allowed between a doc comment and the
	// declaration it documents.
	annotation *regexp.Regexp
}

var (
	slashLine  = regexp.MustCompile(`^\s*//(.*)$`)
	slashDoc   = regexp.MustCompile(`^\s*///(.*)$`)
	blockStart = regexp.MustCompile(`^\s*/\*`)
	blockEnd   = regexp.MustCompile(`\*/`)
	docStart   = regexp.MustCompile(`^\s*/\*\*([^/]|$)`)
)

func NewCommentExtractor() *CommentExtractor {
	c := languageCommentPatterns{
		lineComment: slashLine,
		docLine:     slashDoc,
		blockStart:  blockStart,
		blockEnd:    blockEnd,
		docStart:    docStart,
	}
	java := c
	java.docLine = nil
	java.annotation = regexp.MustCompile(`^\s*@\w[\w.]*(\(.*\))?\s*$`)

	js := c
	js.docLine = nil
	js.annotation = regexp.MustCompile(`^\s*@\w[\w.]*(\(.*\))?\s*$`)

	php := c
	php.docLine = nil
	php.lineComment = regexp.MustCompile(`^\s*(?://|#(?:[^\[]|$))(.*)$`)
	php.annotation = regexp.MustCompile(`^\s*#\[.*\]\s*$`)

	return &CommentExtractor{
		patterns: map[string]languageCommentPatterns{
			"c":          c,
			"java":       java,
			"javascript": js,
			"php":        php,
			"scss":       c,
		},
	}
}

func (e *CommentExtractor) lookup(lang string) languageCommentPatterns {
	patterns, ok := e.patterns[lang]
	if !ok {
		patterns = e.patterns["c"]
	}
	return patterns
}

// Extract returns the comments of content in line order. Consecutive line
// comments of the same kind are merged into one block.
func (e *CommentExtractor) Extract(content string, lang string) []CommentBlock {
	return e.extractLines(strings.Split(content, "\n"), e.lookup(lang))
}

func (e *CommentExtractor) extractLines(lines []string, patterns languageCommentPatterns) []CommentBlock {
	var comments []CommentBlock

	inBlock := false
	blockType := TypeBlock
	blockStartLine := 0
	var blockContent strings.Builder

	for lineNum, line := range lines {
		lineNumber := lineNum + 1

		if inBlock {
			blockContent.WriteString("\n")
			blockContent.WriteString(line)
			if patterns.blockEnd.MatchString(line) {
				comments = append(comments, CommentBlock{
					Text:      strings.TrimSpace(blockContent.String()),
					StartLine: blockStartLine,
					EndLine:   lineNumber,
					Type:      blockType,
				})
				inBlock = false
				blockContent.Reset()
			}
			continue
		}

		if loc := patterns.blockStart.FindStringIndex(line); loc != nil {
			blockType = TypeBlock
			if patterns.docStart.MatchString(line) {
				blockType = TypeDoc
			}
			if patterns.blockEnd.MatchString(line[loc[1]:]) {
				comments = append(comments, CommentBlock{
					Text:      strings.TrimSpace(line),
					StartLine: lineNumber,
					EndLine:   lineNumber,
					Type:      blockType,
				})
			} else {
				inBlock = true
				blockStartLine = lineNumber
				blockContent.WriteString(line)
			}
			continue
		}

		if patterns.docLine != nil {
			if m := patterns.docLine.FindStringSubmatch(line); m != nil {
				comments = append(comments, CommentBlock{
					Text:      strings.TrimSpace(m[1]),
					StartLine: lineNumber,
					EndLine:   lineNumber,
					Type:      TypeDoc,
				})
				continue
			}
		}

		if m := patterns.lineComment.FindStringSubmatch(line); m != nil {
			comments = append(comments, CommentBlock{
				Text:      strings.TrimSpace(m[1]),
				StartLine: lineNumber,
				EndLine:   lineNumber,
				Type:      TypeLine,
			})
		}
	}

	// An unterminated block runs to the end of the file.
	if inBlock {
		comments = append(comments, CommentBlock{
			Text:      strings.TrimSpace(blockContent.String()),
			StartLine: blockStartLine,
			EndLine:   len(lines),
			Type:      blockType,
		})
	}

	return mergeConsecutiveComments(comments)
}

func mergeConsecutiveComments(comments []CommentBlock) []CommentBlock {
	if len(comments) <= 1 {
		return comments
	}

	var merged []CommentBlock
	i := 0

	for i < len(comments) {
		current := comments[i]
		// Single-line /* */ blocks are never merged.
		if current.StartLine != current.EndLine || strings.HasPrefix(strings.TrimSpace(current.Text), "/*") {
			merged = append(merged, current)
			i++
			continue
		}

		var textBuilder strings.Builder
		textBuilder.WriteString(current.Text)
		endLine := current.EndLine

		j := i + 1
		for j < len(comments) {
			next := comments[j]
			if next.Type != current.Type || next.StartLine != endLine+1 || strings.HasPrefix(next.Text, "/*") {
				break
			}
			textBuilder.WriteString("\n")
			textBuilder.WriteString(next.Text)
			endLine = next.EndLine
			j++
		}

		merged = append(merged, CommentBlock{
			Text:      textBuilder.String(),
			StartLine: current.StartLine,
			EndLine:   endLine,
			Type:      current.Type,
		})
		i = j
	}

	return merged
}

// CommentIndex answers position queries about the comments of one file.
type CommentIndex struct {
	lines    []string
	patterns languageCommentPatterns
	blocks   []CommentBlock
	byEnd    map[int]int
}

// Index extracts the comments of lines once for repeated lookups. Line
// numbers are 1-based.
func (e *CommentExtractor) Index(lines []string, lang string) *CommentIndex {
	patterns := e.lookup(lang)
	blocks := e.extractLines(lines, patterns)
	ix := &CommentIndex{
		lines:    lines,
		patterns: patterns,
		blocks:   blocks,
		byEnd:    make(map[int]int, len(blocks)),
	}
	for i, b := range blocks {
		ix.byEnd[b.EndLine] = i
	}
	return ix
}

// Blocks returns every comment block.
func (ix *CommentIndex) Blocks() []CommentBlock {
	return ix.blocks
}

// InComment reports whether line lies inside a comment.
func (ix *CommentIndex) InComment(line int) bool {
	i := sort.Search(len(ix.blocks), func(i int) bool { return ix.blocks[i].EndLine >= line })
	return i < len(ix.blocks) && ix.blocks[i].StartLine <= line
}

// Preceding returns the comment directly above line, looking past
// annotation lines.
func (ix *CommentIndex) Preceding(line int) (CommentBlock, bool) {
	for l := line - 1; l >= 1; l-- {
		if i, ok := ix.byEnd[l]; ok {
			return ix.blocks[i], true
		}
		if ix.patterns.annotation == nil || l > len(ix.lines) || !ix.patterns.annotation.MatchString(ix.lines[l-1]) {
			return CommentBlock{}, false
		}
	}
	return CommentBlock{}, false
}

// Documented reports whether a doc comment precedes line.
func (ix *CommentIndex) Documented(line int) bool {
	b, ok := ix.Preceding(line)
	return ok && b.Type == TypeDoc
}
