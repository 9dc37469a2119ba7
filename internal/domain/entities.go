package domain

import "time"

type Document struct {
	ID      string
	Path    string
	ModTime time.Time
	Lang    string
}

// Declaration is a parsed declaration found while scanning a file.
type Declaration struct {
	ID         string   `json:"id"`
	DocID      string   `json:"doc_id"`
	Path       string   `json:"path"`
	Lang       string   `json:"lang"`
	Line       int      `json:"line"`
	EndLine    int      `json:"end_line"`
	Source     string   `json:"source"`
	Documented bool     `json:"documented"`
	Symbols    *Symbols `json:"symbols"`
}

type Stats struct {
	TotalDocs         int
	TotalDeclarations int
	Undocumented      int
}
