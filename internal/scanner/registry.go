package scanner

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Options carries per-format switches.
type Options struct {
	TasklistUseHeaders bool
	SofistikInBlock    bool
}

// formats maps format identifiers, including editor grammar scope names,
// to a canonical format name.
var formats = map[string]string{
	"markdown":              "markdown",
	"md":                    "markdown",
	"source.gfm":            "markdown",
	"text.md":               "markdown",
	"source.weave.md":       "markdown",
	"commonmark":            "commonmark",
	"rest":                  "rest",
	"rst":                   "rest",
	"restructuredtext":      "rest",
	"text.restructuredtext": "rest",
	"asciidoc":              "asciidoc",
	"adoc":                  "asciidoc",
	"source.asciidoc":       "asciidoc",
	"bibtex":                "bibtex",
	"bib":                   "bibtex",
	"text.bibtex":           "bibtex",
	"sinumerik":             "sinumerik",
	"source.sinumerik":      "sinumerik",
	"tasklist":              "tasklist",
	"text.tasklist":         "tasklist",
	"sofistik":              "sofistik",
	"source.sofistik":       "sofistik",
	"html":                  "html",
	"text.html.basic":       "html",
	"docx":                  "docx",
	"pdf":                   "pdf",
	"csv":                   "csv",
}

// extensions maps file extensions to a canonical format name.
var extensions = map[string]string{
	".md":        "markdown",
	".markdown":  "markdown",
	".rst":       "rest",
	".adoc":      "asciidoc",
	".asciidoc":  "asciidoc",
	".bib":       "bibtex",
	".mpf":       "sinumerik",
	".spf":       "sinumerik",
	".todo":      "tasklist",
	".taskpaper": "tasklist",
	".dat":       "sofistik",
	".html":      "html",
	".htm":       "html",
	".docx":      "docx",
	".pdf":       "pdf",
	".csv":       "csv",
}

// Canonical resolves a format identifier or grammar scope name to its
// canonical format name.
func Canonical(id string) (string, bool) {
	f, ok := formats[strings.ToLower(strings.TrimSpace(id))]
	return f, ok
}

// FormatForFile returns the canonical format for a filename's extension.
func FormatForFile(filename string) (string, bool) {
	f, ok := extensions[strings.ToLower(filepath.Ext(filename))]
	return f, ok
}

// Formats returns the canonical format names, sorted.
func Formats() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// ForFormat returns a scanner for a format identifier. Every call returns a
// fresh scanner; adapters keep per-scan state and must not be shared
// between concurrent scans.
func ForFormat(id string, opts Options) (Scanner, error) {
	f, ok := Canonical(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, id)
	}
	switch f {
	case "markdown":
		return &patternScanner{adapter: &Markdown{}}, nil
	case "commonmark":
		return &CommonMark{}, nil
	case "rest":
		return &patternScanner{adapter: &ReST{}}, nil
	case "asciidoc":
		return &patternScanner{adapter: &AsciiDoc{}}, nil
	case "bibtex":
		return &patternScanner{adapter: &BibTeX{}}, nil
	case "sinumerik":
		return &patternScanner{adapter: &Sinumerik{}}, nil
	case "tasklist":
		return &patternScanner{adapter: &Tasklist{UseHeaders: opts.TasklistUseHeaders}}, nil
	case "sofistik":
		return &patternScanner{adapter: &Sofistik{InBlock: opts.SofistikInBlock}}, nil
	case "html":
		return &HTML{}, nil
	case "docx":
		return &DOCX{}, nil
	case "pdf":
		return &PDF{}, nil
	case "csv":
		return &CSV{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, id)
}

// ForFile returns the appropriate scanner for a filename.
func ForFile(filename string, opts Options) (Scanner, error) {
	f, ok := FormatForFile(filename)
	if !ok {
		return nil, fmt.Errorf("%w: extension %q", ErrUnsupported, filepath.Ext(filename))
	}
	return ForFormat(f, opts)
}

// Resolve picks the format from an explicit identifier when given,
// falling back to the filename extension.
func Resolve(format, filename string) (string, error) {
	if format != "" {
		if f, ok := Canonical(format); ok {
			return f, nil
		}
	}
	if f, ok := FormatForFile(filename); ok {
		return f, nil
	}
	if format == "" {
		format = filepath.Ext(filename)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, format)
}
