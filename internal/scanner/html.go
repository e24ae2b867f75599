package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docnav/internal/outline"
	"golang.org/x/net/html"
)

// HTML scans h1..h6 elements with the tokenizer so every heading keeps its
// byte offset in the source. The id attribute becomes the ExternalID.
type HTML struct{}

func (s *HTML) Scan(ctx context.Context, src []byte) (Result, error) {
	lines := outline.NewLines(string(src))
	res := Result{Bounds: lines}

	z := html.NewTokenizer(bytes.NewReader(src))
	offset := 0

	var (
		open    *outline.RawEntry
		openTag string
		title   strings.Builder
	)
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		tt := z.Next()
		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return res, fmt.Errorf("tokenize html: %w", err)
			}
			return res, nil

		case html.StartTagToken:
			name, hasAttr := z.TagName()
			level := headingLevel(string(name))
			if level == 0 || open != nil {
				continue
			}
			e := outline.RawEntry{RawLevel: level, Start: lines.AtByte(start)}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "id" {
					e.ExternalID = string(val)
				}
			}
			open, openTag = &e, string(name)
			title.Reset()

		case html.TextToken:
			if open != nil {
				title.Write(z.Text())
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if open == nil || string(name) != openTag {
				continue
			}
			open.Text = strings.Join(strings.Fields(title.String()), " ")
			open.End = lines.AtByte(offset)
			res.Entries = append(res.Entries, *open)
			open = nil
		}
	}
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}
