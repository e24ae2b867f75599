package scanner

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/docnav/internal/outline"
	"github.com/fumiama/go-docx"
)

// DOCX scans paragraphs with HeadingN styles. Rows are paragraph indexes
// and each entry's ExternalID is "p<index>".
type DOCX struct{}

func (s *DOCX) Scan(ctx context.Context, src []byte) (Result, error) {
	doc, err := docx.Parse(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return Result{Bounds: outline.Rows(0)}, fmt.Errorf("parse docx: %w", err)
	}

	var res Result
	row := 0
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		level := docxHeadingLevel(para)
		text := docxParagraphText(para)
		if level > 0 && text != "" {
			res.Entries = append(res.Entries, outline.RawEntry{
				RawLevel:   level,
				Text:       text,
				Start:      outline.Position{Row: row},
				End:        outline.Position{Row: row},
				ExternalID: "p" + strconv.Itoa(row),
			})
		}
		row++
	}
	res.Bounds = outline.Rows(row)
	return res, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	level, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
	if err != nil || level < 1 || level > 9 {
		return 0
	}
	return level
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
