package scanner

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/docnav/internal/outline"
	pdflib "github.com/ledongthuc/pdf"
)

// PDF scans the document outline (bookmarks). Entries are addressed by
// their ordinal rather than a buffer row; the ExternalID is the dotted
// path of the bookmark, e.g. "1.2.1".
type PDF struct{}

func (s *PDF) Scan(ctx context.Context, src []byte) (res Result, err error) {
	res.Bounds = outline.Rows(0)
	defer func() {
		// The pdf reader panics on malformed cross-reference tables.
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return res, fmt.Errorf("read pdf: %w", err)
	}

	var walk func(items []pdflib.Outline, depth int, prefix string) error
	walk = func(items []pdflib.Outline, depth int, prefix string) error {
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			id := prefix + strconv.Itoa(i+1)
			row := len(res.Entries)
			res.Entries = append(res.Entries, outline.RawEntry{
				RawLevel:   depth,
				Text:       strings.TrimSpace(item.Title),
				Start:      outline.Position{Row: row},
				End:        outline.Position{Row: row},
				ExternalID: id,
			})
			if err := walk(item.Child, depth+1, id+"."); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(reader.Outline().Child, 1, ""); err != nil {
		return res, err
	}
	res.Bounds = outline.Rows(len(res.Entries))
	return res, nil
}
