package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativeConverter reads the text layer in-process with ledongthuc/pdf.
// Text runs are regrouped into rows so labels and their values stay on one
// line, as they appear on the printed policy.
type NativeConverter struct{}

// NewNativeConverter creates a converter that needs no external binaries
func NewNativeConverter() *NativeConverter {
	return &NativeConverter{}
}

// Name returns the backend name
func (c *NativeConverter) Name() string { return BackendNative }

// Text extracts the text of every page, one line per text row
func (c *NativeConverter) Text(ctx context.Context, data []byte) (text string, err error) {
	if err := CheckSignature(data); err != nil {
		return "", err
	}

	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", i, err)
		}
		for _, row := range rows {
			line := joinRow(row.Content)
			if strings.TrimSpace(line) == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// gapRatio is the horizontal gap, relative to the font size, above which two
// neighbouring text runs are treated as separate words.
const gapRatio = 0.15

// joinRow concatenates the runs of one row ordered by X, inserting a space
// where the gap between runs looks like a word break.
func joinRow(runs []pdf.Text) string {
	var b strings.Builder
	var prevEnd float64
	for i, r := range runs {
		if i > 0 && needsSpace(b.String(), r, prevEnd) {
			b.WriteByte(' ')
		}
		b.WriteString(r.S)
		prevEnd = r.X + r.W
	}
	return b.String()
}

func needsSpace(written string, next pdf.Text, prevEnd float64) bool {
	if strings.HasSuffix(written, " ") || strings.HasPrefix(next.S, " ") {
		return false
	}
	size := next.FontSize
	if size <= 0 {
		size = 1
	}
	return next.X-prevEnd > gapRatio*size
}
