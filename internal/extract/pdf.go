package extract

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	rpdf "rsc.io/pdf"
)

// PDF concatenates the text runs of every page, starting a new line whenever
// the baseline moves. rsc.io/pdf panics on some malformed files, so panics are
// returned as errors.
func PDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf: malformed document: %v", r)
		}
	}()

	doc, err := rpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}

	var lines []string
	for i := 1; i <= doc.NumPage(); i++ {
		p := doc.Page(i)
		if p.V.IsNull() {
			continue
		}
		lines = append(lines, pageLines(p.Content().Text)...)
	}
	return strings.Join(lines, "\n"), nil
}

func pageLines(runs []rpdf.Text) []string {
	var out []string
	var cur strings.Builder
	lastY := math.NaN()
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for _, r := range runs {
		if !math.IsNaN(lastY) && math.Abs(r.Y-lastY) > 1 {
			flush()
		}
		cur.WriteString(r.S)
		lastY = r.Y
	}
	flush()
	return out
}
