// Package pdfdoc adapts real PDF libraries to the document capability
// the matching engine consumes. Two backends exist: UniDocument reads,
// annotates and saves through unipdf; ScanDocument is a lightweight
// read-only backend used by the dry-run path.
package pdfdoc

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/paperflux/paperflux/internal/match"
	"github.com/paperflux/paperflux/internal/pagetext"
)

// ScanDocument exposes a PDF's positioned words and literal search
// without any annotation capability.
type ScanDocument struct {
	reader *pdf.Reader
	pages  map[int]*pagetext.PageWords
}

var _ match.Document = (*ScanDocument)(nil)

// OpenScan reads a PDF into memory and prepares it for word
// extraction.
func OpenScan(path string) (*ScanDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &ScanDocument{reader: reader, pages: make(map[int]*pagetext.PageWords)}, nil
}

// NumPages returns the page count.
func (d *ScanDocument) NumPages() int {
	return d.reader.NumPage()
}

// Words returns the positioned words of a page in reading order.
func (d *ScanDocument) Words(page int) ([]match.Word, error) {
	pw, err := d.pageWords(page)
	if err != nil {
		return nil, err
	}
	return pw.Words(), nil
}

// SearchLiteral performs case-insensitive literal search over the
// page's assembled lines.
func (d *ScanDocument) SearchLiteral(page int, text string) []match.Rect {
	pw, err := d.pageWords(page)
	if err != nil {
		return nil
	}
	return pw.SearchLiteral(text)
}

// TextInRect returns the text of the words inside a clip rectangle.
func (d *ScanDocument) TextInRect(page int, r match.Rect) string {
	pw, err := d.pageWords(page)
	if err != nil {
		return ""
	}
	return pw.TextInRect(r)
}

func (d *ScanDocument) pageWords(page int) (*pagetext.PageWords, error) {
	if pw, ok := d.pages[page]; ok {
		return pw, nil
	}
	if page < 0 || page >= d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range", page)
	}

	p := d.reader.Page(page + 1)
	var chars []pagetext.Char
	if !p.V.IsNull() {
		content := p.Content()
		chars = make([]pagetext.Char, 0, len(content.Text))
		for _, t := range content.Text {
			chars = append(chars, pagetext.Char{
				X:        t.X,
				Y:        t.Y,
				W:        t.W,
				FontSize: t.FontSize,
				S:        t.S,
			})
		}
	}

	pw := pagetext.New(pagetext.AssembleWords(chars))
	d.pages[page] = pw
	return pw, nil
}
