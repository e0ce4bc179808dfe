package pdfdoc

import (
	"fmt"
	"os"
	"strings"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/core"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/paperflux/paperflux/internal/match"
	"github.com/paperflux/paperflux/internal/pagetext"
)

// highlightOpacity is the CA value applied to highlight annotations so
// underlying text stays readable.
const highlightOpacity = 0.5

// noteSize is the edge length of the sticky-note annotation icon box.
const noteSize = 24.0

// SetLicenseFromEnv installs the unipdf license key when the
// UNIDOC_LICENSE_KEY environment variable is set. Without a key unipdf
// runs in its unlicensed mode.
func SetLicenseFromEnv() error {
	key := os.Getenv("UNIDOC_LICENSE_KEY")
	if key == "" {
		return nil
	}
	company := os.Getenv("UNIDOC_COMPANY_NAME")
	if err := license.SetLicenseKey(key, company); err != nil {
		return fmt.Errorf("setting unipdf license key: %w", err)
	}
	return nil
}

// UniDocument is the full document backend: positioned-word reading,
// literal search, highlight and sticky-note annotation, and save.
type UniDocument struct {
	file     *os.File
	reader   *model.PdfReader
	numPages int
	pages    map[int]*model.PdfPage
	words    map[int]*pagetext.PageWords
}

var _ match.AnnotatableDocument = (*UniDocument)(nil)

// Open loads a PDF for annotation. Close must be called when done.
func Open(path string) (*UniDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	reader, err := model.NewPdfReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	numPages, err := reader.GetNumPages()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("page count of %s: %w", path, err)
	}
	return &UniDocument{
		file:     f,
		reader:   reader,
		numPages: numPages,
		pages:    make(map[int]*model.PdfPage),
		words:    make(map[int]*pagetext.PageWords),
	}, nil
}

// Close releases the underlying file handle.
func (d *UniDocument) Close() error {
	return d.file.Close()
}

// NumPages returns the page count.
func (d *UniDocument) NumPages() int {
	return d.numPages
}

func (d *UniDocument) page(page int) (*model.PdfPage, error) {
	if p, ok := d.pages[page]; ok {
		return p, nil
	}
	if page < 0 || page >= d.numPages {
		return nil, fmt.Errorf("page %d out of range", page)
	}
	p, err := d.reader.GetPage(page + 1)
	if err != nil {
		return nil, fmt.Errorf("getting page %d: %w", page+1, err)
	}
	d.pages[page] = p
	return p, nil
}

// Words returns the positioned words of a page in reading order,
// assembled from the extractor's character marks.
func (d *UniDocument) Words(page int) ([]match.Word, error) {
	pw, err := d.pageWords(page)
	if err != nil {
		return nil, err
	}
	return pw.Words(), nil
}

// SearchLiteral performs case-insensitive literal search over the
// page's assembled lines.
func (d *UniDocument) SearchLiteral(page int, text string) []match.Rect {
	pw, err := d.pageWords(page)
	if err != nil {
		return nil
	}
	return pw.SearchLiteral(text)
}

// TextInRect returns the text of the words inside a clip rectangle.
func (d *UniDocument) TextInRect(page int, r match.Rect) string {
	pw, err := d.pageWords(page)
	if err != nil {
		return ""
	}
	return pw.TextInRect(r)
}

func (d *UniDocument) pageWords(page int) (*pagetext.PageWords, error) {
	if pw, ok := d.words[page]; ok {
		return pw, nil
	}
	p, err := d.page(page)
	if err != nil {
		return nil, err
	}
	ex, err := extractor.New(p)
	if err != nil {
		return nil, fmt.Errorf("extractor for page %d: %w", page+1, err)
	}
	pageText, _, _, err := ex.ExtractPageText()
	if err != nil {
		return nil, fmt.Errorf("extracting page %d text: %w", page+1, err)
	}

	marks := pageText.Marks()
	chars := make([]pagetext.Char, 0, marks.Len())
	for _, mark := range marks.Elements() {
		if strings.TrimSpace(mark.Text) == "" {
			continue
		}
		fontSize := mark.FontSize
		if fontSize <= 0 {
			fontSize = mark.BBox.Ury - mark.BBox.Lly
		}
		chars = append(chars, pagetext.Char{
			X:        mark.BBox.Llx,
			Y:        mark.BBox.Lly,
			W:        mark.BBox.Urx - mark.BBox.Llx,
			FontSize: fontSize,
			S:        mark.Text,
		})
	}

	pw := pagetext.New(pagetext.AssembleWords(chars))
	d.words[page] = pw
	return pw, nil
}

// AddHighlight paints a highlight annotation with the given stroke
// color over a rectangle.
func (d *UniDocument) AddHighlight(page int, r match.Rect, color match.Color) error {
	p, err := d.page(page)
	if err != nil {
		return err
	}
	hl := model.NewPdfAnnotationHighlight()
	// Quad order: upper-left, upper-right, lower-left, lower-right.
	hl.QuadPoints = core.MakeArrayFromFloats([]float64{
		r.X0, r.Y1, r.X1, r.Y1,
		r.X0, r.Y0, r.X1, r.Y0,
	})
	hl.Rect = core.MakeArrayFromFloats([]float64{r.X0, r.Y0, r.X1, r.Y1})
	hl.C = core.MakeArrayFromFloats([]float64{color[0], color[1], color[2]})
	hl.CA = core.MakeFloat(highlightOpacity)
	p.AddAnnotation(hl.PdfAnnotation)
	return nil
}

// AddNote places a sticky-note annotation at an offset from the
// page's top-left corner.
func (d *UniDocument) AddNote(page int, at match.Point, text string) error {
	p, err := d.page(page)
	if err != nil {
		return err
	}
	mbox, err := p.GetMediaBox()
	if err != nil {
		return fmt.Errorf("media box of page %d: %w", page+1, err)
	}

	top := mbox.Ury
	note := model.NewPdfAnnotationText()
	note.Contents = core.MakeString(text)
	note.Rect = core.MakeArrayFromFloats([]float64{
		mbox.Llx + at.X, top - at.Y - noteSize,
		mbox.Llx + at.X + noteSize, top - at.Y,
	})
	note.Name = core.MakeName("Comment")
	p.AddAnnotation(note.PdfAnnotation)
	return nil
}

// Save serializes the document, with annotations, to path.
func (d *UniDocument) Save(path string) error {
	writer := model.NewPdfWriter()
	for i := 0; i < d.numPages; i++ {
		p, err := d.page(i)
		if err != nil {
			return err
		}
		if err := writer.AddPage(p); err != nil {
			return fmt.Errorf("adding page %d: %w", i+1, err)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()
	if err := writer.Write(out); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
