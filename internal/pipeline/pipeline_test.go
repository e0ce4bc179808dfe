package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/paperflux/paperflux/internal/config"
	"github.com/paperflux/paperflux/internal/match"
	"github.com/paperflux/paperflux/internal/pagetext"
	"github.com/paperflux/paperflux/internal/quote"
)

type memDoc struct {
	pages []*pagetext.PageWords
}

func (d *memDoc) NumPages() int { return len(d.pages) }

func (d *memDoc) Words(page int) ([]match.Word, error) {
	return d.pages[page].Words(), nil
}

func (d *memDoc) SearchLiteral(page int, text string) []match.Rect {
	return d.pages[page].SearchLiteral(text)
}

func (d *memDoc) TextInRect(page int, r match.Rect) string {
	return d.pages[page].TextInRect(r)
}

func lineAt(line int, texts ...string) []match.Word {
	words := make([]match.Word, len(texts))
	x := 50.0
	for i, text := range texts {
		w := float64(len(text)) * 6
		words[i] = match.Word{
			Text: text,
			Rect: match.Rect{X0: x, Y0: float64(700 - 20*line), X1: x + w, Y1: float64(712 - 20*line)},
			Line: match.LineKey{Line: line},
		}
		x += w + 8
	}
	return words
}

func twoPageDoc() *memDoc {
	return &memDoc{pages: []*pagetext.PageWords{
		pagetext.New(lineAt(0, "the", "model", "generalizes", "across", "domains")),
		pagetext.New(lineAt(0, "measured", "on", "three", "public", "benchmarks")),
	}}
}

func testConfig() *config.Config {
	return &config.Config{
		Categories: []config.Category{
			{Name: "claims", Description: "Assertions."},
			{Name: "evidence", Description: "Support."},
			{Name: "uncolored", Description: "No color configured."},
		},
		Colors: map[string][]float64{
			"claims":   {0.2, 0.4, 1.0},
			"evidence": {0.0, 0.8, 0.3},
		},
	}
}

func TestPaintAllResolvesPagesAndCounts(t *testing.T) {
	payload := quote.Payload{KeyTakeaways: "It works."}
	payload.Quotes.Add("claims", quote.Item{Text: "the model generalizes across domains"})
	payload.Quotes.Add("evidence", quote.Item{Text: "measured on three public benchmarks", Pages: []int{1}})
	payload.Quotes.Add("evidence", quote.Item{Text: "this phrase appears nowhere at all"})
	payload.Quotes.Add("uncolored", quote.Item{Text: "never searched because no color exists"})

	var res Result
	paintAll(twoPageDoc(), recordingPainter{}, &payload, Options{Config: testConfig()}, zap.NewNop(), &res)

	assert.Equal(t, 2, res.Found)
	require.Len(t, res.Missing, 1)
	assert.Equal(t, "this phrase appears nowhere at all", res.Missing[0])

	// Resolved pages replace the hints for the summary.
	assert.Equal(t, []int{1}, payload.Quotes.Items["claims"][0].Pages)
	assert.Equal(t, []int{2}, payload.Quotes.Items["evidence"][0].Pages)
	// Uncolored categories keep their items untouched.
	assert.Empty(t, payload.Quotes.Items["uncolored"][0].Pages)
}

func TestPaintAllWarnsOnDroppedEntries(t *testing.T) {
	payload := quote.Payload{}
	payload.Quotes.Dropped = []quote.Dropped{
		{Category: "claims", Value: "42"},
		{Category: "evidence", Value: "   "},
	}

	core, observed := observer.New(zapcore.WarnLevel)
	var res Result
	paintAll(twoPageDoc(), recordingPainter{}, &payload, Options{Config: testConfig()}, zap.New(core), &res)

	warns := observed.FilterMessage("skipping malformed quote entry").All()
	require.Len(t, warns, 2)
	assert.Equal(t, "claims", warns[0].ContextMap()["category"])
	assert.Equal(t, "42", warns[0].ContextMap()["value"])
}

func TestPaintAllRegistersEmptyCategories(t *testing.T) {
	payload := quote.Payload{}

	var res Result
	paintAll(twoPageDoc(), recordingPainter{}, &payload, Options{Config: testConfig()}, zap.NewNop(), &res)

	assert.Equal(t, []string{"claims", "evidence", "uncolored"}, payload.Quotes.Order)
	assert.Zero(t, res.Found)
}

func TestWriteReports(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "paper.pdf")

	payload := quote.Payload{KeyTakeaways: "It works."}
	payload.Quotes.Add("claims", quote.Item{Text: "the model generalizes", Pages: []int{1}})

	var res Result
	err := writeReports(doc, payload, Options{}, &res)
	require.NoError(t, err)

	md, err := os.ReadFile(res.Summary)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "# Summary for paper\n"))
	assert.Contains(t, string(md), "- Claims: 1 quote\n")

	js, err := os.ReadFile(res.QuotesJSON)
	require.NoError(t, err)
	assert.Contains(t, string(js), `"key_takeaways": "It works."`)
}

func TestWriteReportsOutputDir(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	doc := filepath.Join(srcDir, "paper.pdf")

	var res Result
	err := writeReports(doc, quote.Payload{KeyTakeaways: "x"}, Options{OutputDir: outDir}, &res)
	require.NoError(t, err)
	assert.Equal(t, outDir, filepath.Dir(res.Summary))
	assert.Equal(t, outDir, filepath.Dir(res.QuotesJSON))
}
