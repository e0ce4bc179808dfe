// Package pipeline drives the per-document quote highlighting run:
// extract the quote payload, locate and paint every quote, then write
// the annotated PDF, the markdown summary and the quotes JSON.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/paperflux/paperflux/internal/config"
	"github.com/paperflux/paperflux/internal/match"
	"github.com/paperflux/paperflux/internal/pdfdoc"
	"github.com/paperflux/paperflux/internal/quote"
	"github.com/paperflux/paperflux/internal/report"
)

// notePoint is where the key-takeaways sticky note lands on the first
// page, offset from the top-left corner in points.
var notePoint = match.Point{X: 72, Y: 72}

// recordingPainter satisfies match.Highlighter without touching the
// document, so dry runs exercise the same matching path.
type recordingPainter struct{}

func (recordingPainter) AddHighlight(int, match.Rect, match.Color) error { return nil }

// Options configures a pipeline run.
type Options struct {
	Config    *config.Config
	Logger    *zap.Logger
	OutputDir string

	// DryRun locates and counts quotes without writing any output
	// files.
	DryRun bool

	// Jobs bounds the number of documents processed concurrently by
	// Batch. Values below 1 mean serial processing.
	Jobs int
}

// Result summarizes one processed document.
type Result struct {
	DocPath    string
	Annotated  string
	Summary    string
	QuotesJSON string

	// Found counts confidently located quote instances; Highlights
	// additionally includes marks painted by the shortened fallback
	// search.
	Found      int
	Highlights int
	Missing    []string
}

// Run processes a single document end to end.
func Run(ctx context.Context, docPath string, source quote.Source, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("doc", filepath.Base(docPath)))

	payload, err := source.Extract(ctx, docPath)
	if err != nil {
		return Result{}, fmt.Errorf("extracting quotes for %s: %w", docPath, err)
	}

	if opts.DryRun {
		return dryRun(docPath, payload, opts, log)
	}

	doc, err := pdfdoc.Open(docPath)
	if err != nil {
		return Result{}, err
	}
	defer doc.Close()

	res := Result{DocPath: docPath}
	if note := strings.TrimSpace(payload.KeyTakeaways); note != "" && doc.NumPages() > 0 {
		if err := doc.AddNote(0, notePoint, note); err != nil {
			log.Warn("placing key-takeaways note failed", zap.Error(err))
		}
	}

	paintAll(doc, doc, &payload, opts, log, &res)

	annotated, err := report.OutputPath(docPath, "_annotated.pdf", opts.OutputDir)
	if err != nil {
		return res, err
	}
	if err := doc.Save(annotated); err != nil {
		return res, fmt.Errorf("saving annotated copy of %s: %w", docPath, err)
	}
	res.Annotated = annotated

	if err := writeReports(docPath, payload, opts, &res); err != nil {
		return res, err
	}

	log.Info("document processed",
		zap.Int("found", res.Found),
		zap.Int("highlights", res.Highlights),
		zap.Int("missing", len(res.Missing)))
	return res, nil
}

// dryRun locates quotes through the read-only scan backend and a
// recording painter; nothing is written.
func dryRun(docPath string, payload quote.Payload, opts Options, log *zap.Logger) (Result, error) {
	doc, err := pdfdoc.OpenScan(docPath)
	if err != nil {
		return Result{}, err
	}

	res := Result{DocPath: docPath}
	paintAll(doc, recordingPainter{}, &payload, opts, log, &res)
	log.Info("dry run complete",
		zap.Int("found", res.Found),
		zap.Int("highlights", res.Highlights),
		zap.Int("missing", len(res.Missing)))
	return res, nil
}

// paintAll walks the configured categories in order and paints every
// quote, writing the resolved page numbers back into the payload so
// the summary and JSON reflect where quotes were actually found.
func paintAll(doc match.Document, painter match.Highlighter, payload *quote.Payload, opts Options, log *zap.Logger, res *Result) {
	engine := match.NewEngine(doc, painter, match.Options{
		PerLine: opts.Config.Matching.PerLine,
		Logger:  log,
	})

	for _, d := range payload.Quotes.Dropped {
		log.Warn("skipping malformed quote entry",
			zap.String("category", d.Category),
			zap.String("value", d.Value))
	}

	for _, cat := range opts.Config.Categories {
		payload.Quotes.EnsureCategory(cat.Name)
		color, ok := opts.Config.Color(cat.Name)
		if !ok {
			log.Warn("no highlight color for category, skipping", zap.String("category", cat.Name))
			continue
		}

		items := payload.Quotes.Items[cat.Name]
		for i := range items {
			item := &items[i]
			outcome := engine.PaintQuote(item.Text, item.Pages, color)
			res.Found += outcome.Found
			res.Highlights += outcome.Highlights
			if len(outcome.Pages) > 0 {
				item.Pages = outcome.PageNumbers()
			}
			if outcome.Found == 0 {
				res.Missing = append(res.Missing, item.Text)
			}
		}
	}
}

// writeReports saves the markdown summary and the quotes JSON next to
// the annotated PDF.
func writeReports(docPath string, payload quote.Payload, opts Options, res *Result) error {
	stem := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	md := report.BuildMarkdown(stem, payload.KeyTakeaways, payload.Quotes)

	summary, err := report.SaveMarkdown(docPath, md, opts.OutputDir)
	if err != nil {
		return fmt.Errorf("saving summary for %s: %w", docPath, err)
	}
	res.Summary = summary

	quotesPath, err := report.SaveQuotesJSON(docPath, payload, opts.OutputDir)
	if err != nil {
		return fmt.Errorf("saving quotes for %s: %w", docPath, err)
	}
	res.QuotesJSON = quotesPath
	return nil
}

// Batch processes documents concurrently, bounded by Options.Jobs. A
// failed document does not cancel the others; the first error is
// returned after all documents finish.
func Batch(ctx context.Context, docPaths []string, source quote.Source, opts Options) ([]Result, error) {
	results := make([]Result, len(docPaths))

	g, ctx := errgroup.WithContext(ctx)
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	var firstErr error
	errs := make(chan error, len(docPaths))
	for i, path := range docPaths {
		i, path := i, path
		g.Go(func() error {
			res, err := Run(ctx, path, source, opts)
			results[i] = res
			if err != nil {
				if opts.Logger != nil {
					opts.Logger.Error("document failed", zap.String("doc", path), zap.Error(err))
				}
				errs <- err
			}
			return nil
		})
	}
	g.Wait()
	close(errs)
	for err := range errs {
		if firstErr == nil {
			firstErr = err
		}
	}
	return results, firstErr
}
