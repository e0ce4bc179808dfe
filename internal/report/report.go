// Package report writes the per-document summary artifacts: a markdown
// digest of the takeaways and quotes, and a JSON payload that can be
// replayed to re-annotate without re-running extraction.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/paperflux/paperflux/internal/quote"
)

// OutputPath derives a sibling output path for a document: same stem,
// new suffix, placed in outputDir when set (created if absent) or next
// to the document otherwise.
func OutputPath(docPath, suffix, outputDir string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	dir := filepath.Dir(docPath)
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
		dir = outputDir
	}
	return filepath.Join(dir, stem+suffix), nil
}

// BuildMarkdown renders the summary document: key takeaways, quote
// counts per category, and the exact quotations with their resolved
// page numbers.
func BuildMarkdown(stem, takeaways string, quotes quote.Set) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Summary for %s\n\n", stem)
	b.WriteString("## Key takeaways\n\n")
	b.WriteString(strings.TrimSpace(takeaways))
	b.WriteString("\n\n## Quote counts by category\n")

	if len(quotes.Order) == 0 {
		b.WriteString("- No quotes collected\n")
	}
	for _, category := range quotes.Order {
		n := len(quotes.Items[category])
		plural := "s"
		if n == 1 {
			plural = ""
		}
		fmt.Fprintf(&b, "- %s: %d quote%s\n", capitalize(category), n, plural)
	}

	b.WriteString("\n## Exact quotations by category\n")
	for _, category := range quotes.Order {
		fmt.Fprintf(&b, "\n### %s\n", capitalize(category))
		for _, item := range quotes.Items[category] {
			fmt.Fprintf(&b, "- %s%s\n", item.Text, pageSuffix(item.Pages))
		}
	}
	return b.String()
}

// pageSuffix formats resolved page numbers: " (p. 3)" for one page,
// " (pp. 3, 7)" for several, nothing when no pages are known.
func pageSuffix(pages []int) string {
	var unique []int
	seen := make(map[int]bool)
	for _, p := range pages {
		if p > 0 && !seen[p] {
			seen[p] = true
			unique = append(unique, p)
		}
	}
	switch len(unique) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf(" (p. %d)", unique[0])
	default:
		parts := make([]string, len(unique))
		for i, p := range unique {
			parts[i] = fmt.Sprintf("%d", p)
		}
		return fmt.Sprintf(" (pp. %s)", strings.Join(parts, ", "))
	}
}

// SaveMarkdown writes the summary markdown next to the document (or in
// outputDir) as <stem>_summary.md.
func SaveMarkdown(docPath, content, outputDir string) (string, error) {
	path, err := OutputPath(docPath, "_summary.md", outputDir)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing summary markdown: %w", err)
	}
	return path, nil
}

// SaveQuotesJSON writes the replayable payload as <stem>_quotes.json.
func SaveQuotesJSON(docPath string, payload quote.Payload, outputDir string) (string, error) {
	path, err := OutputPath(docPath, "_quotes.json", outputDir)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding quotes payload: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing quotes payload: %w", err)
	}
	return path, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
