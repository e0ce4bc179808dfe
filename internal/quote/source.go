package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Payload is the reusable extraction result for one document: the
// key-takeaways note and the categorized quotes.
type Payload struct {
	KeyTakeaways string `json:"key_takeaways"`
	Quotes       Set    `json:"quotes"`
}

// Source produces the extraction payload for a document. The LLM-based
// extractor lives behind this interface outside this repository; the
// shipped implementation replays a previously saved payload file.
type Source interface {
	Extract(ctx context.Context, docPath string) (Payload, error)
}

// FileSource replays a quotes JSON payload saved by an earlier run,
// letting documents be re-annotated without re-running extraction.
type FileSource struct {
	Path string
}

// Extract reads and decodes the payload file. The docPath argument is
// ignored; a file source always serves its configured payload.
func (f FileSource) Extract(_ context.Context, _ string) (Payload, error) {
	return readPayload(f.Path)
}

// SiblingSource loads each document's payload from the
// `<stem>_quotes.json` file next to it, the file an earlier annotation
// run writes.
type SiblingSource struct{}

// Extract reads the sibling payload of docPath.
func (SiblingSource) Extract(_ context.Context, docPath string) (Payload, error) {
	ext := filepath.Ext(docPath)
	return readPayload(strings.TrimSuffix(docPath, ext) + "_quotes.json")
}

func readPayload(path string) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("reading quotes file: %w", err)
	}
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Payload{}, fmt.Errorf("decoding quotes file %s: %w", path, err)
	}
	return payload, nil
}
