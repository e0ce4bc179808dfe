package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "paperflux [flags] <pdf|glob>...",
	Short: "Paperflux - highlight extracted quotes in PDF documents",
	Long: `Paperflux locates extracted quotes in PDF documents and paints
color-coded highlight annotations over them.

For each input document it reads a quotes payload (the <stem>_quotes.json
file next to the document, or the file given with --quotes-file), finds
every quote on its pages, and writes:

  <stem>_annotated.pdf   the document with highlights and a key-takeaways note
  <stem>_summary.md      key takeaways and per-category quote counts
  <stem>_quotes.json     the payload with resolved page numbers

Inputs may be paths or glob patterns (** is supported).`,
	Version: version,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runAnnotate,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (built-in defaults when omitted)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for output files (next to each document when omitted)")
	rootCmd.Flags().StringVarP(&quotesFile, "quotes-file", "q", "", "Quotes payload file applied to every input document")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Locate and count quotes without writing any files")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "Number of documents processed in parallel")
}
