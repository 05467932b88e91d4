// Command policy-extract runs the field extractor on one local file and
// prints the record as JSON.
//
//	policy-extract policy.pdf
//	policy-extract -text policy.txt
//	policy-extract -summary policy.pdf
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/polisdoc/polisdoc-backend/internal/policy/extractor"
	"github.com/polisdoc/polisdoc-backend/internal/policy/pdftext"
	"github.com/polisdoc/polisdoc-backend/pkg/config"
	"github.com/polisdoc/polisdoc-backend/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("policy-extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asText := fs.Bool("text", false, "treat the input as already extracted text")
	summaryOnly := fs.Bool("summary", false, "print only the price|ipn|policy_number line")
	backend := fs.String("backend", "", "pdf backend: native or pdftotext (default from config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: policy-extract [-text] [-summary] [-backend name] <file>")
		return 2
	}

	cfg, err := config.Load("policy-extract")
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	log := logger.NewWithWriter(stderr, "policy-extract")
	log.SetLevel(cfg.Log.Level)

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		log.Error().Err(err).Msg("failed to read input")
		return 1
	}

	text := string(data)
	if !*asText {
		if *backend != "" {
			cfg.PDF.Backend = *backend
		}
		converter, err := pdftext.New(pdftext.Options{
			Backend:       cfg.PDF.Backend,
			PdftotextPath: cfg.PDF.PdftotextPath,
			Timeout:       cfg.PDF.Timeout,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to create pdf converter")
			return 1
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.PDF.Timeout)
		defer cancel()
		text, err = converter.Text(ctx, data)
		pdftext.ZeroBytes(data)
		if err != nil {
			log.Error().Err(err).Str("backend", converter.Name()).Msg("pdf conversion failed")
			return 1
		}
	}

	start := time.Now()
	engine := extractor.NewEngine(extractor.WithMaxTextBytes(cfg.Extraction.MaxTextBytes))
	record, class := engine.ExtractWithClassification(text)
	log.Debug().
		Str("variant", string(class.Variant)).
		Str("marker", class.Marker).
		Dur("duration", time.Since(start)).
		Msg("extraction completed")

	if *summaryOnly {
		fmt.Fprintln(stdout, record.Summary())
		return 0
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		log.Error().Err(err).Msg("failed to write output")
		return 1
	}
	return 0
}
