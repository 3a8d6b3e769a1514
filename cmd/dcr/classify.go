package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/classify"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/config"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/ocr"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/parser"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/report"
)

func classifyCmd() *cobra.Command {
	var configFile string
	var out string
	var debug bool

	cmd := &cobra.Command{
		Use:   "classify <file>...",
		Short: "Classify documents and write <stem>_classified.json plus the enabled reports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			cfg, err := config.LoadWithFile(configFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			p, err := classify.NewPipeline(cfg.ClassifyOptions(), classify.Deps{Log: log})
			if err != nil {
				return err
			}

			opts := cfg.ParserOptions(nil)
			if needsOCR(args) {
				client, err := ocr.Open(cfg.OCRLanguage)
				if err != nil {
					log.Warn("image input without ocr", "error", err)
				} else {
					defer client.Close()
					opts.OCR = client
				}
			}

			failed := 0
			for _, path := range args {
				writer := cfg.ReportWriter(out)
				if writer.Dir == "" {
					writer.Dir = filepath.Dir(path)
				}
				written, err := classifyFile(path, p, opts, writer, cfg.ReportToggles())
				if err != nil {
					log.Error("classification failed", "file", path, "error", err)
					failed++
					continue
				}
				for _, w := range written {
					fmt.Fprintln(cmd.OutOrStdout(), w)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configFile, "config", os.Getenv("DCR_CONFIG_FILE"), "YAML configuration file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default: DCR_OUTPUT_DIR, else next to each input)")
	cmd.Flags().BoolVar(&debug, "debug", false, "log classifier traces")
	return cmd
}

// classifyFile parses, classifies and writes one document. It returns the
// paths written, the classified document first.
func classifyFile(path string, p *classify.Pipeline, opts parser.Options, w report.Writer, t report.Toggles) ([]string, error) {
	prs, err := parser.ForFile(path, opts)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := prs.Parse(bytes.NewReader(data), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	res := p.Run(doc)

	docPath, err := w.WriteDocument(doc)
	if err != nil {
		return nil, err
	}
	written := []string{docPath}
	if t.Any() {
		paths, err := w.Write(doc, res, t)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func needsOCR(paths []string) bool {
	for _, path := range paths {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
			return true
		}
	}
	return false
}
