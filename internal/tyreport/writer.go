// Package tyreport writes a tyrisk.ReportContext to disk in the output
// directory layout. It owns no rendering logic: a Renderer supplies the
// actual bytes per format, this package only decides where those bytes
// land.
package tyreport

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cpsit/tycore/internal/tyrisk"
)

// Format is one of the three supported report output formats.
type Format string

// Recognized formats.
const (
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// supportsFindingsDetail reports whether a format gets a findings-detail/
// subdirectory (html and markdown only; JSON embeds detail
// data inline in the per-extension file instead).
func supportsFindingsDetail(f Format) bool {
	return f == FormatHTML || f == FormatMarkdown
}

// Renderer turns a ReportContext into the bytes for one report file.
// Concrete renderers (HTML templates, Markdown, JSON) are supplied by
// the caller; tyreport only calls through this interface and writes
// what it returns.
type Renderer interface {
	RenderMain(ctx *tyrisk.ReportContext, format Format) ([]byte, error)
	RenderExtension(ctx *tyrisk.ReportContext, ext tyrisk.ExtensionReport, format Format) ([]byte, error)
	RenderFindingsDetail(ctx *tyrisk.ReportContext, ext tyrisk.ExtensionReport, format Format) ([]byte, error)
	// HasFindingsDetail reports whether ext has detailed-findings data
	// worth a dedicated detail page; when false, no detail file is written.
	HasFindingsDetail(ext tyrisk.ExtensionReport) bool
}

func extension(format Format) string {
	if format == FormatJSON {
		return "json"
	}
	if format == FormatMarkdown {
		return "md"
	}
	return "html"
}

// Write renders ctx through renderer for every format in formats and
// writes the resulting files under outputDir, following the layout:
//
//	<outputDir>/<format>/main.<ext>
//	<outputDir>/<format>/extensions/<key>.<ext>
//	<outputDir>/<format>/findings-detail/<key>.<ext>  (html/markdown only)
func Write(outputDir string, formats []Format, ctx *tyrisk.ReportContext, renderer Renderer) error {
	for _, format := range formats {
		if err := writeFormat(outputDir, format, ctx, renderer); err != nil {
			return fmt.Errorf("writing %s report: %w", format, err)
		}
	}
	return nil
}

func writeFormat(outputDir string, format Format, ctx *tyrisk.ReportContext, renderer Renderer) error {
	formatDir := filepath.Join(outputDir, string(format))
	extensionsDir := filepath.Join(formatDir, "extensions")
	if err := os.MkdirAll(extensionsDir, 0o755); err != nil {
		return err
	}

	mainBytes, err := renderer.RenderMain(ctx, format)
	if err != nil {
		return fmt.Errorf("render main: %w", err)
	}
	mainPath := filepath.Join(formatDir, "main."+extension(format))
	if err := os.WriteFile(mainPath, mainBytes, 0o644); err != nil {
		return err
	}

	var detailDir string
	if supportsFindingsDetail(format) {
		detailDir = filepath.Join(formatDir, "findings-detail")
	}

	for _, ext := range ctx.Extensions {
		extBytes, err := renderer.RenderExtension(ctx, ext, format)
		if err != nil {
			return fmt.Errorf("render extension %s: %w", ext.Key, err)
		}
		extPath := filepath.Join(extensionsDir, ext.Key+"."+extension(format))
		if err := os.WriteFile(extPath, extBytes, 0o644); err != nil {
			return err
		}

		if detailDir == "" || !renderer.HasFindingsDetail(ext) {
			continue
		}
		if err := os.MkdirAll(detailDir, 0o755); err != nil {
			return err
		}
		detailBytes, err := renderer.RenderFindingsDetail(ctx, ext, format)
		if err != nil {
			return fmt.Errorf("render findings detail %s: %w", ext.Key, err)
		}
		detailPath := filepath.Join(detailDir, ext.Key+"."+extension(format))
		if err := os.WriteFile(detailPath, detailBytes, 0o644); err != nil {
			return err
		}
	}

	return nil
}
