// Package export renders a final package into shareable documents.
package export

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/copyforge/copyforge/internal/pipeline"
)

// Document renders pkg as a markdown document: final text first, then
// variants, extras, and the QA checklist.
func Document(pkg *pipeline.FinalPackage, title string) []byte {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	b.WriteString(pkg.Final)
	b.WriteString("\n")

	for _, style := range pipeline.VariantStyles {
		text, ok := pkg.Variants[style]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n## Variant: %s\n\n%s\n", style, text)
	}
	for _, style := range extraVariants(pkg) {
		fmt.Fprintf(&b, "\n## Variant: %s\n\n%s\n", style, pkg.Variants[style])
	}

	writeList(&b, "Headlines", pkg.Extras.Headlines)
	writeList(&b, "Subject lines", pkg.Extras.SubjectLines)
	writeList(&b, "Calls to action", pkg.Extras.CTAs)
	writeList(&b, "QA checklist", pkg.QAChecklist)

	if pkg.Meta.BestEffort {
		b.WriteString("\n## Remaining issues\n\n")
		fmt.Fprintf(&b, "Shipped best-effort after %d attempts, score %d.\n", pkg.Meta.Attempts, pkg.Meta.Score)
		for _, v := range pkg.Meta.Violations {
			fmt.Fprintf(&b, "- %s: %s\n", v.Kind, v.Details)
		}
	}
	return []byte(b.String())
}

// extraVariants returns variant keys outside the standard styles, sorted for
// stable output.
func extraVariants(pkg *pipeline.FinalPackage) []string {
	known := map[string]bool{}
	for _, style := range pipeline.VariantStyles {
		known[style] = true
	}
	var out []string
	for style := range pkg.Variants {
		if !known[style] {
			out = append(out, style)
		}
	}
	sort.Strings(out)
	return out
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

var renderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders pkg as a standalone HTML document.
func HTML(pkg *pipeline.FinalPackage, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := renderer.Convert(Document(pkg, title), &body); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n</head>\n<body>\n", html.EscapeString(title))
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}

// Uploader delivers a rendered document to external storage and returns a URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, mime string) (string, error)
}

// Result is the outcome of one export. URL is set when the upload succeeded;
// otherwise Inline carries the document itself.
type Result struct {
	URL    string
	Inline []byte
}

// Deliver uploads data through up. Upload failure is never fatal: the document
// comes back inline instead.
func Deliver(ctx context.Context, up Uploader, data []byte, mime string) Result {
	if up == nil {
		return Result{Inline: data}
	}
	url, err := up.Upload(ctx, data, mime)
	if err != nil {
		log.Warn().Err(err).Msg("upload failed, embedding document inline")
		return Result{Inline: data}
	}
	return Result{URL: url}
}
