// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/clause-classifier/internal/container"
)

// PDFTextConverter pipes PDFs through a pdftotext container image. The
// image is expected to run pdftotext as its entrypoint.
type PDFTextConverter struct {
	runtime container.Runtime
	image   string
}

// NewPDFTextConverter verifies that image exists in rt before returning.
func NewPDFTextConverter(ctx context.Context, rt container.Runtime, image string) (*PDFTextConverter, error) {
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("pdftotext image not available in %s: %w", rt.Name(), err)
	}
	return &PDFTextConverter{runtime: rt, image: image}, nil
}

// Convert reads the PDF at path and returns its text in reading order.
func (p *PDFTextConverter) Convert(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := p.runtime.Run(ctx, p.image, []string{"-enc", "UTF-8", "-", "-"}, f, &out); err != nil {
		return "", fmt.Errorf("converting %s: %w", path, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("pdftotext produced empty output for %s", path)
	}
	return out.String(), nil
}
