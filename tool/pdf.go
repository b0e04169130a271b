package tool

import (
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFPageCount reads the page count of a PDF for the preview header.
func PDFPageCount(rs io.ReadSeeker) (int, error) {
	count, err := api.PageCount(rs, model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("failed to read pdf: %w", err)
	}
	return count, nil
}
