package tool

import (
	"fmt"

	"github.com/docker/go-units"

	"github.com/moyoez/upload-widget-go/types"
)

// ParseMaxFileSize parses a human size such as "100MB" (decimal units, 100MB = 100000000).
func ParseMaxFileSize(s string) (int64, error) {
	size, err := units.FromHumanSize(s)
	if err != nil {
		return 0, fmt.Errorf("invalid maxFileSize: %w", err)
	}
	if size <= 0 {
		return 0, fmt.Errorf("maxFileSize must be positive")
	}
	return size, nil
}

// FormatSize renders a byte count for display.
func FormatSize(n int64) string {
	return units.HumanSize(float64(n))
}

// Capacity builds the "<selected> / <max>" header indicator.
func Capacity(total, max int64) types.CapacityView {
	view := types.CapacityView{
		Total:     total,
		Max:       max,
		Formatted: FormatSize(total) + " / " + FormatSize(max),
	}
	if max > 0 {
		view.Percent = float64(total) * 100 / float64(max)
	}
	return view
}
