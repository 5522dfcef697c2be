package export

import (
	"testing"

	"github.com/kunkun/tpsgen/internal/ui"
)

func TestPrintConsoleSummaryDoesNotPanic(t *testing.T) {
	u := ui.New()
	u.SetNoColor(true)
	// PrintConsoleSummary writes to stdout; this test only asserts it
	// builds the KV list and renders without panicking on a populated result.
	PrintConsoleSummary(u, sampleResult())
}
