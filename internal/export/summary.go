package export

import (
	"fmt"

	"github.com/kunkun/tpsgen/internal/result"
	"github.com/kunkun/tpsgen/internal/ui"
)

// PrintConsoleSummary renders the end-of-run summary box.
func PrintConsoleSummary(u *ui.UI, r result.TestResult) {
	items := []ui.KV{
		{Key: "Duration", Value: fmt.Sprintf("%.2fs", r.DurationSeconds())},
		{Key: "Total", Value: FormatInt64(r.Counters.Total)},
		{Key: "Success", Value: FormatInt64(r.Counters.Success)},
		{Key: "Failure", Value: FormatInt64(r.Counters.Failure)},
		{Key: "Success Rate", Value: fmt.Sprintf("%.2f%%", r.SuccessRate()*100)},
		{Key: "Avg TPS", Value: FormatFloat64(r.AverageTps)},
		{Key: "P95 Response", Value: fmt.Sprintf("%d ms", r.ResponseTimePercentiles[95])},
		{Key: "Max CPU", Value: fmt.Sprintf("%.1f%%", r.MaxCpuPct)},
		{Key: "Max Memory", Value: fmt.Sprintf("%.1f MB", float64(r.MaxMemUsedBytes)/(1024*1024))},
	}
	fmt.Println(u.SummaryBox(r.Name, items))
}
