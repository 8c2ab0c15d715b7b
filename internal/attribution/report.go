package attribution

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/attribution-cli/internal/model"
)

// BuildReport aggregates per-client decisions into the run report. Every
// source appears in both breakdowns even at zero, so downstream consumers
// can rely on the keys.
func BuildReport(decisions []model.AttributionDecision, processedAt time.Time) *model.AttributionReport {
	report := &model.AttributionReport{
		ProcessingDate:       processedAt,
		TotalClients:         len(decisions),
		AttributionBreakdown: make(map[model.Source]int, len(model.Sources())),
		RevenueBreakdown:     make(map[model.Source]float64, len(model.Sources())),
		Decisions:            decisions,
	}
	for _, s := range model.Sources() {
		report.AttributionBreakdown[s] = 0
		report.RevenueBreakdown[s] = 0
	}

	for _, d := range decisions {
		report.AttributionBreakdown[d.Source]++
		report.RevenueBreakdown[d.Source] += d.Client.RevenueAmount()
		if d.Attributed() {
			report.AttributedClients++
		}
	}

	rate := 0.0
	if report.TotalClients > 0 {
		rate = float64(report.AttributedClients) / float64(report.TotalClients) * 100
	}
	report.AttributionRate = fmt.Sprintf("%.1f%%", rate)

	return report
}

// FormatReport renders a human-readable summary of an attribution run.
func FormatReport(report *model.AttributionReport) string {
	var b strings.Builder

	b.WriteString("# Attribution Report\n")
	fmt.Fprintf(&b, "Processed: %s\n\n", report.ProcessingDate.UTC().Format(time.RFC3339))

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Total clients: %d\n", report.TotalClients)
	fmt.Fprintf(&b, "- Attributed: %d\n", report.AttributedClients)
	fmt.Fprintf(&b, "- Attribution rate: %s\n\n", report.AttributionRate)

	b.WriteString("## Channel Breakdown\n")
	for _, s := range model.Sources() {
		fmt.Fprintf(&b, "- %s: %d clients, $%.2f revenue\n",
			s, report.AttributionBreakdown[s], report.RevenueBreakdown[s])
	}
	b.WriteString("\n")

	// Method tally, cross-pipeline overrides called out separately.
	methodCounts := make(map[model.Method]int)
	overrides := 0
	for _, d := range report.Decisions {
		methodCounts[d.Method]++
		if d.CrossPipelineNote != "" {
			overrides++
		}
	}
	b.WriteString("## Methods\n")
	for _, m := range []model.Method{
		model.MethodEmailOld, model.MethodEmailNew, model.MethodInstagram,
		model.MethodAudit, model.MethodInvitationCode, model.MethodCrossPipelineTiming,
		model.MethodNone,
	} {
		if n := methodCounts[m]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", m, n)
		}
	}
	if overrides > 0 {
		fmt.Fprintf(&b, "\nCross-pipeline timing overrides: %d\n", overrides)
	}

	return b.String()
}
