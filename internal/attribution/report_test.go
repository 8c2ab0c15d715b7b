package attribution

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/attribution-cli/internal/model"
)

func TestBuildReport_Aggregates(t *testing.T) {
	decisions := []model.AttributionDecision{
		{Client: model.Client{Email: "a@x.com", Revenue: 100}, Source: model.SourceEmailOld, Method: model.MethodEmailOld},
		{Client: model.Client{Email: "b@x.com", Revenue: 50}, Source: model.SourceEmailOld, Method: model.MethodEmailOld},
		{Client: model.Client{Email: "c@x.com", Revenue: 200}, Source: model.SourceInstagram, Method: model.MethodInstagram},
		{Client: model.Client{Email: "d@x.com"}, Source: model.SourceUnattributed, Method: model.MethodNone},
	}

	report := BuildReport(decisions, fixedNow())

	assert.Equal(t, 4, report.TotalClients)
	assert.Equal(t, 3, report.AttributedClients)
	assert.Equal(t, "75.0%", report.AttributionRate)
	assert.Equal(t, 2, report.AttributionBreakdown[model.SourceEmailOld])
	assert.Equal(t, 1, report.AttributionBreakdown[model.SourceInstagram])
	assert.Equal(t, 1, report.AttributionBreakdown[model.SourceUnattributed])
	assert.Equal(t, 150.0, report.RevenueBreakdown[model.SourceEmailOld])
	assert.Equal(t, 200.0, report.RevenueBreakdown[model.SourceInstagram])
	assert.Equal(t, fixedNow(), report.ProcessingDate)
}

func TestBuildReport_AllSourcesPresentAtZero(t *testing.T) {
	report := BuildReport(nil, time.Now())
	for _, s := range model.Sources() {
		_, ok := report.AttributionBreakdown[s]
		assert.True(t, ok, "breakdown missing %s", s)
		_, ok = report.RevenueBreakdown[s]
		assert.True(t, ok, "revenue missing %s", s)
	}
	assert.Equal(t, "0.0%", report.AttributionRate)
}

func TestBuildReport_ConsistencyInvariants(t *testing.T) {
	report, err := NewEngine(nil).WithNow(fixedNow).Run(context.Background(), fixtureBundle())
	require.NoError(t, err)

	// attributed + Unattributed count == total
	assert.Equal(t, report.TotalClients,
		report.AttributedClients+report.AttributionBreakdown[model.SourceUnattributed])

	// revenue breakdown sums to total client revenue
	var sumBreakdown, sumClients float64
	for _, v := range report.RevenueBreakdown {
		sumBreakdown += v
	}
	for _, c := range fixtureBundle().Clients {
		sumClients += c.RevenueAmount()
	}
	assert.InDelta(t, sumClients, sumBreakdown, 1e-9)
}

func TestFormatReport(t *testing.T) {
	report, err := NewEngine(nil).WithNow(fixedNow).Run(context.Background(), fixtureBundle())
	require.NoError(t, err)

	text := FormatReport(report)
	assert.Contains(t, text, "# Attribution Report")
	assert.Contains(t, text, "Total clients: 6")
	assert.Contains(t, text, "Email-Old: 1 clients")
	assert.Contains(t, text, "Unattributed: 1 clients")
	assert.Contains(t, text, "invitation_code: 1")
}
