package attribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/attribution-cli/internal/model"
)

func TestNewIndex_TouchpointOrderPreserved(t *testing.T) {
	bundle := &model.InputBundle{
		TouchpointsV1: []model.ContactTouchpoint{
			{ContactEmail: "a@x.com", ContactedDate: "2025-01-10"},
		},
		TouchpointsV2: []model.ContactTouchpoint{
			{ContactEmail: "A@X.com", ContactedDate: "2025-01-05"},
		},
		TouchpointsV3: []model.ContactTouchpoint{
			{ContactEmail: "a@x.com", ContactedDate: "2025-01-20"},
		},
	}
	idx := NewIndex(bundle)

	// Email keys are case-insensitive; V1 precedes V2 in the old scope.
	old := idx.oldByEmail["a@x.com"]
	require.Len(t, old, 2)
	assert.Equal(t, model.VersionV1, old[0].Version)
	assert.Equal(t, model.VersionV2, old[1].Version)

	all := idx.anyByEmail["a@x.com"]
	require.Len(t, all, 3)
	assert.Equal(t, model.VersionV3Main, all[2].Version)
}

func TestNewIndex_MalformedDateKeptWithZeroTime(t *testing.T) {
	bundle := &model.InputBundle{
		TouchpointsV1: []model.ContactTouchpoint{
			{ContactEmail: "a@x.com", ContactedDate: "not-a-date"},
		},
	}
	idx := NewIndex(bundle)

	tps := idx.oldByEmail["a@x.com"]
	require.Len(t, tps, 1)
	assert.True(t, tps[0].Contacted.IsZero())
}

func TestIndex_EarliestEmailDate(t *testing.T) {
	bundle := &model.InputBundle{
		TouchpointsV1: []model.ContactTouchpoint{
			{ContactEmail: "a@x.com", ContactedDate: "2025-02-10"},
			{ContactEmail: "a@x.com", ContactedDate: "bogus"},
		},
		TouchpointsV3Sub: []model.ContactTouchpoint{
			{ContactEmail: "a@x.com", ContactedDate: "2025-01-03"},
		},
	}
	idx := NewIndex(bundle)

	got := idx.EarliestEmailDate("a@x.com")
	assert.Equal(t, time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC), got)

	assert.True(t, idx.EarliestEmailDate("missing@x.com").IsZero())
}

func TestIndex_StatusJoin_FoldedNames(t *testing.T) {
	bundle := &model.InputBundle{
		AuditStatuses: []model.CampaignStatus{
			{Handle: "@JoseGonzalez", Sent: "2025-02-01", CampaignID: "c1"},
		},
		ReportStatuses: []model.CampaignStatus{
			{FullName: "María Løvens", Sent: "2025-02-15", CampaignID: "c2"},
		},
	}
	idx := NewIndex(bundle)

	// Join by handle, case-insensitive with @ stripped.
	s, kind, ok := idx.Status(model.InstagramLead{Handle: "josegonzalez"})
	require.True(t, ok)
	assert.Equal(t, "c1", s.CampaignID)
	assert.Equal(t, model.CampaignAuditLink, kind)

	// Join by accented full name against its ASCII rendering.
	s, kind, ok = idx.Status(model.InstagramLead{FullName: "Maria Løvens"})
	require.True(t, ok)
	assert.Equal(t, "c2", s.CampaignID)
	assert.Equal(t, model.CampaignReportLink, kind)

	_, _, ok = idx.Status(model.InstagramLead{Handle: "nobody"})
	assert.False(t, ok)
}

func TestIndex_InviteContacts_CodeExtraction(t *testing.T) {
	bundle := &model.InputBundle{
		Contacts: []model.InviteContact{
			{ReportLink: "https://app.example.com/report/c0de123", CreatedAt: "2025-04-01"},
			{ReportLink: "https://app.example.com/invite/6ba7b810-9dad-41d1-80b4-00c04fd430c8"},
			{ReportLink: "no code here"},
		},
	}
	idx := NewIndex(bundle)

	_, ok := idx.InviteContact("c0de123")
	assert.True(t, ok)
	_, ok = idx.InviteContact("6ba7b810-9dad-41d1-80b4-00c04fd430c8")
	assert.True(t, ok)
	_, ok = idx.InviteContact("missing")
	assert.False(t, ok)
}

func TestNewIndex_FirstRecordWinsOnDuplicateKeys(t *testing.T) {
	bundle := &model.InputBundle{
		InstagramLeads: []model.InstagramLead{
			{SpotifyID: "sp1", Handle: "first"},
			{SpotifyID: "sp1", Handle: "second"},
		},
		Audits: []model.AuditRequest{
			{SpotifyID: "sp1", CreatedAt: "2025-01-01", ReferralSource: "first"},
			{SpotifyID: "sp1", CreatedAt: "2025-02-01", ReferralSource: "second"},
		},
	}
	idx := NewIndex(bundle)

	lead, ok := idx.Lead("sp1")
	require.True(t, ok)
	assert.Equal(t, "first", lead.Handle)

	audit, ok := idx.Audit("sp1")
	require.True(t, ok)
	assert.Equal(t, "first", audit.ReferralSource)
}
