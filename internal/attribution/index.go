package attribution

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/normalize"
)

// Touchpoint is a ContactTouchpoint with its source version and the contact
// date parsed once at index build time. Contacted is zero when the raw date
// was absent or malformed; matchers skip such records.
type Touchpoint struct {
	model.ContactTouchpoint
	Version   model.TouchpointVersion
	Contacted time.Time
}

// statusJoin is a CampaignStatus resolved against a lead name key.
type statusJoin struct {
	status model.CampaignStatus
	kind   model.CampaignStatusKind
}

// Index holds the per-run hash indices. The reference behavior is a linear
// scan of every dataset per client; building these maps once per run keeps
// the same observable behavior at O(records) instead of O(clients x records).
type Index struct {
	oldByEmail map[string][]Touchpoint // V1 then V2, input order preserved
	newByEmail map[string][]Touchpoint // V3 main then subsequence
	anyByEmail map[string][]Touchpoint // all four sets, version priority order

	leadsBySpotify  map[string]model.InstagramLead
	statusByName    map[string]statusJoin
	auditsBySpotify map[string]model.AuditRequest
	contactsByCode  map[string]model.InviteContact
}

// NewIndex builds all indices for one run. Rows with unusable keys are
// skipped with a debug log, never an error.
func NewIndex(bundle *model.InputBundle) *Index {
	idx := &Index{
		oldByEmail:      make(map[string][]Touchpoint),
		newByEmail:      make(map[string][]Touchpoint),
		anyByEmail:      make(map[string][]Touchpoint),
		leadsBySpotify:  make(map[string]model.InstagramLead),
		statusByName:    make(map[string]statusJoin),
		auditsBySpotify: make(map[string]model.AuditRequest),
		contactsByCode:  make(map[string]model.InviteContact),
	}

	type set struct {
		version model.TouchpointVersion
		rows    []model.ContactTouchpoint
		old     bool
	}
	sets := []set{
		{model.VersionV1, bundle.TouchpointsV1, true},
		{model.VersionV2, bundle.TouchpointsV2, true},
		{model.VersionV3Main, bundle.TouchpointsV3, false},
		{model.VersionV3Subsequence, bundle.TouchpointsV3Sub, false},
	}

	badDates := 0
	for _, s := range sets {
		for _, row := range s.rows {
			key := emailKey(row.ContactEmail)
			if key == "" {
				continue
			}
			contacted, err := normalize.ParseChannelDate(row.ContactedDate)
			if err != nil {
				badDates++
				contacted = time.Time{}
			}
			tp := Touchpoint{ContactTouchpoint: row, Version: s.version, Contacted: contacted}
			if s.old {
				idx.oldByEmail[key] = append(idx.oldByEmail[key], tp)
			} else {
				idx.newByEmail[key] = append(idx.newByEmail[key], tp)
			}
			idx.anyByEmail[key] = append(idx.anyByEmail[key], tp)
		}
	}
	if badDates > 0 {
		zap.L().Warn("attribution: touchpoints with unparseable contact dates",
			zap.Int("count", badDates),
		)
	}

	for _, lead := range bundle.InstagramLeads {
		if lead.SpotifyID == "" {
			continue
		}
		// First lead per Spotify ID wins, matching the reference scan.
		if _, ok := idx.leadsBySpotify[lead.SpotifyID]; !ok {
			idx.leadsBySpotify[lead.SpotifyID] = lead
		}
	}

	type statusSet struct {
		kind model.CampaignStatusKind
		rows []model.CampaignStatus
	}
	for _, s := range []statusSet{
		{model.CampaignAuditLink, bundle.AuditStatuses},
		{model.CampaignReportLink, bundle.ReportStatuses},
	} {
		for _, row := range s.rows {
			for _, key := range []string{normalize.FoldName(row.Handle), normalize.FoldName(row.FullName)} {
				if key == "" {
					continue
				}
				if _, ok := idx.statusByName[key]; !ok {
					idx.statusByName[key] = statusJoin{status: row, kind: s.kind}
				}
			}
		}
	}

	for _, audit := range bundle.Audits {
		if audit.SpotifyID == "" {
			continue
		}
		if _, ok := idx.auditsBySpotify[audit.SpotifyID]; !ok {
			idx.auditsBySpotify[audit.SpotifyID] = audit
		}
	}

	for _, contact := range bundle.Contacts {
		code := normalize.ExtractInvitationCode(contact.ReportLink)
		if code == "" {
			continue
		}
		if _, ok := idx.contactsByCode[code]; !ok {
			idx.contactsByCode[code] = contact
		}
	}

	return idx
}

// Lead returns the Instagram lead for a Spotify ID.
func (idx *Index) Lead(spotifyID string) (model.InstagramLead, bool) {
	lead, ok := idx.leadsBySpotify[spotifyID]
	return lead, ok
}

// Status joins a lead to its campaign status by folded handle or full name.
// Either match suffices: a lead appears in at most one status list per
// campaign type.
func (idx *Index) Status(lead model.InstagramLead) (model.CampaignStatus, model.CampaignStatusKind, bool) {
	for _, key := range []string{normalize.FoldName(lead.Handle), normalize.FoldName(lead.FullName)} {
		if key == "" {
			continue
		}
		if j, ok := idx.statusByName[key]; ok {
			return j.status, j.kind, true
		}
	}
	return model.CampaignStatus{}, "", false
}

// Audit returns the audit request for a Spotify ID.
func (idx *Index) Audit(spotifyID string) (model.AuditRequest, bool) {
	audit, ok := idx.auditsBySpotify[spotifyID]
	return audit, ok
}

// InviteContact returns the contact whose extracted report-link code matches.
func (idx *Index) InviteContact(code string) (model.InviteContact, bool) {
	contact, ok := idx.contactsByCode[code]
	return contact, ok
}

// EarliestEmailDate returns the earliest valid contact date across every
// touchpoint version for a client email, or the zero time if none exists.
func (idx *Index) EarliestEmailDate(email string) time.Time {
	var earliest time.Time
	for _, tp := range idx.anyByEmail[emailKey(email)] {
		if tp.Contacted.IsZero() {
			continue
		}
		if earliest.IsZero() || tp.Contacted.Before(earliest) {
			earliest = tp.Contacted
		}
	}
	return earliest
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
