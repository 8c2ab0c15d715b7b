package attribution

import (
	"time"

	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/normalize"
)

// Candidate is a qualifying touchpoint found by one matcher, before any
// cross-pipeline disambiguation.
type Candidate struct {
	Source     model.Source
	Method     model.Method
	Confidence float64
	Evidence   *model.Evidence

	// CrossPipelineNote is set when a timing disambiguation replaced the
	// waterfall's original candidate with an earlier touchpoint.
	CrossPipelineNote string
}

// Matcher answers "did this client have a qualifying touchpoint on this
// channel, and if so what evidence?". Matchers are pure over the run's
// static index: a nil return means no match, never an error.
type Matcher interface {
	Name() model.Method
	TryMatch(client model.Client, signup time.Time) *Candidate
}

// EmailScope selects which touchpoint versions an EmailMatcher scans.
type EmailScope int

const (
	ScopeOld EmailScope = iota // V1 and V2
	ScopeNew                   // V3 main and subsequence
	ScopeAny                   // all four, used by the disambiguator
)

// EmailMatcher accepts the first record (in input order) whose contact date
// is valid and within the email window. This preserves the reference
// tie-break: for a client with several qualifying touchpoints the winner is
// dataset order, not earliest date, which keeps runs reproducible for a
// fixed bundle.
type EmailMatcher struct {
	idx   *Index
	cfg   *Config
	scope EmailScope
}

// NewEmailMatcher creates a matcher over the given touchpoint scope.
func NewEmailMatcher(idx *Index, cfg *Config, scope EmailScope) *EmailMatcher {
	return &EmailMatcher{idx: idx, cfg: cfg, scope: scope}
}

func (m *EmailMatcher) Name() model.Method {
	switch m.scope {
	case ScopeOld:
		return model.MethodEmailOld
	case ScopeNew:
		return model.MethodEmailNew
	default:
		return model.MethodEmailAny
	}
}

func (m *EmailMatcher) touchpoints(email string) []Touchpoint {
	key := emailKey(email)
	switch m.scope {
	case ScopeOld:
		return m.idx.oldByEmail[key]
	case ScopeNew:
		return m.idx.newByEmail[key]
	default:
		return m.idx.anyByEmail[key]
	}
}

func (m *EmailMatcher) TryMatch(client model.Client, signup time.Time) *Candidate {
	if client.Email == "" || signup.IsZero() {
		return nil
	}

	for _, tp := range m.touchpoints(client.Email) {
		if tp.Contacted.IsZero() {
			continue // malformed date: no match for this record
		}
		days := normalize.DaysBetween(tp.Contacted, signup)
		if !m.cfg.EmailWindow.Contains(days) {
			continue
		}

		variant := normalize.ClassifyVariant(tp.Subject, tp.Content)
		contacted := tp.Contacted
		return &Candidate{
			Source:     sourceForVersion(tp.Version),
			Method:     m.Name(),
			Confidence: m.cfg.Confidence.Email,
			Evidence: &model.Evidence{
				DaysDifference: days,
				ContactedDate:  &contacted,
				OpenedDate:     tp.OpenedDate,
				RepliedDate:    tp.RepliedDate,
				Version:        tp.Version,
				Variant:        &variant,
			},
		}
	}
	return nil
}

func sourceForVersion(v model.TouchpointVersion) model.Source {
	if v == model.VersionV1 || v == model.VersionV2 {
		return model.SourceEmailOld
	}
	return model.SourceEmailNew
}

// InstagramMatcher joins a client's Spotify ID to an Instagram lead and its
// campaign status. No date filter is applied here: the timing check happens
// in the disambiguator.
type InstagramMatcher struct {
	idx *Index
	cfg *Config
}

func NewInstagramMatcher(idx *Index, cfg *Config) *InstagramMatcher {
	return &InstagramMatcher{idx: idx, cfg: cfg}
}

func (m *InstagramMatcher) Name() model.Method { return model.MethodInstagram }

func (m *InstagramMatcher) TryMatch(client model.Client, _ time.Time) *Candidate {
	if client.SpotifyID == "" {
		return nil
	}
	lead, ok := m.idx.Lead(client.SpotifyID)
	if !ok {
		return nil
	}

	ev := &model.Evidence{
		Handle:     lead.Handle,
		LeadMethod: lead.Method,
	}
	if status, kind, ok := m.idx.Status(lead); ok {
		ev.CampaignID = status.CampaignID
		ev.CampaignSent = status.Sent
		ev.RepliedDate = status.Replied
		ev.Blocked = status.Blocked
		if ev.LeadMethod == "" {
			ev.LeadMethod = string(kind)
		}
	}

	return &Candidate{
		Source:     model.SourceInstagram,
		Method:     model.MethodInstagram,
		Confidence: m.cfg.Confidence.Instagram,
		Evidence:   ev,
	}
}

// AuditMatcher accepts an audit request within the straddling window around
// signup: audits can precede or follow signup by up to 30 days.
type AuditMatcher struct {
	idx *Index
	cfg *Config
}

func NewAuditMatcher(idx *Index, cfg *Config) *AuditMatcher {
	return &AuditMatcher{idx: idx, cfg: cfg}
}

func (m *AuditMatcher) Name() model.Method { return model.MethodAudit }

func (m *AuditMatcher) TryMatch(client model.Client, signup time.Time) *Candidate {
	if client.SpotifyID == "" || signup.IsZero() {
		return nil
	}
	audit, ok := m.idx.Audit(client.SpotifyID)
	if !ok {
		return nil
	}

	created, err := normalize.ParseChannelDate(audit.CreatedAt)
	if err != nil || created.IsZero() {
		return nil
	}
	days := normalize.DaysBetween(created, signup)
	if !m.cfg.AuditWindow.Contains(days) {
		return nil
	}

	return &Candidate{
		Source:     model.SourceAudit,
		Method:     model.MethodAudit,
		Confidence: m.cfg.Confidence.Audit,
		Evidence: &model.Evidence{
			DaysDifference: days,
			AuditCreatedAt: &created,
			ReferralSource: audit.ReferralSource,
		},
	}
}

// InvitationMatcher is the last real channel in the waterfall: an identity
// match on invitation code with no timing window at all, reflected in its
// lower confidence.
type InvitationMatcher struct {
	idx    *Index
	cfg    *Config
	cutoff time.Time
}

func NewInvitationMatcher(idx *Index, cfg *Config) (*InvitationMatcher, error) {
	cutoff, err := cfg.CutoffTime()
	if err != nil {
		return nil, err
	}
	return &InvitationMatcher{idx: idx, cfg: cfg, cutoff: cutoff}, nil
}

func (m *InvitationMatcher) Name() model.Method { return model.MethodInvitationCode }

func (m *InvitationMatcher) TryMatch(client model.Client, _ time.Time) *Candidate {
	if client.InvitationCode == "" {
		return nil
	}
	contact, ok := m.idx.InviteContact(client.InvitationCode)
	if !ok {
		return nil
	}

	// Contacts created on/after the cutoff are new-method; unparseable
	// creation dates fall into the old method.
	source := model.SourceEmailOld
	if created, err := normalize.ParseChannelDate(contact.CreatedAt); err == nil && !created.IsZero() && !created.Before(m.cutoff) {
		source = model.SourceEmailNew
	}

	return &Candidate{
		Source:     source,
		Method:     model.MethodInvitationCode,
		Confidence: m.cfg.Confidence.Invitation,
		Evidence: &model.Evidence{
			InvitationCode: client.InvitationCode,
			ContactCreated: contact.CreatedAt,
		},
	}
}

// describeDate renders an evidence date for cross-pipeline notes.
func describeDate(t time.Time) string {
	return t.Format("2006-01-02")
}
