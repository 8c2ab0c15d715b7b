package attribution

import (
	"fmt"
	"time"

	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/normalize"
)

// Disambiguator resolves which of several qualifying channels was the true
// first point of contact. Outreach teams often target the same prospect
// through multiple campaigns; crediting the lower-priority channel would
// over-attribute it.
//
// Tie-break rule throughout: strict before. A contact on the same instant as
// the competing event does not override — ties favor the channel already
// being considered.
type Disambiguator struct {
	idx      *Index
	cfg      *Config
	emailAny *EmailMatcher
	insta    *InstagramMatcher
}

// NewDisambiguator wires the cross-pipeline timing checks over a run index.
func NewDisambiguator(idx *Index, cfg *Config) *Disambiguator {
	return &Disambiguator{
		idx:      idx,
		cfg:      cfg,
		emailAny: NewEmailMatcher(idx, cfg, ScopeAny),
		insta:    NewInstagramMatcher(idx, cfg),
	}
}

// instagramSentDate parses the campaign sent date out of an Instagram
// candidate's evidence; zero when absent or unparseable.
func instagramSentDate(c *Candidate) time.Time {
	if c == nil || c.Evidence == nil || c.Evidence.CampaignSent == "" {
		return time.Time{}
	}
	sent, err := normalize.ParseChannelDate(c.Evidence.CampaignSent)
	if err != nil {
		return time.Time{}
	}
	return sent
}

// ResolveInstagram decides whether an Instagram candidate should be
// re-attributed to an earlier email touchpoint. Without a comparable
// Instagram send date the candidate stands.
func (d *Disambiguator) ResolveInstagram(client model.Client, signup time.Time, candidate *Candidate) *Candidate {
	sent := instagramSentDate(candidate)
	if sent.IsZero() {
		return candidate
	}
	emailDate := d.idx.EarliestEmailDate(client.Email)
	if emailDate.IsZero() || !emailDate.Before(sent) {
		return candidate
	}

	override := d.emailOverride(client, signup, emailDate)
	override.CrossPipelineNote = fmt.Sprintf(
		"email contact on %s predates instagram contact on %s; re-attributed from Instagram",
		describeDate(emailDate), describeDate(sent),
	)
	return override
}

// ResolveAudit decides whether an Audit candidate should be re-attributed to
// whichever of email or Instagram contacted the client first, when that
// contact precedes the audit itself.
func (d *Disambiguator) ResolveAudit(client model.Client, signup time.Time, candidate *Candidate) *Candidate {
	if candidate == nil || candidate.Evidence == nil || candidate.Evidence.AuditCreatedAt == nil {
		return candidate
	}
	auditAt := *candidate.Evidence.AuditCreatedAt

	emailDate := d.idx.EarliestEmailDate(client.Email)

	var instaCand *Candidate
	var instaDate time.Time
	if c := d.insta.TryMatch(client, signup); c != nil {
		instaCand = c
		instaDate = instagramSentDate(c)
	}

	// Earliest of the competing channels, whichever exists.
	competitor := emailDate
	fromEmail := true
	if !instaDate.IsZero() && (competitor.IsZero() || instaDate.Before(competitor)) {
		competitor = instaDate
		fromEmail = false
	}
	if competitor.IsZero() || !competitor.Before(auditAt) {
		return candidate
	}

	if fromEmail {
		override := d.emailOverride(client, signup, competitor)
		override.CrossPipelineNote = fmt.Sprintf(
			"email contact on %s predates audit request on %s; re-attributed from Audit",
			describeDate(competitor), describeDate(auditAt),
		)
		return override
	}

	instaCand.Method = model.MethodCrossPipelineTiming
	instaCand.CrossPipelineNote = fmt.Sprintf(
		"instagram contact on %s predates audit request on %s; re-attributed from Audit",
		describeDate(competitor), describeDate(auditAt),
	)
	return instaCand
}

// emailOverride re-derives full email evidence for a timing override. The
// email-any matcher gives the richest evidence; when the earliest touchpoint
// sits outside the email acceptance window the evidence is built from that
// touchpoint directly so the override never silently vanishes.
func (d *Disambiguator) emailOverride(client model.Client, signup time.Time, emailDate time.Time) *Candidate {
	if c := d.emailAny.TryMatch(client, signup); c != nil {
		c.Method = model.MethodCrossPipelineTiming
		return c
	}

	var winner *Touchpoint
	for _, tp := range d.idx.anyByEmail[emailKey(client.Email)] {
		if tp.Contacted.Equal(emailDate) {
			winner = &tp
			break
		}
	}

	ev := &model.Evidence{ContactedDate: &emailDate}
	source := model.SourceEmailOld
	if winner != nil {
		variant := normalize.ClassifyVariant(winner.Subject, winner.Content)
		ev.Version = winner.Version
		ev.Variant = &variant
		ev.OpenedDate = winner.OpenedDate
		ev.RepliedDate = winner.RepliedDate
		if !signup.IsZero() {
			ev.DaysDifference = normalize.DaysBetween(emailDate, signup)
		}
		source = sourceForVersion(winner.Version)
	}

	return &Candidate{
		Source:     source,
		Method:     model.MethodCrossPipelineTiming,
		Confidence: d.cfg.Confidence.Email,
		Evidence:   ev,
	}
}
