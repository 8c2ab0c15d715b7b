package model

import "time"

// Source is the attributed marketing channel. The set is closed: every
// decision carries exactly one of these values.
type Source string

const (
	SourceEmailOld     Source = "Email-Old"
	SourceEmailNew     Source = "Email-New"
	SourceInstagram    Source = "Instagram"
	SourceAudit        Source = "Audit"
	SourceUnattributed Source = "Unattributed"
)

// Sources lists every valid source in report order.
func Sources() []Source {
	return []Source{
		SourceEmailOld,
		SourceEmailNew,
		SourceInstagram,
		SourceAudit,
		SourceUnattributed,
	}
}

// Method identifies which matcher produced a decision.
type Method string

const (
	MethodEmailOld            Method = "email_old"
	MethodEmailNew            Method = "email_new"
	MethodEmailAny            Method = "email_any"
	MethodInstagram           Method = "instagram"
	MethodAudit               Method = "audit"
	MethodInvitationCode      Method = "invitation_code"
	MethodCrossPipelineTiming Method = "cross_pipeline_timing"
	MethodNone                Method = "none"
)

// Variant identifies the message template family of an email touchpoint.
// Informational only — it never affects whether a client is attributed.
type Variant struct {
	Name       string  `json:"name"`
	Sequence   string  `json:"sequence"` // "main", "subsequence", or "old_method"
	Confidence float64 `json:"confidence"`
}

// Evidence is the matcher-specific payload attached to a decision.
// Only the fields relevant to the winning channel are populated.
type Evidence struct {
	// Email channels.
	DaysDifference int               `json:"days_difference,omitempty"`
	ContactedDate  *time.Time        `json:"contacted_date,omitempty"`
	OpenedDate     string            `json:"opened_date,omitempty"`
	RepliedDate    string            `json:"replied_date,omitempty"`
	Version        TouchpointVersion `json:"version,omitempty"`
	Variant        *Variant          `json:"variant,omitempty"`

	// Instagram.
	Handle       string `json:"handle,omitempty"`
	LeadMethod   string `json:"lead_method,omitempty"`
	CampaignID   string `json:"campaign_id,omitempty"`
	CampaignSent string `json:"campaign_sent,omitempty"`
	Blocked      bool   `json:"blocked,omitempty"`

	// Audit.
	AuditCreatedAt *time.Time `json:"audit_created_at,omitempty"`
	ReferralSource string     `json:"referral_source,omitempty"`

	// Invitation fallback.
	InvitationCode string `json:"invitation_code,omitempty"`
	ContactCreated string `json:"contact_created,omitempty"`
}

// AttributionDecision is the single, final decision emitted for a client.
type AttributionDecision struct {
	Client            Client    `json:"client"`
	Source            Source    `json:"source"`
	Method            Method    `json:"method"`
	Confidence        float64   `json:"confidence"`
	Evidence          *Evidence `json:"evidence,omitempty"`
	CrossPipelineNote string    `json:"cross_pipeline_note,omitempty"`
}

// Attributed reports whether the decision credits a real channel.
func (d AttributionDecision) Attributed() bool {
	return d.Source != SourceUnattributed
}

// AttributionReport is the aggregate output of one engine run.
type AttributionReport struct {
	ProcessingDate       time.Time             `json:"processing_date"`
	TotalClients         int                   `json:"total_clients"`
	AttributedClients    int                   `json:"attributed_clients"`
	AttributionRate      string                `json:"attribution_rate"`
	AttributionBreakdown map[Source]int        `json:"attribution_breakdown"`
	RevenueBreakdown     map[Source]float64    `json:"revenue_breakdown"`
	Decisions            []AttributionDecision `json:"decisions"`
}
