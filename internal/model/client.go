// Package model defines the domain entities shared across the attribution pipeline.
package model

import (
	"strconv"
	"strings"
	"time"
)

// TouchpointVersion identifies which outreach dataset a touchpoint came from.
// The version is intrinsic to the source array — it is never inferred from
// message content.
type TouchpointVersion string

const (
	VersionV1            TouchpointVersion = "v1"
	VersionV2            TouchpointVersion = "v2"
	VersionV3Main        TouchpointVersion = "v3_main"
	VersionV3Subsequence TouchpointVersion = "v3_subsequence"
)

// Revenue is a coerced monetary amount. Exported client data carries revenue
// as a number, a numeric string, null, or garbage; anything unparseable
// decodes to zero rather than failing the bundle.
type Revenue float64

// UnmarshalJSON implements tolerant float coercion.
func (r *Revenue) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(string(data)), `"`))
	if s == "" || s == "null" {
		*r = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*r = 0
		return nil
	}
	*r = Revenue(f)
	return nil
}

// Client is a converted customer to be attributed. SignupDate keeps the raw
// external DD/MM/YYYY form; parsing happens in the engine so one bad row
// cannot abort a load.
type Client struct {
	Email          string  `json:"email"`
	SpotifyID      string  `json:"spotify_id,omitempty"`
	InvitationCode string  `json:"invitation_code,omitempty"`
	SignupDate     string  `json:"signup_date"`
	Revenue        Revenue `json:"revenue,omitempty"`
}

// RevenueAmount returns the coerced revenue as a float64.
func (c Client) RevenueAmount() float64 {
	return float64(c.Revenue)
}

// ContactTouchpoint is a recorded email outreach event from one of the four
// touchpoint datasets.
type ContactTouchpoint struct {
	ContactEmail  string `json:"contact_email"`
	ContactedDate string `json:"contacted_date"`
	OpenedDate    string `json:"opened_date,omitempty"`
	RepliedDate   string `json:"replied_date,omitempty"`
	FromEmail     string `json:"from_email,omitempty"`
	Subject       string `json:"subject,omitempty"`
	Content       string `json:"content,omitempty"`
}

// InstagramLead is a prospect generated by an Instagram campaign.
type InstagramLead struct {
	SpotifyID string `json:"spotify_id"`
	Handle    string `json:"handle"`
	FullName  string `json:"full_name"`
	Method    string `json:"method"`
}

// CampaignStatusKind distinguishes the two Instagram campaign status lists.
type CampaignStatusKind string

const (
	CampaignAuditLink  CampaignStatusKind = "audit_link"
	CampaignReportLink CampaignStatusKind = "report_link"
)

// CampaignStatus is a send/reply status row joined to an InstagramLead by
// handle or full name.
type CampaignStatus struct {
	Handle     string `json:"handle"`
	FullName   string `json:"full_name"`
	Sent       string `json:"sent"`
	Replied    string `json:"replied,omitempty"`
	Blocked    bool   `json:"blocked,omitempty"`
	CampaignID string `json:"campaign_id,omitempty"`
}

// AuditRequest is a free-audit submission tied to a Spotify artist.
type AuditRequest struct {
	SpotifyID      string `json:"spotify_id"`
	CreatedAt      string `json:"created_at"`
	ReferralSource string `json:"referral_source,omitempty"`
	ArtistName     string `json:"artist_name,omitempty"`
	HasSentWebhook bool   `json:"has_sent_webhook,omitempty"`
}

// InviteContact is a CRM contact whose metadata carries a report link from
// which an invitation code can be extracted.
type InviteContact struct {
	Email      string `json:"email,omitempty"`
	ReportLink string `json:"report_link"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// InputBundle is the fully materialized input to one attribution run. All
// arrays are read-only to the engine; missing arrays are treated as empty.
type InputBundle struct {
	Clients          []Client            `json:"clients"`
	TouchpointsV1    []ContactTouchpoint `json:"touchpoints_v1"`
	TouchpointsV2    []ContactTouchpoint `json:"touchpoints_v2"`
	TouchpointsV3    []ContactTouchpoint `json:"touchpoints_v3_main"`
	TouchpointsV3Sub []ContactTouchpoint `json:"touchpoints_v3_subsequence"`
	InstagramLeads   []InstagramLead     `json:"convrt_leads"`
	AuditStatuses    []CampaignStatus    `json:"audit_link_statuses"`
	ReportStatuses   []CampaignStatus    `json:"report_link_statuses"`
	Audits           []AuditRequest      `json:"audits"`
	Contacts         []InviteContact     `json:"contacts,omitempty"`
}

// TouchpointSets returns the four touchpoint arrays keyed by version.
func (b *InputBundle) TouchpointSets() map[TouchpointVersion][]ContactTouchpoint {
	return map[TouchpointVersion][]ContactTouchpoint{
		VersionV1:            b.TouchpointsV1,
		VersionV2:            b.TouchpointsV2,
		VersionV3Main:        b.TouchpointsV3,
		VersionV3Subsequence: b.TouchpointsV3Sub,
	}
}

// RunStatus represents the state of a stored attribution run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is a persisted attribution run.
type Run struct {
	ID        string             `json:"id"`
	Status    RunStatus          `json:"status"`
	Report    *AttributionReport `json:"report,omitempty"`
	Error     string             `json:"error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
