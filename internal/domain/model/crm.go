// Package model contains domain models passed between layers.
package model

import "time"

// Lead sources.
const (
	SourceWebsite  = "WEBSITE"
	SourceReferral = "REFERRAL"
	SourcePaidAd   = "PAID_AD"
	SourceSocial   = "SOCIAL"
	SourceEmail    = "EMAIL"
	SourcePhone    = "PHONE"
	SourceContent  = "CONTENT"
	SourceOther    = "OTHER"
)

// Lead statuses.
const (
	LeadNew         = "NEW"
	LeadContacted   = "CONTACTED"
	LeadQualified   = "QUALIFIED"
	LeadConverted   = "CONVERTED"
	LeadUnqualified = "UNQUALIFIED"
)

// Lead is a prospect captured from a marketing channel.
// Band holds the temperature (HIGH, MEDIUM, LOW) derived from the last score.
type Lead struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Company    string    `json:"company,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	AssignedTo string    `json:"assignedTo,omitempty"`
	Band       string    `json:"score,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Contact statuses and types.
const (
	ContactVIP      = "VIP"
	ContactActive   = "ACTIVE"
	ContactNew      = "NEW"
	ContactInactive = "INACTIVE"
	ContactChurned  = "CHURNED"

	ContactCustomer = "CUSTOMER"
	ContactPartner  = "PARTNER"
	ContactProspect = "PROSPECT"
	ContactVendor   = "VENDOR"
)

// Contact is a known person in the CRM.
type Contact struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Interaction is a touchpoint (call, email, meeting) with a contact.
type Interaction struct {
	ID        string    `json:"id"`
	ContactID string    `json:"contactId"`
	Type      string    `json:"type"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactSnapshot is a contact joined with the aggregates used for scoring.
type ContactSnapshot struct {
	Contact      Contact   `json:"contact"`
	DealValues   []float64 `json:"dealValues"`
	Interactions int       `json:"interactionCount"`
}

// Deal stages used by scoring.
const (
	StageLead        = "LEAD"
	StageQualified   = "QUALIFIED"
	StageProposal    = "PROPOSAL"
	StageNegotiation = "NEGOTIATION"
	StageClosedWon   = "CLOSED_WON"
	StageClosedLost  = "CLOSED_LOST"
)

// Deal stages used by the forecast stage table.
const (
	StageProspecting      = "PROSPECTING"
	StageQualification    = "QUALIFICATION"
	StageNeedAnalysis     = "NEED_ANALYSIS"
	StageValueProposition = "VALUE_PROPOSITION"
)

// Deal priorities.
const (
	PriorityUrgent = "URGENT"
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Deal statuses.
const (
	DealOpen = "OPEN"
	DealWon  = "WON"
	DealLost = "LOST"
)

// Deal is a sales opportunity. Probability is a percentage in [0,100].
type Deal struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	ContactID         string     `json:"contactId,omitempty"`
	Value             float64    `json:"value"`
	Stage             string     `json:"stage"`
	Priority          string     `json:"priority"`
	Status            string     `json:"status"`
	Probability       float64    `json:"probability"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
	ActualCloseDate   *time.Time `json:"actualCloseDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}
