package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/okian/scorecard/internal/domain/model"
)

const day = 24 * time.Hour

var defaultFreemail = []string{"gmail", "yahoo", "hotmail"}

var (
	leadSourcePoints = map[string]int{
		model.SourceWebsite:  20,
		model.SourceReferral: 25,
		model.SourcePaidAd:   15,
		model.SourceSocial:   10,
		model.SourceEmail:    12,
		model.SourcePhone:    18,
		model.SourceContent:  22,
		model.SourceOther:    5,
	}
	leadStatusPoints = map[string]int{
		model.LeadNew:         5,
		model.LeadContacted:   10,
		model.LeadQualified:   20,
		model.LeadConverted:   25,
		model.LeadUnqualified: 0,
	}
	contactStatusPoints = map[string]int{
		model.ContactVIP:      25,
		model.ContactActive:   20,
		model.ContactNew:      15,
		model.ContactInactive: 5,
		model.ContactChurned:  0,
	}
	contactTypePoints = map[string]int{
		model.ContactCustomer: 20,
		model.ContactPartner:  18,
		model.ContactProspect: 12,
		model.ContactVendor:   8,
	}
	dealStagePoints = map[string]int{
		model.StageNegotiation: 30,
		model.StageProposal:    25,
		model.StageQualified:   20,
		model.StageLead:        10,
		model.StageClosedWon:   35,
		model.StageClosedLost:  0,
	}
	dealPriorityPoints = map[string]int{
		model.PriorityUrgent: 25,
		model.PriorityHigh:   20,
		model.PriorityMedium: 12,
		model.PriorityLow:    5,
	}
)

// Input is a discriminated union of the scorable snapshots. Exactly one
// field is expected to be set.
type Input struct {
	Lead    *model.Lead
	Contact *model.ContactSnapshot
	Deal    *model.Deal
}

// EntityType reports which snapshot the input carries.
func (in Input) EntityType() string {
	switch {
	case in.Lead != nil:
		return model.EntityLead
	case in.Contact != nil:
		return model.EntityContact
	case in.Deal != nil:
		return model.EntityDeal
	default:
		return ""
	}
}

// Engine scores leads, contacts and deals. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	now      func() time.Time
	freemail []string

	lead    Rubric[model.Lead]
	contact Rubric[model.ContactSnapshot]
	deal    Rubric[model.Deal]
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:      time.Now,
		freemail: defaultFreemail,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.lead = e.leadRubric()
	e.contact = contactRubric()
	e.deal = e.dealRubric()
	return e
}

// Score dispatches to the rubric matching the input. An empty input scores 0.
func (e *Engine) Score(in Input) Result {
	switch {
	case in.Lead != nil:
		return e.Lead(*in.Lead)
	case in.Contact != nil:
		return e.Contact(*in.Contact)
	case in.Deal != nil:
		return e.Deal(*in.Deal)
	default:
		return Rubric[struct{}]{}.Evaluate(struct{}{})
	}
}

// Lead scores a lead.
func (e *Engine) Lead(l model.Lead) Result { return e.lead.Evaluate(l) }

// Contact scores a contact with its deals and interactions.
func (e *Engine) Contact(c model.ContactSnapshot) Result { return e.contact.Evaluate(c) }

// Deal scores a deal.
func (e *Engine) Deal(d model.Deal) Result { return e.deal.Evaluate(d) }

func (e *Engine) leadRubric() Rubric[model.Lead] {
	return Rubric[model.Lead]{
		Flag("emailDomain", 10, "Professional email domain", func(l model.Lead) bool {
			return e.professionalDomain(l.Email)
		}),
		Flag("companyInfo", 15, "Company provided", func(l model.Lead) bool {
			return strings.TrimSpace(l.Company) != ""
		}),
		Lookup("source", "Quality source", leadSourcePoints, func(l model.Lead) string { return l.Source }),
		Lookup("status", "Status", leadStatusPoints, func(l model.Lead) string { return l.Status }),
		Flag("assignedUser", 10, "Assigned to sales rep", func(l model.Lead) bool {
			return l.AssignedTo != ""
		}),
		Tiered("recentActivity",
			func(l model.Lead) (float64, bool) {
				if l.CreatedAt.IsZero() {
					return 0, false
				}
				return wholeDays(e.now().Sub(l.CreatedAt)), true
			},
			Tier{Match: atMost(7), Points: 15, Label: "Recent lead (within 7 days)"},
			Tier{Match: atMost(30), Points: 10, Label: "Recent lead (within 30 days)"},
		),
		Flag("phoneProvided", 10, "Phone number provided", func(l model.Lead) bool {
			return strings.TrimSpace(l.Phone) != ""
		}),
	}
}

func contactRubric() Rubric[model.ContactSnapshot] {
	return Rubric[model.ContactSnapshot]{
		Tiered("dealValue",
			func(c model.ContactSnapshot) (float64, bool) {
				total := 0.0
				for _, v := range c.DealValues {
					total += v
				}
				return total, true
			},
			Tier{Match: Above(50000), Points: 30, Label: "High-value deals"},
			Tier{Match: Above(10000), Points: 20, Label: "Medium-value deals"},
			Tier{Match: Above(0), Points: 10, Label: "Low-value deals"},
		),
		Tiered("interactions",
			func(c model.ContactSnapshot) (float64, bool) { return float64(c.Interactions), true },
			Tier{Match: AtLeast(10), Points: 25, Label: "High engagement"},
			Tier{Match: AtLeast(5), Points: 15, Label: "Medium engagement"},
			Tier{Match: AtLeast(2), Points: 8, Label: "Low engagement"},
		),
		Lookup("status", "Status", contactStatusPoints, func(c model.ContactSnapshot) string { return c.Contact.Status }),
		Lookup("type", "Type", contactTypePoints, func(c model.ContactSnapshot) string { return c.Contact.Type }),
		Flag("company", 10, "Company information", func(c model.ContactSnapshot) bool {
			return strings.TrimSpace(c.Contact.Company) != ""
		}),
	}
}

func (e *Engine) dealRubric() Rubric[model.Deal] {
	return Rubric[model.Deal]{
		Tiered("value",
			func(d model.Deal) (float64, bool) { return d.Value, true },
			Tier{Match: AtLeast(100000), Points: 30, Label: "High-value deal"},
			Tier{Match: AtLeast(50000), Points: 25, Label: "Medium-high value deal"},
			Tier{Match: AtLeast(10000), Points: 15, Label: "Medium value deal"},
			Tier{Match: Above(0), Points: 8, Label: "Low value deal"},
		),
		Lookup("stage", "Stage", dealStagePoints, func(d model.Deal) string { return d.Stage }),
		Lookup("priority", "Priority", dealPriorityPoints, func(d model.Deal) string { return d.Priority }),
		Tiered("probability",
			func(d model.Deal) (float64, bool) { return d.Probability, true },
			Tier{Match: AtLeast(80), Points: 15, Label: "High probability"},
			Tier{Match: AtLeast(50), Points: 10, Label: "Medium probability"},
			Tier{Match: AtLeast(20), Points: 5, Label: "Low probability"},
		),
		Tiered("closeDate",
			func(d model.Deal) (float64, bool) {
				if d.ExpectedCloseDate == nil {
					return 0, false
				}
				return wholeDays(d.ExpectedCloseDate.Sub(e.now())), true
			},
			Tier{Match: Between(0, 30), Points: 10, Label: "Closing soon"},
			Tier{Match: Between(0, 90), Points: 5, Label: "Closing this quarter"},
		),
	}
}

// professionalDomain reports whether the email has a domain that is not a
// free mail provider.
func (e *Engine) professionalDomain(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) < 2 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(parts[1]))
	if domain == "" {
		return false
	}
	for _, free := range e.freemail {
		if strings.Contains(domain, free) {
			return false
		}
	}
	return true
}

// wholeDays floors a duration to whole days, rounding toward negative infinity.
func wholeDays(d time.Duration) float64 {
	return math.Floor(float64(d) / float64(day))
}

func atMost(threshold float64) func(float64) bool {
	return func(v float64) bool { return v <= threshold }
}
