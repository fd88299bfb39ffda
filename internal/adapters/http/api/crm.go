package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/scorecard/internal/domain/model"
)

// CRMDependencies stores and reads CRM records.
type CRMDependencies interface {
	CreateLead(ctx context.Context, l model.Lead) (model.Lead, error)
	GetLead(ctx context.Context, id string) (model.Lead, error)
	CreateContact(ctx context.Context, c model.Contact) (model.Contact, error)
	GetContact(ctx context.Context, id string) (model.ContactSnapshot, error)
	AddInteraction(ctx context.Context, in model.Interaction) (model.Interaction, error)
	CreateDeal(ctx context.Context, d model.Deal) (model.Deal, error)
	GetDeal(ctx context.Context, id string) (model.Deal, error)
}

// CRMHandler handles leads, contacts, interactions and deals.
type CRMHandler struct {
	deps CRMDependencies
}

// NewCRMHandler creates a new CRM handler.
func NewCRMHandler(deps CRMDependencies) *CRMHandler {
	return &CRMHandler{deps: deps}
}

type leadRequest struct {
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email" validate:"required,email"`
	Company    string     `json:"company"`
	Phone      string     `json:"phone"`
	Source     string     `json:"source" validate:"omitempty,oneof=WEBSITE REFERRAL PAID_AD SOCIAL EMAIL PHONE CONTENT OTHER"`
	Status     string     `json:"status" validate:"omitempty,oneof=NEW CONTACTED QUALIFIED CONVERTED UNQUALIFIED"`
	AssignedTo string     `json:"assignedTo"`
	CreatedAt  *time.Time `json:"createdAt"`
}

func (r *leadRequest) lead() model.Lead {
	return model.Lead{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Company:    r.Company,
		Phone:      r.Phone,
		Source:     r.Source,
		Status:     r.Status,
		AssignedTo: r.AssignedTo,
		CreatedAt:  deref(r.CreatedAt),
	}
}

type contactRequest struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email" validate:"required,email"`
	Company   string     `json:"company"`
	Phone     string     `json:"phone"`
	Status    string     `json:"status" validate:"omitempty,oneof=VIP ACTIVE NEW INACTIVE CHURNED"`
	Type      string     `json:"type" validate:"omitempty,oneof=CUSTOMER PARTNER PROSPECT VENDOR"`
	CreatedAt *time.Time `json:"createdAt"`
}

func (r *contactRequest) contact() model.Contact {
	return model.Contact{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Company:   r.Company,
		Phone:     r.Phone,
		Status:    r.Status,
		Type:      r.Type,
		CreatedAt: deref(r.CreatedAt),
	}
}

type interactionRequest struct {
	Type  string `json:"type" validate:"required"`
	Notes string `json:"notes"`
}

type dealRequest struct {
	Title             string     `json:"title" validate:"required"`
	ContactID         string     `json:"contactId"`
	Value             float64    `json:"value" validate:"gte=0"`
	Stage             string     `json:"stage"`
	Priority          string     `json:"priority" validate:"omitempty,oneof=URGENT HIGH MEDIUM LOW"`
	Status            string     `json:"status" validate:"omitempty,oneof=OPEN WON LOST"`
	Probability       float64    `json:"probability" validate:"gte=0,lte=100"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate"`
	ActualCloseDate   *time.Time `json:"actualCloseDate"`
	CreatedAt         *time.Time `json:"createdAt"`
}

func (r *dealRequest) deal() model.Deal {
	return model.Deal{
		Title:             r.Title,
		ContactID:         r.ContactID,
		Value:             r.Value,
		Stage:             r.Stage,
		Priority:          r.Priority,
		Status:            r.Status,
		Probability:       r.Probability,
		ExpectedCloseDate: r.ExpectedCloseDate,
		ActualCloseDate:   r.ActualCloseDate,
		CreatedAt:         deref(r.CreatedAt),
	}
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// HandleCreateLead handles POST /api/leads requests.
func (h *CRMHandler) HandleCreateLead(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_lead"
	var req leadRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	l, err := h.deps.CreateLead(r.Context(), req.lead())
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// HandleGetLead handles GET /api/leads/{id} requests.
func (h *CRMHandler) HandleGetLead(w http.ResponseWriter, r *http.Request) {
	l, err := h.deps.GetLead(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, "api.get_lead", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// HandleCreateContact handles POST /api/contacts requests.
func (h *CRMHandler) HandleCreateContact(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_contact"
	var req contactRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	c, err := h.deps.CreateContact(r.Context(), req.contact())
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleGetContact handles GET /api/contacts/{id} requests.
func (h *CRMHandler) HandleGetContact(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.GetContact(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, "api.get_contact", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleAddInteraction handles POST /api/contacts/{id}/interactions requests.
func (h *CRMHandler) HandleAddInteraction(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_interaction"
	var req interactionRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	in, err := h.deps.AddInteraction(r.Context(), model.Interaction{
		ContactID: r.PathValue("id"),
		Type:      req.Type,
		Notes:     req.Notes,
	})
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

// HandleCreateDeal handles POST /api/deals requests.
func (h *CRMHandler) HandleCreateDeal(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_deal"
	var req dealRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	d, err := h.deps.CreateDeal(r.Context(), req.deal())
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// HandleGetDeal handles GET /api/deals/{id} requests.
func (h *CRMHandler) HandleGetDeal(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.GetDeal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, "api.get_deal", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
