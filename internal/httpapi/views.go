package httpapi

import (
	"time"

	"github.com/Leganyst/services-marketplace/internal/lifecycle"
	"github.com/Leganyst/services-marketplace/internal/model"
	"github.com/Leganyst/services-marketplace/internal/service"
)

type contractView struct {
	ID                string    `json:"id"`
	ClientID          string    `json:"client_id"`
	ProviderID        string    `json:"provider_id"`
	ServiceTitle      string    `json:"service_title"`
	ServiceRate       string    `json:"service_rate"`
	Status            string    `json:"status"`
	ClientDeposited   bool      `json:"client_deposited"`
	ClientAction      string    `json:"client_action"`
	ProviderAction    string    `json:"provider_action"`
	CommissionRate    string    `json:"commission_rate"`
	DisputeResolution string    `json:"dispute_resolution,omitempty"`
	AvailableActions  []string  `json:"available_actions,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toContractView(c *model.Contract, actions []lifecycle.Command) contractView {
	v := contractView{
		ID:              c.ID.String(),
		ClientID:        c.ClientID.String(),
		ProviderID:      c.ProviderID.String(),
		ServiceTitle:    c.ServiceTitle,
		ServiceRate:     c.ServiceRate.StringFixed(2),
		Status:          string(c.Status),
		ClientDeposited: c.ClientDeposited,
		ClientAction:    string(c.ClientAction),
		ProviderAction:  string(c.ProviderAction),
		CommissionRate:  c.CommissionRate.String(),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.DisputeResolution != nil {
		v.DisputeResolution = string(*c.DisputeResolution)
	}
	for _, a := range actions {
		v.AvailableActions = append(v.AvailableActions, string(a))
	}
	return v
}

type quoteView struct {
	ServiceRate        string `json:"service_rate"`
	ClientSurcharge    string `json:"client_surcharge"`
	ClientTotal        string `json:"client_total"`
	ProviderAmount     string `json:"provider_amount"`
	PlatformCommission string `json:"platform_commission"`
}

func toQuoteView(q lifecycle.Quote) quoteView {
	return quoteView{
		ServiceRate:        q.ServiceRate.StringFixed(2),
		ClientSurcharge:    q.ClientSurcharge.StringFixed(2),
		ClientTotal:        q.ClientTotal.StringFixed(2),
		ProviderAmount:     q.ProviderAmount.StringFixed(2),
		PlatformCommission: q.PlatformCommission.StringFixed(2),
	}
}

type listingView struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	DisplayName  string `json:"display_name"`
	ServiceTitle string `json:"service_title"`
	ServiceRate  string `json:"service_rate"`
	Description  string `json:"description,omitempty"`
}

func toListingView(p *model.Provider) *listingView {
	if p == nil {
		return nil
	}
	return &listingView{
		ID:           p.ID.String(),
		UserID:       p.UserID.String(),
		DisplayName:  p.DisplayName,
		ServiceTitle: p.ServiceTitle,
		ServiceRate:  p.ServiceRate.StringFixed(2),
		Description:  p.Description,
	}
}

type userView struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	DisplayName  string       `json:"display_name"`
	ContactPhone string       `json:"contact_phone,omitempty"`
	Role         string       `json:"role"`
	Listing      *listingView `json:"listing,omitempty"`
}

func toUserView(p *service.Profile) userView {
	return userView{
		ID:           p.User.ID.String(),
		Email:        p.User.Email,
		DisplayName:  p.User.DisplayName,
		ContactPhone: p.User.ContactPhone,
		Role:         p.Role,
		Listing:      toListingView(p.Listing),
	}
}

type messageView struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

func toMessageView(m *model.Message) messageView {
	return messageView{
		ID:          m.ID.String(),
		SenderID:    m.SenderID.String(),
		RecipientID: m.RecipientID.String(),
		Body:        m.Body,
		CreatedAt:   m.CreatedAt,
	}
}
