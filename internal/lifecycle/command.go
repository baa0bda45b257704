package lifecycle

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/services-marketplace/internal/model"
)

// Role: в каком качестве пользователь действует над контрактом.
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// RoleOf определяет роль участника. ok=false, если пользователь не сторона сделки.
func RoleOf(c *model.Contract, actorID uuid.UUID) (Role, bool) {
	switch {
	case actorID == uuid.Nil:
		return "", false
	case c.ClientID == actorID:
		return RoleClient, true
	case c.ProviderID == actorID:
		return RoleProvider, true
	default:
		return "", false
	}
}

// Command: закрытый набор команд, которые двигают контракт.
type Command string

const (
	CommandMakeOffer     Command = "make_offer"
	CommandDeposit       Command = "deposit"
	CommandFinalize      Command = "finalize"
	CommandCancel        Command = "cancel"
	CommandDispute       Command = "dispute"
	CommandCancelDispute Command = "cancel_dispute"
	CommandResolve       Command = "resolve"
)

// ParseAction разбирает действие стороны (finalize|cancel|dispute|cancel_dispute).
// Оффер, депозит и арбитраж идут через отдельные операции.
func ParseAction(s string) (Command, error) {
	switch c := Command(strings.ToLower(strings.TrimSpace(s))); c {
	case CommandFinalize, CommandCancel, CommandDispute, CommandCancelDispute:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// ParseResolution принимает и snake_case, и camelCase ("toClient").
func ParseResolution(s string) (model.DisputeResolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "to_client", "toclient", "client":
		return model.DisputeResolutionToClient, nil
	case "to_provider", "toprovider", "provider":
		return model.DisputeResolutionToProvider, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
}

// Request: команда вместе с ролью инициатора и параметрами.
type Request struct {
	Command Command
	Role    Role

	// Только для CommandMakeOffer.
	NewRate decimal.Decimal
	// Только для CommandResolve.
	Resolution model.DisputeResolution
}
