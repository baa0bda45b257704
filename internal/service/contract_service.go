package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Leganyst/services-marketplace/internal/identity"
	"github.com/Leganyst/services-marketplace/internal/lifecycle"
	"github.com/Leganyst/services-marketplace/internal/logger"
	"github.com/Leganyst/services-marketplace/internal/model"
	"github.com/Leganyst/services-marketplace/internal/notify"
	"github.com/Leganyst/services-marketplace/internal/repository"
)

// Очистка переписки сторон при закрытии контракта.
type ConversationCleaner interface {
	ClearConversation(ctx context.Context, user1, user2 uuid.UUID) (int64, error)
}

// Карточки исполнителей, из которых берутся название и ставка нового контракта.
type ProviderDirectory interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error)
}

// Rates: коммерческие параметры площадки.
type Rates struct {
	// Доля платформы с выплаты исполнителю, фиксируется в контракте при создании.
	Commission decimal.Decimal
	// Надбавка клиента, только для расчёта Quote.
	ClientSurcharge decimal.Decimal
}

func DefaultRates() Rates {
	return Rates{
		Commission:      model.DefaultCommissionRate,
		ClientSurcharge: decimal.RequireFromString("0.05"),
	}
}

// ContractDeps: зависимости ContractService. Contracts и Users обязательны,
// остальное можно не передавать.
type ContractDeps struct {
	Contracts   repository.ContractRepository
	Users       identity.UserStore
	Providers   ProviderDirectory
	Messages    ConversationCleaner
	Settlements repository.SettlementRepository
	Events      repository.EventRepository
	Notifier    notify.Notifier
}

// ContractService: операции жизненного цикла контракта.
// Каждая операция — атомарный read-check-write под мьютексом контракта.
type ContractService struct {
	contracts   repository.ContractRepository
	users       identity.UserStore
	providers   ProviderDirectory
	messages    ConversationCleaner
	settlements repository.SettlementRepository
	events      repository.EventRepository
	notifier    notify.Notifier

	rates Rates
	locks *lockSet
}

func NewContractService(deps ContractDeps, rates Rates) *ContractService {
	n := deps.Notifier
	if n == nil {
		n = notify.Nop{}
	}
	return &ContractService{
		contracts:   deps.Contracts,
		users:       deps.Users,
		providers:   deps.Providers,
		messages:    deps.Messages,
		settlements: deps.Settlements,
		events:      deps.Events,
		notifier:    n,
		rates:       rates,
		locks:       newLockSet(),
	}
}

// CreateContract открывает контракт в статусе pending.
// У пары клиент/исполнитель может быть только один незакрытый контракт.
func (s *ContractService) CreateContract(ctx context.Context, clientID, providerID uuid.UUID, title string, rate decimal.Decimal) (*model.Contract, error) {
	if clientID == uuid.Nil || providerID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if clientID == providerID {
		return nil, ErrInvalidParties
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: service title is required", ErrInvalidInput)
	}
	if rate.IsNegative() {
		return nil, ErrInvalidRate
	}
	client, err := identity.ResolveActor(ctx, s.users, clientID)
	if err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}
	if client.Role != model.RoleCodeClient {
		return nil, ErrNotClient
	}
	provider, err := identity.ResolveActor(ctx, s.users, providerID)
	if err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}
	if provider.Role != model.RoleCodeProvider {
		return nil, ErrNotProvider
	}

	unlock := s.locks.Lock("pair:" + clientID.String() + ":" + providerID.String())
	defer unlock()

	c := &model.Contract{
		ClientID:       clientID,
		ProviderID:     providerID,
		ServiceTitle:   title,
		ServiceRate:    rate.Round(2),
		Status:         model.ContractStatusPending,
		ClientAction:   model.PartyActionNone,
		ProviderAction: model.PartyActionNone,
		CommissionRate: s.rates.Commission,
	}
	if err := s.contracts.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrOpenContractExists) {
			s.notifier.Notify(notify.Notification{UserID: clientID, Kind: notify.KindError, Message: "You already have an open contract with this provider"})
			return nil, ErrDuplicateEngagement
		}
		return nil, fmt.Errorf("create contract: %w", err)
	}

	logger.With(
		zap.String("contract_id", c.ID.String()),
		zap.String("client_id", clientID.String()),
		zap.String("provider_id", providerID.String()),
		zap.String("rate", c.ServiceRate.StringFixed(2)),
	).Info("contract created")

	s.recordEvent(ctx, model.EventTypeContractCreated, clientID, c.ID, map[string]any{
		"status":        c.Status,
		"service_title": c.ServiceTitle,
		"service_rate":  c.ServiceRate.StringFixed(2),
	})
	s.notifyParties(c, "Contract request sent", "New contract request received")

	return c, nil
}

// CreateContractFromListing берёт название и ставку из карточки исполнителя.
func (s *ContractService) CreateContractFromListing(ctx context.Context, clientID, providerID uuid.UUID) (*model.Contract, error) {
	if s.providers == nil {
		return nil, ErrProviderNotFound
	}
	listing, err := s.providers.GetByUserID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}
	return s.CreateContract(ctx, clientID, providerID, listing.ServiceTitle, listing.ServiceRate)
}

// MakeOffer: исполнитель предлагает новую ставку по pending-контракту.
func (s *ContractService) MakeOffer(ctx context.Context, contractID, actorID uuid.UUID, newRate decimal.Decimal) (*model.Contract, error) {
	return s.transition(ctx, contractID, actorID, model.EventTypeOfferMade, func(c *model.Contract) (lifecycle.Request, error) {
		role, err := partyRole(c, actorID)
		if err != nil {
			return lifecycle.Request{}, err
		}
		// знак проверяем до округления: -0.004 не должно стать 0.00
		if newRate.IsNegative() {
			return lifecycle.Request{}, ErrInvalidRate
		}
		return lifecycle.Request{Command: lifecycle.CommandMakeOffer, Role: role, NewRate: newRate.Round(2)}, nil
	})
}

// DepositFunds: клиент вносит средства (симуляция), контракт становится active.
func (s *ContractService) DepositFunds(ctx context.Context, contractID, actorID uuid.UUID) (*model.Contract, error) {
	return s.transition(ctx, contractID, actorID, model.EventTypeFundsDeposited, func(c *model.Contract) (lifecycle.Request, error) {
		role, err := partyRole(c, actorID)
		if err != nil {
			return lifecycle.Request{}, err
		}
		return lifecycle.Request{Command: lifecycle.CommandDeposit, Role: role}, nil
	})
}

// HandleContractAction применяет действие стороны: finalize, cancel, dispute
// или cancel_dispute.
func (s *ContractService) HandleContractAction(ctx context.Context, contractID, actorID uuid.UUID, action lifecycle.Command) (*model.Contract, error) {
	cmd, err := lifecycle.ParseAction(string(action))
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, contractID, actorID, model.EventTypeActionRecorded, func(c *model.Contract) (lifecycle.Request, error) {
		role, err := partyRole(c, actorID)
		if err != nil {
			return lifecycle.Request{}, err
		}
		return lifecycle.Request{Command: cmd, Role: role}, nil
	})
}

// ResolveDispute: администратор закрывает спор в пользу одной из сторон.
// Роль администратора перепроверяется по справочнику пользователей;
// участник сделки свой же спор разрешить не может.
func (s *ContractService) ResolveDispute(ctx context.Context, contractID, adminID uuid.UUID, resolution model.DisputeResolution) (*model.Contract, error) {
	if _, err := identity.RequireAdmin(ctx, s.users, adminID); err != nil {
		if errors.Is(err, identity.ErrNotAdmin) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return nil, err
	}
	return s.transition(ctx, contractID, adminID, model.EventTypeDisputeResolved, func(c *model.Contract) (lifecycle.Request, error) {
		if c.IsParticipant(adminID) {
			return lifecycle.Request{}, fmt.Errorf("%w: admin is a party to this contract", ErrUnauthorized)
		}
		return lifecycle.Request{Command: lifecycle.CommandResolve, Role: lifecycle.RoleAdmin, Resolution: resolution}, nil
	})
}

// GetContract возвращает контракт участнику сделки или администратору.
func (s *ContractService) GetContract(ctx context.Context, contractID, actorID uuid.UUID) (*model.Contract, error) {
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if c.IsParticipant(actorID) {
		return c, nil
	}
	if _, err := identity.RequireAdmin(ctx, s.users, actorID); err != nil {
		return nil, ErrUnauthorized
	}
	return c, nil
}

// GetContractsForUser: все контракты пользователя, новые первыми.
func (s *ContractService) GetContractsForUser(ctx context.Context, userID uuid.UUID) ([]model.Contract, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	return s.contracts.ListByParticipant(ctx, userID)
}

// HasActiveOrPendingContract: есть ли у пары контракт в pending/offered/active.
func (s *ContractService) HasActiveOrPendingContract(ctx context.Context, clientID, providerID uuid.UUID) (bool, error) {
	return s.contracts.HasActiveOrPending(ctx, clientID, providerID)
}

// GetLatestContractBetweenUsers возвращает nil без ошибки, если контрактов не было.
func (s *ContractService) GetLatestContractBetweenUsers(ctx context.Context, user1, user2 uuid.UUID) (*model.Contract, error) {
	c, err := s.contracts.LatestBetween(ctx, user1, user2)
	if errors.Is(err, repository.ErrContractNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Quote: расчёт сумм для отображения участнику.
func (s *ContractService) Quote(ctx context.Context, contractID, actorID uuid.UUID) (lifecycle.Quote, error) {
	c, err := s.GetContract(ctx, contractID, actorID)
	if err != nil {
		return lifecycle.Quote{}, err
	}
	return lifecycle.QuoteFor(c, s.rates.ClientSurcharge), nil
}

// AvailableActions: команды, которые пользователь может выполнить сейчас.
func (s *ContractService) AvailableActions(c *model.Contract, actorID uuid.UUID) []lifecycle.Command {
	role, ok := lifecycle.RoleOf(c, actorID)
	if !ok {
		return nil
	}
	var out []lifecycle.Command
	for _, cmd := range []lifecycle.Command{
		lifecycle.CommandMakeOffer,
		lifecycle.CommandDeposit,
		lifecycle.CommandFinalize,
		lifecycle.CommandCancel,
		lifecycle.CommandDispute,
		lifecycle.CommandCancelDispute,
	} {
		if lifecycle.Allowed(c, role, cmd) {
			out = append(out, cmd)
		}
	}
	return out
}

// transition: общий путь всех мутаций: блокировка, чтение, проверка по
// таблице переходов, compare-and-swap запись, затем побочные эффекты.
func (s *ContractService) transition(
	ctx context.Context,
	contractID, actorID uuid.UUID,
	eventType model.EventType,
	build func(c *model.Contract) (lifecycle.Request, error),
) (*model.Contract, error) {
	if contractID == uuid.Nil {
		return nil, ErrContractNotFound
	}

	unlock := s.locks.Lock(contractID.String())
	defer unlock()

	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	req, err := build(c)
	if err == nil {
		var out *lifecycle.Outcome
		out, err = lifecycle.Apply(c, req)
		if err == nil {
			if err = s.contracts.Update(ctx, out.Contract); err == nil {
				s.afterTransition(ctx, actorID, req, eventType, out)
				return out.Contract, nil
			}
		}
	}

	logger.With(
		zap.String("contract_id", contractID.String()),
		zap.String("actor_id", actorID.String()),
		zap.String("status", string(c.Status)),
		zap.Error(err),
	).Warn("contract transition rejected")
	s.notifier.Notify(notify.Notification{
		UserID:     actorID,
		Kind:       notify.KindError,
		Message:    errorToast(err),
		ContractID: &contractID,
		Status:     string(c.Status),
	})
	return nil, err
}

// afterTransition выполняет побочные эффекты после записи. Источник истины —
// уже сохранённый контракт, поэтому ошибки здесь только логируются.
func (s *ContractService) afterTransition(ctx context.Context, actorID uuid.UUID, req lifecycle.Request, eventType model.EventType, out *lifecycle.Outcome) {
	c := out.Contract
	log := logger.With(
		zap.String("contract_id", c.ID.String()),
		zap.String("actor_id", actorID.String()),
		zap.String("command", string(req.Command)),
		zap.String("from", string(out.From)),
		zap.String("to", string(out.To)),
	)
	log.Info("contract transition")

	details := map[string]any{
		"command":         req.Command,
		"role":            req.Role,
		"from":            out.From,
		"to":              out.To,
		"client_action":   c.ClientAction,
		"provider_action": c.ProviderAction,
	}
	if req.Command == lifecycle.CommandMakeOffer {
		details["service_rate"] = c.ServiceRate.StringFixed(2)
	}
	if c.DisputeResolution != nil {
		details["resolution"] = *c.DisputeResolution
	}
	s.recordEvent(ctx, eventType, actorID, c.ID, details)
	if out.StatusChanged() {
		s.recordEvent(ctx, model.EventTypeStatusChanged, actorID, c.ID, map[string]any{"from": out.From, "to": out.To})
	}

	if out.Payout != nil && s.settlements != nil {
		st := &model.Settlement{
			ContractID:         c.ID,
			Kind:               out.Payout.Kind,
			ProviderAmount:     out.Payout.ProviderAmount,
			ClientRefund:       out.Payout.ClientRefund,
			PlatformCommission: out.Payout.PlatformCommission,
		}
		if err := s.settlements.Create(ctx, st); err != nil {
			log.Error("settlement not recorded", zap.Error(err))
		} else {
			log.Info("settlement recorded",
				zap.String("provider_amount", st.ProviderAmount.StringFixed(2)),
				zap.String("client_refund", st.ClientRefund.StringFixed(2)),
				zap.String("platform_commission", st.PlatformCommission.StringFixed(2)),
			)
		}
	}

	if out.ClearConversation && s.messages != nil {
		if n, err := s.messages.ClearConversation(ctx, c.ClientID, c.ProviderID); err != nil {
			log.Error("conversation cleanup failed", zap.Error(err))
		} else {
			log.Debug("conversation cleared", zap.Int64("messages", n))
		}
	}

	msg := successToast(req, out)
	s.notifyParties(c, msg, msg)
}

func (s *ContractService) notifyParties(c *model.Contract, toClient, toProvider string) {
	id := c.ID
	s.notifier.Notify(
		notify.Notification{UserID: c.ClientID, Kind: notify.KindSuccess, Message: toClient, ContractID: &id, Status: string(c.Status)},
		notify.Notification{UserID: c.ProviderID, Kind: notify.KindSuccess, Message: toProvider, ContractID: &id, Status: string(c.Status)},
	)
}

func (s *ContractService) recordEvent(ctx context.Context, t model.EventType, userID, contractID uuid.UUID, details map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.Record(ctx, t, &userID, &contractID, details); err != nil {
		logger.With(zap.String("contract_id", contractID.String()), zap.Error(err)).
			Warn("audit event not recorded")
	}
}

func partyRole(c *model.Contract, actorID uuid.UUID) (lifecycle.Role, error) {
	role, ok := lifecycle.RoleOf(c, actorID)
	if !ok {
		return "", fmt.Errorf("%w: user is not a party to this contract", ErrUnauthorized)
	}
	return role, nil
}

func successToast(req lifecycle.Request, out *lifecycle.Outcome) string {
	if !out.StatusChanged() {
		return fmt.Sprintf("%s recorded, waiting for the other party", req.Command)
	}
	switch out.To {
	case model.ContractStatusOffered:
		return "Offer sent: " + out.Contract.ServiceRate.StringFixed(2) + " USD"
	case model.ContractStatusActive:
		if out.From == model.ContractStatusDisputed {
			return "Dispute withdrawn, contract is active again"
		}
		return "Funds deposited, contract is active"
	case model.ContractStatusDisputed:
		return "Contract is disputed and awaits an admin"
	case model.ContractStatusFinalized:
		return "Contract finalized"
	case model.ContractStatusCancelled:
		return "Contract cancelled"
	case model.ContractStatusFinalizedByDispute:
		return "Dispute resolved by admin"
	default:
		return "Contract updated"
	}
}

func errorToast(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "You are not allowed to do this"
	case errors.Is(err, ErrRepeatedAction):
		return "You have already made your choice on this contract"
	case errors.Is(err, ErrNotResolvable):
		return "This contract is not in dispute"
	case errors.Is(err, ErrInvalidState):
		return "This action is not available right now"
	case errors.Is(err, ErrInvalidRate):
		return "Rate must not be negative"
	case errors.Is(err, ErrConcurrentUpdate):
		return "The contract changed, please retry"
	default:
		return "Something went wrong"
	}
}
