package lifecycle

import (
	"fmt"

	"github.com/Leganyst/services-marketplace/internal/model"
)

// Outcome: результат успешного перехода. Contract — новая копия,
// исходный контракт Apply не трогает.
type Outcome struct {
	Contract *model.Contract
	From     model.ContractStatus
	To       model.ContractStatus

	// Контракт закрыт — переписку сторон нужно очистить.
	ClearConversation bool
	// Заполнено, если закрытие сопровождается движением денег.
	Payout *Payout
}

// StatusChanged: переход сменил статус (а не только записал действие стороны).
func (o *Outcome) StatusChanged() bool {
	return o.From != o.To
}

type transitionKey struct {
	from model.ContractStatus
	cmd  Command
}

type transition struct {
	roles []Role
	guard func(c *model.Contract, req Request) error
	apply func(c *model.Contract, req Request)
}

func (t transition) allows(role Role) bool {
	for _, r := range t.roles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	parties    = []Role{RoleClient, RoleProvider}
	clientOnly = []Role{RoleClient}
)

// transitions: таблица переходов. Всё, чего в ней нет, — ErrInvalidState.
var transitions = map[transitionKey]transition{
	{model.ContractStatusPending, CommandMakeOffer}: {
		roles: []Role{RoleProvider},
		guard: func(c *model.Contract, req Request) error {
			if req.NewRate.IsNegative() {
				return ErrInvalidRate
			}
			return nil
		},
		apply: func(c *model.Contract, req Request) {
			c.ServiceRate = req.NewRate
			c.ProviderAction = model.PartyActionMakeOffer
			c.Status = model.ContractStatusOffered
		},
	},
	{model.ContractStatusPending, CommandCancel}: {
		roles: parties,
		guard: ownSlotOpen,
		apply: cancelNow,
	},
	{model.ContractStatusOffered, CommandCancel}: {
		roles: parties,
		guard: func(c *model.Contract, req Request) error {
			if c.ClientDeposited {
				return fmt.Errorf("%w: funds already deposited", ErrInvalidState)
			}
			return ownSlotOpen(c, req)
		},
		apply: cancelNow,
	},
	{model.ContractStatusOffered, CommandDeposit}: {
		roles: clientOnly,
		guard: func(c *model.Contract, req Request) error {
			if c.ClientDeposited {
				return fmt.Errorf("%w: funds already deposited", ErrInvalidState)
			}
			return nil
		},
		apply: func(c *model.Contract, req Request) {
			c.ClientDeposited = true
			c.ClientAction = model.PartyActionAcceptOffer
			c.Status = model.ContractStatusActive
		},
	},
	{model.ContractStatusActive, CommandDispute}: {
		roles: clientOnly,
		guard: func(c *model.Contract, req Request) error {
			if !c.ClientDeposited {
				return fmt.Errorf("%w: nothing deposited to dispute", ErrInvalidState)
			}
			return ownSlotOpen(c, req)
		},
		apply: func(c *model.Contract, req Request) {
			c.ClientAction = model.PartyActionDispute
			c.Status = model.ContractStatusDisputed
		},
	},
	{model.ContractStatusActive, CommandFinalize}: {
		roles: parties,
		guard: ownSlotOpen,
		apply: recordJoint(model.PartyActionFinalize),
	},
	{model.ContractStatusActive, CommandCancel}: {
		roles: parties,
		guard: ownSlotOpen,
		apply: recordJoint(model.PartyActionCancel),
	},
	{model.ContractStatusDisputed, CommandCancelDispute}: {
		roles: clientOnly,
		guard: func(c *model.Contract, req Request) error {
			if c.ClientAction != model.PartyActionDispute {
				return fmt.Errorf("%w: dispute was not raised by the client", ErrInvalidState)
			}
			return nil
		},
		apply: func(c *model.Contract, req Request) {
			c.ClientAction = model.PartyActionAcceptOffer
			c.Status = model.ContractStatusActive
		},
	},
	{model.ContractStatusDisputed, CommandResolve}: {
		roles: []Role{RoleAdmin},
		guard: func(c *model.Contract, req Request) error {
			switch req.Resolution {
			case model.DisputeResolutionToClient, model.DisputeResolutionToProvider:
				return nil
			default:
				return fmt.Errorf("%w: %q", ErrInvalidResolution, req.Resolution)
			}
		},
		apply: func(c *model.Contract, req Request) {
			r := req.Resolution
			c.DisputeResolution = &r
			c.Status = model.ContractStatusFinalizedByDispute
		},
	},
}

// Apply проверяет команду по таблице и возвращает новое состояние контракта.
// Валидация полностью предшествует изменению копии.
func Apply(c *model.Contract, req Request) (*Outcome, error) {
	if req.Command == CommandResolve && c.Status != model.ContractStatusDisputed {
		return nil, fmt.Errorf("%w: status is %s", ErrNotResolvable, c.Status)
	}
	if c.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: contract is %s", ErrInvalidState, c.Status)
	}

	t, ok := transitions[transitionKey{from: c.Status, cmd: req.Command}]
	if !ok {
		return nil, fmt.Errorf("%w: cannot %s a %s contract", ErrInvalidState, req.Command, c.Status)
	}
	if !t.allows(req.Role) {
		return nil, fmt.Errorf("%w: %s cannot %s", ErrUnauthorized, req.Role, req.Command)
	}
	if t.guard != nil {
		if err := t.guard(c, req); err != nil {
			return nil, err
		}
	}

	next := c.Clone()
	t.apply(next, req)

	out := &Outcome{
		Contract:          next,
		From:              c.Status,
		To:                next.Status,
		ClearConversation: next.Status.IsTerminal(),
	}
	if p, ok := PayoutFor(next); ok {
		out.Payout = &p
	}
	return out, nil
}

// Allowed сообщает, допустима ли команда для роли в текущем состоянии.
// Удобно для UI: какие кнопки показывать.
func Allowed(c *model.Contract, role Role, cmd Command) bool {
	req := Request{Command: cmd, Role: role}
	if cmd == CommandResolve {
		req.Resolution = model.DisputeResolutionToClient
	}
	_, err := Apply(c, req)
	return err == nil
}

func ownSlotOpen(c *model.Contract, req Request) error {
	if slot(c, req.Role).IsFinal() {
		return fmt.Errorf("%w: %s already chose %s", ErrRepeatedAction, req.Role, slot(c, req.Role))
	}
	return nil
}

func cancelNow(c *model.Contract, req Request) {
	setSlot(c, req.Role, model.PartyActionCancel)
	c.Status = model.ContractStatusCancelled
}

func recordJoint(action model.PartyAction) func(c *model.Contract, req Request) {
	return func(c *model.Contract, req Request) {
		setSlot(c, req.Role, action)
		c.Status = Resolve(c.ClientAction, c.ProviderAction, c.Status)
	}
}

func slot(c *model.Contract, role Role) model.PartyAction {
	if role == RoleClient {
		return c.ClientAction
	}
	return c.ProviderAction
}

func setSlot(c *model.Contract, role Role, action model.PartyAction) {
	if role == RoleClient {
		c.ClientAction = action
		return
	}
	c.ProviderAction = action
}
