package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/services-marketplace/internal/model"
)

func newPending(t *testing.T) *model.Contract {
	t.Helper()
	return &model.Contract{
		ID:             uuid.New(),
		ClientID:       uuid.New(),
		ProviderID:     uuid.New(),
		ServiceTitle:   "Logo design",
		ServiceRate:    decimal.NewFromInt(50),
		Status:         model.ContractStatusPending,
		ClientAction:   model.PartyActionNone,
		ProviderAction: model.PartyActionNone,
		CommissionRate: model.DefaultCommissionRate,
		CreatedAt:      time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func mustApply(t *testing.T, c *model.Contract, req Request) *Outcome {
	t.Helper()
	out, err := Apply(c, req)
	if err != nil {
		t.Fatalf("Apply(%s as %s) on %s: %v", req.Command, req.Role, c.Status, err)
	}
	return out
}

// newActive проводит контракт через оффер и депозит.
func newActive(t *testing.T) *model.Contract {
	t.Helper()
	c := newPending(t)
	c = mustApply(t, c, Request{Command: CommandMakeOffer, Role: RoleProvider, NewRate: decimal.NewFromInt(60)}).Contract
	return mustApply(t, c, Request{Command: CommandDeposit, Role: RoleClient}).Contract
}

func TestApply_OfferThenDeposit(t *testing.T) {
	c := newPending(t)

	out := mustApply(t, c, Request{Command: CommandMakeOffer, Role: RoleProvider, NewRate: decimal.NewFromInt(60)})
	if out.To != model.ContractStatusOffered {
		t.Fatalf("status = %s, want offered", out.To)
	}
	if !out.Contract.ServiceRate.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("rate = %s, want 60", out.Contract.ServiceRate)
	}
	if out.Contract.ProviderAction != model.PartyActionMakeOffer {
		t.Fatalf("provider action = %s, want make_offer", out.Contract.ProviderAction)
	}
	if c.Status != model.ContractStatusPending || !c.ServiceRate.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("input contract mutated: %+v", c)
	}

	out = mustApply(t, out.Contract, Request{Command: CommandDeposit, Role: RoleClient})
	if out.To != model.ContractStatusActive || !out.Contract.ClientDeposited {
		t.Fatalf("after deposit: status=%s deposited=%v", out.To, out.Contract.ClientDeposited)
	}
	if out.Contract.ClientAction != model.PartyActionAcceptOffer {
		t.Fatalf("client action = %s, want accept_offer", out.Contract.ClientAction)
	}
}

func TestApply_MakeOfferRequiresProvider(t *testing.T) {
	_, err := Apply(newPending(t), Request{Command: CommandMakeOffer, Role: RoleClient, NewRate: decimal.NewFromInt(10)})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestApply_MakeOfferNegativeRate(t *testing.T) {
	_, err := Apply(newPending(t), Request{Command: CommandMakeOffer, Role: RoleProvider, NewRate: decimal.NewFromInt(-1)})
	if !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}

func TestApply_DepositTwice(t *testing.T) {
	_, err := Apply(newActive(t), Request{Command: CommandDeposit, Role: RoleClient})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestApply_DepositOnPending(t *testing.T) {
	_, err := Apply(newPending(t), Request{Command: CommandDeposit, Role: RoleClient})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestApply_ProviderCancelsPending(t *testing.T) {
	out := mustApply(t, newPending(t), Request{Command: CommandCancel, Role: RoleProvider})
	if out.To != model.ContractStatusCancelled {
		t.Fatalf("status = %s, want cancelled", out.To)
	}
	if !out.ClearConversation {
		t.Fatalf("expected conversation cleanup on cancel")
	}
	if out.Payout != nil {
		t.Fatalf("cancel must not produce a payout")
	}
	if out.Contract.ProviderAction != model.PartyActionCancel {
		t.Fatalf("provider action = %s, want cancel", out.Contract.ProviderAction)
	}
}

func TestApply_CancelOffered(t *testing.T) {
	c := mustApply(t, newPending(t), Request{Command: CommandMakeOffer, Role: RoleProvider, NewRate: decimal.NewFromInt(70)}).Contract
	out := mustApply(t, c, Request{Command: CommandCancel, Role: RoleClient})
	if out.To != model.ContractStatusCancelled {
		t.Fatalf("status = %s, want cancelled", out.To)
	}
}

func TestApply_BothFinalize(t *testing.T) {
	c := newActive(t)

	out := mustApply(t, c, Request{Command: CommandFinalize, Role: RoleClient})
	if out.To != model.ContractStatusActive || out.StatusChanged() {
		t.Fatalf("lone finalize should wait for counterparty, got %s", out.To)
	}
	if out.ClearConversation {
		t.Fatalf("no cleanup while active")
	}

	out = mustApply(t, out.Contract, Request{Command: CommandFinalize, Role: RoleProvider})
	if out.To != model.ContractStatusFinalized {
		t.Fatalf("status = %s, want finalized", out.To)
	}
	if out.Payout == nil {
		t.Fatalf("expected payout")
	}
	if !out.Payout.ProviderAmount.Equal(decimal.RequireFromString("54.00")) {
		t.Fatalf("provider amount = %s, want 54.00", out.Payout.ProviderAmount)
	}
	if !out.Payout.PlatformCommission.Equal(decimal.RequireFromString("6.00")) {
		t.Fatalf("commission = %s, want 6.00", out.Payout.PlatformCommission)
	}
	if !out.ClearConversation {
		t.Fatalf("expected cleanup on finalize")
	}
}

func TestApply_FinalizeCancelConflictEscalates(t *testing.T) {
	c := newActive(t)
	c = mustApply(t, c, Request{Command: CommandFinalize, Role: RoleClient}).Contract
	out := mustApply(t, c, Request{Command: CommandCancel, Role: RoleProvider})
	if out.To != model.ContractStatusDisputed {
		t.Fatalf("status = %s, want disputed", out.To)
	}
	if out.Payout != nil || out.ClearConversation {
		t.Fatalf("escalation must not move funds or clear messages")
	}

	// Спор возник не от клиента — отозвать его клиент не может.
	if _, err := Apply(out.Contract, Request{Command: CommandCancelDispute, Role: RoleClient}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for cancel_dispute, got %v", err)
	}
}

func TestApply_ClientEarlyCancelActive(t *testing.T) {
	out := mustApply(t, newActive(t), Request{Command: CommandCancel, Role: RoleClient})
	if out.To != model.ContractStatusCancelled {
		t.Fatalf("status = %s, want cancelled", out.To)
	}
}

func TestApply_RepeatedAction(t *testing.T) {
	c := mustApply(t, newActive(t), Request{Command: CommandFinalize, Role: RoleClient}).Contract

	for _, cmd := range []Command{CommandFinalize, CommandCancel, CommandDispute} {
		_, err := Apply(c, Request{Command: cmd, Role: RoleClient})
		if !errors.Is(err, ErrRepeatedAction) {
			t.Fatalf("%s after finalize: expected ErrRepeatedAction, got %v", cmd, err)
		}
	}
}

func TestApply_DisputeAndWithdraw(t *testing.T) {
	out := mustApply(t, newActive(t), Request{Command: CommandDispute, Role: RoleClient})
	if out.To != model.ContractStatusDisputed || out.Contract.ClientAction != model.PartyActionDispute {
		t.Fatalf("after dispute: status=%s client=%s", out.To, out.Contract.ClientAction)
	}

	back := mustApply(t, out.Contract, Request{Command: CommandCancelDispute, Role: RoleClient})
	if back.To != model.ContractStatusActive || back.Contract.ClientAction != model.PartyActionAcceptOffer {
		t.Fatalf("after cancel_dispute: status=%s client=%s", back.To, back.Contract.ClientAction)
	}
}

func TestApply_ProviderCannotDispute(t *testing.T) {
	_, err := Apply(newActive(t), Request{Command: CommandDispute, Role: RoleProvider})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestApply_ResolveDispute(t *testing.T) {
	disputed := mustApply(t, newActive(t), Request{Command: CommandDispute, Role: RoleClient}).Contract

	toProvider := mustApply(t, disputed, Request{Command: CommandResolve, Role: RoleAdmin, Resolution: model.DisputeResolutionToProvider})
	if toProvider.To != model.ContractStatusFinalizedByDispute {
		t.Fatalf("status = %s, want finalized_by_dispute", toProvider.To)
	}
	if toProvider.Contract.DisputeResolution == nil || *toProvider.Contract.DisputeResolution != model.DisputeResolutionToProvider {
		t.Fatalf("resolution not recorded: %v", toProvider.Contract.DisputeResolution)
	}
	if toProvider.Payout == nil || !toProvider.Payout.ProviderAmount.Equal(decimal.RequireFromString("54")) {
		t.Fatalf("unexpected payout: %+v", toProvider.Payout)
	}
	if !toProvider.ClearConversation {
		t.Fatalf("expected cleanup on resolution")
	}

	toClient := mustApply(t, disputed, Request{Command: CommandResolve, Role: RoleAdmin, Resolution: model.DisputeResolutionToClient})
	if toClient.Payout == nil || !toClient.Payout.ClientRefund.Equal(decimal.NewFromInt(60)) || !toClient.Payout.PlatformCommission.IsZero() {
		t.Fatalf("unexpected refund payout: %+v", toClient.Payout)
	}
}

func TestApply_ResolveRequiresAdmin(t *testing.T) {
	disputed := mustApply(t, newActive(t), Request{Command: CommandDispute, Role: RoleClient}).Contract
	_, err := Apply(disputed, Request{Command: CommandResolve, Role: RoleClient, Resolution: model.DisputeResolutionToClient})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestApply_ResolveNotDisputed(t *testing.T) {
	_, err := Apply(newActive(t), Request{Command: CommandResolve, Role: RoleAdmin, Resolution: model.DisputeResolutionToClient})
	if !errors.Is(err, ErrNotResolvable) {
		t.Fatalf("expected ErrNotResolvable, got %v", err)
	}
}

func TestApply_TerminalImmutable(t *testing.T) {
	cancelled := mustApply(t, newPending(t), Request{Command: CommandCancel, Role: RoleClient}).Contract

	c := newActive(t)
	c = mustApply(t, c, Request{Command: CommandFinalize, Role: RoleClient}).Contract
	finalized := mustApply(t, c, Request{Command: CommandFinalize, Role: RoleProvider}).Contract

	commands := []Command{
		CommandMakeOffer, CommandDeposit, CommandFinalize, CommandCancel,
		CommandDispute, CommandCancelDispute,
	}
	for _, terminal := range []*model.Contract{cancelled, finalized} {
		for _, cmd := range commands {
			for _, role := range []Role{RoleClient, RoleProvider, RoleAdmin} {
				if _, err := Apply(terminal, Request{Command: cmd, Role: role}); !errors.Is(err, ErrInvalidState) {
					t.Fatalf("%s as %s on %s: expected ErrInvalidState, got %v", cmd, role, terminal.Status, err)
				}
			}
		}
		if _, err := Apply(terminal, Request{Command: CommandResolve, Role: RoleAdmin, Resolution: model.DisputeResolutionToClient}); !errors.Is(err, ErrNotResolvable) {
			t.Fatalf("resolve on %s: expected ErrNotResolvable, got %v", terminal.Status, err)
		}
	}
}

func TestApply_DepositNeverReverts(t *testing.T) {
	c := newActive(t)
	for _, cmd := range []Command{CommandFinalize, CommandCancel, CommandDispute} {
		for _, role := range []Role{RoleClient, RoleProvider} {
			out, err := Apply(c, Request{Command: cmd, Role: role})
			if err != nil {
				continue
			}
			if !out.Contract.ClientDeposited {
				t.Fatalf("%s as %s reverted the deposit flag", cmd, role)
			}
		}
	}
}

func TestAllowed(t *testing.T) {
	c := newPending(t)
	if !Allowed(c, RoleProvider, CommandMakeOffer) {
		t.Fatalf("provider should be able to make an offer on pending")
	}
	if Allowed(c, RoleClient, CommandFinalize) {
		t.Fatalf("finalize must not be allowed on pending")
	}
}

func TestRoleOf(t *testing.T) {
	c := newPending(t)
	if r, ok := RoleOf(c, c.ClientID); !ok || r != RoleClient {
		t.Fatalf("RoleOf(client) = %s, %v", r, ok)
	}
	if r, ok := RoleOf(c, c.ProviderID); !ok || r != RoleProvider {
		t.Fatalf("RoleOf(provider) = %s, %v", r, ok)
	}
	if _, ok := RoleOf(c, uuid.New()); ok {
		t.Fatalf("stranger must not get a role")
	}
	if _, ok := RoleOf(c, uuid.Nil); ok {
		t.Fatalf("nil actor must not get a role")
	}
}

func TestParseAction(t *testing.T) {
	for _, s := range []string{"finalize", "cancel", "dispute", "cancel_dispute", " Finalize "} {
		if _, err := ParseAction(s); err != nil {
			t.Fatalf("ParseAction(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "deposit", "make_offer", "resolve", "delete"} {
		if _, err := ParseAction(s); !errors.Is(err, ErrInvalidAction) {
			t.Fatalf("ParseAction(%q): expected ErrInvalidAction, got %v", s, err)
		}
	}
}

func TestParseResolution(t *testing.T) {
	if r, err := ParseResolution("toClient"); err != nil || r != model.DisputeResolutionToClient {
		t.Fatalf("toClient -> %s, %v", r, err)
	}
	if r, err := ParseResolution("to_provider"); err != nil || r != model.DisputeResolutionToProvider {
		t.Fatalf("to_provider -> %s, %v", r, err)
	}
	if _, err := ParseResolution("split"); !errors.Is(err, ErrInvalidResolution) {
		t.Fatalf("expected ErrInvalidResolution, got %v", err)
	}
}
