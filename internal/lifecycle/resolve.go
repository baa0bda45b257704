package lifecycle

import "github.com/Leganyst/services-marketplace/internal/model"

// Resolve вычисляет совместный исход по двум слотам действий.
// Вне статуса active ничего не меняется.
func Resolve(client, provider model.PartyAction, current model.ContractStatus) model.ContractStatus {
	if current != model.ContractStatusActive {
		return current
	}

	const (
		finalize = model.PartyActionFinalize
		cancel   = model.PartyActionCancel
		dispute  = model.PartyActionDispute
	)

	switch {
	case client == finalize && provider == finalize:
		return model.ContractStatusFinalized
	case client == cancel && provider == cancel:
		return model.ContractStatusCancelled
	case client == finalize && provider == cancel,
		client == cancel && provider == finalize:
		// Конфликт: эскалация на администратора, деньги не двигаются.
		return model.ContractStatusDisputed
	case provider == cancel && client != finalize && client != dispute:
		return model.ContractStatusCancelled
	case client == cancel && provider != finalize && provider != dispute:
		return model.ContractStatusCancelled
	default:
		return current
	}
}
