package lifecycle

import (
	"github.com/shopspring/decimal"

	"github.com/Leganyst/services-marketplace/internal/model"
)

const centsPlaces = 2

// Payout: распределение ставки при закрытии контракта.
type Payout struct {
	Kind               model.SettlementKind
	ProviderAmount     decimal.Decimal
	ClientRefund       decimal.Decimal
	PlatformCommission decimal.Decimal
}

// Total: сумма всех частей; всегда равна ставке контракта.
func (p Payout) Total() decimal.Decimal {
	return p.ProviderAmount.Add(p.ClientRefund).Add(p.PlatformCommission)
}

// ProviderPayout: исполнителю rate*(1-commission), платформе rate*commission.
// Комиссия округляется до центов, исполнитель получает остаток, поэтому
// сумма частей совпадает со ставкой без погрешности.
func ProviderPayout(rate, commissionRate decimal.Decimal, kind model.SettlementKind) Payout {
	commission := rate.Mul(commissionRate).Round(centsPlaces)
	return Payout{
		Kind:               kind,
		ProviderAmount:     rate.Sub(commission),
		ClientRefund:       decimal.Zero,
		PlatformCommission: commission,
	}
}

// ClientRefund возвращает клиенту всю ставку, комиссия не удерживается.
func ClientRefund(rate decimal.Decimal) Payout {
	return Payout{
		Kind:               model.SettlementKindDisputeToClient,
		ProviderAmount:     decimal.Zero,
		ClientRefund:       rate,
		PlatformCommission: decimal.Zero,
	}
}

// PayoutFor возвращает выплату для терминального контракта с движением денег.
// ok=false для отменённых и незакрытых контрактов.
func PayoutFor(c *model.Contract) (Payout, bool) {
	switch c.Status {
	case model.ContractStatusFinalized:
		return ProviderPayout(c.ServiceRate, c.CommissionRate, model.SettlementKindFinalized), true
	case model.ContractStatusFinalizedByDispute:
		if c.DisputeResolution == nil {
			return Payout{}, false
		}
		if *c.DisputeResolution == model.DisputeResolutionToClient {
			return ClientRefund(c.ServiceRate), true
		}
		return ProviderPayout(c.ServiceRate, c.CommissionRate, model.SettlementKindDisputeToProvider), true
	default:
		return Payout{}, false
	}
}

// Quote: расчёт для отображения клиенту. Надбавка клиента (surcharge)
// к инвариантам контракта не относится.
type Quote struct {
	ServiceRate        decimal.Decimal
	ClientSurcharge    decimal.Decimal
	ClientTotal        decimal.Decimal
	ProviderAmount     decimal.Decimal
	PlatformCommission decimal.Decimal
}

func QuoteFor(c *model.Contract, surchargeRate decimal.Decimal) Quote {
	p := ProviderPayout(c.ServiceRate, c.CommissionRate, model.SettlementKindFinalized)
	surcharge := c.ServiceRate.Mul(surchargeRate).Round(centsPlaces)
	return Quote{
		ServiceRate:        c.ServiceRate,
		ClientSurcharge:    surcharge,
		ClientTotal:        c.ServiceRate.Add(surcharge),
		ProviderAmount:     p.ProviderAmount,
		PlatformCommission: p.PlatformCommission,
	}
}
