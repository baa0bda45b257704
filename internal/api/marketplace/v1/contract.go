package marketplacepb

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Contract: контракт в ответах API. Суммы передаются строками с двумя знаками.
type Contract struct {
	Id                string                 `json:"id"`
	ClientId          string                 `json:"client_id"`
	ProviderId        string                 `json:"provider_id"`
	ServiceTitle      string                 `json:"service_title"`
	ServiceRate       string                 `json:"service_rate"`
	Status            string                 `json:"status"`
	ClientDeposited   bool                   `json:"client_deposited"`
	ClientAction      string                 `json:"client_action"`
	ProviderAction    string                 `json:"provider_action"`
	CommissionRate    string                 `json:"commission_rate"`
	DisputeResolution string                 `json:"dispute_resolution,omitempty"`
	CreatedAt         *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt         *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type CreateContractRequest struct {
	ClientId     string `json:"client_id"`
	ProviderId   string `json:"provider_id"`
	ServiceTitle string `json:"service_title,omitempty"`
	ServiceRate  string `json:"service_rate,omitempty"`
	// Взять название и ставку из карточки исполнителя.
	FromListing bool `json:"from_listing,omitempty"`
}

func (x *CreateContractRequest) GetClientId() string {
	if x != nil {
		return x.ClientId
	}
	return ""
}

func (x *CreateContractRequest) GetProviderId() string {
	if x != nil {
		return x.ProviderId
	}
	return ""
}

func (x *CreateContractRequest) GetServiceTitle() string {
	if x != nil {
		return x.ServiceTitle
	}
	return ""
}

func (x *CreateContractRequest) GetServiceRate() string {
	if x != nil {
		return x.ServiceRate
	}
	return ""
}

func (x *CreateContractRequest) GetFromListing() bool {
	if x != nil {
		return x.FromListing
	}
	return false
}

type MakeOfferRequest struct {
	ContractId string `json:"contract_id"`
	ActorId    string `json:"actor_id"`
	NewRate    string `json:"new_rate"`
}

func (x *MakeOfferRequest) GetContractId() string {
	if x != nil {
		return x.ContractId
	}
	return ""
}

func (x *MakeOfferRequest) GetActorId() string {
	if x != nil {
		return x.ActorId
	}
	return ""
}

func (x *MakeOfferRequest) GetNewRate() string {
	if x != nil {
		return x.NewRate
	}
	return ""
}

// ContractRef: контракт и пользователь, от имени которого идёт вызов.
// Используется для депозита, чтения и расчёта суммы.
type ContractRef struct {
	ContractId string `json:"contract_id"`
	ActorId    string `json:"actor_id"`
}

func (x *ContractRef) GetContractId() string {
	if x != nil {
		return x.ContractId
	}
	return ""
}

func (x *ContractRef) GetActorId() string {
	if x != nil {
		return x.ActorId
	}
	return ""
}

type ContractActionRequest struct {
	ContractId string `json:"contract_id"`
	ActorId    string `json:"actor_id"`
	// finalize | cancel | dispute | cancel_dispute
	Action string `json:"action"`
}

func (x *ContractActionRequest) GetContractId() string {
	if x != nil {
		return x.ContractId
	}
	return ""
}

func (x *ContractActionRequest) GetActorId() string {
	if x != nil {
		return x.ActorId
	}
	return ""
}

func (x *ContractActionRequest) GetAction() string {
	if x != nil {
		return x.Action
	}
	return ""
}

type ResolveDisputeRequest struct {
	ContractId string `json:"contract_id"`
	AdminId    string `json:"admin_id"`
	// to_client | to_provider
	Resolution string `json:"resolution"`
}

func (x *ResolveDisputeRequest) GetContractId() string {
	if x != nil {
		return x.ContractId
	}
	return ""
}

func (x *ResolveDisputeRequest) GetAdminId() string {
	if x != nil {
		return x.AdminId
	}
	return ""
}

func (x *ResolveDisputeRequest) GetResolution() string {
	if x != nil {
		return x.Resolution
	}
	return ""
}

type ContractResponse struct {
	// nil, если контракта нет (GetLatestBetween).
	Contract         *Contract `json:"contract,omitempty"`
	AvailableActions []string  `json:"available_actions,omitempty"`
}

func (x *ContractResponse) GetContract() *Contract {
	if x != nil {
		return x.Contract
	}
	return nil
}

type ListContractsRequest struct {
	UserId   string `json:"user_id"`
	Page     int32  `json:"page,omitempty"`
	PageSize int32  `json:"page_size,omitempty"`
}

func (x *ListContractsRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

func (x *ListContractsRequest) GetPage() int32 {
	if x != nil {
		return x.Page
	}
	return 0
}

func (x *ListContractsRequest) GetPageSize() int32 {
	if x != nil {
		return x.PageSize
	}
	return 0
}

type ListContractsResponse struct {
	Contracts  []*Contract `json:"contracts"`
	TotalCount int32       `json:"total_count"`
	HasNext    bool        `json:"has_next"`
}

// PairRequest: два пользователя. Для HasActiveOrPending первый — клиент,
// второй — исполнитель; для GetLatestBetween порядок не важен.
type PairRequest struct {
	FirstUserId  string `json:"first_user_id"`
	SecondUserId string `json:"second_user_id"`
}

func (x *PairRequest) GetFirstUserId() string {
	if x != nil {
		return x.FirstUserId
	}
	return ""
}

func (x *PairRequest) GetSecondUserId() string {
	if x != nil {
		return x.SecondUserId
	}
	return ""
}

type HasActiveOrPendingResponse struct {
	Exists bool `json:"exists"`
}

type QuoteResponse struct {
	ServiceRate        string `json:"service_rate"`
	ClientSurcharge    string `json:"client_surcharge"`
	ClientTotal        string `json:"client_total"`
	ProviderAmount     string `json:"provider_amount"`
	PlatformCommission string `json:"platform_commission"`
}
