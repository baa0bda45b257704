package rpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	marketplacepb "github.com/Leganyst/services-marketplace/internal/api/marketplace/v1"
	"github.com/Leganyst/services-marketplace/internal/lifecycle"
	"github.com/Leganyst/services-marketplace/internal/model"
	"github.com/Leganyst/services-marketplace/internal/pagination"
	"github.com/Leganyst/services-marketplace/internal/service"
)

// ContractServer: gRPC-обёртка над service.ContractService.
type ContractServer struct {
	marketplacepb.UnimplementedContractServiceServer

	contracts *service.ContractService
}

func NewContractServer(contracts *service.ContractService) *ContractServer {
	return &ContractServer{contracts: contracts}
}

func (s *ContractServer) CreateContract(ctx context.Context, req *marketplacepb.CreateContractRequest) (*marketplacepb.ContractResponse, error) {
	clientID, err := parseID("client_id", req.GetClientId())
	if err != nil {
		return nil, err
	}
	providerID, err := parseID("provider_id", req.GetProviderId())
	if err != nil {
		return nil, err
	}

	var c *model.Contract
	if req.GetFromListing() {
		c, err = s.contracts.CreateContractFromListing(ctx, clientID, providerID)
	} else {
		rate, perr := parseAmount("service_rate", req.GetServiceRate())
		if perr != nil {
			return nil, perr
		}
		c, err = s.contracts.CreateContract(ctx, clientID, providerID, req.GetServiceTitle(), rate)
	}
	if err != nil {
		return nil, toStatus("create contract", err)
	}
	return s.response(c, clientID.String()), nil
}

func (s *ContractServer) MakeOffer(ctx context.Context, req *marketplacepb.MakeOfferRequest) (*marketplacepb.ContractResponse, error) {
	contractID, err := parseID("contract_id", req.GetContractId())
	if err != nil {
		return nil, err
	}
	actorID, err := parseID("actor_id", req.GetActorId())
	if err != nil {
		return nil, err
	}
	rate, err := parseAmount("new_rate", req.GetNewRate())
	if err != nil {
		return nil, err
	}

	c, err := s.contracts.MakeOffer(ctx, contractID, actorID, rate)
	if err != nil {
		return nil, toStatus("make offer", err)
	}
	return s.response(c, req.GetActorId()), nil
}

func (s *ContractServer) DepositFunds(ctx context.Context, req *marketplacepb.ContractRef) (*marketplacepb.ContractResponse, error) {
	contractID, err := parseID("contract_id", req.GetContractId())
	if err != nil {
		return nil, err
	}
	actorID, err := parseID("actor_id", req.GetActorId())
	if err != nil {
		return nil, err
	}

	c, err := s.contracts.DepositFunds(ctx, contractID, actorID)
	if err != nil {
		return nil, toStatus("deposit funds", err)
	}
	return s.response(c, req.GetActorId()), nil
}

func (s *ContractServer) HandleContractAction(ctx context.Context, req *marketplacepb.ContractActionRequest) (*marketplacepb.ContractResponse, error) {
	contractID, err := parseID("contract_id", req.GetContractId())
	if err != nil {
		return nil, err
	}
	actorID, err := parseID("actor_id", req.GetActorId())
	if err != nil {
		return nil, err
	}
	action, err := lifecycle.ParseAction(req.GetAction())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	c, err := s.contracts.HandleContractAction(ctx, contractID, actorID, action)
	if err != nil {
		return nil, toStatus("contract action", err)
	}
	return s.response(c, req.GetActorId()), nil
}

func (s *ContractServer) ResolveDispute(ctx context.Context, req *marketplacepb.ResolveDisputeRequest) (*marketplacepb.ContractResponse, error) {
	contractID, err := parseID("contract_id", req.GetContractId())
	if err != nil {
		return nil, err
	}
	adminID, err := parseID("admin_id", req.GetAdminId())
	if err != nil {
		return nil, err
	}
	resolution, err := lifecycle.ParseResolution(req.GetResolution())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	c, err := s.contracts.ResolveDispute(ctx, contractID, adminID, resolution)
	if err != nil {
		return nil, toStatus("resolve dispute", err)
	}
	return &marketplacepb.ContractResponse{Contract: mapContract(c)}, nil
}

func (s *ContractServer) GetContract(ctx context.Context, req *marketplacepb.ContractRef) (*marketplacepb.ContractResponse, error) {
	contractID, err := parseID("contract_id", req.GetContractId())
	if err != nil {
		return nil, err
	}
	actorID, err := parseID("actor_id", req.GetActorId())
	if err != nil {
		return nil, err
	}

	c, err := s.contracts.GetContract(ctx, contractID, actorID)
	if err != nil {
		return nil, toStatus("get contract", err)
	}
	return s.response(c, req.GetActorId()), nil
}

func (s *ContractServer) ListContracts(ctx context.Context, req *marketplacepb.ListContractsRequest) (*marketplacepb.ListContractsResponse, error) {
	userID, err := parseID("user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}

	list, err := s.contracts.GetContractsForUser(ctx, userID)
	if err != nil {
		return nil, toStatus("list contracts", err)
	}

	page := pagination.Paginate(list, int(req.GetPage()), int(req.GetPageSize()))
	resp := &marketplacepb.ListContractsResponse{
		Contracts:  make([]*marketplacepb.Contract, 0, len(page.Items)),
		TotalCount: int32(page.Total),
		HasNext:    page.HasNext,
	}
	for i := range page.Items {
		resp.Contracts = append(resp.Contracts, mapContract(&page.Items[i]))
	}
	return resp, nil
}

func (s *ContractServer) HasActiveOrPending(ctx context.Context, req *marketplacepb.PairRequest) (*marketplacepb.HasActiveOrPendingResponse, error) {
	clientID, err := parseID("first_user_id", req.GetFirstUserId())
	if err != nil {
		return nil, err
	}
	providerID, err := parseID("second_user_id", req.GetSecondUserId())
	if err != nil {
		return nil, err
	}

	ok, err := s.contracts.HasActiveOrPendingContract(ctx, clientID, providerID)
	if err != nil {
		return nil, toStatus("has active or pending", err)
	}
	return &marketplacepb.HasActiveOrPendingResponse{Exists: ok}, nil
}

func (s *ContractServer) GetLatestBetween(ctx context.Context, req *marketplacepb.PairRequest) (*marketplacepb.ContractResponse, error) {
	u1, err := parseID("first_user_id", req.GetFirstUserId())
	if err != nil {
		return nil, err
	}
	u2, err := parseID("second_user_id", req.GetSecondUserId())
	if err != nil {
		return nil, err
	}

	c, err := s.contracts.GetLatestContractBetweenUsers(ctx, u1, u2)
	if err != nil {
		return nil, toStatus("latest contract", err)
	}
	// контракта может не быть, это не ошибка
	return &marketplacepb.ContractResponse{Contract: mapContract(c)}, nil
}

func (s *ContractServer) GetQuote(ctx context.Context, req *marketplacepb.ContractRef) (*marketplacepb.QuoteResponse, error) {
	contractID, err := parseID("contract_id", req.GetContractId())
	if err != nil {
		return nil, err
	}
	actorID, err := parseID("actor_id", req.GetActorId())
	if err != nil {
		return nil, err
	}

	q, err := s.contracts.Quote(ctx, contractID, actorID)
	if err != nil {
		return nil, toStatus("quote", err)
	}
	return &marketplacepb.QuoteResponse{
		ServiceRate:        q.ServiceRate.StringFixed(2),
		ClientSurcharge:    q.ClientSurcharge.StringFixed(2),
		ClientTotal:        q.ClientTotal.StringFixed(2),
		ProviderAmount:     q.ProviderAmount.StringFixed(2),
		PlatformCommission: q.PlatformCommission.StringFixed(2),
	}, nil
}

func (s *ContractServer) response(c *model.Contract, actorID string) *marketplacepb.ContractResponse {
	resp := &marketplacepb.ContractResponse{Contract: mapContract(c)}
	if id, err := parseID("actor_id", actorID); err == nil {
		for _, cmd := range s.contracts.AvailableActions(c, id) {
			resp.AvailableActions = append(resp.AvailableActions, string(cmd))
		}
	}
	return resp
}

func mapContract(c *model.Contract) *marketplacepb.Contract {
	if c == nil {
		return nil
	}
	out := &marketplacepb.Contract{
		Id:              c.ID.String(),
		ClientId:        c.ClientID.String(),
		ProviderId:      c.ProviderID.String(),
		ServiceTitle:    c.ServiceTitle,
		ServiceRate:     c.ServiceRate.StringFixed(2),
		Status:          string(c.Status),
		ClientDeposited: c.ClientDeposited,
		ClientAction:    string(c.ClientAction),
		ProviderAction:  string(c.ProviderAction),
		CommissionRate:  c.CommissionRate.String(),
		CreatedAt:       timestamppb.New(c.CreatedAt),
		UpdatedAt:       timestamppb.New(c.UpdatedAt),
	}
	if c.DisputeResolution != nil {
		out.DisputeResolution = string(*c.DisputeResolution)
	}
	return out
}
