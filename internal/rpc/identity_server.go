package rpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	marketplacepb "github.com/Leganyst/services-marketplace/internal/api/marketplace/v1"
	"github.com/Leganyst/services-marketplace/internal/model"
	"github.com/Leganyst/services-marketplace/internal/service"
)

// IdentityServer: регистрация и профили по gRPC.
type IdentityServer struct {
	marketplacepb.UnimplementedIdentityServiceServer

	identity *service.IdentityService
}

func NewIdentityServer(identity *service.IdentityService) *IdentityServer {
	return &IdentityServer{identity: identity}
}

// RegisterUser создаёт пользователя с ролью (по умолчанию client).
func (s *IdentityServer) RegisterUser(ctx context.Context, req *marketplacepb.RegisterUserRequest) (*marketplacepb.UserResponse, error) {
	if req.GetEmail() == "" {
		return nil, status.Error(codes.InvalidArgument, "email is required")
	}

	p, err := s.identity.RegisterUser(ctx, req.GetEmail(), req.GetDisplayName(), req.GetContactPhone(), req.GetRoleCode())
	if err != nil {
		return nil, toStatus("register user", err)
	}
	return &marketplacepb.UserResponse{User: mapProfile(p)}, nil
}

// SetRole назначает роль пользователю.
func (s *IdentityServer) SetRole(ctx context.Context, req *marketplacepb.SetRoleRequest) (*marketplacepb.UserResponse, error) {
	userID, err := parseID("user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}
	if req.GetRoleCode() == "" {
		return nil, status.Error(codes.InvalidArgument, "role_code is required")
	}

	actorID := userID
	if req.GetActorId() != "" {
		if actorID, err = parseID("actor_id", req.GetActorId()); err != nil {
			return nil, err
		}
	}

	p, err := s.identity.SetRole(ctx, actorID, userID, req.GetRoleCode())
	if err != nil {
		return nil, toStatus("set role", err)
	}
	return &marketplacepb.UserResponse{User: mapProfile(p)}, nil
}

// GetProfile ищет профиль по user_id или email.
func (s *IdentityServer) GetProfile(ctx context.Context, req *marketplacepb.GetProfileRequest) (*marketplacepb.UserResponse, error) {
	var (
		p   *service.Profile
		err error
	)
	switch {
	case req.GetUserId() != "":
		userID, perr := parseID("user_id", req.GetUserId())
		if perr != nil {
			return nil, perr
		}
		p, err = s.identity.GetProfile(ctx, userID)
	case req.GetEmail() != "":
		p, err = s.identity.FindByEmail(ctx, req.GetEmail())
	default:
		return nil, status.Error(codes.InvalidArgument, "user_id or email is required")
	}
	if err != nil {
		return nil, toStatus("get profile", err)
	}
	return &marketplacepb.UserResponse{User: mapProfile(p)}, nil
}

// UpsertListing сохраняет карточку исполнителя.
func (s *IdentityServer) UpsertListing(ctx context.Context, req *marketplacepb.UpsertListingRequest) (*marketplacepb.ListingResponse, error) {
	userID, err := parseID("user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}
	rate, err := parseAmount("service_rate", req.GetServiceRate())
	if err != nil {
		return nil, err
	}

	l, err := s.identity.UpsertListing(ctx, userID, req.GetServiceTitle(), rate, req.GetDescription())
	if err != nil {
		return nil, toStatus("upsert listing", err)
	}
	return &marketplacepb.ListingResponse{Listing: mapListing(l)}, nil
}

func mapProfile(p *service.Profile) *marketplacepb.User {
	if p == nil {
		return nil
	}
	return &marketplacepb.User{
		Id:           p.User.ID.String(),
		Email:        p.User.Email,
		DisplayName:  p.User.DisplayName,
		ContactPhone: p.User.ContactPhone,
		RoleCode:     p.Role,
		Listing:      mapListing(p.Listing),
	}
}

func mapListing(l *model.Provider) *marketplacepb.ProviderListing {
	if l == nil {
		return nil
	}
	return &marketplacepb.ProviderListing{
		Id:           l.ID.String(),
		DisplayName:  l.DisplayName,
		ServiceTitle: l.ServiceTitle,
		ServiceRate:  l.ServiceRate.StringFixed(2),
		Description:  l.Description,
	}
}
