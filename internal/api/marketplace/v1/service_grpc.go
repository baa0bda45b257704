package marketplacepb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ContractServiceName = "marketplace.v1.ContractService"
	IdentityServiceName = "marketplace.v1.IdentityService"
)

// ContractServiceServer: серверная сторона marketplace.v1.ContractService.
type ContractServiceServer interface {
	CreateContract(context.Context, *CreateContractRequest) (*ContractResponse, error)
	MakeOffer(context.Context, *MakeOfferRequest) (*ContractResponse, error)
	DepositFunds(context.Context, *ContractRef) (*ContractResponse, error)
	HandleContractAction(context.Context, *ContractActionRequest) (*ContractResponse, error)
	ResolveDispute(context.Context, *ResolveDisputeRequest) (*ContractResponse, error)
	GetContract(context.Context, *ContractRef) (*ContractResponse, error)
	ListContracts(context.Context, *ListContractsRequest) (*ListContractsResponse, error)
	HasActiveOrPending(context.Context, *PairRequest) (*HasActiveOrPendingResponse, error)
	GetLatestBetween(context.Context, *PairRequest) (*ContractResponse, error)
	GetQuote(context.Context, *ContractRef) (*QuoteResponse, error)
}

// UnimplementedContractServiceServer встраивается в реализацию, чтобы новые
// методы не ломали сборку.
type UnimplementedContractServiceServer struct{}

func (UnimplementedContractServiceServer) CreateContract(context.Context, *CreateContractRequest) (*ContractResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateContract not implemented")
}
func (UnimplementedContractServiceServer) MakeOffer(context.Context, *MakeOfferRequest) (*ContractResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method MakeOffer not implemented")
}
func (UnimplementedContractServiceServer) DepositFunds(context.Context, *ContractRef) (*ContractResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DepositFunds not implemented")
}
func (UnimplementedContractServiceServer) HandleContractAction(context.Context, *ContractActionRequest) (*ContractResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method HandleContractAction not implemented")
}
func (UnimplementedContractServiceServer) ResolveDispute(context.Context, *ResolveDisputeRequest) (*ContractResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ResolveDispute not implemented")
}
func (UnimplementedContractServiceServer) GetContract(context.Context, *ContractRef) (*ContractResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetContract not implemented")
}
func (UnimplementedContractServiceServer) ListContracts(context.Context, *ListContractsRequest) (*ListContractsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListContracts not implemented")
}
func (UnimplementedContractServiceServer) HasActiveOrPending(context.Context, *PairRequest) (*HasActiveOrPendingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method HasActiveOrPending not implemented")
}
func (UnimplementedContractServiceServer) GetLatestBetween(context.Context, *PairRequest) (*ContractResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetLatestBetween not implemented")
}
func (UnimplementedContractServiceServer) GetQuote(context.Context, *ContractRef) (*QuoteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetQuote not implemented")
}

// IdentityServiceServer: серверная сторона marketplace.v1.IdentityService.
type IdentityServiceServer interface {
	RegisterUser(context.Context, *RegisterUserRequest) (*UserResponse, error)
	SetRole(context.Context, *SetRoleRequest) (*UserResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*UserResponse, error)
	UpsertListing(context.Context, *UpsertListingRequest) (*ListingResponse, error)
}

type UnimplementedIdentityServiceServer struct{}

func (UnimplementedIdentityServiceServer) RegisterUser(context.Context, *RegisterUserRequest) (*UserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterUser not implemented")
}
func (UnimplementedIdentityServiceServer) SetRole(context.Context, *SetRoleRequest) (*UserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetRole not implemented")
}
func (UnimplementedIdentityServiceServer) GetProfile(context.Context, *GetProfileRequest) (*UserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfile not implemented")
}
func (UnimplementedIdentityServiceServer) UpsertListing(context.Context, *UpsertListingRequest) (*ListingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertListing not implemented")
}

// unary собирает grpc.MethodHandler для метода с запросом Req.
func unary[S any, Req any, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ContractService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ContractServiceName,
	HandlerType: (*ContractServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ContractServiceName, "CreateContract", ContractServiceServer.CreateContract),
		unary(ContractServiceName, "MakeOffer", ContractServiceServer.MakeOffer),
		unary(ContractServiceName, "DepositFunds", ContractServiceServer.DepositFunds),
		unary(ContractServiceName, "HandleContractAction", ContractServiceServer.HandleContractAction),
		unary(ContractServiceName, "ResolveDispute", ContractServiceServer.ResolveDispute),
		unary(ContractServiceName, "GetContract", ContractServiceServer.GetContract),
		unary(ContractServiceName, "ListContracts", ContractServiceServer.ListContracts),
		unary(ContractServiceName, "HasActiveOrPending", ContractServiceServer.HasActiveOrPending),
		unary(ContractServiceName, "GetLatestBetween", ContractServiceServer.GetLatestBetween),
		unary(ContractServiceName, "GetQuote", ContractServiceServer.GetQuote),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace/v1/contract.proto",
}

var IdentityService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: IdentityServiceName,
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(IdentityServiceName, "RegisterUser", IdentityServiceServer.RegisterUser),
		unary(IdentityServiceName, "SetRole", IdentityServiceServer.SetRole),
		unary(IdentityServiceName, "GetProfile", IdentityServiceServer.GetProfile),
		unary(IdentityServiceName, "UpsertListing", IdentityServiceServer.UpsertListing),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace/v1/identity.proto",
}

func RegisterContractServiceServer(s grpc.ServiceRegistrar, srv ContractServiceServer) {
	s.RegisterService(&ContractService_ServiceDesc, srv)
}

func RegisterIdentityServiceServer(s grpc.ServiceRegistrar, srv IdentityServiceServer) {
	s.RegisterService(&IdentityService_ServiceDesc, srv)
}

// invoke вызывает unary-метод с JSON-кодеком.
func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, service, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+service+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type ContractServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewContractServiceClient(cc grpc.ClientConnInterface) *ContractServiceClient {
	return &ContractServiceClient{cc: cc}
}

func (c *ContractServiceClient) CreateContract(ctx context.Context, in *CreateContractRequest, opts ...grpc.CallOption) (*ContractResponse, error) {
	return invoke[ContractResponse](ctx, c.cc, ContractServiceName, "CreateContract", in, opts)
}

func (c *ContractServiceClient) MakeOffer(ctx context.Context, in *MakeOfferRequest, opts ...grpc.CallOption) (*ContractResponse, error) {
	return invoke[ContractResponse](ctx, c.cc, ContractServiceName, "MakeOffer", in, opts)
}

func (c *ContractServiceClient) DepositFunds(ctx context.Context, in *ContractRef, opts ...grpc.CallOption) (*ContractResponse, error) {
	return invoke[ContractResponse](ctx, c.cc, ContractServiceName, "DepositFunds", in, opts)
}

func (c *ContractServiceClient) HandleContractAction(ctx context.Context, in *ContractActionRequest, opts ...grpc.CallOption) (*ContractResponse, error) {
	return invoke[ContractResponse](ctx, c.cc, ContractServiceName, "HandleContractAction", in, opts)
}

func (c *ContractServiceClient) ResolveDispute(ctx context.Context, in *ResolveDisputeRequest, opts ...grpc.CallOption) (*ContractResponse, error) {
	return invoke[ContractResponse](ctx, c.cc, ContractServiceName, "ResolveDispute", in, opts)
}

func (c *ContractServiceClient) GetContract(ctx context.Context, in *ContractRef, opts ...grpc.CallOption) (*ContractResponse, error) {
	return invoke[ContractResponse](ctx, c.cc, ContractServiceName, "GetContract", in, opts)
}

func (c *ContractServiceClient) ListContracts(ctx context.Context, in *ListContractsRequest, opts ...grpc.CallOption) (*ListContractsResponse, error) {
	return invoke[ListContractsResponse](ctx, c.cc, ContractServiceName, "ListContracts", in, opts)
}

func (c *ContractServiceClient) HasActiveOrPending(ctx context.Context, in *PairRequest, opts ...grpc.CallOption) (*HasActiveOrPendingResponse, error) {
	return invoke[HasActiveOrPendingResponse](ctx, c.cc, ContractServiceName, "HasActiveOrPending", in, opts)
}

func (c *ContractServiceClient) GetLatestBetween(ctx context.Context, in *PairRequest, opts ...grpc.CallOption) (*ContractResponse, error) {
	return invoke[ContractResponse](ctx, c.cc, ContractServiceName, "GetLatestBetween", in, opts)
}

func (c *ContractServiceClient) GetQuote(ctx context.Context, in *ContractRef, opts ...grpc.CallOption) (*QuoteResponse, error) {
	return invoke[QuoteResponse](ctx, c.cc, ContractServiceName, "GetQuote", in, opts)
}

type IdentityServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityServiceClient(cc grpc.ClientConnInterface) *IdentityServiceClient {
	return &IdentityServiceClient{cc: cc}
}

func (c *IdentityServiceClient) RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, IdentityServiceName, "RegisterUser", in, opts)
}

func (c *IdentityServiceClient) SetRole(ctx context.Context, in *SetRoleRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, IdentityServiceName, "SetRole", in, opts)
}

func (c *IdentityServiceClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, IdentityServiceName, "GetProfile", in, opts)
}

func (c *IdentityServiceClient) UpsertListing(ctx context.Context, in *UpsertListingRequest, opts ...grpc.CallOption) (*ListingResponse, error) {
	return invoke[ListingResponse](ctx, c.cc, IdentityServiceName, "UpsertListing", in, opts)
}
