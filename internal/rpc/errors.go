package rpc

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Leganyst/services-marketplace/internal/logger"
	"github.com/Leganyst/services-marketplace/internal/service"
)

// statusCode сопоставляет доменную ошибку коду gRPC.
func statusCode(err error) codes.Code {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidRate),
		errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, service.ErrInvalidResolution),
		errors.Is(err, service.ErrInvalidParties),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidRole):
		return codes.InvalidArgument
	case errors.Is(err, service.ErrContractNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrProviderNotFound):
		return codes.NotFound
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrNotProvider):
		return codes.PermissionDenied
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrRepeatedAction),
		errors.Is(err, service.ErrNotResolvable):
		return codes.FailedPrecondition
	case errors.Is(err, service.ErrDuplicateEngagement),
		errors.Is(err, service.ErrEmailTaken):
		return codes.AlreadyExists
	case errors.Is(err, service.ErrConcurrentUpdate):
		return codes.Aborted
	default:
		return codes.Internal
	}
}

func toStatus(op string, err error) error {
	code := statusCode(err)
	if code == codes.Internal {
		logger.Error("%s: %v", op, err)
		return status.Errorf(codes.Internal, "%s failed", op)
	}
	return status.Errorf(code, "%s: %v", op, err)
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "%s must be a uuid", field)
	}
	return id, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "%s must be a decimal amount", field)
	}
	return d, nil
}
