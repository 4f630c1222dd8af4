package grpc

import (
	"context"
	"errors"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/mapper"
	"github.com/vibast-solutions/ms-go-receipts/app/service"
	"github.com/vibast-solutions/ms-go-receipts/app/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type paymentReader interface {
	GetPayment(ctx context.Context, id uint64) (*entity.Payment, error)
}

type receiptIssuer interface {
	EnsureReceipt(ctx context.Context, paymentID uint64) (*entity.Receipt, error)
	GetReceipt(ctx context.Context, id uint64) (*service.ReceiptView, error)
}

type Server struct {
	types.UnimplementedReceiptsServiceServer
	payments paymentReader
	receipts receiptIssuer
}

func NewServer(payments paymentReader, receipts receiptIssuer) *Server {
	return &Server{payments: payments, receipts: receipts}
}

func (s *Server) Health(_ context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("ok"), nil
}

func (s *Server) GetPayment(ctx context.Context, in *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	req := &types.GetPaymentRequest{Id: in.GetValue()}
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.payments.GetPayment(ctx, req.GetId())
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return nil, status.Error(codes.NotFound, "payment not found")
		}
		loggerWithContext(ctx).WithError(err).Error("Get payment failed")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	return toStruct(ctx, &types.PaymentResponse{Success: true, Payment: mapper.PaymentToType(item)})
}

func (s *Server) EnsureReceipt(ctx context.Context, in *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	l := loggerWithContext(ctx)
	req := &types.EnsureReceiptRequest{PaymentId: in.GetValue()}
	if err := req.Validate(); err != nil {
		l.WithError(err).Debug("Ensure receipt validation failed")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.receipts.EnsureReceipt(ctx, req.GetPaymentId())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			return nil, status.Error(codes.NotFound, "payment not found")
		case errors.Is(err, service.ErrPaymentNotCompleted):
			return nil, status.Error(codes.FailedPrecondition, err.Error())
		default:
			l.WithError(err).Error("Ensure receipt failed")
			return nil, status.Error(codes.Internal, "internal server error")
		}
	}

	return toStruct(ctx, &types.ReceiptResponse{Success: true, Receipt: mapper.ReceiptToType(item)})
}

func (s *Server) GetReceipt(ctx context.Context, in *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	req := &types.GetReceiptRequest{Id: in.GetValue()}
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	view, err := s.receipts.GetReceipt(ctx, req.GetId())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReceiptNotFound):
			return nil, status.Error(codes.NotFound, "receipt not found")
		case errors.Is(err, service.ErrPaymentNotFound):
			return nil, status.Error(codes.NotFound, "payment not found")
		default:
			loggerWithContext(ctx).WithError(err).Error("Get receipt failed")
			return nil, status.Error(codes.Internal, "internal server error")
		}
	}

	return toStruct(ctx, &types.ReceiptResponse{
		Success: true,
		Receipt: mapper.ReceiptToType(view.Receipt),
		Payment: mapper.PaymentToType(view.Payment),
		User:    mapper.UserToType(view.User),
	})
}

func toStruct(ctx context.Context, resp any) (*structpb.Struct, error) {
	out, err := types.ToStruct(resp)
	if err != nil {
		loggerWithContext(ctx).WithError(err).Error("Encode response failed")
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}
