package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
)

type feeRepository interface {
	List(ctx context.Context, filter models.FeeFilter) ([]models.Fee, int, error)
	FindByID(ctx context.Context, id string) (*models.Fee, error)
	Create(ctx context.Context, fee *models.Fee) error
	Update(ctx context.Context, fee *models.Fee) error
	Delete(ctx context.Context, id string) error
}

// CreateFeeRequest is the payload for adding a fee ledger row.
type CreateFeeRequest struct {
	StudentID   string           `json:"student_id" validate:"required"`
	StudentName string           `json:"student_name" validate:"required"`
	ParentID    *string          `json:"parent_id"`
	FeeType     string           `json:"fee_type" validate:"required"`
	AmountDue   float64          `json:"amount_due" validate:"min=0"`
	AmountPaid  float64          `json:"amount_paid" validate:"min=0"`
	DueDate     *time.Time       `json:"due_date"`
	Status      models.FeeStatus `json:"status" validate:"required"`
}

// RecordPaymentRequest adds an amount to a fee's paid total.
type RecordPaymentRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

// FeeService provides fee ledger use cases. The outstanding amount is always
// recomputed from amount_due - amount_paid; the status field is whatever the
// caller set.
type FeeService struct {
	repo      feeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeService constructs a FeeService instance.
func NewFeeService(repo feeRepository, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeeService{repo: repo, validator: validate, logger: logger}
}

// List returns fees scoped to the viewer. Students see their own rows,
// parents see their children's.
func (s *FeeService) List(ctx context.Context, caps access.Capabilities, viewerID string, filter models.FeeFilter) ([]models.Fee, int, error) {
	switch {
	case caps.IsAdmin():
	case caps.IsStudent():
		filter.StudentID = viewerID
	case caps.IsParent():
		filter.ParentID = viewerID
	default:
		return nil, 0, appErrors.Clone(appErrors.ErrForbidden, "role cannot view fees")
	}
	fees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fees")
	}
	return fees, total, nil
}

// Create validates and persists a fee row.
func (s *FeeService) Create(ctx context.Context, caps access.Capabilities, req CreateFeeRequest) (*models.Fee, error) {
	if !caps.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can create fees")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown fee status")
	}

	fee := &models.Fee{
		StudentID:         req.StudentID,
		StudentName:       req.StudentName,
		ParentID:          req.ParentID,
		FeeType:           req.FeeType,
		AmountDue:         req.AmountDue,
		AmountPaid:        req.AmountPaid,
		OutstandingAmount: req.AmountDue - req.AmountPaid,
		DueDate:           req.DueDate,
		Status:            req.Status,
	}
	if err := s.repo.Create(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fee")
	}
	s.logger.Info("fee created", zap.String("fee_id", fee.ID), zap.String("student_id", fee.StudentID))
	return fee, nil
}

// Update applies a patch to a fee row, recomputing the outstanding amount
// whenever either amount changes.
func (s *FeeService) Update(ctx context.Context, caps access.Capabilities, id string, patch models.FeePatch) (*models.Fee, error) {
	if !caps.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can update fees")
	}
	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee")
	}

	if patch.FeeType != nil {
		fee.FeeType = *patch.FeeType
	}
	if patch.AmountDue != nil {
		fee.AmountDue = *patch.AmountDue
	}
	if patch.AmountPaid != nil {
		fee.AmountPaid = *patch.AmountPaid
	}
	if patch.DueDate != nil {
		fee.DueDate = patch.DueDate
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown fee status")
		}
		fee.Status = *patch.Status
	}
	fee.OutstandingAmount = fee.AmountDue - fee.AmountPaid

	if err := s.repo.Update(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update fee")
	}
	return fee, nil
}

// RecordPayment adds to the paid amount and recomputes the outstanding total.
func (s *FeeService) RecordPayment(ctx context.Context, caps access.Capabilities, id string, req RecordPaymentRequest) (*models.Fee, error) {
	if !caps.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can record payments")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee")
	}

	fee.AmountPaid += req.Amount
	fee.OutstandingAmount = fee.AmountDue - fee.AmountPaid
	if err := s.repo.Update(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}
	s.logger.Info("payment recorded",
		zap.String("fee_id", fee.ID),
		zap.Float64("amount", req.Amount),
		zap.Float64("outstanding", fee.OutstandingAmount))
	return fee, nil
}

// Delete removes a fee row.
func (s *FeeService) Delete(ctx context.Context, caps access.Capabilities, id string) error {
	if !caps.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators can delete fees")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete fee")
	}
	return nil
}
