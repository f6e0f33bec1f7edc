package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/dto"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
	appErrors "github.com/neetrino-com/neetrino-academy-sub005/pkg/errors"
	"github.com/neetrino-com/neetrino-academy-sub005/pkg/export"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (bool, error)
}

type paymentUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type paymentCourseLookup interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type receiptRenderer interface {
	Render(receipt export.Receipt) ([]byte, error)
}

// PaymentConfig governs receipt rendering.
type PaymentConfig struct {
	ReceiptIssuer   string
	DefaultCurrency string
}

// PaymentService manages student payment records and receipt documents.
type PaymentService struct {
	repo      paymentRepository
	users     paymentUserLookup
	courses   paymentCourseLookup
	receipts  receiptRenderer
	config    PaymentConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, users paymentUserLookup, courses paymentCourseLookup, receipts receiptRenderer, config PaymentConfig, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PaymentService{
		repo:      repo,
		users:     users,
		courses:   courses,
		receipts:  receipts,
		config:    config,
		validator: validate,
		logger:    logger,
	}
}

// List returns payments matching the filter.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, total, nil
}

// Get loads a payment.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// Create opens a pending payment for a student and course.
func (s *PaymentService) Create(ctx context.Context, req dto.CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	if _, err := s.users.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	currency := req.Currency
	if currency == "" {
		currency = s.config.DefaultCurrency
	}

	payment := models.Payment{
		StudentID:   req.StudentID,
		CourseID:    req.CourseID,
		AmountCents: req.AmountCents,
		Currency:    currency,
		Status:      models.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, &payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}
	return &payment, nil
}

// MarkPaid settles a pending payment.
func (s *PaymentService) MarkPaid(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentStatusPaid {
		return nil, appErrors.Clone(appErrors.ErrAlreadyPaid, "payment already settled")
	}

	updated, err := s.repo.MarkPaid(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to settle payment")
	}
	if !updated {
		// Lost the race against another settle call.
		return nil, appErrors.Clone(appErrors.ErrAlreadyPaid, "payment already settled")
	}

	s.logger.Info("payment settled", zap.String("payment_id", id))
	return s.Get(ctx, id)
}

// Receipt renders the PDF receipt for a settled payment.
func (s *PaymentService) Receipt(ctx context.Context, id string) ([]byte, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusPaid || payment.PaidAt == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "receipt is only available for settled payments")
	}

	student, err := s.users.FindByID(ctx, payment.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	course, err := s.courses.FindByID(ctx, payment.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	pdf, err := s.receipts.Render(export.Receipt{
		Number:      fmt.Sprintf("R-%s", payment.ID),
		Issuer:      s.config.ReceiptIssuer,
		StudentName: student.FullName,
		CourseTitle: course.Title,
		Amount:      payment.AmountCents,
		Currency:    payment.Currency,
		PaidAt:      *payment.PaidAt,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return pdf, nil
}
