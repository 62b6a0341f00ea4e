// Package form runs a landing page submission through validation,
// persistence, affiliate delivery and the spreadsheet backup.
package form

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phbpx/leadform"
	"github.com/phbpx/leadform/metrics"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Service struct {
	store   leadform.SubmissionStore
	orders  leadform.OrderSubmitter
	mirror  leadform.Mirror
	log     *otelzap.SugaredLogger
	metrics *metrics.FormMetrics
	now     func() time.Time
	newID   func() string
}

type Option func(*Service)

func WithMetrics(m *metrics.FormMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store leadform.SubmissionStore, orders leadform.OrderSubmitter, mirror leadform.Mirror, log *otelzap.SugaredLogger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		orders: orders,
		mirror: mirror,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = otelzap.New(zap.NewNop()).Sugar()
	}
	return s
}

// Submit handles one lead. It always returns a well formed result: invalid
// input and storage failures give Success=false, and once the lead is stored
// the result is Success=true whatever the affiliate network or the
// spreadsheet do.
func (s *Service) Submit(ctx context.Context, sub leadform.Submission) (res leadform.SubmissionResult) {
	ctx, span := otel.GetTracerProvider().Tracer("form").Start(ctx, "form.Submit")
	defer span.End()

	var persisted, accepted bool
	defer func() {
		if r := recover(); r != nil {
			s.log.Ctx(ctx).Errorw("Submit", "status", "recovered from panic", "panic", fmt.Sprint(r), "persisted", persisted)
			span.SetStatus(codes.Error, "panic")
			if persisted {
				res = submitted(accepted)
				return
			}
			res = failure()
		}
	}()

	if err := sub.Check(); err != nil {
		s.log.Ctx(ctx).Infow("Submit", "status", "submission rejected", "error", err.Error())
		s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		return leadform.SubmissionResult{Message: err.Error()}
	}

	now := s.now().UTC()
	record := leadform.FormSubmission{
		ID:        s.newID(),
		Name:      sub.Name,
		Phone:     sub.Phone,
		CreatedAt: now,
	}
	if err := s.store.Create(ctx, record); err != nil {
		s.log.Ctx(ctx).Errorw("Submit", "status", "storing submission", "id", record.ID, "error", err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.metrics.ObserveSubmission(metrics.OutcomePersistError)
		return failure()
	}
	persisted = true
	span.SetAttributes(attribute.String("submission.id", record.ID))

	// The lead is stored; delivering it must not depend on the visitor
	// keeping the connection open.
	ctx = trace.ContextWithSpan(context.Background(), span)

	order := s.submitOrder(ctx, sub)
	accepted = order.Success
	span.SetAttributes(attribute.Bool("affiliate.accepted", accepted))

	s.mirrorSubmission(ctx, sub, now)

	s.metrics.ObserveSubmission(metrics.OutcomeAccepted)
	return submitted(accepted)
}

func (s *Service) submitOrder(ctx context.Context, sub leadform.Submission) (res leadform.OrderResult) {
	defer func() {
		if r := recover(); r != nil {
			res = leadform.OrderResult{Err: fmt.Errorf("affiliate submitter panicked: %v", r)}
		}
	}()

	res = s.orders.SubmitOrder(ctx, sub)
	if !res.Success {
		s.log.Ctx(ctx).Warnw("Submit", "status", "affiliate network did not take the order", "channel", res.Channel, "error", errString(res.Err))
	}
	return res
}

func (s *Service) mirrorSubmission(ctx context.Context, sub leadform.Submission, at time.Time) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mirror panicked: %v", r)
		}
		if err != nil {
			s.log.Ctx(ctx).Warnw("Submit", "status", "spreadsheet mirror failed", "error", err.Error())
		}
		s.metrics.ObserveMirror(err)
	}()

	err = s.mirror.Mirror(ctx, sub.Name, sub.Phone, at)
}

func submitted(accepted bool) leadform.SubmissionResult {
	return leadform.SubmissionResult{
		Success:           true,
		Message:           leadform.MsgSubmitted,
		AffiliateAccepted: &accepted,
	}
}

func failure() leadform.SubmissionResult {
	return leadform.SubmissionResult{Message: leadform.MsgSubmitFailed}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
