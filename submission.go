package leadform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrInvalidSubmission = errors.New("invalid submission")
)

// Messages returned to the visitor. The landing page is served in Spanish.
const (
	MsgSubmitted    = "Tu pedido ha sido enviado correctamente"
	MsgSubmitFailed = "Error al enviar el formulario. Por favor, intenta de nuevo."
)

// TimestampLayout is how timestamps are written for the affiliate network and
// the spreadsheet: UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Submission is one lead capture attempt as posted by the landing page form.
type Submission struct {
	Name  string `json:"name" validate:"trimmin=2"`
	Phone string `json:"phone" validate:"trimmin=9"`
	Email string `json:"email,omitempty" validate:"omitempty,looseemail"`
}

// SubmissionResult is what the visitor gets back. AffiliateAccepted is nil
// when the affiliate network was never contacted.
type SubmissionResult struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	AffiliateAccepted *bool  `json:"m1Status,omitempty"`
}

// FormSubmission is the durable record of a lead.
type FormSubmission struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PersistenceError reports that the authoritative record of a lead could not
// be written.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting submission: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// OrderResult is the outcome of delivering a lead to the affiliate network.
// Err carries the transport failure, if any, and is never shown to visitors.
type OrderResult struct {
	Success bool
	OrderID string
	Message string
	Channel string
	Err     error
}

type SubmissionStore interface {
	Create(ctx context.Context, fs FormSubmission) error
}

type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, s Submission) OrderResult
}

type Mirror interface {
	Mirror(ctx context.Context, name, phone string, at time.Time) error
}

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}
