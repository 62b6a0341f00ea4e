package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/phbpx/leadform"
	"github.com/phbpx/leadform/affiliate"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

var (
	errMissingOrderID   = errors.New("orderId is required")
	errMethodNotAllowed = errors.New("method not allowed")
)

type Submitter interface {
	Submit(ctx context.Context, s leadform.Submission) leadform.SubmissionResult
}

type Affiliate interface {
	PublicConfig() affiliate.PublicConfig
	TrackConversion(ctx context.Context, orderID string, amount float64) bool
}

type FormHandler struct {
	form      Submitter
	affiliate Affiliate
	log       *otelzap.SugaredLogger
}

func NewFormHandler(form Submitter, aff Affiliate, log *otelzap.SugaredLogger) *FormHandler {
	return &FormHandler{
		form:      form,
		affiliate: aff,
		log:       log,
	}
}

// Submit answers 200 for every well formed body; success or failure of the
// submission itself travels in the payload.
func (fh FormHandler) Submit(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var sub leadform.Submission
	if err := decode(rw, r, &sub); err != nil {
		fh.log.Ctx(ctx).Errorw("Submit", "error", err.Error())
		respondErr(ctx, rw, http.StatusBadRequest, err)
		return
	}

	respond(ctx, rw, http.StatusOK, fh.form.Submit(ctx, sub))
}

func (fh FormHandler) AffiliateConfig(rw http.ResponseWriter, r *http.Request) {
	respond(r.Context(), rw, http.StatusOK, fh.affiliate.PublicConfig())
}

type conversionRequest struct {
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
}

type conversionResponse struct {
	Tracked bool `json:"tracked"`
}

func (fh FormHandler) TrackConversion(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req conversionRequest
	if err := decode(rw, r, &req); err != nil {
		fh.log.Ctx(ctx).Errorw("TrackConversion", "error", err.Error())
		respondErr(ctx, rw, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.OrderID) == "" {
		respondErr(ctx, rw, http.StatusBadRequest, errMissingOrderID)
		return
	}

	tracked := fh.affiliate.TrackConversion(ctx, req.OrderID, req.Amount)
	respond(ctx, rw, http.StatusOK, conversionResponse{Tracked: tracked})
}
