// Package sheets mirrors leads into a spreadsheet through an Apps Script style
// webhook. It is a backup channel only: nothing reads its responses.
package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phbpx/leadform"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Second

type Config struct {
	WebhookURL string
	Timeout    time.Duration
}

type Mirror struct {
	cfg  Config
	http leadform.Doer
	log  *otelzap.SugaredLogger
}

func NewMirror(cfg Config, doer leadform.Doer, log *otelzap.SugaredLogger) *Mirror {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = otelzap.New(zap.NewNop()).Sugar()
	}
	return &Mirror{
		cfg:  cfg,
		http: doer,
		log:  log,
	}
}

// Mirror posts name, phone and timestamp as a form. The response status is
// ignored; only a failed round trip is reported. Without a webhook URL it
// does nothing.
func (m *Mirror) Mirror(ctx context.Context, name, phone string, at time.Time) error {
	if m.cfg.WebhookURL == "" {
		m.log.Ctx(ctx).Debugw("Mirror", "status", "no spreadsheet webhook configured")
		return nil
	}

	ctx, span := otel.GetTracerProvider().Tracer("sheets").Start(ctx, "sheets.Mirror")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	form := url.Values{
		"name":      {name},
		"phone":     {phone},
		"timestamp": {at.UTC().Format(leadform.TimestampLayout)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.WebhookURL, strings.NewReader(form.Encode()))
	if err != nil {
		span.SetStatus(codes.Error, "building request")
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mirror failed")
		return fmt.Errorf("posting to spreadsheet webhook: %w", err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	m.log.Ctx(ctx).Infow("Mirror", "status", "submission sent to spreadsheet")
	return nil
}
