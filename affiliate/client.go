package affiliate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/phbpx/leadform"
	"github.com/phbpx/leadform/metrics"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Delivery channels.
const (
	ChannelPrimary  = "primary"
	ChannelFallback = "fallback"
)

const (
	msgDelivered            = "Pedido enviado a M1 correctamente"
	msgDeliveredUnconfirmed = "Pedido enviado a M1"
	msgDeliveryFailed       = "Error al enviar el pedido"
)

const maxResponseBody = 1 << 20

var errUnexpectedStatus = errors.New("unexpected status")

// Client delivers leads to the M1 affiliate network.
type Client struct {
	cfg     Config
	http    leadform.Doer
	log     *otelzap.SugaredLogger
	metrics *metrics.FormMetrics
	now     func() time.Time
	tracer  trace.Tracer
}

type Option func(*Client)

// WithClock overrides the clock used to stamp order payloads.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func WithMetrics(m *metrics.FormMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(cfg Config, doer leadform.Doer, log *otelzap.SugaredLogger, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg.withDefaults(),
		http:   doer,
		log:    log,
		now:    time.Now,
		tracer: otel.GetTracerProvider().Tracer("affiliate"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = otelzap.New(zap.NewNop()).Sugar()
	}
	return c
}

// PublicConfig returns the identifiers the landing page may embed.
func (c *Client) PublicConfig() PublicConfig {
	return PublicConfig{
		AffiliateID: c.cfg.AffiliateID,
		ProductID:   c.cfg.ProductID,
		Geo:         c.cfg.Geo,
	}
}

// SubmitOrder posts the lead to the affiliate API and, when that does not
// work out, to the affiliate webhook. Errors never escape; they end up in the
// returned OrderResult.
func (c *Client) SubmitOrder(ctx context.Context, s leadform.Submission) leadform.OrderResult {
	ctx, span := c.tracer.Start(ctx, "affiliate.SubmitOrder")
	defer span.End()

	payload := NewOrderPayload(c.cfg, s, c.now())
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encoding payload")
		return leadform.OrderResult{Message: msgDeliveryFailed, Err: fmt.Errorf("encoding payload: %w", err)}
	}

	orderID, err := c.primary(ctx, body)
	if err == nil {
		c.log.Ctx(ctx).Infow("SubmitOrder", "status", "order accepted by affiliate api", "order_id", orderID)
		span.SetAttributes(attribute.String("affiliate.channel", ChannelPrimary))
		return leadform.OrderResult{
			Success: true,
			OrderID: orderID,
			Message: msgDelivered,
			Channel: ChannelPrimary,
		}
	}
	c.log.Ctx(ctx).Warnw("SubmitOrder", "status", "affiliate api failed, trying webhook", "error", err.Error())

	res := c.fallback(ctx, body)
	span.SetAttributes(attribute.String("affiliate.channel", ChannelFallback))
	if !res.Success {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, "affiliate delivery failed")
	}
	return res
}

func (c *Client) primary(ctx context.Context, body []byte) (string, error) {
	start := time.Now()
	rep, err := c.send(ctx, http.MethodPost, c.cfg.APIEndpoint, body)
	if err == nil {
		err = rep.check()
	}
	if err != nil {
		c.metrics.ObserveAffiliate(ChannelPrimary, metrics.StatusError, time.Since(start).Seconds())
		return "", err
	}

	var data interface{}
	if err := json.Unmarshal(rep.body, &data); err != nil {
		c.metrics.ObserveAffiliate(ChannelPrimary, metrics.StatusError, time.Since(start).Seconds())
		return "", fmt.Errorf("decoding response: %w", err)
	}

	c.metrics.ObserveAffiliate(ChannelPrimary, metrics.StatusOK, time.Since(start).Seconds())
	return orderID(data), nil
}

// fallback treats any response it gets back as delivered, even a non-2xx
// one. Only a transport error counts as failure.
func (c *Client) fallback(ctx context.Context, body []byte) leadform.OrderResult {
	start := time.Now()
	rep, err := c.send(ctx, http.MethodPost, c.cfg.WebhookEndpoint, body)
	if err != nil {
		c.metrics.ObserveAffiliate(ChannelFallback, metrics.StatusError, time.Since(start).Seconds())
		c.log.Ctx(ctx).Errorw("SubmitOrder", "status", "affiliate webhook failed", "error", err.Error())
		return leadform.OrderResult{
			Message: msgDeliveryFailed,
			Channel: ChannelFallback,
			Err:     err,
		}
	}

	if rep.ok() {
		c.metrics.ObserveAffiliate(ChannelFallback, metrics.StatusOK, time.Since(start).Seconds())
		c.log.Ctx(ctx).Infow("SubmitOrder", "status", "order accepted by affiliate webhook")
		return leadform.OrderResult{
			Success: true,
			Message: msgDelivered,
			Channel: ChannelFallback,
		}
	}

	// TODO: revisit once M1 documents the webhook's status codes; a 4xx here
	// likely means the order was rejected.
	c.metrics.ObserveAffiliate(ChannelFallback, metrics.StatusLenient, time.Since(start).Seconds())
	c.log.Ctx(ctx).Warnw("SubmitOrder", "status", "unexpected affiliate webhook response", "http_status", rep.status)
	return leadform.OrderResult{
		Success: true,
		Message: msgDeliveredUnconfirmed,
		Channel: ChannelFallback,
	}
}

// TrackConversion reports a paid order to the affiliate network so the
// commission is attributed. A non-positive amount uses the default price.
func (c *Client) TrackConversion(ctx context.Context, orderID string, amount float64) bool {
	ctx, span := c.tracer.Start(ctx, "affiliate.TrackConversion")
	defer span.End()

	if amount <= 0 {
		amount = DefaultConversionAmount
	}

	u, err := url.Parse(c.cfg.ConversionURL)
	if err != nil {
		c.log.Ctx(ctx).Errorw("TrackConversion", "error", err.Error())
		c.metrics.ObserveConversion(false)
		return false
	}
	q := u.Query()
	q.Set("affiliate_id", strconv.Itoa(c.cfg.AffiliateID))
	q.Set("order_id", orderID)
	q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	q.Set("product_id", strconv.Itoa(c.cfg.ProductID))
	u.RawQuery = q.Encode()

	rep, err := c.send(ctx, http.MethodGet, u.String(), nil)
	if err == nil {
		err = rep.check()
	}
	if err != nil {
		c.log.Ctx(ctx).Errorw("TrackConversion", "order_id", orderID, "error", err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, "conversion not tracked")
		c.metrics.ObserveConversion(false)
		return false
	}

	c.metrics.ObserveConversion(true)
	return true
}

type reply struct {
	status int
	body   []byte
}

func (r reply) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (r reply) check() error {
	if !r.ok() {
		return fmt.Errorf("%w: %d", errUnexpectedStatus, r.status)
	}
	return nil
}

// send performs one bounded HTTP call. A body that fails to read is returned
// as far as it got; only the round trip itself can fail.
func (c *Client) send(ctx context.Context, method, endpoint string, body []byte) (reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, r)
	if err != nil {
		return reply{}, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return reply{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	return reply{status: resp.StatusCode, body: raw}, nil
}

// orderID picks the order identifier out of an affiliate API response. The
// API has used both orderId and order_id.
func orderID(data interface{}) string {
	m, ok := data.(map[string]interface{})
	if !ok {
		return ""
	}
	for _, key := range []string{"orderId", "order_id"} {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v != 0 {
				return strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
	}
	return ""
}
