package affiliate

import (
	"time"

	"github.com/phbpx/leadform"
)

// OrderPayload is the JSON body sent to both the affiliate API and its
// webhook.
type OrderPayload struct {
	AffiliateID   int    `json:"affiliate_id"`
	ProductID     int    `json:"product_id"`
	Geo           string `json:"geo"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	Source        string `json:"source"`
	Timestamp     string `json:"timestamp"`
	UTMSource     string `json:"utm_source"`
	UTMMedium     string `json:"utm_medium"`
	UTMCampaign   string `json:"utm_campaign"`
}

// NewOrderPayload never fails; cfg is expected to have its defaults applied.
func NewOrderPayload(cfg Config, s leadform.Submission, now time.Time) OrderPayload {
	return OrderPayload{
		AffiliateID:   cfg.AffiliateID,
		ProductID:     cfg.ProductID,
		Geo:           cfg.Geo,
		CustomerName:  s.Name,
		CustomerPhone: s.Phone,
		CustomerEmail: s.Email,
		Source:        cfg.Source,
		Timestamp:     now.UTC().Format(leadform.TimestampLayout),
		UTMSource:     cfg.UTMSource,
		UTMMedium:     cfg.UTMMedium,
		UTMCampaign:   cfg.UTMCampaign,
	}
}
