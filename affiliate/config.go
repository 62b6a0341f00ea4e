package affiliate

import "time"

// Defaults for the M1 CPA network partnership.
const (
	DefaultAffiliateID      = 1026218
	DefaultProductID        = 11133
	DefaultGeo              = "ES"
	DefaultAPIEndpoint      = "https://m1.top/api/orders"
	DefaultWebhookEndpoint  = "https://m1.top/webhook/order"
	DefaultConversionURL    = "https://m1.top/api/conversion"
	DefaultSource           = "landing_page"
	DefaultUTMSource        = "ideal_fit_landing"
	DefaultUTMMedium        = "direct"
	DefaultUTMCampaign      = "spain_offer"
	DefaultTimeout          = 5 * time.Second
	DefaultConversionAmount = 29
)

// Config is the static affiliate configuration. It is read once at startup
// and never changed afterwards.
type Config struct {
	AffiliateID     int
	ProductID       int
	Geo             string
	APIEndpoint     string
	WebhookEndpoint string
	ConversionURL   string
	Source          string
	UTMSource       string
	UTMMedium       string
	UTMCampaign     string
	Timeout         time.Duration
}

func (c Config) withDefaults() Config {
	if c.AffiliateID == 0 {
		c.AffiliateID = DefaultAffiliateID
	}
	if c.ProductID == 0 {
		c.ProductID = DefaultProductID
	}
	if c.Geo == "" {
		c.Geo = DefaultGeo
	}
	if c.APIEndpoint == "" {
		c.APIEndpoint = DefaultAPIEndpoint
	}
	if c.WebhookEndpoint == "" {
		c.WebhookEndpoint = DefaultWebhookEndpoint
	}
	if c.ConversionURL == "" {
		c.ConversionURL = DefaultConversionURL
	}
	if c.Source == "" {
		c.Source = DefaultSource
	}
	if c.UTMSource == "" {
		c.UTMSource = DefaultUTMSource
	}
	if c.UTMMedium == "" {
		c.UTMMedium = DefaultUTMMedium
	}
	if c.UTMCampaign == "" {
		c.UTMCampaign = DefaultUTMCampaign
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// PublicConfig is the part of Config that is safe to hand to the browser.
type PublicConfig struct {
	AffiliateID int    `json:"affiliateId"`
	ProductID   int    `json:"productId"`
	Geo         string `json:"geo"`
}
