package billing

import (
	"fmt"
	"strings"
)

type Config struct {
	Enabled       bool   `toml:"enabled"`
	SecretKey     string `toml:"secret_key"`
	WebhookSecret string `toml:"webhook_secret"`
	// PriceID is the recurring price of the premium subscription.
	PriceID string `toml:"price_id"`
}

func (c Config) String() string {
	return fmt.Sprintf("\n Enabled: %t\n SecretKey: %s\n WebhookSecret: %s\n PriceID: %s",
		c.Enabled,
		strings.Repeat("*", len(c.SecretKey)),
		strings.Repeat("*", len(c.WebhookSecret)),
		c.PriceID,
	)
}
