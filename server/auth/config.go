package auth

import (
	"fmt"
	"strings"

	"github.com/stridelog/stridelog/internal/xtime"
)

type Config struct {
	ClientID     string         `toml:"client_id"`
	ClientSecret string         `toml:"client_secret"`
	PublicURL    string         `toml:"public_url"`
	SessionTTL   xtime.Duration `toml:"session_ttl"`
	Secure       bool           `toml:"secure"`
	// Admins are user emails granted the app-wide admin role on sign-in.
	Admins []string `toml:"admins"`
}

func (c Config) String() string {
	return fmt.Sprintf("\n ClientID: %s\n ClientSecret: %s\n PublicURL: %s\n SessionTTL: %s\n Secure: %t\n Admins: %s",
		c.ClientID,
		strings.Repeat("*", len(c.ClientSecret)),
		c.PublicURL,
		c.SessionTTL,
		c.Secure,
		strings.Join(c.Admins, ", "),
	)
}
