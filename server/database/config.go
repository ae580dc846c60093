package database

import (
	"fmt"
	"strings"
)

// Driver selects the record store backend of a deployment.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverLocal    Driver = "local"
)

type Config struct {
	Driver   Driver `toml:"driver"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"ssl_mode"`
	// Dir is the data directory of the local driver.
	Dir string `toml:"dir"`
}

func (c Config) String() string {
	return fmt.Sprintf("\n Driver: %s\n Host: %s\n Port: %d\n Username: %s\n Password: %s\n Database: %s\n SSLMode: %s\n Dir: %s",
		c.Driver,
		c.Host,
		c.Port,
		c.Username,
		strings.Repeat("*", len(c.Password)),
		c.Database,
		c.SSLMode,
		c.Dir,
	)
}

func (c Config) DataSourceName() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, sslMode,
	)
}
