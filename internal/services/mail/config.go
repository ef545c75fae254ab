package mail

import (
	"fmt"
	"time"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP_HOST is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("SMTP_PORT is required")
	}
	if c.From == "" {
		return fmt.Errorf("SMTP_FROM is required")
	}
	return nil
}
