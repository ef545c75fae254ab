package push

import (
	"fmt"
	"time"
)

type Config struct {
	APIURL    string
	ServerKey string
	Timeout   time.Duration
}

func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("PUSH_API_URL is required")
	}
	if c.ServerKey == "" {
		return fmt.Errorf("PUSH_SERVER_KEY is required")
	}
	return nil
}
