package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateCrawl(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ReplayDir) == "" {
		return errors.New("paths.replay_dir must be set")
	}
	return nil
}

func (c *Config) validateSource() error {
	if !strings.Contains(c.Source.BaseURL, "$id$") {
		return fmt.Errorf("source.base_url must contain the $id$ placeholder, got %q", c.Source.BaseURL)
	}
	if c.Source.TimeoutSeconds <= 0 {
		return errors.New("source.timeout_seconds must be positive")
	}
	if c.Source.NotFoundStatus < 100 || c.Source.NotFoundStatus > 599 {
		return fmt.Errorf("source.not_found_status must be a valid HTTP status, got %d", c.Source.NotFoundStatus)
	}
	if c.Source.NotFoundStatus == http.StatusOK {
		return errors.New("source.not_found_status cannot be 200")
	}
	return nil
}

func (c *Config) validateCrawl() error {
	if c.Crawl.StartID < 0 {
		return errors.New("crawl.start_id must not be negative")
	}
	if c.Crawl.MaxID < c.Crawl.StartID {
		return fmt.Errorf("crawl.max_id (%d) must not be below crawl.start_id (%d)", c.Crawl.MaxID, c.Crawl.StartID)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
