package cmd

import (
	"strings"

	"github.com/pkg/errors"
)

type Config struct {
	Mode             string
	Root             string
	Split            string
	SubsetRatio      float64
	Download         bool
	Index            int
	ArchiveURL       string
	OutputFormat     string
	OutputFile       string
	Labels           string
	LabelMap         map[string]string
	PrometheusConfig PrometheusConfig
}

func (c *Config) Validate() error {
	if err := c.validateCommon(); err != nil {
		return err
	}

	// validate specific
	switch c.Mode {
	case "provision":
		return c.validateProvision()
	case "verify":
		return nil
	case "inspect":
		return c.validateInspect()
	case "stats":
		return c.validateStats()
	default:
		return errors.Errorf("unrecognized mode %q", c.Mode)
	}
}

func (c *Config) validateCommon() error {
	if c.Root == "" {
		return errors.Errorf("root must be set")
	}

	switch c.OutputFormat {
	case "text", "":
		c.OutputFormat = "text"
	case "json":
	default:
		return errors.Errorf("unsupported output format %q, must be one of [text, json]",
			c.OutputFormat)
	}

	return nil
}

func (c Config) validateSplit() error {
	switch c.Split {
	case "train", "validation", "test":
		return nil
	default:
		return errors.Errorf("split %q should be one of [train, validation, test]", c.Split)
	}
}

func (c Config) validateProvision() error {
	if c.PrometheusConfig.Enabled && c.PrometheusConfig.PushURL == "" {
		return errors.Errorf("a pushgateway url must be provided when metrics are enabled")
	}

	return nil
}

func (c Config) validateInspect() error {
	if err := c.validateSplit(); err != nil {
		return err
	}

	if c.SubsetRatio <= 0 || c.SubsetRatio > 1 {
		return errors.Errorf("subset ratio %v needs to be in (0, 1]", c.SubsetRatio)
	}

	return nil
}

func (c Config) validateStats() error {
	return c.validateInspect()
}

func (c *Config) parseLabels() {
	result := make(map[string]string)
	pairs := strings.Split(c.Labels, ",")

	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2) // SplitN to make sure we only split on the first "="
		if len(kv) == 2 {
			result[kv[0]] = kv[1]
		}
	}

	c.LabelMap = result
}
