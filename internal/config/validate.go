package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateKeyframes(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.PollIntervalMS <= 0 {
		return errors.New("workflow.poll_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateKeyframes() error {
	if c.Keyframes.MaxFrames <= 0 {
		return errors.New("keyframes.max_frames must be positive")
	}
	if c.Keyframes.SceneThreshold < 0 || c.Keyframes.SceneThreshold > 1 {
		return errors.New("keyframes.scene_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
