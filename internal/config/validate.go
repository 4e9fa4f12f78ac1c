// If you are AI: This file validates configuration values and returns descriptive errors.

package config

import (
	"fmt"
)

// Validate checks that all configuration values are within acceptable ranges.
// Returns an error describing the first validation failure found.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.RTSP.Validate(); err != nil {
		return fmt.Errorf("rtsp config: %w", err)
	}
	if err := c.VOD.Validate(); err != nil {
		return fmt.Errorf("vod config: %w", err)
	}
	return nil
}

// Validate checks RTSP ingest configuration values.
func (r *RTSPConfig) Validate() error {
	if r.RTPPortMin <= 0 || r.RTPPortMin > 65535 {
		return fmt.Errorf("rtp_port_min must be between 1 and 65535, got %d", r.RTPPortMin)
	}
	if r.RTPPortMax <= 0 || r.RTPPortMax > 65535 {
		return fmt.Errorf("rtp_port_max must be between 1 and 65535, got %d", r.RTPPortMax)
	}
	if r.RTPPortMin >= r.RTPPortMax {
		return fmt.Errorf("rtp_port_min (%d) must be less than rtp_port_max (%d)", r.RTPPortMin, r.RTPPortMax)
	}
	if r.ConnectTimeoutMS <= 0 {
		return fmt.Errorf("connect_timeout_ms must be positive, got %d", r.ConnectTimeoutMS)
	}
	if r.SendTimeoutMS <= 0 {
		return fmt.Errorf("send_timeout_ms must be positive, got %d", r.SendTimeoutMS)
	}
	return nil
}

// Validate checks static VOD mount configuration values.
func (v *VODConfig) Validate() error {
	if !v.Enabled {
		return nil
	}
	if v.RootDir == "" {
		return fmt.Errorf("root_dir must be set when vod is enabled")
	}
	if v.MountPath == "" {
		return fmt.Errorf("mount_path must be set when vod is enabled")
	}
	return nil
}

// Validate checks server configuration values.
func (s *ServerConfig) Validate() error {
	if s.HealthPort <= 0 || s.HealthPort > 65535 {
		return fmt.Errorf("health_port must be between 1 and 65535, got %d", s.HealthPort)
	}
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 1 and 65535, got %d", s.HTTPPort)
	}
	if s.RTMPPort <= 0 || s.RTMPPort > 65535 {
		return fmt.Errorf("rtmp_port must be between 1 and 65535, got %d", s.RTMPPort)
	}
	if s.HealthPort == s.HTTPPort {
		return fmt.Errorf("health_port and http_port must be different, both are %d", s.HealthPort)
	}
	if s.HealthPort == s.RTMPPort {
		return fmt.Errorf("health_port and rtmp_port must be different, both are %d", s.HealthPort)
	}
	if s.HTTPPort == s.RTMPPort {
		return fmt.Errorf("http_port and rtmp_port must be different, both are %d", s.HTTPPort)
	}
	return nil
}
