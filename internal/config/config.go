// If you are AI: This file defines the configuration structure for nonchalant.
// It uses strict YAML decoding and explicit defaults.

package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the complete server configuration.
// All fields must have explicit defaults or be required.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Relays    []RelayConfig    `yaml:"relays,omitempty"`
	Transcode *TranscodeConfig `yaml:"transcode,omitempty"`
	RTSP      RTSPConfig       `yaml:"rtsp,omitempty"`
	Hooks     HooksConfig      `yaml:"hooks,omitempty"`
	Security  SecurityConfig   `yaml:"security,omitempty"`
	VOD       VODConfig        `yaml:"vod,omitempty"`
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	HealthPort int `yaml:"health_port"` // Kept for compatibility; /healthz is served on HTTPPort
	HTTPPort   int `yaml:"http_port"`   // Port for HTTP services (health, HTTP-FLV, WS-FLV, API, VOD)
	RTMPPort   int `yaml:"rtmp_port"`   // Port for the RTMP service
}

// RTSPConfig defines the RTSP ingest bridge's listener and output settings.
type RTSPConfig struct {
	ListenAddr        string `yaml:"listen_addr"`
	OutputURLTemplate string `yaml:"output_url_template"` // e.g. "rtmp://127.0.0.1:1935/[app]/[stream]"
	RTPPortMin        int    `yaml:"rtp_port_min"`
	RTPPortMax        int    `yaml:"rtp_port_max"`
	ConnectTimeoutMS  int    `yaml:"connect_timeout_ms"`
	SendTimeoutMS     int    `yaml:"send_timeout_ms"`
}

// HooksConfig lists the HTTP callback URLs invoked on stream lifecycle events.
type HooksConfig struct {
	OnPublish   []string `yaml:"on_publish,omitempty"`
	OnUnpublish []string `yaml:"on_unpublish,omitempty"`
	OnPlay      []string `yaml:"on_play,omitempty"`
}

// SecurityConfig is a trivial allow/deny predicate over app name and peer IP.
// Empty allow lists mean "allow all"; deny lists always take precedence.
type SecurityConfig struct {
	AllowApps []string `yaml:"allow_apps,omitempty"`
	DenyApps  []string `yaml:"deny_apps,omitempty"`
	AllowIPs  []string `yaml:"allow_ips,omitempty"`
	DenyIPs   []string `yaml:"deny_ips,omitempty"`
}

// VODConfig enables a static-file mount for serving pre-recorded media.
type VODConfig struct {
	Enabled   bool   `yaml:"enabled"`
	MountPath string `yaml:"mount_path"`
	RootDir   string `yaml:"root_dir"`
}

// RelayConfig defines a relay task configuration.
type RelayConfig struct {
	App       string `yaml:"app"`                 // Application name
	Name      string `yaml:"name"`                // Stream name
	Mode      string `yaml:"mode"`                // "pull" or "push"
	RemoteURL string `yaml:"remote_url"`          // Remote RTMP URL
	Reconnect bool   `yaml:"reconnect,omitempty"` // Enable reconnect on failure
}

// TranscodeConfig defines transcoding configuration.
// Only used when built with -tags ffmpeg.
type TranscodeConfig struct {
	Enabled  bool               `yaml:"enabled"`            // Enable transcoding
	Profiles []TranscodeProfile `yaml:"profiles,omitempty"` // Transcoding profiles
}

// TranscodeProfile defines a transcoding profile.
type TranscodeProfile struct {
	Name      string `yaml:"name"`       // Profile name
	App       string `yaml:"app"`        // Source application
	Stream    string `yaml:"stream"`     // Source stream name
	Format    string `yaml:"format"`     // Output format (hls, dash, etc.)
	OutputURL string `yaml:"output_url"` // Output URL
}

// Load reads configuration from a YAML file.
// Returns an error if the file cannot be read or decoded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields

	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Apply defaults
	cfg.setDefaults()

	return &cfg, nil
}

// setDefaults applies explicit default values to unset fields.
func (c *Config) setDefaults() {
	if c.Server.HealthPort == 0 {
		c.Server.HealthPort = 8080
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8081
	}
	if c.Server.RTMPPort == 0 {
		c.Server.RTMPPort = 1935
	}
	if c.RTSP.ListenAddr == "" {
		c.RTSP.ListenAddr = ":554"
	}
	if c.RTSP.OutputURLTemplate == "" {
		c.RTSP.OutputURLTemplate = "rtmp://127.0.0.1:1935/[app]/[stream]"
	}
	if c.RTSP.RTPPortMin == 0 {
		c.RTSP.RTPPortMin = 20000
	}
	if c.RTSP.RTPPortMax == 0 {
		c.RTSP.RTPPortMax = 30000
	}
	if c.RTSP.ConnectTimeoutMS == 0 {
		c.RTSP.ConnectTimeoutMS = 3000
	}
	if c.RTSP.SendTimeoutMS == 0 {
		c.RTSP.SendTimeoutMS = 5000
	}
	if c.VOD.MountPath == "" {
		c.VOD.MountPath = "/vod/"
	}
	if c.VOD.RootDir == "" {
		c.VOD.RootDir = "./vod"
	}
}

// Watcher reloads configuration from disk, the interface a SIGHUP handler
// calls. The mechanism that triggers it (file-watching, signal handling) is
// out of scope; only this interface and its grounding in Load are in scope.
type Watcher interface {
	Reload(path string) (*Config, error)
}

// FileWatcher implements Watcher by re-reading the file with Load.
type FileWatcher struct{}

// Reload re-parses the configuration file at path.
func (FileWatcher) Reload(path string) (*Config, error) {
	return Load(path)
}
