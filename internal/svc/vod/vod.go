// If you are AI: This file implements the static VOD mount: a thin
// http.FileServer boundary serving pre-recorded media from a root
// directory, matching spec.md's characterization of VOD as thin glue.

package vod

import (
	"net/http"
	"strings"

	"nonchalant/internal/config"
)

// Service serves static files from a configured root directory under a
// configured mount path. A disabled config yields a Service whose
// RegisterRoutes is a no-op.
type Service struct {
	enabled   bool
	mountPath string
	rootDir   string
}

// New builds a Service from configuration.
func New(cfg config.VODConfig) *Service {
	return &Service{
		enabled:   cfg.Enabled,
		mountPath: cfg.MountPath,
		rootDir:   cfg.RootDir,
	}
}

// RegisterRoutes mounts the static file handler on mux, if enabled.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	if !s.enabled {
		return
	}
	prefix := s.mountPath
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	fileServer := http.FileServer(http.Dir(s.rootDir))
	mux.Handle(prefix, http.StripPrefix(prefix, fileServer))
}
