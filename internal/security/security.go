// If you are AI: This file implements a trivial allow/deny predicate over
// app name and peer IP, the boundary spec.md names as an out-of-scope
// collaborator ("security filter"). Grounded on SRS's srs_app_security.hpp
// allow/deny list shape.

package security

import "nonchalant/internal/config"

// Filter evaluates app and peer-IP allow/deny lists. A nil *Filter (or one
// built from a zero-value config.SecurityConfig) allows everything.
type Filter struct {
	allowApps map[string]bool
	denyApps  map[string]bool
	allowIPs  map[string]bool
	denyIPs   map[string]bool
}

// New builds a Filter from configuration.
func New(cfg config.SecurityConfig) *Filter {
	return &Filter{
		allowApps: toSet(cfg.AllowApps),
		denyApps:  toSet(cfg.DenyApps),
		allowIPs:  toSet(cfg.AllowIPs),
		denyIPs:   toSet(cfg.DenyIPs),
	}
}

func toSet(vals []string) map[string]bool {
	if len(vals) == 0 {
		return nil
	}
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// AllowApp reports whether app is permitted to publish/play. Deny always
// wins; an empty allow list means "allow all".
func (f *Filter) AllowApp(app string) bool {
	if f == nil {
		return true
	}
	if f.denyApps[app] {
		return false
	}
	if len(f.allowApps) == 0 {
		return true
	}
	return f.allowApps[app]
}

// AllowIP reports whether a peer IP is permitted to connect. Deny always
// wins; an empty allow list means "allow all".
func (f *Filter) AllowIP(ip string) bool {
	if f == nil {
		return true
	}
	if f.denyIPs[ip] {
		return false
	}
	if len(f.allowIPs) == 0 {
		return true
	}
	return f.allowIPs[ip]
}

// Allow reports whether both the app and the peer IP are permitted.
func (f *Filter) Allow(app, ip string) bool {
	return f.AllowApp(app) && f.AllowIP(ip)
}
