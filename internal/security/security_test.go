package security

import (
	"testing"

	"nonchalant/internal/config"
)

func TestAllowAppEmptyListAllowsAll(t *testing.T) {
	f := New(config.SecurityConfig{})
	if !f.AllowApp("live") {
		t.Fatal("expected empty allow list to allow all apps")
	}
}

func TestAllowAppRespectsAllowList(t *testing.T) {
	f := New(config.SecurityConfig{AllowApps: []string{"live"}})
	if !f.AllowApp("live") {
		t.Fatal("expected \"live\" to be allowed")
	}
	if f.AllowApp("other") {
		t.Fatal("expected \"other\" to be denied when not in allow list")
	}
}

func TestDenyAppTakesPrecedence(t *testing.T) {
	f := New(config.SecurityConfig{AllowApps: []string{"live"}, DenyApps: []string{"live"}})
	if f.AllowApp("live") {
		t.Fatal("expected deny to override allow")
	}
}

func TestAllowIP(t *testing.T) {
	f := New(config.SecurityConfig{DenyIPs: []string{"10.0.0.1"}})
	if f.AllowIP("10.0.0.1") {
		t.Fatal("expected denied IP to be rejected")
	}
	if !f.AllowIP("10.0.0.2") {
		t.Fatal("expected non-denied IP to be allowed")
	}
}

func TestNilFilterAllowsAll(t *testing.T) {
	var f *Filter
	if !f.Allow("anything", "1.2.3.4") {
		t.Fatal("expected nil filter to allow everything")
	}
}
