// If you are AI: Tests for the RTSP session's URL/path helpers (C8/C9):
// tcUrl -> app/stream splitting and output-template substitution.

package rtspingest

import (
	"net"
	"testing"

	"nonchalant/internal/config"
	"nonchalant/internal/rtspingest/portpool"
)

func TestTcURLToAppStreamStripsSDPSuffix(t *testing.T) {
	app, stream := tcURLToAppStream("rtsp://127.0.0.1:554/live/cam1.sdp")
	if app != "live" || stream != "cam1" {
		t.Fatalf("tcURLToAppStream() = (%q, %q), want (live, cam1)", app, stream)
	}
}

func TestTcURLToAppStreamNoSuffix(t *testing.T) {
	app, stream := tcURLToAppStream("rtsp://127.0.0.1:554/live/cam1")
	if app != "live" || stream != "cam1" {
		t.Fatalf("tcURLToAppStream() = (%q, %q), want (live, cam1)", app, stream)
	}
}

func TestSplitRTSPPathNoScheme(t *testing.T) {
	app, stream := splitRTSPPath("live/cam1")
	if app != "live" || stream != "cam1" {
		t.Fatalf("splitRTSPPath() = (%q, %q), want (live, cam1)", app, stream)
	}
}

func TestResolveOutputTargetSubstitutesAppAndStream(t *testing.T) {
	addr, app, stream := resolveOutputTarget("rtmp://127.0.0.1:1935/[app]/[stream]", "live", "cam1")
	if addr != "127.0.0.1:1935" || app != "live" || stream != "cam1" {
		t.Fatalf("resolveOutputTarget() = (%q, %q, %q)", addr, app, stream)
	}
}

func TestResolveOutputTargetFixedPath(t *testing.T) {
	addr, app, stream := resolveOutputTarget("rtmp://127.0.0.1:1935/ingest/main", "live", "cam1")
	if addr != "127.0.0.1:1935" || app != "ingest" || stream != "main" {
		t.Fatalf("resolveOutputTarget() = (%q, %q, %q)", addr, app, stream)
	}
}

func TestNewSessionIDIsEightHexChars(t *testing.T) {
	id := newSessionID()
	if len(id) != 8 {
		t.Fatalf("newSessionID() = %q, want 8 chars", id)
	}
}

func TestHandleRequestAbortsOnUnsupportedMethod(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	pool := portpool.New(30000, 30010)
	session := NewSession(serverConn, config.RTSPConfig{}, pool)

	req := &Request{Method: "TEARDOWN", URI: "rtsp://127.0.0.1/live/test"}
	if err := session.handleRequest(req); err == nil {
		t.Fatalf("handleRequest(TEARDOWN) error = nil, want abort error for unsupported method")
	}
}
