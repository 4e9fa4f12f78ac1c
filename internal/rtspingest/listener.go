// If you are AI: This file implements the RTSP caster's TCP accept loop,
// the C8 counterpart of internal/svc/rtmp/server.go's Listen/Accept. Each
// accepted connection becomes a Session (C8) supervised by connmgr.Manager
// (C3). Grounded on SrsRtspCaster::listen/on_tcp_client and
// internal/svc/rtmp/server.go's own Listen/Accept/handleConnection shape.

package rtspingest

import (
	"context"
	"log"
	"net"

	"nonchalant/internal/config"
	"nonchalant/internal/connmgr"
	"nonchalant/internal/rtspingest/portpool"
)

// Listener accepts RTSP/TCP connections and hands each one to the
// connection manager as a Session.
type Listener struct {
	cfg      config.RTSPConfig
	pool     *portpool.Pool
	manager  *connmgr.Manager
	listener net.Listener
}

// NewListener creates an RTSP caster bound to cfg's listen address, with
// an RTP/RTCP port pool over [RTPPortMin, RTPPortMax).
func NewListener(cfg config.RTSPConfig, manager *connmgr.Manager) *Listener {
	return &Listener{
		cfg:     cfg,
		pool:    portpool.New(cfg.RTPPortMin, cfg.RTPPortMax),
		manager: manager,
	}
}

// Listen opens the TCP listening socket.
func (l *Listener) Listen() error {
	ln, err := net.Listen("tcp", l.cfg.ListenAddr)
	if err != nil {
		return err
	}
	l.listener = ln
	return nil
}

// Accept accepts connections until the listener is closed, handing each to
// the connection manager as a Session.
func (l *Listener) Accept(ctx context.Context) error {
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			return err
		}
		session := NewSession(conn, l.cfg, l.pool)
		l.manager.Add(ctx, session)
		log.Printf("rtsp: accepted connection from %s", conn.RemoteAddr())
	}
}

// Close closes the listening socket.
func (l *Listener) Close() error {
	if l.listener == nil {
		return nil
	}
	return l.listener.Close()
}
