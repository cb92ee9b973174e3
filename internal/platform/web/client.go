package web

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/gurudaths93/planning-poker-backend/internal/engine"
)

// handleWS upgrades the request and runs the connection's read pump until
// it disconnects. Each connection gets a uuid identity, a channel-backed
// handle registered for broadcasts, and a write pump of its own.
func (s *Server) handleWS(c *gin.Context) {
	opts := &websocket.AcceptOptions{}
	if allowsAnyOrigin(s.cfg.Server.AllowedOrigins) {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = s.cfg.Server.AllowedOrigins
	}

	ws, err := websocket.Accept(c.Writer, c.Request, opts)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}

	connID := engine.ConnID(uuid.NewString())
	conn := engine.NewChannelConn(connID, s.cfg.Engine.ConnBuffer)
	s.conns.Register(conn)
	s.logger.Info("client connected", "conn", connID, "remote", c.Request.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	go s.writePump(ctx, ws, conn)

	s.readPump(ctx, ws, connID)

	// Read pump exited: the transport is gone. The engine keeps the user
	// in the session for reconnects; only the connection state goes away.
	s.engine.Send(engine.DisconnectMsg{ConnID: connID})
	s.conns.Unregister(connID)
	conn.Close()
	cancel()
	ws.Close(websocket.StatusNormalClosure, "closed")
	s.logger.Info("client disconnected", "conn", connID)
}

func (s *Server) readPump(ctx context.Context, ws *websocket.Conn, connID engine.ConnID) {
	for {
		var env inboundEnvelope
		if err := wsjson.Read(ctx, ws, &env); err != nil {
			return
		}

		msg, err := decodeMessage(connID, env)
		if err != nil {
			// Malformed frames are the client's problem, not fatal.
			s.logger.Warn("dropping malformed message", "conn", connID, "error", err)
			continue
		}
		s.engine.Send(msg)
	}
}

func (s *Server) writePump(ctx context.Context, ws *websocket.Conn, conn *engine.ChannelConn) {
	for {
		select {
		case evt := <-conn.Events():
			if err := wsjson.Write(ctx, ws, encodeEvent(evt)); err != nil {
				return
			}
		case <-conn.Done():
			return
		case <-ctx.Done():
			return
		}
	}
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
