package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lcampanelli/relayvox/internal/exchange"
	"github.com/lcampanelli/relayvox/internal/protocol"
	"github.com/lcampanelli/relayvox/internal/session"
)

const (
	readIdleTimeout  = 120 * time.Second
	inboundQueueSize = 32
)

// handleWS establishes one long-lived session. The token travels as a query
// parameter and is checked before the upgrade: an unauthorized connect is
// refused before the handshake completes and no frame is ever read from it.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.verifier.Authorized(r.URL.Query().Get("token")) {
		s.metrics.SessionEvents.WithLabelValues("ws_refused").Inc()
		respondError(w, http.StatusUnauthorized, "unauthorized", "invalid app token")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sess := s.sessions.Register(conn)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()

	s.serveSession(sess, conn)
}

// serveSession reads frames until the connection dies. Audio frames feed a
// single worker goroutine, so exchanges on one session run strictly FIFO;
// control frames are answered inline without touching the exchange queue.
func (s *Server) serveSession(sess *session.Session, conn *websocket.Conn) {
	inbound := make(chan exchange.Payload, inboundQueueSize)
	workerDone := make(chan struct{})

	go func() {
		defer close(workerDone)
		for p := range inbound {
			// The upstream call deliberately outlives a disconnect: the
			// exchange completes on a background context and Deliver drops
			// the result if the connection is already gone.
			res, err := s.engine.Run(context.Background(), sess.ID, "ws", p)
			if err != nil {
				s.deliver(sess, protocol.NewError("empty audio frame"))
				continue
			}
			s.deliver(sess, protocol.NewAssistantResponse(res.Transcript, res.ReplyText))
		}
	}()

	conn.SetReadLimit(maxAudioBytes)
	_ = conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
		_ = s.sessions.Touch(sess.ID)

		switch msgType {
		case websocket.BinaryMessage:
			s.metrics.WSMessages.WithLabelValues("inbound", "audio").Inc()
			if len(data) == 0 {
				// Client error, recoverable; the exchange engine is never entered.
				s.deliver(sess, protocol.NewError("empty audio frame"))
				continue
			}
			s.deliver(sess, protocol.NewProcessing())
			select {
			case inbound <- exchange.Payload{Data: data}:
			default:
				s.deliver(sess, protocol.NewError("too many pending voice messages"))
			}
		case websocket.TextMessage:
			msg, err := protocol.ParseClientMessage(data)
			if err != nil {
				s.deliver(sess, protocol.NewError("unrecognized message"))
				continue
			}
			if t, ok := protocol.MessageTypeOf(msg); ok {
				s.metrics.WSMessages.WithLabelValues("inbound", string(t)).Inc()
			}
			switch msg.(type) {
			case protocol.Ping:
				s.deliver(sess, protocol.NewPong())
			}
		default:
			// Ignore other frame kinds; close frames surface as read errors.
		}
	}

	close(inbound)
	s.sessions.Unregister(sess.ID)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()
	<-workerDone
}

// deliver sends one outbound message, relying on the manager's self-healing
// cleanup when the connection has broken underneath us.
func (s *Server) deliver(sess *session.Session, msg any) {
	if err := s.sessions.Deliver(sess, msg); err != nil {
		s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
		return
	}
	if t, ok := protocol.MessageTypeOf(msg); ok {
		s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
	}
}
