/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Seednode/cranium/games/charades"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"
)

const (
	maxMessageSize = 4096
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	qrSize         = 320
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// charadesServer ties the websocket transport to the game coordinator.
type charadesServer struct {
	cfg      *Config
	coord    *charades.Coordinator
	hub      *Hub
	metrics  *Metrics
	history  HistoryStore
	recorder *historyRecorder
}

// newCharadesServer builds the coordinator with hooks feeding metrics, logs
// and, when a store is given, round history.
func newCharadesServer(cfg *Config, words *charades.WordBank, history HistoryStore) *charadesServer {
	s := &charadesServer{
		cfg:     cfg,
		hub:     newHub(),
		history: history,
	}
	if history != nil {
		s.recorder = newHistoryRecorder(cfg, history)
	}

	registry := charades.NewRegistry(words, charades.WithRoundDuration(cfg.roundDuration))
	s.metrics = newMetrics(registry)

	hooks := charades.Hooks{
		SessionCreated: func(code string) {
			s.metrics.sessionsCreated.Inc()
			logf(cfg, "GAMES: Created game %s", code)
		},
		RoundEnded: func(r charades.RoundResult) {
			s.metrics.roundsEnded.Inc()
			logf(cfg, "GAMES: Round ended in %s, %s scored %d with %d skips", r.Code, r.GuesserName, r.Score, r.Skips)
			if s.recorder != nil {
				s.recorder.enqueue(r)
			}
		},
		WordDrawn: func(_ string, action string) {
			s.metrics.wordsDrawn.WithLabelValues(action).Inc()
		},
		Rejected: func(_ string, err error) {
			s.metrics.intentRejected(errorKind(err))
		},
	}

	s.coord = charades.NewCoordinator(registry, s.hub, hooks, cfg.endRoundOnDisconnect)

	return s
}

// start launches the background workers. They stop when ctx is done.
func (s *charadesServer) start(ctx context.Context) {
	if s.recorder != nil {
		go s.recorder.run(ctx)
	}

	if s.cfg.sessionTimeout > 0 {
		go s.reapLoop(ctx)
	}
}

// reapLoop removes sessions that have been idle longer than --session-timeout.
func (s *charadesServer) reapLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.sessionTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, code := range s.coord.ReapIdle(time.Now().Add(-s.cfg.sessionTimeout)) {
				logf(s.cfg, "GAMES: Reaped idle game %s", code)
			}
		}
	}
}

func (s *charadesServer) serveWS() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(s.cfg, "SERVE: Websocket upgrade from %s failed: %v", realIP(r), err)

			return
		}

		client := &Client{
			id:      charades.ConnID(uuid.NewString()),
			conn:    conn,
			send:    make(chan any, sendBuffer),
			limiter: rate.NewLimiter(rate.Limit(s.cfg.rateLimit), s.cfg.rateBurst),
		}

		s.hub.register(client)
		s.metrics.connectionsActive.Inc()

		logf(s.cfg, "SERVE: Websocket %s opened by %s", client.id, realIP(r))

		go client.writePump()
		s.readPump(client)
	}
}

func (s *charadesServer) readPump(c *Client) {
	defer func() {
		s.coord.Disconnect(c.id)
		s.hub.unregister(c.id)
		s.metrics.connectionsActive.Dec()
		_ = c.conn.Close()

		logf(s.cfg, "SERVE: Websocket %s closed", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		s.handleFrame(c, data)
	}
}

// handleFrame applies one inbound frame. A panic here is confined to the frame
// that caused it.
func (s *charadesServer) handleFrame(c *Client, data []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			errorf("GAMES: Recovered from panic handling frame from %s: %v", c.id, rec)
			s.metrics.intentRejected("internal")
			s.hub.Unicast(c.id, charades.NewErrorMessage("Something went wrong. Please try again."))
		}
	}()

	if !c.limiter.Allow() {
		s.metrics.intentRejected("rate_limited")
		s.hub.Unicast(c.id, charades.NewErrorMessage("Slow down, too many messages."))

		return
	}

	var in charades.Intent
	if err := json.Unmarshal(data, &in); err != nil {
		s.metrics.intentRejected("malformed")
		s.hub.Unicast(c.id, charades.NewErrorMessage("Malformed message."))

		return
	}

	s.metrics.intentReceived(in.Type)

	if err := s.coord.Handle(c.id, in); err != nil {
		logf(s.cfg, "GAMES: Rejected %s from %s: %v", in.Type, c.id, err)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// serveQR renders a PNG QR code pointing at the join page of a game.
func (s *charadesServer) serveQR() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		code := strings.ToLower(strings.TrimSpace(p.ByName("code")))
		if code == "" {
			http.Error(w, "missing game code", http.StatusBadRequest)

			return
		}

		scheme := s.cfg.scheme()
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")

		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(s.cfg, w)

		_, _ = w.Write(png)
	}
}

// redirectNewGame creates a game and sends the browser to its page.
func (s *charadesServer) redirectNewGame() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		code, err := s.coord.Create()
		if err != nil {
			errorf("GAMES: Creating game for %s: %v", realIP(r), err)
			http.Error(w, "unable to create a game right now", http.StatusServiceUnavailable)

			return
		}

		http.Redirect(w, r, s.cfg.prefix+"/play/"+code, http.StatusSeeOther)
	}
}

// register sets up routes so that:
//   - $prefix/new                → creates a game and redirects to it
//   - $prefix/play/:code         → HTML client
//   - $prefix/play/:code/qr      → PNG QR code for the game page
//   - $prefix/play/:code/history → recent rounds as JSON
//   - $prefix/ws                 → websocket shared by every game
//   - $prefix/metrics            → prometheus metrics, with --metrics
func (s *charadesServer) register(mux *httprouter.Router, index httprouter.Handle, errs chan<- error) {
	mux.GET(s.cfg.prefix+"/new", s.redirectNewGame())
	mux.GET(s.cfg.prefix+"/play/:code", index)
	mux.GET(s.cfg.prefix+"/play/:code/qr", s.serveQR())
	mux.GET(s.cfg.prefix+"/play/:code/history", serveHistory(s.cfg, s.history, errs))
	mux.GET(s.cfg.prefix+"/ws", s.serveWS())

	if s.cfg.metrics {
		mux.Handler("GET", s.cfg.prefix+"/metrics", s.metrics.handler())
	}
}
