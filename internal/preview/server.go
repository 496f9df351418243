// Package preview streams rendered frames to browsers over websockets. It is
// read-only: client messages are discarded.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/emberglow/internal/pixel"
)

const (
	writeWait = 200 * time.Millisecond
	// sendQueue is how many messages a client may fall behind before new
	// ones are dropped for it.
	sendQueue = 8
)

// Server is a led.Driver that mirrors frames to websocket clients.
type Server struct {
	mu          sync.Mutex
	count       int
	driver      string
	throttle    time.Duration
	lastEmit    time.Time
	frameID     uint64
	startTime   time.Time
	rgb         []byte
	clients     map[*client]bool
	diagClients map[*client]bool
}

// New returns a server for a strip of count LEDs. driver names the hardware
// sink for the topology message.
func New(count int, driver string) *Server {
	return &Server{
		count:       count,
		driver:      driver,
		throttle:    50 * time.Millisecond, // ~20 FPS to the browser
		startTime:   time.Now(),
		rgb:         make([]byte, count*3),
		clients:     map[*client]bool{},
		diagClients: map[*client]bool{},
	}
}

// Routes returns the HTTP handler: /ws frames, /diag diagnostics, /health.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withCORS)
	r.Get("/ws", s.HandleFramesWS)
	r.Get("/diag", s.HandleDiagWS)
	r.Get("/health", s.HandleHealth)
	return r
}

// Serve listens on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	log.Info().Str("addr", addr).Msg("preview server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Write broadcasts frame, dropping frames that arrive faster than the
// throttle.
func (s *Server) Write(frame []pixel.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.lastEmit.Add(s.throttle).After(now) {
		return nil
	}
	s.lastEmit = now

	s.rgb = s.rgb[:0]
	for _, c := range frame {
		s.rgb = append(s.rgb, c.R, c.G, c.B)
	}
	s.frameID++

	type msg struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	b, _ := json.Marshal(msg{T: now.UnixNano(), FrameID: s.frameID, RGB: s.rgb})
	s.broadcast(s.clients, b)
	return nil
}

// Report pushes d to diagnostics clients.
func (s *Server) Report(d Diagnostic) {
	b, _ := json.Marshal(d)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcast(s.diagClients, b)
}

// Close disconnects every client.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.close()
		delete(s.clients, c)
	}
	for c := range s.diagClients {
		c.close()
		delete(s.diagClients, c)
	}
	return nil
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	s.accept(w, r, func(c *client) {
		s.clients[c] = true
		s.sendTopology(c)
	}, func(c *client) { delete(s.clients, c) })
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	s.accept(w, r, func(c *client) {
		s.diagClients[c] = true
	}, func(c *client) { delete(s.diagClients, c) })
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"count":    s.count,
		"driver":   s.driver,
		"clients":  len(s.clients),
	}
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// accept upgrades the request, registers the client under the lock and
// drains reads until the peer goes away.
func (s *Server) accept(w http.ResponseWriter, r *http.Request, add, remove func(*client)) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade")
		return
	}
	c := newClient(conn)
	go c.run()

	s.mu.Lock()
	add(c)
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			remove(c)
			s.mu.Unlock()
			c.close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// sendTopology greets a new frame client. Caller holds s.mu.
func (s *Server) sendTopology(c *client) {
	top := map[string]any{
		"count":  s.count,
		"shape":  "ring",
		"driver": s.driver,
	}
	b, _ := json.Marshal(top)
	c.offer(b)
}

// broadcast queues b for every client in set. It never blocks; a client
// whose queue is full misses b. Caller holds s.mu.
func (s *Server) broadcast(set map[*client]bool, b []byte) {
	for c := range set {
		if !c.offer(b) {
			log.Debug().Msg("preview client behind; message dropped")
		}
	}
}

// client owns one websocket connection. Only run writes to it.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendQueue),
		done: make(chan struct{}),
	}
}

func (c *client) offer(b []byte) bool {
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// run writes queued messages until the client is closed or a write fails,
// then closes the connection.
func (c *client) run() {
	defer c.conn.Close()
	for {
		select {
		case <-c.done:
			return
		case b := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				log.Debug().Err(err).Msg("preview write")
				return
			}
		}
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
