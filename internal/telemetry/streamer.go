// Package telemetry broadcasts a best-effort, non-blocking per-tick
// snapshot of the control core's state to any number of WebSocket
// subscribers, for dashboards and chase-boat displays. It never blocks
// the tick that produces a sample: a full broadcast buffer drops the
// oldest pending sample, and a slow client is skipped rather than
// stalling the fan-out to the rest.
package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Sample is one tick's worth of telemetry.
type Sample struct {
	TimestampMS int64   `json:"timestamp_ms"`
	LatDeg      float64 `json:"lat_deg"`
	LngDeg      float64 `json:"lng_deg"`
	HeadingDeg  float64 `json:"heading_deg"`
	SpeedMS     float64 `json:"speed_ms"`
	AlphaAppDeg float64 `json:"alpha_app_deg"`
	MagAppMS    float64 `json:"mag_app_ms"`
	AlphaTrueDeg float64 `json:"alpha_true_deg"`
	MagTrueMS   float64 `json:"mag_true_ms"`
	GammaSailDeg float64 `json:"gamma_sail_deg"`
	GammaRudderDeg float64 `json:"gamma_rudder_deg"`
	HelmsmanState string `json:"helmsman_state"`
	Tacks       int     `json:"tacks"`
	Jibes       int     `json:"jibes"`
	Valid       bool    `json:"valid"`
}

type client struct {
	conn *websocket.Conn
	send chan Sample
	id   string
}

// Streamer fans a stream of Samples out to connected WebSocket clients.
type Streamer struct {
	mu      sync.RWMutex
	clients map[*client]bool

	broadcast chan Sample
	upgrader  websocket.Upgrader
	logger    *logrus.Logger

	messagesSent uint64
}

// New builds a Streamer. It does nothing until Run is started.
func New(logger *logrus.Logger) *Streamer {
	return &Streamer{
		clients:   make(map[*client]bool),
		broadcast: make(chan Sample, 64),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades an HTTP request to a WebSocket subscriber.
func (s *Streamer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Error("telemetry: failed to upgrade websocket")
		return
	}
	c := &client{conn: conn, send: make(chan Sample, 16), id: r.RemoteAddr}

	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()

	go s.writePump(c)
	go s.readPump(c)
}

// Publish enqueues a sample for broadcast, dropping the oldest pending
// sample if the broadcast buffer is full.
func (s *Streamer) Publish(sample Sample) {
	select {
	case s.broadcast <- sample:
		return
	default:
	}
	select {
	case <-s.broadcast:
	default:
	}
	select {
	case s.broadcast <- sample:
	default:
	}
}

// Run drains the broadcast channel and fans each sample out until
// stopCh is closed.
func (s *Streamer) Run(stopCh <-chan struct{}) {
	for {
		select {
		case <-stopCh:
			s.closeAll()
			return
		case sample := <-s.broadcast:
			s.fanOut(sample)
		}
	}
}

func (s *Streamer) fanOut(sample Sample) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- sample:
			s.messagesSent++
		default:
			// slow client, skip this sample rather than block the fan-out
		}
	}
}

func (s *Streamer) writePump(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case sample, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			data, err := json.Marshal(sample)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Streamer) readPump(c *client) {
	defer func() {
		s.mu.Lock()
		if _, ok := s.clients[c]; ok {
			delete(s.clients, c)
			close(c.send)
		}
		s.mu.Unlock()
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		// subscribers are read-only; incoming frames are read and
		// discarded until the connection fails or closes
	}
}

func (s *Streamer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.conn.Close()
		close(c.send)
		delete(s.clients, c)
	}
}

// Stats reports the current subscriber count and lifetime sent count.
func (s *Streamer) Stats() (clients int, sent uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients), s.messagesSent
}
