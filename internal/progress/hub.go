package progress

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	subscriberSize = 32
	historySize    = 64
)

type jobGroup struct {
	history     [][]byte
	subscribers map[chan []byte]struct{}
	finished    bool
}

// Hub fans progress events out to WebSocket subscribers grouped by job.
// Subscribers that join late first receive the events already sent for the job.
type Hub struct {
	mu       sync.Mutex
	groups   map[string]*jobGroup
	upgrader websocket.Upgrader
	logger   *logrus.Logger
}

// NewHub creates an empty hub
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		groups: make(map[string]*jobGroup),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *Hub) group(jobID string) *jobGroup {
	g, ok := h.groups[jobID]
	if !ok {
		g = &jobGroup{subscribers: make(map[chan []byte]struct{})}
		h.groups[jobID] = g
	}
	return g
}

// Notify sends the event to every subscriber of the job. A subscriber whose
// buffer is full misses the event rather than stalling the sender.
func (h *Hub) Notify(_ context.Context, event domain.ProgressEvent) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	g := h.group(event.JobID)
	if g.finished {
		return nil
	}
	if len(g.history) < historySize {
		g.history = append(g.history, payload)
	}
	for ch := range g.subscribers {
		select {
		case ch <- payload:
		default:
			h.logger.WithField("job_id", event.JobID).Debug("Subscriber too slow, dropping progress event")
		}
	}
	return nil
}

// Subscribe registers for a job's events. The channel is closed when the job
// finishes or cancel is called.
func (h *Hub) Subscribe(jobID string) (<-chan []byte, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	g := h.group(jobID)
	ch := make(chan []byte, subscriberSize+len(g.history))
	for _, payload := range g.history {
		ch <- payload
	}
	if g.finished {
		close(ch)
		return ch, func() {}
	}
	g.subscribers[ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := g.subscribers[ch]; ok {
				delete(g.subscribers, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Finish closes every subscription of the job. Later subscribers still get
// the job's history until Forget is called.
func (h *Hub) Finish(jobID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	g := h.group(jobID)
	g.finished = true
	for ch := range g.subscribers {
		delete(g.subscribers, ch)
		close(ch)
	}
}

// Forget drops everything the hub holds for the job
func (h *Hub) Forget(jobID string) {
	h.Finish(jobID)
	h.mu.Lock()
	delete(h.groups, jobID)
	h.mu.Unlock()
}

// Subscribers returns the number of live subscribers of a job
func (h *Hub) Subscribers(jobID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if g, ok := h.groups[jobID]; ok {
		return len(g.subscribers)
	}
	return 0
}

// Jobs returns the number of jobs the hub holds state for
func (h *Hub) Jobs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups)
}

// ServeWS upgrades the request and streams the job's events until the job
// finishes or the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, jobID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	events, cancel := h.Subscribe(jobID)
	defer cancel()

	// The read loop only exists to notice the client closing the socket
	clientGone := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	logger := h.logger.WithField("job_id", jobID)
	logger.Debug("Progress subscriber connected")

	for {
		select {
		case payload, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "validation finished"))
				logger.Debug("Progress stream finished")
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return err
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-clientGone:
			logger.Debug("Progress subscriber disconnected")
			return nil
		case <-r.Context().Done():
			return nil
		}
	}
}
