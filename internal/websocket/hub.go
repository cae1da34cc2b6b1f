package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"learnhub/pkg/models"
)

// Hub keeps the connected blog feed clients and fans events out to them.
type Hub struct {
	log *zap.Logger

	mu         sync.Mutex
	sendChans  map[*websocket.Conn]chan []byte
	broadcast  chan models.BlogEvent
	register   chan *client
	unregister chan *websocket.Conn
	quit       chan struct{}
	closeOnce  sync.Once
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:        log.Named("blogfeed"),
		sendChans:  make(map[*websocket.Conn]chan []byte),
		broadcast:  make(chan models.BlogEvent, 64),
		register:   make(chan *client),
		unregister: make(chan *websocket.Conn),
		quit:       make(chan struct{}),
	}
}

// Publish queues evt for every client. It never blocks the caller.
func (h *Hub) Publish(evt models.BlogEvent) {
	select {
	case h.broadcast <- evt:
	default:
		h.log.Warn("blog feed queue full, dropping event", zap.String("type", evt.Type), zap.String("blog_id", evt.BlogID))
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sendChans)
}

// Close stops Run and disconnects every client.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for conn, sendChan := range h.sendChans {
				close(sendChan)
				delete(h.sendChans, conn)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.sendChans[c.conn] = c.send
			h.mu.Unlock()
			h.log.Debug("client connected", zap.String("remote", c.conn.RemoteAddr().String()))

		case conn := <-h.unregister:
			h.mu.Lock()
			if sendChan, ok := h.sendChans[conn]; ok {
				close(sendChan)
				delete(h.sendChans, conn)
				h.log.Debug("client disconnected", zap.String("remote", conn.RemoteAddr().String()))
			}
			h.mu.Unlock()

		case evt := <-h.broadcast:
			data, err := json.Marshal(evt)
			if err != nil {
				h.log.Error("marshal blog event", zap.Error(err))
				continue
			}

			h.mu.Lock()
			for conn, sendChan := range h.sendChans {
				select {
				case sendChan <- data:
				default:
					h.log.Warn("client send buffer full, removing", zap.String("remote", conn.RemoteAddr().String()))
					delete(h.sendChans, conn)
					close(sendChan)
				}
			}
			h.mu.Unlock()
		}
	}
}
