package tcpsync

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"learnhub/pkg/models"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 256
)

// Server fans progress events out to every connected TCP client as
// newline-delimited JSON. Clients only listen.
type Server struct {
	addr string
	log  *zap.Logger

	mu      sync.Mutex
	clients map[net.Conn]*client
	ln      net.Listener

	events    <-chan models.ProgressUpdate
	quit      chan struct{}
	closeOnce sync.Once
}

// each client has its own writer so a stalled reader never blocks the others
type client struct {
	conn net.Conn
	send chan []byte
}

func New(addr string, events <-chan models.ProgressUpdate, log *zap.Logger) *Server {
	return &Server{
		addr:    addr,
		log:     log.Named("tcpsync"),
		clients: make(map[net.Conn]*client),
		events:  events,
		quit:    make(chan struct{}),
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts clients on ln until Close is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	select {
	case <-s.quit:
		s.mu.Unlock()
		return ln.Close()
	default:
	}
	s.ln = ln
	s.mu.Unlock()
	s.log.Info("progress feed listening", zap.String("addr", ln.Addr().String()))

	go s.broadcastLoop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}
		if !s.addClient(conn) {
			_ = conn.Close()
			return nil
		}
		s.log.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))
	}
}

// Close stops accepting, ends the broadcast loop and disconnects every client.
func (s *Server) Close() error {
	s.closeOnce.Do(func() { close(s.quit) })

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, c := range s.clients {
		delete(s.clients, conn)
		close(c.send)
		_ = conn.Close()
	}
	if s.ln == nil {
		return nil
	}
	err := s.ln.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) addClient(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.quit:
		return false
	default:
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	s.clients[conn] = c
	go s.readLoop(c)
	go s.writeLoop(c)
	return true
}

// removeClient is safe to call more than once for the same client.
func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.clients[c.conn]; ok && cur == c {
		delete(s.clients, c.conn)
		close(c.send)
	}
	_ = c.conn.Close()
}

// readLoop only exists to notice disconnects.
func (s *Server) readLoop(c *client) {
	sc := bufio.NewScanner(c.conn)
	for sc.Scan() {
	}
	s.removeClient(c)
	s.log.Info("client disconnected", zap.String("remote", c.conn.RemoteAddr().String()))
}

func (s *Server) writeLoop(c *client) {
	for b := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if _, err := c.conn.Write(b); err != nil {
			s.removeClient(c)
			// drain so broadcastLoop never sees a full buffer from a dead writer
			for range c.send {
			}
			return
		}
	}
}

func (s *Server) broadcastLoop() {
	for {
		select {
		case <-s.quit:
			return
		case evt, ok := <-s.events:
			if !ok {
				return
			}
			b, err := json.Marshal(evt)
			if err != nil {
				s.log.Error("marshal event", zap.Error(err))
				continue
			}
			b = append(b, '\n')

			s.mu.Lock()
			for conn, c := range s.clients {
				select {
				case c.send <- b:
				default:
					s.log.Warn("client too slow, disconnecting", zap.String("remote", conn.RemoteAddr().String()))
					delete(s.clients, conn)
					close(c.send)
					_ = conn.Close()
				}
			}
			s.mu.Unlock()
		}
	}
}
