package ircd

import (
	"fmt"
	"log"
	"net"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// recvChunkSize is the number of bytes each socket read asks for. Section
// 4.5 requires this chunk to be at least 512 bytes.
const recvChunkSize = 4096

const outboxCapacity = 128

// dataEvent carries bytes read off one connection to the loop goroutine.
type dataEvent struct {
	handle int
	data   []byte
}

// deadEvent reports that a connection's reader or writer goroutine hit a
// fatal I/O condition and the client should be disconnected.
type deadEvent struct {
	handle int
	err    error
}

// Server is the externally visible handle to a running instance: Run
// blocks serving connections until Shutdown is called or a fatal listener
// error occurs.
type Server struct {
	core *server

	listener net.Listener

	newConnChan chan net.Conn
	dataChan    chan dataEvent
	deadChan    chan deadEvent

	ready chan struct{} // closed once listener is bound, for tests that need Addr()

	shuttingDown int32 // set via atomic; the loop polls it each iteration
	nextHandle   int
}

// New creates a Server bound to cfg, ready for Run. logger receives every
// diagnostic line the core produces (section 6: "diagnostic text may be
// emitted to a sink of the implementer's choice").
func New(cfg Config, logger *log.Logger) *Server {
	return &Server{
		core:        newServer(cfg, logger),
		newConnChan: make(chan net.Conn, 16),
		dataChan:    make(chan dataEvent, 256),
		deadChan:    make(chan deadEvent, 256),
		ready:       make(chan struct{}),
	}
}

// Addr blocks until the listener is bound and returns its address. Tests
// use this to discover the port when Config.Port is 0.
func (srv *Server) Addr() net.Addr {
	<-srv.ready
	return srv.listener.Addr()
}

// Run listens on cfg.Port and serves connections until Shutdown is called.
// It returns only on shutdown or a fatal listener error.
func (srv *Server) Run() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", srv.core.config.Port))
	if err != nil {
		return errors.Wrap(err, "unable to listen")
	}
	srv.listener = ln
	close(srv.ready)

	go srv.acceptConnections(ln)

	for {
		select {
		case conn := <-srv.newConnChan:
			srv.acceptClient(conn)

		case ev := <-srv.dataChan:
			srv.handleData(ev.handle, ev.data)

		case ev := <-srv.deadChan:
			if c, ok := srv.core.findClientByHandle(ev.handle); ok {
				disconnect(srv.core, c, "Connection reset")
			}

		case <-time.After(time.Second):
		}

		if atomic.LoadInt32(&srv.shuttingDown) != 0 {
			srv.shutdownAll()
			return nil
		}
	}
}

// Shutdown requests an orderly stop. The loop finishes its current
// iteration, closes every client cleanly, and Run returns (section 4.5,
// triggered in this repo by SIGINT/SIGTERM in main.go).
func (srv *Server) Shutdown() {
	atomic.StoreInt32(&srv.shuttingDown, 1)
}

func (srv *Server) shutdownAll() {
	for _, c := range srv.core.clients {
		disconnect(srv.core, c, "Server shutting down")
	}
	_ = srv.listener.Close()
}

// acceptConnections accepts TCP connections and reports them to the loop
// goroutine over a channel; it never touches server state directly.
func (srv *Server) acceptConnections(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if atomic.LoadInt32(&srv.shuttingDown) != 0 {
				return
			}
			srv.core.log.Printf("accept error: %s", err)
			continue
		}
		srv.newConnChan <- conn
	}
}

// acceptClient registers a newly accepted connection and spins up its
// reader/writer goroutines. Only the loop goroutine calls this, so handle
// allocation needs no synchronization.
func (srv *Server) acceptClient(conn net.Conn) {
	handle := srv.nextHandle
	srv.nextHandle++

	host := resolveHost(conn)
	outbox := make(chan string, outboxCapacity)

	c := newClient(handle, host, outbox)
	srv.core.registerClient(c)

	go readLoop(conn, handle, srv.dataChan, srv.deadChan)
	go writeLoop(conn, outbox)
}

// resolveHost implements the hostname default from section 6: the
// resolved peer address, or "unknown" if resolution fails.
func resolveHost(conn net.Conn) string {
	addr, ok := conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return "unknown"
	}
	return addr.IP.String()
}

// readLoop is the per-connection reader goroutine. It never touches server
// state: it only ever pushes bytes or a death notice onto channels, which
// stands in for readiness-multiplexed, non-blocking reads in the
// single-thread design this server is modeled on (section 5).
func readLoop(conn net.Conn, handle int, dataChan chan<- dataEvent, deadChan chan<- deadEvent) {
	buf := make([]byte, recvChunkSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			dataChan <- dataEvent{handle: handle, data: chunk}
		}
		if err != nil {
			deadChan <- deadEvent{handle: handle, err: err}
			return
		}
	}
}

// writeLoop is the per-connection writer goroutine and the only goroutine
// that ever calls conn.Write. The loop goroutine closes outbox to signal
// that the client is gone; writeLoop then closes the socket.
func writeLoop(conn net.Conn, outbox <-chan string) {
	for data := range outbox {
		if _, err := conn.Write([]byte(data)); err != nil {
			break
		}
	}
	_ = conn.Close()
}

// handleData feeds newly arrived bytes through the codec and dispatch for
// one client. Each extracted message is processed fully before the next,
// and processing stops early if the client was disconnected mid-batch
// (e.g. by its own QUIT).
func (srv *Server) handleData(handle int, data []byte) {
	c, ok := srv.core.findClientByHandle(handle)
	if !ok {
		return
	}

	c.recv.append(data)
	for _, raw := range c.recv.extract() {
		m, err := parseMessage(raw)
		if err != nil {
			// Parser failure is protocol tier: discard silently (section 7).
			continue
		}
		dispatch(srv.core, c, m)

		if _, stillConnected := srv.core.findClientByHandle(handle); !stillConnected {
			return
		}
	}
}

// disconnect is the single function through which every client departs,
// whether by QUIT, a connection error, or a forced close: it purges the
// client from every channel and index in one atomic step so no stale
// reference to handle survives it (section 3, section 4.5).
func disconnect(s *server, c *client, reason string) {
	if _, ok := s.findClientByHandle(c.handle); !ok {
		return
	}

	if !c.quitSent {
		c.quitSent = true
		if c.step == stepRegistered {
			quitLine := line(c.prefix(), "QUIT", nil, reason)
			for h := range s.peersOf(c) {
				s.send(h, quitLine)
			}
		}
	}

	for chName := range c.channels {
		ch, ok := s.channels[chName]
		if !ok {
			continue
		}
		ch.removeMember(c.handle)
		if ch.memberCount() == 0 {
			s.removeChannel(ch)
		}
	}
	c.channels = make(map[string]struct{})

	s.unregisterNick(c)
	delete(s.clients, c.handle)
	close(c.outbox)
}
