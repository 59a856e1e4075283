package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/adcondev/print-sync/internal/presence"
	"github.com/adcondev/print-sync/internal/printer"
	"github.com/adcondev/print-sync/internal/reconcile"
	"github.com/adcondev/print-sync/internal/worker"
	workererrors "github.com/adcondev/print-sync/internal/worker/errors"
)

// PrinterLister serves the presence view.
type PrinterLister interface {
	GetView(ctx context.Context, forceRefresh bool) (presence.View, error)
	GetSummary(ctx context.Context) printer.Summary
}

// LoopStats exposes reconciliation loop statistics.
type LoopStats interface {
	Stats() worker.Statistics
}

// Authenticator checks the control token for privileged messages.
type Authenticator interface {
	Enabled() bool
	ValidateToken(token string) bool
	IsLockedOut(client string) bool
	RecordFailure(client string)
	ClearFailures(client string)
}

// DefaultMessagesPerMinute bounds messages from a single client.
const DefaultMessagesPerMinute = 60

// Config holds server configuration
type Config struct {
	// AllowedOrigins are host patterns accepted in the Origin header.
	// Empty means same-origin only.
	AllowedOrigins    []string
	MessagesPerMinute int
}

// Message represents incoming WebSocket message
type Message struct {
	Tipo  string `json:"tipo"`
	ID    string `json:"id,omitempty"`
	Token string `json:"token,omitempty"`
}

// Response represents outgoing WebSocket message
type Response struct {
	Tipo     string              `json:"tipo"`
	ID       string              `json:"id,omitempty"`
	Status   string              `json:"status,omitempty"`
	Mensaje  string              `json:"mensaje,omitempty"`
	Subnet   printer.SubnetKey   `json:"subnet,omitempty"`
	Printers []printer.DetailDTO `json:"printers,omitempty"`
	Summary  *printer.Summary    `json:"summary,omitempty"`
	Loop     *worker.Statistics  `json:"loop,omitempty"`
	Report   *ReportDTO          `json:"report,omitempty"`
}

// ReportDTO is the wire form of a finished reconciliation pass.
type ReportDTO struct {
	ID         string            `json:"id"`
	Subnet     printer.SubnetKey `json:"subnet"`
	Installed  []string          `json:"installed,omitempty"`
	Removed    []string          `json:"removed,omitempty"`
	Failures   []string          `json:"failures,omitempty"`
	DurationMs int64             `json:"duration_ms"`
}

// NewReportDTO flattens a report for clients.
func NewReportDTO(r reconcile.Report) ReportDTO {
	dto := ReportDTO{
		ID:         r.ID,
		Subnet:     r.Plan.Subnet,
		DurationMs: r.Duration().Milliseconds(),
	}
	for _, o := range r.Outcomes {
		if !o.OK() {
			dto.Failures = append(dto.Failures, o.Printer+": "+workererrors.Describe(o.Err))
			continue
		}
		switch o.Action {
		case reconcile.ActionInstall:
			dto.Installed = append(dto.Installed, o.Printer)
		case reconcile.ActionRemove:
			dto.Removed = append(dto.Removed, o.Printer)
		}
	}
	return dto
}

// Server manages WebSocket connections for the presence feed
type Server struct {
	clients      *ClientRegistry
	limiter      *RateLimiter
	origins      []string
	shutdownOnce sync.Once
	shutdownChan chan struct{}

	printerDiscovery PrinterLister
	loop             LoopStats
	auth             Authenticator

	exitMu sync.Mutex
	onExit func()
}

// NewServer creates a new WebSocket server. loop and authMgr may be nil.
func NewServer(cfg Config, discovery PrinterLister, loop LoopStats, authMgr Authenticator) *Server {
	if cfg.MessagesPerMinute <= 0 {
		cfg.MessagesPerMinute = DefaultMessagesPerMinute
	}

	return &Server{
		clients:          NewClientRegistry(),
		limiter:          NewRateLimiter(cfg.MessagesPerMinute),
		origins:          cfg.AllowedOrigins,
		shutdownChan:     make(chan struct{}),
		printerDiscovery: discovery,
		loop:             loop,
		auth:             authMgr,
	}
}

// OnExit registers the action run after an authenticated exit request.
func (s *Server) OnExit(fn func()) {
	s.exitMu.Lock()
	s.onExit = fn
	s.exitMu.Unlock()
}

// HandleWebSocket handles WebSocket connections
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.origins,
	})
	if err != nil {
		log.Printf("[WS] ❌ Error accepting client: %v", err)
		return
	}

	client := clientHost(r.RemoteAddr)

	s.clients.Add(conn)
	log.Printf("[WS] ➕ Client connected (total: %d) from %s", s.clients.Count(), r.RemoteAddr)

	ctx := r.Context()
	welcome := Response{
		Tipo:    "info",
		Status:  "connected",
		Mensaje: "✅ Connected to PrintSync",
	}
	_ = wsjson.Write(ctx, conn, welcome)

	s.handleMessages(ctx, conn, client)

	s.clients.Remove(conn)
	s.limiter.Forget(client)
	err = conn.Close(websocket.StatusNormalClosure, "disconnected")
	if err != nil {
		return
	}
	log.Printf("[WS] ➖ Client disconnected (remaining: %d)", s.clients.Count())
}

// handleMessages processes incoming messages from a client
func (s *Server) handleMessages(ctx context.Context, conn *websocket.Conn, client string) {
	for {
		select {
		case <-s.shutdownChan:
			return
		default:
		}

		var msg Message
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				ctx.Err() != nil {
				return
			}
			log.Printf("[WS] ⚠️ Error reading message: %v", err)
			return
		}

		if !s.limiter.Allow(client) {
			s.sendError(ctx, conn, msg.ID, "Too many messages, slow down")
			continue
		}

		s.routeMessage(ctx, conn, &msg, client)
	}
}

// routeMessage routes message to appropriate handler
func (s *Server) routeMessage(ctx context.Context, conn *websocket.Conn, msg *Message, client string) {
	switch msg.Tipo {
	case "printers":
		s.handlePrinters(ctx, conn, msg)
	case "status":
		s.handleStatus(ctx, conn, msg)
	case "ping":
		s.handlePing(ctx, conn, msg)
	case "exit":
		s.handleExit(ctx, conn, msg, client)
	default:
		log.Printf("[WS] ⚠️ Unknown message type: %s", msg.Tipo)
		s.sendError(ctx, conn, msg.ID, "Unknown message type: "+msg.Tipo)
	}
}

// handlePrinters sends the expected printers for the current subnet
func (s *Server) handlePrinters(ctx context.Context, conn *websocket.Conn, msg *Message) {
	view, err := s.printerDiscovery.GetView(ctx, false)
	if err != nil {
		s.sendError(ctx, conn, msg.ID, workererrors.Describe(err))
		return
	}

	summary := s.printerDiscovery.GetSummary(ctx)
	response := Response{
		Tipo:     "printers",
		ID:       msg.ID,
		Status:   summary.Status,
		Subnet:   view.Subnet,
		Printers: view.Printers,
		Summary:  &summary,
	}
	if !view.Known {
		response.Mensaje = "No printers configured for this network"
	}
	_ = wsjson.Write(ctx, conn, response)
}

// handleStatus sends loop statistics
func (s *Server) handleStatus(ctx context.Context, conn *websocket.Conn, msg *Message) {
	response := Response{
		Tipo:   "status",
		ID:     msg.ID,
		Status: "ok",
	}
	if s.loop != nil {
		stats := s.loop.Stats()
		response.Loop = &stats
		if !stats.IsRunning {
			response.Status = "stopped"
		}
	}
	_ = wsjson.Write(ctx, conn, response)
}

// handlePing responds to ping
func (s *Server) handlePing(ctx context.Context, conn *websocket.Conn, msg *Message) {
	response := Response{
		Tipo:   "pong",
		ID:     msg.ID,
		Status: "ok",
	}
	_ = wsjson.Write(ctx, conn, response)
}

// handleExit stops the service when the control token matches.
func (s *Server) handleExit(ctx context.Context, conn *websocket.Conn, msg *Message, client string) {
	if s.auth == nil || !s.auth.Enabled() {
		s.sendError(ctx, conn, msg.ID, "Remote exit is disabled")
		return
	}
	if s.auth.IsLockedOut(client) {
		log.Printf("[AUTH] 🔒 Exit rejected, %s is locked out", client)
		s.sendError(ctx, conn, msg.ID, "Too many failed attempts, try again later")
		return
	}
	if !s.auth.ValidateToken(msg.Token) {
		s.auth.RecordFailure(client)
		log.Printf("[AUTH] ⚠️ Invalid exit token from %s", client)
		s.sendError(ctx, conn, msg.ID, "Invalid token")
		return
	}
	s.auth.ClearFailures(client)

	log.Printf("[WS] 👋 Exit requested by %s", client)
	_ = wsjson.Write(ctx, conn, Response{
		Tipo:    "exit",
		ID:      msg.ID,
		Status:  "ok",
		Mensaje: "Service stopping",
	})

	s.exitMu.Lock()
	fn := s.onExit
	s.exitMu.Unlock()
	if fn != nil {
		go fn()
	}
}

// sendError sends error response to client
func (s *Server) sendError(ctx context.Context, conn *websocket.Conn, id, mensaje string) {
	response := Response{
		Tipo:    "error",
		ID:      id,
		Status:  "error",
		Mensaje: mensaje,
	}
	_ = wsjson.Write(ctx, conn, response)
}

// BroadcastReport notifies every client about a finished pass.
func (s *Server) BroadcastReport(report reconcile.Report) {
	dto := NewReportDTO(report)
	status := "ok"
	if len(dto.Failures) > 0 {
		status = "warning"
	}
	response := Response{
		Tipo:   "reconciled",
		ID:     report.ID,
		Status: status,
		Subnet: report.Plan.Subnet,
		Report: &dto,
	}

	s.clients.Broadcast(func(conn *websocket.Conn) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return wsjson.Write(ctx, conn, response)
	})
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	return s.clients.Count()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)

		clientCount := s.clients.Count()
		log.Printf("[WS] 🛑 Shutting down, disconnecting %d clients", clientCount)

		s.clients.ForEach(func(conn *websocket.Conn) {
			_ = conn.Close(websocket.StatusGoingAway, "Server shutting down")
		})
	})
}

func clientHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
