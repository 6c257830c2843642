package handler

import (
	"log"
	"net/http"
	"sync"

	dashboard "github.com/acadialab/appointbook/internal/modules/dashboard/service"
	"github.com/acadialab/appointbook/internal/modules/search"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	appointmentService "github.com/acadialab/appointbook/internal/modules/appointment/service"
	profileService "github.com/acadialab/appointbook/internal/modules/profile/service"
	userService "github.com/acadialab/appointbook/internal/modules/user/service"
)

type DashboardHandler struct {
	auth         userService.AuthService
	profiles     profileService.ProfileService
	appointments appointmentService.AppointmentService
	teachers     search.TeacherSource
	upgrader     websocket.Upgrader
}

func NewDashboardHandler(
	auth userService.AuthService,
	profiles profileService.ProfileService,
	appointments appointmentService.AppointmentService,
	teachers search.TeacherSource,
) *DashboardHandler {
	return &DashboardHandler{
		auth:         auth,
		profiles:     profiles,
		appointments: appointments,
		teachers:     teachers,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

type inboundFrame struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
	Query string `json:"query,omitempty"`
}

type outboundFrame struct {
	Type  string `json:"type"`
	State string `json:"state,omitempty"`
	View  string `json:"view,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// connSink serializes writes onto the connection; snapshot forwarders for
// different views run on their own goroutines and gorilla allows only one
// concurrent writer.
type connSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *connSink) send(frame outboundFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(frame); err != nil {
		log.Printf("dashboard: failed to write frame: %v", err)
	}
}

func (s *connSink) SendState(state dashboard.State) {
	s.send(outboundFrame{Type: "state", State: string(state)})
}

func (s *connSink) SendSnapshot(view string, data any) {
	s.send(outboundFrame{Type: "snapshot", View: view, Data: data})
}

func (s *connSink) SendError(message string) {
	s.send(outboundFrame{Type: "error", Error: message})
}

// Stream is the live dashboard socket. The connection carries the session:
// auth and signout frames drive the session tracker, and every live view the
// routed role subscribes to is pushed back as snapshot frames. Closing the
// connection tears down all subscriptions.
func (h *DashboardHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("dashboard: failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	sink := &connSink{conn: conn}
	ctrl := dashboard.NewController(c.Request.Context(), h.profiles, h.appointments, h.teachers, sink)
	defer ctrl.Close()

	// A token query parameter acts as the initial authenticated event, so a
	// reconnecting client lands on its dashboard without an extra round trip.
	if token := c.Query("token"); token != "" {
		h.applyToken(ctrl, sink, token)
	} else {
		ctrl.HandleUnauthenticated()
	}

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			// Client disconnected; teardown happens in the deferred Close.
			return
		}

		switch frame.Type {
		case "auth":
			h.applyToken(ctrl, sink, frame.Token)
		case "signout":
			ctrl.HandleUnauthenticated()
		case "search":
			results := ctrl.Search(frame.Query)
			sink.send(outboundFrame{Type: "results", Data: results})
		default:
			sink.SendError("unknown frame type")
		}
	}
}

func (h *DashboardHandler) applyToken(ctrl *dashboard.Controller, sink *connSink, token string) {
	uid, err := h.auth.VerifyToken(token)
	if err != nil {
		sink.SendError("invalid or expired token")
		ctrl.HandleUnauthenticated()
		return
	}

	ctrl.HandleAuthenticated(uid)
}
