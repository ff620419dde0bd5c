// Package httpapi exposes the relay's action-dispatch REST surface: a
// single endpoint taking an "action" parameter via GET query string or
// form-urlencoded POST, answering JSON. Protocol-level failures ride HTTP
// 200 with status "error" or "locked"; 5xx is reserved for relay faults.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/clientpro-app/clientpro/internal/logging"
	"github.com/clientpro-app/clientpro/internal/protocol"
	"github.com/clientpro-app/clientpro/internal/relay/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AuthProvider is the slice of AuthService the handlers need.
type AuthProvider interface {
	Activate(ctx context.Context, activationKey, deviceID, deviceInfo string) (*models.Account, string, error)
	Authorize(ctx context.Context, deviceID, sig string) (*models.Account, error)
	IssueKData(ctx context.Context) (string, error)
	ListUsers(ctx context.Context) ([]protocol.User, error)
}

// TransferProvider is the slice of TransferService the handlers need.
type TransferProvider interface {
	Upload(ctx context.Context, from *models.Account, to, filename, cipher, hash string) (string, error)
	Inbox(ctx context.Context, employeeID string) ([]protocol.InboxItem, error)
	Download(ctx context.Context, employeeID, transferID string) (*models.Transfer, error)
	Delete(ctx context.Context, employeeID, transferID string) error
}

// DriveProvider is the slice of DriveService the handlers need.
type DriveProvider interface {
	PresignUpload(ctx context.Context) (string, string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

type Server struct {
	auth      AuthProvider
	transfers TransferProvider
	drive     DriveProvider
	log       logging.Logger
	router    chi.Router
}

func NewServer(auth AuthProvider, transfers TransferProvider, drive DriveProvider, log logging.Logger) *Server {
	s := &Server{auth: auth, transfers: transfers, drive: drive, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Get("/", s.dispatch)
	r.Post("/", s.dispatch)
	s.router = r

	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug(r.Context(), "request",
			"method", r.Method,
			"action", r.FormValue(protocol.ParamAction),
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
