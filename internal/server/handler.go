package server

import (
	"encoding/json"
	"net/http"

	"github.com/replicate/go/logging"

	"github.com/appstrap/appstrap/internal/mysql"
)

var logger = logging.New("server")

// Handler serves the application routes.
type Handler struct {
	db *mysql.Manager
}

func NewHandler(db *mysql.Manager) *Handler {
	return &Handler{db: db}
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Hello from appstrap"})
}

// Health reports ok while the database pool is either not yet started or
// reachable, and degraded once a started pool stops responding.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	log := logger.Sugar()
	if h.db != nil && h.db.DB() != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			log.Errorw("database ping failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *Handler) Josh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Hello Josh"})
}

func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	bs, err := openAPIDocument()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeBytes(w, bs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	bs, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeBytes(w, bs)
}

func writeBytes(w http.ResponseWriter, bs []byte) {
	log := logger.Sugar()
	if _, err := w.Write(bs); err != nil {
		log.Errorw("failed to write response", "error", err)
	}
}
