package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/yokitheyo/unpacker/unpack"
)

type Handler struct {
	logger         *log.Logger
	maxBodyBytes   int64
	maxUnpackedLen uint64
}

func NewHandler(opts Options, logger *log.Logger) *Handler {
	return &Handler{
		logger:         logger,
		maxBodyBytes:   opts.MaxBodyBytes,
		maxUnpackedLen: opts.MaxUnpackedLen,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/validate", h.validateText).Methods(http.MethodPost)
	r.HandleFunc("/unpack", h.unpackText).Methods(http.MethodPost)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
}

type unpackRequest struct {
	Input string `json:"input"`
}

type validateResult struct {
	Valid   bool   `json:"valid"`
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}

type unpackResult struct {
	Input  string       `json:"input"`
	Output string       `json:"output"`
	Stats  unpack.Stats `json:"stats"`
}

type response struct {
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (h *Handler) validateText(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	res := unpack.Validate(req.Input)
	writeJSON(w, response{Result: validateResult{
		Valid:   res.Valid(),
		Kind:    res.Kind().String(),
		Message: res.Message(),
	}}, http.StatusOK)
}

func (h *Handler) unpackText(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	stats, err := unpack.Analyze(req.Input)
	if err != nil {
		h.logger.Debug("unpack rejected", "input", req.Input, "reason", unpack.Reason(err))
		writeError(w, unpack.Reason(err), http.StatusBadRequest)
		return
	}
	if h.maxUnpackedLen > 0 && stats.UnpackedLen > h.maxUnpackedLen {
		writeError(w, "unpacked text too large", http.StatusRequestEntityTooLarge)
		return
	}

	out, err := unpack.Unpack(req.Input)
	if err != nil {
		writeError(w, unpack.Reason(err), http.StatusBadRequest)
		return
	}
	writeJSON(w, response{Result: unpackResult{Input: req.Input, Output: out, Stats: stats}}, http.StatusOK)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, response{Result: "ok"}, http.StatusOK)
}

// parseRequest accepts a JSON body or a form field named "input". It writes
// the error response itself and reports whether the handler may continue.
func (h *Handler) parseRequest(w http.ResponseWriter, r *http.Request) (unpackRequest, bool) {
	var req unpackRequest
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var err error
	if isJSON(r) {
		err = json.NewDecoder(r.Body).Decode(&req)
	} else if err = r.ParseForm(); err == nil {
		req.Input = r.FormValue("input")
	}
	if err == nil {
		return req, true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return req, false
	}
	writeError(w, "invalid request body", http.StatusBadRequest)
	return req, false
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, errorMsg string, statusCode int) {
	writeJSON(w, response{Error: errorMsg}, statusCode)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func LoggingMiddleware(logger *log.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start))
		})
	}
}
