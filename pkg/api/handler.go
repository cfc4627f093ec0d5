// Package api exposes the resolver over HTTP and MCP. Both transports
// dispatch to the same kit endpoints.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hazyhaar/waymark-resolver/pkg/kit"
	"github.com/hazyhaar/waymark-resolver/pkg/resolve"
)

// NewRouter returns an http.Handler with all Waymark API routes.
// stations may be nil; the station route then reports 404.
func NewRouter(r *resolve.Resolver, stations StationSearcher) http.Handler {
	mux := http.NewServeMux()
	h := &handler{
		resolveQuery: resolveEndpoint(r),
		candidates:   candidatesEndpoint(r),
		confirm:      confirmEndpoint(r),
	}

	mux.HandleFunc("GET /v1/resolve/{query}", h.handleResolve)
	mux.HandleFunc("GET /v1/candidates/{query}", h.handleCandidates)
	mux.HandleFunc("GET /v1/confirm", methodNotAllowed) // prevent GET on confirm
	mux.HandleFunc("POST /v1/confirm", h.handleConfirm)
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	if stations != nil {
		h.stations = stationsEndpoint(stations)
		mux.HandleFunc("GET /v1/stations/{query}", h.handleStations)
	}

	return cors(mux)
}

type handler struct {
	resolveQuery kit.Endpoint
	candidates   kit.Endpoint
	confirm      kit.Endpoint
	stations     kit.Endpoint
}

// --- resolve ---

func (h *handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	query := r.PathValue("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}

	resp, err := h.resolveQuery(r.Context(), &resolveReq{Query: query})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// No match is a normal outcome; 404 tells the caller to refine or list
	// candidates instead.
	if rr, ok := resp.(resolveResponse); ok && !rr.Matched {
		writeJSON(w, http.StatusNotFound, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- candidates ---

func (h *handler) handleCandidates(w http.ResponseWriter, r *http.Request) {
	query := r.PathValue("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}

	resp, err := h.candidates(r.Context(), &candidatesReq{
		Query: query,
		Max:   parseMax(r),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- confirm ---

type httpConfirmRequest struct {
	Query string `json:"query"`
	ID    string `json:"id"`
}

func (h *handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 16*1024) // 16 KiB max
	var req httpConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.confirm(r.Context(), &confirmReq{Query: req.Query, ID: req.ID})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- stations ---

func (h *handler) handleStations(w http.ResponseWriter, r *http.Request) {
	query := r.PathValue("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}

	resp, err := h.stations(r.Context(), &stationsReq{
		Query: query,
		Max:   parseMax(r),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status string `json:"status"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// --- helpers ---

func parseMax(r *http.Request) int {
	v := r.URL.Query().Get("max")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
