package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/thinktj1991/llamareport-retrieval/internal/config"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/ports"
	"github.com/thinktj1991/llamareport-retrieval/internal/observability/metrics"
)

const (
	serviceName = "api"

	// How long a request may queue for an in-flight slot before the
	// server sheds it.
	backpressureQueueWait = 2 * time.Second
)

type Router struct {
	cfg       config.Config
	retriever ports.PassageRetriever
	ingestor  ports.ChunkIngestor
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	retriever ports.PassageRetriever,
	ingestor ports.ChunkIngestor,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		retriever: retriever,
		ingestor:  ingestor,
		metrics:   m,
	}
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/v1/retrieve", rt.retrieve)
	api.HandleFunc("/v1/chunks", rt.submitChunks)
	api.HandleFunc("/v1/stats", rt.stats)

	// Traffic control guards the retrieval surface only; probes and
	// scrapes stay reachable under load.
	var protected http.Handler = api
	protected = backpressureMiddleware(protected, rt.cfg.APIMaxInFlight, backpressureQueueWait)
	protected = rateLimitMiddleware(protected, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)

	root := http.NewServeMux()
	root.Handle("/v1/", protected)
	root.HandleFunc("/healthz", rt.healthz)
	root.HandleFunc("/openapi.yaml", rt.serveOpenAPI)
	if rt.metrics != nil {
		root.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = root
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type retrieveRequest struct {
	Query    string `json:"query"`
	K        int    `json:"k"`
	Strategy string `json:"strategy"`
}

type retrieveResponse struct {
	Strategy string                   `json:"strategy"`
	Count    int                      `json:"count"`
	Results  []domain.ScoredCandidate `json:"results"`
}

func (rt *Router) retrieve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = string(domain.StrategyAuto)
	}

	start := time.Now()
	results, err := rt.retriever.Retrieve(r.Context(), req.Query, req.K, req.Strategy)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordRetrievalError(serviceName, strategy)
		}
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	// The executed strategy is only observable through the ranked
	// candidates; an empty result set reports the requested one.
	if len(results) > 0 {
		strategy = string(results[0].Strategy)
	}
	if rt.metrics != nil {
		rt.metrics.RecordRetrieval(serviceName, strategy, len(results), time.Since(start))
	}

	writeJSON(w, http.StatusOK, retrieveResponse{
		Strategy: strategy,
		Count:    len(results),
		Results:  results,
	})
}

type submitChunksRequest struct {
	Channel string         `json:"channel"`
	Chunks  []domain.Chunk `json:"chunks"`
}

type submitChunksResponse struct {
	Accepted int            `json:"accepted"`
	Chunks   []domain.Chunk `json:"chunks"`
}

func (rt *Router) submitChunks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req submitChunksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	channel, err := domain.ParseChannel(req.Channel)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	accepted, err := rt.ingestor.SubmitChunks(r.Context(), channel, req.Chunks)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordIngest(serviceName, string(channel), len(accepted))
	}

	writeJSON(w, http.StatusAccepted, submitChunksResponse{
		Accepted: len(accepted),
		Chunks:   accepted,
	})
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	stats, err := rt.retriever.Stats(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
