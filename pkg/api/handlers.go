package api

import (
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/pathtrace/pkg/buildinfo"
	"github.com/matzehuels/pathtrace/pkg/errors"
	"github.com/matzehuels/pathtrace/pkg/observability"
	"github.com/matzehuels/pathtrace/pkg/pipeline"
	"github.com/matzehuels/pathtrace/pkg/search"
)

type graphRequest struct {
	Graph     any            `json:"graph"`
	Heuristic any            `json:"heuristic,omitempty"`
	Config    map[string]any `json:"config,omitempty"`
}

// document assembles the wrapper form io.Decode recognises.
func (g graphRequest) document() (map[string]any, error) {
	if g.Graph == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph is required")
	}
	doc := map[string]any{"graph": g.Graph}
	if g.Heuristic != nil {
		doc["heuristic"] = g.Heuristic
	}
	if g.Config != nil {
		doc["config"] = g.Config
	}
	return doc, nil
}

type searchRequest struct {
	graphRequest
	Start     string   `json:"start"`
	Goal      string   `json:"goal"`
	Algorithm string   `json:"algorithm,omitempty"`
	Weight    float64  `json:"weight,omitempty"`
	Directed  bool     `json:"directed,omitempty"`
	Formats   []string `json:"formats,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`
}

type searchResponse struct {
	RunID     string            `json:"run_id"`
	Result    search.Result     `json:"result"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
	Cached    bool              `json:"cached"`
}

type nodesResponse struct {
	Nodes     []string `json:"nodes"`
	NodeCount int      `json:"node_count"`
	EdgeCount int      `json:"edge_count"`
}

type errorBody struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Missing   []string `json:"missing,omitempty"`
	Available []string `json:"available,omitempty"`
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (h *Handlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	raw, err := req.document()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx := r.Context()
	doc, hash, err := h.runner.LoadDocument(ctx, "request", raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	formats := req.Formats
	if len(formats) == 0 {
		formats = []string{pipeline.FormatJSON}
	}
	opts := pipeline.Options{
		Start:     req.Start,
		Goal:      req.Goal,
		Algorithm: req.Algorithm,
		Weight:    req.Weight,
		Directed:  req.Directed,
		Formats:   formats,
		Detailed:  req.Detailed,
		Logger:    h.logger,
	}
	result, err := h.runner.Execute(ctx, doc, hash, opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := searchResponse{
		RunID:  result.RunID,
		Result: result.Search,
		Cached: result.CacheInfo.SearchHit,
	}
	for format, data := range result.Artifacts {
		if format == pipeline.FormatJSON {
			continue // already in Result
		}
		if resp.Artifacts == nil {
			resp.Artifacts = make(map[string]string, len(result.Artifacts))
		}
		resp.Artifacts[format] = encodeArtifact(format, data)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) handleNodes(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	raw, err := req.document()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	doc, _, err := h.runner.LoadDocument(r.Context(), "request", raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nodesResponse{
		Nodes:     doc.Graph.AvailableNodes(),
		NodeCount: doc.Graph.NodeCount(),
		EdgeCount: doc.Graph.EdgeCount(),
	})
}

// encodeArtifact returns binary formats base64-encoded and text formats as is.
func encodeArtifact(format string, data []byte) string {
	switch format {
	case pipeline.FormatPNG, pipeline.FormatPDF:
		return base64.StdEncoding.EncodeToString(data)
	}
	return string(data)
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		h.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}

	body := errorBody{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	}
	if body.Code == "" {
		body.Code = string(errors.ErrCodeInternal)
	}
	var unknown *errors.UnknownNodeError
	if stderrors.As(err, &unknown) {
		body.Missing = unknown.Missing
		body.Available = unknown.Available
	}
	respondJSON(w, status, map[string]errorBody{"error": body})
}

// statusFor maps error codes to HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidAlgorithm, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeUnknownNode:
		return http.StatusNotFound
	case errors.ErrCodeInvalidFormat:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
