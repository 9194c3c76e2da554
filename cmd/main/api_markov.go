package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/CTAG07/markovdot/pkg/markov"
)

// MarkovAPI serves read-only views of a trained model.
type MarkovAPI struct {
	model  *markov.Model
	config *ServerConfig
	logger *slog.Logger
}

// GenerateResponse is the body returned by /api/markov/generate.
type GenerateResponse struct {
	Texts  []string   `json:"texts"`
	Tokens [][]string `json:"tokens"`
}

// NewMarkovAPI creates a new instance of the MarkovAPI.
func NewMarkovAPI(model *markov.Model, config *ServerConfig, logger *slog.Logger) *MarkovAPI {
	return &MarkovAPI{
		model:  model,
		config: config,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/markov endpoints.
func (m *MarkovAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/markov/generate", m.handleGenerate)
	mux.HandleFunc("/api/markov/graph", m.handleGraph)
	mux.HandleFunc("/api/markov/stats", m.handleStats)
}

// handleGenerate runs one or more random walks over the model.
func (m *MarkovAPI) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	count, opts, err := m.parseGenerateQuery(r.URL.Query())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := GenerateResponse{
		Texts:  make([]string, 0, count),
		Tokens: make([][]string, 0, count),
	}
	for i := 0; i < count; i++ {
		tokens, err := m.model.Generate(r.Context(), opts(i)...)
		if err != nil {
			switch {
			case errors.Is(err, markov.ErrEmptyModel):
				respondWithError(w, http.StatusConflict, "Model has no training data")
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				m.logger.Debug("Generation aborted by client", "error", err)
			default:
				m.logger.Error("Generation failed", "error", err)
				respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Generation failed: %v", err))
			}
			return
		}
		resp.Texts = append(resp.Texts, strings.Join(tokens, " "))
		resp.Tokens = append(resp.Tokens, tokens)
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// parseGenerateQuery reads the generation parameters, clamping count and
// max_length to the server limits. The returned func builds the options for
// the i-th walk so a seeded request yields a distinct but repeatable walk each.
func (m *MarkovAPI) parseGenerateQuery(q url.Values) (int, func(i int) []markov.GenerateOption, error) {
	count, err := intParam(q, "count", 1)
	if err != nil {
		return 0, nil, err
	}
	if count < 1 {
		return 0, nil, fmt.Errorf("count must be positive")
	}
	count = min(count, m.config.MaxCount)

	maxLength, err := intParam(q, "max_length", m.config.MaxLength)
	if err != nil {
		return 0, nil, err
	}
	if maxLength < 1 || maxLength > m.config.MaxLength {
		maxLength = m.config.MaxLength
	}

	topK, err := intParam(q, "top_k", 0)
	if err != nil {
		return 0, nil, err
	}
	if topK < 0 {
		return 0, nil, fmt.Errorf("top_k must not be negative")
	}

	temperature := 1.0
	if v := q.Get("temperature"); v != "" {
		if temperature, err = strconv.ParseFloat(v, 64); err != nil || math.IsNaN(temperature) || math.IsInf(temperature, 0) {
			return 0, nil, fmt.Errorf("invalid temperature %q", v)
		}
	}

	var seed *uint64
	if v := q.Get("seed"); v != "" {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid seed %q", v)
		}
		seed = &s
	}

	opts := func(i int) []markov.GenerateOption {
		o := []markov.GenerateOption{
			markov.WithMaxLength(maxLength),
			markov.WithTemperature(temperature),
			markov.WithTopK(topK),
		}
		if seed != nil {
			o = append(o, markov.WithSeed(*seed+uint64(i)))
		}
		return o
	}
	return count, opts, nil
}

// handleGraph returns the model as a Graphviz document.
func (m *MarkovAPI) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := m.model.WriteDOT(w); err != nil {
		m.logger.Error("Failed to write graph response", "error", err)
	}
}

// handleStats returns the model's summary counts.
func (m *MarkovAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, m.model.Stats())
}

func intParam(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return n, nil
}
