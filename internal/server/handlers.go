package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tkingovr/postfilter/api"
)

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req api.CheckRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	source := req.Source
	if source == "" {
		source = "api"
	}

	decision, err := s.chain.Check(r.Context(), req.Text, source)
	if err != nil {
		s.logger.Error("check failed", "source", source, "error", err)
		http.Error(w, "evaluation failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, api.CheckResponse(decision))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.auditStore.Stats(r.Context())
	if err != nil {
		http.Error(w, "failed to get stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := api.QueryFilter{
		Source:  q.Get("source"),
		Verdict: api.Verdict(q.Get("verdict")),
		Rule:    q.Get("rule"),
		Text:    q.Get("q"),
		Limit:   100,
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid offset", http.StatusBadRequest)
			return
		}
		filter.Offset = n
	}

	records, err := s.auditStore.Query(r.Context(), filter)
	if err != nil {
		http.Error(w, "failed to query decisions", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*api.DecisionRecord{}
	}
	writeJSON(w, records)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	ch, cancel := s.auditStore.Subscribe(r.Context())
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case record, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(record)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: decision\ndata: %s\n\n", data)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"rules": s.rules.Names()})
}

func (s *Server) handlePolicy(w http.ResponseWriter, _ *http.Request) {
	out, err := s.cfg.MarshalYAML()
	if err != nil {
		http.Error(w, "failed to render policy", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
