package search

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/aliciawyy/MorningScraper/fetch"
)

// HandleSearch handles search queries and returns the raw candidate list.
func (s *Service) HandleSearch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	query := vars["query"]
	if query == "" {
		http.Error(w, "Query parameter is required", http.StatusBadRequest)
		return
	}

	candidates, err := s.Search(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, candidates)
}

// HandleQuotes handles quote queries: search plus per-candidate resolution.
func (s *Service) HandleQuotes(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	query := vars["query"]
	if query == "" {
		http.Error(w, "Query parameter is required", http.StatusBadRequest)
		return
	}

	valuations, err := s.GetData(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, valuations)
}

// HandleInstrument resolves one detail-page URL passed as ?url=. A page
// without valuation data answers 404.
func (s *Service) HandleInstrument(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		http.Error(w, "url parameter is required", http.StatusBadRequest)
		return
	}

	valuation, err := s.GetURL(r.Context(), rawURL)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if valuation == nil {
		http.Error(w, "no valuation data behind this url", http.StatusNotFound)
		return
	}
	writeJSON(w, valuation)
}

// writeError maps the scraper error taxonomy onto HTTP status codes.
func (s *Service) writeError(w http.ResponseWriter, err error) {
	var domainErr *DomainError
	var fetchErr *fetch.FetchError
	var parseErr *fetch.ParseError

	switch {
	case errors.As(err, &domainErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &fetchErr):
		s.log.Warn("upstream fetch failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.As(err, &parseErr):
		s.log.Error("upstream page did not parse", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		s.log.Error("request failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	jsonData, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		http.Error(w, "Error marshaling to JSON", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(jsonData)
}
