package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/alttext-service/internal/cache"
	"github.com/user/alttext-service/internal/domain"
)

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "healthy",
		Service: serviceName,
		Version: serviceVersion,
		Model:   s.opts.ModelName,
		Cache:   "healthy",
	}

	if p, ok := s.opts.Cache.(cache.Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.logger.Error("health check failed for cache", zap.Error(err))
			resp.Status = "unhealthy"
			resp.Cache = "unhealthy"
			s.respondWithJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	s.respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.SiteURL) == "" {
		s.respondWithError(w, http.StatusBadRequest, "site_url is required")
		return
	}
	if s.opts.Scanners == nil {
		s.respondWithError(w, http.StatusInternalServerError, "scanner not configured")
		return
	}
	pages := req.Pages
	if len(pages) == 0 {
		pages = []string{""}
	}

	images := s.opts.Scanners(req.SiteURL).FindImagesWithoutDescription(r.Context(), pages)

	resp := analyzeResponse{
		SiteURL:          req.SiteURL,
		PagesAnalyzed:    pages,
		ImagesWithoutAlt: make([]imageResponse, 0, len(images)),
		TotalFound:       len(images),
	}
	for _, img := range images {
		resp.ImagesWithoutAlt = append(resp.ImagesWithoutAlt, imageResponse{
			URL:        img.URL,
			Selector:   img.Locator,
			ElementID:  img.ElementID,
			CurrentAlt: img.CurrentDescription,
		})
	}
	s.respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImageURL == "" {
		s.respondWithError(w, http.StatusBadRequest, "image_url is required")
		return
	}
	if s.opts.Describer == nil {
		s.respondWithError(w, http.StatusInternalServerError, "Model API key not configured")
		return
	}

	res := s.opts.Describer.Generate(r.Context(), req.ImageURL, req.Context)
	s.respondWithJSON(w, http.StatusOK, generateResponse{
		ImageURL: req.ImageURL,
		AltText:  res.Text,
		Status:   string(res.Status),
		Cached:   res.Status == domain.StatusCached,
	})
}

func (s *Server) handleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Images) == 0 || string(req.Images) == "null" {
		s.respondWithError(w, http.StatusBadRequest, "images array is required")
		return
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal(req.Images, &rawItems); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "images must be an array")
		return
	}
	if s.opts.Describer == nil {
		s.respondWithError(w, http.StatusInternalServerError, "Model API key not configured")
		return
	}

	resp := batchResponse{Results: make([]batchResult, 0, len(rawItems))}
	for _, raw := range rawItems {
		var item batchItem
		if err := json.Unmarshal(raw, &item); err != nil || item.URL == "" {
			continue
		}
		if r.Context().Err() != nil {
			break
		}
		res := s.opts.Describer.Generate(r.Context(), item.URL, item.Context)
		resp.Results = append(resp.Results, batchResult{
			URL:     item.URL,
			AltText: res.Text,
			Status:  string(res.Status),
			Cached:  res.Status == domain.StatusCached,
		})
	}
	resp.TotalProcessed = len(resp.Results)
	s.respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if s.opts.Cache != nil {
		if err := s.opts.Cache.Clear(r.Context()); err != nil {
			s.logger.Error("failed to clear cache", zap.Error(err))
			s.respondWithError(w, http.StatusInternalServerError, "Could not clear cache")
			return
		}
	}
	s.respondWithJSON(w, http.StatusOK, messageResponse{Message: "Cache cleared successfully"})
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		code = http.StatusInternalServerError
		response = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
