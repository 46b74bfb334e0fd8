package web

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/meghsharma/song-recommender/internal/insights"
	"github.com/meghsharma/song-recommender/internal/recommend"
)

// Handlers holds the API handlers and their dependencies.
type Handlers struct {
	cfg    ServerConfig
	svc    *recommend.Service
	logger *slog.Logger

	// The catalog is immutable for the process lifetime, so the insights
	// report is computed once on first request.
	insightsOnce   sync.Once
	insightsReport *insightsReport
	insightsErr    error
}

// NewHandlers creates the handler set.
func NewHandlers(cfg ServerConfig, svc *recommend.Service, logger *slog.Logger) *Handlers {
	return &Handlers{cfg: cfg, svc: svc, logger: logger}
}

// writeJSON encodes v as the response body.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("encoding response failed", "error", err)
	}
}

// writeError encodes a JSON error body.
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// Health reports the cache backend and catalog size.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"cache_backend": h.cfg.CacheBackend,
		"tracks":        h.svc.Snapshot().Len(),
	})
}

// Recommend serves GET /api/recommend?track=..&artist=..&mode=hybrid|text.
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	trackName := r.URL.Query().Get("track")
	if trackName == "" {
		h.writeError(w, http.StatusBadRequest, "missing required query parameter: track")
		return
	}

	query := recommend.Query{
		TrackName:     trackName,
		ArtistFilter:  r.URL.Query().Get("artist"),
		NumericWeight: h.cfg.NumericWeight,
		TextWeight:    h.cfg.TextWeight,
		MaxResults:    h.cfg.MaxResults,
	}

	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "hybrid":
	case "text":
		query.NumericWeight = 0
		query.TextWeight = 1
	default:
		h.writeError(w, http.StatusBadRequest, "mode must be hybrid or text")
		return
	}

	result, err := h.svc.Recommend(r.Context(), query)
	if err != nil {
		if errors.Is(err, recommend.ErrTrackNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("recommendation failed", "track", trackName, "error", err)
		h.writeError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// Tracks serves the track picker: without parameters it lists the distinct
// track names; with ?track=NAME it lists that name's artists.
func (h *Handlers) Tracks(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Snapshot()

	if name := r.URL.Query().Get("track"); name != "" {
		seen := make(map[string]struct{})
		var artists []string
		for i := range snap.Tracks {
			t := &snap.Tracks[i]
			if t.Name != name {
				continue
			}
			if _, dup := seen[t.Artists]; dup {
				continue
			}
			seen[t.Artists] = struct{}{}
			artists = append(artists, t.Artists)
		}
		if len(artists) == 0 {
			h.writeError(w, http.StatusNotFound, "track not found")
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]any{"track_name": name, "artists": artists})
		return
	}

	seen := make(map[string]struct{}, len(snap.Tracks))
	names := make([]string, 0, len(snap.Tracks))
	for i := range snap.Tracks {
		name := snap.Tracks[i].Name
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)

	h.writeJSON(w, http.StatusOK, map[string]any{"tracks": names})
}

// insightsReport aggregates the dashboard payload.
type insightsReport struct {
	Summary             insights.Summary            `json:"summary"`
	TopArtistsByCount   []insights.ArtistCount      `json:"top_artists_by_count"`
	TopArtistsByAvgPop  []insights.ArtistPopularity `json:"top_artists_by_popularity"`
	PopularityHistogram []insights.HistogramBin     `json:"popularity_histogram"`
	FeatureCorrelations insights.CorrelationMatrix  `json:"feature_correlations"`
	MoodClusters        []insights.MoodCluster      `json:"mood_clusters"`
}

// Insights serves the catalog statistics dashboard payload.
func (h *Handlers) Insights(w http.ResponseWriter, r *http.Request) {
	h.insightsOnce.Do(func() {
		snap := h.svc.Snapshot()
		moods, err := insights.MoodClusters(snap, insights.DefaultMoodClusters)
		if err != nil {
			h.insightsErr = err
			return
		}
		h.insightsReport = &insightsReport{
			Summary:             insights.Summarize(snap),
			TopArtistsByCount:   insights.TopArtistsByCount(snap, 20),
			TopArtistsByAvgPop:  insights.TopArtistsByPopularity(snap, 10),
			PopularityHistogram: insights.PopularityHistogram(snap, 30),
			FeatureCorrelations: insights.FeatureCorrelations(snap),
			MoodClusters:        moods,
		}
	})

	if h.insightsErr != nil {
		h.logger.Error("building insights failed", "error", h.insightsErr)
		h.writeError(w, http.StatusInternalServerError, "building insights failed")
		return
	}
	h.writeJSON(w, http.StatusOK, h.insightsReport)
}
