package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio-site/pkg/environment"
	"portfolio-site/pkg/log"
	"portfolio-site/pkg/models"
)

// AssetsHandler lists primary assets grouped by theme, or the assets of one theme
func (h *Handlers) AssetsHandler(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.registry(w, r)
	if !ok {
		return
	}

	if theme := models.Theme(r.URL.Query().Get("theme")); theme != "" {
		if !theme.Valid() {
			writeProblem(w, r, http.StatusBadRequest, "unknown_theme", "theme must be one of finance, corporate, abstract, professional")
			return
		}
		list := reg.AssetsByTheme(theme)
		if list == nil {
			list = []models.VideoAsset{}
		}
		writeJSON(w, r, http.StatusOK, models.ThemeGroup{Theme: theme, Assets: list})
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"default":  reg.Default().ID,
		"fallback": reg.FallbackAsset().ID,
		"groups":   reg.Groups(),
		"backups":  reg.Backups(),
	})
}

// FallbackHandler returns the designated fallback asset
func (h *Handlers) FallbackHandler(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.registry(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, reg.FallbackAsset())
}

// AssetHandler resolves an asset id. Unknown ids resolve to the default asset.
func (h *Handlers) AssetHandler(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.registry(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	_, registered := reg.Lookup(id)
	if !registered {
		logger := log.FromContext(r.Context())
		logger.Debug().Str(log.FieldAssetID, id).Msg("unknown asset id, resolving to default")
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"requestedId": id,
		"registered":  registered,
		"asset":       reg.Resolve(id),
	})
}

// PlaybackHandler reports how the calling client should render asset id
func (h *Handlers) PlaybackHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Accept-CH", environment.AcceptCH)
	d, err := h.heroView(r.Context(), chi.URLParam(r, "id"), environment.FromRequest(r))
	if err != nil {
		logger := log.FromContext(r.Context())
		logger.Error().Err(err).Msg("playback decision failed")
		writeProblem(w, r, http.StatusServiceUnavailable, "assets_unavailable", "asset registry could not be loaded")
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}
