package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Script-GH/Ai-tutor/internal/api/shared"
	"github.com/Script-GH/Ai-tutor/internal/store"
)

// Paging defaults for search.
const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// Search handles GET /api/search?q=&page=&per_page=. Results are ranked by
// relevance and paged with offset (page-1)*per_page.
func (h *SyllabusHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := strings.TrimSpace(query.Get("q"))
	if q == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Search query is required")
		return
	}

	page, ok := positiveIntParam(query.Get("page"), 1)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid page")
		return
	}
	perPage, ok := positiveIntParam(query.Get("per_page"), defaultPerPage)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid per_page")
		return
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if page-1 > math.MaxInt32/perPage {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid page")
		return
	}

	results, err := h.syllabi.Search(r.Context(), q, perPage, (page-1)*perPage)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Search failed", err)
		return
	}
	if results == nil {
		results = []store.SearchResult{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SearchResponse{
		Results: results,
		Page:    page,
		PerPage: perPage,
	})
}

// positiveIntParam parses raw as an integer >= 1, returning def when raw is
// empty.
func positiveIntParam(raw string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
