package http

import (
	"net/http"
	"time"

	"rentledger/internal/core"
	"rentledger/internal/storage"
)

// dashboardCacheKey scopes a cached entry to the owner and the calendar day
// it was computed on. Entries written before a due-date boundary miss after
// midnight instead of serving pre-boundary statuses.
func dashboardCacheKey(owner string, day core.Date) string {
	return owner + "|" + day.String()
}

// handleDashboard serves the owner's ledger aggregates. Results are cached
// per owner and day for a short TTL and invalidated on every ledger write;
// filtered queries bypass the cache.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	q := r.URL.Query()

	filter, err := obligationFilterFromQuery(
		q.Get("kind"), q.Get("status"), q.Get("tenancy_id"), q.Get("due_from"), q.Get("due_to"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := dashboardCacheKey(owner, core.DateOf(time.Now()))
	unfiltered := filter == (storage.ObligationFilter{})
	if unfiltered {
		if cached, ok := s.dashboardCache.Get(key); ok {
			writeJSON(w, http.StatusOK, newMetricsView(cached, s.userCurrency(r)))
			return
		}
	}

	metrics, err := s.ledger.Metrics(r.Context(), owner, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if unfiltered {
		s.dashboardCache.Set(key, metrics)
	}
	writeJSON(w, http.StatusOK, newMetricsView(metrics, s.userCurrency(r)))
}
