package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravquad/internal/dynamo"
	"github.com/san-kum/gravquad/internal/spatial"
)

// GET /api/state
func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, toState(h.engine.Snapshot()))
}

// GET /api/nearest/{id}
func (h *routerHandlers) handleGetNearest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "body id must be an integer", http.StatusBadRequest)
		return
	}

	nb, err := h.engine.Nearest(id)
	switch {
	case errors.Is(err, dynamo.ErrUnknownBody):
		writeError(w, "unknown body", http.StatusNotFound)
		return
	case errors.Is(err, dynamo.ErrInvalidState):
		writeError(w, "no other body to compare against", http.StatusConflict)
		return
	case err != nil:
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	RecordNearestQuery()
	writeJSON(w, map[string]interface{}{
		"id":       id,
		"neighbor": toNeighbor(nb),
	})
}

// GET /api/nearest?x=..&y=..
func (h *routerHandlers) handleGetNearestPoint(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil || !finite(x) || !finite(y) {
		writeError(w, "x and y must be finite numbers", http.StatusBadRequest)
		return
	}

	nb, ok, err := h.engine.NearestTo(r2.Vec{X: x, Y: y})
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		writeError(w, "no bodies", http.StatusNotFound)
		return
	}

	RecordNearestQuery()
	writeJSON(w, map[string]interface{}{
		"x":        x,
		"y":        y,
		"neighbor": toNeighbor(nb),
	})
}

// GET /api/closest compares the quadtree answer with the exhaustive one on
// the same snapshot.
func (h *routerHandlers) handleGetClosest(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()

	viaIndex, okIndex, err := h.engine.ClosestViaIndex(snap)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	positions := snap.Positions()
	items := make([]spatial.Item, len(positions))
	for i, p := range positions {
		items[i] = spatial.Item{ID: i, Pos: p}
	}
	brute, okBrute := spatial.BruteForceClosestPair(items)

	resp := map[string]interface{}{
		"tick":   snap.Tick,
		"index":  nil,
		"brute":  nil,
		"agrees": okIndex == okBrute && viaIndex.Distance == brute.Distance,
	}
	if okIndex {
		resp["index"] = toPair(viaIndex)
	}
	if okBrute {
		resp["brute"] = toPair(brute)
	}
	writeJSON(w, resp)
}

// POST /api/reset
func (h *routerHandlers) handleReset(w http.ResponseWriter, r *http.Request) {
	queued := h.engine.Reset()
	if queued {
		RecordReset()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]bool{"queued": queued})
}

// GET /health
func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	writeJSON(w, map[string]interface{}{
		"status":        "ok",
		"tick":          snap.Tick,
		"bodies":        len(snap.Bodies),
		"reset_limiter": h.limiter.GetStats(),
	})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
