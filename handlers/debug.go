package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/tenantvolt/backend/clock"
)

// DebugHandler exposes the virtual clock so time-dependent behavior
// (billing month resolution, the scheduler window) can be exercised
// without waiting for a real month boundary.
type DebugHandler struct {
	clock *clock.Adjustable
}

func NewDebugHandler(clk *clock.Adjustable) *DebugHandler {
	return &DebugHandler{clock: clk}
}

type setClockRequest struct {
	Time string `json:"time"`
}

func (h *DebugHandler) SetClock(w http.ResponseWriter, r *http.Request) {
	var req setClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ref, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		http.Error(w, "Invalid time, expected RFC 3339", http.StatusBadRequest)
		return
	}

	h.clock.SetVirtual(ref)
	log.Printf("Virtual clock set to %s", ref.Format(time.RFC3339))
	h.writeState(w)
}

func (h *DebugHandler) ClearClock(w http.ResponseWriter, r *http.Request) {
	h.clock.Reset()
	log.Println("Virtual clock cleared, back to real time")
	h.writeState(w)
}

func (h *DebugHandler) writeState(w http.ResponseWriter) {
	writeJSON(w, map[string]interface{}{
		"virtual": h.clock.IsVirtual(),
		"now":     h.clock.Now().Format(time.RFC3339),
	})
}
