package compare

import (
	"encoding/json"
	"net/http"

	"FlowLab/internal/calc/calibration"
	"FlowLab/internal/calc/series"
)

type Handler struct {
	Cal *calibration.Registry
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if input.Units == "" {
		input.Units = series.UnitsSI
	}
	if input.Mode == "" {
		input.Mode = series.ModeLift
	}
	res, err := Calculate(h.Cal, input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
