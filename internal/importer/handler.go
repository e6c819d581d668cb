package importer

import (
	"encoding/json"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"FlowLab/internal/calc/series"
)

type Handler struct{}

type XLSXImportResult struct {
	Count int                `json:"count"`
	Rows  []series.FlowPoint `json:"rows"`
}

// XLSX accepts a multipart upload under "file" and returns the parsed
// flow rows in SI units.
func (h *Handler) XLSX(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := ParseXLSXRows(file)
	if err != nil {
		log.WithError(err).Warn("xlsx import failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(XLSXImportResult{Count: len(rows), Rows: rows})
}

// IOP accepts an IOP text report in the request body. The ?units=us
// query switches to the customary-unit fixture layout; the response is
// SI-normalized either way.
func (h *Handler) IOP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	parse := ParseSI
	if r.URL.Query().Get("units") == "us" {
		parse = ParseUS
	}
	rep, err := parse(string(body))
	if err != nil {
		log.WithError(err).Warn("iop import failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rep)
}
