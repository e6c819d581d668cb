// Package report renders a flow test as a PDF document.
package report

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/phpdave11/gofpdf"

	"FlowLab/internal/calc/calibration"
	"FlowLab/internal/calc/flowtest"
	"FlowLab/internal/calc/series"
)

type Input struct {
	Project string             `json:"project"`
	Author  string             `json:"author"`
	Title   string             `json:"title"`
	Notes   string             `json:"notes"`
	Units   series.Units       `json:"units"`
	Header  flowtest.Header    `json:"header"`
	Rows    []series.FlowPoint `json:"rows"`
}

type Handler struct {
	Cal *calibration.Registry
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if input.Title == "" {
		input.Title = "Flow Test Report"
	}
	if input.Units == "" {
		input.Units = series.UnitsSI
	}
	res, err := flowtest.Calculate(h.Cal, flowtest.Input{Units: input.Units, Header: input.Header, Rows: input.Rows})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, input.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", input.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", input.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Units: %s", input.Units))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Header")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	areaUnit := "mm²"
	if input.Units == series.UnitsUS {
		areaUnit = "in²"
	}
	pdf.Cell(0, 5, fmt.Sprintf("Intake window: %.2f %s   Exhaust window: %.2f %s",
		res.Header.IntakeWindowArea, areaUnit, res.Header.ExhaustWindowArea, areaUnit))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Max L/D intake: %.3f   exhaust: %.3f",
		res.Header.MaxLDIntake, res.Header.MaxLDExhaust))
	pdf.Ln(5)
	if res.Header.EIMeasured != nil && res.Header.EIAdjusted != nil {
		pdf.Cell(0, 5, fmt.Sprintf("E/I measured: %.3f   adjusted: %.3f   required: %.3f",
			*res.Header.EIMeasured, *res.Header.EIAdjusted, res.Header.EIRequired))
		pdf.Ln(5)
	}
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 10)
	for i, head := range []string{"Lift", "Flow in", "Flow ex", "Flow in @28", "Flow ex @28"} {
		width := 30.0
		if i == 0 {
			width = 25.0
		}
		pdf.CellFormat(width, 6, head, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range res.Rows {
		pdf.CellFormat(25, 6, fmt.Sprintf("%.3f", row.Lift), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.3f", row.FlowIn), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.3f", row.FlowEx), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmtPtr(row.FlowIn28), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmtPtr(row.FlowEx28), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if input.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, input.Notes, "", "L", false)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"flowtest.pdf\"")
	if err := pdf.Output(w); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
}

func fmtPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *v)
}
