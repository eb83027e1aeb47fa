package infra

// pdf.go generates the A4 simulation review report with go-pdf/fpdf:
// header, simulation summary (ruleset, scope, counts, average change),
// then one table row per proposed price change. Guard-lifted lines are
// marked with an asterisk.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
)

// GenerateSimulationPDF writes the review report for a simulation and its
// items to storagePath/simulation_{id}.pdf, returning the absolute path.
// Item rows must carry their Product preloaded for the name column.
func GenerateSimulationPDF(sim *model.Simulation, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("simulation_%s.pdf", sim.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 9, tr("Rapport de simulation tarifaire"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Simulation %s", sim.ID)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Summary ──────────────────────────────────────────────────────────────
	scope := "tout le catalogue"
	if sim.Category != nil && *sim.Category != "" {
		scope = "catégorie « " + *sim.Category + " »"
	}
	rulesetName := sim.RulesetID.String()
	if sim.Ruleset != nil {
		rulesetName = sim.Ruleset.Name
	}

	summary := [][2]string{
		{"Jeu de règles", rulesetName},
		{"Périmètre", scope},
		{"Statut", sim.Status},
		{"Produits évalués", fmt.Sprintf("%d", sim.ProductCount)},
		{"Produits impactés", fmt.Sprintf("%d", sim.AffectedCount)},
		{"Variation moyenne", sim.AvgChangePct.StringFixed(2) + " %"},
		{"Créée par", sim.CreatedBy},
		{"Créée le", sim.CreatedAt.Format("02/01/2006 15:04")},
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range summary {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(45, 6, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW-45, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Item table ───────────────────────────────────────────────────────────
	col := []float64{
		contentW * 0.34, // product
		contentW * 0.15, // rule type
		contentW * 0.13, // old price
		contentW * 0.13, // new price
		contentW * 0.12, // change %
		contentW * 0.13, // new margin %
	}
	headers := []string{"Produit", "Règle", "Prix HT", "Nouveau HT", "Variation", "Marge"}

	pdf.SetFont("Helvetica", "B", 8)
	for i, h := range headers {
		pdf.CellFormat(col[i], 6, tr(h), "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, item := range sim.Items {
		name := item.ProductID.String()
		if item.Product != nil {
			name = item.Product.Name
		}
		if len([]rune(name)) > 38 {
			name = string([]rune(name)[:37]) + "…"
		}
		if item.BlockedByGuard {
			name += " *"
		}
		margin := "-"
		if item.NewMarginPct != nil {
			margin = item.NewMarginPct.StringFixed(2) + " %"
		}

		pdf.CellFormat(col[0], 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(col[1], 5, tr(item.RuleType), "", 0, "L", false, 0, "")
		pdf.CellFormat(col[2], 5, item.OldPriceHT.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col[3], 5, item.NewPriceHT.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col[4], 5, item.PriceChangePct.StringFixed(2)+" %", "", 0, "R", false, 0, "")
		pdf.CellFormat(col[5], 5, tr(margin), "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("* prix relevé au plancher par le garde-fou de marge"), "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
