package infra

// pdf.go generates the till-count certificate with go-pdf/fpdf: an A5 sheet
// with the expected versus counted totals, the difference, the denomination
// breakdown split into bills and coins, and the approval trail when the
// count closed out of tolerance.

import (
	"fmt"
	"os"
	"path/filepath"

	"cajacontrol/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateArqueoPDF writes the certificate for a completed till count and
// returns the absolute path of the file. storagePath is created if needed.
func GenerateArqueoPDF(arqueo *model.ArqueoCaja, sesion *model.SesionCaja, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("arqueo_%s.pdf", arqueo.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Acta de Arqueo de Caja", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Sesión %s", arqueo.SesionCajaID), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, arqueo.CreatedAt.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := contentW * 0.6
	valueW := contentW * 0.4

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 6, value, "", 1, "R", false, 0, "")
	}

	if sesion != nil {
		row("Fondo inicial:", "$"+sesion.FondoInicial.StringFixed(2), false)
	}
	row("Efectivo esperado:", "$"+arqueo.TotalEsperado.StringFixed(2), false)
	row("Efectivo contado:", "$"+arqueo.TotalContado.StringFixed(2), false)
	row("Diferencia:", "$"+arqueo.Diferencia.StringFixed(2), true)
	row("Estado:", arqueo.Estado, false)
	pdf.Ln(3)

	// ── Desglose ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 6, "Desglose de denominaciones", "B", 1, "L", false, 0, "")

	writeGrupo := func(titulo string, esBillete bool) {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, titulo, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, item := range arqueo.Desglose {
			if model.EsBillete(item.Denominacion) != esBillete || item.Cantidad == 0 {
				continue
			}
			pdf.CellFormat(labelW, 5,
				fmt.Sprintf("$%d x %d", item.Denominacion, item.Cantidad), "", 0, "L", false, 0, "")
			pdf.CellFormat(valueW, 5,
				fmt.Sprintf("$%d", item.Denominacion*int64(item.Cantidad)), "", 1, "R", false, 0, "")
		}
	}
	writeGrupo("Billetes", true)
	writeGrupo("Monedas", false)
	pdf.Ln(3)

	// ── Approval trail ───────────────────────────────────────────────────────
	if arqueo.Observaciones != nil && *arqueo.Observaciones != "" {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, "Observaciones del cajero:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.MultiCell(contentW, 4, *arqueo.Observaciones, "", "L", false)
		pdf.Ln(1)
	}
	if arqueo.Justificacion != nil && *arqueo.Justificacion != "" {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, "Justificación del aprobador:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.MultiCell(contentW, 4, *arqueo.Justificacion, "", "L", false)
		if arqueo.AprobadoAt != nil {
			pdf.SetFont("Helvetica", "I", 7)
			pdf.CellFormat(contentW, 4,
				"Aprobado el "+arqueo.AprobadoAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
