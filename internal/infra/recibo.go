package infra

// recibo.go — Receipt PDF generation using go-pdf/fpdf.
// Renders an A7-size receipt for a paid session with:
//   - Clinic name header
//   - Patient name and session label
//   - Session date and type
//   - Bold amount and payment method
//
// The output file is saved to storagePath/recibo_{sesionID}.pdf.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fisiogest/internal/repository"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// ReciboGenerator renders payment receipts for sessions.
type ReciboGenerator struct {
	repo        repository.SesionRepository
	storagePath string
}

func NewReciboGenerator(repo repository.SesionRepository, storagePath string) *ReciboGenerator {
	return &ReciboGenerator{repo: repo, storagePath: storagePath}
}

// GenerarRecibo renders the receipt for a paid session and returns the
// absolute path of the generated file.
func (g *ReciboGenerator) GenerarRecibo(ctx context.Context, sesionID uuid.UUID) (string, error) {
	sesion, err := g.repo.FindByID(ctx, sesionID)
	if err != nil {
		return "", fmt.Errorf("recibo: sesión %s: %w", sesionID, err)
	}
	if !sesion.Pago.Pagado {
		return "", fmt.Errorf("recibo: sesión %s no está pagada", sesionID)
	}

	if err := os.MkdirAll(g.storagePath, 0755); err != nil {
		return "", fmt.Errorf("recibo: create storage dir: %w", err)
	}
	filePath := filepath.Join(g.storagePath, fmt.Sprintf("recibo_%s.pdf", sesionID))

	// A7 ≈ 74mm × 105mm — thermal receipt size
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "FisioGest", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Recibo de Pago", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Session info ─────────────────────────────────────────────────────────
	nombre := ""
	if sesion.Paciente != nil {
		nombre = sesion.Paciente.Nombre + " " + sesion.Paciente.Apellido
	}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, nombre, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, fmt.Sprintf("Sesión N° %d — %s", sesion.NumeroSesionPaciente, sesion.TipoSesion), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, sesion.Fecha.Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Amount ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW*0.6, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.4, 6, "$"+sesion.Pago.Monto.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	if sesion.Pago.Metodo != nil {
		pdf.CellFormat(contentW*0.6, 4, "Método:", "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 4, *sesion.Pago.Metodo, "", 1, "R", false, 0, "")
	}
	if sesion.Pago.FechaPago != nil {
		pdf.CellFormat(contentW*0.6, 4, "Fecha de pago:", "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 4, sesion.Pago.FechaPago.Format("02/01/2006"), "", 1, "R", false, 0, "")
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "¡Gracias por su confianza!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("recibo: write file: %w", err)
	}

	return filePath, nil
}
