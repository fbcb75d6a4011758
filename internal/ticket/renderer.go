// Package ticket renders printable ticket documents for confirmed
// registrations: one 80×150 mm page per ticket with the area, the big
// ticket number, a Code128 barcode, a QR code and the registrant data.
package ticket

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/qr"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/ArielAmzalak/SenhasGF4/internal/domain"
)

const (
	pageWidth  = 80
	pageHeight = 150

	defaultLogoPath = "assets/logo.png"
)

type Renderer struct {
	logoPath string
	logger   *zap.Logger
}

// NewRenderer builds a renderer. logoPath overrides the bundled logo
// location; an unreadable logo downgrades to a logo-less ticket rather
// than failing the render.
func NewRenderer(logoPath string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if logoPath == "" {
		logoPath = defaultLogoPath
	}
	return &Renderer{logoPath: logoPath, logger: logger}
}

// Render produces one PDF with a page per confirmed ticket. It must
// only be called with tickets whose numbers the store confirmed.
func (r *Renderer) Render(tickets []domain.ConfirmedTicket) ([]byte, error) {
	if len(tickets) == 0 {
		return nil, fmt.Errorf("no tickets to render")
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	pdf.SetAutoPageBreak(true, 1)
	pdf.SetMargins(6, 1, 6)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	logo := r.loadLogo()
	if logo != nil {
		pdf.RegisterImageOptionsReader("logo", fpdf.ImageOptions{ImageType: logo.kind}, bytes.NewReader(logo.data))
	}

	for i, t := range tickets {
		if err := r.renderPage(pdf, tr, t, i, logo != nil); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderPage(pdf *fpdf.Fpdf, tr func(string) string, t domain.ConfirmedTicket, page int, withLogo bool) error {
	number := strconv.Itoa(t.Number)

	qrName, err := registerQR(pdf, page, fmt.Sprintf("%s|%s|%s", t.Area.DisplayName, number, t.Name))
	if err != nil {
		return err
	}
	barName, err := registerCode128(pdf, page, number)
	if err != nil {
		return err
	}

	pdf.AddPage()

	if withLogo {
		const logoWidth = 36
		y := pdf.GetY()
		pdf.ImageOptions("logo", (pageWidth-logoWidth)/2, y, logoWidth, 0, false, fpdf.ImageOptions{}, 0, "")
		pdf.SetY(y + logoWidth + 2)
	}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 5, tr("Distribuidor de Senhas"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 5, tr(t.Area.DisplayName), "", 1, "C", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "B", 40)
	pdf.CellFormat(0, 16, number, "", 1, "C", false, 0, "")
	pdf.Ln(1)

	pdf.ImageOptions(barName, pdf.GetX()+10, pdf.GetY(), 50, 0, false, fpdf.ImageOptions{}, 0, "")
	pdf.Ln(18)
	pdf.ImageOptions(qrName, (pageWidth-30)/2, pdf.GetY()+2, 30, 0, false, fpdf.ImageOptions{}, 0, "")
	pdf.Ln(30)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr("Nome: "+t.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Telefone: "+t.Phone), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Bairro: "+t.Neighborhood), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Registro: "+t.RegisteredAt), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(0, 4.5, tr("Guarde este ticket até o atendimento."), "", "C", false)

	if pdf.Err() {
		return fmt.Errorf("render page %d: %w", page+1, pdf.Error())
	}
	return nil
}

func registerQR(pdf *fpdf.Fpdf, page int, payload string) (string, error) {
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	scaled, err := barcode.Scale(code, 256, 256)
	if err != nil {
		return "", fmt.Errorf("scale qr: %w", err)
	}
	name := fmt.Sprintf("qr-%d", page)
	if err := registerPNG(pdf, name, scaled); err != nil {
		return "", err
	}
	return name, nil
}

func registerCode128(pdf *fpdf.Fpdf, page int, value string) (string, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return "", fmt.Errorf("encode code128: %w", err)
	}
	scaled, err := barcode.Scale(code, 400, 120)
	if err != nil {
		return "", fmt.Errorf("scale code128: %w", err)
	}
	name := fmt.Sprintf("code128-%d", page)
	if err := registerPNG(pdf, name, scaled); err != nil {
		return "", err
	}
	return name, nil
}

func registerPNG(pdf *fpdf.Fpdf, name string, img barcode.Barcode) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s png: %w", name, err)
	}
	pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, &buf)
	return nil
}

type logoAsset struct {
	data []byte
	kind string
}

func (r *Renderer) loadLogo() *logoAsset {
	data, err := os.ReadFile(r.logoPath)
	if err != nil {
		r.logger.Debug("logo not available, rendering without it",
			zap.String("path", r.logoPath), zap.Error(err))
		return nil
	}
	kind := "PNG"
	switch strings.ToLower(filepath.Ext(r.logoPath)) {
	case ".jpg", ".jpeg":
		kind = "JPG"
	case ".gif":
		kind = "GIF"
	}
	return &logoAsset{data: data, kind: kind}
}
