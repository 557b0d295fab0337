package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/freightmarket/internal/model"
)

// The core fonts only cover cp1252, which lacks six Turkish letters.
var turkishFold = strings.NewReplacer(
	"ğ", "g", "Ğ", "G",
	"ş", "s", "Ş", "S",
	"ı", "i", "İ", "I",
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(doc model.CompletionCertificate) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle("Teslimat Tamamlama Belgesi", true)
	pdf.AddPage()

	cp := pdf.UnicodeTranslatorFromDescriptor("")
	tr := func(s string) string {
		return cp(turkishFold.Replace(s))
	}

	listing := doc.Listing.Listing

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, tr("TESLİMAT TAMAMLAMA BELGESİ"), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Belge No: %s", strings.ToUpper(listing.ID.String()[:8]))), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Düzenlenme: %s", formatDateTime(doc.IssuedAt))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	sectionTitle(pdf, g.fontName, tr("İlan bilgileri"))
	widths := []float64{60, 120}
	rows := [][]string{
		{"İlan türü", typeLabel(listing.Type)},
		{"Güzergah", fmt.Sprintf("%s - %s", listing.Origin, listing.Destination)},
		{"Yükleme tarihi", formatDate(listing.PickupDate)},
		{"Teslim tarihi", formatDate(listing.DeliveryDate)},
		{"Ücret", fmt.Sprintf("%s %s", listing.PriceAmount.StringFixed(2), listing.PriceCurrency)},
		{"Detay", payloadSummary(listing.Payload)},
	}
	for _, row := range rows {
		drawTableRow(pdf, g.fontName, []string{tr(row[0]), tr(row[1])}, widths, false)
	}
	pdf.Ln(4)

	sectionTitle(pdf, g.fontName, tr("Taraflar"))
	addPartyBlock(pdf, g.fontName, tr("İlan sahibi"), tr, doc.Listing.Poster)
	pdf.Ln(2)
	if doc.Listing.Matched != nil {
		addPartyBlock(pdf, g.fontName, tr("Eşleşen taraf"), tr, *doc.Listing.Matched)
		pdf.Ln(2)
	}

	sectionTitle(pdf, g.fontName, tr("Süreç"))
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("İlan tarihi: %s", formatDateTime(listing.CreatedAt))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Eşleşme tarihi: %s", formatTimePtr(listing.MatchedAt))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Tamamlanma tarihi: %s", formatTimePtr(listing.CompletedAt))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(doc.Ratings) > 0 {
		sectionTitle(pdf, g.fontName, tr("Değerlendirmeler"))
		ratingWidths := []float64{55, 55, 15, 55}
		drawTableRow(pdf, g.fontName, []string{tr("Değerlendiren"), tr("Değerlendirilen"), tr("Puan"), tr("Yorum")}, ratingWidths, true)
		for _, r := range doc.Ratings {
			drawTableRow(pdf, g.fontName, []string{
				tr(r.RaterName),
				tr(r.RateeName),
				fmt.Sprintf("%d/5", r.Rating.Score),
				tr(truncate(safeValue(r.Rating.Comment), 32)),
			}, ratingWidths, false)
		}
		pdf.Ln(4)
	}

	sectionTitle(pdf, g.fontName, tr("İmzalar"))
	signatureBlock(pdf, g.fontName, tr("İlan sahibi"), tr(doc.Listing.Poster.Name))
	if doc.Listing.Matched != nil {
		signatureBlock(pdf, g.fontName, tr("Eşleşen taraf"), tr(doc.Listing.Matched.Name))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sectionTitle(pdf *gofpdf.Fpdf, fontName, title string) {
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func addPartyBlock(pdf *gofpdf.Fpdf, fontName, title string, tr func(string) string, party model.AccountSummary) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	lines := []string{
		party.Name,
		fmt.Sprintf("Firma: %s", safeValue(party.CompanyName)),
		fmt.Sprintf("Puan: %.1f (%d değerlendirme)", party.Rating, party.TotalRatings),
		fmt.Sprintf("Tamamlanan teslimat: %d", party.CompletedDeliveries),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label, name string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s: ______________________ /%s/", label, safeValue(name)), "", 1, "L", false, 0, "")
}

func payloadSummary(payload model.PayloadEnvelope) string {
	if v, ok := payload.Vehicle(); ok {
		return joinNonEmpty(v.VehicleType, v.BodyType, v.Capacity)
	}
	if c, ok := payload.Cargo(); ok {
		summary := joinNonEmpty(c.CargoType, c.Quantity, c.Weight, c.Packaging)
		if c.Hazardous {
			summary = joinNonEmpty(summary, "tehlikeli madde "+c.UNCode)
		}
		return summary
	}
	return "-"
}

func typeLabel(t model.ListingType) string {
	switch t {
	case model.ListingTypeCarrierOffer:
		return "Taşıyıcı ilanı"
	case model.ListingTypeCargoRequest:
		return "Yük ilanı"
	default:
		return string(t)
	}
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return "-"
	}
	return strings.Join(kept, ", ")
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006 15:04")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDateTime(*t)
}
