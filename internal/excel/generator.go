package excel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/freightmarket/internal/model"
)

var statusOrder = []model.ListingStatus{
	model.ListingStatusActive,
	model.ListingStatusMatched,
	model.ListingStatusCompleted,
	model.ListingStatusCancelled,
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.ListingReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	summarySheet := "Özet"
	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	groups := groupByStatus(report.Listings)
	if err := g.writeSummary(file, summarySheet, report, groups); err != nil {
		return nil, err
	}

	for _, status := range statusOrder {
		listings := groups[status]
		if len(listings) == 0 {
			continue
		}
		sheet := statusLabel(status)
		if _, err := file.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := g.writeDetail(file, sheet, report.Account.ID, listings); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.ListingReport, groups map[model.ListingStatus][]model.ListingView) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Hesap")
	set("B1", report.Account.Name)
	set("A2", "Firma")
	set("B2", report.Account.CompanyName)
	set("A3", "Rapor tarihi")
	set("B3", formatDateTime(report.GeneratedAt))
	set("A4", "İlan sayısı")
	set("B4", len(report.Listings))
	set("A5", "Puan")
	set("B5", fmt.Sprintf("%.1f (%d değerlendirme)", report.Account.Rating, report.Account.TotalRatings))

	tableRow := 7
	set(fmt.Sprintf("A%d", tableRow), "Durum")
	set(fmt.Sprintf("B%d", tableRow), "İlan sayısı")
	set(fmt.Sprintf("C%d", tableRow), "Toplam tutar")

	for i, status := range statusOrder {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), statusLabel(status))
		set(fmt.Sprintf("B%d", row), len(groups[status]))
		set(fmt.Sprintf("C%d", row), formatTotals(groups[status]))
	}

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 32)
	_ = file.SetColWidth(sheet, "C", "C", 28)
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, accountID uuid.UUID, listings []model.ListingView) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Oluşturulma",
		"Tür",
		"Rol",
		"Çıkış",
		"Varış",
		"Yükleme tarihi",
		"Teslim tarihi",
		"Fiyat",
		"Para birimi",
		"İlan sahibi",
		"Eşleşen",
		"Başvuru sayısı",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, view := range listings {
		row := i + 2
		l := view.Listing
		set(fmt.Sprintf("A%d", row), formatDateTime(l.CreatedAt))
		set(fmt.Sprintf("B%d", row), typeLabel(l.Type))
		set(fmt.Sprintf("C%d", row), roleLabel(l, accountID))
		set(fmt.Sprintf("D%d", row), l.Origin)
		set(fmt.Sprintf("E%d", row), l.Destination)
		set(fmt.Sprintf("F%d", row), formatDate(l.PickupDate))
		set(fmt.Sprintf("G%d", row), formatDate(l.DeliveryDate))
		set(fmt.Sprintf("H%d", row), l.PriceAmount.InexactFloat64())
		set(fmt.Sprintf("I%d", row), l.PriceCurrency)
		set(fmt.Sprintf("J%d", row), displayName(view.Poster))
		if view.Matched != nil {
			set(fmt.Sprintf("K%d", row), displayName(*view.Matched))
		}
		set(fmt.Sprintf("L%d", row), len(l.Applicants))
	}

	_ = file.SetColWidth(sheet, "A", "A", 20)
	_ = file.SetColWidth(sheet, "B", "C", 16)
	_ = file.SetColWidth(sheet, "D", "E", 24)
	_ = file.SetColWidth(sheet, "F", "G", 14)
	_ = file.SetColWidth(sheet, "H", "I", 12)
	_ = file.SetColWidth(sheet, "J", "K", 32)
	_ = file.SetColWidth(sheet, "L", "L", 14)
	return nil
}

func groupByStatus(listings []model.ListingView) map[model.ListingStatus][]model.ListingView {
	groups := make(map[model.ListingStatus][]model.ListingView, len(statusOrder))
	for _, view := range listings {
		groups[view.Listing.Status] = append(groups[view.Listing.Status], view)
	}
	return groups
}

func statusLabel(status model.ListingStatus) string {
	switch status {
	case model.ListingStatusActive:
		return "Aktif"
	case model.ListingStatusMatched:
		return "Eşleşti"
	case model.ListingStatusCompleted:
		return "Tamamlandı"
	case model.ListingStatusCancelled:
		return "İptal"
	default:
		return string(status)
	}
}

func typeLabel(t model.ListingType) string {
	switch t {
	case model.ListingTypeCarrierOffer:
		return "Taşıyıcı"
	case model.ListingTypeCargoRequest:
		return "Yük sahibi"
	default:
		return string(t)
	}
}

func roleLabel(l model.Listing, accountID uuid.UUID) string {
	if l.PosterID == accountID {
		return "İlan sahibi"
	}
	return "Eşleşen"
}

func displayName(s model.AccountSummary) string {
	if s.CompanyName == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.CompanyName)
}

// formatTotals sums prices per currency, e.g. "12000.00 TL, 300.00 EUR".
func formatTotals(listings []model.ListingView) string {
	totals := map[string]decimal.Decimal{}
	var order []string
	for _, view := range listings {
		currency := view.Listing.PriceCurrency
		if _, ok := totals[currency]; !ok {
			order = append(order, currency)
		}
		totals[currency] = totals[currency].Add(view.Listing.PriceAmount)
	}
	out := ""
	for i, currency := range order {
		if i > 0 {
			out += ", "
		}
		out += totals[currency].StringFixed(2) + " " + currency
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
