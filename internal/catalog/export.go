package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/angelmondragon/mallbilling/pkg/money"
	"github.com/tealeg/xlsx"
)

const exportSheetName = "Products"

var exportHeaders = []string{"ID", "Name", "Barcode", "Price", "Stock", "LowStock", "Image", "CreatedAt", "UpdatedAt"}

// Exporter renders the catalog as a spreadsheet for back-office use.
type Exporter struct {
	repo *Repository
}

func NewExporter(repo *Repository) *Exporter {
	return &Exporter{repo: repo}
}

// WriteXLSX streams every product, sorted by name, as an xlsx workbook.
func (e *Exporter) WriteXLSX(ctx context.Context, w io.Writer) error {
	rows, err := e.repo.Search(ctx, "", 0)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(exportSheetName)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID.String())
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Barcode)
		row.AddCell().SetString(money.Format(p.Price))
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetBool(p.LowStock)
		image := ""
		if p.ImageURL != nil {
			image = *p.ImageURL
		}
		row.AddCell().SetString(image)
		row.AddCell().SetString(p.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
	}

	return file.Write(w)
}
