// Package export renders tenant payment history as an Excel file for
// download from the portal.
package export

import (
	"fmt"
	"time"

	"dormgate/internal/models"

	"github.com/xuri/excelize/v2"
)

type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

// PaymentHistory renders an xlsx with the tenant's invoices and payments and
// returns the download file name with the content. The file is built in
// memory and streamed straight to the client, nothing is left on disk.
func (e *Exporter) PaymentHistory(tenant *models.Tenant, invoices []models.Invoice, payments []models.Payment) (string, []byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Payments"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Payment history: %s", tenant.FullName))
	_ = f.MergeCell(sheetName, "A1", "F1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headers := []string{"Invoice", "Amount", "Channel", "Status", "Submitted", "Verified"}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	invoiceNumbers := make(map[int64]string, len(invoices))
	for _, inv := range invoices {
		invoiceNumbers[inv.ID] = inv.Number
	}

	row := 4
	for _, p := range payments {
		number := invoiceNumbers[p.InvoiceID]
		if number == "" {
			number = fmt.Sprintf("#%d", p.InvoiceID)
		}

		verified := ""
		if !p.VerifiedAt.IsZero() {
			verified = p.VerifiedAt.Format("02.01.2006")
		}

		values := []interface{}{
			number,
			p.Amount,
			p.Channel,
			p.Status,
			p.CreatedAt.Format("02.01.2006"),
			verified,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		row++
	}

	_ = f.SetColWidth(sheetName, "A", "A", 16)
	_ = f.SetColWidth(sheetName, "B", "F", 14)
	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("error rendering file: %v", err)
	}

	fileName := fmt.Sprintf("payments_%d_%s.xlsx", tenant.ID, time.Now().Format("2006-01-02"))
	return fileName, buf.Bytes(), nil
}
