package jobs

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
)

// GenerateInvoice renders the fixed-layout PDF invoice for an order and
// writes it to storage under a deterministic path. Running twice for the
// same order is a no-op: the job checks for the file before rendering.
type GenerateInvoice struct {
	OrderID       uint    `json:"order_id"`
	CustomerEmail string  `json:"customer_email"`
	ProductName   string  `json:"product_name"`
	Quantity      int     `json:"quantity"`
	TotalPrice    float64 `json:"total_price"`

	disk storage.Disk
}

func (GenerateInvoice) Name() string { return NameGenerateInvoice }

// InvoicePath is the storage path for an order's invoice.
func InvoicePath(orderID uint) string {
	return fmt.Sprintf("invoices/invoice_%d.pdf", orderID)
}

func (j *GenerateInvoice) Handle() error {
	path := InvoicePath(j.OrderID)

	if j.disk.Exists(path) {
		logger.Info("invoice already generated", "order_id", j.OrderID, "path", path)
		return nil
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)

	lines := []string{
		fmt.Sprintf("Invoice for Order #%d", j.OrderID),
		fmt.Sprintf("Customer: %s", j.CustomerEmail),
		fmt.Sprintf("Product: %s", j.ProductName),
		fmt.Sprintf("Quantity: %d", j.Quantity),
		fmt.Sprintf("Total: $%.2f", j.TotalPrice),
	}

	y := 72.0
	for _, line := range lines {
		pdf.Text(72, y, line)
		y += 20
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("render invoice for order %d: %w", j.OrderID, err)
	}

	if err := j.disk.Put(path, buf.Bytes()); err != nil {
		return fmt.Errorf("store invoice for order %d: %w", j.OrderID, err)
	}

	logger.Info("invoice generated", "order_id", j.OrderID, "path", path)
	return nil
}
