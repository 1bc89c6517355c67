package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

// ReportService builds the operations workbook exported from the admin panel
type ReportService struct {
	store storage.Store
}

func NewReportService(store storage.Store) *ReportService {
	return &ReportService{store: store}
}

// BuildWorkbook assembles an xlsx with a Transactions and a Diagnostics sheet
func (s *ReportService) BuildWorkbook() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeTransactions(f); err != nil {
		return nil, err
	}
	if err := s.writeDiagnostics(f); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func (s *ReportService) writeTransactions(f *excelize.File) error {
	const sheet = "Transactions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := []string{"ID", "User", "Amount (KES)", "Provider", "Status", "Checkout Request", "Receipt", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	txns, err := s.store.ListTransactions()
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	for row, txn := range txns {
		values := []interface{}{
			txn.TransactionID,
			txn.UserID,
			txn.Amount,
			txn.Provider,
			txn.Status,
			txn.CheckoutRequestID,
			txn.MpesaReceiptNumber,
			txn.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ReportService) writeDiagnostics(f *excelize.File) error {
	const sheet = "Diagnostics"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"ID", "User", "Domain", "Score", "Status", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	diagnostics, err := s.store.ListDiagnostics()
	if err != nil {
		return fmt.Errorf("failed to load diagnostics: %w", err)
	}

	for row, d := range diagnostics {
		values := []interface{}{
			d.DiagnosticID,
			d.UserID,
			d.Domain,
			d.Score,
			d.Status,
			d.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
