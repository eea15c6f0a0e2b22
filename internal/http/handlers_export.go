package http

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"dompetku/internal/core"
	"dompetku/internal/log"
)

// backup is the full-account JSON export; importing it elsewhere restores
// every collection verbatim.
type backup struct {
	ExportedAt    time.Time           `json:"exportedAt"`
	Transactions  []core.Transaction  `json:"transactions"`
	Categories    []core.Category     `json:"categories"`
	Budgets       []core.Budget       `json:"budgets"`
	Subscriptions []core.Subscription `json:"subscriptions"`
	Goals         []core.Goal         `json:"goals"`
	Theme         string              `json:"theme"`
}

func (s *Server) loadBackup(r *http.Request, userID string) (backup, error) {
	ctx := r.Context()
	txs, err := s.repo.Transactions.List(ctx, userID)
	if err != nil {
		return backup{}, err
	}
	categories, err := s.repo.Categories(ctx, userID)
	if err != nil {
		return backup{}, err
	}
	budgets, err := s.repo.Budgets.List(ctx, userID)
	if err != nil {
		return backup{}, err
	}
	subs, err := s.repo.Subscriptions.List(ctx, userID)
	if err != nil {
		return backup{}, err
	}
	goals, err := s.repo.Goals.List(ctx, userID)
	if err != nil {
		return backup{}, err
	}
	theme, err := s.repo.Theme(ctx, userID)
	if err != nil {
		return backup{}, err
	}
	sortTransactions(txs)
	return backup{
		ExportedAt:    time.Now(),
		Transactions:  txs,
		Categories:    categories,
		Budgets:       budgets,
		Subscriptions: subs,
		Goals:         goals,
		Theme:         theme,
	}, nil
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	data, err := s.loadBackup(r, user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="dompetku-backup.json"`)
	writeJSON(w, http.StatusOK, data)
	log.FromContext(r.Context()).InfoContext(r.Context(), "backup exported", log.FieldUserID, user.ID, log.FieldOperation, log.OpExport)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	data, err := s.loadBackup(r, user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	categories := core.CategoryIndex(data.Categories)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="dompetku-transactions.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"date", "type", "category", "amount", "description"})
	for _, tx := range data.Transactions {
		name := tx.CategoryID
		if cat, ok := categories[tx.CategoryID]; ok {
			name = cat.Name
		}
		_ = cw.Write([]string{
			tx.Date.String(),
			string(tx.Type),
			name,
			strconv.FormatInt(int64(tx.Amount), 10),
			tx.Description,
		})
	}
	cw.Flush()
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	data, err := s.loadBackup(r, user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	categories := core.CategoryIndex(data.Categories)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Transaksi"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 18)
	f.SetColWidth(sheetName, "D", "D", 16)
	f.SetColWidth(sheetName, "E", "E", 40)

	headers := []string{"Tanggal", "Tipe", "Kategori", "Jumlah", "Deskripsi"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	var totalIncome, totalExpense core.Money
	for i, tx := range data.Transactions {
		row := i + 2
		name := tx.CategoryID
		if cat, ok := categories[tx.CategoryID]; ok {
			name = cat.Name
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), tx.Date.String())
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), string(tx.Type))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), name)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), int64(tx.Amount))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), tx.Description)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), dataStyle)

		switch tx.Type {
		case core.Income:
			totalIncome += tx.Amount
		case core.Expense:
			totalExpense += tx.Amount
		}
	}

	summaryRow := len(data.Transactions) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "Total")
	f.MergeCell(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("C%d", summaryRow))
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", summaryRow), int64(totalIncome-totalExpense))
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", summaryRow),
		fmt.Sprintf("%d transaksi, masuk %s, keluar %s", len(data.Transactions), totalIncome.Format(), totalExpense.Format()))
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("E%d", summaryRow), summaryStyle)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="dompetku-transactions.xlsx"`)
	if err := f.Write(w); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "xlsx export failed", log.FieldError, err, log.FieldUserID, user.ID)
	}
}
