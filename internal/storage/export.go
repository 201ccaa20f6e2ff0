package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportSubmissionsToExcel dumps all submissions into an xlsx report for
// operators and returns the file path.
func (s *PostgresStorage) ExportSubmissionsToExcel(ctx context.Context) (string, error) {
	subs, err := s.ListSubmissions(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch submissions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Submissions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []string{
		"User ID", "X Username", "Project Name", "Description",
		"Project Picture", "Website", "Community Link", "X Link",
		"Chain", "Sector", "TGE Date", "FDV", "Ticker",
		"Token Picture", "Data Room",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", last, style)

	for row, sub := range subs {
		data := []interface{}{
			sub.UserID,
			sub.TwitterUsername,
			sub.ProjectName,
			sub.Description,
			sub.ProjectPicture,
			sub.WebsiteLink,
			sub.CommunityLink,
			sub.XLink,
			sub.Chain,
			sub.Sector,
			sub.TGEDate,
			sub.FDV,
			sub.Ticker,
			sub.TokenPicture,
			sub.DataRoom,
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	if err := os.MkdirAll("reports", 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	filepath := fmt.Sprintf("reports/submissions_%s.xlsx", time.Now().Format("20060102_1504"))
	if err := f.SaveAs(filepath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	return filepath, nil
}
