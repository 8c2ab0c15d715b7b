package loader

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
)

// ReadClientsXLSX parses a client roster from the first sheet of an XLSX
// workbook. Row one must be a header matching the same column names the CSV
// reader accepts.
func ReadClientsXLSX(path string) ([]model.Client, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int)
	for i, cell := range sheet.Rows[0].Cells {
		key := strings.ToLower(strings.TrimSpace(cell.String()))
		if canonical, ok := clientColumns[key]; ok {
			if _, seen := cols[canonical]; !seen {
				cols[canonical] = i
			}
		}
	}
	if _, ok := cols["email"]; !ok {
		return nil, eris.New("xlsx: no email column in header row")
	}

	var clients []model.Client
	var skipped int
	for _, row := range sheet.Rows[1:] {
		record := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			record[j] = cell.String()
		}

		c := clientFromRecord(cols, record)
		if c.Email == "" {
			skipped++
			continue
		}
		clients = append(clients, c)
	}

	if skipped > 0 {
		zap.L().Warn("skipped client rows without email", zap.Int("count", skipped))
	}
	return clients, nil
}
