package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/yildizm/ChatLens/internal/analysis"
)

// csvFormatter writes the daily activity table as CSV
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(result analysis.Succeeded) ([]byte, error) {
	if result.Analytics == nil {
		return nil, fmt.Errorf("no analytics to format")
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	if err := writer.Write([]string{"Date", "Weekday", "Active Users", "New Users"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, day := range result.Analytics.DailyData {
		record := []string{
			day.Date.String(),
			weekday(day.Date),
			strconv.Itoa(day.ActiveUsers),
			strconv.Itoa(day.NewUsers),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}
