package formatter

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/yildizm/ChatLens/internal/analysis"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct {
	now func() time.Time
}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{now: time.Now}
}

// JSONOutput is the document written by the JSON formatter. The analytics
// fields keep the wire names of the service.
type JSONOutput struct {
	File          string                 `json:"file,omitempty"`
	GeneratedAt   time.Time              `json:"generated_at"`
	TotalMessages int                    `json:"total_messages,omitempty"`
	Summary       analysis.SummaryStats  `json:"summary"`
	DailyData     []analysis.DayActivity `json:"daily_data"`
	ActiveUsers   []string               `json:"users_active_4plus_days"`
}

func (f *jsonFormatter) Format(result analysis.Succeeded) ([]byte, error) {
	if result.Analytics == nil {
		return nil, fmt.Errorf("no analytics to format")
	}

	output := &JSONOutput{
		File:          result.FileName,
		GeneratedAt:   f.now().UTC().Truncate(time.Second),
		TotalMessages: result.TotalMessages,
		Summary:       result.Analytics.Summary,
		DailyData:     result.Analytics.DailyData,
		ActiveUsers:   result.Analytics.ActiveUsers,
	}

	// Empty lists stay lists, never null
	if output.DailyData == nil {
		output.DailyData = []analysis.DayActivity{}
	}
	if output.ActiveUsers == nil {
		output.ActiveUsers = []string{}
	}

	return json.MarshalIndent(output, "", "  ")
}
