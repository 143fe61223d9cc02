package analysis

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// DateLayout is the wire format of DayActivity.Date
const DateLayout = "2006-01-02"

// Result is the analytics payload returned by the service (the "data" field)
type Result struct {
	Summary     SummaryStats  `json:"summary"`
	DailyData   []DayActivity `json:"daily_data"`
	ActiveUsers []string      `json:"users_active_4plus_days"`
}

// SummaryStats holds the headline counters for the active-user window
type SummaryStats struct {
	TotalActiveUsers             int     `json:"total_active_users"`
	TotalNewUsers                int     `json:"total_new_users"`
	AvgDailyActiveUsers          float64 `json:"avg_daily_active_users"`
	ActiveUsersFourPlusDaysCount int     `json:"users_active_4plus_days_count"`
}

// DayActivity is one day of the trailing 7-day window
type DayActivity struct {
	Date        Date `json:"date"`
	ActiveUsers int  `json:"active_users"`
	NewUsers    int  `json:"new_users"`
}

// Report is a successful analysis together with envelope metadata
type Report struct {
	Analytics     *Result `json:"data"`
	TotalMessages int     `json:"total_messages,omitempty"`
}

// Date is a calendar date without time of day, encoded as YYYY-MM-DD
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate creates a Date
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// String returns the YYYY-MM-DD form
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is earlier than other
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MaxDailyValue returns the largest active or new user count in the daily
// data; both chart series scale to it
func (r *Result) MaxDailyValue() int {
	maxActive := 0
	for _, day := range r.DailyData {
		if day.ActiveUsers > maxActive {
			maxActive = day.ActiveUsers
		}
		if day.NewUsers > maxActive {
			maxActive = day.NewUsers
		}
	}
	return maxActive
}
