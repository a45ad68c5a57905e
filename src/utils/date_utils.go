package utils

import (
	"fmt"
	"time"

	"github.com/username/fintrack/backend/src/models"
)

// ParseDate parses a ledger date (YYYY-MM-DD).
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", dateStr, err)
	}
	return t, nil
}
