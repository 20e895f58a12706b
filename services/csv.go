// services/csv.go
package services

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"race-challenge-system/models"
)

// CompletionCSVHeader is the fixed column order of the export.
var CompletionCSVHeader = []string{
	"id",
	"created_at",
	"full_name",
	"state",
	"city",
	"whatsapp",
	"order_number",
	"challenge_slug",
	"challenge_name",
	"strava_screenshot_url",
	"is_confirmed",
	"status",
}

// WriteCompletionsCSV writes the header and one row per completion with RFC 4180 quoting.
func WriteCompletionsCSV(w io.Writer, rows []models.ChallengeCompletion) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CompletionCSVHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.ID,
			row.CreatedAt.UTC().Format(time.RFC3339),
			row.FullName,
			row.State,
			row.City,
			row.Whatsapp,
			row.OrderNumber,
			row.ChallengeSlug,
			row.ChallengeName,
			row.StravaScreenshotURL,
			strconv.FormatBool(row.IsConfirmed),
			row.Status,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
