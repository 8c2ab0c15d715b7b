package loader

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/normalize"
)

// clientColumns maps accepted header names to canonical field keys. Client
// exports come from more than one tool, so common aliases are folded in.
var clientColumns = map[string]string{
	"email":           "email",
	"client_email":    "email",
	"spotify_id":      "spotify_id",
	"spotify_url":     "spotify_id",
	"invitation_code": "invitation_code",
	"invite_code":     "invitation_code",
	"signup_date":     "signup_date",
	"signed_up":       "signup_date",
	"revenue":         "revenue",
	"amount":          "revenue",
}

// ReadClientsCSV parses a client roster from CSV. The first row must be a
// header; columns are matched by name and unknown columns are ignored. Rows
// missing an email are skipped with a warning.
func ReadClientsCSV(ctx context.Context, r io.Reader) ([]model.Client, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow ragged rows

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}

	cols := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := clientColumns[key]; ok {
			if _, seen := cols[canonical]; !seen {
				cols[canonical] = i
			}
		}
	}
	if _, ok := cols["email"]; !ok {
		return nil, eris.Errorf("csv: no email column in header %v", header)
	}

	var clients []model.Client
	var skipped int
	for line := 2; ; line++ {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: read row %d", line)
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

// clientFromRecord builds a Client from one row using the resolved column
// positions. Shared by the CSV and XLSX readers.
func clientFromRecord(cols map[string]int, record []string) model.Client {
	field := func(key string) string {
		i, ok := cols[key]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var revenue model.Revenue
	if raw := field("revenue"); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			revenue = model.Revenue(f)
		}
	}

	// Spotify columns carry either bare IDs or full profile URLs depending on
	// the export tool; URLs are reduced to the ID so lead joins work.
	spotify := field("spotify_id")
	if id := normalize.ExtractSpotifyID(spotify); id != "" {
		spotify = id
	}

	return model.Client{
		Email:          field("email"),
		SpotifyID:      spotify,
		InvitationCode: field("invitation_code"),
		SignupDate:     field("signup_date"),
		Revenue:        revenue,
	}
}
