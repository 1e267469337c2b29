package catalog

import (
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
)

const (
	columnName    = "市町村名"
	columnReading = "かな"
)

//go:embed demo_places.csv
var demoPlaces string

// Encodings accepted by Import.
const (
	EncodingUTF8  = "utf-8"
	EncodingCP932 = "cp932"
)

// Difficulty grades a municipality by its suffix: cities are easiest,
// villages hardest.
func Difficulty(name string) int {
	switch {
	case strings.HasSuffix(name, "市"):
		return 1
	case strings.HasSuffix(name, "町"):
		return 2
	case strings.HasSuffix(name, "村"):
		return 3
	default:
		return 2
	}
}

// ParseCSV reads a municipality list with 市町村名 and かな header columns.
func ParseCSV(r io.Reader, encoding string) ([]placequiz.Place, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8:
	case EncodingCP932, "shift_jis", "sjis":
		r = transform.NewReader(r, japanese.ShiftJIS.NewDecoder())
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}

	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	nameCol, readingCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case columnName:
			nameCol = i
		case columnReading:
			readingCol = i
		}
	}
	if nameCol < 0 || readingCol < 0 {
		return nil, fmt.Errorf("header must contain %q and %q", columnName, columnReading)
	}

	var places []placequiz.Place
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		name := strings.TrimSpace(rec[nameCol])
		reading := strings.TrimSpace(rec[readingCol])
		if name == "" || reading == "" {
			continue
		}
		d := Difficulty(name)
		places = append(places, placequiz.Place{Name: name, Reading: reading, Difficulty: &d})
	}
	return places, nil
}

// ImportFile loads a municipality CSV into the catalog.
func (s *Store) ImportFile(ctx context.Context, path, encoding string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	places, err := ParseCSV(f, encoding)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.Upsert(ctx, places); err != nil {
		return 0, err
	}
	return len(places), nil
}

// SeedDemo fills an empty catalog with a bundled list of municipalities.
// It does nothing when places already exist.
func (s *Store) SeedDemo(ctx context.Context, logger *slog.Logger) error {
	n, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	places, err := ParseCSV(strings.NewReader(demoPlaces), EncodingUTF8)
	if err != nil {
		return err
	}
	if err := s.Upsert(ctx, places); err != nil {
		return err
	}

	logger.Info("demo places seeded", "count", len(places))
	return nil
}
