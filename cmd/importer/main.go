package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"nearest-geopoints/internal/apperror"
	"nearest-geopoints/internal/config"
	"nearest-geopoints/internal/loader"
	"nearest-geopoints/internal/logger"
	"nearest-geopoints/internal/models"
	"nearest-geopoints/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

var requiredColumns = []string{"id", "name", "latitude", "longitude"}

func main() {
	file := flag.String("file", "", "Path to the CSV or XLSX file to import")
	sheet := flag.String("sheet", "", "Sheet to read from an XLSX file (default: first sheet)")
	out := flag.String("out", "", "Write the points as a JSON point source to this path")
	toDB := flag.Bool("db", false, "Append the points to the geopoints table at DB_SOURCE")
	flag.Parse()

	logger.Setup("info", "console")

	if *file == "" {
		log.Fatal().Msg("--file flag is required")
	}
	if *out == "" && !*toDB {
		log.Fatal().Msg("one of --out or --db is required")
	}

	log.Info().Str("file", *file).Msg("starting import")

	points, err := parseFile(*file, *sheet)
	if err != nil {
		log.Fatal().Err(err).Msg("error parsing input")
	}

	log.Info().Int("records", len(points)).Msg("parsed records")

	if *out != "" {
		if err := writeJSON(*out, points); err != nil {
			log.Fatal().Err(err).Msg("error writing point source")
		}
		log.Info().Str("out", *out).Int("records", len(points)).Msg("wrote point source")
	}

	if *toDB {
		if err := importToDB(points); err != nil {
			log.Fatal().Err(err).Msg("error importing into database")
		}
	}
}

func parseFile(path, sheet string) ([]models.GeoPoint, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return parseXLSX(path, sheet)
	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer file.Close()
		return parseCSV(path, file)
	}
}

func parseCSV(source string, r io.Reader) ([]models.GeoPoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		rows = append(rows, record)
	}

	return rowsToPoints(source, rows)
}

func parseXLSX(path, sheet string) ([]models.GeoPoint, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return rowsToPoints(path, rows)
}

// rowsToPoints converts a header row plus data rows into validated geopoints.
// Columns are located by header name, so their order and any extra columns do not matter.
func rowsToPoints(source string, rows [][]string) ([]models.GeoPoint, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to read header: %s is empty", source)
	}

	columns, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	points := make([]models.GeoPoint, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		index := len(points)
		cell := func(name string) string {
			col := columns[name]
			if col >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[col])
		}

		rawID := cell("id")
		if rawID == "" {
			return nil, rowError(source, index, i+2, "id", "is required")
		}

		lat, err := parseCoord(cell("latitude"))
		if err != nil {
			return nil, rowError(source, index, i+2, "latitude", "must be a number")
		}
		lon, err := parseCoord(cell("longitude"))
		if err != nil {
			return nil, rowError(source, index, i+2, "longitude", "must be a number")
		}

		p := models.GeoPoint{ID: parseID(rawID), Name: cell("name"), Latitude: lat, Longitude: lon}
		if err := loader.ValidatePoint(source, index, p); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		points = append(points, p)
	}

	return points, nil
}

func columnIndex(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(requiredColumns))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}

	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("invalid header: missing column %q, expected %s", name, strings.Join(requiredColumns, ","))
		}
	}
	return columns, nil
}

func rowError(source string, index, line int, field, reason string) error {
	return fmt.Errorf("line %d: %w", line, &apperror.ValidationError{Source: source, Index: index, Field: field, Reason: reason})
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseID keeps integer-looking identifiers as integers, anything else as text
func parseID(raw string) models.PointID {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return models.IntID(n)
	}
	return models.TextID(raw)
}

func parseCoord(val string) (float64, error) {
	// Spreadsheets exported with a comma decimal separator
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.ParseFloat(val, 64)
}

func writeJSON(path string, points []models.GeoPoint) error {
	data, err := json.MarshalIndent(points, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode points: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	// Verify the file is accepted by the service loader
	loaded, err := loader.LoadPointsFile(path)
	if err != nil {
		return fmt.Errorf("failed to verify %s: %w", path, err)
	}
	if len(loaded) != len(points) {
		return fmt.Errorf("record count mismatch: expected %d, got %d", len(points), len(loaded))
	}
	return nil
}

func importToDB(points []models.GeoPoint) error {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		return err
	}
	if cfg.DBSource == "" {
		return fmt.Errorf("DB_SOURCE is not configured")
	}

	ctx := context.Background()
	conn, err := pgxpool.New(ctx, cfg.DBSource)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer conn.Close()

	repo := repository.NewPostgresRepository(conn)

	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	before, err := repo.CountPoints(ctx)
	if err != nil {
		return err
	}

	written, err := repo.ImportPoints(ctx, points)
	if err != nil {
		return err
	}

	after, err := repo.CountPoints(ctx)
	if err != nil {
		return err
	}
	if after-before != int64(len(points)) {
		return fmt.Errorf("record count mismatch: expected %d new rows, got %d", len(points), after-before)
	}

	log.Info().Int64("written", written).Int64("total", after).Msg("imported points into database")
	return nil
}
