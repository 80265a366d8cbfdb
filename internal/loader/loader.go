// Package loader reads point sets and reference locations from JSON sources and
// validates every record against a fixed schema before it reaches the ranker.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"nearest-geopoints/internal/apperror"
	"nearest-geopoints/internal/models"

	"github.com/go-playground/validator/v10"
)

// pointRecord is the schema of one entry in a point source.
// Pointer fields distinguish an absent (or null) field from a zero value.
type pointRecord struct {
	ID        *models.PointID `json:"id" validate:"required"`
	Name      *string         `json:"name" validate:"required"`
	Latitude  *float64        `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64        `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// referenceRecord is the schema of a reference source.
type referenceRecord struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadPointsFile loads and validates the point set stored at path
func LoadPointsFile(path string) ([]models.GeoPoint, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return decodePoints(path, data)
}

// LoadPoints loads and validates a point set from r. source names r in error messages.
func LoadPoints(source string, r io.Reader) ([]models.GeoPoint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &apperror.NotFoundError{Source: source, Err: err}
	}
	return decodePoints(source, data)
}

// LoadReferenceFile loads and validates the reference location stored at path
func LoadReferenceFile(path string) (models.ReferenceLocation, error) {
	data, err := readFile(path)
	if err != nil {
		return models.ReferenceLocation{}, err
	}
	return decodeReference(path, data)
}

// LoadReference loads and validates a reference location from r.
func LoadReference(source string, r io.Reader) (models.ReferenceLocation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.ReferenceLocation{}, &apperror.NotFoundError{Source: source, Err: err}
	}
	return decodeReference(source, data)
}

// ValidatePoint checks an already-typed geopoint against the point schema.
// Sources that do not go through JSON decoding (database rows, spreadsheets) use it.
func ValidatePoint(source string, index int, p models.GeoPoint) error {
	rec := pointRecord{ID: &p.ID, Name: &p.Name, Latitude: &p.Latitude, Longitude: &p.Longitude}
	return schemaError(source, index, validate.Struct(rec))
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &apperror.NotFoundError{Source: path, Err: err}
		}
		return nil, &apperror.NotFoundError{Source: path, Err: fmt.Errorf("unreadable: %w", err)}
	}
	return data, nil
}

func decodePoints(source string, data []byte) ([]models.GeoPoint, error) {
	if err := checkWellFormed(source, data); err != nil {
		return nil, err
	}
	if firstByte(data) != '[' {
		return nil, &apperror.ValidationError{Source: source, Index: -1, Reason: "expected an array of point records"}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &apperror.ParseError{Source: source, Err: err}
	}

	points := make([]models.GeoPoint, 0, len(raw))
	for i, item := range raw {
		if firstByte(item) != '{' {
			return nil, &apperror.ValidationError{Source: source, Index: i, Reason: "expected an object"}
		}

		var rec pointRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, decodeError(source, i, err)
		}
		if err := schemaError(source, i, validate.Struct(rec)); err != nil {
			return nil, err
		}

		points = append(points, models.GeoPoint{
			ID:        *rec.ID,
			Name:      *rec.Name,
			Latitude:  *rec.Latitude,
			Longitude: *rec.Longitude,
		})
	}

	return points, nil
}

func decodeReference(source string, data []byte) (models.ReferenceLocation, error) {
	if err := checkWellFormed(source, data); err != nil {
		return models.ReferenceLocation{}, err
	}
	if firstByte(data) != '{' {
		return models.ReferenceLocation{}, &apperror.ValidationError{Source: source, Index: -1, Reason: "expected a single location object"}
	}

	var rec referenceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.ReferenceLocation{}, decodeError(source, -1, err)
	}
	if err := schemaError(source, -1, validate.Struct(rec)); err != nil {
		return models.ReferenceLocation{}, err
	}

	return models.ReferenceLocation{Latitude: *rec.Latitude, Longitude: *rec.Longitude}, nil
}

func checkWellFormed(source string, data []byte) error {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &apperror.ParseError{Source: source, Err: err}
	}
	return nil
}

func firstByte(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

// decodeError turns a type mismatch found while decoding a well-formed record into a ValidationError.
func decodeError(source string, index int, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		reason := "must be a " + typeErr.Type.String()
		switch typeErr.Type.Kind() {
		case reflect.Float64:
			reason = "must be a number"
		case reflect.String:
			reason = "must be a string"
		}
		return &apperror.ValidationError{Source: source, Index: index, Field: typeErr.Field, Reason: reason}
	}

	var idErr *models.InvalidIDError
	if errors.As(err, &idErr) {
		return &apperror.ValidationError{Source: source, Index: index, Field: "id", Reason: "must be an integer or a string"}
	}

	return &apperror.ParseError{Source: source, Err: err}
}

// schemaError reports the first failed schema rule, in field declaration order.
func schemaError(source string, index int, err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("loader: validate %s: %w", source, err)
	}

	fe := fieldErrs[0]
	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "gte":
		reason = "must be >= " + fe.Param()
	case "lte":
		reason = "must be <= " + fe.Param()
	default:
		reason = "failed " + fe.Tag() + " check"
	}

	return &apperror.ValidationError{Source: source, Index: index, Field: fe.Field(), Reason: reason}
}
