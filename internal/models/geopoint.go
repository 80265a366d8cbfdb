package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// PointID identifies a geopoint. Sources may supply either an integer or a text identifier;
// the form it arrived in is kept so it serializes back the same way. Uniqueness is not enforced.
type PointID struct {
	num   int64
	text  string
	isNum bool
}

// IntID creates an integer identifier
func IntID(v int64) PointID {
	return PointID{num: v, isNum: true}
}

// TextID creates a text identifier
func TextID(v string) PointID {
	return PointID{text: v}
}

// IsInt reports whether the identifier was supplied as an integer
func (id PointID) IsInt() bool {
	return id.isNum
}

// Int returns the integer value and whether the identifier is an integer
func (id PointID) Int() (int64, bool) {
	return id.num, id.isNum
}

func (id PointID) String() string {
	if id.isNum {
		return strconv.FormatInt(id.num, 10)
	}
	return id.text
}

// MarshalJSON implements json.Marshaler.
func (id PointID) MarshalJSON() ([]byte, error) {
	if id.isNum {
		return []byte(strconv.FormatInt(id.num, 10)), nil
	}
	return json.Marshal(id.text)
}

// InvalidIDError is returned when an identifier is neither an integer nor a string.
type InvalidIDError struct {
	Raw string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("id must be an integer or a string, got %s", e.Raw)
}

// UnmarshalJSON implements json.Unmarshaler. JSON null leaves the identifier untouched.
func (id *PointID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TextID(s)
		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return &InvalidIDError{Raw: string(data)}
	}
	*id = IntID(n)
	return nil
}

// GeoPoint is a named location from the point set. Values are immutable once loaded.
type GeoPoint struct {
	ID        PointID `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ReferenceLocation is the location distances are measured from.
type ReferenceLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RankedResult pairs a geopoint with its distance from the reference location in kilometers.
type RankedResult struct {
	GeoPoint
	DistanceKm float64 `json:"distance_km"`
}
