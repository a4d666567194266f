package markers

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Placeholders used for missing trailing attributes.
const (
	Placeholder            = "---"
	PlaceholderMaxSpeed    = "--- Km/h"
	PlaceholderConditional = "@ Always"
)

// AttributeMap is one source batch: camera or construction key to its
// attribute tuple. Index 0 is the latitude and index 1 the longitude.
type AttributeMap map[string][]any

// Camera attribute indices.
const (
	attrLat         = 0
	attrLon         = 1
	attrName        = 7
	attrDirection   = 8
	attrMaxSpeed    = 9
	attrConditional = 10
	attrDescription = 11
)

// Construction attribute indices.
const (
	attrConstruction = 7
	attrConName      = 8
	attrSurface      = 9
	attrCheckDate    = 10
)

// CameraTuple is the flattened form of a camera entry. Two tuples are
// duplicates only if every field is equal.
type CameraTuple struct {
	Key                 string
	Lat                 float64
	Lon                 float64
	Name                string
	Direction           string
	MaxSpeed            string
	MaxSpeedConditional string
	Description         string
}

// ConstructionTuple is the flattened form of a construction area entry.
type ConstructionTuple struct {
	Key          string
	Lat          float64
	Lon          float64
	Construction string
	Name         string
	Surface      string
	CheckDate    string
}

// UniqueCameras flattens batches and drops exact duplicate tuples, keeping
// the first occurrence. Entries that differ only because one source filled a
// placeholder and another did not are kept as distinct tuples. Entries
// without a usable coordinate are skipped.
func UniqueCameras(batches ...AttributeMap) []CameraTuple {
	seen := make(map[CameraTuple]struct{})
	var out []CameraTuple
	for _, batch := range batches {
		for _, key := range sortedKeys(batch) {
			attrs := batch[key]
			lat, lon, ok := coordinate(attrs)
			if !ok {
				continue
			}
			t := CameraTuple{
				Key:                 key,
				Lat:                 lat,
				Lon:                 lon,
				Name:                attrString(attrs, attrName, Placeholder),
				Direction:           attrString(attrs, attrDirection, Placeholder),
				MaxSpeed:            attrString(attrs, attrMaxSpeed, PlaceholderMaxSpeed),
				MaxSpeedConditional: attrString(attrs, attrConditional, PlaceholderConditional),
				Description:         attrString(attrs, attrDescription, Placeholder),
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// UniqueConstructionAreas is UniqueCameras for construction batches.
func UniqueConstructionAreas(batches ...AttributeMap) []ConstructionTuple {
	seen := make(map[ConstructionTuple]struct{})
	var out []ConstructionTuple
	for _, batch := range batches {
		for _, key := range sortedKeys(batch) {
			attrs := batch[key]
			lat, lon, ok := coordinate(attrs)
			if !ok {
				continue
			}
			t := ConstructionTuple{
				Key:          key,
				Lat:          lat,
				Lon:          lon,
				Construction: attrString(attrs, attrConstruction, Placeholder),
				Name:         attrString(attrs, attrConName, Placeholder),
				Surface:      attrString(attrs, attrSurface, Placeholder),
				CheckDate:    attrString(attrs, attrCheckDate, Placeholder),
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func coordinate(attrs []any) (lat, lon float64, ok bool) {
	if len(attrs) <= attrLon {
		return 0, 0, false
	}
	lat, err := ToFloat(attrs[attrLat])
	if err != nil {
		return 0, 0, false
	}
	lon, err = ToFloat(attrs[attrLon])
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

func attrString(attrs []any, i int, def string) string {
	if i >= len(attrs) || attrs[i] == nil {
		return def
	}
	if s, ok := attrs[i].(string); ok {
		return s
	}
	return fmt.Sprint(attrs[i])
}

// ToFloat coerces numeric attribute values. Strings are parsed.
func ToFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
}

// sortedKeys gives map batches a stable order.
func sortedKeys(batch AttributeMap) []string {
	return slices.Sorted(maps.Keys(batch))
}
