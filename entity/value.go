// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package entity

import (
	"regexp"
	"strconv"
	"strings"
)

// ValueKind discriminates the Value union.
type ValueKind string

// Value kinds. String-like kinds share representation but keep their
// datatype so the RDF layer can pick the right predicate family.
const (
	ValueEntity          ValueKind = "entity"
	ValueString          ValueKind = "string"
	ValueExternalID      ValueKind = "external-id"
	ValueCommonsMedia    ValueKind = "commons-media"
	ValueGeoShape        ValueKind = "geo-shape"
	ValueTabularData     ValueKind = "tabular-data"
	ValueMusicalNotation ValueKind = "musical-notation"
	ValueMath            ValueKind = "math"
	ValueURL             ValueKind = "url"
	ValueTime            ValueKind = "time"
	ValueQuantity        ValueKind = "quantity"
	ValueGlobe           ValueKind = "globe-coordinate"
	ValueMonolingual     ValueKind = "monolingualtext"
	ValueNoValue         ValueKind = "novalue"
	ValueSomeValue       ValueKind = "somevalue"
)

// TimeValue is a calendar timestamp with precision and calendar model.
type TimeValue struct {
	Value         string // "+1964-05-15T00:00:00Z"
	Timezone      int
	Before        int
	After         int
	Precision     int // 0 (billion years) .. 14 (second)
	CalendarModel string
}

// QuantityValue is a decimal amount with unit and optional bounds.
// Bounds are empty strings when absent.
type QuantityValue struct {
	Amount     string // "+42", "-0.5"
	Unit       string // "1" for dimensionless, else an entity URI
	UpperBound string
	LowerBound string
}

// GlobeValue is a coordinate on a globe. Latitude, longitude and precision
// keep their source text so serialisation round-trips exactly.
type GlobeValue struct {
	Latitude  string
	Longitude string
	Precision string
	Globe     string
}

// MonolingualValue is a language-tagged string.
type MonolingualValue struct {
	Text     string
	Language string
}

// Value is a tagged union over the snak value kinds. Exactly one payload
// field matching Kind is set; string-like kinds use Content.
type Value struct {
	Kind        ValueKind
	Content     string // entity id or string-like payload
	Time        *TimeValue
	Quantity    *QuantityValue
	Globe       *GlobeValue
	Monolingual *MonolingualValue
}

// IsStructured reports whether the value serialises as a full value node
// (time, quantity, globe coordinate) rather than a simple literal.
func (v Value) IsStructured() bool {
	switch v.Kind {
	case ValueTime, ValueQuantity, ValueGlobe:
		return true
	}
	return false
}

var (
	timeShape    = regexp.MustCompile(`^[+-]\d{1,16}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`)
	decimalShape = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
)

// Validate checks the payload invariants for the value's kind.
func (v Value) Validate() error {
	switch v.Kind {
	case ValueTime:
		if v.Time == nil {
			return Error.New("time value missing payload")
		}
		if !timeShape.MatchString(v.Time.Value) {
			return Error.New("malformed time value %q", v.Time.Value)
		}
		if v.Time.Precision < 0 || v.Time.Precision > 14 {
			return Error.New("time precision %d out of range", v.Time.Precision)
		}
	case ValueQuantity:
		if v.Quantity == nil {
			return Error.New("quantity value missing payload")
		}
		for _, amount := range []string{v.Quantity.Amount, v.Quantity.UpperBound, v.Quantity.LowerBound} {
			if amount != "" && !decimalShape.MatchString(amount) {
				return Error.New("malformed quantity amount %q", amount)
			}
		}
		if v.Quantity.Amount == "" {
			return Error.New("quantity amount missing")
		}
	case ValueGlobe:
		if v.Globe == nil {
			return Error.New("globe value missing payload")
		}
		lat, err := strconv.ParseFloat(v.Globe.Latitude, 64)
		if err != nil || lat < -90 || lat > 90 {
			return Error.New("latitude %q out of range", v.Globe.Latitude)
		}
		lon, err := strconv.ParseFloat(v.Globe.Longitude, 64)
		if err != nil || lon < -180 || lon > 180 {
			return Error.New("longitude %q out of range", v.Globe.Longitude)
		}
		if v.Globe.Precision != "" {
			if _, err := strconv.ParseFloat(v.Globe.Precision, 64); err != nil {
				return Error.New("malformed coordinate precision %q", v.Globe.Precision)
			}
		}
	case ValueMonolingual:
		if v.Monolingual == nil {
			return Error.New("monolingual value missing payload")
		}
		if strings.ContainsAny(v.Monolingual.Text, "\n\r") {
			return Error.New("monolingual text must be single-line")
		}
		if v.Monolingual.Language == "" {
			return Error.New("monolingual language missing")
		}
	case ValueEntity:
		if v.Content == "" {
			return Error.New("entity value missing id")
		}
	case ValueNoValue, ValueSomeValue:
		// no payload
	default:
		if v.Content == "" {
			return Error.New("%s value missing content", v.Kind)
		}
	}
	return nil
}
