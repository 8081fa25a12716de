// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package rdf

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wikigraph/entitystore/entity"
)

// PropertyShape describes how a property serialises: its datatype, the
// predicate families it participates in, and display terms.
type PropertyShape struct {
	PID          string
	Datatype     string
	Labels       map[string]string
	Descriptions map[string]string
}

// HasValueNode reports whether the property's values are structured and get
// psv:/pqv:/prv: value-node predicates.
func (s PropertyShape) HasValueNode() bool {
	switch s.Datatype {
	case "time", "globe-coordinate", "quantity", "external-id":
		return true
	}
	return false
}

// HasNormalized reports whether the property gets the normalised predicate
// family (wdtn:, psn:, pqn:, prn:).
func (s PropertyShape) HasNormalized() bool {
	return s.Datatype == "quantity" || s.Datatype == "external-id"
}

// owlObjectDatatypes lists datatypes whose direct/statement predicates are
// declared owl:ObjectProperty rather than owl:DatatypeProperty.
var owlObjectDatatypes = map[string]bool{
	"wikibase-item":     true,
	"wikibase-property": true,
	"wikibase-lexeme":   true,
	"wikibase-form":     true,
	"wikibase-sense":    true,
	"commonsMedia":      true,
	"string":            true,
	"url":               true,
	"math":              true,
	"geo-shape":         true,
	"monolingualtext":   true,
	"external-id":       true,
	"tabular-data":      true,
	"musical-notation":  true,
	"entity-schema":     true,
}

// OWLType returns the owl class for the property's simple-value predicates.
func (s PropertyShape) OWLType() string {
	if owlObjectDatatypes[s.Datatype] {
		return "owl:ObjectProperty"
	}
	return "owl:DatatypeProperty"
}

// propertyTypeNames maps datatypes to wikibase:propertyType local names.
var propertyTypeNames = map[string]string{
	"wikibase-item":     "WikibaseItem",
	"wikibase-property": "WikibaseProperty",
	"wikibase-lexeme":   "WikibaseLexeme",
	"wikibase-form":     "WikibaseForm",
	"wikibase-sense":    "WikibaseSense",
	"commonsMedia":      "CommonsMedia",
	"string":            "String",
	"external-id":       "ExternalId",
	"url":               "Url",
	"math":              "Math",
	"geo-shape":         "GeoShape",
	"tabular-data":      "TabularData",
	"musical-notation":  "MusicalNotation",
	"monolingualtext":   "Monolingualtext",
	"time":              "Time",
	"quantity":          "Quantity",
	"globe-coordinate":  "GlobeCoordinate",
	"entity-schema":     "EntitySchema",
}

// PropertyType returns the wikibase:propertyType term, e.g.
// "wikibase:WikibaseItem".
func (s PropertyShape) PropertyType() string {
	name, ok := propertyTypeNames[s.Datatype]
	if !ok {
		name = "String"
	}
	return "wikibase:" + name
}

// Registry holds the known property shapes.
type Registry struct {
	shapes map[string]PropertyShape
}

// NewRegistry constructs a registry from pre-built shapes.
func NewRegistry(shapes ...PropertyShape) *Registry {
	reg := &Registry{shapes: make(map[string]PropertyShape, len(shapes))}
	for _, shape := range shapes {
		reg.shapes[shape.PID] = shape
	}
	return reg
}

// Shape returns the registered shape for pid. Unknown properties get a
// default shape with a datatype inferred from the value that reached the
// serializer, so output stays well-formed for unregistered properties.
func (reg *Registry) Shape(pid string, fallback entity.ValueKind) PropertyShape {
	if shape, ok := reg.shapes[pid]; ok {
		return shape
	}
	return PropertyShape{PID: pid, Datatype: datatypeForKind(fallback)}
}

// Len reports the number of registered properties.
func (reg *Registry) Len() int { return len(reg.shapes) }

func datatypeForKind(kind entity.ValueKind) string {
	switch kind {
	case entity.ValueEntity:
		return "wikibase-item"
	case entity.ValueTime:
		return "time"
	case entity.ValueQuantity:
		return "quantity"
	case entity.ValueGlobe:
		return "globe-coordinate"
	case entity.ValueMonolingual:
		return "monolingualtext"
	case entity.ValueExternalID:
		return "external-id"
	case entity.ValueURL:
		return "url"
	case entity.ValueCommonsMedia:
		return "commonsMedia"
	case entity.ValueGeoShape:
		return "geo-shape"
	case entity.ValueTabularData:
		return "tabular-data"
	case entity.ValueMusicalNotation:
		return "musical-notation"
	case entity.ValueMath:
		return "math"
	default:
		return "string"
	}
}

// propertyFile is the on-disk shape of a P*.json registry file. Terms accept
// both the full {"language":..., "value":...} form and plain strings.
type propertyFile struct {
	ID           string                     `json:"id"`
	Labels       map[string]json.RawMessage `json:"labels"`
	Descriptions map[string]json.RawMessage `json:"descriptions"`
}

// LoadRegistry reads a property registry directory: a properties.csv with
// property_id,datatype columns, plus one P<id>.json per property carrying
// labels and descriptions. Properties missing from the CSV default to the
// string datatype.
func LoadRegistry(dir string) (*Registry, error) {
	datatypes, err := loadDatatypes(filepath.Join(dir, "properties.csv"))
	if err != nil {
		return nil, err
	}

	files, err := filepath.Glob(filepath.Join(dir, "P*.json"))
	if err != nil {
		return nil, Error.Wrap(err)
	}
	sort.Strings(files)

	reg := &Registry{shapes: map[string]PropertyShape{}}
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		var pf propertyFile
		if err := json.Unmarshal(raw, &pf); err != nil {
			return nil, Error.New("parsing %s: %v", filepath.Base(file), err)
		}
		if pf.ID == "" {
			return nil, Error.New("%s: missing property id", filepath.Base(file))
		}

		datatype, ok := datatypes[pf.ID]
		if !ok {
			datatype = "string"
		}
		reg.shapes[pf.ID] = PropertyShape{
			PID:          pf.ID,
			Datatype:     datatype,
			Labels:       decodeTerms(pf.Labels),
			Descriptions: decodeTerms(pf.Descriptions),
		}
	}
	return reg, nil
}

func loadDatatypes(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, Error.Wrap(err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if len(rows) == 0 {
		return map[string]string{}, nil
	}

	idCol, typeCol := -1, -1
	for i, name := range rows[0] {
		switch strings.TrimSpace(name) {
		case "property_id":
			idCol = i
		case "datatype":
			typeCol = i
		}
	}
	if idCol < 0 || typeCol < 0 {
		return nil, Error.New("properties.csv: missing property_id or datatype column")
	}

	datatypes := make(map[string]string, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) <= idCol || len(row) <= typeCol {
			continue
		}
		datatypes[row[idCol]] = row[typeCol]
	}
	return datatypes, nil
}

func decodeTerms(raw map[string]json.RawMessage) map[string]string {
	terms := make(map[string]string, len(raw))
	for lang, msg := range raw {
		var full struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(msg, &full); err == nil && full.Value != "" {
			terms[lang] = full.Value
			continue
		}
		var plain string
		if err := json.Unmarshal(msg, &plain); err == nil {
			terms[lang] = plain
		}
	}
	return terms
}
