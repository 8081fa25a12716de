// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package rdf

import (
	"strings"

	"github.com/wikigraph/entitystore/entity"
)

var turtleEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// quote renders s as a Turtle string literal.
func quote(s string) string {
	return `"` + turtleEscaper.Replace(s) + `"`
}

// langLiteral renders a language-tagged literal, "text"@lang.
func langLiteral(text, lang string) string {
	return quote(text) + "@" + lang
}

// formatValue renders a snak value as the object of a simple-value triple
// (wdt:, ps:, pq:, pr: families).
func formatValue(v entity.Value) string {
	switch v.Kind {
	case entity.ValueEntity:
		return "wd:" + v.Content
	case entity.ValueTime:
		if v.Time == nil {
			return `""`
		}
		return quote(strings.TrimPrefix(v.Time.Value, "+")) + "^^xsd:dateTime"
	case entity.ValueQuantity:
		if v.Quantity == nil {
			return `""`
		}
		return quote(v.Quantity.Amount) + "^^xsd:decimal"
	case entity.ValueGlobe:
		if v.Globe == nil {
			return `""`
		}
		return quote("Point("+v.Globe.Longitude+" "+v.Globe.Latitude+")") + "^^geo:wktLiteral"
	case entity.ValueMonolingual:
		if v.Monolingual == nil {
			return `""`
		}
		return langLiteral(v.Monolingual.Text, v.Monolingual.Language)
	case entity.ValueNoValue:
		return "wikibase:noValue"
	case entity.ValueSomeValue:
		return "wikibase:someValue"
	case entity.ValueURL:
		return "<" + v.Content + ">"
	default:
		// string, external-id, commons-media, geo-shape, tabular-data,
		// musical-notation, math
		return quote(v.Content)
	}
}
