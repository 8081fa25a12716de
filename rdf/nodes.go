// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package rdf

import (
	"strconv"
	"strings"

	"github.com/wikigraph/entitystore/entity"
)

// writeValueNode emits the wdv: block for a structured value. hash must come
// from valueHash for the same value.
func writeValueNode(w *writer, hash string, v entity.Value) {
	subject := "wdv:" + hash
	switch v.Kind {
	case entity.ValueTime:
		t := v.Time
		w.block(subject,
			"a", "wikibase:TimeValue",
			"wikibase:timeValue", quote(strings.TrimPrefix(t.Value, "+"))+"^^xsd:dateTime",
			"wikibase:timePrecision", quote(strconv.Itoa(t.Precision))+"^^xsd:integer",
			"wikibase:timeTimezone", quote(strconv.Itoa(t.Timezone))+"^^xsd:integer",
			"wikibase:timeCalendarModel", "<"+t.CalendarModel+">",
		)
	case entity.ValueQuantity:
		q := v.Quantity
		pairs := []string{
			"a", "wikibase:QuantityValue",
			"wikibase:quantityAmount", quote(q.Amount) + "^^xsd:decimal",
			"wikibase:quantityUnit", "<" + q.Unit + ">",
		}
		if q.UpperBound != "" {
			pairs = append(pairs, "wikibase:quantityUpperBound", quote(q.UpperBound)+"^^xsd:decimal")
		}
		if q.LowerBound != "" {
			pairs = append(pairs, "wikibase:quantityLowerBound", quote(q.LowerBound)+"^^xsd:decimal")
		}
		w.block(subject, pairs...)
	case entity.ValueGlobe:
		g := v.Globe
		w.block(subject,
			"a", "wikibase:GlobecoordinateValue",
			"wikibase:geoLatitude", quote(g.Latitude)+"^^xsd:double",
			"wikibase:geoLongitude", quote(g.Longitude)+"^^xsd:double",
			"wikibase:geoPrecision", quote(g.Precision)+"^^xsd:double",
			"wikibase:geoGlobe", "<"+g.Globe+">",
		)
	}
}
