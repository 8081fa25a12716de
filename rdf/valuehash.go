// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package rdf

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/wikigraph/entitystore/entity"
)

// Value-node local names are the MD5 of a canonical string per value kind.
// The canonical forms are byte-compatible with the Wikidata dump pipeline,
// so wdv: URIs produced here line up with the public dumps.

// timeCanonical builds the canonical string for a time value:
//
//	t:<value>:<precision>:<timezone>[:<before>][:<after>]:<calendarmodel>
//
// The leading "+" of the time string is stripped only when the timezone is
// zero. Before/after components appear only when non-zero.
func timeCanonical(v entity.TimeValue) string {
	value := v.Value
	if v.Timezone == 0 {
		value = strings.TrimPrefix(value, "+")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "t:%s:%d:%d", value, v.Precision, v.Timezone)
	if v.Before != 0 {
		fmt.Fprintf(&b, ":%d", v.Before)
	}
	if v.After != 0 {
		fmt.Fprintf(&b, ":%d", v.After)
	}
	b.WriteByte(':')
	b.WriteString(v.CalendarModel)
	return b.String()
}

// quantityCanonical builds the canonical string for a quantity value:
//
//	q:<amount>:<unit>[:<upperBound>][:<lowerBound>]
//
// Bounds appear only when present. Amount and bounds keep their exact
// decimal spelling, sign included.
func quantityCanonical(v entity.QuantityValue) string {
	var b strings.Builder
	b.WriteString("q:")
	b.WriteString(v.Amount)
	b.WriteByte(':')
	b.WriteString(v.Unit)
	if v.UpperBound != "" {
		b.WriteByte(':')
		b.WriteString(v.UpperBound)
	}
	if v.LowerBound != "" {
		b.WriteByte(':')
		b.WriteString(v.LowerBound)
	}
	return b.String()
}

// globeCanonical builds the canonical string for a globe coordinate:
//
//	g:<latitude>:<longitude>:<precision>:<globe>
//
// with the precision rendered in normalised scientific notation.
func globeCanonical(v entity.GlobeValue) string {
	return "g:" + v.Latitude + ":" + v.Longitude + ":" + scientific(v.Precision) + ":" + v.Globe
}

// scientific renders a decimal string as one-digit-mantissa scientific
// notation with the exponent's sign normalised: "+" dropped and leading
// zeros stripped, e.g. 0.00001 -> 1.0E-5 and 1 -> 1.0E0.
func scientific(decimal string) string {
	f, err := strconv.ParseFloat(decimal, 64)
	if err != nil {
		f = 0
	}
	s := fmt.Sprintf("%.1E", f)
	mantissa, exp, _ := strings.Cut(s, "E")
	negative := strings.HasPrefix(exp, "-")
	exp = strings.TrimLeft(exp, "+-0")
	if exp == "" {
		exp = "0"
	}
	if negative {
		exp = "-" + exp
	}
	return mantissa + "E" + exp
}

// valueHash returns the md5 local name for a structured value, or "" when
// the value kind carries no value node.
func valueHash(v entity.Value) string {
	var canonical string
	switch {
	case v.Kind == entity.ValueTime && v.Time != nil:
		canonical = timeCanonical(*v.Time)
	case v.Kind == entity.ValueQuantity && v.Quantity != nil:
		canonical = quantityCanonical(*v.Quantity)
	case v.Kind == entity.ValueGlobe && v.Globe != nil:
		canonical = globeCanonical(*v.Globe)
	default:
		return ""
	}
	sum := md5.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// novalueLocal returns the blank-node local name used by a property's
// no-value class restriction.
func novalueLocal(repository, pid string) string {
	sum := md5.Sum([]byte("owl:complementOf-" + repository + "-" + pid))
	return hex.EncodeToString(sum[:])
}
