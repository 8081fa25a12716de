// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

// Package rdf serialises entity snapshots to RDF Turtle: deterministic block
// ordering, MediaWiki-compatible value-node hashing, and lossy hash-bag
// deduplication of value and reference nodes.
package rdf

import "github.com/zeebo/errs"

var (
	// Error is the default rdf error class.
	Error = errs.Class("rdf")

	// ErrInvalidReference marks a reference without a hash; indicates an
	// upstream bug and surfaces as an internal error.
	ErrInvalidReference = errs.Class("invalid reference")
)

// prefix is one Turtle namespace binding.
type prefix struct {
	Name string
	URI  string
}

// prefixes is the full header, in emission order.
var prefixes = []prefix{
	{"rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#"},
	{"rdfs", "http://www.w3.org/2000/01/rdf-schema#"},
	{"xsd", "http://www.w3.org/2001/XMLSchema#"},
	{"owl", "http://www.w3.org/2002/07/owl#"},
	{"skos", "http://www.w3.org/2004/02/skos/core#"},
	{"schema", "http://schema.org/"},
	{"cc", "http://creativecommons.org/ns#"},
	{"geo", "http://www.opengis.net/ont/geosparql#"},
	{"prov", "http://www.w3.org/ns/prov#"},
	{"wikibase", "http://wikiba.se/ontology#"},
	{"wd", "http://www.wikidata.org/entity/"},
	{"data", "https://www.wikidata.org/wiki/Special:EntityData/"},
	{"wds", "http://www.wikidata.org/entity/statement/"},
	{"wdv", "http://www.wikidata.org/value/"},
	{"wdref", "http://www.wikidata.org/reference/"},
	{"wdt", "http://www.wikidata.org/prop/direct/"},
	{"wdtn", "http://www.wikidata.org/prop/direct-normalized/"},
	{"wdno", "http://www.wikidata.org/prop/novalue/"},
	{"p", "http://www.wikidata.org/prop/"},
	{"ps", "http://www.wikidata.org/prop/statement/"},
	{"psv", "http://www.wikidata.org/prop/statement/value/"},
	{"psn", "http://www.wikidata.org/prop/statement/value-normalized/"},
	{"pq", "http://www.wikidata.org/prop/qualifier/"},
	{"pqv", "http://www.wikidata.org/prop/qualifier/value/"},
	{"pqn", "http://www.wikidata.org/prop/qualifier/value-normalized/"},
	{"pr", "http://www.wikidata.org/prop/reference/"},
	{"prv", "http://www.wikidata.org/prop/reference/value/"},
	{"prn", "http://www.wikidata.org/prop/reference/value-normalized/"},
}
