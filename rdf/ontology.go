// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package rdf

import "sort"

// sortProperties orders property ids numerically (P5 before P31 before P569).
func sortProperties(pids []string) {
	sort.Slice(pids, func(i, j int) bool {
		a, b := pids[i], pids[j]
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
}

// writePropertyOntology emits the full ontology section for one property:
// the property metadata block, the predicate type declarations, and the
// no-value OWL class.
func writePropertyOntology(w *writer, shape PropertyShape, repository string) {
	pid := shape.PID

	pairs := []string{"a", "wikibase:Property"}
	for _, lang := range sortedKeys(shape.Labels) {
		label := langLiteral(shape.Labels[lang], lang)
		pairs = append(pairs,
			"rdfs:label", label,
			"skos:prefLabel", label,
			"schema:name", label,
		)
	}
	for _, lang := range sortedKeys(shape.Descriptions) {
		pairs = append(pairs, "schema:description", langLiteral(shape.Descriptions[lang], lang))
	}
	pairs = append(pairs,
		"wikibase:propertyType", shape.PropertyType(),
		"wikibase:directClaim", "wdt:"+pid,
		"wikibase:claim", "p:"+pid,
		"wikibase:statementProperty", "ps:"+pid,
		"wikibase:statementValue", "psv:"+pid,
		"wikibase:qualifier", "pq:"+pid,
		"wikibase:qualifierValue", "pqv:"+pid,
		"wikibase:reference", "pr:"+pid,
		"wikibase:referenceValue", "prv:"+pid,
	)
	if shape.HasNormalized() {
		pairs = append(pairs,
			"wikibase:directClaimNormalized", "wdtn:"+pid,
			"wikibase:statementValueNormalized", "psn:"+pid,
			"wikibase:qualifierValueNormalized", "pqn:"+pid,
			"wikibase:referenceValueNormalized", "prn:"+pid,
		)
	}
	pairs = append(pairs, "wikibase:novalue", "wdno:"+pid)
	w.block("wd:"+pid, pairs...)

	w.triple("p:"+pid, "a", "owl:ObjectProperty")
	w.triple("psv:"+pid, "a", "owl:ObjectProperty")
	w.triple("pqv:"+pid, "a", "owl:ObjectProperty")
	w.triple("prv:"+pid, "a", "owl:ObjectProperty")

	owlType := shape.OWLType()
	w.triple("wdt:"+pid, "a", owlType)
	w.triple("ps:"+pid, "a", owlType)
	w.triple("pq:"+pid, "a", owlType)
	w.triple("pr:"+pid, "a", owlType)

	blank := "_:" + novalueLocal(repository, pid)
	w.block("wdno:"+pid,
		"a", "owl:Class",
		"owl:complementOf", blank,
	)
	w.blank()
	w.block(blank,
		"a", "owl:Restriction",
		"owl:onProperty", "wdt:"+pid,
		"owl:someValuesFrom", "owl:Thing",
	)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
