// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

// Package entity defines the internal entity document model and the
// canonical serialisation used for content hashing.
package entity

import (
	"github.com/zeebo/errs"
)

// Error is the default error class for the entity package.
var Error = errs.Class("entity")

// Kind enumerates the recognised entity types.
type Kind string

// Recognised entity kinds.
const (
	KindItem     Kind = "item"
	KindProperty Kind = "property"
)

// Rank is the statement rank.
type Rank string

// Statement ranks.
const (
	RankNormal     Rank = "normal"
	RankPreferred  Rank = "preferred"
	RankDeprecated Rank = "deprecated"
)

// Snak is a single property-value assertion. It appears as a statement's
// mainsnak, as a qualifier, and inside references.
type Snak struct {
	Property string
	Value    Value
}

// Reference backs a statement with a caller-supplied hash and snaks.
type Reference struct {
	Hash  string
	Snaks []Snak
}

// Statement is one claim about an entity.
type Statement struct {
	ID         string // caller-supplied GUID, "<entity-id>$<UUID>"
	Property   string
	Value      Value
	Rank       Rank
	Qualifiers []Snak
	References []Reference
}

// Sitelink points at a wiki article about the entity.
type Sitelink struct {
	Site   string
	Title  string
	URL    string
	Badges []string
}

// Entity is the parsed form of an entity document, as consumed by the RDF
// serializer. The write path treats documents as opaque JSON; only the read
// path parses them into this shape.
type Entity struct {
	ID           string
	Type         Kind
	Labels       map[string]string
	Descriptions map[string]string
	Aliases      map[string][]string
	Statements   []Statement // ordered by property id, then input order
	Sitelinks    map[string]Sitelink
}

// Properties returns the distinct property ids used by the entity's
// statements, qualifiers and reference snaks, in sorted order of first use.
func (e *Entity) Properties() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(pid string) {
		if pid != "" && !seen[pid] {
			seen[pid] = true
			out = append(out, pid)
		}
	}
	for _, stmt := range e.Statements {
		add(stmt.Property)
		for _, q := range stmt.Qualifiers {
			add(q.Property)
		}
		for _, ref := range stmt.References {
			for _, snak := range ref.Snaks {
				add(snak.Property)
			}
		}
	}
	return out
}
