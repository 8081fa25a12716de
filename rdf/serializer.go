// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package rdf

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"

	"github.com/wikigraph/entitystore/entity"
)

var mon = monkit.Package()

const licenseURI = "http://creativecommons.org/publicdomain/zero/1.0/"

// Meta carries display terms for an entity referenced from statements.
type Meta struct {
	Labels       map[string]string
	Descriptions map[string]string
}

// MetaSource resolves labels and descriptions of referenced entities.
// Implementations may be backed by a cache; a miss returns found=false.
type MetaSource interface {
	Lookup(ctx context.Context, entityID string) (meta Meta, found bool, err error)
}

// DatasetMeta feeds the schema:Dataset block from the revision that the
// snapshot was read at, keeping the output a pure function of its inputs.
type DatasetMeta struct {
	RevisionID int64
	Modified   time.Time
}

// Config configures a Serializer.
type Config struct {
	RepositoryName  string `help:"repository name mixed into no-value blank node identifiers" default:"wikigraph"`
	SoftwareVersion string `help:"version string emitted as schema:softwareVersion" default:"1.0.0"`
}

// Serializer renders entity snapshots as Turtle. Safe for concurrent use;
// each call gets its own deduplication bag.
type Serializer struct {
	log      *zap.Logger
	registry *Registry
	meta     MetaSource
	config   Config
}

// NewSerializer constructs a Serializer. meta may be nil, in which case
// referenced-entity metadata blocks are omitted.
func NewSerializer(log *zap.Logger, registry *Registry, meta MetaSource, config Config) *Serializer {
	if config.RepositoryName == "" {
		config.RepositoryName = "wikigraph"
	}
	if config.SoftwareVersion == "" {
		config.SoftwareVersion = "1.0.0"
	}
	return &Serializer{log: log, registry: registry, meta: meta, config: config}
}

// Serialize renders one entity snapshot. incoming lists external ids of
// entities currently redirecting to this one. Identical inputs produce
// byte-identical output.
func (s *Serializer) Serialize(ctx context.Context, ent *entity.Entity, dataset DatasetMeta, incoming []string) (_ string, err error) {
	defer mon.Task()(&ctx)(&err)

	w := &writer{}
	bag := NewHashDedupeBag()

	for _, p := range prefixes {
		w.line("@prefix %s: <%s> .", p.Name, p.URI)
	}
	w.blank()

	s.writeEntityType(w, ent)
	s.writeDatasetMetadata(w, ent, dataset)
	s.writeTerms(w, ent)
	s.writeSitelinks(w, ent)

	if err := s.writeStatements(w, ent, bag); err != nil {
		return "", err
	}

	sort.Strings(incoming)
	for _, from := range incoming {
		w.triple("wd:"+from, "owl:sameAs", "wd:"+ent.ID)
	}

	if err := s.writeReferencedEntities(ctx, w, ent); err != nil {
		return "", err
	}

	s.writeOntology(w, ent)

	stats := bag.Stats()
	mon.IntVal("dedupe_hits").Observe(int64(stats.Hits))
	mon.IntVal("dedupe_misses").Observe(int64(stats.Misses))

	return w.String(), nil
}

func (s *Serializer) writeEntityType(w *writer, ent *entity.Entity) {
	kind := "wikibase:Item"
	if ent.Type == entity.KindProperty {
		kind = "wikibase:Property"
	}
	w.triple("wd:"+ent.ID, "a", kind)
}

func (s *Serializer) writeDatasetMetadata(w *writer, ent *entity.Entity, dataset DatasetMeta) {
	data := "data:" + ent.ID

	w.triple(data, "a", "schema:Dataset")
	w.triple(data, "schema:about", "wd:"+ent.ID)
	w.triple(data, "cc:license", "<"+licenseURI+">")
	w.triple(data, "schema:softwareVersion", quote(s.config.SoftwareVersion))
	w.triple(data, "schema:version", quote(strconv.FormatInt(dataset.RevisionID, 10))+"^^xsd:integer")
	w.triple(data, "schema:dateModified", quote(dataset.Modified.UTC().Format(time.RFC3339))+"^^xsd:dateTime")

	identifiers := 0
	for _, stmt := range ent.Statements {
		if s.registry.Shape(stmt.Property, stmt.Value.Kind).Datatype == "external-id" {
			identifiers++
		}
	}
	w.triple(data, "wikibase:statements", intLiteral(len(ent.Statements)))
	w.triple(data, "wikibase:sitelinks", intLiteral(len(ent.Sitelinks)))
	w.triple(data, "wikibase:identifiers", intLiteral(identifiers))
}

func intLiteral(n int) string {
	return quote(strconv.Itoa(n)) + "^^xsd:integer"
}

func (s *Serializer) writeTerms(w *writer, ent *entity.Entity) {
	subject := "wd:" + ent.ID
	for _, lang := range sortedKeys(ent.Labels) {
		label := langLiteral(ent.Labels[lang], lang)
		w.triple(subject, "rdfs:label", label)
		w.triple(subject, "skos:prefLabel", label)
		w.triple(subject, "schema:name", label)
	}
	for _, lang := range sortedKeys(ent.Descriptions) {
		w.triple(subject, "schema:description", langLiteral(ent.Descriptions[lang], lang))
	}
	for _, lang := range sortedKeys(ent.Aliases) {
		for _, alias := range ent.Aliases[lang] {
			w.triple(subject, "skos:altLabel", langLiteral(alias, lang))
		}
	}
}

// wikiGroups maps substrings of site keys to wikibase:wikiGroup names, in
// match order.
var wikiGroups = []string{
	"wikidata",
	"commons",
	"wikipedia",
	"wikibooks",
	"wikinews",
	"wikiquote",
	"wikisource",
	"wikiversity",
	"wikivoyage",
	"wiktionary",
}

func (s *Serializer) writeSitelinks(w *writer, ent *entity.Entity) {
	subject := "wd:" + ent.ID
	groupEmitted := map[string]bool{}

	for _, site := range sortedKeys(ent.Sitelinks) {
		link := ent.Sitelinks[site]
		lang, _, _ := strings.Cut(link.Site, "wiki")

		url := link.URL
		if url == "" {
			url = "https://" + lang + ".wikipedia.org/wiki/" + strings.ReplaceAll(link.Title, " ", "_")
		}
		siteURL := url
		if idx := strings.Index(url, "/wiki/"); idx >= 0 {
			siteURL = url[:idx+1]
		}

		group := link.Site
		for _, candidate := range wikiGroups {
			if strings.Contains(link.Site, candidate) {
				group = candidate
				break
			}
		}

		w.triple("<"+url+">", "a", "schema:Article")
		w.triple("<"+url+">", "schema:about", subject)
		w.triple("<"+url+">", "schema:inLanguage", quote(lang))
		w.triple("<"+url+">", "schema:name", langLiteral(link.Title, lang))
		w.triple("<"+url+">", "schema:isPartOf", "<"+siteURL+">")
		if !groupEmitted[siteURL] {
			groupEmitted[siteURL] = true
			w.triple("<"+siteURL+">", "wikibase:wikiGroup", quote(group))
		}
	}
}

func (s *Serializer) writeStatements(w *writer, ent *entity.Entity, bag *HashDedupeBag) error {
	subject := "wd:" + ent.ID

	for i, stmt := range ent.Statements {
		shape := s.registry.Shape(stmt.Property, stmt.Value.Kind)
		stmtURI := "wds:" + statementLocal(ent.ID, stmt.ID, i)
		best := stmt.Rank == entity.RankNormal

		w.triple(subject, "p:"+stmt.Property, stmtURI)
		w.triple(stmtURI, "a", "wikibase:Statement")
		if best {
			w.triple(stmtURI, "a", "wikibase:BestRank")
			w.triple(subject, "wdt:"+shape.PID, formatValue(stmt.Value))
		}

		s.writeSnakValue(w, bag, stmtURI, "ps:"+stmt.Property, "psv:"+stmt.Property, stmt.Value)
		w.triple(stmtURI, "wikibase:rank", rankTerm(stmt.Rank))

		for _, qual := range stmt.Qualifiers {
			s.writeSnakValue(w, bag, stmtURI, "pq:"+qual.Property, "pqv:"+qual.Property, qual.Value)
		}

		for _, ref := range stmt.References {
			if ref.Hash == "" {
				return ErrInvalidReference.New("statement %s has a reference without a hash", stmt.ID)
			}
			refURI := "wdref:" + ref.Hash
			w.triple(stmtURI, "prov:wasDerivedFrom", refURI)

			if bag.AlreadySeen(ref.Hash, NamespaceReference) {
				continue
			}
			w.triple(refURI, "a", "wikibase:Reference")
			for _, snak := range ref.Snaks {
				s.writeSnakValue(w, bag, refURI, "pr:"+snak.Property, "prv:"+snak.Property, snak.Value)
			}
		}
	}
	return nil
}

// writeSnakValue emits the value triple for one snak: the simple predicate
// for plain values, or the value-node predicate plus (once per distinct
// hash) the wdv: block for structured values.
func (s *Serializer) writeSnakValue(w *writer, bag *HashDedupeBag, subject, simple, structured string, v entity.Value) {
	if !v.IsStructured() {
		w.triple(subject, simple, formatValue(v))
		return
	}

	hash := valueHash(v)
	w.triple(subject, structured, "wdv:"+hash)
	if !bag.AlreadySeen(hash, NamespaceValue) {
		writeValueNode(w, hash, v)
	}
}

func rankTerm(rank entity.Rank) string {
	switch rank {
	case entity.RankPreferred:
		return "wikibase:PreferredRank"
	case entity.RankDeprecated:
		return "wikibase:DeprecatedRank"
	default:
		return "wikibase:NormalRank"
	}
}

// writeReferencedEntities emits label/description blocks for entities that
// appear as statement values. A cache miss skips the block; a cache failure
// is logged and skipped so serialisation does not depend on cache health.
func (s *Serializer) writeReferencedEntities(ctx context.Context, w *writer, ent *entity.Entity) error {
	if s.meta == nil {
		return nil
	}

	referenced := collectReferencedEntities(ent)
	for _, id := range referenced {
		meta, found, err := s.meta.Lookup(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return Error.Wrap(err)
			}
			s.log.Warn("referenced entity lookup failed",
				zap.String("entity_id", id), zap.Error(err))
			continue
		}
		if !found {
			continue
		}

		w.triple("wd:"+id, "a", "wikibase:Item")
		for _, lang := range sortedKeys(meta.Labels) {
			label := langLiteral(meta.Labels[lang], lang)
			w.triple("wd:"+id, "rdfs:label", label)
			w.triple("wd:"+id, "skos:prefLabel", label)
			w.triple("wd:"+id, "schema:name", label)
		}
		for _, lang := range sortedKeys(meta.Descriptions) {
			w.triple("wd:"+id, "schema:description", langLiteral(meta.Descriptions[lang], lang))
		}
	}
	return nil
}

func collectReferencedEntities(ent *entity.Entity) []string {
	seen := map[string]bool{ent.ID: true}
	var out []string
	add := func(v entity.Value) {
		if v.Kind == entity.ValueEntity && !seen[v.Content] {
			seen[v.Content] = true
			out = append(out, v.Content)
		}
	}
	for _, stmt := range ent.Statements {
		add(stmt.Value)
		for _, qual := range stmt.Qualifiers {
			add(qual.Value)
		}
		for _, ref := range stmt.References {
			for _, snak := range ref.Snaks {
				add(snak.Value)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (s *Serializer) writeOntology(w *writer, ent *entity.Entity) {
	pids := ent.Properties()
	sortProperties(pids)

	kinds := map[string]entity.ValueKind{}
	record := func(snak entity.Snak) {
		if _, ok := kinds[snak.Property]; !ok {
			kinds[snak.Property] = snak.Value.Kind
		}
	}
	for _, stmt := range ent.Statements {
		record(entity.Snak{Property: stmt.Property, Value: stmt.Value})
		for _, qual := range stmt.Qualifiers {
			record(qual)
		}
		for _, ref := range stmt.References {
			for _, snak := range ref.Snaks {
				record(snak)
			}
		}
	}

	for _, pid := range pids {
		writePropertyOntology(w, s.registry.Shape(pid, kinds[pid]), s.config.RepositoryName)
	}
}
