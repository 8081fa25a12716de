// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package rdf_test

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wikigraph/entitystore/entity"
	"github.com/wikigraph/entitystore/rdf"
)

const gregorian = "http://www.wikidata.org/entity/Q1985727"

// staticMeta is an in-memory rdf.MetaSource.
type staticMeta map[string]rdf.Meta

func (m staticMeta) Lookup(ctx context.Context, entityID string) (rdf.Meta, bool, error) {
	meta, ok := m[entityID]
	return meta, ok, nil
}

func testRegistry() *rdf.Registry {
	return rdf.NewRegistry(
		rdf.PropertyShape{
			PID:      "P31",
			Datatype: "wikibase-item",
			Labels:   map[string]string{"en": "instance of"},
			Descriptions: map[string]string{
				"en": "type to which this subject belongs",
			},
		},
		rdf.PropertyShape{
			PID:      "P569",
			Datatype: "time",
			Labels:   map[string]string{"en": "date of birth"},
		},
		rdf.PropertyShape{
			PID:      "P1082",
			Datatype: "quantity",
			Labels:   map[string]string{"en": "population"},
		},
		rdf.PropertyShape{
			PID:      "P214",
			Datatype: "external-id",
			Labels:   map[string]string{"en": "VIAF ID"},
		},
	)
}

func newSerializer(t *testing.T, meta rdf.MetaSource) *rdf.Serializer {
	return rdf.NewSerializer(zaptest.NewLogger(t), testRegistry(), meta, rdf.Config{
		RepositoryName:  "wikigraph",
		SoftwareVersion: "1.0.0",
	})
}

func birthday(value string) entity.Value {
	return entity.Value{Kind: entity.ValueTime, Time: &entity.TimeValue{
		Value:         value,
		Precision:     11,
		CalendarModel: gregorian,
	}}
}

func sampleEntity() *entity.Entity {
	return &entity.Entity{
		ID:     "Q42",
		Type:   entity.KindItem,
		Labels: map[string]string{"en": "Douglas Adams", "de": "Douglas Adams"},
		Descriptions: map[string]string{
			"en": "English writer and humourist",
		},
		Aliases: map[string][]string{
			"en": {"Douglas Noel Adams"},
		},
		Statements: []entity.Statement{
			{
				ID:       "Q42$F078E5B3-F9A8-480E-B7AC-D97778CBBEF9",
				Property: "P31",
				Value:    entity.Value{Kind: entity.ValueEntity, Content: "Q5"},
				Rank:     entity.RankNormal,
				References: []entity.Reference{{
					Hash: "9a24f7c0208b05d6be97077d855671d1dfdbc0dd",
					Snaks: []entity.Snak{{
						Property: "P31",
						Value:    entity.Value{Kind: entity.ValueEntity, Content: "Q328"},
					}},
				}},
			},
			{
				ID:       "Q42$D8404CDA-25E4-4334-AF13-A3290BCD9C0F",
				Property: "P569",
				Value:    birthday("+1952-03-11T00:00:00Z"),
				Rank:     entity.RankNormal,
			},
		},
		Sitelinks: map[string]entity.Sitelink{
			"enwiki": {
				Site:  "enwiki",
				Title: "Douglas Adams",
				URL:   "https://en.wikipedia.org/wiki/Douglas_Adams",
			},
		},
	}
}

func serialize(t *testing.T, s *rdf.Serializer, ent *entity.Entity, incoming []string) string {
	out, err := s.Serialize(context.Background(), ent, rdf.DatasetMeta{
		RevisionID: 7,
		Modified:   time.Date(2024, 5, 6, 1, 49, 59, 0, time.UTC),
	}, incoming)
	require.NoError(t, err)
	return out
}

func TestSerializeBasicBlocks(t *testing.T) {
	s := newSerializer(t, nil)
	out := serialize(t, s, sampleEntity(), nil)

	require.True(t, strings.HasPrefix(out, "@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .\n"))
	require.Contains(t, out, "wd:Q42 a wikibase:Item .\n")

	require.Contains(t, out, "data:Q42 a schema:Dataset .\n")
	require.Contains(t, out, "data:Q42 schema:about wd:Q42 .\n")
	require.Contains(t, out, "data:Q42 cc:license <http://creativecommons.org/publicdomain/zero/1.0/> .\n")
	require.Contains(t, out, `data:Q42 schema:version "7"^^xsd:integer .`)
	require.Contains(t, out, `data:Q42 schema:dateModified "2024-05-06T01:49:59Z"^^xsd:dateTime .`)
	require.Contains(t, out, `data:Q42 wikibase:statements "2"^^xsd:integer .`)
	require.Contains(t, out, `data:Q42 wikibase:sitelinks "1"^^xsd:integer .`)
	require.Contains(t, out, `data:Q42 wikibase:identifiers "0"^^xsd:integer .`)

	require.Contains(t, out, `wd:Q42 rdfs:label "Douglas Adams"@en .`)
	require.Contains(t, out, `wd:Q42 skos:prefLabel "Douglas Adams"@de .`)
	require.Contains(t, out, `wd:Q42 schema:description "English writer and humourist"@en .`)
	require.Contains(t, out, `wd:Q42 skos:altLabel "Douglas Noel Adams"@en .`)

	require.Contains(t, out, "<https://en.wikipedia.org/wiki/Douglas_Adams> a schema:Article .\n")
	require.Contains(t, out, "<https://en.wikipedia.org/wiki/Douglas_Adams> schema:about wd:Q42 .\n")
	require.Contains(t, out, `<https://en.wikipedia.org/wiki/Douglas_Adams> schema:inLanguage "en" .`)
	require.Contains(t, out, `<https://en.wikipedia.org/wiki/Douglas_Adams> schema:name "Douglas Adams"@en .`)
	require.Contains(t, out, "<https://en.wikipedia.org/wiki/Douglas_Adams> schema:isPartOf <https://en.wikipedia.org/> .\n")
	require.Contains(t, out, `<https://en.wikipedia.org/> wikibase:wikiGroup "wikipedia" .`)
}

func TestSerializeStatements(t *testing.T) {
	s := newSerializer(t, nil)
	out := serialize(t, s, sampleEntity(), nil)

	// Statement identifiers swap "$" for "-".
	require.Contains(t, out, "wd:Q42 p:P31 wds:Q42-F078E5B3-F9A8-480E-B7AC-D97778CBBEF9 .\n")
	require.Contains(t, out, "wds:Q42-F078E5B3-F9A8-480E-B7AC-D97778CBBEF9 a wikibase:Statement .\n")
	require.Contains(t, out, "wds:Q42-F078E5B3-F9A8-480E-B7AC-D97778CBBEF9 a wikibase:BestRank .\n")
	require.Contains(t, out, "wds:Q42-F078E5B3-F9A8-480E-B7AC-D97778CBBEF9 ps:P31 wd:Q5 .\n")
	require.Contains(t, out, "wds:Q42-F078E5B3-F9A8-480E-B7AC-D97778CBBEF9 wikibase:rank wikibase:NormalRank .\n")
	require.Contains(t, out, "wd:Q42 wdt:P31 wd:Q5 .\n")

	// References hang off the statement and carry their own snaks.
	require.Contains(t, out, "prov:wasDerivedFrom wdref:9a24f7c0208b05d6be97077d855671d1dfdbc0dd .\n")
	require.Contains(t, out, "wdref:9a24f7c0208b05d6be97077d855671d1dfdbc0dd a wikibase:Reference .\n")
	require.Contains(t, out, "wdref:9a24f7c0208b05d6be97077d855671d1dfdbc0dd pr:P31 wd:Q328 .\n")

	// The time statement uses the value-node predicate plus a wdv: block.
	require.Contains(t, out, "psv:P569 wdv:")
	require.Contains(t, out, "a wikibase:TimeValue")
	require.Contains(t, out, `wikibase:timeValue "1952-03-11T00:00:00Z"^^xsd:dateTime`)
	require.Contains(t, out, `wikibase:timePrecision "11"^^xsd:integer`)
	require.Contains(t, out, "wikibase:timeCalendarModel <"+gregorian+">")
	require.Contains(t, out, `wd:Q42 wdt:P569 "1952-03-11T00:00:00Z"^^xsd:dateTime .`)
}

func TestSerializeRankHandling(t *testing.T) {
	ent := sampleEntity()
	ent.Statements = []entity.Statement{
		{
			ID:       "Q42$A",
			Property: "P31",
			Value:    entity.Value{Kind: entity.ValueEntity, Content: "Q5"},
			Rank:     entity.RankDeprecated,
		},
		{
			ID:       "Q42$B",
			Property: "P31",
			Value:    entity.Value{Kind: entity.ValueEntity, Content: "Q95074"},
			Rank:     entity.RankPreferred,
		},
	}

	s := newSerializer(t, nil)
	out := serialize(t, s, ent, nil)

	require.Contains(t, out, "wds:Q42-A wikibase:rank wikibase:DeprecatedRank .\n")
	require.Contains(t, out, "wds:Q42-B wikibase:rank wikibase:PreferredRank .\n")
	require.NotContains(t, out, "wikibase:BestRank")
	require.NotContains(t, out, "wd:Q42 wdt:P31")
}

func TestValueNodeDeduplication(t *testing.T) {
	// Two statements on different properties share the same time value: the
	// referencing triples are emitted twice, the node body exactly once.
	shared := birthday("+1700-01-01T00:00:00Z")
	ent := sampleEntity()
	ent.Statements = []entity.Statement{
		{ID: "Q42$A", Property: "P569", Value: shared, Rank: entity.RankNormal},
		{ID: "Q42$B", Property: "P570", Value: shared, Rank: entity.RankNormal},
	}

	s := newSerializer(t, nil)
	out := serialize(t, s, ent, nil)

	require.Equal(t, 1, strings.Count(out, "a wikibase:TimeValue"))
	require.Equal(t, 1, strings.Count(out, "psv:P569 wdv:"))
	require.Equal(t, 1, strings.Count(out, "psv:P570 wdv:"))
}

func TestSharedReferenceEmittedOnce(t *testing.T) {
	ref := entity.Reference{
		Hash: "9a24f7c0208b05d6be97077d855671d1dfdbc0dd",
		Snaks: []entity.Snak{{
			Property: "P31",
			Value:    entity.Value{Kind: entity.ValueEntity, Content: "Q328"},
		}},
	}
	ent := sampleEntity()
	ent.Statements = []entity.Statement{
		{ID: "Q42$A", Property: "P31", Value: entity.Value{Kind: entity.ValueEntity, Content: "Q5"}, Rank: entity.RankNormal, References: []entity.Reference{ref}},
		{ID: "Q42$B", Property: "P31", Value: entity.Value{Kind: entity.ValueEntity, Content: "Q6"}, Rank: entity.RankNormal, References: []entity.Reference{ref}},
	}

	s := newSerializer(t, nil)
	out := serialize(t, s, ent, nil)

	require.Equal(t, 2, strings.Count(out, "prov:wasDerivedFrom wdref:"))
	require.Equal(t, 1, strings.Count(out, "a wikibase:Reference"))
}

func TestMissingReferenceHash(t *testing.T) {
	ent := sampleEntity()
	ent.Statements[0].References[0].Hash = ""

	s := newSerializer(t, nil)
	_, err := s.Serialize(context.Background(), ent, rdf.DatasetMeta{}, nil)
	require.True(t, rdf.ErrInvalidReference.Has(err))
}

func TestIncomingRedirects(t *testing.T) {
	s := newSerializer(t, nil)
	out := serialize(t, s, sampleEntity(), []string{"Q100000", "Q4242"})

	require.Contains(t, out, "wd:Q100000 owl:sameAs wd:Q42 .\n")
	require.Contains(t, out, "wd:Q4242 owl:sameAs wd:Q42 .\n")
}

func TestReferencedEntityBlocks(t *testing.T) {
	meta := staticMeta{
		"Q5": {
			Labels:       map[string]string{"en": "human"},
			Descriptions: map[string]string{"en": "common name of Homo sapiens"},
		},
	}
	s := newSerializer(t, meta)
	out := serialize(t, s, sampleEntity(), nil)

	require.Contains(t, out, "wd:Q5 a wikibase:Item .\n")
	require.Contains(t, out, `wd:Q5 rdfs:label "human"@en .`)
	require.Contains(t, out, `wd:Q5 schema:description "common name of Homo sapiens"@en .`)

	// Q328 appears only in a reference snak and has no cached terms.
	require.NotContains(t, out, "wd:Q328 a wikibase:Item")
}

func TestPropertyOntology(t *testing.T) {
	s := newSerializer(t, nil)
	out := serialize(t, s, sampleEntity(), nil)

	require.Contains(t, out, `rdfs:label "instance of"@en`)
	require.Contains(t, out, "wikibase:propertyType wikibase:WikibaseItem")
	require.Contains(t, out, "wikibase:directClaim wdt:P31")
	require.Contains(t, out, "wikibase:novalue wdno:P31")
	require.Contains(t, out, "p:P31 a owl:ObjectProperty .\n")
	require.Contains(t, out, "wdt:P31 a owl:ObjectProperty .\n")
	// Time is not an item-like datatype.
	require.Contains(t, out, "wdt:P569 a owl:DatatypeProperty .\n")

	sum := md5.Sum([]byte("owl:complementOf-wikigraph-P31"))
	blank := "_:" + hex.EncodeToString(sum[:])
	require.Contains(t, out, "wdno:P31 a owl:Class ;\n\towl:complementOf "+blank+" .\n")
	require.Contains(t, out, blank+" a owl:Restriction ;\n\towl:onProperty wdt:P31 ;\n\towl:someValuesFrom owl:Thing .\n")
}

func TestNormalizedPredicatesDeclared(t *testing.T) {
	ent := sampleEntity()
	ent.Statements = append(ent.Statements, entity.Statement{
		ID:       "Q42$C",
		Property: "P1082",
		Value: entity.Value{Kind: entity.ValueQuantity, Quantity: &entity.QuantityValue{
			Amount: "+7825200", Unit: "1",
		}},
		Rank: entity.RankNormal,
	})

	s := newSerializer(t, nil)
	out := serialize(t, s, ent, nil)

	require.Contains(t, out, "wikibase:directClaimNormalized wdtn:P1082")
	require.Contains(t, out, "wikibase:statementValueNormalized psn:P1082")
	require.Contains(t, out, "a wikibase:QuantityValue")
	require.Contains(t, out, `wikibase:quantityAmount "+7825200"^^xsd:decimal`)
	require.Contains(t, out, `wd:Q42 wdt:P1082 "+7825200"^^xsd:decimal .`)
}

func TestSerializeDeterminism(t *testing.T) {
	meta := staticMeta{"Q5": {Labels: map[string]string{"en": "human"}}}
	s := newSerializer(t, meta)

	first := serialize(t, s, sampleEntity(), []string{"Q4242"})
	second := serialize(t, s, sampleEntity(), []string{"Q4242"})
	require.Equal(t, first, second)
}
