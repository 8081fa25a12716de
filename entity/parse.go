// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package entity

import (
	"encoding/json"
	"fmt"
	"sort"
)

// snakDatatypes maps Wikibase snak datatypes to value kinds.
var snakDatatypes = map[string]ValueKind{
	"wikibase-item":     ValueEntity,
	"wikibase-property": ValueEntity,
	"wikibase-lexeme":   ValueEntity,
	"wikibase-form":     ValueEntity,
	"wikibase-sense":    ValueEntity,
	"string":            ValueString,
	"external-id":       ValueExternalID,
	"commonsMedia":      ValueCommonsMedia,
	"geo-shape":         ValueGeoShape,
	"tabular-data":      ValueTabularData,
	"musical-notation":  ValueMusicalNotation,
	"math":              ValueMath,
	"url":               ValueURL,
	"time":              ValueTime,
	"quantity":          ValueQuantity,
	"globe-coordinate":  ValueGlobe,
	"monolingualtext":   ValueMonolingual,
}

// datavalueTypes maps datavalue.type discriminators to value kinds, used when
// the snak carries no datatype.
var datavalueTypes = map[string]ValueKind{
	"wikibase-entityid": ValueEntity,
	"string":            ValueString,
	"time":              ValueTime,
	"quantity":          ValueQuantity,
	"globecoordinate":   ValueGlobe,
	"monolingualtext":   ValueMonolingual,
}

// ParseDocument converts a decoded entity document into the internal model.
// The document must come from a UseNumber decoder so numeric literals keep
// their source text.
func ParseDocument(doc map[string]any) (*Entity, error) {
	ent := &Entity{
		Labels:       map[string]string{},
		Descriptions: map[string]string{},
		Aliases:      map[string][]string{},
		Sitelinks:    map[string]Sitelink{},
	}

	ent.ID = str(doc["id"])
	if ent.ID == "" {
		return nil, Error.New("document missing id")
	}
	switch str(doc["type"]) {
	case "item", "":
		ent.Type = KindItem
	case "property":
		ent.Type = KindProperty
	default:
		return nil, Error.New("unknown entity type %q", doc["type"])
	}

	var err error
	if ent.Labels, err = parseTermMap(doc["labels"]); err != nil {
		return nil, Error.New("labels: %w", err)
	}
	if ent.Descriptions, err = parseTermMap(doc["descriptions"]); err != nil {
		return nil, Error.New("descriptions: %w", err)
	}
	if ent.Aliases, err = parseAliasMap(doc["aliases"]); err != nil {
		return nil, Error.New("aliases: %w", err)
	}
	if ent.Sitelinks, err = parseSitelinks(doc["sitelinks"]); err != nil {
		return nil, Error.New("sitelinks: %w", err)
	}
	if ent.Statements, err = parseClaims(doc["claims"]); err != nil {
		return nil, err
	}
	return ent, nil
}

// parseClaims flattens the claims object into statements ordered by property
// id, preserving input order within a property.
func parseClaims(raw any) ([]Statement, error) {
	claims, ok := raw.(map[string]any)
	if !ok {
		if raw == nil {
			return nil, nil
		}
		return nil, Error.New("claims is not an object")
	}

	pids := make([]string, 0, len(claims))
	for pid := range claims {
		pids = append(pids, pid)
	}
	sort.Strings(pids)

	var out []Statement
	for _, pid := range pids {
		group, ok := claims[pid].([]any)
		if !ok {
			return nil, Error.New("claims[%s] is not an array", pid)
		}
		for _, item := range group {
			stmt, err := parseStatement(pid, item)
			if err != nil {
				return nil, Error.New("claims[%s]: %w", pid, err)
			}
			out = append(out, stmt)
		}
	}
	return out, nil
}

func parseStatement(pid string, raw any) (Statement, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Statement{}, Error.New("statement is not an object")
	}

	stmt := Statement{
		ID:       str(obj["id"]),
		Property: pid,
		Rank:     RankNormal,
	}
	switch rank := str(obj["rank"]); rank {
	case "", "normal":
	case "preferred":
		stmt.Rank = RankPreferred
	case "deprecated":
		stmt.Rank = RankDeprecated
	default:
		return Statement{}, Error.New("unknown rank %q", rank)
	}

	mainsnak, ok := obj["mainsnak"].(map[string]any)
	if !ok {
		return Statement{}, Error.New("statement missing mainsnak")
	}
	value, err := parseSnakValue(mainsnak)
	if err != nil {
		return Statement{}, err
	}
	stmt.Value = value

	if stmt.Qualifiers, err = parseSnakMap(obj["qualifiers"]); err != nil {
		return Statement{}, Error.New("qualifiers: %w", err)
	}

	if rawRefs, ok := obj["references"].([]any); ok {
		for _, rawRef := range rawRefs {
			refObj, ok := rawRef.(map[string]any)
			if !ok {
				return Statement{}, Error.New("reference is not an object")
			}
			snaks, err := parseSnakMap(refObj["snaks"])
			if err != nil {
				return Statement{}, Error.New("reference snaks: %w", err)
			}
			stmt.References = append(stmt.References, Reference{
				Hash:  str(refObj["hash"]),
				Snaks: snaks,
			})
		}
	}
	return stmt, nil
}

// parseSnakMap flattens a {pid: [snak, ...]} object into snaks ordered by
// property id.
func parseSnakMap(raw any) ([]Snak, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		if raw == nil {
			return nil, nil
		}
		return nil, Error.New("snak map is not an object")
	}

	pids := make([]string, 0, len(obj))
	for pid := range obj {
		pids = append(pids, pid)
	}
	sort.Strings(pids)

	var out []Snak
	for _, pid := range pids {
		group, ok := obj[pid].([]any)
		if !ok {
			return nil, Error.New("%s is not an array", pid)
		}
		for _, item := range group {
			snakObj, ok := item.(map[string]any)
			if !ok {
				return nil, Error.New("%s snak is not an object", pid)
			}
			value, err := parseSnakValue(snakObj)
			if err != nil {
				return nil, Error.New("%s: %w", pid, err)
			}
			out = append(out, Snak{Property: pid, Value: value})
		}
	}
	return out, nil
}

func parseSnakValue(snak map[string]any) (Value, error) {
	switch snaktype := str(snak["snaktype"]); snaktype {
	case "novalue":
		return Value{Kind: ValueNoValue}, nil
	case "somevalue":
		return Value{Kind: ValueSomeValue}, nil
	case "value", "":
	default:
		return Value{}, Error.New("unknown snaktype %q", snaktype)
	}

	datavalue, ok := snak["datavalue"].(map[string]any)
	if !ok {
		return Value{}, Error.New("value snak missing datavalue")
	}

	kind, ok := snakDatatypes[str(snak["datatype"])]
	if !ok {
		kind, ok = datavalueTypes[str(datavalue["type"])]
		if !ok {
			return Value{}, Error.New("unknown datatype %q / datavalue type %q",
				snak["datatype"], datavalue["type"])
		}
	}

	value, err := parseDatavalue(kind, datavalue["value"])
	if err != nil {
		return Value{}, err
	}
	if err := value.Validate(); err != nil {
		return Value{}, err
	}
	return value, nil
}

func parseDatavalue(kind ValueKind, raw any) (Value, error) {
	switch kind {
	case ValueEntity:
		obj, ok := raw.(map[string]any)
		if !ok {
			return Value{}, Error.New("entity datavalue is not an object")
		}
		id := str(obj["id"])
		if id == "" {
			// Older documents carry numeric-id + entity-type instead.
			prefix := map[string]string{"item": "Q", "property": "P"}[str(obj["entity-type"])]
			if prefix == "" || str(obj["numeric-id"]) == "" {
				return Value{}, Error.New("entity datavalue missing id")
			}
			id = prefix + str(obj["numeric-id"])
		}
		return Value{Kind: ValueEntity, Content: id}, nil

	case ValueTime:
		obj, ok := raw.(map[string]any)
		if !ok {
			return Value{}, Error.New("time datavalue is not an object")
		}
		tv := &TimeValue{
			Value:         str(obj["time"]),
			CalendarModel: str(obj["calendarmodel"]),
		}
		var err error
		if tv.Timezone, err = intField(obj, "timezone"); err != nil {
			return Value{}, err
		}
		if tv.Before, err = intField(obj, "before"); err != nil {
			return Value{}, err
		}
		if tv.After, err = intField(obj, "after"); err != nil {
			return Value{}, err
		}
		if tv.Precision, err = intField(obj, "precision"); err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueTime, Time: tv}, nil

	case ValueQuantity:
		obj, ok := raw.(map[string]any)
		if !ok {
			return Value{}, Error.New("quantity datavalue is not an object")
		}
		return Value{Kind: ValueQuantity, Quantity: &QuantityValue{
			Amount:     str(obj["amount"]),
			Unit:       str(obj["unit"]),
			UpperBound: str(obj["upperBound"]),
			LowerBound: str(obj["lowerBound"]),
		}}, nil

	case ValueGlobe:
		obj, ok := raw.(map[string]any)
		if !ok {
			return Value{}, Error.New("globe datavalue is not an object")
		}
		return Value{Kind: ValueGlobe, Globe: &GlobeValue{
			Latitude:  str(obj["latitude"]),
			Longitude: str(obj["longitude"]),
			Precision: str(obj["precision"]),
			Globe:     str(obj["globe"]),
		}}, nil

	case ValueMonolingual:
		obj, ok := raw.(map[string]any)
		if !ok {
			return Value{}, Error.New("monolingual datavalue is not an object")
		}
		return Value{Kind: ValueMonolingual, Monolingual: &MonolingualValue{
			Text:     str(obj["text"]),
			Language: str(obj["language"]),
		}}, nil

	default:
		content, ok := raw.(string)
		if !ok {
			return Value{}, Error.New("%s datavalue is not a string", kind)
		}
		return Value{Kind: kind, Content: content}, nil
	}
}

// parseTermMap accepts both the full form {"en": {"language": "en", "value":
// "x"}} and the shorthand {"en": "x"}.
func parseTermMap(raw any) (map[string]string, error) {
	out := map[string]string{}
	obj, ok := raw.(map[string]any)
	if !ok {
		if raw == nil {
			return out, nil
		}
		return nil, Error.New("term map is not an object")
	}
	for lang, term := range obj {
		switch term := term.(type) {
		case string:
			out[lang] = term
		case map[string]any:
			out[lang] = str(term["value"])
		default:
			return nil, Error.New("term %s has unexpected shape", lang)
		}
	}
	return out, nil
}

func parseAliasMap(raw any) (map[string][]string, error) {
	out := map[string][]string{}
	obj, ok := raw.(map[string]any)
	if !ok {
		if raw == nil {
			return out, nil
		}
		return nil, Error.New("alias map is not an object")
	}
	for lang, group := range obj {
		items, ok := group.([]any)
		if !ok {
			return nil, Error.New("aliases[%s] is not an array", lang)
		}
		for _, item := range items {
			switch item := item.(type) {
			case string:
				out[lang] = append(out[lang], item)
			case map[string]any:
				out[lang] = append(out[lang], str(item["value"]))
			default:
				return nil, Error.New("aliases[%s] has unexpected shape", lang)
			}
		}
	}
	return out, nil
}

func parseSitelinks(raw any) (map[string]Sitelink, error) {
	out := map[string]Sitelink{}
	obj, ok := raw.(map[string]any)
	if !ok {
		if raw == nil {
			return out, nil
		}
		return nil, Error.New("sitelinks is not an object")
	}
	for site, rawLink := range obj {
		link, ok := rawLink.(map[string]any)
		if !ok {
			return nil, Error.New("sitelinks[%s] is not an object", site)
		}
		sl := Sitelink{
			Site:  site,
			Title: str(link["title"]),
			URL:   str(link["url"]),
		}
		if badges, ok := link["badges"].([]any); ok {
			for _, badge := range badges {
				sl.Badges = append(sl.Badges, str(badge))
			}
		}
		out[site] = sl
	}
	return out, nil
}

// str renders scalar JSON values as their source text. json.Number keeps the
// literal exactly as written, which the RDF layer depends on.
func str(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}

func intField(obj map[string]any, key string) (int, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, nil
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, Error.New("%s is not a number", key)
	}
	n, err := num.Int64()
	if err != nil {
		return 0, Error.New("%s: %w", key, err)
	}
	return int(n), nil
}
