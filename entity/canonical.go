// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package entity

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/zeebo/xxh3"
)

// DecodeDocument decodes an entity document, keeping numeric literals as
// json.Number so canonicalisation and serialisation round-trip them exactly.
func DecodeDocument(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, Error.New("decode document: %w", err)
	}
	// Trailing garbage after the document is a malformed request, not an
	// extra document.
	if err := dec.Decode(new(json.RawMessage)); err != io.EOF {
		return nil, Error.New("trailing data after document")
	}
	return doc, nil
}

// DecodeDocumentBytes is DecodeDocument over a byte slice.
func DecodeDocumentBytes(body []byte) (map[string]any, error) {
	return DecodeDocument(bytes.NewReader(body))
}

// Canonical renders the document as canonical JSON: object keys sorted,
// no insignificant whitespace, numeric literals preserved verbatim.
// encoding/json sorts map keys and emits json.Number as written, so a
// decode-then-marshal round trip is the canonical form.
func Canonical(doc map[string]any) ([]byte, error) {
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, Error.New("canonicalize: %w", err)
	}
	return out, nil
}

// ContentHash returns the 64-bit content hash of the document's canonical
// form. Two documents hash equal iff their canonical forms are identical.
func ContentHash(doc map[string]any) (uint64, error) {
	canonical, err := Canonical(doc)
	if err != nil {
		return 0, err
	}
	return xxh3.Hash(canonical), nil
}
