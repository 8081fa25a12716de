// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package rdf

// Dedupe namespaces keep value-node and reference-node hashes from colliding
// in the shared bag.
const (
	NamespaceValue     = "V"
	NamespaceReference = "R"
)

const dedupeCutoff = 5

// HashDedupeBag tracks which node hashes have already been emitted during a
// single serialisation. It is lossy on purpose: only the first dedupeCutoff
// characters of a hash form the bucket key, and a full-hash comparison inside
// the bucket decides whether the node was seen. Collisions beyond the bucket
// re-emit a node, which is harmless in Turtle; the bag only has to never
// claim "seen" for a hash that was not.
type HashDedupeBag struct {
	buckets map[string][]string
	hits    int
	misses  int
}

// NewHashDedupeBag constructs an empty bag.
func NewHashDedupeBag() *HashDedupeBag {
	return &HashDedupeBag{buckets: map[string][]string{}}
}

// AlreadySeen reports whether hash was seen before in namespace, recording it
// if not. The first call for a given hash returns false, later calls true.
func (bag *HashDedupeBag) AlreadySeen(hash, namespace string) bool {
	short := hash
	if len(short) > dedupeCutoff {
		short = short[:dedupeCutoff]
	}
	key := namespace + short

	for _, full := range bag.buckets[key] {
		if full == hash {
			bag.hits++
			return true
		}
	}
	bag.buckets[key] = append(bag.buckets[key], hash)
	bag.misses++
	return false
}

// BagStats summarises bag activity for monitoring.
type BagStats struct {
	Hits   int
	Misses int
	Size   int
}

// Stats returns hit/miss counters and the number of buckets.
func (bag *HashDedupeBag) Stats() BagStats {
	return BagStats{Hits: bag.hits, Misses: bag.misses, Size: len(bag.buckets)}
}
