// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package rdf

import (
	"fmt"
	"strings"
)

// statementLocal derives the local name of a wds: statement node. Statement
// identifiers use "$" between the entity id and the per-statement uuid, which
// is not a legal prefixed-name character in Turtle; it becomes "-".
//
// Statements without an identifier get a deterministic fallback derived from
// the owning entity and the statement's position.
func statementLocal(entityID, statementID string, position int) string {
	if statementID == "" {
		return fmt.Sprintf("%s-stmt-%d", entityID, position)
	}
	return strings.ReplaceAll(statementID, "$", "-")
}
