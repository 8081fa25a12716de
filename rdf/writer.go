// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package rdf

import (
	"fmt"
	"strings"
)

// writer accumulates Turtle text. All emission goes through it so the output
// is assembled in a single deterministic pass.
type writer struct {
	buf strings.Builder
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

// triple writes a single-line triple statement.
func (w *writer) triple(subject, predicate, object string) {
	w.buf.WriteString(subject)
	w.buf.WriteByte(' ')
	w.buf.WriteString(predicate)
	w.buf.WriteByte(' ')
	w.buf.WriteString(object)
	w.buf.WriteString(" .\n")
}

// block writes a multi-line predicate-object block for one subject:
//
//	subject pred1 obj1 ;
//		pred2 obj2 .
//
// pairs holds alternating predicate/object strings.
func (w *writer) block(subject string, pairs ...string) {
	w.buf.WriteString(subject)
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			w.buf.WriteString(" ;\n\t")
		} else {
			w.buf.WriteByte(' ')
		}
		w.buf.WriteString(pairs[i])
		w.buf.WriteByte(' ')
		w.buf.WriteString(pairs[i+1])
	}
	w.buf.WriteString(" .\n")
}

func (w *writer) blank() {
	w.buf.WriteByte('\n')
}

func (w *writer) String() string {
	return w.buf.String()
}
