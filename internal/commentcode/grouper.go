// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package commentcode

import "strings"

// GroupTrivia coalesces the trivia of one syntax token, in source order,
// into batches. Javadoc comments (raw text beginning with "/**") are
// dropped entirely. A run of line comments whose start lines are
// strictly consecutive is grouped into a single BatchLineGroup; a blank
// line ends the run. Block comments always stand alone and flush any
// pending line group first.
func GroupTrivia(trivia []Trivium) []CommentBatch {
	var batches []CommentBatch
	var buf []Trivium
	lastLine := -1

	flush := func() {
		if len(buf) > 0 {
			batches = append(batches, CommentBatch{Kind: BatchLineGroup, Trivia: buf})
			buf = nil
		}
	}

	for _, t := range trivia {
		if strings.HasPrefix(t.Text, "/**") {
			continue
		}
		switch t.Kind {
		case TriviumBlock:
			flush()
			batches = append(batches, CommentBatch{Kind: BatchBlockNonJavadoc, Trivia: []Trivium{t}})
			lastLine = t.End.Line
		case TriviumLine:
			if len(buf) == 0 || t.Start.Line <= lastLine+1 {
				buf = append(buf, t)
			} else {
				flush()
				buf = append(buf, t)
			}
			lastLine = t.End.Line
		}
	}
	flush()
	return batches
}
