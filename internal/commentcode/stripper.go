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

import (
	"fmt"
	"strings"
)

// javadocHeaders are the four recognized Javadoc openers. StripSigns drops
// the first four characters of a matching batch, so the "\n" of a
// "/**\r\n" opener stays in the stripped text. Grouped batches never contain Javadoc (the grouper drops it), but a
// caller stripping a single trivium directly may still encounter one.
var javadocHeaders = []string{"/** ", "/**\t", "/**\n", "/**\r\n"}

// StripSigns removes the comment delimiter syntax from a batch's raw text,
// according to its kind. It returns ErrUnrecognizedCommentPrefix if the
// text does not begin with a recognized comment opener.
func StripSigns(kind BatchKind, raw string) (string, error) {
	switch kind {
	case BatchBlockJavadoc:
		for _, h := range javadocHeaders {
			if strings.HasPrefix(raw, h) {
				body := raw[4:]
				body = strings.TrimSuffix(body, "*/")
				return body, nil
			}
		}
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedCommentPrefix, firstFour(raw))
	case BatchLineGroup:
		if !strings.HasPrefix(raw, "//") {
			return "", fmt.Errorf("%w: %q", ErrUnrecognizedCommentPrefix, firstFour(raw))
		}
		body := raw[2:]
		body = strings.ReplaceAll(body, "\n//", "\n")
		return body, nil
	case BatchBlockNonJavadoc:
		if !strings.HasPrefix(raw, "/*") {
			return "", fmt.Errorf("%w: %q", ErrUnrecognizedCommentPrefix, firstFour(raw))
		}
		body := strings.TrimPrefix(raw, "/*")
		body = strings.TrimSuffix(body, "*/")
		return body, nil
	default:
		return "", fmt.Errorf("%w: unknown batch kind", ErrUnrecognizedCommentPrefix)
	}
}

func firstFour(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[:4]
}
