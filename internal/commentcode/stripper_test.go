// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package commentcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStripSigns_LineGroup verifies "//" is stripped from every joined
// line, including continuation lines.
func TestStripSigns_LineGroup(t *testing.T) {
	out, err := StripSigns(BatchLineGroup, "// foo\n// bar")
	require.NoError(t, err)
	assert.Equal(t, " foo\n bar", out)
}

// TestStripSigns_BlockNonJavadoc verifies "/*" and "*/" are trimmed.
func TestStripSigns_BlockNonJavadoc(t *testing.T) {
	out, err := StripSigns(BatchBlockNonJavadoc, "/* foo */")
	require.NoError(t, err)
	assert.Equal(t, " foo ", out)
}

// TestStripSigns_BlockJavadoc verifies each recognized Javadoc header is
// stripped along with the closing "*/".
func TestStripSigns_BlockJavadoc(t *testing.T) {
	out, err := StripSigns(BatchBlockJavadoc, "/** foo */")
	require.NoError(t, err)
	assert.Equal(t, "foo ", out)
}

// TestStripSigns_UnrecognizedPrefix verifies a mismatched opener surfaces
// ErrUnrecognizedCommentPrefix.
func TestStripSigns_UnrecognizedPrefix(t *testing.T) {
	_, err := StripSigns(BatchLineGroup, "# foo")
	assert.ErrorIs(t, err, ErrUnrecognizedCommentPrefix)
}
