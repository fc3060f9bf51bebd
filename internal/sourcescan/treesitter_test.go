// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sourcescan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/commentcode/internal/commentcode"
)

const testGoWithComments = `package example

// Add adds two integers.
func Add(a, b int) int {
	// x := 1
	// y := 2
	return a + b
}

/* legacy implementation
func Add(a, b int) int {
	return a - b
}
*/
`

// TestExtractTrivia_CollectsLineAndBlockComments verifies every "//" and
// "/* */" node in the tree is returned as a trivium, in source order.
func TestExtractTrivia_CollectsLineAndBlockComments(t *testing.T) {
	token, err := ExtractTrivia(context.Background(), []byte(testGoWithComments))
	require.NoError(t, err)
	require.Len(t, token.Trivia, 4)

	assert.Equal(t, commentcode.TriviumLine, token.Trivia[0].Kind)
	assert.Equal(t, "// Add adds two integers.", token.Trivia[0].Text)
	assert.Equal(t, commentcode.TriviumLine, token.Trivia[1].Kind)
	assert.Equal(t, commentcode.TriviumLine, token.Trivia[2].Kind)
	assert.Equal(t, commentcode.TriviumBlock, token.Trivia[3].Kind)
}

// TestExtractTrivia_PositionsAreOneBased verifies line/column ranges are
// derived from tree-sitter's 0-based Row/Column by adding one.
func TestExtractTrivia_PositionsAreOneBased(t *testing.T) {
	token, err := ExtractTrivia(context.Background(), []byte("package example\n\n// hello\n"))
	require.NoError(t, err)
	require.Len(t, token.Trivia, 1)
	assert.Equal(t, 3, token.Trivia[0].Start.Line)
	assert.Equal(t, 1, token.Trivia[0].Start.Column)
}

// TestExtractTrivia_NoCommentsYieldsEmptyTrivia verifies a file with no
// comments returns a token with no trivia, not an error.
func TestExtractTrivia_NoCommentsYieldsEmptyTrivia(t *testing.T) {
	token, err := ExtractTrivia(context.Background(), []byte("package example\n\nfunc f() {}\n"))
	require.NoError(t, err)
	assert.Empty(t, token.Trivia)
}

// TestExtractTrivia_RejectsInvalidUTF8 verifies malformed byte sequences
// surface ErrInvalidContent rather than reaching the parser.
func TestExtractTrivia_RejectsInvalidUTF8(t *testing.T) {
	_, err := ExtractTrivia(context.Background(), []byte{0xff, 0xfe, 0x00})
	assert.ErrorIs(t, err, ErrInvalidContent)
}
