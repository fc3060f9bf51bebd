// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package commentcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestByteToUnicode_PrintableBytesMapToThemselves verifies every byte in
// the three printable ranges is its own image.
func TestByteToUnicode_PrintableBytesMapToThemselves(t *testing.T) {
	for _, r := range printableByteRanges {
		for b := r[0]; b <= r[1]; b++ {
			assert.Equal(t, rune(b), byteToUnicode[b])
		}
	}
}

// TestByteToUnicode_OverflowBytesAreDistinctAndAboveASCII verifies the 68
// non-printable bytes map to 68 distinct code points starting at 256.
func TestByteToUnicode_OverflowBytesAreDistinctAndAboveASCII(t *testing.T) {
	seen := make(map[rune]bool)
	count := 0
	for b := 0; b < 256; b++ {
		if isPrintableByte(b) {
			continue
		}
		count++
		r := byteToUnicode[b]
		assert.GreaterOrEqual(t, r, rune(256))
		assert.False(t, seen[r], "overflow code point %d reused", r)
		seen[r] = true
	}
	assert.Equal(t, 68, count)
	assert.Equal(t, 68, len(seen))
}

// TestEncodeLevel3_OneCharacterPerInputByte verifies level-3 encoding
// produces exactly one output rune per input byte.
func TestEncodeLevel3_OneCharacterPerInputByte(t *testing.T) {
	input := "a b"
	out := encodeLevel3(input)
	assert.Equal(t, len([]byte(input)), len([]rune(out)))
}

// TestSplitLevel2_DontGo reproduces the documented cursor-discipline
// example: "Don't go" splits into ["Don", "'t", " go"].
func TestSplitLevel2_DontGo(t *testing.T) {
	tokens, err := splitLevel2("Don't go")
	require.NoError(t, err)
	assert.Equal(t, []string{"Don", "'t", " go"}, tokens)
}

// TestSplitLevel2_IsLossless verifies the concatenation of the level-2
// tokens always reconstructs the original text, across inputs with
// contractions, numbers, punctuation runs and trailing whitespace.
func TestSplitLevel2_IsLossless(t *testing.T) {
	inputs := []string{
		"Don't go",
		"foo bar 123",
		"a;; b",
		"trailing space ",
		"",
		"no contractions here",
	}
	for _, in := range inputs {
		tokens, err := splitLevel2(in)
		require.NoError(t, err)
		assert.Equal(t, in, strings.Join(tokens, ""))
	}
}

// TestRoBERTaTokenizer_Tokenize_IsLossless verifies the full pipeline's
// output, once rejoined, reconstructs the original text: level-2 split and
// level-3 encoding are bijective, and BPE merge output concatenates back
// to its level-3 input (see TestBpeEncode_IsLossless).
func TestRoBERTaTokenizer_Tokenize_IsLossless(t *testing.T) {
	ranks, err := ParseBpeRanks(strings.NewReader("#v\nh e\ne l\nl o\n"))
	require.NoError(t, err)
	tok := NewRoBERTaTokenizer(NewBpeEncoder(ranks))

	text := "hello world"
	out, err := tok.Tokenize(text)
	require.NoError(t, err)

	var level3Rebuilt strings.Builder
	for _, piece := range out {
		level3Rebuilt.WriteString(piece)
	}

	var decoded strings.Builder
	for _, r := range level3Rebuilt.String() {
		for b := 0; b < 256; b++ {
			if byteToUnicode[b] == r {
				decoded.WriteByte(byte(b))
				break
			}
		}
	}
	assert.Equal(t, text, decoded.String())
}

// TestRoBERTaTokenizer_Listener verifies the per-level listener hook fires
// once per level, in the order 2, 3, 4.
func TestRoBERTaTokenizer_Listener(t *testing.T) {
	ranks, err := ParseBpeRanks(strings.NewReader("#v\n"))
	require.NoError(t, err)
	tok := NewRoBERTaTokenizer(NewBpeEncoder(ranks))

	var levelsSeen []int
	tok.Listener = func(level int, tokens []string) {
		levelsSeen = append(levelsSeen, level)
	}
	_, err = tok.Tokenize("hi")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, levelsSeen)
}
