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

	"github.com/dlclark/regexp2"
)

// level2Pattern is the RoBERTa/GPT-2 pre-tokenization alternation, compiled
// once and reused. Go's standard regexp (RE2) cannot express this: it has
// no lookaround, and its Unicode class support does not cover the general
// categories the way a backtracking engine's \p{L}/\p{N} does, so this
// component uses dlclark/regexp2 instead of the stdlib package.
const level2Pattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

var compiledLevel2 = regexp2.MustCompile(level2Pattern, regexp2.None)

// splitLevel2 performs the regex pre-tokenization step and reproduces the
// reference implementation's cursor discipline: the cursor is reset to
// each match's start (not its end), so text between successive match
// starts is what actually gets emitted as a token. This looks like an
// off-by-one but is intentional: verified against the worked "Don't go"
// example and covered by a round-trip property test rather than "fixed".
func splitLevel2(text string) ([]string, error) {
	// regexp2 matches over []rune internally; Match.Index/Length are rune
	// offsets, not byte offsets, so splitting must happen in rune space to
	// stay correct for non-ASCII comment text.
	runes := []rune(text)
	var tokens []string
	cursor := 0

	m, err := compiledLevel2.FindRunesMatch(runes)
	if err != nil {
		return nil, fmt.Errorf("commentcode: level-2 regex match: %w", err)
	}
	for m != nil {
		start := m.Index
		if start > cursor {
			tokens = append(tokens, string(runes[cursor:start]))
		}
		cursor = start
		m, err = compiledLevel2.FindNextMatch(m)
		if err != nil {
			return nil, fmt.Errorf("commentcode: level-2 regex match: %w", err)
		}
	}
	if cursor < len(runes) {
		tokens = append(tokens, string(runes[cursor:]))
	}
	return tokens, nil
}

// printableByteRanges are the byte ranges that map to themselves in the
// byte-to-unicode table.
var printableByteRanges = [][2]int{{0x21, 0x7E}, {0xA1, 0xAC}, {0xAE, 0xFF}}

func isPrintableByte(b int) bool {
	for _, r := range printableByteRanges {
		if b >= r[0] && b <= r[1] {
			return true
		}
	}
	return false
}

// byteToUnicode is built once at package init by scanning 0..255 in
// ascending order: printable bytes map to themselves, the remaining 68
// bytes map to successive code points starting at 256 in the order
// encountered.
var byteToUnicode [256]rune

func init() {
	overflow := rune(256)
	for b := 0; b < 256; b++ {
		if isPrintableByte(b) {
			byteToUnicode[b] = rune(b)
		} else {
			byteToUnicode[b] = overflow
			overflow++
		}
	}
}

// encodeLevel3 maps a level-2 token's UTF-8 bytes through the byte-to-
// unicode table, producing one output character per input byte.
func encodeLevel3(token string) string {
	data := []byte(token)
	out := make([]rune, len(data))
	for i, b := range data {
		out[i] = byteToUnicode[b]
	}
	return string(out)
}

// RoBERTaTokenizer orchestrates level-2 regex split, level-3 byte-to-
// unicode encoding, and level-4 BPE merging.
type RoBERTaTokenizer struct {
	encoder BpeEncoder

	// Level2Cache and Level3Cache, if set, wrap their respective levels.
	// Both default to pass-through.
	Level2Cache func(string) ([]string, error)
	Level3Cache func(string) string

	// Listener, if set, is invoked synchronously after each level
	// completes, before tokenize returns. Default is no-op.
	Listener func(level int, tokens []string)
}

// NewRoBERTaTokenizer builds a tokenizer over the given BPE encoder
// (typically a *CachingBpeEncoder for repeated use across one analysis
// run).
func NewRoBERTaTokenizer(encoder BpeEncoder) *RoBERTaTokenizer {
	return &RoBERTaTokenizer{encoder: encoder}
}

// Tokenize runs the full pipeline: level-2 split, level-3 encoding of each
// level-2 token, level-4 BPE of each level-3 token, flattened in order.
// Level 1 (added-token splitting) is not implemented; the whole input is
// treated as a single level-1 token.
func (t *RoBERTaTokenizer) Tokenize(text string) ([]string, error) {
	var level2 []string
	var err error
	if t.Level2Cache != nil {
		level2, err = t.Level2Cache(text)
	} else {
		level2, err = splitLevel2(text)
	}
	if err != nil {
		return nil, err
	}
	if t.Listener != nil {
		t.Listener(2, level2)
	}

	level3 := make([]string, len(level2))
	for i, tok := range level2 {
		if t.Level3Cache != nil {
			level3[i] = t.Level3Cache(tok)
		} else {
			level3[i] = encodeLevel3(tok)
		}
	}
	if t.Listener != nil {
		t.Listener(3, level3)
	}

	var out []string
	for _, tok := range level3 {
		out = append(out, t.encoder.Encode(tok)...)
	}
	if t.Listener != nil {
		t.Listener(4, out)
	}
	return out, nil
}
