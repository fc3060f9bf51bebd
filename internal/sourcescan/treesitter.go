// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sourcescan supplies concrete implementations of the two
// collaborators commentcode treats as external: a trivia extractor that
// walks a parsed Go source file for comments, and an issue sink that
// records emitted issues. Neither is part of the classification
// contract; they exist so the command-line tool has something to run
// against.
package sourcescan

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/AleutianAI/commentcode/internal/commentcode"
)

// ErrInvalidContent indicates the source file is not valid UTF-8.
var ErrInvalidContent = errors.New("sourcescan: content is not valid UTF-8")

// SyntaxToken bundles one token-sized chunk of trivia, matching the host
// contract's shape: a stream of syntax tokens, each with its own ordered
// trivia.
type SyntaxToken struct {
	Trivia []commentcode.Trivium
}

// ExtractTrivia parses a Go source file with tree-sitter and returns its
// comment trivia as a single synthetic syntax token, in source order.
// The grouper only consults consecutive line numbers and block
// boundaries, so bucketing every comment under one token (rather than
// attaching each to its true "next" token) does not change batching.
func ExtractTrivia(ctx context.Context, content []byte) (SyntaxToken, error) {
	if !utf8.Valid(content) {
		return SyntaxToken{}, ErrInvalidContent
	}

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return SyntaxToken{}, fmt.Errorf("sourcescan: tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return SyntaxToken{}, nil
	}

	var trivia []commentcode.Trivium
	walkComments(root, content, &trivia)
	return SyntaxToken{Trivia: trivia}, nil
}

// walkComments recursively visits every node, collecting "comment" leaves
// in source order. Tree-sitter's Go grammar attaches comments as direct
// children of whichever block contains them, so a full-tree walk (not
// just a top-level scan) is required to find comments nested inside
// function bodies.
func walkComments(node *sitter.Node, content []byte, out *[]commentcode.Trivium) {
	if node == nil {
		return
	}
	if node.Type() == "comment" {
		text := string(content[node.StartByte():node.EndByte()])
		kind := commentcode.TriviumLine
		isBlock := len(text) >= 2 && text[0] == '/' && text[1] == '*'
		if isBlock {
			kind = commentcode.TriviumBlock
		}
		start := node.StartPoint()
		end := node.EndPoint()
		*out = append(*out, commentcode.Trivium{
			Kind: kind,
			Start: commentcode.Position{
				Line:   int(start.Row) + 1,
				Column: int(start.Column) + 1,
			},
			End: commentcode.Position{
				Line:   int(end.Row) + 1,
				Column: int(end.Column) + 1,
			},
			Text: text,
		})
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkComments(node.Child(i), content, out)
	}
}
