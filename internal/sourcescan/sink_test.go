// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sourcescan

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/commentcode/internal/commentcode"
)

// TestMemorySink_ReportAndIssues verifies reported issues are returned in
// order, each with a generated ID.
func TestMemorySink_ReportAndIssues(t *testing.T) {
	sink := NewMemorySink()
	issue := commentcode.Issue{RuleKey: "S125", File: "a.go", Message: commentcode.IssueMessage}
	require.NoError(t, sink.Report(issue))

	issues := sink.Issues()
	require.Len(t, issues, 1)
	assert.NotEmpty(t, issues[0].ID)
	assert.Equal(t, issue, issues[0].Issue)
}

// TestMemorySink_ConcurrentReport verifies the sink is safe for
// concurrent use by multiple file workers.
func TestMemorySink_ConcurrentReport(t *testing.T) {
	sink := NewMemorySink()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sink.Report(commentcode.Issue{RuleKey: "S125"})
		}()
	}
	wg.Wait()
	assert.Len(t, sink.Issues(), 50)
}

// TestFormatText_RendersFileLineColMessage verifies the conventional
// "file:line:col: message" rendering.
func TestFormatText_RendersFileLineColMessage(t *testing.T) {
	r := ReportedIssue{Issue: commentcode.Issue{
		File:    "a.go",
		Span:    commentcode.TextSpan{StartLine: 3, StartColumn: 1},
		Message: commentcode.IssueMessage,
	}}
	assert.Equal(t, "a.go:3:1: "+commentcode.IssueMessage, FormatText(r))
}

// TestMemoryJournal_RecordAndEntries verifies journaled entries are
// returned as an independent snapshot.
func TestMemoryJournal_RecordAndEntries(t *testing.T) {
	journal := NewMemoryJournal()
	journal.Record(commentcode.JournalEntry{Decision: true, Sigmoid: 0.9})
	journal.Record(commentcode.JournalEntry{Decision: false, Sigmoid: 0.1})

	entries := journal.Entries()
	require.Len(t, entries, 2)
	entries[0].Sigmoid = -1
	assert.Equal(t, 0.9, journal.Entries()[0].Sigmoid)
}
