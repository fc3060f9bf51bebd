// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sourcescan

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/AleutianAI/commentcode/internal/commentcode"
)

// ReportedIssue pairs an emitted issue with a generated identifier, giving
// the concrete sink something stable to key output rows on.
type ReportedIssue struct {
	ID string
	commentcode.Issue
}

// MemorySink is an in-process, slice-backed commentcode.IssueSink. Safe
// for concurrent use so the CLI's directory-walk fan-out can share one
// sink across file workers.
type MemorySink struct {
	mu     sync.Mutex
	issues []ReportedIssue
}

// NewMemorySink builds an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Report implements commentcode.IssueSink.
func (s *MemorySink) Report(issue commentcode.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = append(s.issues, ReportedIssue{ID: uuid.NewString(), Issue: issue})
	return nil
}

// Issues returns a snapshot of every issue reported so far.
func (s *MemorySink) Issues() []ReportedIssue {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ReportedIssue, len(s.issues))
	copy(out, s.issues)
	return out
}

// FormatText renders an issue the way static-analysis CLIs conventionally
// print one: "file:line:col: message".
func FormatText(r ReportedIssue) string {
	return fmt.Sprintf("%s:%d:%d: %s",
		r.File, r.Span.StartLine, r.Span.StartColumn, r.Message)
}

// MemoryJournal is an in-process, slice-backed commentcode.CommentJournal.
type MemoryJournal struct {
	mu      sync.Mutex
	entries []commentcode.JournalEntry
}

// NewMemoryJournal builds an empty journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// Record implements commentcode.CommentJournal.
func (j *MemoryJournal) Record(entry commentcode.JournalEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

// Entries returns a snapshot of every journaled batch.
func (j *MemoryJournal) Entries() []commentcode.JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]commentcode.JournalEntry, len(j.entries))
	copy(out, j.entries)
	return out
}
