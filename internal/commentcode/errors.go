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

import "errors"

// Sentinel errors for the commentcode package. All three are fatal: callers
// should stop the run rather than attempt to continue past them.
var (
	// ErrResourceLoadFailure indicates one of the three bundled data files
	// (merges.txt, vocab.json, model.json) is unreadable or structurally
	// invalid.
	ErrResourceLoadFailure = errors.New("commentcode: resource load failure")

	// ErrUnrecognizedCommentPrefix indicates the sign stripper could not
	// identify a batch's comment kind from its leading characters.
	ErrUnrecognizedCommentPrefix = errors.New("commentcode: unrecognized comment prefix")

	// ErrShapeMismatch indicates the feature vector and the model's
	// coefficient vector have different lengths.
	ErrShapeMismatch = errors.New("commentcode: feature/coefficient shape mismatch")
)
