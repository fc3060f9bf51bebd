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
	"math"
)

// ModelParams is the JSON shape of model.json.
type ModelParams struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Model is a logistic-regression binary classifier.
type Model struct {
	intercept    float64
	coefficients []float64
	threshold    float64
}

// NewModel builds a Model from parsed parameters and a decision threshold.
func NewModel(params ModelParams, threshold float64) *Model {
	return &Model{
		intercept:    params.Intercept,
		coefficients: params.Coefficients,
		threshold:    threshold,
	}
}

// Prediction is the result of scoring one feature vector.
type Prediction struct {
	Linear   float64
	Sigmoid  float64
	Decision bool
}

// Predict scores a feature vector. It returns ErrShapeMismatch if the
// feature vector and the coefficient vector have different lengths; the
// reference implementation silently truncates to the shorter of the two,
// which this implementation deliberately does not reproduce (see §9 of
// the design notes).
func (m *Model) Predict(features []float64) (Prediction, error) {
	if len(features) != len(m.coefficients) {
		return Prediction{}, fmt.Errorf("%w: %d features, %d coefficients",
			ErrShapeMismatch, len(features), len(m.coefficients))
	}

	linear := m.intercept
	for i, f := range features {
		linear += f * m.coefficients[i]
	}
	sigmoid := 1.0 / (1.0 + math.Exp(-linear))
	return Prediction{
		Linear:   linear,
		Sigmoid:  sigmoid,
		Decision: sigmoid > m.threshold,
	}, nil
}
