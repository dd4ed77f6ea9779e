// Package nlu defines the boundary to the NLU sidecar that classifies
// utterances and extracts entity spans.
package nlu

import (
	"context"
	"strings"
)

// EntityKind is the closed vocabulary of entity types the dialogue engine
// understands. The adapter maps model-specific label strings onto it so the
// engine never sees the underlying model's label set.
type EntityKind string

const (
	KindAccountNumber EntityKind = "ACCOUNT_NUMBER"
	KindPerson        EntityKind = "PERSON"
	KindMoney         EntityKind = "MONEY"
	KindUnknown       EntityKind = "UNKNOWN"
)

// Entity is a typed span extracted from an utterance.
type Entity struct {
	Kind EntityKind
	Text string
}

// Result is the output of classifying one utterance. IntentScores may be
// empty when the model has no opinion; Entities preserves model order.
type Result struct {
	IntentScores map[string]float64
	Entities     []Entity
}

// TopIntent returns the highest-scoring intent and its confidence.
// ok is false when the score map is empty.
func (r Result) TopIntent() (intent string, confidence float64, ok bool) {
	for name, score := range r.IntentScores {
		if !ok || score > confidence || (score == confidence && name < intent) {
			intent, confidence, ok = name, score, true
		}
	}
	return intent, confidence, ok
}

// First returns the text of the first entity of the given kind, preserving
// model order. ok is false when no span of that kind was extracted.
func (r Result) First(kind EntityKind) (text string, ok bool) {
	for _, e := range r.Entities {
		if e.Kind == kind {
			return e.Text, true
		}
	}
	return "", false
}

// Classifier is the black-box NLU contract the dialogue engine depends on.
type Classifier interface {
	// Classify runs the model over one utterance, returning intent scores
	// and extracted entity spans.
	Classify(ctx context.Context, utterance string) (Result, error)
}

// KindFromLabel maps a model label string onto the engine's entity-kind
// vocabulary. Unrecognized labels map to KindUnknown and are ignored.
func KindFromLabel(label string) EntityKind {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "ACCOUNT_NUMBER":
		return KindAccountNumber
	case "PERSON", "PER":
		return KindPerson
	case "MONEY":
		return KindMoney
	}
	return KindUnknown
}
