package service

import (
	"encoding/json"
	"quizhub_backend/internal/config"
	"testing"
)

func TestNarrowHashIsDeterministicAndNormalized(t *testing.T) {
	h := NewContentHasher(config.HashPolicyNarrow)

	a := h.Hash("What is 2+2?", "numerical_question", "m1", json.RawMessage(`["4"]`), json.RawMessage(`"4"`))
	b := h.Hash("  what is 2+2?  ", "multiple_choice", "m2", json.RawMessage(`["5"]`), json.RawMessage(`"5"`))

	if a != b {
		t.Fatalf("narrow policy must hash question text only, got %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected sha256 hex digest of length 64, got %d", len(a))
	}
}

func TestNarrowHashDiffersForDifferentText(t *testing.T) {
	h := NewContentHasher(config.HashPolicyNarrow)

	a := h.Hash("What is 2+2?", "", "", nil, nil)
	b := h.Hash("What is 3+3?", "", "", nil, nil)
	if a == b {
		t.Fatalf("different question text must not collide")
	}
}

func TestWideHashStableAcrossCalls(t *testing.T) {
	h := NewContentHasher(config.HashPolicyWide)

	answers := json.RawMessage(`["Paris", "London", "Berlin"]`)
	correct := json.RawMessage(`["Paris"]`)

	a := h.Hash("Capital of France?", "multiple_choice", "m1", answers, correct)
	b := h.Hash("Capital of France?", "multiple_choice", "m1", answers, correct)
	if a != b {
		t.Fatalf("hash must be stable for identical input, got %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("expected md5 hex digest of length 32, got %d", len(a))
	}
}

func TestWideHashIgnoresAnswerOrderAndCase(t *testing.T) {
	h := NewContentHasher(config.HashPolicyWide)

	a := h.Hash("Capital of France?", "multiple_choice", "m1",
		json.RawMessage(`["Paris", "London"]`), json.RawMessage(`["PARIS"]`))
	b := h.Hash("  CAPITAL OF FRANCE?", "Multiple_Choice", "m1",
		json.RawMessage(`["london", " paris "]`), json.RawMessage(`["paris"]`))

	if a != b {
		t.Fatalf("answer order and casing must not affect the wide hash")
	}
}

func TestWideHashDistinguishesAnswersAndModule(t *testing.T) {
	h := NewContentHasher(config.HashPolicyWide)

	base := h.Hash("Capital of France?", "multiple_choice", "m1",
		json.RawMessage(`["Paris"]`), json.RawMessage(`["Paris"]`))

	otherAnswers := h.Hash("Capital of France?", "multiple_choice", "m1",
		json.RawMessage(`["Lyon"]`), json.RawMessage(`["Lyon"]`))
	if base == otherAnswers {
		t.Fatalf("wide policy must distinguish different answers")
	}

	otherModule := h.Hash("Capital of France?", "multiple_choice", "m2",
		json.RawMessage(`["Paris"]`), json.RawMessage(`["Paris"]`))
	if base == otherModule {
		t.Fatalf("wide policy must distinguish target modules")
	}
}

func TestWideHashNonArrayPayloads(t *testing.T) {
	h := NewContentHasher(config.HashPolicyWide)

	a := h.Hash("2+2?", "numerical_question", "m1", json.RawMessage(`[]`), json.RawMessage(`"4"`))
	b := h.Hash("2+2?", "numerical_question", "m1", json.RawMessage(`[]`), json.RawMessage(`"4"`))
	if a != b {
		t.Fatalf("scalar correct-answer payload must hash deterministically")
	}

	c := h.Hash("2+2?", "numerical_question", "m1", json.RawMessage(`[]`), json.RawMessage(`"5"`))
	if a == c {
		t.Fatalf("different scalar payloads must not collide")
	}
}

func TestWideHashNumericAnswersStringified(t *testing.T) {
	h := NewContentHasher(config.HashPolicyWide)

	a := h.Hash("pick", "multiple_choice", "m1", json.RawMessage(`[1, 2]`), json.RawMessage(`[1]`))
	b := h.Hash("pick", "multiple_choice", "m1", json.RawMessage(`["2", "1"]`), json.RawMessage(`["1"]`))
	if a != b {
		t.Fatalf("numeric and string answer elements must normalize identically")
	}
}

func TestDefaultPolicyIsWide(t *testing.T) {
	h := NewContentHasher("")
	if h.Policy() != config.HashPolicyWide {
		t.Fatalf("expected default policy %q, got %q", config.HashPolicyWide, h.Policy())
	}
}
