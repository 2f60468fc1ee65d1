package service

import (
	"encoding/json"
	"testing"
)

func TestGradeAnswer(t *testing.T) {
	cases := []struct {
		name     string
		kind     string
		correct  string
		response string
		want     bool
	}{
		{"choice exact", "multiple_choice", `["Paris"]`, `"Paris"`, true},
		{"choice case insensitive", "multiple_choice", `["Paris"]`, `"  paris "`, true},
		{"choice wrong", "multiple_choice", `["Paris"]`, `"London"`, false},
		{"numeric string vs number", "numerical_question", `"4"`, `4`, true},
		{"numeric within tolerance", "numerical_question", `0.3`, `0.30000001`, true},
		{"numeric outside tolerance", "numerical_question", `0.3`, `0.31`, false},
		{"numeric non-number response", "numerical_question", `"4"`, `"four"`, false},
		{"multi response order independent", "multiple_response", `["a","b","c"]`, `["c","a","b"]`, true},
		{"multi response missing element", "multiple_response", `["a","b","c"]`, `["a","b"]`, false},
		{"multi response extra element", "multiple_response", `["a","b"]`, `["a","b","c"]`, false},
		{"ordering exact sequence", "ordering_question", `["first","second","third"]`, `["first","second","third"]`, true},
		{"ordering wrong order", "ordering_question", `["first","second"]`, `["second","first"]`, false},
		{"fill in blank sequence", "fill_in_the_blank", `["red","blue"]`, `["RED"," blue"]`, true},
		{"matching all pairs", "matching_question", `{"fr":"Paris","de":"Berlin"}`, `{"de":"berlin","fr":"paris"}`, true},
		{"matching wrong value", "matching_question", `{"fr":"Paris"}`, `{"fr":"Lyon"}`, false},
		{"matching missing key", "matching_question", `{"fr":"Paris","de":"Berlin"}`, `{"fr":"Paris"}`, false},
		{"fallback scalar", "fallback", `"yes"`, `"YES"`, true},
		{"unknown kind deep equality", "essay_question", `{"text":"abc"}`, `{"text":"ABC"}`, true},
		{"unknown kind mismatch", "essay_question", `{"text":"abc"}`, `{"text":"xyz"}`, false},
		{"missing response", "multiple_choice", `["Paris"]`, ``, false},
		{"malformed response", "multiple_choice", `["Paris"]`, `{not json`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := gradeAnswer(tc.kind, json.RawMessage(tc.correct), json.RawMessage(tc.response))
			if got != tc.want {
				t.Fatalf("gradeAnswer(%q, %s, %s) = %v, want %v",
					tc.kind, tc.correct, tc.response, got, tc.want)
			}
		})
	}
}
