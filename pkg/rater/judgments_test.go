package rater

import (
	"errors"
	"strings"
	"testing"

	"github.com/himanishpuri/SimilarityRater/pkg/models"
)

func TestParseJudgmentsValid(t *testing.T) {
	data := `[
		{"song_a": "a.wav", "song_b": "b.wav", "similarity_score": 0.4},
		{"song_a": "b.wav", "song_b": "c.wav", "similarity_score": 0, "note": "extra fields are fine"}
	]`
	js, err := ParseJudgments([]byte(data))
	if err != nil {
		t.Fatalf("ParseJudgments failed: %v", err)
	}
	want := []models.Judgment{
		{SongA: "a.wav", SongB: "b.wav", Score: 0.4},
		{SongA: "b.wav", SongB: "c.wav", Score: 0},
	}
	if len(js) != len(want) {
		t.Fatalf("Expected %d judgments, got %d", len(want), len(js))
	}
	for i := range want {
		if js[i] != want[i] {
			t.Errorf("entry %d: Expected %+v, got %+v", i, want[i], js[i])
		}
	}
}

func TestParseJudgmentsEmptyArray(t *testing.T) {
	js, err := ParseJudgments([]byte("  []  "))
	if err != nil {
		t.Fatalf("ParseJudgments failed: %v", err)
	}
	if len(js) != 0 {
		t.Errorf("Expected no judgments, got %d", len(js))
	}
}

func TestParseJudgmentsAcceptsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, `[{"song_a":"a","song_b":"b","similarity_score":1}]`...)
	if _, err := ParseJudgments(data); err != nil {
		t.Errorf("Expected BOM to be accepted, got %v", err)
	}
}

func TestParseJudgmentsRejects(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		message string
	}{
		{"empty", ``, "invalid JSON"},
		{"broken json", `[{"song_a": "a.wav"`, "invalid JSON"},
		{"object root", `{"song_a": "a", "song_b": "b", "similarity_score": 1}`, "expected a list of ratings"},
		{"string root", `"hello"`, "expected a list of ratings"},
		{"non-object entry", `[1, 2]`, "expected an object"},
		{"missing song_a", `[{"song_b": "b", "similarity_score": 1}]`, "missing required fields: song_a"},
		{"missing score", `[{"song_a": "a", "song_b": "b"}]`, "missing required fields: similarity_score"},
		{"null score", `[{"song_a": "a", "song_b": "b", "similarity_score": null}]`, "similarity_score"},
		{"empty name", `[{"song_a": "", "song_b": "b", "similarity_score": 1}]`, "song_a"},
		{"numeric name", `[{"song_a": 3, "song_b": "b", "similarity_score": 1}]`, "entry 0"},
		{"string score", `[{"song_a": "a", "song_b": "b", "similarity_score": "high"}]`, "entry 0"},
		{"quoted score", `[{"song_a": "a.wav", "song_b": "b.wav", "similarity_score": "0.5"}]`, "entry 0"},
		{"self pair", `[{"song_a": "a", "song_b": "a", "similarity_score": 1}]`, "song_b must differ from song_a"},
		{"second entry bad", `[{"song_a": "a", "song_b": "b", "similarity_score": 1}, {"song_a": "a"}]`, "entry 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			js, err := ParseJudgments([]byte(tt.data))
			if !errors.Is(err, ErrMalformedJudgments) {
				t.Fatalf("Expected ErrMalformedJudgments, got %v", err)
			}
			if js != nil {
				t.Errorf("Expected no partial result, got %+v", js)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Expected error containing %q, got %q", tt.message, err.Error())
			}
		})
	}
}

func TestParseJudgmentsRejectsInvalidUTF8(t *testing.T) {
	_, err := ParseJudgments([]byte{'[', 0xff, ']'})
	if !errors.Is(err, ErrMalformedJudgments) {
		t.Errorf("Expected ErrMalformedJudgments, got %v", err)
	}
}

func TestMarshalJudgmentsFormat(t *testing.T) {
	data, err := MarshalJudgments([]models.Judgment{{SongA: "a.wav", SongB: "b.wav", Score: 0.7}})
	if err != nil {
		t.Fatalf("MarshalJudgments failed: %v", err)
	}
	want := "[\n    {\n        \"song_a\": \"a.wav\",\n        \"song_b\": \"b.wav\",\n        \"similarity_score\": 0.7\n    }\n]"
	if string(data) != want {
		t.Errorf("Expected\n%s\ngot\n%s", want, data)
	}

	empty, _ := MarshalJudgments(nil)
	if string(empty) != "[]" {
		t.Errorf("Expected [], got %s", empty)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []models.Judgment{
		{SongA: "x.wav", SongB: "y.wav", Score: 0},
		{SongA: "y.wav", SongB: "z.wav", Score: 1},
		{SongA: "ünïcode.wav", SongB: "z.wav", Score: 0.333},
	}
	var sb strings.Builder
	if err := EncodeJudgments(&sb, in); err != nil {
		t.Fatalf("EncodeJudgments failed: %v", err)
	}
	out, err := DecodeJudgments(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("DecodeJudgments failed: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("entry %d: Expected %+v, got %+v", i, in[i], out[i])
		}
	}
}
