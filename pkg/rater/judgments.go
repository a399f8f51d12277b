package rater

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/himanishpuri/SimilarityRater/pkg/models"
)

// judgmentRecord is the wire shape of one prior judgment. Score is a
// pointer so a missing field can be told apart from 0; a quoted number
// fails to decode into it.
type judgmentRecord struct {
	SongA string   `json:"song_a" validate:"required"`
	SongB string   `json:"song_b" validate:"required,nefield=SongA"`
	Score *float64 `json:"similarity_score" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeJudgments reads a judgment export. The whole document is rejected
// with ErrMalformedJudgments on any problem; a partial list is never
// returned.
func DecodeJudgments(r io.Reader) ([]models.Judgment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading judgments: %w", err)
	}
	return ParseJudgments(data)
}

func ParseJudgments(data []byte) ([]models.Judgment, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, malformed("file is not valid UTF-8")
	}

	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return nil, malformed("invalid JSON")
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, malformed("expected a list of ratings")
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, malformed("invalid JSON: %v", err)
	}

	out := make([]models.Judgment, 0, len(entries))
	for i, raw := range entries {
		j, err := decodeRecord(raw)
		if err != nil {
			return nil, malformed("entry %d: %v", i, err)
		}
		out = append(out, j)
	}
	return out, nil
}

func decodeRecord(raw json.RawMessage) (models.Judgment, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return models.Judgment{}, errors.New("expected an object")
	}

	var rec judgmentRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.Judgment{}, err
	}
	if err := validate.Struct(rec); err != nil {
		return models.Judgment{}, describeValidation(err)
	}

	return models.Judgment{SongA: rec.SongA, SongB: rec.SongB, Score: *rec.Score}, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var missing, other []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			missing = append(missing, fe.Field())
		case "nefield":
			other = append(other, fmt.Sprintf("%s must differ from %s", fe.Field(), "song_a"))
		default:
			other = append(other, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	if len(missing) > 0 {
		other = append([]string{"missing required fields: " + strings.Join(missing, ", ")}, other...)
	}
	return errors.New(strings.Join(other, "; "))
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedJudgments, fmt.Sprintf(format, args...))
}

// MarshalJudgments renders judgments in the export format: a JSON array,
// keys song_a, song_b, similarity_score, four-space indent.
func MarshalJudgments(js []models.Judgment) ([]byte, error) {
	if js == nil {
		js = []models.Judgment{}
	}
	return json.MarshalIndent(js, "", "    ")
}

func EncodeJudgments(w io.Writer, js []models.Judgment) error {
	data, err := MarshalJudgments(js)
	if err != nil {
		return fmt.Errorf("encoding judgments: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing judgments: %w", err)
	}
	return nil
}
