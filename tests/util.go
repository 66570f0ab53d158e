package testutil

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/darasahq/darasa/core"
)

// NewValidator builds the app validator the way the entry points do.
func NewValidator() *validator.Validate {
	validate := validator.New()
	lang := en.New()
	uni := ut.New(lang, lang)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	return validate
}

// JSONDiff renders a unified diff between two values' JSON forms, for
// readable assertion failures on nested payloads.
func JSONDiff(t *testing.T, want, got interface{}) string {
	t.Helper()
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(mustJSON(t, want)),
		B:        difflib.SplitLines(mustJSON(t, got)),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		t.Fatalf("JSONDiff() failed: %v", err)
	}
	return diff
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("mustJSON() failed: %v", err)
	}
	return string(data) + "\n"
}
