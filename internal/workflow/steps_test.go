package workflow_test

import (
	"testing"

	"debtwatch/internal/workflow"
)

func TestParseStepID(t *testing.T) {
	cases := []struct {
		input string
		want  workflow.StepID
		ok    bool
	}{
		{"import", workflow.StepImport, true},
		{" Configuration ", workflow.StepConfiguration, true},
		{"ANALYTICS", workflow.StepAnalytics, true},
		{"summary", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := workflow.ParseStepID(tc.input)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseStepID(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSatisfiedToleratesJSONDecodedFlags(t *testing.T) {
	data := workflow.StepData{
		workflow.KeyTicketsUploaded: true,
		workflow.KeyUsageUploaded:   "true",
	}
	if !workflow.StepImport.Satisfied(data) {
		t.Fatal("import predicate should accept bools round-tripped through JSON")
	}

	data[workflow.KeyUsageUploaded] = "yes"
	if workflow.StepImport.Satisfied(data) {
		t.Fatal("non-boolean flag values must not satisfy the predicate")
	}
}

func TestCompletionFlagsCoverPredicates(t *testing.T) {
	for _, def := range workflow.Definitions() {
		data := workflow.StepData{}
		for _, key := range def.ID.CompletionFlags() {
			data[key] = true
		}
		if !def.ID.Satisfied(data) {
			t.Fatalf("step %q not satisfied by its own completion flags", def.ID)
		}
	}
}
