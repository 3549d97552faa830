package workflow

import "strings"

// StepID identifies one of the three fixed workflow stages.
type StepID string

const (
	StepImport        StepID = "import"
	StepConfiguration StepID = "configuration"
	StepAnalytics     StepID = "analytics"
)

// Step data keys. Boolean flags feed the completion predicates; the remaining
// keys carry free-form payload reported by completed uploads.
const (
	KeyTicketsUploaded      = "ticketsUploaded"
	KeyUsageUploaded        = "usageUploaded"
	KeyMappingsConfigured   = "mappingsConfigured"
	KeyThresholdsConfigured = "thresholdsConfigured"
	KeyAnalyticsReviewed    = "analyticsReviewed"
	KeyTicketCount          = "ticketCount"
	KeyUsageRecordCount     = "usageRecordCount"
)

// Definition is the static description of a workflow step.
type Definition struct {
	ID          StepID
	Title       string
	Description string
	TargetPath  string
}

var definitions = []Definition{
	{
		ID:          StepImport,
		Title:       "Import Data",
		Description: "Upload ticket and usage CSV files",
		TargetPath:  "/import",
	},
	{
		ID:          StepConfiguration,
		Title:       "Configuration",
		Description: "Map product areas and set scoring thresholds",
		TargetPath:  "/configuration",
	},
	{
		ID:          StepAnalytics,
		Title:       "Analytics",
		Description: "Review technical debt scores",
		TargetPath:  "/analytics",
	},
}

// Definitions returns the workflow steps in their fixed order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// ParseStepID converts user input into a known StepID.
func ParseStepID(value string) (StepID, bool) {
	normalized := StepID(strings.ToLower(strings.TrimSpace(value)))
	for _, def := range definitions {
		if def.ID == normalized {
			return normalized, true
		}
	}
	return "", false
}

// Satisfied evaluates the step's completion predicate over live step data.
// Completion is never stored as a flag; it is recomputed on every read.
func (id StepID) Satisfied(data StepData) bool {
	switch id {
	case StepImport:
		return data.Flag(KeyTicketsUploaded) && data.Flag(KeyUsageUploaded)
	case StepConfiguration:
		return data.Flag(KeyMappingsConfigured) && data.Flag(KeyThresholdsConfigured)
	case StepAnalytics:
		return data.Flag(KeyAnalyticsReviewed)
	}
	return false
}

// CompletionFlags returns the data keys an explicit completion of this step
// sets to true.
func (id StepID) CompletionFlags() []string {
	switch id {
	case StepImport:
		return []string{KeyTicketsUploaded, KeyUsageUploaded}
	case StepConfiguration:
		return []string{KeyMappingsConfigured, KeyThresholdsConfigured}
	case StepAnalytics:
		return []string{KeyAnalyticsReviewed}
	}
	return nil
}

func stepIndex(id StepID) int {
	for i, def := range definitions {
		if def.ID == id {
			return i
		}
	}
	return -1
}
