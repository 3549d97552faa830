package upload

// Type distinguishes the two upload endpoints.
type Type string

const (
	TypeTickets Type = "tickets"
	TypeUsage   Type = "usage"
)

// Status represents the lifecycle of an upload session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusUploading  Status = "uploading"
	StatusValidating Status = "validating"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// ValidationResult is the structured completion payload built once an upload
// finishes. RowCount and ValidRows both carry the backend's inserted-row
// count to stay wire-compatible with the existing API contract.
type ValidationResult struct {
	IsValid     bool
	Errors      []string
	Warnings    []string
	RowCount    int
	ValidRows   int
	InvalidRows int
}

// Session is the observable state of one attempted upload, from file
// selection through completion or failure.
type Session struct {
	ID           string
	Type         Type
	SelectedFile *FileInfo
	Status       Status
	Progress     int
	Message      string
	Result       *ValidationResult
}

// Terminal reports whether the session reached a final status.
func (s Session) Terminal() bool {
	return s.Status == StatusComplete || s.Status == StatusError
}

func (s Session) clone() Session {
	out := s
	if s.SelectedFile != nil {
		file := *s.SelectedFile
		out.SelectedFile = &file
	}
	if s.Result != nil {
		result := *s.Result
		result.Errors = append([]string(nil), s.Result.Errors...)
		result.Warnings = append([]string(nil), s.Result.Warnings...)
		out.Result = &result
	}
	return out
}
