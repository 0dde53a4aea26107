package parsing

import (
	"fmt"
	"strings"
)

// Stages of posting extraction reported by ExtractionError
const (
	StageClean    = "clean"
	StageGenerate = "generate"
	StageDecode   = "decode"
	StageValidate = "validate"
)

// ExtractionError reports the stage at which turning free text into a posting failed
type ExtractionError struct {
	Stage   string
	Field   string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "posting extraction failed at %s", e.Stage)
	if e.Field != "" {
		fmt.Fprintf(&sb, " (%s)", e.Field)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
