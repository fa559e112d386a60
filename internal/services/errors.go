package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTimelineInput = errors.New("invalid timeline input")
	ErrAssetUnreadable      = errors.New("asset unreadable")
	ErrCompositionFailed    = errors.New("composition failed")
	ErrExternalService      = errors.New("external service failed")
	ErrTimeout              = errors.New("timeout")
	ErrValidation           = errors.New("validation error")
	ErrConfiguration        = errors.New("configuration error")
)

// Kind names the error category a marker belongs to.
type Kind string

const (
	KindInvalidTimelineInput Kind = "InvalidTimelineInput"
	KindAssetUnreadable      Kind = "AssetUnreadable"
	KindCompositionFailed    Kind = "CompositionFailed"
	KindExternalService      Kind = "ExternalServiceFailed"
	KindTimeout              Kind = "Timeout"
	KindValidation           Kind = "Validation"
	KindConfiguration        Kind = "Configuration"
	KindUnknown              Kind = "Unknown"
)

var markerKinds = []struct {
	marker error
	kind   Kind
}{
	{ErrInvalidTimelineInput, KindInvalidTimelineInput},
	{ErrAssetUnreadable, KindAssetUnreadable},
	{ErrCompositionFailed, KindCompositionFailed},
	{ErrExternalService, KindExternalService},
	{ErrTimeout, KindTimeout},
	{ErrValidation, KindValidation},
	{ErrConfiguration, KindConfiguration},
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalService
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// CompositionError carries the transcoder's captured diagnostics alongside the
// failed operation name.
type CompositionError struct {
	Operation   string
	Diagnostics string
	Err         error
}

func (e *CompositionError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrCompositionFailed, e.Operation)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if diag := lastLines(e.Diagnostics, 3); diag != "" {
		msg += ": " + diag
	}
	return msg
}

func (e *CompositionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCompositionFailed, e.Err}
	}
	return []error{ErrCompositionFailed}
}

// NewCompositionError tags a failed transcode with its diagnostics.
func NewCompositionError(operation, diagnostics string, err error) error {
	return &CompositionError{
		Operation:   strings.TrimSpace(operation),
		Diagnostics: strings.TrimSpace(diagnostics),
		Err:         err,
	}
}

// ErrorDetails is the caller-facing summary of a job failure.
type ErrorDetails struct {
	Kind        Kind
	Message     string
	Diagnostics string
}

// Details classifies err and extracts the collaborator diagnostics if any.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{Kind: KindUnknown, Message: strings.TrimSpace(err.Error())}
	for _, mk := range markerKinds {
		if errors.Is(err, mk.marker) {
			details.Kind = mk.kind
			break
		}
	}
	var compErr *CompositionError
	if errors.As(err, &compErr) {
		details.Diagnostics = compErr.Diagnostics
	}
	return details
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

func lastLines(text string, n int) string {
	text = strings.TrimSpace(text)
	if text == "" || n <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, " | ")
}
