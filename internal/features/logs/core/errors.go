package logs_core

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

const (
	ErrorInvalidProbeCount  = "INVALID_PROBE_COUNT"
	ErrorProbeCountTooLarge = "PROBE_COUNT_TOO_LARGE"
)
