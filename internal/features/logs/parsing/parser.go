package logs_parsing

import (
	"fmt"
	"strings"
	"time"

	logs_core "logpulse/internal/features/logs/core"
)

const (
	// TimestampLayout is the fixed yyyy/MM/dd HH:mm:ss prefix of every log line.
	TimestampLayout = "2006/01/02 15:04:05"

	timestampLength = 19
	minLineLength   = 20
)

type SkipReason string

const (
	SkipReasonMalformedTimestamp SkipReason = "MALFORMED_TIMESTAMP"
	SkipReasonShortLine          SkipReason = "SHORT_LINE"
	SkipReasonUnexpected         SkipReason = "UNEXPECTED"
)

// LineSkipError describes a line that produced no record.
type LineSkipError struct {
	LineNumber int
	Line       string
	Reason     SkipReason
	Err        error
}

func (e *LineSkipError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d skipped (%s): %v", e.LineNumber, e.Reason, e.Err)
	}

	return fmt.Sprintf("line %d skipped (%s)", e.LineNumber, e.Reason)
}

func (e *LineSkipError) Unwrap() error {
	return e.Err
}

type ParseResult struct {
	Records    []*logs_core.LogRecord
	Skipped    []*LineSkipError
	TotalLines int
	BlankLines int
}

// LineParser turns raw log lines into records.
//
// Lines shorter than 20 characters become empty records unless
// skipShortLines is set, in which case they are reported as skipped.
type LineParser struct {
	skipShortLines bool
}

func NewLineParser(skipShortLines bool) *LineParser {
	return &LineParser{skipShortLines: skipShortLines}
}

// ParseBlob splits content on \n or \r\n and parses every non-blank line.
func (p *LineParser) ParseBlob(content string) *ParseResult {
	result := &ParseResult{
		Records: make([]*logs_core.LogRecord, 0),
		Skipped: make([]*LineSkipError, 0),
	}

	lines := strings.Split(content, "\n")

	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")

		// a trailing newline leaves one empty element that is not a line
		if i == len(lines)-1 && line == "" {
			break
		}

		result.TotalLines++

		if strings.TrimSpace(line) == "" {
			result.BlankLines++
			continue
		}

		record, err := p.ParseLine(line)
		if err != nil {
			skipErr, ok := err.(*LineSkipError)
			if !ok {
				skipErr = &LineSkipError{Line: line, Reason: SkipReasonUnexpected, Err: err}
			}
			skipErr.LineNumber = i + 1

			result.Skipped = append(result.Skipped, skipErr)
			continue
		}

		result.Records = append(result.Records, record)
	}

	return result
}

// ParseLine parses a single line. It never panics; any failure is returned
// as a *LineSkipError.
func (p *LineParser) ParseLine(line string) (record *logs_core.LogRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			record = nil
			err = &LineSkipError{
				Line:   line,
				Reason: SkipReasonUnexpected,
				Err:    fmt.Errorf("panic while parsing line: %v", r),
			}
		}
	}()

	chars := []rune(line)

	if len(chars) < minLineLength {
		if p.skipShortLines {
			return nil, &LineSkipError{Line: line, Reason: SkipReasonShortLine}
		}

		return &logs_core.LogRecord{}, nil
	}

	timestamp, err := time.Parse(TimestampLayout, string(chars[:timestampLength]))
	if err != nil {
		return nil, &LineSkipError{
			Line:   line,
			Reason: SkipReasonMalformedTimestamp,
			Err:    fmt.Errorf("could not parse timestamp: %w", err),
		}
	}

	message := strings.TrimSpace(string(chars[minLineLength:]))

	return &logs_core.LogRecord{
		Timestamp: &timestamp,
		Message:   message,
		IsError:   logs_core.IsErrorMessage(message),
	}, nil
}
