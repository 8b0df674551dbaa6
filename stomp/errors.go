package stomp

import "fmt"

// ParseResult enumerates the codec's failure kinds. ParseOK is the zero
// value so a declared-but-unset ParseResult reads as success.
type ParseResult int

const (
	ParseOK ParseResult = iota
	NoCommand
	UnknownCommand
	MissingBlankLine
	MissingBody
	EmptyHeaderKey
	UnrecognizedHeader
	MissingRequiredHeader
	UnexpectedBody
	BadContentLength
)

func (r ParseResult) String() string {
	switch r {
	case ParseOK:
		return "Ok"
	case NoCommand:
		return "NoCommand"
	case UnknownCommand:
		return "UnknownCommand"
	case MissingBlankLine:
		return "MissingBlankLine"
	case MissingBody:
		return "MissingBody"
	case EmptyHeaderKey:
		return "EmptyHeaderKey"
	case UnrecognizedHeader:
		return "UnrecognizedHeader"
	case MissingRequiredHeader:
		return "MissingRequiredHeader"
	case UnexpectedBody:
		return "UnexpectedBody"
	case BadContentLength:
		return "BadContentLength"
	default:
		return "Unknown"
	}
}

// ParseError reports why a frame failed to parse or build. It always
// carries a ParseResult other than ParseOK.
type ParseError struct {
	Result ParseResult
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return e.Result.String()
	}
	return fmt.Sprintf("%s: %s", e.Result, e.Detail)
}

func newParseError(result ParseResult, detail string) *ParseError {
	return &ParseError{Result: result, Detail: detail}
}
