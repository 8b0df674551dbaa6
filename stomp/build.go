package stomp

import (
	"strconv"
	"strings"
)

// Build validates and serializes a frame to its wire form. content-length
// is computed from body and overrides any content-length the caller
// passed in headers.
func Build(cmd Command, headers []Header, body []byte) (string, error) {
	if !knownCommands[cmd] {
		return "", newParseError(UnknownCommand, string(cmd))
	}
	if len(body) > 0 && !bodyAllowed[cmd] {
		return "", newParseError(UnexpectedBody, string(cmd))
	}

	seen := make(map[HeaderKey]bool)
	var filtered []Header
	for _, h := range headers {
		if h.Key == "" {
			return "", newParseError(EmptyHeaderKey, "")
		}
		if !knownHeaders[h.Key] {
			return "", newParseError(UnrecognizedHeader, string(h.Key))
		}
		if h.Key == HeaderContentLength {
			continue // recomputed below
		}
		if seen[h.Key] {
			continue // first occurrence wins, same as Parse
		}
		seen[h.Key] = true
		filtered = append(filtered, h)
	}
	if len(body) > 0 {
		filtered = append(filtered, NewHeader(HeaderContentLength, strconv.Itoa(len(body))))
		seen[HeaderContentLength] = true
	}

	for _, required := range requiredHeaders[cmd] {
		if !seen[required] {
			return "", newParseError(MissingRequiredHeader, string(required))
		}
	}

	var b strings.Builder
	b.WriteString(string(cmd))
	b.WriteByte('\n')
	for _, h := range filtered {
		b.WriteString(string(h.Key))
		b.WriteByte(':')
		b.Write(h.Value)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.Write(body)
	b.WriteByte(0)
	return b.String(), nil
}
