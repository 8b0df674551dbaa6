package stomp

import (
	"bytes"
	"strconv"
)

// Parse decodes a single STOMP frame from raw, taking ownership of the
// slice. The returned Frame's Headers and Body borrow directly from raw;
// callers must not mutate raw afterwards.
func Parse(raw []byte) (Frame, error) {
	commandEnd := bytes.IndexByte(raw, '\n')
	if commandEnd <= 0 {
		return Frame{}, newParseError(NoCommand, "missing or empty command line")
	}
	cmd := Command(raw[:commandEnd])
	if !knownCommands[cmd] {
		return Frame{}, newParseError(UnknownCommand, string(cmd))
	}

	pos := commandEnd + 1
	var headers []Header
	seen := make(map[HeaderKey]bool)
	for {
		lineEnd := bytes.IndexByte(raw[pos:], '\n')
		if lineEnd < 0 {
			return Frame{}, newParseError(MissingBlankLine, "")
		}
		lineEnd += pos
		line := raw[pos:lineEnd]
		pos = lineEnd + 1
		if len(line) == 0 {
			break // blank line: end of headers
		}
		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			return Frame{}, newParseError(EmptyHeaderKey, "")
		}
		key := HeaderKey(line[:colon])
		value := line[colon+1:]
		if !knownHeaders[key] {
			return Frame{}, newParseError(UnrecognizedHeader, string(key))
		}
		if !seen[key] {
			// Duplicate headers: first occurrence wins.
			headers = append(headers, Header{Key: key, Value: value})
			seen[key] = true
		}
	}

	var body []byte
	if clValue, ok := headerValue(headers, HeaderContentLength); ok {
		n, err := strconv.Atoi(string(clValue))
		if err != nil || n < 0 {
			return Frame{}, newParseError(BadContentLength, string(clValue))
		}
		if pos+n >= len(raw) || raw[pos+n] != 0 {
			return Frame{}, newParseError(MissingBody, "content-length exceeds buffer or missing NUL terminator")
		}
		body = raw[pos : pos+n]
	} else {
		nul := bytes.IndexByte(raw[pos:], 0)
		if nul < 0 {
			return Frame{}, newParseError(MissingBody, "no NUL terminator found")
		}
		body = raw[pos : pos+nul]
	}

	if len(body) > 0 && !bodyAllowed[cmd] {
		return Frame{}, newParseError(UnexpectedBody, string(cmd))
	}

	for _, required := range requiredHeaders[cmd] {
		if !seen[required] {
			return Frame{}, newParseError(MissingRequiredHeader, string(required))
		}
	}

	return Frame{raw: raw, Command: cmd, Headers: headers, Body: body}, nil
}

func headerValue(headers []Header, key HeaderKey) ([]byte, bool) {
	for _, h := range headers {
		if h.Key == key {
			return h.Value, true
		}
	}
	return nil, false
}
