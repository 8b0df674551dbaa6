package stomp

import (
	"bytes"
	"testing"
)

func TestParseConnect(t *testing.T) {
	raw := []byte("CONNECT\naccept-version:1.2\nhost:example\n\n\x00")
	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Command != CmdCONNECT {
		t.Errorf("command = %q, want CONNECT", f.Command)
	}
	if len(f.Headers) != 2 {
		t.Fatalf("headers = %d, want 2", len(f.Headers))
	}
	if v, ok := f.GetString(HeaderAcceptVersion); !ok || v != "1.2" {
		t.Errorf("accept-version = %q, %v", v, ok)
	}
	if len(f.Body) != 0 {
		t.Errorf("body = %q, want empty", f.Body)
	}

	rebuilt, err := Build(f.Command, f.Headers, f.Body)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if rebuilt != string(raw) {
		t.Errorf("round-trip mismatch:\n got  %q\n want %q", rebuilt, string(raw))
	}
}

func TestParseContentLengthWithEmbeddedNUL(t *testing.T) {
	body := []byte("ab\x00cd")
	raw := append([]byte("SEND\ndestination:/queue\ncontent-length:5\n\n"), body...)
	raw = append(raw, 0)

	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(f.Body, body) {
		t.Errorf("body = %q, want %q", f.Body, body)
	}
}

func TestParseRejectsBodyOnBodyForbiddenCommand(t *testing.T) {
	raw := []byte("SUBSCRIBE\ndestination:/queue\nid:0\n\nunexpected\x00")
	_, err := Parse(raw)
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Result != UnexpectedBody {
		t.Errorf("result = %v, want UnexpectedBody", pe.Result)
	}
}

func TestParseMissingRequiredHeader(t *testing.T) {
	raw := []byte("CONNECT\nhost:example\n\n\x00")
	_, err := Parse(raw)
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Result != MissingRequiredHeader {
		t.Errorf("result = %v, want MissingRequiredHeader", pe.Result)
	}
}

func TestParseUnknownCommand(t *testing.T) {
	raw := []byte("FROBNICATE\n\n\x00")
	_, err := Parse(raw)
	pe, ok := err.(*ParseError)
	if !ok || pe.Result != UnknownCommand {
		t.Fatalf("expected UnknownCommand, got %v", err)
	}
}

func TestParseUnrecognizedHeader(t *testing.T) {
	raw := []byte("CONNECT\naccept-version:1.2\nhost:example\nx-custom:1\n\n\x00")
	_, err := Parse(raw)
	pe, ok := err.(*ParseError)
	if !ok || pe.Result != UnrecognizedHeader {
		t.Fatalf("expected UnrecognizedHeader, got %v", err)
	}
}

func TestParseDuplicateHeaderFirstWins(t *testing.T) {
	raw := []byte("CONNECT\naccept-version:1.2\nhost:first\nhost:second\n\n\x00")
	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := f.GetString(HeaderHost); v != "first" {
		t.Errorf("host = %q, want %q", v, "first")
	}
}

func TestParseNoBlankLine(t *testing.T) {
	raw := []byte("CONNECT\naccept-version:1.2\nhost:example\n")
	_, err := Parse(raw)
	pe, ok := err.(*ParseError)
	if !ok || pe.Result != MissingBlankLine {
		t.Fatalf("expected MissingBlankLine, got %v", err)
	}
}

func TestFrameCloneIsIndependent(t *testing.T) {
	raw := []byte("SEND\ndestination:/queue\ncontent-length:3\n\nabc\x00")
	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clone := f.Clone()
	raw[len("SEND\ndestination:/queue\ncontent-length:3\n\n")] = 'z'
	if string(clone.Body) != "abc" {
		t.Errorf("clone body mutated by original buffer: %q", clone.Body)
	}
}

func TestBuildRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		cmd     Command
		headers []Header
		body    []byte
	}{
		{
			name: "connected no body",
			cmd:  CmdCONNECTED,
			headers: []Header{
				NewHeader(HeaderVersion, "1.2"),
				NewHeader(HeaderSession, "session-1"),
			},
		},
		{
			name: "send with body",
			cmd:  CmdSEND,
			headers: []Header{
				NewHeader(HeaderDestination, "/queue/passengers"),
				NewHeader(HeaderContentType, "application/json"),
			},
			body: []byte(`{"station_id":"A"}`),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wire, err := Build(tc.cmd, tc.headers, tc.body)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			f, err := Parse([]byte(wire))
			if err != nil {
				t.Fatalf("Parse(Build(...)): %v", err)
			}
			if f.Command != tc.cmd {
				t.Errorf("command = %q, want %q", f.Command, tc.cmd)
			}
			if !bytes.Equal(f.Body, tc.body) {
				t.Errorf("body = %q, want %q", f.Body, tc.body)
			}
			for _, h := range tc.headers {
				got, ok := f.Get(h.Key)
				if !ok || !bytes.Equal(got, h.Value) {
					t.Errorf("header %s = %q, %v; want %q", h.Key, got, ok, h.Value)
				}
			}
		})
	}
}

func TestBuildUnexpectedBody(t *testing.T) {
	_, err := Build(CmdSUBSCRIBE, []Header{
		NewHeader(HeaderDestination, "/queue"),
		NewHeader(HeaderID, "0"),
	}, []byte("nope"))
	pe, ok := err.(*ParseError)
	if !ok || pe.Result != UnexpectedBody {
		t.Fatalf("expected UnexpectedBody, got %v", err)
	}
}
