package reply

import "testing"

func TestParseLabeledMarkers(t *testing.T) {
	p := Parse("TRANSCRIPT: hi\nRESPONSE: hello there")
	if p.Transcript != "hi" {
		t.Fatalf("Transcript = %q, want %q", p.Transcript, "hi")
	}
	if p.ReplyText != "hello there" {
		t.Fatalf("ReplyText = %q, want %q", p.ReplyText, "hello there")
	}
	if p.Degraded {
		t.Fatalf("labeled output should not be degraded")
	}
}

func TestParseMarkersMessyWhitespace(t *testing.T) {
	p := Parse("  transcript:   what's the weather like \n\n response:  Looks sunny today.  ")
	if p.Transcript != "what's the weather like" {
		t.Fatalf("Transcript = %q", p.Transcript)
	}
	if p.ReplyText != "Looks sunny today." {
		t.Fatalf("ReplyText = %q", p.ReplyText)
	}
	if p.Degraded {
		t.Fatalf("case-insensitive markers should still count as the labeled path")
	}
}

func TestParseMarkersOnOneLine(t *testing.T) {
	p := Parse("TRANSCRIPT: turn off the lights RESPONSE: Done, lights are off.")
	if p.Transcript != "turn off the lights" {
		t.Fatalf("Transcript = %q", p.Transcript)
	}
	if p.ReplyText != "Done, lights are off." {
		t.Fatalf("ReplyText = %q", p.ReplyText)
	}
}

func TestParseNewlineFallback(t *testing.T) {
	p := Parse("you asked about trains\nThe next one leaves at noon.\nPlatform two.")
	if p.Transcript != "you asked about trains" {
		t.Fatalf("Transcript = %q", p.Transcript)
	}
	if p.ReplyText != "The next one leaves at noon.\nPlatform two." {
		t.Fatalf("ReplyText = %q", p.ReplyText)
	}
	if !p.Degraded {
		t.Fatalf("newline fallback should be degraded")
	}
}

func TestParseWholeTextFallback(t *testing.T) {
	p := Parse("Sure, here's my answer.")
	if p.Transcript != PlaceholderTranscript {
		t.Fatalf("Transcript = %q, want placeholder %q", p.Transcript, PlaceholderTranscript)
	}
	if p.ReplyText != "Sure, here's my answer." {
		t.Fatalf("ReplyText = %q", p.ReplyText)
	}
	if !p.Degraded {
		t.Fatalf("unlabeled output should be degraded")
	}
}

func TestParseEmptyOutput(t *testing.T) {
	for _, raw := range []string{"", "   \n\t  "} {
		p := Parse(raw)
		if p.ReplyText != SafeReplyText {
			t.Fatalf("Parse(%q).ReplyText = %q, want safe message", raw, p.ReplyText)
		}
		if p.Transcript != PlaceholderTranscript {
			t.Fatalf("Parse(%q).Transcript = %q, want placeholder", raw, p.Transcript)
		}
		if !p.Degraded {
			t.Fatalf("empty output must be degraded")
		}
	}
}

func TestParseMarkersWithEmptyResponse(t *testing.T) {
	p := Parse("TRANSCRIPT: hi\nRESPONSE:")
	if p.Transcript != "hi" {
		t.Fatalf("Transcript = %q", p.Transcript)
	}
	if p.ReplyText == "" {
		t.Fatalf("ReplyText must never be empty")
	}
	if !p.Degraded {
		t.Fatalf("empty response field should be degraded")
	}
}

func TestParseNeverReturnsEmptyReply(t *testing.T) {
	inputs := []string{
		"",
		"one line",
		"two\nlines",
		"TRANSCRIPT: a\nRESPONSE: b",
		"TRANSCRIPT:\nRESPONSE:",
	}
	for _, raw := range inputs {
		if p := Parse(raw); p.ReplyText == "" {
			t.Fatalf("Parse(%q) produced empty ReplyText", raw)
		}
	}
}
