package reply

import (
	"regexp"
	"strings"
)

const (
	// PlaceholderTranscript stands in when the model output carries nothing
	// recognizable as a transcript.
	PlaceholderTranscript = "voice message processed"

	// SafeReplyText substitutes an empty model output so the caller never
	// receives a blank reply.
	SafeReplyText = "I heard your message, but I couldn't come up with a response. Could you try again?"
)

// The instruction prompt asks for this two-field shape, but the model is not
// contractually bound to it. First match wins; anything else goes through the
// ordered fallbacks below.
var markerPattern = regexp.MustCompile(`(?is)TRANSCRIPT:\s*(.*?)\s*RESPONSE:\s*(.*)`)

// Parsed is the best-effort split of raw model output.
type Parsed struct {
	Transcript string
	ReplyText  string
	// Degraded marks outputs recovered through a fallback path rather than
	// the labeled two-field convention.
	Degraded bool
}

// Parse extracts a transcript and a reply from free-form model output.
// Fallback order: labeled markers, newline split, whole text as reply.
// The returned ReplyText is never empty.
func Parse(raw string) Parsed {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Parsed{
			Transcript: PlaceholderTranscript,
			ReplyText:  SafeReplyText,
			Degraded:   true,
		}
	}

	if m := markerPattern.FindStringSubmatch(raw); m != nil {
		p := Parsed{
			Transcript: strings.TrimSpace(m[1]),
			ReplyText:  strings.TrimSpace(m[2]),
		}
		if p.Transcript == "" {
			p.Transcript = PlaceholderTranscript
			p.Degraded = true
		}
		if p.ReplyText == "" {
			p.ReplyText = SafeReplyText
			p.Degraded = true
		}
		return p
	}

	if lines := splitSegments(raw); len(lines) >= 2 {
		return Parsed{
			Transcript: lines[0],
			ReplyText:  strings.Join(lines[1:], "\n"),
			Degraded:   true,
		}
	}

	return Parsed{
		Transcript: PlaceholderTranscript,
		ReplyText:  raw,
		Degraded:   true,
	}
}

func splitSegments(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
