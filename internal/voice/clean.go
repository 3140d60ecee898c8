package voice

import (
	"regexp"
	"strings"
)

// envAnnotation matches whisper environmental annotations like
// "(keyboard clicking)", "[laughter]", "(speaking French)".
var envAnnotation = regexp.MustCompile(`[\(\[][a-zA-Z][a-zA-Z_\s]*[\)\]]`)

// gymNoise are whisper artifacts that show up often next to a rack.
var gymNoise = []string{
	"[BLANK_AUDIO]",
	"[BLANK AUDIO]",
	"(silence)",
	"[Music]",
	"(music)",
	"(grunting)",
	"(breathing)",
	"(panting)",
	"(clanking)",
	"(metal clanking)",
	"(weights clanking)",
	"(thud)",
	"(background noise)",
	"(inaudible)",
	"(unintelligible)",
}

// hallucinations are whole transcriptions whisper produces from noise.
var hallucinations = []string{
	"...",
	"you",
	"thank you.",
	"thanks for watching!",
	"thank you for watching.",
	"bye.",
	"the end.",
}

// cleanTranscription normalizes whitespace and strips whisper artifacts.
// A transcription that is only a known hallucination comes back empty.
func cleanTranscription(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)

	for _, j := range gymNoise {
		s = strings.ReplaceAll(s, j, "")
		s = strings.ReplaceAll(s, strings.ToLower(j), "")
	}
	s = envAnnotation.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")

	lower := strings.ToLower(s)
	for _, h := range hallucinations {
		if h == lower {
			return ""
		}
	}

	// Whisper timestamp prefixes like "[00:00:00.000 --> 00:00:05.000]".
	if strings.HasPrefix(s, "[") {
		if idx := strings.Index(s, "]"); idx != -1 && idx < 40 {
			if rest := strings.TrimSpace(s[idx+1:]); rest != "" {
				return rest
			}
		}
	}
	return s
}

// stripWakeWord returns what follows the first wake word in text. It
// returns "" when no wake word is present and " " when the wake word had
// nothing after it.
func stripWakeWord(text string, wakeWords []string) string {
	lower := strings.ToLower(text)
	for _, w := range wakeWords {
		wl := strings.ToLower(w)
		idx := strings.Index(lower, wl)
		if idx < 0 {
			continue
		}
		rest := strings.TrimLeft(text[idx+len(wl):], " ,.!?\n\r\t")
		if rest == "" {
			return " "
		}
		return rest
	}
	return ""
}
