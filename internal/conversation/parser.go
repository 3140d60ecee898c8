// Package conversation turns typed or spoken commands into workout intents.
package conversation

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/hammamikhairi/ottolift/internal/logger"
	"github.com/hammamikhairi/ottolift/internal/reorganize"
)

// IntentType names what the user asked for.
type IntentType string

const (
	IntentUnknown    IntentType = "unknown"
	IntentHelp       IntentType = "help"
	IntentQuit       IntentType = "quit"
	IntentStatus     IntentType = "status"
	IntentList       IntentType = "list"
	IntentStart      IntentType = "start"
	IntentFinish     IntentType = "finish"
	IntentDiscard    IntentType = "discard"
	IntentDone       IntentType = "done"
	IntentUndo       IntentType = "undo"
	IntentAddSet     IntentType = "add_set"
	IntentPause      IntentType = "pause"
	IntentResume     IntentType = "resume"
	IntentAddTime    IntentType = "add_time"
	IntentRestLength IntentType = "rest_length"
	IntentSkip       IntentType = "skip"
	IntentNext       IntentType = "next"
	IntentOneMore    IntentType = "one_more"
	IntentSuperset   IntentType = "superset"
	IntentClose      IntentType = "close"
	IntentQuick      IntentType = "quick"
	IntentInterval   IntentType = "interval"
	IntentStop       IntentType = "stop"
	IntentReorganize IntentType = "reorganize"
	IntentMove       IntentType = "move"
	IntentUngroup    IntentType = "ungroup"
	IntentSave       IntentType = "save"
	IntentCancel     IntentType = "cancel"
	IntentHistory    IntentType = "history"
	IntentListen     IntentType = "listen"
)

// Intent is a parsed command. Only the fields its type uses are set.
// Positions in Move are 0-based.
type Intent struct {
	Type    IntentType
	Text    string // routine name, timer label, or the raw input when unknown
	Weight  float64
	Reps    int
	Seconds int
	Rest    int
	Rounds  int
	Index   int
	Move    reorganize.Move
}

// IntentParser converts user input into an intent.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}

// Compile-time interface check.
var _ IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to intents using keywords and simple
// patterns. Voice transcriptions come through the same rules, so number
// words and "by"/"for" separators are accepted.
type KeywordParser struct {
	log      *logger.Logger
	simple   []simpleRule
	patterns []patternRule
}

type simpleRule struct {
	regex  *regexp.Regexp
	intent IntentType
}

// numTok captures a number as digits or a word.
const numTok = `(\d+(?:\.\d+)?|[a-z-]+)`

type patternRule struct {
	regex *regexp.Regexp
	build func(m []string) *Intent
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.simple = []simpleRule{
		{regexp.MustCompile(`^(help|h|\?)$`), IntentHelp},
		{regexp.MustCompile(`^(quit|exit|q)$`), IntentQuit},
		{regexp.MustCompile(`^(status|where|timers?)$`), IntentStatus},
		{regexp.MustCompile(`^(list|routines)$`), IntentList},
		{regexp.MustCompile(`^(finish|end)( workout)?$`), IntentFinish},
		{regexp.MustCompile(`^(discard|abandon)( workout)?$`), IntentDiscard},
		{regexp.MustCompile(`^(undo|oops)$`), IntentUndo},
		{regexp.MustCompile(`^(add set|another set|extra set)$`), IntentAddSet},
		{regexp.MustCompile(`^(pause|wait|hold on)$`), IntentPause},
		{regexp.MustCompile(`^(resume|go|unpause)$`), IntentResume},
		{regexp.MustCompile(`^(skip|skip rest|ready)$`), IntentSkip},
		{regexp.MustCompile(`^(next|go on)$`), IntentNext},
		{regexp.MustCompile(`^(more|one more|one more round)$`), IntentOneMore},
		{regexp.MustCompile(`^(close|close superset)$`), IntentClose},
		{regexp.MustCompile(`^(stop|stop timer)$`), IntentStop},
		{regexp.MustCompile(`^(reorganize|reorder|rearrange)$`), IntentReorganize},
		{regexp.MustCompile(`^save$`), IntentSave},
		{regexp.MustCompile(`^cancel$`), IntentCancel},
		{regexp.MustCompile(`^(history|log)$`), IntentHistory},
		{regexp.MustCompile(`^(listen|voice)$`), IntentListen},
	}

	p.patterns = []patternRule{
		// "done", "done 80x8", "done 100 by 5", "done 8 reps", "done 60 seconds".
		{regexp.MustCompile(`^(?:done|d|finished set)(?:\s+` + numTok + `\s*(?:x|by|for|\*)\s*` + numTok + `)?$`), func(m []string) *Intent {
			in := &Intent{Type: IntentDone}
			if m[1] != "" {
				w, okW := number(m[1])
				r, okR := number(m[2])
				if !okW || !okR {
					return nil
				}
				in.Weight, in.Reps = w, int(r)
			}
			return in
		}},
		{regexp.MustCompile(`^(?:done|d)\s+` + numTok + `\s+reps?$`), func(m []string) *Intent {
			r, ok := number(m[1])
			if !ok {
				return nil
			}
			return &Intent{Type: IntentDone, Reps: int(r)}
		}},
		{regexp.MustCompile(`^(?:done|d)\s+` + numTok + `\s*(?:s|sec|secs|seconds)$`), func(m []string) *Intent {
			s, ok := number(m[1])
			if !ok {
				return nil
			}
			return &Intent{Type: IntentDone, Seconds: int(s)}
		}},
		// "+30", "plus 30", "add 30 seconds".
		{regexp.MustCompile(`^(?:\+\s*|plus\s+|add\s+)` + numTok + `(?:\s*(?:s|sec|secs|seconds))?$`), func(m []string) *Intent {
			s, ok := number(m[1])
			if !ok {
				return nil
			}
			return &Intent{Type: IntentAddTime, Seconds: int(s)}
		}},
		{regexp.MustCompile(`^rest\s+` + numTok + `(?:\s*(?:s|sec|secs|seconds))?$`), func(m []string) *Intent {
			s, ok := number(m[1])
			if !ok {
				return nil
			}
			return &Intent{Type: IntentRestLength, Seconds: int(s)}
		}},
		{regexp.MustCompile(`^(?:quick|timer)\s+(\d+)(?:\s*(?:s|sec|secs|seconds))?(?:\s+(.+))?$`), func(m []string) *Intent {
			s, _ := strconv.Atoi(m[1])
			return &Intent{Type: IntentQuick, Seconds: s, Text: m[2]}
		}},
		// "hiit 40/20x8": 40 s work, 20 s rest, 8 rounds.
		{regexp.MustCompile(`^(?:hiit|interval)\s+(\d+)\s*/\s*(\d+)\s*x\s*(\d+)$`), func(m []string) *Intent {
			work, _ := strconv.Atoi(m[1])
			rest, _ := strconv.Atoi(m[2])
			rounds, _ := strconv.Atoi(m[3])
			return &Intent{Type: IntentInterval, Seconds: work, Rest: rest, Rounds: rounds}
		}},
		{regexp.MustCompile(`^superset\s+` + numTok + `$`), func(m []string) *Intent {
			n, ok := number(m[1])
			if !ok || n < 1 {
				return nil
			}
			return &Intent{Type: IntentSuperset, Index: int(n) - 1}
		}},
		{regexp.MustCompile(`^(?:start|begin)\s+(.+)$`), func(m []string) *Intent {
			return &Intent{Type: IntentStart, Text: strings.TrimSpace(m[1])}
		}},
		// "move 3 before 1", "move 2-3 after 4".
		{regexp.MustCompile(`^move\s+(\d+(?:-\d+)?)\s+(before|after)\s+(\d+(?:-\d+)?)$`), func(m []string) *Intent {
			src, ok1 := positions(m[1])
			dst, ok2 := positions(m[3])
			if !ok1 || !ok2 {
				return nil
			}
			return &Intent{Type: IntentMove, Move: reorganize.Move{Source: src, Target: dst, Mode: reorganize.Mode(m[2])}}
		}},
		{regexp.MustCompile(`^group\s+(\d+(?:-\d+)?)\s+with\s+(\d+(?:-\d+)?)$`), func(m []string) *Intent {
			src, ok1 := positions(m[1])
			dst, ok2 := positions(m[2])
			if !ok1 || !ok2 {
				return nil
			}
			return &Intent{Type: IntentMove, Move: reorganize.Move{Source: src, Target: dst, Mode: reorganize.ModeGroup}}
		}},
		{regexp.MustCompile(`^ungroup\s+(\d+)$`), func(m []string) *Intent {
			src, ok := positions(m[1])
			if !ok {
				return nil
			}
			return &Intent{Type: IntentMove, Move: reorganize.Move{Source: src, Mode: reorganize.ModeUngroup}}
		}},
	}
	return p
}

// Parse converts user input into an intent. Unmatched input yields
// IntentUnknown with the input in Text.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*Intent, error) {
	norm := normalize(input)
	if norm == "" {
		return &Intent{Type: IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", norm)

	for _, rule := range p.simple {
		if rule.regex.MatchString(norm) {
			p.log.Debug("matched intent: %s", rule.intent)
			return &Intent{Type: rule.intent}, nil
		}
	}
	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(norm)
		if m == nil {
			continue
		}
		if in := rule.build(m); in != nil {
			p.log.Debug("matched intent: %s", in.Type)
			return in, nil
		}
	}

	p.log.Debug("no match, returning unknown intent")
	return &Intent{Type: IntentUnknown, Text: strings.TrimSpace(input)}, nil
}

// normalize lowercases, collapses whitespace, and drops trailing
// punctuation that transcriptions add.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, ".!,")
	return strings.Join(strings.Fields(s), " ")
}

var numberWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "fifteen": 15, "twenty": 20, "thirty": 30,
	"forty": 40, "forty-five": 45, "fifty": 50, "sixty": 60, "ninety": 90,
}

// number parses a digit string or a small number word.
func number(s string) (float64, bool) {
	if v, ok := numberWords[s]; ok {
		return v, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// positions turns "3" or "2-4" (1-based, inclusive) into 0-based indices.
func positions(s string) ([]int, bool) {
	lo, hi, isRange := strings.Cut(s, "-")
	a, err := strconv.Atoi(lo)
	if err != nil || a < 1 {
		return nil, false
	}
	b := a
	if isRange {
		if b, err = strconv.Atoi(hi); err != nil || b < a {
			return nil, false
		}
	}
	out := make([]int, 0, b-a+1)
	for i := a; i <= b; i++ {
		out = append(out, i-1)
	}
	return out, true
}
