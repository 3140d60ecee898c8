package conversation

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hammamikhairi/ottolift/internal/logger"
	"github.com/hammamikhairi/ottolift/internal/reorganize"
)

func TestKeywordParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewKeywordParser(log)
	ctx := context.Background()

	tests := []struct {
		input string
		want  Intent
	}{
		// Sets
		{"done", Intent{Type: IntentDone}},
		{"done 80x8", Intent{Type: IntentDone, Weight: 80, Reps: 8}},
		{"Done 102.5 x 5", Intent{Type: IntentDone, Weight: 102.5, Reps: 5}},
		{"done 100 by five.", Intent{Type: IntentDone, Weight: 100, Reps: 5}},
		{"done 12 reps", Intent{Type: IntentDone, Reps: 12}},
		{"done 45 seconds", Intent{Type: IntentDone, Seconds: 45}},
		{"undo", Intent{Type: IntentUndo}},
		{"add set", Intent{Type: IntentAddSet}},

		// Rest timer
		{"pause", Intent{Type: IntentPause}},
		{"resume", Intent{Type: IntentResume}},
		{"+30", Intent{Type: IntentAddTime, Seconds: 30}},
		{"plus thirty", Intent{Type: IntentAddTime, Seconds: 30}},
		{"add 15 seconds", Intent{Type: IntentAddTime, Seconds: 15}},
		{"rest 120", Intent{Type: IntentRestLength, Seconds: 120}},
		{"skip", Intent{Type: IntentSkip}},

		// Superset player
		{"superset 2", Intent{Type: IntentSuperset, Index: 1}},
		{"next", Intent{Type: IntentNext}},
		{"one more round", Intent{Type: IntentOneMore}},
		{"close", Intent{Type: IntentClose}},

		// Free-standing timers
		{"quick 300", Intent{Type: IntentQuick, Seconds: 300}},
		{"quick 90 stretch", Intent{Type: IntentQuick, Seconds: 90, Text: "stretch"}},
		{"hiit 40/20x8", Intent{Type: IntentInterval, Seconds: 40, Rest: 20, Rounds: 8}},
		{"stop", Intent{Type: IntentStop}},

		// Session
		{"start push day", Intent{Type: IntentStart, Text: "push day"}},
		{"finish", Intent{Type: IntentFinish}},
		{"discard workout", Intent{Type: IntentDiscard}},
		{"status", Intent{Type: IntentStatus}},
		{"list", Intent{Type: IntentList}},
		{"history", Intent{Type: IntentHistory}},

		// Reorganize
		{"reorganize", Intent{Type: IntentReorganize}},
		{"move 3 before 1", Intent{Type: IntentMove, Move: reorganize.Move{Source: []int{2}, Target: []int{0}, Mode: reorganize.ModeBefore}}},
		{"move 2-3 after 4", Intent{Type: IntentMove, Move: reorganize.Move{Source: []int{1, 2}, Target: []int{3}, Mode: reorganize.ModeAfter}}},
		{"group 4 with 1", Intent{Type: IntentMove, Move: reorganize.Move{Source: []int{3}, Target: []int{0}, Mode: reorganize.ModeGroup}}},
		{"ungroup 2", Intent{Type: IntentMove, Move: reorganize.Move{Source: []int{1}, Mode: reorganize.ModeUngroup}}},
		{"save", Intent{Type: IntentSave}},
		{"cancel", Intent{Type: IntentCancel}},

		// Misc
		{"help", Intent{Type: IntentHelp}},
		{"?", Intent{Type: IntentHelp}},
		{"quit", Intent{Type: IntentQuit}},
		{"listen", Intent{Type: IntentListen}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parser.Parse(ctx, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, *got); diff != "" {
				t.Fatalf("Parse(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestKeywordParserUnknown(t *testing.T) {
	parser := NewKeywordParser(logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	tests := []string{
		"make me a sandwich",
		"done heavy x lots",
		"move 0 before 1",
		"move 3-2 after 1",
		"superset zero",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			got, err := parser.Parse(ctx, input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Type != IntentUnknown || got.Text != input {
				t.Fatalf("Parse(%q) = %+v, want unknown", input, got)
			}
		})
	}
}

func TestKeywordParserEmpty(t *testing.T) {
	parser := NewKeywordParser(logger.New(logger.LevelOff, nil))
	got, _ := parser.Parse(context.Background(), "   ")
	if got.Type != IntentUnknown || got.Text != "" {
		t.Fatalf("got %+v", got)
	}
}
