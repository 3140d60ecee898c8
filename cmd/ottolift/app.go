package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hammamikhairi/ottolift/internal/conversation"
	"github.com/hammamikhairi/ottolift/internal/display"
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/engine"
	"github.com/hammamikhairi/ottolift/internal/history"
	"github.com/hammamikhairi/ottolift/internal/logger"
	"github.com/hammamikhairi/ottolift/internal/reorganize"
	"github.com/hammamikhairi/ottolift/internal/routine"
	"github.com/hammamikhairi/ottolift/internal/superset"
	"github.com/hammamikhairi/ottolift/internal/voice"
)

type cliApp struct {
	engine   *engine.Engine
	routines *routine.Library
	history  *history.Log
	catalog  *routine.Catalog
	parser   conversation.IntentParser
	ear      *voice.Ear // nil when voice input is disabled
	log      *logger.Logger
	ui       *display.UI
}

func (a *cliApp) run(ctx context.Context) {
	if s := a.engine.Snapshot(); s != nil {
		a.ui.PrintChat(fmt.Sprintf("Picking up %s where you left off.", s.RoutineName))
		a.showSession(a.engine.Status())
	} else {
		a.ui.PrintChat("Ready when you are. Pick a routine:")
		a.showRoutines(ctx)
	}

	// Receiving on a nil channel blocks forever, so without voice only
	// the keyboard case fires.
	var voiceCh <-chan string
	if a.ear != nil {
		voiceCh = a.ear.C()
	}
	uiCh := a.ui.InputChan()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		case input = <-voiceCh:
			a.ui.PrintVoice(input)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		intent, err := a.parser.Parse(ctx, input)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}
		a.log.Debug("intent: %s (%q)", intent.Type, input)

		if intent.Type == conversation.IntentQuit {
			a.ui.PrintChat("Good work. See you next time.")
			return
		}
		if err := a.handleIntent(ctx, intent); err != nil {
			a.showError(err)
		}
	}
}

func (a *cliApp) handleIntent(ctx context.Context, in *conversation.Intent) error {
	switch in.Type {
	case conversation.IntentHelp:
		a.showHelp()
	case conversation.IntentStatus:
		a.showSession(a.engine.Status())
	case conversation.IntentList:
		a.showRoutines(ctx)
	case conversation.IntentHistory:
		a.showHistory(ctx)
	case conversation.IntentListen:
		if a.ear == nil {
			a.ui.PrintHint("Voice input is off. Start with -voice to enable it.")
			return nil
		}
		a.ear.Listen()
		a.ui.PrintHint("Listening...")

	case conversation.IntentStart:
		return a.start(ctx, in.Text)
	case conversation.IntentFinish:
		return a.finish(ctx)
	case conversation.IntentDiscard:
		if err := a.engine.DiscardWorkout(ctx); err != nil {
			return err
		}
		a.ui.PrintChat("Workout discarded.")

	case conversation.IntentDone:
		return a.done(ctx, in)
	case conversation.IntentUndo:
		return a.undo(ctx)
	case conversation.IntentAddSet:
		return a.addSet(ctx)

	case conversation.IntentPause:
		return a.onTimer(ctx, a.engine.PauseRest, a.engine.PauseQuickTimer, a.engine.PauseInterval)
	case conversation.IntentResume:
		return a.onTimer(ctx, a.engine.ResumeRest, a.engine.ResumeQuickTimer, a.engine.ResumeInterval)
	case conversation.IntentStop:
		return a.onTimer(ctx, nil, a.engine.StopQuickTimer, a.engine.StopInterval)
	case conversation.IntentAddTime:
		return a.addTime(ctx, in.Seconds)
	case conversation.IntentRestLength:
		if err := a.engine.ChangeRestDuration(ctx, in.Seconds); err != nil {
			return err
		}
		a.ui.PrintHint(fmt.Sprintf("Rest set to %s.", fmtSecs(in.Seconds)))
	case conversation.IntentSkip:
		if st := a.engine.Status().Superset; st != nil && st.Phase == superset.PhaseTransition {
			return a.engine.SupersetAdvance(ctx)
		}
		return a.engine.SkipRest(ctx)
	case conversation.IntentQuick:
		if err := a.engine.StartQuickTimer(ctx, in.Seconds, in.Text); err != nil {
			return err
		}
		a.ui.PrintHint(fmt.Sprintf("Timer set for %s.", fmtSecs(in.Seconds)))
	case conversation.IntentInterval:
		if err := a.engine.StartInterval(ctx, in.Seconds, in.Rest, in.Rounds); err != nil {
			return err
		}
		a.ui.PrintHint(fmt.Sprintf("HIIT: %d rounds of %ds on, %ds off.", in.Rounds, in.Seconds, in.Rest))

	case conversation.IntentSuperset:
		return a.startSuperset(ctx, in.Index)
	case conversation.IntentNext:
		return a.engine.SupersetAdvance(ctx)
	case conversation.IntentOneMore:
		if err := a.engine.SupersetOneMoreRound(ctx); err != nil {
			return err
		}
		a.ui.PrintHint("One more round.")
	case conversation.IntentClose:
		return a.engine.CloseSuperset(ctx)

	case conversation.IntentReorganize:
		l, err := a.engine.BeginReorganize(ctx)
		if err != nil {
			return err
		}
		a.showLayout(l)
		a.ui.PrintHint("move 3 before 1 | group 2 with 1 | ungroup 2 | save | cancel")
	case conversation.IntentMove:
		l, err := a.engine.Reorganize(ctx, in.Move)
		if err != nil {
			return err
		}
		a.showLayout(l)
	case conversation.IntentSave:
		if err := a.engine.SaveReorganize(ctx); err != nil {
			return err
		}
		a.ui.PrintChat("New order saved.")
	case conversation.IntentCancel:
		return a.engine.CancelReorganize(ctx)

	case conversation.IntentUnknown:
		a.ui.PrintHint(fmt.Sprintf("Didn't catch %q. Type 'help' for commands.", in.Text))
	}
	return nil
}

// ── Session commands ─────────────────────────────────────────────

func (a *cliApp) start(ctx context.Context, query string) error {
	r, err := a.routines.Find(ctx, query)
	if err != nil {
		return fmt.Errorf("routine %q: %w", query, err)
	}
	if _, err := a.engine.StartWorkout(ctx, r.ID); err != nil {
		return err
	}
	a.ui.PrintChat(fmt.Sprintf("Starting %s. Let's go.", r.Name))
	a.showSession(a.engine.Status())
	return nil
}

func (a *cliApp) finish(ctx context.Context) error {
	res, err := a.engine.EndWorkout(ctx)
	if err != nil {
		return err
	}
	if res.Entry == nil {
		a.ui.PrintChat("Workout ended. Nothing was completed, so nothing was logged.")
		return nil
	}
	dur := time.Duration(res.Entry.EndTime-res.Entry.StartTime) * time.Millisecond
	a.ui.PrintChat(fmt.Sprintf("%s done in %s. Volume %.0f kg.", res.Entry.RoutineName, dur.Round(time.Minute), res.Entry.TotalVolume))
	switch res.PRCount {
	case 0:
	case 1:
		a.ui.PrintChat("New personal record!")
	default:
		a.ui.PrintChat(fmt.Sprintf("%d new personal records!", res.PRCount))
	}
	return nil
}

// done completes the next set: the superset player's current set when a
// player is open, otherwise the first incomplete set in the session.
func (a *cliApp) done(ctx context.Context, in *conversation.Intent) error {
	st := a.engine.Status()
	if st.Session == nil {
		return domain.ErrNoActiveSession
	}

	if sp := st.Superset; sp != nil {
		weight, reps := in.Weight, in.Reps
		if weight == 0 && reps == 0 {
			if set := playerSet(st.Session, sp); set != nil {
				weight, reps = set.Weight, set.Reps
			}
		}
		if err := a.engine.SupersetCompleteSet(ctx, weight, reps); err != nil {
			return err
		}
		a.ui.PrintLine(fmt.Sprintf("%s round %d: %s", a.exerciseName(st.Session, sp.ExerciseID), sp.Round+1, fmtLoad(weight, reps, 0)))
		return nil
	}

	ex, set := nextIncomplete(st.Session)
	if set == nil {
		return fmt.Errorf("every set is already done: %w", domain.ErrInvalidInput)
	}

	var patch engine.SetPatch
	if in.Weight > 0 {
		patch.Weight = &in.Weight
	}
	if in.Reps > 0 {
		patch.Reps = &in.Reps
	}
	if in.Seconds > 0 {
		patch.Time = &in.Seconds
	}
	if patch != (engine.SetPatch{}) {
		if err := a.engine.UpdateSet(ctx, ex.ID, set.ID, patch); err != nil {
			return err
		}
	}
	if err := a.engine.SetCompletion(ctx, ex.ID, set.ID, true); err != nil {
		return err
	}

	after := a.engine.Status()
	_, cur := after.Session.FindExercise(ex.ID)
	idx, s := cur.FindSet(set.ID)
	a.ui.PrintLine(fmt.Sprintf("%s set %d: %s", a.catalog.Name(ex.ExerciseID), idx+1, fmtLoad(s.Weight, s.Reps, s.Time)))
	if rt := after.RestTimer; rt != nil {
		a.ui.PrintHint(fmt.Sprintf("Rest %s.", fmtSecs(rt.TotalDuration)))
	}
	return nil
}

func (a *cliApp) undo(ctx context.Context) error {
	s := a.engine.Snapshot()
	if s == nil {
		return domain.ErrNoActiveSession
	}
	ex, set := lastCompleted(s)
	if set == nil {
		return fmt.Errorf("no completed set to undo: %w", domain.ErrInvalidInput)
	}
	if err := a.engine.SetCompletion(ctx, ex.ID, set.ID, false); err != nil {
		return err
	}
	a.ui.PrintHint(fmt.Sprintf("Reopened %s set %d.", a.catalog.Name(ex.ExerciseID), setIndex(ex, set.ID)+1))
	return nil
}

func (a *cliApp) addSet(ctx context.Context) error {
	s := a.engine.Snapshot()
	if s == nil {
		return domain.ErrNoActiveSession
	}
	if len(s.Exercises) == 0 {
		return fmt.Errorf("session has no exercises: %w", domain.ErrInvalidInput)
	}
	ex, _ := nextIncomplete(s)
	if ex == nil {
		ex = &s.Exercises[len(s.Exercises)-1]
	}
	if _, err := a.engine.AddSet(ctx, ex.ID); err != nil {
		return err
	}
	a.ui.PrintHint(fmt.Sprintf("Added a set to %s.", a.catalog.Name(ex.ExerciseID)))
	return nil
}

func (a *cliApp) startSuperset(ctx context.Context, index int) error {
	s := a.engine.Snapshot()
	if s == nil {
		return domain.ErrNoActiveSession
	}
	ids := supersetOrder(s)
	if index < 0 || index >= len(ids) {
		return fmt.Errorf("superset %d of %d: %w", index+1, len(ids), domain.ErrNotFound)
	}
	st, err := a.engine.StartSuperset(ctx, ids[index])
	if err != nil {
		return err
	}
	a.ui.PrintChat(fmt.Sprintf("%s: round %d of %d, starting with %s.", st.Name, st.Round+1, st.DisplayRounds, a.exerciseName(s, st.ExerciseID)))
	return nil
}

// ── Timer commands ───────────────────────────────────────────────

// onTimer applies a command to the first running timer: rest, then
// quick, then interval. A nil command skips that timer.
func (a *cliApp) onTimer(ctx context.Context, rest, quick, interval func(context.Context) error) error {
	running := map[string]bool{}
	for _, t := range a.engine.Status().Timers {
		running[t.Kind] = true
	}
	switch {
	case rest != nil && running["rest"]:
		return rest(ctx)
	case running["quick"]:
		return quick(ctx)
	case running["interval"]:
		return interval(ctx)
	}
	return domain.ErrNoTimer
}

func (a *cliApp) addTime(ctx context.Context, seconds int) error {
	st := a.engine.Status()
	switch {
	case st.Superset != nil && st.Superset.Phase == superset.PhaseTransition:
		return a.engine.SupersetAddTime(ctx, seconds)
	case st.RestTimer != nil:
		return a.engine.AddRestTime(ctx, seconds)
	}
	return a.engine.AddQuickTime(ctx, seconds)
}

// ── Output ───────────────────────────────────────────────────────

func (a *cliApp) showError(err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		a.ui.PrintUrgent("Can't finish yet. These sets need values:")
		s := a.engine.Snapshot()
		for _, is := range verr.Issues {
			a.ui.PrintLine(fmt.Sprintf("%s set %d: %s", a.exerciseName(s, is.ExerciseID), is.SetIndex+1, is.Reason))
		}
	case errors.Is(err, domain.ErrNoActiveSession):
		a.ui.PrintHint("No workout running. Type 'list' to pick a routine.")
	case errors.Is(err, domain.ErrNoTimer):
		a.ui.PrintHint("No timer running.")
	case errors.Is(err, domain.ErrNotReorganizing):
		a.ui.PrintHint("Type 'reorganize' first.")
	case errors.Is(err, domain.ErrInvalidPhase):
		a.ui.PrintHint("That doesn't apply right now.")
	default:
		a.ui.PrintUrgent(err.Error())
	}
}

func (a *cliApp) showHelp() {
	a.ui.PrintHeading("Commands")
	for _, l := range []string{
		"list | start <routine> | status | finish | discard | history",
		"done [80x8 | 12 reps | 45s] | undo | add set",
		"pause | resume | +30 | rest 120 | skip",
		"quick 300 [label] | hiit 40/20x8 | stop",
		"superset <n> | next | more | close",
		"reorganize | move 3 before 1 | group 2 with 1 | ungroup 2 | save | cancel",
		"listen | quit",
	} {
		a.ui.PrintHint(l)
	}
}

func (a *cliApp) showRoutines(ctx context.Context) {
	list, err := a.routines.List(ctx)
	if err != nil {
		a.showError(err)
		return
	}
	for _, r := range list {
		a.ui.PrintLine(fmt.Sprintf("%-22s %d exercises", r.Name, r.ExerciseCount))
	}
	a.ui.PrintHint("Type 'start <name>' to begin.")
}

func (a *cliApp) showSession(st engine.Status) {
	s := st.Session
	if s == nil {
		a.ui.PrintHint("No workout running.")
		return
	}
	a.ui.PrintHeading(fmt.Sprintf("%s (%d sets done)", s.RoutineName, s.CompletedSetCount()))
	for i, ex := range s.Exercises {
		done := 0
		for _, set := range ex.Sets {
			if set.IsComplete {
				done++
			}
		}
		line := fmt.Sprintf("%d. %s %d/%d", i+1, a.catalog.Name(ex.ExerciseID), done, len(ex.Sets))
		if ss, ok := s.Supersets[ex.SupersetID]; ok {
			line += "  [" + ss.Name + "]"
		}
		a.ui.PrintLine(line)
	}
}

func (a *cliApp) showLayout(l reorganize.Layout) {
	for i, ex := range l.Exercises {
		line := fmt.Sprintf("%d. %s", i+1, a.catalog.Name(ex.ExerciseID))
		if ss, ok := l.Supersets[ex.SupersetID]; ok {
			line += "  [" + ss.Name + "]"
		}
		a.ui.PrintLine(line)
	}
}

func (a *cliApp) showHistory(ctx context.Context) {
	entries, err := a.history.List(ctx)
	if err != nil {
		a.showError(err)
		return
	}
	if len(entries) == 0 {
		a.ui.PrintHint("No workouts logged yet.")
		return
	}
	for _, e := range entries[:min(5, len(entries))] {
		day := time.UnixMilli(e.StartTime).Format("Mon Jan 2")
		a.ui.PrintLine(fmt.Sprintf("%s  %-18s %6.0f kg  %d PR", day, e.RoutineName, e.TotalVolume, e.PRCount))
	}
}

func (a *cliApp) exerciseName(s *domain.WorkoutSession, exerciseID string) string {
	if s != nil {
		if _, ex := s.FindExercise(exerciseID); ex != nil {
			return a.catalog.Name(ex.ExerciseID)
		}
	}
	return exerciseID
}

// ── Helpers ──────────────────────────────────────────────────────

// nextIncomplete returns the first incomplete set in session order.
func nextIncomplete(s *domain.WorkoutSession) (*domain.WorkoutExercise, *domain.PerformedSet) {
	for i := range s.Exercises {
		ex := &s.Exercises[i]
		for j := range ex.Sets {
			if !ex.Sets[j].IsComplete {
				return ex, &ex.Sets[j]
			}
		}
	}
	return nil, nil
}

// lastCompleted returns the most recently completed set.
func lastCompleted(s *domain.WorkoutSession) (*domain.WorkoutExercise, *domain.PerformedSet) {
	var bestEx *domain.WorkoutExercise
	var best *domain.PerformedSet
	for i := range s.Exercises {
		ex := &s.Exercises[i]
		for j := range ex.Sets {
			set := &ex.Sets[j]
			if set.IsComplete && (best == nil || set.CompletedAt >= best.CompletedAt) {
				bestEx, best = ex, set
			}
		}
	}
	return bestEx, best
}

// supersetOrder lists superset IDs in the order their first member
// appears.
func supersetOrder(s *domain.WorkoutSession) []string {
	var ids []string
	seen := map[string]bool{}
	for _, ex := range s.Exercises {
		if ex.SupersetID == "" || seen[ex.SupersetID] {
			continue
		}
		seen[ex.SupersetID] = true
		ids = append(ids, ex.SupersetID)
	}
	return ids
}

// playerSet returns the set the superset player is on, if it exists yet.
func playerSet(s *domain.WorkoutSession, st *superset.State) *domain.PerformedSet {
	_, ex := s.FindExercise(st.ExerciseID)
	if ex == nil || st.Round >= len(ex.Sets) {
		return nil
	}
	return &ex.Sets[st.Round]
}

func setIndex(ex *domain.WorkoutExercise, setID string) int {
	i, _ := ex.FindSet(setID)
	return i
}

func fmtLoad(weight float64, reps, secs int) string {
	switch {
	case secs > 0:
		return fmtSecs(secs)
	case weight > 0:
		return fmt.Sprintf("%gkg x %d", weight, reps)
	default:
		return fmt.Sprintf("%d reps", reps)
	}
}

func fmtSecs(secs int) string {
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs%60 == 0:
		return fmt.Sprintf("%dm", secs/60)
	default:
		return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
	}
}
