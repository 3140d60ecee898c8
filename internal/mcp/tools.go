package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hammamikhairi/ottolift/internal/session"
)

// --- Tool definitions ---

var toolGetActiveSession = mcp.NewTool("get_active_session",
	mcp.WithDescription("Return the workout in progress: routine, exercises, sets with weight/reps/time and completion, and superset groups."),
)

var toolGetTimers = mcp.NewTool("get_timers",
	mcp.WithDescription("Return every running timer (rest, quick, interval, superset transition) with remaining milliseconds, plus the superset player state."),
)

var toolListHistory = mcp.NewTool("list_history",
	mcp.WithDescription("List finished workouts, most recent first, with PR count and total volume."),
	mcp.WithNumber("limit", mcp.Description("Maximum entries to return. Defaults to 10.")),
	mcp.WithString("routine", mcp.Description("Filter by routine name (partial match).")),
)

var toolGetPersonalBests = mcp.NewTool("get_personal_bests",
	mcp.WithDescription("Best weight, reps and single-set volume per catalog exercise across all finished workouts. Only completed normal sets count."),
	mcp.WithString("exercise", mcp.Description("Catalog exercise ID (e.g. 'bench-press'). Omit for all exercises.")),
)

// --- Tool handlers ---

func (h *handlers) getActiveSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := h.status.Status()
	if st.Session == nil {
		return mcp.NewToolResultText("No workout in progress."), nil
	}
	return jsonResult(map[string]any{
		"session":   st.Session,
		"minimized": st.Minimized,
	})
}

func (h *handlers) getTimers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := h.status.Status()
	return jsonResult(map[string]any{
		"timers":    st.Timers,
		"restTimer": st.RestTimer,
		"superset":  st.Superset,
	})
}

func (h *handlers) listHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := h.history.List(ctx)
	if err != nil {
		h.log.Error("list_history: %v", err)
		return mcp.NewToolResultError("history unavailable: " + err.Error()), nil
	}

	limit := req.GetInt("limit", 10)
	if limit <= 0 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}
	filter := strings.ToLower(req.GetString("routine", ""))

	type summary struct {
		ID          string  `json:"id"`
		RoutineName string  `json:"routineName"`
		StartTime   int64   `json:"startTime"`
		EndTime     int64   `json:"endTime"`
		Exercises   int     `json:"exercises"`
		PRCount     int     `json:"prCount"`
		TotalVolume float64 `json:"totalVolume"`
	}
	out := make([]summary, 0, min(limit, len(entries)))
	for _, e := range entries {
		if filter != "" && !strings.Contains(strings.ToLower(e.RoutineName), filter) {
			continue
		}
		out = append(out, summary{
			ID:          e.ID,
			RoutineName: e.RoutineName,
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
			Exercises:   len(e.Exercises),
			PRCount:     e.PRCount,
			TotalVolume: e.TotalVolume,
		})
		if len(out) == limit {
			break
		}
	}
	return jsonResult(out)
}

func (h *handlers) getPersonalBests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := h.history.List(ctx)
	if err != nil {
		h.log.Error("get_personal_bests: %v", err)
		return mcp.NewToolResultError("history unavailable: " + err.Error()), nil
	}
	bests := session.PersonalBests(entries)

	if id := req.GetString("exercise", ""); id != "" {
		b, ok := bests[id]
		if !ok {
			return mcp.NewToolResultError("no completed sets recorded for " + id), nil
		}
		return jsonResult(map[string]session.Bests{id: b})
	}
	return jsonResult(bests)
}

// --- Resource handlers ---

func (h *handlers) activeSession(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(h.status.Status().Session)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
