package models

import "time"

// TabHistoryEntry is one visited URL in a tab's linear navigation history.
type TabHistoryEntry struct {
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	VisitedAt   time.Time `json:"visited_at"`
	AgentDriven bool      `json:"agent_driven"`
}

// Tab is the agent's view of one browser tab: a short alias for reference
// in Action inputs/outputs, plus a linear history the bridge maintains as
// navigations occur.
type Tab struct {
	TabID    string `json:"tab_id"`
	Alias    string `json:"alias"`
	WindowID string `json:"window_id,omitempty"`

	LastVisitedAt time.Time `json:"last_visited_at"`

	History      []TabHistoryEntry `json:"history"`
	HistoryIndex int               `json:"history_index"`

	// PendingNavigation is set when the agent has just issued a navigation
	// command and cleared on the next observed navigation event, so the
	// bridge can tell an agent-initiated navigation apart from one the user
	// triggered (e.g. by clicking a link or using back/forward).
	PendingNavigation bool `json:"pending_navigation"`

	// Content is the most recently captured (and DOM-cleaned) page content
	// for this tab, refreshed on each extractContent call.
	Content string `json:"content,omitempty"`
}

// CurrentURL returns the URL at HistoryIndex, or "" if history is empty.
func (t *Tab) CurrentURL() string {
	if t.HistoryIndex < 0 || t.HistoryIndex >= len(t.History) {
		return ""
	}
	return t.History[t.HistoryIndex].URL
}

// RecordVisit appends a new entry at HistoryIndex+1, truncating any forward
// history the way a real browser does when navigating away from a
// back-stepped position.
func (t *Tab) RecordVisit(entry TabHistoryEntry) {
	t.History = append(t.History[:t.HistoryIndex+1], entry)
	t.HistoryIndex = len(t.History) - 1
	t.LastVisitedAt = entry.VisitedAt
}
