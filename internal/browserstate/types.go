// Package browserstate exposes an alias-addressed view of the browser's
// tabs and relays typed commands to the in-page content script, with
// navigation detection and retry.
package browserstate

import "time"

// HistoryEntry is one visited URL in a tab's linear navigation history.
type HistoryEntry struct {
	URL       string
	Title     string
	VisitedAt time.Time
}

// TabRecord is the registry's view of one browser tab.
type TabRecord struct {
	TabID             string
	Alias             string
	WindowID          string
	LastVisitedAt     time.Time
	History           []HistoryEntry
	HistoryIndex      int
	PendingNavigation bool
	LastActivatedByUs bool
	LastNetworkError  *NetworkError
}

// NetworkError is the most recent main-frame network error recorded for
// a tab, used to enrich a BrowserErrorPage result.
type NetworkError struct {
	Code string
	At   time.Time
}

const networkErrorRetentionWindow = 30 * time.Second

// recent reports whether the recorded network error is still within the
// bridge's 30s lookback window.
func (e *NetworkError) recent(now time.Time) bool {
	return e != nil && now.Sub(e.At) <= networkErrorRetentionWindow
}

const maxHistoryEntries = 50

// CurrentURL returns the URL at the tab's current history position, or
// "" if the tab has no history yet.
func (t *TabRecord) CurrentURL() string {
	if t.HistoryIndex < 0 || t.HistoryIndex >= len(t.History) {
		return ""
	}
	return t.History[t.HistoryIndex].URL
}

// recordVisit appends a new navigation, truncating any forward branch,
// and caps history at maxHistoryEntries by dropping the oldest entry.
func (t *TabRecord) recordVisit(url, title string, at time.Time) {
	if t.HistoryIndex >= 0 && t.HistoryIndex < len(t.History) && t.History[t.HistoryIndex].URL == url {
		return
	}
	t.History = append(t.History[:t.HistoryIndex+1], HistoryEntry{URL: url, Title: title, VisitedAt: at})
	t.HistoryIndex = len(t.History) - 1
	if len(t.History) > maxHistoryEntries {
		drop := len(t.History) - maxHistoryEntries
		t.History = t.History[drop:]
		t.HistoryIndex -= drop
	}
	t.LastVisitedAt = at
}
