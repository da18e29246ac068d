package browserstate

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/browserpilot/agent/internal/runtime"
)

// Registry is the process-wide tab directory: it mints stable aliases
// for tab ids the first time they're seen and tracks each tab's linear
// navigation history. It is a singleton collaborator passed into the
// bridge, not an ambient global (spec §9).
type Registry struct {
	mu           sync.Mutex
	tabs         map[string]*TabRecord
	aliasCounter int
	tabIDToAlias map[string]string
	aliasToTabID map[string]string
}

// NewRegistry creates an empty tab registry.
func NewRegistry() *Registry {
	return &Registry{
		tabs:         make(map[string]*TabRecord),
		tabIDToAlias: make(map[string]string),
		aliasToTabID: make(map[string]string),
	}
}

// EnsureTab registers tabID if unseen, minting its alias (t1, t2, ...),
// and returns the record.
func (r *Registry) EnsureTab(tabID, windowID string) *TabRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureTabLocked(tabID, windowID)
}

func (r *Registry) ensureTabLocked(tabID, windowID string) *TabRecord {
	if rec, ok := r.tabs[tabID]; ok {
		return rec
	}
	r.aliasCounter++
	alias := "t" + strconv.Itoa(r.aliasCounter)
	rec := &TabRecord{TabID: tabID, Alias: alias, WindowID: windowID, HistoryIndex: -1}
	r.tabs[tabID] = rec
	r.tabIDToAlias[tabID] = alias
	r.aliasToTabID[alias] = tabID
	return rec
}

// RemoveTab drops tabID from the registry. Its alias is never re-minted
// for a different tab id (alias bijection invariant, spec §8).
func (r *Registry) RemoveTab(tabID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.tabs[tabID]
	if !ok {
		return
	}
	delete(r.tabs, tabID)
	delete(r.aliasToTabID, rec.Alias)
	delete(r.tabIDToAlias, tabID)
}

// ResolveTabID implements the spec's resolveTabId: numeric -> itself;
// alias -> mapped id; numeric string -> parsed; else InvalidTab.
func (r *Registry) ResolveTabID(value string) (string, error) {
	value = normalizeAliasInput(value)
	r.mu.Lock()
	defer r.mu.Unlock()

	if tabID, ok := r.aliasToTabID[value]; ok {
		return tabID, nil
	}
	if _, ok := r.tabs[value]; ok {
		return value, nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		canonical := strconv.Itoa(n)
		if _, ok := r.tabs[canonical]; ok {
			return canonical, nil
		}
	}
	return "", runtime.NewError(runtime.KindInvalidTab, "unknown tab alias or id: "+value)
}

// GetTabAlias returns the alias minted for tabID, or "" if unknown.
func (r *Registry) GetTabAlias(tabID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tabIDToAlias[tabID]
}

// Get returns the tab record for tabID.
func (r *Registry) Get(tabID string) (*TabRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.tabs[tabID]
	return rec, ok
}

// RecordVisit appends a navigation to tabID's history.
func (r *Registry) RecordVisit(tabID, url, title string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.tabs[tabID]; ok {
		rec.recordVisit(url, title, at)
	}
}

// RecordNetworkError stashes the most recent main-frame network error
// for tabID, consumed by BrowserErrorPage enrichment within 30s.
func (r *Registry) RecordNetworkError(tabID, code string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.tabs[tabID]; ok {
		rec.LastNetworkError = &NetworkError{Code: code, At: at}
	}
}

// GoBack/GoForward adjust historyIndex and set the pending-navigation
// flag the commit-observer uses to distinguish agent- from
// user-initiated navigation.
func (r *Registry) GoBack(tabID string) (string, error) {
	return r.shiftHistory(tabID, -1)
}

func (r *Registry) GoForward(tabID string) (string, error) {
	return r.shiftHistory(tabID, 1)
}

func (r *Registry) shiftHistory(tabID string, delta int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.tabs[tabID]
	if !ok {
		return "", runtime.NewError(runtime.KindInvalidTab, "unknown tab id: "+tabID)
	}
	next := rec.HistoryIndex + delta
	if next < 0 || next >= len(rec.History) {
		return "", runtime.NewError(runtime.KindInvalidTab, "no history entry in that direction")
	}
	rec.HistoryIndex = next
	rec.PendingNavigation = true
	return rec.History[next].URL, nil
}

// ObserveNavigation is called by the commit-observer whenever a tab's
// URL changes outside an explicit bridge send. If PendingNavigation is
// set (we just called goBack/goForward), it is cleared without
// recording a fresh history entry -- the index adjustment already
// happened. Otherwise it's a user- or page-initiated navigation: if the
// new URL matches a neighbor, treat it like an implicit back/forward;
// else append as a normal visit.
func (r *Registry) ObserveNavigation(tabID, url, title string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.tabs[tabID]
	if !ok {
		return
	}
	if rec.PendingNavigation {
		rec.PendingNavigation = false
		return
	}
	if rec.HistoryIndex > 0 && rec.History[rec.HistoryIndex-1].URL == url {
		rec.HistoryIndex--
		return
	}
	if rec.HistoryIndex+1 < len(rec.History) && rec.History[rec.HistoryIndex+1].URL == url {
		rec.HistoryIndex++
		return
	}
	rec.recordVisit(url, title, at)
}

// MarkActivated records that tabID was last activated by the agent
// itself, so the bridge knows whether an activate-and-wait is needed
// before the next send.
func (r *Registry) MarkActivated(tabID string, byUs bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.tabs[tabID]; ok {
		rec.LastActivatedByUs = byUs
	}
}

func normalizeAliasInput(value string) string {
	return strings.TrimSpace(value)
}
