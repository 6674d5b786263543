package users

import (
	"context"
	"strings"
	"sync"

	"useradmin/apperrors"
	"useradmin/pkg/metrics"
)

type Tab string

const (
	TabList    Tab = "list"
	TabCreate  Tab = "create"
	TabUpdate  Tab = "update"
	TabDetails Tab = "details"
	TabDocs    Tab = "docs"
)

// Tabs is the navigation order
var Tabs = []Tab{TabList, TabCreate, TabUpdate, TabDetails, TabDocs}

var tabTitles = map[Tab]string{
	TabList:    "Users List",
	TabCreate:  "Add User",
	TabUpdate:  "Update User",
	TabDetails: "User Details",
	TabDocs:    "API Documentation",
}

// tabAliases accepts the element ids used by the browser frontend
var tabAliases = map[string]Tab{
	"users-list":   TabList,
	"add-user":     TabCreate,
	"update-user":  TabUpdate,
	"user-details": TabDetails,
	"api-docs":     TabDocs,
}

// ElementID is the id of the tab's panel in the browser frontend
func (t Tab) ElementID() string {
	for alias, tab := range tabAliases {
		if tab == t {
			return alias
		}
	}
	return string(t)
}

func (t Tab) Title() string {
	if title, ok := tabTitles[t]; ok {
		return title
	}
	return "User Management"
}

// TabTitles returns a copy of the title table, keyed by tab name
func TabTitles() map[string]string {
	out := make(map[string]string, len(tabTitles))
	for t, title := range tabTitles {
		out[string(t)] = title
	}
	return out
}

func ParseTab(s string) (Tab, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := tabTitles[Tab(s)]; ok {
		return Tab(s), nil
	}
	if t, ok := tabAliases[s]; ok {
		return t, nil
	}
	return "", apperrors.NewBadRequest("Unknown tab: " + s).WithDetails("tab", s)
}

// Navigator holds the single active tab. Entering a tab runs its hook;
// there is no history.
type Navigator struct {
	mu       sync.Mutex
	active   Tab
	hooks    map[Tab]func(ctx context.Context)
	onSwitch func(Tab)
}

func NewNavigator(onSwitch func(Tab)) *Navigator {
	if onSwitch == nil {
		onSwitch = func(Tab) {}
	}
	return &Navigator{
		hooks:    make(map[Tab]func(ctx context.Context)),
		onSwitch: onSwitch,
	}
}

// OnEnter registers the hook run every time tab becomes active
func (n *Navigator) OnEnter(tab Tab, fn func(ctx context.Context)) {
	n.mu.Lock()
	n.hooks[tab] = fn
	n.mu.Unlock()
}

// Switch activates tab. Re-entering the active tab runs its hook again,
// so selecting the list tab always refetches.
func (n *Navigator) Switch(ctx context.Context, tab Tab) error {
	if _, ok := tabTitles[tab]; !ok {
		return apperrors.NewBadRequest("Unknown tab: " + string(tab)).WithDetails("tab", string(tab))
	}

	n.mu.Lock()
	n.active = tab
	hook := n.hooks[tab]
	n.mu.Unlock()

	metrics.RecordTabSwitch(string(tab))
	n.onSwitch(tab)
	if hook != nil {
		hook(ctx)
	}
	return nil
}

// Active returns the current tab, or "" before the first switch
func (n *Navigator) Active() Tab {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}
