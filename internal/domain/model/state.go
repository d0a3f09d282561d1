package model

import "strings"

type StateKind int

const (
	StateInvalid StateKind = iota
	StateRoot
	StateViewing
	StateSettings
	StateMenuList
	StateAddingMenu
	StateEditingMenu
	StateAddingButton
	StateActionList
	StateAddingAction
	StateEditingAction
	StateAddingSubaction
)

var stateNames = map[StateKind]string{
	StateInvalid:         "invalid",
	StateRoot:            "root",
	StateViewing:         "viewing",
	StateSettings:        "settings",
	StateMenuList:        "menu_list",
	StateAddingMenu:      "adding_menu",
	StateEditingMenu:     "editing_menu",
	StateAddingButton:    "adding_button",
	StateActionList:      "action_list",
	StateAddingAction:    "adding_action",
	StateEditingAction:   "editing_action",
	StateAddingSubaction: "adding_subaction",
}

func (k StateKind) String() string {
	if s, ok := stateNames[k]; ok {
		return s
	}
	return "unknown"
}

// State is the logical position a Path decodes to. Name carries the menu
// or action the state is about, when there is one.
type State struct {
	Kind StateKind
	Name string
}

// IsDataEntry reports whether the next text is treated as form input.
func (s State) IsDataEntry() bool {
	switch s.Kind {
	case StateAddingMenu, StateAddingButton, StateAddingAction, StateAddingSubaction:
		return true
	}
	return false
}

// IsAdminArea reports whether the state lives under the settings subtree.
func (s State) IsAdminArea() bool {
	switch s.Kind {
	case StateRoot, StateViewing, StateInvalid:
		return false
	}
	return true
}

// ParseState decodes a path. Paths that do not fit the settings layout or
// that place a reserved segment inside the menu tree are Invalid.
func ParseState(p Path) State {
	if len(p) == 0 || p[0] != RootSegment {
		return State{Kind: StateInvalid}
	}
	if len(p) == 1 {
		return State{Kind: StateRoot}
	}
	if p[1] == SegmentSettings {
		return parseSettings(p[2:])
	}
	for _, seg := range p[1:] {
		if isReservedSegment(seg) {
			return State{Kind: StateInvalid}
		}
	}
	return State{Kind: StateViewing, Name: p.Last()}
}

func parseSettings(rest Path) State {
	if len(rest) == 0 {
		return State{Kind: StateSettings}
	}
	switch rest[0] {
	case SegmentMenus:
		return parseEditor(rest[1:], LeafAddMenu, LeafAddButton,
			StateMenuList, StateAddingMenu, StateEditingMenu, StateAddingButton)
	case SegmentActions:
		return parseEditor(rest[1:], LeafAddAction, LeafAddStep,
			StateActionList, StateAddingAction, StateEditingAction, StateAddingSubaction)
	}
	return State{Kind: StateInvalid}
}

// parseEditor handles the shared shape of the menus and actions editors:
// list, list/_add_x, list/<name>, list/<name>/_add_y.
func parseEditor(rest Path, addLeaf, childLeaf string, list, adding, editing, addingChild StateKind) State {
	switch len(rest) {
	case 0:
		return State{Kind: list}
	case 1:
		if rest[0] == addLeaf {
			return State{Kind: adding}
		}
		if isReservedSegment(rest[0]) {
			return State{Kind: StateInvalid}
		}
		return State{Kind: editing, Name: rest[0]}
	case 2:
		if isReservedSegment(rest[0]) || rest[1] != childLeaf {
			return State{Kind: StateInvalid}
		}
		return State{Kind: addingChild, Name: rest[0]}
	}
	return State{Kind: StateInvalid}
}

// isReservedSegment matches segments that carry structural meaning. The
// root menu name is allowed as an editor target.
func isReservedSegment(seg string) bool {
	switch strings.ToLower(seg) {
	case SegmentSettings, SegmentMenus, SegmentActions:
		return true
	}
	return strings.HasPrefix(seg, "_")
}
