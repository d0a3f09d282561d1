package model

import "strings"

// Path segments with a fixed meaning.
const (
	RootSegment     = "main"
	SegmentSettings = "settings"
	SegmentMenus    = "menus"
	SegmentActions  = "actions"

	LeafAddMenu   = "_add_menu"
	LeafAddButton = "_add_button"
	LeafAddAction = "_add_action"
	LeafAddStep   = "_add_step"
)

const pathSeparator = "/"

// Path is an end user's position in the menu tree, always rooted at
// RootSegment. Values are never mutated in place; Push and Pop return copies.
type Path []string

func RootPath() Path { return Path{RootSegment} }

// ParsePath splits a stored path, dropping empty segments. An empty input
// yields the root path.
func ParsePath(s string) Path {
	parts := strings.Split(s, pathSeparator)
	out := make(Path, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return RootPath()
	}
	return out
}

func (p Path) String() string { return strings.Join(p, pathSeparator) }

func (p Path) IsRoot() bool { return len(p) == 1 && p[0] == RootSegment }

func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Push appends a segment. Empty segments are ignored.
func (p Path) Push(segment string) Path {
	segment = strings.TrimSpace(segment)
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	if segment == "" {
		return out
	}
	return append(out, segment)
}

// Pop removes the last segment. The root is never popped.
func (p Path) Pop() Path {
	n := len(p)
	if n > 1 {
		n--
	}
	out := make(Path, n)
	copy(out, p[:n])
	return out
}

func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}
