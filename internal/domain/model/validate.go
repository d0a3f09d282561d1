package model

import (
	"errors"
	"regexp"
	"strings"
)

// CommandStart resets a conversation to the root menu from any state.
const CommandStart = "/start"

// Reply keyboard labels with a fixed meaning.
const (
	LabelSettings       = "Settings"
	LabelBack           = "Back"
	LabelMenuSettings   = "Menu settings"
	LabelAddMenu        = "Add menu"
	LabelAddButton      = "Add button"
	LabelActionSettings = "Action settings"
	LabelAddAction      = "Add action"
	LabelAddStep        = "Add step"
	LabelDeleteAction   = "Delete action"
)

var reservedLabels = []string{
	LabelSettings, LabelBack, LabelMenuSettings, LabelAddMenu, LabelAddButton,
	LabelActionSettings, LabelAddAction, LabelAddStep, LabelDeleteAction,
}

var reservedNames = map[string]struct{}{
	RootSegment:     {},
	SegmentSettings: {},
	SegmentMenus:    {},
	SegmentActions:  {},
	"back":          {},
}

var namePattern = regexp.MustCompile(`^[A-Za-z]+$`)

var (
	ErrNameAlphabet  = errors.New("name must contain latin letters only")
	ErrNameReserved  = errors.New("name is reserved")
	ErrEmptyText     = errors.New("text must not be empty")
	ErrLabelReserved = errors.New("label is reserved")
)

// IsReservedLabel reports whether text is one of the fixed keyboard labels.
func IsReservedLabel(text string) bool {
	for _, l := range reservedLabels {
		if text == l {
			return true
		}
	}
	return false
}

func IsReservedName(name string) bool {
	_, ok := reservedNames[strings.ToLower(name)]
	return ok
}

// ValidateName checks a menu or action name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return ErrNameAlphabet
	}
	if IsReservedName(name) {
		return ErrNameReserved
	}
	return nil
}

func ValidateText(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyText
	}
	return nil
}

func ValidateLabel(label string) error {
	if err := ValidateText(label); err != nil {
		return err
	}
	if l := strings.TrimSpace(label); IsReservedLabel(l) || l == CommandStart {
		return ErrLabelReserved
	}
	return nil
}
