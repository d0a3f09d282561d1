package model

import (
	"strings"

	"telegram-menu-builder/internal/domain"
)

type Menu struct {
	ID          int64
	TenantID    int64
	Name        string
	Description string
}

type ButtonKind string

const (
	ButtonEnterMenu ButtonKind = "menu"
	ButtonRunAction ButtonKind = "action"
)

func ParseButtonKind(s string) (ButtonKind, error) {
	switch ButtonKind(strings.ToLower(strings.TrimSpace(s))) {
	case ButtonEnterMenu:
		return ButtonEnterMenu, nil
	case ButtonRunAction:
		return ButtonRunAction, nil
	}
	return "", domain.ErrInvalidArgument
}

// Button belongs to a menu. Reference names a Menu or an Action depending
// on Kind and is checked when the button is created.
type Button struct {
	ID        int64
	MenuID    int64
	Label     string
	Kind      ButtonKind
	Reference string
}
