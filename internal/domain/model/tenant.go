package model

import (
	"strings"
	"time"

	"telegram-menu-builder/internal/domain"
)

// Tenant is a child bot placed under platform control by its administrator.
type Tenant struct {
	ID          int64
	AdminUserID int64
	Token       string
	CreatedAt   time.Time
}

func NewTenant(token string, adminUserID int64) (*Tenant, error) {
	token = strings.TrimSpace(token)
	if token == "" || adminUserID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Tenant{
		AdminUserID: adminUserID,
		Token:       token,
		CreatedAt:   time.Now(),
	}, nil
}

// IsAdmin is the single authorization predicate used by the navigation engine.
func (t *Tenant) IsAdmin(userID int64) bool {
	return t != nil && userID != 0 && t.AdminUserID == userID
}
