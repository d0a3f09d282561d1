package model

// EndUser is a Telegram user talking to one tenant bot. Path is the whole
// conversation state.
type EndUser struct {
	ID         int64
	TenantID   int64
	TelegramID int64
	Path       Path
}

func NewEndUser(tenantID, telegramID int64) *EndUser {
	return &EndUser{
		TenantID:   tenantID,
		TelegramID: telegramID,
		Path:       RootPath(),
	}
}

func (u *EndUser) IsZero() bool { return u == nil || u.ID == 0 }
