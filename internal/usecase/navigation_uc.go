package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"telegram-menu-builder/internal/domain"
	"telegram-menu-builder/internal/domain/model"
	"telegram-menu-builder/internal/domain/ports/adapter"
	"telegram-menu-builder/internal/domain/ports/repository"
	"telegram-menu-builder/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

const CommandStart = model.CommandStart

// Event is one inbound text message addressed to a bot.
type Event struct {
	Credential string
	ChatID     int64
	UserID     int64
	Text       string
}

// EventHandler consumes inbound text messages. sent reports whether at
// least one reply went out.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev Event) (sent bool, err error)
}

// Compile-time check
var _ EventHandler = (*navigationUC)(nil)

type reply struct {
	text     string
	keyboard []string
}

// outcome is the result of dispatching one event. A nil path leaves the
// stored path as it is; no replies means the event was ignored.
type outcome struct {
	path    model.Path
	replies []reply
}

var noTransition = outcome{}

// session carries the per-event context shared by every handler.
type session struct {
	tx     repository.Tx
	tenant *model.Tenant
	user   *model.EndUser
	admin  bool
}

type navigationUC struct {
	*Renderer

	tenants repository.TenantRepository
	users   repository.EndUserRepository
	tm      repository.TransactionManager
	bot     adapter.Messenger
	locker  adapter.Locker
	lockTTL time.Duration
	log     *zerolog.Logger
}

// NewNavigationUseCase wires the conversation engine. locker may be nil, in
// which case deliveries for the same end user are not serialized.
func NewNavigationUseCase(
	tenants repository.TenantRepository,
	users repository.EndUserRepository,
	menus repository.MenuRepository,
	actions repository.ActionRepository,
	tm repository.TransactionManager,
	bot adapter.Messenger,
	locker adapter.Locker,
	lockTTL time.Duration,
	logger *zerolog.Logger,
) *navigationUC {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &navigationUC{
		Renderer: NewRenderer(menus, actions),
		tenants:  tenants,
		users:    users,
		tm:       tm,
		bot:      bot,
		locker:   locker,
		lockTTL:  lockTTL,
		log:      logger,
	}
}

// HandleEvent runs one event in a single transaction. The reply is sent
// before commit, so a failed delivery discards the path change and any
// rows created by the event.
func (n *navigationUC) HandleEvent(ctx context.Context, ev Event) (bool, error) {
	defer logging.TraceDuration(n.log, "NavigationUC.HandleEvent")()

	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return false, nil
	}

	tenant, err := n.tenants.FindByToken(ctx, repository.NoTX, ev.Credential)
	if err != nil {
		return false, err
	}
	log := logging.With(logging.WithBotID(logging.WithTgID(ctx, ev.UserID), tenant.ID), n.log)

	unlock := n.lock(ctx, tenant.ID, ev.UserID)
	defer unlock()

	sent := false
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err = n.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		user, err := n.users.FindOrCreate(ctx, tx, tenant.ID, ev.UserID)
		if err != nil {
			return fmt.Errorf("load end user: %w", err)
		}
		s := &session{tx: tx, tenant: tenant, user: user, admin: tenant.IsAdmin(ev.UserID)}

		out, err := n.dispatch(ctx, s, text)
		if err != nil {
			return err
		}
		if out.path != nil && !out.path.Equal(user.Path) {
			if err := n.users.UpdatePath(ctx, tx, user.ID, out.path); err != nil {
				return fmt.Errorf("update path: %w", err)
			}
			log.Debug().Str("from", user.Path.String()).Str("to", out.path.String()).Msg("path changed")
		}
		for _, r := range out.replies {
			if err := n.bot.SendMessage(ctx, tenant.Token, ev.ChatID, r.text, r.keyboard); err != nil {
				log.Warn().Err(err).Msg("reply not delivered, rolling back")
				return err
			}
			sent = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return sent, nil
}

func (n *navigationUC) lock(ctx context.Context, tenantID, userID int64) func() {
	if n.locker == nil {
		return func() {}
	}
	key := fmt.Sprintf("lock:conversation:%d:%d", tenantID, userID)
	token, err := n.locker.TryLock(ctx, key, n.lockTTL)
	if err != nil {
		n.log.Warn().Err(err).Str("key", key).Msg("conversation lock not acquired, continuing unserialized")
		return func() {}
	}
	return func() {
		if err := n.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			n.log.Warn().Err(err).Str("key", key).Msg("conversation unlock failed")
		}
	}
}

// dispatch applies the priority order: /start, reserved labels, data entry,
// traversal. Anything else is ignored.
func (n *navigationUC) dispatch(ctx context.Context, s *session, text string) (outcome, error) {
	if text == CommandStart {
		return n.show(ctx, s, model.RootPath(), "")
	}

	state := model.ParseState(s.user.Path)
	if model.IsReservedLabel(text) {
		return n.handleLabel(ctx, s, state, text)
	}
	if state.IsAdminArea() && !s.admin {
		return noTransition, nil
	}
	if state.IsDataEntry() {
		return n.handleInput(ctx, s, state, text)
	}
	return n.traverse(ctx, s, state, text)
}

// show moves to path and renders it. Paths that do not decode fall back to
// the root screen.
func (n *navigationUC) show(ctx context.Context, s *session, path model.Path, notice string) (outcome, error) {
	if model.ParseState(path).Kind == model.StateInvalid {
		path = model.RootPath()
	}
	screen, err := n.Render(ctx, s.tx, s.tenant.ID, path, s.admin)
	if err != nil {
		return noTransition, err
	}
	if notice != "" {
		screen.Caption = notice + "\n\n" + screen.Caption
	}
	return outcome{path: path, replies: []reply{{text: screen.Caption, keyboard: screen.Keyboard}}}, nil
}

// traverse follows a button under the current menu, or opens an item
// picked from one of the editor lists.
func (n *navigationUC) traverse(ctx context.Context, s *session, state model.State, text string) (outcome, error) {
	switch state.Kind {
	case model.StateRoot, model.StateViewing:
		return n.followButton(ctx, s, menuNameOf(state), text)
	case model.StateMenuList:
		menus, err := n.menus.ListMenus(ctx, s.tx, s.tenant.ID)
		if err != nil {
			return noTransition, err
		}
		for _, m := range menus {
			if m.Name == text {
				return n.show(ctx, s, s.user.Path.Push(m.Name), "")
			}
		}
	case model.StateActionList:
		actions, err := n.actions.ListActions(ctx, s.tx, s.tenant.ID)
		if err != nil {
			return noTransition, err
		}
		for _, a := range actions {
			if a.Name == text {
				return n.show(ctx, s, s.user.Path.Push(a.Name), "")
			}
		}
	}
	return noTransition, nil
}

func (n *navigationUC) followButton(ctx context.Context, s *session, menuName, label string) (outcome, error) {
	menu, err := n.menus.FindMenu(ctx, s.tx, s.tenant.ID, menuName)
	if errors.Is(err, domain.ErrNotFound) {
		return noTransition, fmt.Errorf("%w: menu %q", domain.ErrBrokenReference, menuName)
	}
	if err != nil {
		return noTransition, err
	}
	buttons, err := n.menus.ListButtons(ctx, s.tx, menu.ID)
	if err != nil {
		return noTransition, err
	}

	for _, b := range buttons {
		if b.Label != label {
			continue
		}
		switch b.Kind {
		case model.ButtonEnterMenu:
			if _, err := n.menus.FindMenu(ctx, s.tx, s.tenant.ID, b.Reference); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return noTransition, fmt.Errorf("%w: menu %q", domain.ErrBrokenReference, b.Reference)
				}
				return noTransition, err
			}
			return n.show(ctx, s, s.user.Path.Push(b.Reference), "")
		case model.ButtonRunAction:
			return n.runAction(ctx, s, b.Reference)
		default:
			return noTransition, fmt.Errorf("%w: button kind %q", domain.ErrBrokenReference, b.Kind)
		}
	}
	return noTransition, nil
}

// runAction plays every step in order without moving the path.
func (n *navigationUC) runAction(ctx context.Context, s *session, name string) (outcome, error) {
	steps, err := n.actions.ListSteps(ctx, s.tx, s.tenant.ID, name)
	if err != nil {
		return noTransition, err
	}
	if len(steps) == 0 {
		return noTransition, fmt.Errorf("%w: action %q", domain.ErrBrokenReference, name)
	}
	out := outcome{replies: make([]reply, 0, len(steps))}
	for _, st := range steps {
		out.replies = append(out.replies, reply{text: st.Text})
	}
	return out, nil
}

func menuNameOf(state model.State) string {
	if state.Kind == model.StateRoot {
		return model.RootSegment
	}
	return state.Name
}
