package usecase

import (
	"context"
	"fmt"

	"telegram-menu-builder/internal/domain/model"
)

// labelRule is one row of the reserved-label transition table: the label is
// honoured only in state from, and only for the admin when admin is set.
type labelRule struct {
	from  model.StateKind
	admin bool
	apply func(n *navigationUC, ctx context.Context, s *session, st model.State) (outcome, error)
}

func pushTo(segment string) func(n *navigationUC, ctx context.Context, s *session, st model.State) (outcome, error) {
	return func(n *navigationUC, ctx context.Context, s *session, _ model.State) (outcome, error) {
		return n.show(ctx, s, s.user.Path.Push(segment), "")
	}
}

var labelRules = map[string]labelRule{
	model.LabelSettings:       {from: model.StateRoot, admin: true, apply: pushTo(model.SegmentSettings)},
	model.LabelMenuSettings:   {from: model.StateSettings, admin: true, apply: pushTo(model.SegmentMenus)},
	model.LabelActionSettings: {from: model.StateSettings, admin: true, apply: pushTo(model.SegmentActions)},
	model.LabelAddMenu:        {from: model.StateMenuList, admin: true, apply: pushTo(model.LeafAddMenu)},
	model.LabelAddButton:      {from: model.StateEditingMenu, admin: true, apply: pushTo(model.LeafAddButton)},
	model.LabelAddAction:      {from: model.StateActionList, admin: true, apply: pushTo(model.LeafAddAction)},
	model.LabelAddStep:        {from: model.StateEditingAction, admin: true, apply: pushTo(model.LeafAddStep)},
	model.LabelDeleteAction:   {from: model.StateEditingAction, admin: true, apply: (*navigationUC).deleteAction},
}

// handleLabel resolves a reserved label against the current state. A label
// used outside its state, or by someone who may not use it, is not a
// transition and produces no reply.
func (n *navigationUC) handleLabel(ctx context.Context, s *session, st model.State, label string) (outcome, error) {
	if label == model.LabelBack {
		if st.Kind == model.StateRoot {
			return noTransition, nil
		}
		if st.IsAdminArea() && !s.admin {
			return noTransition, nil
		}
		return n.show(ctx, s, s.user.Path.Pop(), "")
	}

	rule, ok := labelRules[label]
	if !ok || rule.from != st.Kind {
		return noTransition, nil
	}
	if rule.admin && !s.admin {
		return noTransition, nil
	}
	return rule.apply(n, ctx, s, st)
}

// deleteAction removes every step of the action being edited. Actions still
// used by a button are kept so traversal never meets a dangling reference.
func (n *navigationUC) deleteAction(ctx context.Context, s *session, st model.State) (outcome, error) {
	refs, err := n.menus.CountReferences(ctx, s.tx, s.tenant.ID, model.ButtonRunAction, st.Name)
	if err != nil {
		return noTransition, err
	}
	if refs > 0 {
		screen, err := n.Render(ctx, s.tx, s.tenant.ID, s.user.Path, s.admin)
		if err != nil {
			return noTransition, err
		}
		msg := fmt.Sprintf("Action %s is used by %d button(s) and cannot be deleted.", st.Name, refs)
		return outcome{replies: []reply{{text: msg, keyboard: screen.Keyboard}}}, nil
	}

	deleted, err := n.actions.Delete(ctx, s.tx, s.tenant.ID, st.Name)
	if err != nil {
		return noTransition, err
	}
	n.log.Info().Int64("bot_id", s.tenant.ID).Str("action", st.Name).Int64("steps", deleted).Msg("action deleted")
	return n.show(ctx, s, s.user.Path.Pop(), fmt.Sprintf("Action %s deleted.", st.Name))
}
