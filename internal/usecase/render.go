package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-menu-builder/internal/domain"
	"telegram-menu-builder/internal/domain/model"
	"telegram-menu-builder/internal/domain/ports/repository"
)

// Screen is what a user sees for a path: a caption and the reply keyboard
// labels, one per row.
type Screen struct {
	Caption  string
	Keyboard []string
}

// Renderer turns a path into a Screen. Output depends only on the stored
// menus, buttons and actions, the path and the admin flag.
type Renderer struct {
	menus   repository.MenuRepository
	actions repository.ActionRepository
}

func NewRenderer(menus repository.MenuRepository, actions repository.ActionRepository) *Renderer {
	return &Renderer{menus: menus, actions: actions}
}

func (r *Renderer) Render(ctx context.Context, tx repository.Tx, tenantID int64, path model.Path, isAdmin bool) (Screen, error) {
	st := model.ParseState(path)
	switch st.Kind {
	case model.StateRoot:
		screen, err := r.menuScreen(ctx, tx, tenantID, model.RootSegment)
		if err != nil {
			return Screen{}, err
		}
		if isAdmin {
			screen.Keyboard = append(screen.Keyboard, model.LabelSettings)
		}
		return screen, nil

	case model.StateViewing:
		screen, err := r.menuScreen(ctx, tx, tenantID, st.Name)
		if err != nil {
			return Screen{}, err
		}
		screen.Keyboard = append(screen.Keyboard, model.LabelBack)
		return screen, nil

	case model.StateSettings:
		return Screen{
			Caption:  "Settings",
			Keyboard: []string{model.LabelMenuSettings, model.LabelActionSettings, model.LabelBack},
		}, nil

	case model.StateMenuList:
		return r.menuList(ctx, tx, tenantID)

	case model.StateEditingMenu:
		return r.menuEditor(ctx, tx, tenantID, st.Name)

	case model.StateActionList:
		return r.actionList(ctx, tx, tenantID)

	case model.StateEditingAction:
		return r.actionEditor(ctx, tx, tenantID, st.Name)

	case model.StateAddingMenu:
		return prompt("Send the new menu as name;description. The name may contain latin letters only."), nil
	case model.StateAddingButton:
		return prompt(fmt.Sprintf("Send the new button of %s as label;menu|action;target. The target menu or action must already exist.", st.Name)), nil
	case model.StateAddingAction:
		return prompt("Send the new action as name;first message. The name may contain latin letters only."), nil
	case model.StateAddingSubaction:
		return prompt(fmt.Sprintf("Send the text of the next message of %s.", st.Name)), nil
	}
	return Screen{}, fmt.Errorf("%w: path %q", domain.ErrInvalidArgument, path.String())
}

func prompt(caption string) Screen {
	return Screen{Caption: caption, Keyboard: []string{model.LabelBack}}
}

func (r *Renderer) menuScreen(ctx context.Context, tx repository.Tx, tenantID int64, name string) (Screen, error) {
	menu, err := r.menus.FindMenu(ctx, tx, tenantID, name)
	if errors.Is(err, domain.ErrNotFound) {
		return Screen{}, fmt.Errorf("%w: menu %q", domain.ErrBrokenReference, name)
	}
	if err != nil {
		return Screen{}, err
	}
	buttons, err := r.menus.ListButtons(ctx, tx, menu.ID)
	if err != nil {
		return Screen{}, err
	}

	kb := make([]string, 0, len(buttons)+1)
	for _, b := range buttons {
		kb = append(kb, b.Label)
	}
	caption := menu.Description
	if strings.TrimSpace(caption) == "" {
		caption = menu.Name
	}
	return Screen{Caption: caption, Keyboard: kb}, nil
}

func (r *Renderer) menuList(ctx context.Context, tx repository.Tx, tenantID int64) (Screen, error) {
	menus, err := r.menus.ListMenus(ctx, tx, tenantID)
	if err != nil {
		return Screen{}, err
	}
	var b strings.Builder
	b.WriteString("Menus:")
	kb := make([]string, 0, len(menus)+2)
	for _, m := range menus {
		fmt.Fprintf(&b, "\n• %s: %s", m.Name, m.Description)
		kb = append(kb, m.Name)
	}
	kb = append(kb, model.LabelAddMenu, model.LabelBack)
	return Screen{Caption: b.String(), Keyboard: kb}, nil
}

func (r *Renderer) menuEditor(ctx context.Context, tx repository.Tx, tenantID int64, name string) (Screen, error) {
	menu, err := r.menus.FindMenu(ctx, tx, tenantID, name)
	if errors.Is(err, domain.ErrNotFound) {
		return Screen{}, fmt.Errorf("%w: menu %q", domain.ErrBrokenReference, name)
	}
	if err != nil {
		return Screen{}, err
	}
	buttons, err := r.menus.ListButtons(ctx, tx, menu.ID)
	if err != nil {
		return Screen{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Menu %s: %s", menu.Name, menu.Description)
	if len(buttons) == 0 {
		b.WriteString("\nNo buttons yet.")
	}
	for i, btn := range buttons {
		fmt.Fprintf(&b, "\n%d. %s → %s %s", i+1, btn.Label, btn.Kind, btn.Reference)
	}
	return Screen{Caption: b.String(), Keyboard: []string{model.LabelAddButton, model.LabelBack}}, nil
}

func (r *Renderer) actionList(ctx context.Context, tx repository.Tx, tenantID int64) (Screen, error) {
	actions, err := r.actions.ListActions(ctx, tx, tenantID)
	if err != nil {
		return Screen{}, err
	}
	var b strings.Builder
	b.WriteString("Actions:")
	if len(actions) == 0 {
		b.WriteString("\nNo actions yet.")
	}
	kb := make([]string, 0, len(actions)+2)
	for _, a := range actions {
		fmt.Fprintf(&b, "\n• %s (%d)", a.Name, a.Steps)
		kb = append(kb, a.Name)
	}
	kb = append(kb, model.LabelAddAction, model.LabelBack)
	return Screen{Caption: b.String(), Keyboard: kb}, nil
}

func (r *Renderer) actionEditor(ctx context.Context, tx repository.Tx, tenantID int64, name string) (Screen, error) {
	steps, err := r.actions.ListSteps(ctx, tx, tenantID, name)
	if err != nil {
		return Screen{}, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Action %s:", name)
	if len(steps) == 0 {
		b.WriteString("\nNo messages.")
	}
	for _, st := range steps {
		fmt.Fprintf(&b, "\n%d. %s", st.StepOrder+1, st.Text)
	}
	return Screen{
		Caption:  b.String(),
		Keyboard: []string{model.LabelAddStep, model.LabelDeleteAction, model.LabelBack},
	}, nil
}
