package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-menu-builder/internal/domain"
	"telegram-menu-builder/internal/domain/model"
)

const fieldSeparator = ";"

// inputError is a recoverable mistake in admin input. It becomes a chat
// reply and never leaves the engine.
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func invalidInput(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

// handleInput treats text as the answer to the form the current state asks
// for. On success the leaf segment is popped and the parent re-rendered;
// on a recoverable error the path stays and the reason is sent back.
func (n *navigationUC) handleInput(ctx context.Context, s *session, st model.State, text string) (outcome, error) {
	var (
		notice string
		err    error
	)
	switch st.Kind {
	case model.StateAddingMenu:
		notice, err = n.addMenu(ctx, s, text)
	case model.StateAddingButton:
		notice, err = n.addButton(ctx, s, st.Name, text)
	case model.StateAddingAction:
		notice, err = n.addAction(ctx, s, text)
	case model.StateAddingSubaction:
		notice, err = n.addStep(ctx, s, st.Name, text)
	default:
		return noTransition, nil
	}

	var ie *inputError
	if errors.As(err, &ie) {
		return outcome{replies: []reply{{text: ie.msg, keyboard: []string{model.LabelBack}}}}, nil
	}
	if err != nil {
		return noTransition, err
	}
	return n.show(ctx, s, s.user.Path.Pop(), notice)
}

func (n *navigationUC) addMenu(ctx context.Context, s *session, text string) (string, error) {
	fields, err := splitFields(text, 2, "name;description")
	if err != nil {
		return "", err
	}
	name, desc := fields[0], fields[1]
	if err := checkName(name); err != nil {
		return "", err
	}
	if model.ValidateText(desc) != nil {
		return "", invalidInput("Description must not be empty.")
	}

	err = n.menus.CreateMenu(ctx, s.tx, &model.Menu{TenantID: s.tenant.ID, Name: name, Description: desc})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return "", invalidInput("Menu %s already exists.", name)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Menu %s created.", name), nil
}

func (n *navigationUC) addButton(ctx context.Context, s *session, menuName, text string) (string, error) {
	fields, err := splitFields(text, 3, "label;menu|action;target")
	if err != nil {
		return "", err
	}
	label, kindText, target := fields[0], fields[1], fields[2]

	switch model.ValidateLabel(label) {
	case nil:
	case model.ErrLabelReserved:
		return "", invalidInput("%s is a reserved label.", label)
	default:
		return "", invalidInput("Label must not be empty.")
	}
	kind, err := model.ParseButtonKind(kindText)
	if err != nil {
		return "", invalidInput("Button type must be menu or action.")
	}

	menu, err := n.menus.FindMenu(ctx, s.tx, s.tenant.ID, menuName)
	if errors.Is(err, domain.ErrNotFound) {
		return "", invalidInput("Menu %s does not exist.", menuName)
	}
	if err != nil {
		return "", err
	}

	switch kind {
	case model.ButtonEnterMenu:
		if model.IsReservedName(target) {
			return "", invalidInput("Menu %s cannot be a button target.", target)
		}
		if _, err := n.menus.FindMenu(ctx, s.tx, s.tenant.ID, target); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return "", invalidInput("Menu %s does not exist.", target)
			}
			return "", err
		}
	case model.ButtonRunAction:
		steps, err := n.actions.ListSteps(ctx, s.tx, s.tenant.ID, target)
		if err != nil {
			return "", err
		}
		if len(steps) == 0 {
			return "", invalidInput("Action %s does not exist.", target)
		}
	}

	err = n.menus.CreateButton(ctx, s.tx, &model.Button{MenuID: menu.ID, Label: label, Kind: kind, Reference: target})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return "", invalidInput("Menu %s already has a button %s.", menuName, label)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Button %s added.", label), nil
}

func (n *navigationUC) addAction(ctx context.Context, s *session, text string) (string, error) {
	fields, err := splitFields(text, 2, "name;first message")
	if err != nil {
		return "", err
	}
	name, first := fields[0], fields[1]
	if err := checkName(name); err != nil {
		return "", err
	}
	if model.ValidateText(first) != nil {
		return "", invalidInput("Message must not be empty.")
	}

	steps, err := n.actions.ListSteps(ctx, s.tx, s.tenant.ID, name)
	if err != nil {
		return "", err
	}
	if len(steps) > 0 {
		return "", invalidInput("Action %s already exists.", name)
	}
	_, err = n.actions.AppendStep(ctx, s.tx, s.tenant.ID, name, first)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return "", invalidInput("Action %s already exists.", name)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Action %s created.", name), nil
}

// addStep records the next message of an action. It is reachable only from
// the action's own editing path.
func (n *navigationUC) addStep(ctx context.Context, s *session, name, text string) (string, error) {
	text = strings.TrimSpace(text)
	if model.ValidateText(text) != nil {
		return "", invalidInput("Message must not be empty.")
	}
	steps, err := n.actions.ListSteps(ctx, s.tx, s.tenant.ID, name)
	if err != nil {
		return "", err
	}
	if len(steps) == 0 {
		return "", invalidInput("Action %s does not exist.", name)
	}
	step, err := n.actions.AppendStep(ctx, s.tx, s.tenant.ID, name, text)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return "", invalidInput("Action %s changed meanwhile. Send the message again.", name)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Step %d added to %s.", step.StepOrder+1, name), nil
}

func checkName(name string) error {
	switch model.ValidateName(name) {
	case nil:
		return nil
	case model.ErrNameReserved:
		return invalidInput("%s is a reserved name.", name)
	default:
		return invalidInput("Name must contain latin letters only.")
	}
}

// splitFields splits semicolon separated input into exactly n trimmed fields.
func splitFields(text string, n int, format string) ([]string, error) {
	parts := strings.Split(text, fieldSeparator)
	if len(parts) != n {
		return nil, invalidInput("Expected %d fields separated by %q: %s", n, fieldSeparator, format)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}
