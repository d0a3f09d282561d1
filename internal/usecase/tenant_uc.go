package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-menu-builder/internal/domain"
	"telegram-menu-builder/internal/domain/model"
	"telegram-menu-builder/internal/domain/ports/adapter"
	"telegram-menu-builder/internal/domain/ports/repository"
	"telegram-menu-builder/internal/infra/logging"
	"telegram-menu-builder/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

const rootMenuDescription = "Main menu"

// Compile-time check
var _ TenantUseCase = (*tenantUC)(nil)

// TenantUseCase is the tenant registry used by the root bot and the admin API.
type TenantUseCase interface {
	Register(ctx context.Context, credential string, adminID int64) (*model.Tenant, error)
	ResolveByCredential(ctx context.Context, credential string) (*model.Tenant, error)
	Get(ctx context.Context, id int64) (*model.Tenant, error)
	List(ctx context.Context) ([]*model.Tenant, error)
	Menus(ctx context.Context, tenantID int64) ([]*model.Menu, error)
	Actions(ctx context.Context, tenantID int64) ([]model.ActionSummary, error)
}

type tenantUC struct {
	tenants repository.TenantRepository
	menus   repository.MenuRepository
	actions repository.ActionRepository
	tm      repository.TransactionManager
	bot     adapter.Messenger
	hooks   WebhookUseCase
	log     *zerolog.Logger
}

func NewTenantUseCase(
	tenants repository.TenantRepository,
	menus repository.MenuRepository,
	actions repository.ActionRepository,
	tm repository.TransactionManager,
	bot adapter.Messenger,
	hooks WebhookUseCase,
	logger *zerolog.Logger,
) *tenantUC {
	return &tenantUC{
		tenants: tenants,
		menus:   menus,
		actions: actions,
		tm:      tm,
		bot:     bot,
		hooks:   hooks,
		log:     logger,
	}
}

// Register verifies the credential with Telegram, then stores the tenant
// together with its root menu. A credential that is already stored yields
// domain.ErrAlreadyRegistered and leaves the existing row alone.
func (t *tenantUC) Register(ctx context.Context, credential string, adminID int64) (*model.Tenant, error) {
	defer logging.TraceDuration(t.log, "TenantUC.Register")()

	tenant, err := model.NewTenant(credential, adminID)
	if err != nil {
		return nil, err
	}

	valid, err := t.bot.GetMe(ctx, tenant.Token)
	if err != nil {
		return nil, fmt.Errorf("verify credential: %w", err)
	}
	if !valid {
		metrics.IncTenantRegistration("invalid")
		return nil, domain.ErrInvalidCredential
	}

	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err = t.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		existing, err := t.tenants.FindByToken(ctx, tx, tenant.Token)
		if err == nil && existing != nil {
			return domain.ErrAlreadyRegistered
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if err := t.tenants.Save(ctx, tx, tenant); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return domain.ErrAlreadyRegistered
			}
			return err
		}
		root := &model.Menu{TenantID: tenant.ID, Name: model.RootSegment, Description: rootMenuDescription}
		return t.menus.CreateMenu(ctx, tx, root)
	})
	if errors.Is(err, domain.ErrAlreadyRegistered) {
		metrics.IncTenantRegistration("duplicate")
		return nil, err
	}
	if err != nil {
		metrics.IncTenantRegistration("error")
		return nil, err
	}
	metrics.IncTenantRegistration("ok")

	log := logging.With(logging.WithBotID(ctx, tenant.ID), t.log)
	log.Info().Int64("admin_id", adminID).Msg("tenant registered")

	if t.hooks != nil {
		if err := t.hooks.Register(ctx, tenant.Token); err != nil {
			log.Warn().Err(err).Msg("webhook registration failed for new tenant")
		}
	}
	return tenant, nil
}

func (t *tenantUC) ResolveByCredential(ctx context.Context, credential string) (*model.Tenant, error) {
	defer logging.TraceDuration(t.log, "TenantUC.ResolveByCredential")()
	return t.tenants.FindByToken(ctx, repository.NoTX, strings.TrimSpace(credential))
}

func (t *tenantUC) Get(ctx context.Context, id int64) (*model.Tenant, error) {
	defer logging.TraceDuration(t.log, "TenantUC.Get")()
	return t.tenants.FindByID(ctx, repository.NoTX, id)
}

func (t *tenantUC) List(ctx context.Context) ([]*model.Tenant, error) {
	defer logging.TraceDuration(t.log, "TenantUC.List")()
	return t.tenants.List(ctx, repository.NoTX)
}

func (t *tenantUC) Menus(ctx context.Context, tenantID int64) ([]*model.Menu, error) {
	defer logging.TraceDuration(t.log, "TenantUC.Menus")()
	if _, err := t.tenants.FindByID(ctx, repository.NoTX, tenantID); err != nil {
		return nil, err
	}
	return t.menus.ListMenus(ctx, repository.NoTX, tenantID)
}

func (t *tenantUC) Actions(ctx context.Context, tenantID int64) ([]model.ActionSummary, error) {
	defer logging.TraceDuration(t.log, "TenantUC.Actions")()
	if _, err := t.tenants.FindByID(ctx, repository.NoTX, tenantID); err != nil {
		return nil, err
	}
	return t.actions.ListActions(ctx, repository.NoTX, tenantID)
}
