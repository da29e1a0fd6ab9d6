package accounts

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/google/uuid"
)

func RegisterAdminRoutes[T any](app router.Router[T], middlewares []router.MiddlewareFunc, opts ...AdminControllerOption) {

	controller := NewAdminController(opts...)

	app.Get(controller.Routes.Index, controller.Index, middlewares...).
		SetName("admin-accounts.get")

	app.Post(controller.Routes.Block, controller.Block, middlewares...).
		SetName("admin-accounts-block.post")
	app.Post(controller.Routes.Unblock, controller.Unblock, middlewares...).
		SetName("admin-accounts-unblock.post")
	app.Post(controller.Routes.Delete, controller.Delete, middlewares...).
		SetName("admin-accounts-delete.post")
	app.Post(controller.Routes.DeleteUnverified, controller.DeleteUnverified, middlewares...).
		SetName("admin-accounts-delete-unverified.post")
}

type AdminControllerRoutes struct {
	Index            string
	Block            string
	Unblock          string
	Delete           string
	DeleteUnverified string
}

type AdminControllerViews struct {
	Index string
}

type AdminController struct {
	Logger       Logger
	Repo         RepositoryManager
	Routes       *AdminControllerRoutes
	Views        *AdminControllerViews
	ErrorHandler router.ErrorHandler
}

type AdminControllerOption func(*AdminController) *AdminController

func NewAdminController(opts ...AdminControllerOption) *AdminController {
	c := &AdminController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &AdminControllerRoutes{
			Index:            "/admin/accounts",
			Block:            "/admin/accounts/block",
			Unblock:          "/admin/accounts/unblock",
			Delete:           "/admin/accounts/delete",
			DeleteUnverified: "/admin/accounts/delete-unverified",
		},
		Views: &AdminControllerViews{
			Index: "index",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in admin controller...")
	}

	return c
}

func WithAdminRepo(repo RepositoryManager) AdminControllerOption {
	return func(c *AdminController) *AdminController {
		c.Repo = repo
		return c
	}
}

func WithAdminLogger(logger Logger) AdminControllerOption {
	return func(c *AdminController) *AdminController {
		c.Logger = logger
		return c
	}
}

// Index lists every account, most recent login first.
func (a *AdminController) Index(ctx router.Context) error {
	records, err := a.Repo.Accounts().ListByLastLogin(ctx.Context())
	if err != nil {
		a.Logger.Error("admin list accounts", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.Render(a.Views.Index, router.ViewContext{
		"records": records,
	})
}

// AccountSelectionPayload carries the checkbox selection from the
// accounts table form.
type AccountSelectionPayload struct {
	SelectedIDs []string `form:"selected_ids" json:"selected_ids"`
}

func (p AccountSelectionPayload) ParseIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.SelectedIDs))
	for _, raw := range p.SelectedIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (a *AdminController) Block(ctx router.Context) error {
	return a.bulkTransition(ctx, func(ids []uuid.UUID, onResponse func(*BulkTransitionResponse)) error {
		handler := NewBlockAccountsHandler(a.Repo)
		return handler.Execute(ctx.Context(), BlockAccountsMessage{
			IDs:        ids,
			OnResponse: onResponse,
		})
	}, blockOutcome)
}

func (a *AdminController) Unblock(ctx router.Context) error {
	return a.bulkTransition(ctx, func(ids []uuid.UUID, onResponse func(*BulkTransitionResponse)) error {
		handler := NewUnblockAccountsHandler(a.Repo)
		return handler.Execute(ctx.Context(), UnblockAccountsMessage{
			IDs:        ids,
			OnResponse: onResponse,
		})
	}, unblockOutcome)
}

func (a *AdminController) Delete(ctx router.Context) error {
	return a.bulkTransition(ctx, func(ids []uuid.UUID, onResponse func(*BulkTransitionResponse)) error {
		handler := NewDeleteAccountsHandler(a.Repo)
		return handler.Execute(ctx.Context(), DeleteAccountsMessage{
			IDs:        ids,
			OnResponse: onResponse,
		})
	}, deleteOutcome)
}

func (a *AdminController) DeleteUnverified(ctx router.Context) error {
	return a.bulkTransition(ctx, func(ids []uuid.UUID, onResponse func(*BulkTransitionResponse)) error {
		handler := NewDeleteUnverifiedAccountsHandler(a.Repo)
		return handler.Execute(ctx.Context(), DeleteUnverifiedAccountsMessage{
			IDs:        ids,
			OnResponse: onResponse,
		})
	}, deleteUnverifiedOutcome)
}

// Zero matches on block/unblock/delete-unverified means the selection was
// already in the target state, which is informational. Zero matches on a
// plain delete means the accounts vanished between listing and submit,
// which is an error the admin should notice.

func blockOutcome(affected int64) (string, bool) {
	if affected == 0 {
		return "Selected accounts were already blocked.", true
	}
	return fmt.Sprintf("Successfully blocked %d account(s).", affected), true
}

func unblockOutcome(affected int64) (string, bool) {
	if affected == 0 {
		return "Selected accounts were already unblocked.", true
	}
	return fmt.Sprintf("Successfully unblocked %d account(s).", affected), true
}

func deleteOutcome(affected int64) (string, bool) {
	if affected == 0 {
		return "The selected accounts no longer exist.", false
	}
	return fmt.Sprintf("Deleted %d account(s).", affected), true
}

func deleteUnverifiedOutcome(affected int64) (string, bool) {
	if affected == 0 {
		return "None of the selected accounts were unverified.", true
	}
	return fmt.Sprintf("Deleted %d unverified account(s).", affected), true
}

func (a *AdminController) bulkTransition(
	ctx router.Context,
	run func(ids []uuid.UUID, onResponse func(*BulkTransitionResponse)) error,
	outcome func(affected int64) (string, bool),
) error {
	payload := new(AccountSelectionPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("admin bulk parse payload", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing selection",
		}).Redirect(a.Routes.Index, fiber.StatusSeeOther)
	}

	var res *BulkTransitionResponse

	err := run(payload.ParseIDs(), func(resp *BulkTransitionResponse) {
		res = resp
	})

	if err != nil {
		if isNoSelection(err) {
			return flash.WithError(ctx, router.ViewContext{
				"system_message": "No accounts selected.",
			}).Redirect(a.Routes.Index, fiber.StatusSeeOther)
		}

		a.Logger.Error("admin bulk operation", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Operation failed",
		}).Redirect(a.Routes.Index, fiber.StatusSeeOther)
	}

	var affected int64
	if res != nil {
		affected = res.Affected
	}

	msg, ok := outcome(affected)
	vc := router.ViewContext{
		"system_message": msg,
	}

	if !ok {
		return flash.WithError(ctx, vc).Redirect(a.Routes.Index, fiber.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, vc).Redirect(a.Routes.Index, fiber.StatusSeeOther)
}

func isNoSelection(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeNoAccountsSelected
	}
	return false
}
