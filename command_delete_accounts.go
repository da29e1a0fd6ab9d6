package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type DeleteAccountsMessage struct {
	IDs        []uuid.UUID `json:"ids"`
	OnResponse func(resp *BulkTransitionResponse)
}

func (e DeleteAccountsMessage) Type() string { return "account.delete" }

type DeleteAccountsHandler struct {
	repo RepositoryManager
}

func NewDeleteAccountsHandler(repo RepositoryManager) *DeleteAccountsHandler {
	return &DeleteAccountsHandler{repo: repo}
}

func (h *DeleteAccountsHandler) Execute(ctx context.Context, event DeleteAccountsMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account deletion",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteAccountsHandler) execute(ctx context.Context, event DeleteAccountsMessage) error {
	ids := dedupeIDs(event.IDs)
	if len(ids) == 0 {
		return ErrNoAccountsSelected
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var affected int64

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		affected, err = h.repo.Accounts().DeleteManyByIDsTx(ctx, tx, ids)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete accounts")
		}
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account deletion transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&BulkTransitionResponse{
			Affected: affected,
			Success:  true,
		})
	}

	return nil
}

type DeleteUnverifiedAccountsMessage struct {
	IDs        []uuid.UUID `json:"ids"`
	OnResponse func(resp *BulkTransitionResponse)
}

func (e DeleteUnverifiedAccountsMessage) Type() string { return "account.delete_unverified" }

// DeleteUnverifiedAccountsHandler removes only the selected accounts that
// never confirmed their email. Confirmed selections survive untouched.
type DeleteUnverifiedAccountsHandler struct {
	repo RepositoryManager
}

func NewDeleteUnverifiedAccountsHandler(repo RepositoryManager) *DeleteUnverifiedAccountsHandler {
	return &DeleteUnverifiedAccountsHandler{repo: repo}
}

func (h *DeleteUnverifiedAccountsHandler) Execute(ctx context.Context, event DeleteUnverifiedAccountsMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during unverified account deletion",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteUnverifiedAccountsHandler) execute(ctx context.Context, event DeleteUnverifiedAccountsMessage) error {
	ids := dedupeIDs(event.IDs)
	if len(ids) == 0 {
		return ErrNoAccountsSelected
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var affected int64

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		affected, err = h.repo.Accounts().DeleteUnverifiedTx(ctx, tx, ids)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete unverified accounts")
		}
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unverified account deletion transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&BulkTransitionResponse{
			Affected: affected,
			Success:  true,
		})
	}

	return nil
}
