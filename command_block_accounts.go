package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BulkTransitionResponse reports the outcome of a bulk account operation.
// Affected counts only the rows that actually changed, selections that
// were already in the target state do not count.
type BulkTransitionResponse struct {
	Affected int64
	Success  bool
}

type BlockAccountsMessage struct {
	IDs        []uuid.UUID `json:"ids"`
	OnResponse func(resp *BulkTransitionResponse)
}

func (e BlockAccountsMessage) Type() string { return "account.block" }

type BlockAccountsHandler struct {
	repo RepositoryManager
}

func NewBlockAccountsHandler(repo RepositoryManager) *BlockAccountsHandler {
	return &BlockAccountsHandler{repo: repo}
}

func (h *BlockAccountsHandler) Execute(ctx context.Context, event BlockAccountsMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account blocking",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *BlockAccountsHandler) execute(ctx context.Context, event BlockAccountsMessage) error {
	ids := dedupeIDs(event.IDs)
	if len(ids) == 0 {
		return ErrNoAccountsSelected
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var affected int64

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		affected, err = h.repo.Accounts().BlockTx(ctx, tx, ids)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to block accounts")
		}
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account blocking transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&BulkTransitionResponse{
			Affected: affected,
			Success:  true,
		})
	}

	return nil
}

type UnblockAccountsMessage struct {
	IDs        []uuid.UUID `json:"ids"`
	OnResponse func(resp *BulkTransitionResponse)
}

func (e UnblockAccountsMessage) Type() string { return "account.unblock" }

type UnblockAccountsHandler struct {
	repo RepositoryManager
}

func NewUnblockAccountsHandler(repo RepositoryManager) *UnblockAccountsHandler {
	return &UnblockAccountsHandler{repo: repo}
}

func (h *UnblockAccountsHandler) Execute(ctx context.Context, event UnblockAccountsMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account unblocking",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UnblockAccountsHandler) execute(ctx context.Context, event UnblockAccountsMessage) error {
	ids := dedupeIDs(event.IDs)
	if len(ids) == 0 {
		return ErrNoAccountsSelected
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var affected int64

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		affected, err = h.repo.Accounts().UnblockTx(ctx, tx, ids)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unblock accounts")
		}
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account unblocking transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&BulkTransitionResponse{
			Affected: affected,
			Success:  true,
		})
	}

	return nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))

	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
