package accounts

import (
	"context"
	"crypto/subtle"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ConfirmEmailMessage struct {
	AccountID  uuid.UUID `json:"account_id"`
	Token      string    `json:"token"`
	OnResponse func(resp *ConfirmEmailResponse)
}

func (e ConfirmEmailMessage) Type() string { return "account.confirm_email" }

type ConfirmEmailResponse struct {
	Account *Account
	Success bool
}

type ConfirmEmailHandler struct {
	repo RepositoryManager
}

func NewConfirmEmailHandler(repo RepositoryManager) *ConfirmEmailHandler {
	return &ConfirmEmailHandler{repo: repo}
}

func (h *ConfirmEmailHandler) Execute(ctx context.Context, event ConfirmEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmEmailHandler) execute(ctx context.Context, event ConfirmEmailMessage) error {
	account := &Account{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var err error

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		account, err = h.repo.Accounts().GetByID(ctx, event.AccountID.String())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return goerrors.Wrap(err, ErrAccountNotFound.Category, ErrAccountNotFound.Message).
					WithTextCode(ErrAccountNotFound.TextCode).
					WithMetadata(map[string]any{"account_id": event.AccountID.String()})
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for confirmation")
		}

		if !account.CanRedeemConfirmation() {
			return ErrInvalidConfirmationToken
		}

		if subtle.ConstantTimeCompare([]byte(account.ConfirmationToken), []byte(event.Token)) != 1 {
			return ErrInvalidConfirmationToken
		}

		if err := h.repo.Accounts().ConfirmEmailTx(ctx, tx, account.ID, event.Token); err != nil {
			return err
		}

		account.EmailConfirmed = true
		account.ConfirmationToken = ""

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "email confirmation transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&ConfirmEmailResponse{
			Account: account,
			Success: true,
		})
	}

	return nil
}
