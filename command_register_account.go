package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterAccountMessage struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	UseHashid  bool
	OnResponse func(resp *RegisterAccountResponse)
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

type RegisterAccountResponse struct {
	Account *Account
	Success bool
}

type RegisterAccountHandler struct {
	repo     RepositoryManager
	notifier ConfirmationNotifier
	logger   Logger
}

func NewRegisterAccountHandler(repo RepositoryManager, notifier ConfirmationNotifier) *RegisterAccountHandler {
	if notifier == nil {
		notifier = noopConfirmationNotifier{}
	}
	return &RegisterAccountHandler{
		repo:     repo,
		notifier: notifier,
		logger:   defLogger{},
	}
}

func (h *RegisterAccountHandler) WithLogger(l Logger) *RegisterAccountHandler {
	h.logger = l
	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	account := &Account{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		account.PasswordHash = hash
		account.Email = event.Email
		account.Phone = NormalizePhone(event.Phone)
		account.FirstName = event.FirstName
		account.LastName = event.LastName
		account.EmailConfirmed = false
		account.ConfirmationToken = NewConfirmationToken()
		if event.UseHashid {
			if id, err := hashid.NewUUID(NormalizeEmail(event.Email)); err == nil {
				account.ID = id
			}
		}

		if account, err = h.repo.Accounts().CreateTx(ctx, tx, account); err != nil {
			if IsDuplicateEmail(err) {
				return goerrors.Wrap(err, ErrDuplicateEmail.Category, ErrDuplicateEmail.Message).
					WithTextCode(ErrDuplicateEmail.TextCode).
					WithMetadata(map[string]any{"email": NormalizeEmail(event.Email)})
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create account")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	// delivery failure does not undo the registration
	go func() {
		sctx, scancel := context.WithTimeout(context.Background(), time.Second*30)
		defer scancel()
		if err := h.notifier.SendConfirmation(sctx, account); err != nil {
			h.logger.Error("failed to send confirmation email",
				"account_id", account.ID.String(),
				"error", err,
			)
		}
	}()

	if event.OnResponse != nil {
		event.OnResponse(&RegisterAccountResponse{
			Account: account,
			Success: true,
		})
	}

	return nil
}
