package accounts

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ConfirmAccountEmailSQL = `UPDATE "accounts" AS "acc"
SET
	"is_email_confirmed" = TRUE,
	"confirmation_token" = NULL
WHERE
	"acc"."id" = ?
AND "acc"."confirmation_token" = ?
RETURNING *;`

type Accounts interface {
	repository.Repository[*Account]

	Register(ctx context.Context, account *Account) (*Account, error)
	RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error)
	Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error)

	ConfirmEmail(ctx context.Context, id uuid.UUID, token string) error
	ConfirmEmailTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error

	TrackSuccessfulLogin(ctx context.Context, account *Account) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, account *Account) error

	BlockTx(ctx context.Context, tx bun.IDB, ids []uuid.UUID) (int64, error)
	UnblockTx(ctx context.Context, tx bun.IDB, ids []uuid.UUID) (int64, error)
	DeleteManyByIDsTx(ctx context.Context, tx bun.IDB, ids []uuid.UUID) (int64, error)
	DeleteUnverifiedTx(ctx context.Context, tx bun.IDB, ids []uuid.UUID) (int64, error)

	ListByLastLogin(ctx context.Context, criteria ...repository.SelectCriteria) ([]*Account, error)
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) Register(ctx context.Context, account *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, account)
}

func (a *accounts) RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error) {
	return a.CreateTx(ctx, tx, account)
}

func (a *accounts) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Account, error) {
	return a.GetByIdentifierTx(ctx, a.db, identifier, criteria...)
}

func (a *accounts) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*Account, error) {
	options := resolveAccountIdentifier(identifier)
	if len(options) == 0 {
		options = []identifierOption{
			{
				column: "id",
				value:  strings.TrimSpace(identifier),
			},
		}
	}

	for _, opt := range options {
		record := &Account{}
		q := tx.NewSelect().Model(record)

		for _, c := range criteria {
			q.Apply(c)
		}

		err := q.
			Where(fmt.Sprintf("?TableAlias.%s = ?", opt.column), opt.value).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}

func (a *accounts) Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	prepareAccountDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *accounts) ConfirmEmail(ctx context.Context, id uuid.UUID, token string) error {
	return a.ConfirmEmailTx(ctx, a.db, id, token)
}

// ConfirmEmailTx flips the confirmation flag and burns the token in a single
// statement. A token that was already redeemed, or that does not match, hits
// zero rows and reports ErrInvalidConfirmationToken.
func (a *accounts) ConfirmEmailTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error {
	if token == "" {
		return ErrInvalidConfirmationToken
	}

	res, err := a.Repository.RawTx(ctx, tx, ConfirmAccountEmailSQL, id.String(), token)
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return ErrInvalidConfirmationToken
	}

	return nil
}

func (a *accounts) TrackSuccessfulLogin(ctx context.Context, account *Account) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, account)
}

func (a *accounts) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, account *Account) error {
	// NOTE: Updating using the ORM fails due to a bug, it wont persist
	// the timestamp when other fields hold zero values.
	loggedInAt := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET
			"last_login_at" = ?
		WHERE
			("acc".id = ?);
	`, loggedInAt, account.ID).Exec(ctx)

	return err
}

func (a *accounts) BlockTx(ctx context.Context, tx bun.IDB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoAccountsSelected
	}

	res, err := tx.NewUpdate().
		Model((*Account)(nil)).
		Set("is_blocked = TRUE").
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id IN (?)", bun.In(ids)).
		Where("?TableAlias.is_blocked = FALSE").
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (a *accounts) UnblockTx(ctx context.Context, tx bun.IDB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoAccountsSelected
	}

	res, err := tx.NewUpdate().
		Model((*Account)(nil)).
		Set("is_blocked = FALSE").
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id IN (?)", bun.In(ids)).
		Where("?TableAlias.is_blocked = TRUE").
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (a *accounts) DeleteManyByIDsTx(ctx context.Context, tx bun.IDB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoAccountsSelected
	}

	res, err := tx.NewDelete().
		Model((*Account)(nil)).
		Where("?TableAlias.id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (a *accounts) DeleteUnverifiedTx(ctx context.Context, tx bun.IDB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoAccountsSelected
	}

	res, err := tx.NewDelete().
		Model((*Account)(nil)).
		Where("?TableAlias.id IN (?)", bun.In(ids)).
		Where("?TableAlias.is_email_confirmed = FALSE").
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (a *accounts) ListByLastLogin(ctx context.Context, criteria ...repository.SelectCriteria) ([]*Account, error) {
	var records []*Account
	q := a.db.NewSelect().Model(&records)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		OrderExpr("?TableAlias.last_login_at DESC NULLS LAST").
		OrderExpr("?TableAlias.registered_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.RegisteredAt == nil {
		now := time.Now()
		record.RegisteredAt = &now
	}

	// a fresh account counts registration as its first login, so it sorts
	// to the top of the last-login listing instead of the NULL tail
	if record.LastLoginAt == nil {
		record.LastLoginAt = record.RegisteredAt
	}
}

type identifierOption struct {
	column string
	value  string
}

func resolveAccountIdentifier(identifier string) []identifierOption {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil
	}

	options := make([]identifierOption, 0, 2)

	if isUUID(trimmed) {
		options = append(options, identifierOption{
			column: "id",
			value:  trimmed,
		})
	}

	if isEmail(trimmed) {
		options = append(options, identifierOption{
			column: "email",
			value:  NormalizeEmail(trimmed),
		})
	}

	return options
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func isUUID(identifier string) bool {
	_, err := uuid.Parse(identifier)
	return err == nil
}
