package accounts

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	goerrors "github.com/goliatone/go-errors"
)

// ConfirmationNotifier delivers the email confirmation message for a
// freshly registered account.
type ConfirmationNotifier interface {
	SendConfirmation(ctx context.Context, account *Account) error
}

type noopConfirmationNotifier struct{}

func (noopConfirmationNotifier) SendConfirmation(ctx context.Context, account *Account) error {
	return nil
}

var confirmationEmailTemplate = template.Must(template.New("confirmation").Parse(`<html>
<body>
	<p>Hello {{.Name}},</p>
	<p>Please confirm your account by clicking this link:</p>
	<p><a href="{{.Link}}">Confirm your email</a></p>
</body>
</html>`))

// EmailConfirmationNotifier renders the confirmation message and hands it
// to a Notifier for delivery.
type EmailConfirmationNotifier struct {
	sender  Notifier
	baseURL string
	subject string
}

func NewEmailConfirmationNotifier(sender Notifier, baseURL string) *EmailConfirmationNotifier {
	return &EmailConfirmationNotifier{
		sender:  sender,
		baseURL: baseURL,
		subject: "Confirm your email",
	}
}

func (n *EmailConfirmationNotifier) WithSubject(subject string) *EmailConfirmationNotifier {
	n.subject = subject
	return n
}

func (n *EmailConfirmationNotifier) SendConfirmation(ctx context.Context, account *Account) error {
	if account == nil {
		return goerrors.New("account is required", goerrors.CategoryBadInput)
	}

	if account.ConfirmationToken == "" {
		return goerrors.New("account has no confirmation token", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"account_id": account.ID.String()})
	}

	link := ConfirmationLink(n.baseURL, account)

	var buf bytes.Buffer
	err := confirmationEmailTemplate.Execute(&buf, map[string]any{
		"Name": account.DisplayName(),
		"Link": link,
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render confirmation email")
	}

	return n.sender.Send(ctx, account.Email, n.subject, buf.String())
}

// ConfirmationLink builds the absolute URL a recipient follows to
// confirm their address.
func ConfirmationLink(baseURL string, account *Account) string {
	q := url.Values{}
	q.Set("id", account.ID.String())
	q.Set("token", account.ConfirmationToken)

	return fmt.Sprintf("%s/confirm-email?%s", baseURL, q.Encode())
}
