package accounts

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/google/uuid"
)

func GetRouterSession(c router.Context, key string) (*SessionObject, error) {
	raw := c.Locals(key)
	if raw == nil {
		return nil, ErrUnableToFindSession
	}

	claims, ok := raw.(AuthClaims)
	if claims == nil || !ok {
		return nil, ErrUnableToDecodeSession
	}

	return sessionFromAuthClaims(claims)
}

func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	app.
		Get(controller.Routes.Login,
			controller.LoginShow,
		).
		SetName("sign-in.get")

	app.
		Post(
			controller.Routes.Login,
			controller.LoginPost,
		).
		SetName("sign-in.post")

	app.Get(controller.Routes.Logout, controller.LogOut).SetName("sign-out.get")

	app.Get(controller.Routes.Register, controller.RegistrationShow).
		SetName("register.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("register.post")

	app.Get(controller.Routes.ConfirmEmail, controller.ConfirmEmailGet).
		SetName("confirm-email.get")
}

type AuthControllerRoutes struct {
	Login        string
	Logout       string
	Register     string
	ConfirmEmail string
}

type AuthControllerViews struct {
	Login    string
	Logout   string
	Register string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Notifier     ConfirmationNotifier
	Routes       *AuthControllerRoutes
	Views        *AuthControllerViews
	Auther       HTTPAuthenticator
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &AuthControllerRoutes{
			Login:        "/login",
			Logout:       "/logout",
			Register:     "/register",
			ConfirmEmail: "/confirm-email",
		},
		Views: &AuthControllerViews{
			Login:    "login",
			Logout:   "logout",
			Register: "register",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther HTTPAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerNotifier(notifier ConfirmationNotifier) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Notifier = notifier
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func (a *AuthController) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// GetExtendedSession reports whether the session should outlive the default
func (r LoginRequest) GetExtendedSession() bool {
	return r.RememberMe
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)
	errs := map[string]string{}

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record":     payload,
			"validation": err.Error(),
		})
	}

	if a.Debug {
		fmt.Println("======= ACCOUNTS LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=============================")
	}

	if err := a.Auther.Login(ctx, payload); err != nil {
		// same message for unknown email, bad password, and blocked account
		errs["authentication"] = "Invalid email or password"
		return ctx.Render(a.Views.Login, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	redirect := a.Auther.GetRedirect(ctx, "/")

	return ctx.Redirect(redirect, router.StatusSeeOther)
}

func (a *AuthController) LogOut(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.Redirect(a.Routes.Login, router.StatusSeeOther)
}

func (a *AuthController) RegistrationShow(ctx router.Context) error {
	return ctx.Render(a.Views.Register, router.ViewContext{
		"errors": map[string]string{},
		"record": RegisterAccountMessage{},
	})
}

// RegistrationCreatePayload is the form payload
type RegistrationCreatePayload struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone_number" json:"phone_number"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {

	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.Length(10, 11), is.Digit),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		errs := map[string]string{}
		errs["form"] = "Failed to parse form"
		a.Logger.Error("register account parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Register, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		errs := FormatValidationErrorToMap(err)
		a.Logger.Error("register account validate payload: ", "error", err)

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Register, router.ViewContext{
			"record":     payload,
			"validation": errs,
		})
	}

	var res *RegisterAccountResponse

	req := RegisterAccountMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Password:  payload.Password,
		OnResponse: func(resp *RegisterAccountResponse) {
			res = resp
		},
	}

	registerAccount := NewRegisterAccountHandler(a.Repo, a.Notifier).WithLogger(a.Logger)
	if err := registerAccount.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register account error: ", "error", err)

		errs := map[string]string{}
		if IsDuplicateEmail(err) {
			errs["email"] = "This e-mail is already taken"
		} else {
			errs["form"] = err.Error()
		}

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error registering account",
		}).Render(a.Views.Register, router.ViewContext{
			"record": payload,
			"errors": errs,
		})
	}

	// the new account goes straight into an authenticated session
	if res != nil && res.Account != nil {
		if err := a.Auther.Impersonate(ctx, res.Account.ID.String()); err != nil {
			a.Logger.Error("register account auto login: ", "error", err)
		}
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Successful account registration",
	}).Redirect("/", fiber.StatusSeeOther)
}

func (a *AuthController) ConfirmEmailGet(ctx router.Context) error {
	rawID := ctx.Query("id", "")
	token := ctx.Query("token", "")

	id, err := uuid.Parse(rawID)
	if err != nil || token == "" {
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Error confirming email.",
		}).Redirect("/", fiber.StatusSeeOther)
	}

	req := ConfirmEmailMessage{
		AccountID: id,
		Token:     token,
	}

	confirmEmail := NewConfirmEmailHandler(a.Repo)
	if err := confirmEmail.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("confirm email error: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Error confirming email.",
		}).Redirect("/", fiber.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Email confirmed successfully!",
	}).Redirect("/", fiber.StatusSeeOther)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field to message map suitable for view rendering.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		keys := make([]string, 0, len(verrs))
		for k := range verrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if verrs[k] != nil {
				out[k] = verrs[k].Error()
			}
		}
		return out
	}

	out["form"] = err.Error()
	return out
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
