package keygate

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// RefreshCookieName is the cookie that carries the refresh token. The token
// travels only here; response bodies carry access tokens exclusively.
const RefreshCookieName = "refreshToken"

type AuthControllerRoutes struct {
	Signup    string
	Login     string
	Refresh   string
	Logout    string
	Me        string
	AdminUser string
	Protected string
}

type AuthController struct {
	Auther     Authenticator
	Users      Users
	Tokens     TokenService
	Logger     Logger
	Routes     *AuthControllerRoutes
	RefreshTTL time.Duration
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		RefreshTTL: 7 * 24 * time.Hour,
		Routes: &AuthControllerRoutes{
			Signup:    "/signup",
			Login:     "/login",
			Refresh:   "/refresh",
			Logout:    "/logout",
			Me:        "/me",
			AdminUser: "/admin/users/:id",
			Protected: "/protected",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Users == nil {
		panic("Missing Users store in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	return c
}

func WithAuthenticator(a Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = a
		return c
	}
}

func WithUsers(u Users) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Users = u
		return c
	}
}

func WithTokens(t TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Tokens = t
		return c
	}
}

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

func WithRefreshTTL(ttl time.Duration) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if ttl > 0 {
			c.RefreshTTL = ttl
		}
		return c
	}
}

// RegisterAuthRoutes wires the controller into the app: open auth-mutating
// routes behind a tight limiter, protected routes behind the access gate.
func RegisterAuthRoutes(app fiber.Router, controller *AuthController) {
	authLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return ErrTooManyAttempts
		},
	})

	app.Post(controller.Routes.Signup, authLimiter, controller.SignupPost)
	app.Post(controller.Routes.Login, authLimiter, controller.LoginPost)
	app.Post(controller.Routes.Refresh, controller.RefreshPost)
	app.Post(controller.Routes.Logout, controller.LogoutPost)

	gate := AccessGate(controller.Tokens)

	app.Get(controller.Routes.Me, gate, controller.MeGet)
	app.Get(controller.Routes.Protected, gate, controller.ProtectedGet)
	app.Delete(controller.Routes.AdminUser,
		gate,
		RequireRole(controller.Users, RoleAdmin, controller.Logger),
		controller.AdminUserDelete,
	)
}

// SignupRequest payload
type SignupRequest struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Email, validation.Required, validation.Length(0, 255), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) SignupPost(c *fiber.Ctx) error {
	payload := new(SignupRequest)

	if err := c.BodyParser(payload); err != nil {
		return badRequest(err)
	}

	if err := payload.Validate(); err != nil {
		return badRequest(err)
	}

	Trace(c, "signup validated")

	pair, _, err := a.Auther.Signup(c.UserContext(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		return err
	}

	a.setRefreshCookie(c, pair.RefreshToken)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"accessToken": pair.AccessToken,
	})
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return badRequest(err)
	}

	if err := payload.Validate(); err != nil {
		return badRequest(err)
	}

	Trace(c, "login validated")

	pair, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	a.setRefreshCookie(c, pair.RefreshToken)

	return c.JSON(fiber.Map{
		"accessToken": pair.AccessToken,
	})
}

func (a *AuthController) RefreshPost(c *fiber.Ctx) error {
	refreshToken := c.Cookies(RefreshCookieName)

	access, err := a.Auther.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		return err
	}

	Trace(c, "refresh token accepted")

	return c.JSON(fiber.Map{
		"accessToken": access,
	})
}

// LogoutPost always answers no-content: an unauthenticated caller must not
// learn whether the presented token was live.
func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	refreshToken := c.Cookies(RefreshCookieName)

	if err := a.Auther.Logout(c.UserContext(), refreshToken); err != nil {
		a.Logger.Error("logout failed", "error", err.Error())
	}

	a.clearRefreshCookie(c)

	return c.SendStatus(fiber.StatusNoContent)
}

func (a *AuthController) MeGet(c *fiber.Ctx) error {
	userID, ok := UserIDFromContext(c.UserContext())
	if !ok {
		return ErrMissingToken
	}

	user, err := resolveUser(c.UserContext(), a.Users, userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

func (a *AuthController) ProtectedGet(c *fiber.Ctx) error {
	userID, ok := UserIDFromContext(c.UserContext())
	if !ok {
		return ErrMissingToken
	}

	return c.JSON(fiber.Map{
		"message": "from middleware",
		"userId":  userID,
	})
}

func (a *AuthController) AdminUserDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrUserNotFound
	}

	record, err := a.Users.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}

	a.Logger.Info("user deleted", "user_id", id.String())

	return c.JSON(record)
}

func (a *AuthController) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.RefreshTTL / time.Second),
		Expires:  time.Now().Add(a.RefreshTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (a *AuthController) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func badRequest(err error) error {
	return errors.Wrap(err, errors.CategoryValidation, err.Error()).
		WithTextCode(TextCodeValidationFailed).
		WithCode(errors.CodeBadRequest)
}
