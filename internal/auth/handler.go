package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/retailpro/retailpro/internal/shared"
	"github.com/retailpro/retailpro/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/signup", h.showSignup)
	r.Post("/signup", h.handleSignup)
	r.Get("/signup-success", h.showSignupSuccess)
	r.Get("/error", h.showAuthError)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, loginPageData{}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			formErrors[fieldErr.Field()] = fieldErr.Error()
		}
	}

	if len(formErrors) == 0 {
		user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		if err != nil {
			formErrors["general"] = "Invalid email or password"
		} else {
			profile, err := h.service.Profile(r.Context(), user.ID)
			if err != nil {
				// Signed-up identity without a profile is an inconsistent
				// account; treat like a failed login.
				h.logger.Warn("login without profile", slog.Int64("user_id", user.ID))
				formErrors["general"] = "Account is not fully provisioned"
			} else {
				if sess != nil {
					sess.SetUser(strconv.FormatInt(user.ID, 10))
					sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back"})
					if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, time.Now().Add(h.sessionManager.TTL()), r.RemoteAddr, r.UserAgent()); err != nil {
						h.logger.Warn("register session", slog.Any("error", err))
					}
				} else {
					h.logger.Error("session missing during login")
				}
				http.Redirect(w, r, homeFor(profile.Role), http.StatusSeeOther)
				return
			}
		}
	}

	h.renderLogin(w, r, loginPageData{Form: form, Errors: formErrors}, http.StatusBadRequest)
}

type signupForm struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	FullName        string `validate:"required"`
	ShopName        string
	Role            string `validate:"required,oneof=owner client"`
}

type signupPageData struct {
	Form   signupForm
	Errors map[string]string
}

func (h *Handler) showSignup(w http.ResponseWriter, r *http.Request) {
	h.renderSignup(w, r, signupPageData{Form: signupForm{Role: string(RoleOwner)}}, http.StatusOK)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := signupForm{
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		FullName:        r.PostFormValue("full_name"),
		ShopName:        r.PostFormValue("shop_name"),
		Role:            r.PostFormValue("role"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			formErrors[fieldErr.Field()] = fieldErr.Error()
		}
	}

	if len(formErrors) == 0 {
		_, err := h.service.Signup(r.Context(), SignupInput{
			Email:    form.Email,
			Password: form.Password,
			FullName: form.FullName,
			ShopName: form.ShopName,
			Role:     Role(form.Role),
		})
		switch {
		case errors.Is(err, ErrEmailTaken):
			formErrors["Email"] = "This email is already registered"
		case err != nil:
			h.logger.Error("signup", slog.Any("error", err))
			http.Redirect(w, r, "/auth/error", http.StatusSeeOther)
			return
		default:
			http.Redirect(w, r, "/auth/signup-success", http.StatusSeeOther)
			return
		}
	}

	h.renderSignup(w, r, signupPageData{Form: form, Errors: formErrors}, http.StatusBadRequest)
}

func (h *Handler) showSignupSuccess(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "pages/signup_success.html", "Account created", nil, http.StatusOK)
}

func (h *Handler) showAuthError(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "pages/auth_error.html", "Something went wrong", nil, http.StatusOK)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func homeFor(role Role) string {
	if role == RoleClient {
		return "/client/dashboard"
	}
	return "/dashboard"
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, data loginPageData, status int) {
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	h.renderPage(w, r, "pages/login.html", "Sign in", data, 0)
}

func (h *Handler) renderSignup(w http.ResponseWriter, r *http.Request, data signupPageData, status int) {
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	h.renderPage(w, r, "pages/signup.html", "Create account", data, 0)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, page, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	if status > 0 && status != http.StatusOK {
		w.WriteHeader(status)
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render "+page, slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleSignupForTest exposes the POST handler for tests.
func (h *Handler) HandleSignupForTest(w http.ResponseWriter, r *http.Request) {
	h.handleSignup(w, r)
}
