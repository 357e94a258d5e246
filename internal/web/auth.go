package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/recyclehub/internal/model"
	"github.com/erazemk/recyclehub/internal/service"
)

type loginPage struct {
	PageData
	Role  string
	Email string
}

type registerPage struct {
	PageData
	Name  string
	Email string
	Role  string
}

var loginTitles = map[string]string{
	model.RoleUser:   "User login",
	model.RoleVendor: "Vendor login",
}

// Landing handles GET /.
func (s *Server) Landing(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusOK, "landing.html", &PageData{
		Title:   "RecycleHub",
		Success: popFlash(w, r),
	})
}

// LoginPage handles GET /login/{role}.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	role := r.PathValue("role")
	if !model.ValidRole(role) {
		http.NotFound(w, r)
		return
	}
	s.Templates.Render(w, http.StatusOK, "login.html", &loginPage{
		PageData: PageData{Title: loginTitles[role], Success: popFlash(w, r)},
		Role:     role,
	})
}

// LoginSubmit handles POST /login/{role}. An account may only sign in on
// the screen for its own role.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	role := r.PathValue("role")
	if !model.ValidRole(role) {
		http.NotFound(w, r)
		return
	}
	email := r.FormValue("email")

	fail := func(status int, msg string) {
		s.Templates.Render(w, status, "login.html", &loginPage{
			PageData: PageData{Title: loginTitles[role], Error: msg},
			Role:     role,
			Email:    email,
		})
	}

	token, user, err := s.Accounts.Login(r.Context(), email, r.FormValue("password"))
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			fail(http.StatusBadRequest, "Enter your email and password.")
		case errors.Is(err, service.ErrInvalidCredentials):
			fail(http.StatusUnauthorized, "Wrong email or password.")
		default:
			slog.Error("web login failed", "error", err)
			fail(http.StatusInternalServerError, "Login failed. Please try again.")
		}
		return
	}
	if user.Role != role {
		fail(http.StatusForbidden, "This account is not a "+role+" account.")
		return
	}

	setAuthCookie(w, token)
	slog.Info("user logged in", "user", user.ID, "role", user.Role)
	http.Redirect(w, r, homeForRole(user.Role), http.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if !model.ValidRole(role) {
		role = model.RoleUser
	}
	s.Templates.Render(w, http.StatusOK, "register.html", &registerPage{
		PageData: PageData{Title: "Create account"},
		Role:     role,
	})
}

// RegisterSubmit handles POST /register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	reg := service.Registration{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Role:     r.FormValue("role"),
	}

	user, err := s.Accounts.Register(r.Context(), reg)
	if err != nil {
		status, msg := http.StatusInternalServerError, "Registration failed. Please try again."
		var (
			verr *service.ValidationError
			cerr *service.ConflictError
		)
		switch {
		case errors.As(err, &verr):
			status, msg = http.StatusBadRequest, verr.Error()
		case errors.As(err, &cerr):
			status, msg = http.StatusConflict, "An account with this email already exists."
		default:
			slog.Error("web registration failed", "error", err)
		}
		s.Templates.Render(w, status, "register.html", &registerPage{
			PageData: PageData{Title: "Create account", Error: msg},
			Name:     reg.Name,
			Email:    reg.Email,
			Role:     reg.Role,
		})
		return
	}

	slog.Info("user registered", "user", user.ID, "role", user.Role)
	setFlash(w, "Account created. You can sign in now.")
	http.Redirect(w, r, "/login/"+user.Role, http.StatusSeeOther)
}

// Logout handles POST /logout. The session token is revoked so a copied
// cookie stops working too.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(tokenCookie); err == nil && cookie.Value != "" {
		if claims, err := s.Accounts.Authenticate(r.Context(), cookie.Value); err == nil {
			if err := s.Accounts.Logout(r.Context(), claims); err != nil {
				slog.Error("failed to revoke session", "user", claims.UserID, "error", err)
			} else {
				slog.Info("user logged out", "user", claims.UserID)
			}
		}
	}
	clearCookie(w, tokenCookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func homeForRole(role string) string {
	if role == model.RoleVendor {
		return "/vendor"
	}
	return "/dashboard"
}
