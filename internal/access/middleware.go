package access

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/retailpro/retailpro/internal/auth"
	"github.com/retailpro/retailpro/internal/shared"
)

// Principal describes the resolved identity for a protected page.
type Principal struct {
	UserID  int64
	Profile *auth.Profile
}

// ProfileSource resolves profiles for signed-in users.
type ProfileSource interface {
	Profile(ctx context.Context, userID int64) (*auth.Profile, error)
}

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal placed by RequireRole.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// Guard gates page trees by profile role. The same policy applies to every
// protected route: no session or no profile redirects to login, a role
// mismatch redirects to that role's home.
type Guard struct {
	Profiles ProfileSource
	Logger   *slog.Logger
}

// RequireRole resolves the session user, loads its profile and enforces the
// expected role before the page handler runs.
func (g Guard) RequireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := g.sessionUserID(r)
			if !ok {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}
			profile, err := g.Profiles.Profile(r.Context(), userID)
			if err != nil {
				// Includes the profile-less authenticated session: the
				// account state is inconsistent, send back to login.
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}
			if profile.Role != role {
				http.Redirect(w, r, homeFor(profile.Role), http.StatusSeeOther)
				return
			}
			principal := &Principal{UserID: userID, Profile: profile}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func (g Guard) sessionUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if g.Logger != nil {
			g.Logger.Error("access parse user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}

func homeFor(role auth.Role) string {
	switch role {
	case auth.RoleClient:
		return "/client/dashboard"
	case auth.RoleOwner:
		return "/dashboard"
	default:
		return "/auth/login"
	}
}
