package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	apperrors "patient-care-portal/internal/platform/errors"
)

type contextKey string

const profileContextKey contextKey = "profile"

// DemoRoleHeader selects the demo profile's role when nobody is signed in.
const DemoRoleHeader = "X-Demo-Role"

// UserMetadata is the metadata the auth backend stores at sign-up.
type UserMetadata struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Claims are the access-token claims issued by the hosted auth backend.
type Claims struct {
	jwt.RegisteredClaims
	Email        string       `json:"email,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

type Authenticator struct {
	secret   []byte
	demoMode bool
	repo     Repository
}

func NewAuthenticator(secret string, demoMode bool, repo Repository) *Authenticator {
	return &Authenticator{
		secret:   []byte(secret),
		demoMode: demoMode,
		repo:     repo,
	}
}

// Middleware resolves the caller's profile and stores it in the request
// context. Requests without a token get a demo profile when demo mode is on.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if !a.demoMode {
				apperrors.WriteError(w, apperrors.Unauthorized("missing authorization header"))
				return
			}
			role, _ := ParseRole(r.Header.Get(DemoRoleHeader))
			p := DemoProfile(role)
			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), &p)))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			apperrors.WriteError(w, apperrors.Unauthorized("invalid authorization header format"))
			return
		}

		claims, err := a.ParseToken(parts[1])
		if err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("rejected token")
			apperrors.WriteError(w, apperrors.Unauthorized("invalid token"))
			return
		}

		p, err := a.profileFor(r.Context(), claims)
		if err != nil {
			apperrors.WriteError(w, apperrors.Internal(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), p)))
	})
}

// ParseToken validates an HS256 access token.
func (a *Authenticator) ParseToken(tokenString string) (*Claims, error) {
	if len(a.secret) == 0 {
		return nil, errors.New("token verification is not configured")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// profileFor loads the stored profile, falling back to the token's metadata
// when the profile row has not been created yet.
func (a *Authenticator) profileFor(ctx context.Context, claims *Claims) (*Profile, error) {
	p, err := a.repo.GetByID(ctx, claims.Subject)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	role, ok := ParseRole(claims.UserMetadata.Role)
	if !ok {
		role = RolePatient
	}
	return &Profile{
		ID:        claims.Subject,
		Role:      role,
		FirstName: claims.UserMetadata.FirstName,
		LastName:  claims.UserMetadata.LastName,
	}, nil
}

func WithProfile(ctx context.Context, p *Profile) context.Context {
	return context.WithValue(ctx, profileContextKey, p)
}

func FromContext(ctx context.Context) (*Profile, bool) {
	p, ok := ctx.Value(profileContextKey).(*Profile)
	return p, ok && p != nil
}

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				apperrors.WriteError(w, apperrors.Unauthorized("authentication required"))
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			apperrors.WriteError(w, apperrors.Forbidden("insufficient permissions"))
		})
	}
}
