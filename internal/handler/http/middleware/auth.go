package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
	"github.com/cmlabs-hris/labor-roster-go/internal/handler/http/response"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}
			tokenType, ok := claims[jwt.ClaimType].(string)
			if tokenType != jwt.TokenTypeAccess || !ok {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}
			if _, ok := jwt.ActorFromClaims(claims); !ok {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// ActorFromContext returns the caller identified by the verified token.
func ActorFromContext(ctx context.Context) (user.Actor, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return user.Actor{}, user.ErrInvalidToken
	}
	actor, ok := jwt.ActorFromClaims(claims)
	if !ok {
		return user.Actor{}, user.ErrActorRequired
	}
	return actor, nil
}
