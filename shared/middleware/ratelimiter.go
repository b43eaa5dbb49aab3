package middleware

import (
	"net/http"

	"github.com/itchan-dev/filemsg/shared/errors"
	"github.com/itchan-dev/filemsg/shared/middleware/ratelimiter"
	"github.com/itchan-dev/filemsg/shared/utils"
)

// RateLimit rejects requests whose identity has no tokens left.
// App users are not limited.
func RateLimit(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetUserFromContext(r).IsApp() {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext identifies requests by the authenticated user.
func GetUserIDFromContext(r *http.Request) (string, error) {
	user := GetUserFromContext(r)
	if user == nil || user.Id == "" {
		return "", errors.Unauthorized("Please sign-in")
	}
	return "user_" + user.Id, nil
}
