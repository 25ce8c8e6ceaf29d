// Package auth provides API token authentication for the application.
//
// It supports two authentication modes:
//   - "none": No authentication required (default), all requests act as the local user
//   - "token": Every /api request must carry a Bearer token issued by `user create`
//
// # Configuration
//
//	AUTH_MODE=none          # Default, no auth required
//	AUTH_MODE=token         # Bearer tokens required
//	AUTH_TOKEN_EXPIRY=720h  # Optional token lifetime, 0 disables expiry
//
// Only the SHA-256 hash of a token is stored. The plaintext is shown once
// when the token is issued.
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db), cfg.Auth)
//	router.Use(auth.NewMiddleware(authService, cfg.Auth, log).Handler())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)  // Returns database.DefaultUserID in "none" mode
package auth
