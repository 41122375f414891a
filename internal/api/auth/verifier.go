package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/villadaniela/fincaweb/internal/api/authz"
	"github.com/villadaniela/fincaweb/internal/db"
)

// VerifyCredentials authenticates an email/password pair against the stored
// bcrypt hash. An unknown email, an account with no password, and a wrong
// password all return (nil, nil) so callers cannot distinguish which emails
// are registered. The returned identity never includes the hash.
func VerifyCredentials(ctx context.Context, q *db.Queries, emailAddr, password string) (*authz.AuthUser, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || password == "" {
		return nil, nil
	}

	user, err := q.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if !user.HashedPassword.Valid || user.HashedPassword.String == "" {
		return nil, nil
	}

	if !VerifyPassword(user.HashedPassword.String, password) {
		return nil, nil
	}

	return authUserFromRow(user), nil
}
