package auth

import (
	"context"
	"log/slog"

	"livehub/domain"
	apperrors "livehub/errors"
	"livehub/repositories"
)

// Directory authenticates bearer tokens against the account records.
type Directory struct {
	users  repositories.IUserRepository
	secret []byte
	log    *slog.Logger
}

func NewDirectory(users repositories.IUserRepository, secret string, log *slog.Logger) *Directory {
	return &Directory{users: users, secret: []byte(secret), log: log}
}

// Authenticate resolves a token into the caller's identity, with ban and
// role flags taken from the account record. A token whose signature or
// expiry fails, or whose subject no longer exists, is rejected outright:
// only an absent token may fall back to a guest, and that decision
// belongs to the transport layer.
func (d *Directory) Authenticate(_ context.Context, token string) (domain.Identity, error) {
	claims, err := ValidateToken(d.secret, token)
	if err != nil {
		d.log.Debug("Token rejected", "error", err)
		return domain.Identity{}, apperrors.ErrUnauthenticated
	}

	user, err := d.users.UserByID(claims.UserID)
	if err != nil {
		d.log.Debug("Token subject unknown", "user_id", claims.UserID)
		return domain.Identity{}, apperrors.ErrUnauthenticated
	}

	return domain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Banned:   user.Banned,
		Admin:    user.Admin,
	}, nil
}
