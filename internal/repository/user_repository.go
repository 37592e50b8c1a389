package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/feedback-board/internal/model"
	"github.com/iliyamo/feedback-board/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,name,email,password_hash,google_id,avatar_url,has_custom_avatar,is_verified,login_method,verify_token,verify_expires,reset_token,reset_expires,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.GoogleID,
		&u.AvatarURL, &u.HasCustomAvatar, &u.IsVerified, &u.LoginMethod,
		&u.VerifyToken, &u.VerifyExpires, &u.ResetToken, &u.ResetExpires,
		&u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// Create inserts an email/password user with a pending verification token
// and returns its ID.
func (r *UserRepo) Create(ctx context.Context, name, email, password, avatarURL string, cost int) (uint64, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, "", err
	}
	token, err := utils.NewActionToken()
	if err != nil {
		return 0, "", err
	}
	expires := time.Now().UTC().Add(10 * time.Minute)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name,email,password_hash,avatar_url,login_method,is_verified,verify_token,verify_expires) VALUES (?,?,?,?,?,?,?,?)",
		name, email, hash, avatarURL, model.LoginMethodEmail, false, token, expires)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, "", ErrEmailExists
		}
		return 0, "", err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, "", err
	}
	return uint64(id), token, nil
}

// CreateGoogle inserts a verified account from a Google ID token payload.
func (r *UserRepo) CreateGoogle(ctx context.Context, name, email, googleID, avatarURL string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name,email,google_id,avatar_url,login_method,is_verified) VALUES (?,?,?,?,?,TRUE)",
		name, email, googleID, avatarURL, model.LoginMethodGoogle)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByGoogleID fetches a user by Google subject id.
func (r *UserRepo) GetByGoogleID(ctx context.Context, googleID string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE google_id=? LIMIT 1", googleID))
}

// LinkGoogle attaches a Google subject id to an existing email account and
// marks it verified; the Google picture is adopted unless the user already
// chose a custom avatar.
func (r *UserRepo) LinkGoogle(ctx context.Context, id uint64, googleID, googleAvatar string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET google_id=?, is_verified=TRUE, verify_token=NULL, verify_expires=NULL,
		 avatar_url=IF(has_custom_avatar OR ?='', avatar_url, ?) WHERE id=?`,
		googleID, googleAvatar, googleAvatar, id)
	return err
}

// MarkVerified flips the verification flag without touching tokens; used
// when a Google sign-in proves ownership of the address.
func (r *UserRepo) MarkVerified(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_verified=TRUE, verify_token=NULL, verify_expires=NULL WHERE id=?", id)
	return err
}

// AdoptGoogleAvatar refreshes the stored avatar from the Google profile
// picture for accounts without a custom avatar.
func (r *UserRepo) AdoptGoogleAvatar(ctx context.Context, id uint64, avatarURL string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET avatar_url=? WHERE id=? AND NOT has_custom_avatar", avatarURL, id)
	return err
}

// UpdateProfile stores a new display name and/or avatar.  Empty values leave
// the corresponding column untouched.  customAvatar marks the avatar as a
// deliberate user choice.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, avatarURL string, customAvatar bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET name=IF(?='',name,?), avatar_url=IF(?='',avatar_url,?),
		 has_custom_avatar=(has_custom_avatar OR ?) WHERE id=?`,
		name, name, avatarURL, avatarURL, customAvatar, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports zero affected rows for no-op updates as well, so a
		// missing row has to be distinguished with an explicit lookup.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// SetPassword stores a new password hash and flips the login method to
// email, the rule for Google accounts adding a password.
func (r *UserRepo) SetPassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, login_method=? WHERE id=?",
		hash, model.LoginMethodEmail, id)
	return err
}

// SetVerifyToken issues a fresh email verification token valid for ttl.
func (r *UserRepo) SetVerifyToken(ctx context.Context, id uint64, ttl time.Duration) (string, error) {
	token, err := utils.NewActionToken()
	if err != nil {
		return "", err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET verify_token=?, verify_expires=? WHERE id=?",
		token, time.Now().UTC().Add(ttl), id)
	return token, err
}

// VerifyByToken marks the matching, unexpired account verified and clears
// the token.  Returns the verified user.
func (r *UserRepo) VerifyByToken(ctx context.Context, token string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE verify_token=? AND verify_expires>? LIMIT 1",
		token, time.Now().UTC()))
	if err != nil {
		return u, err
	}
	if err := r.MarkVerified(ctx, u.ID); err != nil {
		return u, err
	}
	u.IsVerified = true
	u.VerifyToken, u.VerifyExpires = nil, nil
	return u, nil
}

// SetResetToken issues a password reset token valid for ttl.  A token
// younger than resendWait still stands: the update is guarded so the row is
// left untouched and ErrConflict comes back instead, which doubles as the
// request throttle without a read-then-write race.  The caller must have
// resolved id to an existing user.
func (r *UserRepo) SetResetToken(ctx context.Context, id uint64, ttl, resendWait time.Duration) (string, error) {
	token, err := utils.NewActionToken()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token=?, reset_expires=? WHERE id=? AND (reset_expires IS NULL OR reset_expires<=?)",
		token, now.Add(ttl), id, now.Add(ttl-resendWait))
	if err != nil {
		return "", err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", ErrConflict
	}
	return token, nil
}

// ResetPasswordByToken sets a new password for the account holding a valid
// reset token, clears the token and flips the login method to email.
// Returns the updated user.
func (r *UserRepo) ResetPasswordByToken(ctx context.Context, token, password string, cost int) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE reset_token=? AND reset_expires>? LIMIT 1",
		token, time.Now().UTC()))
	if err != nil {
		return u, err
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return u, err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, login_method=?, reset_token=NULL, reset_expires=NULL WHERE id=?",
		hash, model.LoginMethodEmail, u.ID)
	if err != nil {
		return u, err
	}
	u.PasswordHash = &hash
	u.LoginMethod = model.LoginMethodEmail
	u.ResetToken, u.ResetExpires = nil, nil
	return u, nil
}
