package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/iliyamo/library-seat-reservation/internal/model"
    "github.com/iliyamo/library-seat-reservation/internal/utils"
)

// UserRepo provides data access for members and their last known
// location.  The location row is written only by the periodic client
// report; the scheduling core reads it during attendance checks.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a member and returns the new id.  A duplicate email
// yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, cost int) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
        name, email, hash, role)
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

// GetByEmail fetches a member by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        "SELECT id,name,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
        email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    return u, err
}

// GetByID fetches a member by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        "SELECT id,name,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
        id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    return u, err
}

// UpsertLocation records the member's latest reported position,
// replacing any previous sample.
func (r *UserRepo) UpsertLocation(ctx context.Context, loc model.UserLocation) error {
    _, err := r.DB.ExecContext(ctx,
        `INSERT INTO user_locations (user_id, latitude, longitude, recorded_at)
         VALUES (?,?,?,?)
         ON DUPLICATE KEY UPDATE latitude=VALUES(latitude), longitude=VALUES(longitude), recorded_at=VALUES(recorded_at)`,
        loc.UserID, loc.Latitude, loc.Longitude, loc.RecordedAt)
    return err
}

// LastLocation returns the member's last known position, or
// ErrNoLocation when none was ever reported.
func (r *UserRepo) LastLocation(ctx context.Context, userID uint64) (*model.UserLocation, error) {
    var loc model.UserLocation
    err := r.DB.QueryRowContext(ctx,
        "SELECT user_id, latitude, longitude, recorded_at FROM user_locations WHERE user_id=?",
        userID).Scan(&loc.UserID, &loc.Latitude, &loc.Longitude, &loc.RecordedAt)
    if err == sql.ErrNoRows {
        return nil, ErrNoLocation
    }
    if err != nil {
        return nil, err
    }
    return &loc, nil
}

// TokenRepo stores refresh token hashes for session management.  Only
// the SHA-256 digest of a token is persisted.
type TokenRepo struct{ DB *sql.DB }

// NewTokenRepo returns a TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh persists the hash of a freshly issued refresh token.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
    _, err := r.DB.ExecContext(ctx,
        "INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
        userID, tokenHash, expiresAt)
    return err
}

// FindValidRefresh resolves a token hash to its owning user when the
// token is neither revoked nor expired.  Returns sql.ErrNoRows
// otherwise.
func (r *TokenRepo) FindValidRefresh(ctx context.Context, tokenHash string, now time.Time) (model.RefreshToken, error) {
    var t model.RefreshToken
    var revoked sql.NullTime
    err := r.DB.QueryRowContext(ctx,
        `SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
         FROM refresh_tokens
         WHERE token_hash=? AND revoked_at IS NULL AND expires_at > ? LIMIT 1`,
        tokenHash, now).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &revoked, &t.CreatedAt)
    if err != nil {
        return t, err
    }
    if revoked.Valid {
        rv := revoked.Time
        t.RevokedAt = &rv
    }
    return t, nil
}

// RevokeRefresh marks the token revoked.  Revoking an unknown or
// already revoked token affects no rows and is not an error.
func (r *TokenRepo) RevokeRefresh(ctx context.Context, tokenHash string, at time.Time) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE refresh_tokens SET revoked_at=? WHERE token_hash=? AND revoked_at IS NULL",
        at, tokenHash)
    return err
}
