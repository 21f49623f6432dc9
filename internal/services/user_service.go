package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/baharkarakas/user-directory/internal/auth"
	"github.com/baharkarakas/user-directory/internal/logger"
	"github.com/baharkarakas/user-directory/internal/metrics"
	"github.com/baharkarakas/user-directory/internal/models"
	repo "github.com/baharkarakas/user-directory/internal/repository"
	"github.com/baharkarakas/user-directory/internal/validate"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type TokenIssuer interface {
	Issue(u models.User) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// Runner executes f off the caller's goroutine and waits for it.
// *worker.Pool implements it.
type Runner interface {
	Do(ctx context.Context, f func()) error
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateInput is a partial update: nil fields keep their current value.
type UpdateInput struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UserService is the user directory. REST and any other adapter go through
// it so the account rules live in one place.
type UserService struct {
	users  repo.Users
	hasher PasswordHasher
	tokens TokenIssuer
	wp     Runner
	now    func() time.Time
	log    *slog.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

func NewUserService(users repo.Users, hasher PasswordHasher, tokens TokenIssuer, wp Runner, now func() time.Time, log *slog.Logger) *UserService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &UserService{users: users, hasher: hasher, tokens: tokens, wp: wp, now: now, log: log}
}

// ----------------- Register / Login -----------------

func (s *UserService) Register(ctx context.Context, in RegisterInput) (res models.AuthResult, err error) {
	defer func() { observe("register", err) }()
	log := logger.From(ctx, s.log)

	in.Username = strings.TrimSpace(in.Username)
	if err := validateRegister(in); err != nil {
		return models.AuthResult{}, err
	}
	email := models.NormalizeEmail(in.Email)

	// cheap pre-check so an obvious conflict does not pay for a hash;
	// the check inside WithTx is the one that counts
	if err := checkUnique(s.users, email, in.Username, 0); err != nil {
		return models.AuthResult{}, err
	}

	hash, err := s.hashPassword(ctx, in.Password)
	if err != nil {
		return models.AuthResult{}, err
	}

	var created models.User
	err = s.users.WithTx(func(tx repo.UsersTx) error {
		if err := checkUnique(tx, email, in.Username, 0); err != nil {
			return err
		}
		created = tx.Save(models.User{
			ID:           tx.NextID(),
			Username:     in.Username,
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    s.now(),
		})
		return nil
	})
	if err != nil {
		return models.AuthResult{}, err
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		s.users.Delete(created.ID)
		log.ErrorContext(ctx, "issue token after register", "user_id", created.ID, "err", err)
		return models.AuthResult{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	metrics.UsersTotal.Set(float64(s.users.Count()))
	log.InfoContext(ctx, "user registered", "user_id", created.ID, "username", created.Username)
	return models.AuthResult{User: created.Public(), Token: token}, nil
}

// Login answers every failure (missing field, unknown email, wrong
// password) with the same ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, c Credentials) (res models.AuthResult, err error) {
	defer func() { observe("login", err) }()
	log := logger.From(ctx, s.log)

	email := models.NormalizeEmail(c.Email)
	if email == "" || c.Password == "" {
		log.DebugContext(ctx, "login rejected: missing email or password")
		return models.AuthResult{}, ErrInvalidCredentials
	}

	u, found := s.users.FindByEmail(email)
	digest := u.PasswordHash
	if !found {
		// verify anyway so unknown emails cost the same as wrong passwords
		digest = s.timingDigest()
	}

	var ok bool
	if err := s.wp.Do(ctx, func() { ok = s.hasher.Verify(c.Password, digest) }); err != nil {
		return models.AuthResult{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if !found || !ok {
		log.InfoContext(ctx, "login failed")
		return models.AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		log.ErrorContext(ctx, "issue token on login", "user_id", u.ID, "err", err)
		return models.AuthResult{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	log.InfoContext(ctx, "user logged in", "user_id", u.ID)
	return models.AuthResult{User: u.Public(), Token: token}, nil
}

// Authenticate decodes a bearer token issued by Register or Login.
func (s *UserService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}
	return claims, nil
}

// ----------------- Queries -----------------

func (s *UserService) GetByID(ctx context.Context, id int64) (models.PublicUser, error) {
	u, ok := s.users.FindByID(id)
	if !ok {
		observe("get", ErrNotFound)
		return models.PublicUser{}, ErrNotFound
	}
	observe("get", nil)
	return u.Public(), nil
}

func (s *UserService) List(ctx context.Context) ([]models.PublicUser, error) {
	observe("list", nil)
	return models.PublicUsers(s.users.All()), nil
}

func (s *UserService) Stats(ctx context.Context) models.Stats {
	n := s.users.Count()
	metrics.UsersTotal.Set(float64(n))
	observe("stats", nil)
	return models.Stats{TotalUsers: n, Timestamp: s.now()}
}

// ----------------- Update / Delete -----------------

func (s *UserService) UpdateProfile(ctx context.Context, id int64, in UpdateInput) (res models.PublicUser, err error) {
	defer func() { observe("update", err) }()
	log := logger.From(ctx, s.log)

	if _, ok := s.users.FindByID(id); !ok {
		return models.PublicUser{}, ErrNotFound
	}
	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		in.Username = &trimmed
	}
	if err := validateUpdate(in); err != nil {
		return models.PublicUser{}, err
	}

	var hash string
	if in.Password != nil {
		if hash, err = s.hashPassword(ctx, *in.Password); err != nil {
			return models.PublicUser{}, err
		}
	}

	var updated models.User
	err = s.users.WithTx(func(tx repo.UsersTx) error {
		cur, ok := tx.FindByID(id)
		if !ok {
			return ErrNotFound
		}
		next := cur

		if in.Email != nil {
			email := models.NormalizeEmail(*in.Email)
			if email != cur.Email {
				if err := checkUnique(tx, email, "", id); err != nil {
					return err
				}
				next.Email = email
			}
		}
		if in.Username != nil && *in.Username != cur.Username {
			if err := checkUnique(tx, "", *in.Username, id); err != nil {
				return err
			}
			next.Username = *in.Username
		}
		if in.Password != nil {
			next.PasswordHash = hash
		}

		updated = tx.Save(next)
		return nil
	})
	if err != nil {
		return models.PublicUser{}, err
	}

	log.InfoContext(ctx, "user updated", "user_id", id,
		"username_changed", in.Username != nil,
		"email_changed", in.Email != nil,
		"password_changed", in.Password != nil,
	)
	return updated.Public(), nil
}

// DeleteUser removes targetID on behalf of requesterID. Deleting yourself is
// always refused, whatever the directory holds.
func (s *UserService) DeleteUser(ctx context.Context, requesterID, targetID int64) (res models.PublicUser, err error) {
	defer func() { observe("delete", err) }()

	if requesterID == targetID {
		return models.PublicUser{}, ErrSelfDeleteNotAllowed
	}

	var deleted models.User
	err = s.users.WithTx(func(tx repo.UsersTx) error {
		u, ok := tx.FindByID(targetID)
		if !ok {
			return ErrNotFound
		}
		tx.Delete(targetID)
		deleted = u
		return nil
	})
	if err != nil {
		return models.PublicUser{}, err
	}

	metrics.UsersTotal.Set(float64(s.users.Count()))
	logger.From(ctx, s.log).InfoContext(ctx, "user deleted", "user_id", targetID, "by", requesterID)
	return deleted.Public(), nil
}

// ----------------- Helpers -----------------

func (s *UserService) hashPassword(ctx context.Context, plain string) (string, error) {
	var (
		digest  string
		hashErr error
	)
	if err := s.wp.Do(ctx, func() { digest, hashErr = s.hasher.Hash(plain) }); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if hashErr != nil {
		logger.From(ctx, s.log).ErrorContext(ctx, "password hashing failed", "err", hashErr)
		return "", fmt.Errorf("%w: %v", ErrInternal, hashErr)
	}
	return digest, nil
}

func (s *UserService) timingDigest() string {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.hasher.Hash("timing-equalizer-Pw1")
	})
	return s.dummyDigest
}

// checkUnique reports the email conflict before the username one. Empty
// values are skipped; selfID lets an update keep its own values.
func checkUnique(tx repo.UsersTx, email, username string, selfID int64) error {
	if email != "" {
		if u, ok := tx.FindByEmail(email); ok && u.ID != selfID {
			return ErrEmailInUse
		}
	}
	if username != "" {
		if u, ok := tx.FindByUsername(username); ok && u.ID != selfID {
			return ErrUsernameInUse
		}
	}
	return nil
}

func validateRegister(in RegisterInput) error {
	var errs validate.Errs
	errs.Add(
		validate.Required("username", in.Username),
		validate.MinLen("username", in.Username, minUsernameLen),
		validate.Username("username", in.Username),
	)
	errs.Add(
		validate.Required("email", in.Email),
		validate.Email("email", in.Email),
	)
	errs.Add(
		validate.Required("password", in.Password),
		validate.Password("password", in.Password, minPasswordLen),
	)
	if len(errs) > 0 {
		return &ValidationError{Violations: errs}
	}
	return nil
}

func validateUpdate(in UpdateInput) error {
	var errs validate.Errs
	if in.Username != nil {
		errs.Add(
			validate.MinLen("username", *in.Username, minUsernameLen),
			validate.Username("username", *in.Username),
		)
	}
	if in.Email != nil {
		errs.Add(validate.Email("email", *in.Email))
	}
	if in.Password != nil {
		errs.Add(validate.Password("password", *in.Password, minPasswordLen))
	}
	if len(errs) > 0 {
		return &ValidationError{Violations: errs}
	}
	return nil
}

func observe(op string, err error) {
	metrics.DirectoryOpsTotal.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrSelfDeleteNotAllowed):
		return "forbidden"
	}
	return "error"
}
