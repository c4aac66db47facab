// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, issuing/refreshing JWTs
// plus server-stored refresh tokens, and the user's profile.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/hydratr/internal/common"
	"github.com/dmitrijs2005/hydratr/internal/dbx"
	"github.com/dmitrijs2005/hydratr/internal/logging"
	"github.com/dmitrijs2005/hydratr/internal/server/auth"
	"github.com/dmitrijs2005/hydratr/internal/server/config"
	"github.com/dmitrijs2005/hydratr/internal/server/models"
	"github.com/dmitrijs2005/hydratr/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hydratr/internal/server/storage"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUserNameLen = 3
	maxUserNameLen = 64
	minPasswordLen = 6
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLen = 72

	pictureURLValidity = 15 * time.Minute
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// ProfileUpdate carries the editable profile fields. A non-positive goal
// and an unknown theme are ignored.
type ProfileUpdate struct {
	DailyGoal int
	Theme     models.Theme
}

// Picture is either a redirect URL (object stores that presign) or a body
// to stream. Callers must close Body when it is set.
type Picture struct {
	URL         string
	Body        io.ReadCloser
	ContentType string
}

// UserService provides account operations:
//   - Register/Login/RefreshToken/Logout: authentication
//   - GetUser/UpdateProfile/UpdateTheme: profile settings
//   - UploadProfilePicture/ProfilePicture: avatar storage
//   - DeleteAccount: removal with cascade
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	storage                      storage.Storage
	log                          logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	defaultDailyGoal             int
	bcryptCost                   int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, st storage.Storage, cfg *config.Config, log logging.Logger) *UserService {
	goal := cfg.DefaultDailyGoal
	if goal <= 0 {
		goal = models.DefaultDailyGoal
	}
	return &UserService{
		db:                           db,
		repomanager:                  m,
		storage:                      st,
		log:                          log.With("module", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		defaultDailyGoal:             goal,
		bcryptCost:                   bcrypt.DefaultCost,
	}
}

// Register validates the credentials and creates a user with the default
// goal, light theme and no picture.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		UserName:       username,
		Email:          email,
		PasswordHash:   hash,
		DailyGoal:      s.defaultDailyGoal,
		Theme:          models.ThemeLight,
		ProfilePicture: models.DefaultProfilePicture,
	}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

func validateRegistration(username, email, password string) error {
	if n := len(username); n < minUserNameLen || n > maxUserNameLen {
		return fmt.Errorf("%w: username must be %d to %d characters", common.ErrorValidation, minUserNameLen, maxUserNameLen)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	}
	if n := len(password); n < minPasswordLen || n > maxPasswordLen {
		return fmt.Errorf("%w: password must be %d to %d characters", common.ErrorValidation, minPasswordLen, maxPasswordLen)
	}
	return nil
}

// Login verifies the password and, on success, returns a new TokenPair.
// Unknown users and wrong passwords are indistinguishable.
func (s *UserService) Login(ctx context.Context, userName, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, strings.TrimSpace(userName))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}
	return s.generateTokenPair(ctx, user.ID, s.db)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		_ = repo.Delete(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the refresh token. Unknown tokens are not an error.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

func (s *UserService) GetUserByName(ctx context.Context, userName string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByUsername(ctx, userName)
}

// UpdateProfile applies the valid parts of upd and returns the stored user.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*models.User, error) {
	if upd.DailyGoal > models.MaxAmount {
		return nil, fmt.Errorf("%w: daily goal cannot exceed %d ml", common.ErrorValidation, models.MaxAmount)
	}

	var user *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		u, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if upd.DailyGoal > 0 {
			u.DailyGoal = upd.DailyGoal
		}
		if upd.Theme.Valid() {
			u.Theme = upd.Theme
		}
		if err := repo.UpdateProfile(ctx, userID, u.DailyGoal, u.Theme); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	return user, nil
}

// UpdateTheme switches the color scheme; unknown themes are rejected.
func (s *UserService) UpdateTheme(ctx context.Context, userID int64, theme models.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("%w: invalid theme", common.ErrorValidation)
	}
	_, err := s.UpdateProfile(ctx, userID, ProfileUpdate{Theme: theme})
	return err
}

// UploadProfilePicture stores the picture under a fresh key, points the
// user at it and removes the previous upload.
func (s *UserService) UploadProfilePicture(ctx context.Context, userID int64, filename string, data io.Reader) (string, error) {
	key, err := storage.ProfilePictureKey(userID, filename)
	if err != nil {
		return "", err
	}
	contentType, _ := storage.ContentType(filename)

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := s.storage.Upload(ctx, key, contentType, data); err != nil {
		return "", fmt.Errorf("error storing picture: %w", err)
	}
	if err := s.repomanager.Users(s.db).UpdateProfilePicture(ctx, userID, key); err != nil {
		s.removePicture(ctx, key)
		return "", fmt.Errorf("error saving picture reference: %w", err)
	}
	if user.ProfilePicture != key {
		s.removePicture(ctx, user.ProfilePicture)
	}
	return key, nil
}

// ProfilePicture locates the user's uploaded picture. Users without one
// get common.ErrorNotFound.
func (s *UserService) ProfilePicture(ctx context.Context, userID int64) (*Picture, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ProfilePicture == "" || user.ProfilePicture == models.DefaultProfilePicture {
		return nil, common.ErrorNotFound
	}

	if p, ok := s.storage.(storage.Presigner); ok {
		url, err := p.PresignGet(ctx, user.ProfilePicture, pictureURLValidity)
		if err != nil {
			return nil, err
		}
		return &Picture{URL: url}, nil
	}

	body, err := s.storage.Download(ctx, user.ProfilePicture)
	if err != nil {
		return nil, err
	}
	ct, ok := storage.ContentType(user.ProfilePicture)
	if !ok {
		ct = "application/octet-stream"
	}
	return &Picture{Body: body, ContentType: ct}, nil
}

// DeleteAccount removes the user. Entries and refresh tokens are removed
// by the database; the picture is removed best effort afterwards.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	var picture string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		u, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		picture = u.ProfilePicture
		return repo.Delete(ctx, userID)
	})
	if err != nil {
		return fmt.Errorf("error deleting account: %w", err)
	}
	s.removePicture(ctx, picture)
	s.log.Info(ctx, "account deleted", "user_id", userID)
	return nil
}

func (s *UserService) removePicture(ctx context.Context, key string) {
	if key == "" || key == models.DefaultProfilePicture {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "failed to remove picture", "key", key, "error", err)
	}
}

// --- helpers below ---

func (s *UserService) generateAccessToken(userID int64) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID int64, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
