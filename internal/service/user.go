package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Neeraj110/chatApp/internal/media"
	"github.com/Neeraj110/chatApp/internal/model"
	"github.com/Neeraj110/chatApp/pkg/logger"
)

const bcryptCost = 12

// GoogleProfile is the identity returned by the federated login provider.
type GoogleProfile struct {
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier exchanges an authorization code for the user's Google
// profile.
type GoogleVerifier interface {
	Verify(ctx context.Context, code string) (GoogleProfile, error)
}

// UserService handles account lifecycle and session token issuance.
type UserService struct {
	users  UserStore
	media  media.Store
	google GoogleVerifier

	jwtSecret []byte
	jwtTTL    time.Duration
	logger    *logger.Logger
}

// NewUserService creates a new user service. google may be nil when federated
// login is not configured.
func NewUserService(users UserStore, mediaStore media.Store, google GoogleVerifier, jwtSecret string, jwtTTL time.Duration, log *logger.Logger) *UserService {
	return &UserService{
		users:     users,
		media:     mediaStore,
		google:    google,
		jwtSecret: []byte(jwtSecret),
		jwtTTL:    jwtTTL,
		logger:    log,
	}
}

// Register creates a local account. The caller validates field shapes; this
// enforces email uniqueness and hashes the credential.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, invalid("User with this email already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, model.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		AuthType: model.AuthTypeLocal,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.Hex()))
	return &user, nil
}

// Login checks the credential and issues a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", unauthenticated("Invalid email or password")
		}
		return nil, "", err
	}

	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", unauthenticated("Invalid email or password")
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GoogleLogin exchanges the authorization code, creating the account on first
// login.
func (s *UserService) GoogleLogin(ctx context.Context, code string) (*model.User, string, error) {
	if s.google == nil {
		return nil, "", upstream("Google login is not configured")
	}

	profile, err := s.google.Verify(ctx, code)
	if err != nil {
		s.logger.Warn("google code exchange failed", zap.Error(err))
		return nil, "", upstream("Failed to verify Google account")
	}

	user, err := s.users.GetByEmail(ctx, profile.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		created, cerr := s.users.Create(ctx, model.User{
			Name:     profile.Name,
			Email:    profile.Email,
			Avatar:   profile.Picture,
			AuthType: model.AuthTypeGoogle,
		})
		if cerr != nil {
			return nil, "", cerr
		}
		user = &created
		s.logger.Info("user created via google login", zap.String("user_id", user.ID.Hex()))
	} else if err != nil {
		return nil, "", err
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GenerateToken issues a signed session token for the user.
func (s *UserService) GenerateToken(userID primitive.ObjectID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// Profile returns the user's own account view.
func (s *UserService) Profile(ctx context.Context, userID primitive.ObjectID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes name and/or email. An email already used by another
// account is rejected.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, email string) (*model.User, error) {
	if email != "" {
		inUse, err := s.users.EmailInUseByOther(ctx, email, userID)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, invalid("Email is already in use by another user")
		}
	}

	user, err := s.users.UpdateProfile(ctx, userID, name, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// UpdateAvatar replaces the stored avatar object. The new object is uploaded
// first so a failed upload leaves the current avatar in place; the old object
// is then removed best-effort.
func (s *UserService) UpdateAvatar(ctx context.Context, userID primitive.ObjectID, file multipart.File, header *multipart.FileHeader) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("User not found")
		}
		return nil, err
	}

	mimeType, err := media.DetectType(file, header)
	if err != nil {
		return nil, err
	}
	if !media.Allowed(mimeType, media.AvatarTypes) {
		return nil, invalid("Only JPEG, PNG, WEBP images allowed for avatar")
	}

	url, err := s.media.Upload(ctx, file, header, "avatars")
	if err != nil {
		s.logger.Error("avatar upload failed", zap.Error(err))
		return nil, upstream("Failed to upload avatar")
	}

	if user.Avatar != "" {
		if err := s.media.Delete(ctx, user.Avatar); err != nil {
			s.logger.Warn("failed to delete old avatar", zap.Error(err))
		}
	}

	return s.users.SetAvatar(ctx, userID, url)
}

// DeleteAccount removes the user record and its avatar object. Conversations
// and messages referencing the account keep their stale references.
func (s *UserService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notFound("User not found")
		}
		return err
	}

	if user.Avatar != "" {
		if err := s.media.Delete(ctx, user.Avatar); err != nil {
			s.logger.Warn("failed to delete avatar", zap.Error(err))
		}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("account deleted", zap.String("user_id", userID.Hex()))
	return nil
}

// ListOthers returns every other user's public profile, for the contact
// picker.
func (s *UserService) ListOthers(ctx context.Context, userID primitive.ObjectID) ([]model.PublicUser, error) {
	users, err := s.users.ListOthers(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}
