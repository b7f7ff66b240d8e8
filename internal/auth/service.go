package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
)

var (
	ErrEmailInUse          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// Service is the identity provider: it owns accounts and tokens, and
// publishes auth-state changes through its Notifier. It never touches
// profile documents beyond the initial write at sign-up; the profile
// coordinator keeps those in sync from the subscription side.
type Service struct {
	db         *mongo.Database
	notifier   *Notifier
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(db *mongo.Database, notifier *Notifier, secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		db:         db,
		notifier:   notifier,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *Service) Notifier() *Notifier {
	return s.notifier
}

type SignUpInput struct {
	Email    string
	Password string
	Name     string
	Username string
	Age      int
	Address  string
	City     string
	State    string
	Zipcode  string
}

// SignUp creates the identity first, then the profile record keyed by the
// new account id, and finally publishes the identity to subscribers.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*models.Profile, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	count, err := s.db.Collection("accounts").CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, nil, err
	}
	if count > 0 {
		return nil, nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	account := models.Account{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(in.Name),
		Role:         "user",
		CreatedAt:    now,
	}

	res, err := s.db.Collection("accounts").InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, nil, ErrEmailInUse
		}
		return nil, nil, err
	}
	accountID, _ := res.InsertedID.(primitive.ObjectID)

	profile := models.Profile{
		ID:        accountID,
		Name:      strings.TrimSpace(in.Name),
		Username:  strings.TrimSpace(in.Username),
		Email:     email,
		Age:       in.Age,
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		Zipcode:   strings.TrimSpace(in.Zipcode),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.db.Collection("users").InsertOne(ctx, profile); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, accountID, email, account.Role)
	if err != nil {
		return nil, nil, err
	}

	log.Println("[AUTH] [INFO] account registered:", email)
	s.notifier.Publish(&Identity{ID: accountID, Email: email, DisplayName: profile.Name})

	return &profile, tokens, nil
}

// SignIn authenticates only. Profile synchronization happens through the
// auth-state subscription, not here.
func (s *Service) SignIn(ctx context.Context, email, password string) (*TokenPair, *models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var account models.Account
	if err := s.db.Collection("accounts").FindOne(ctx, bson.M{"email": email}).Decode(&account); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, account.ID, account.Email, account.Role)
	if err != nil {
		return nil, nil, err
	}

	log.Println("[AUTH] [INFO] sign-in succeeded:", account.Email)
	s.notifier.Publish(&Identity{ID: account.ID, Email: account.Email, DisplayName: account.DisplayName})

	return tokens, &account, nil
}

// SignOut revokes the refresh token and publishes a nil identity.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	plain := strings.TrimSpace(refreshToken)
	if plain == "" {
		return ErrInvalidRefreshToken
	}

	res, err := s.db.Collection("refresh_tokens").UpdateOne(ctx, bson.M{
		"tokenHash": hashToken(plain),
		"revoked":   false,
	}, bson.M{"$set": bson.M{"revoked": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrInvalidRefreshToken
	}

	log.Println("[AUTH] [INFO] signed out")
	s.notifier.Publish(nil)
	return nil
}

// Refresh rotates the refresh token and issues a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *models.Account, error) {
	plain := strings.TrimSpace(refreshToken)
	if plain == "" {
		return nil, nil, ErrInvalidRefreshToken
	}

	var token models.RefreshToken
	if err := s.db.Collection("refresh_tokens").FindOne(ctx, bson.M{
		"tokenHash": hashToken(plain),
		"revoked":   false,
	}).Decode(&token); err != nil {
		return nil, nil, ErrInvalidRefreshToken
	}

	if time.Now().After(token.ExpiresAt) {
		_, _ = s.db.Collection("refresh_tokens").UpdateByID(ctx, token.ID, bson.M{"$set": bson.M{"revoked": true}})
		return nil, nil, ErrRefreshTokenExpired
	}

	var account models.Account
	if err := s.db.Collection("accounts").FindOne(ctx, bson.M{"_id": token.AccountID}).Decode(&account); err != nil {
		return nil, nil, ErrInvalidRefreshToken
	}

	tokens, refreshID, err := s.issueTokensWithID(ctx, account.ID, account.Email, account.Role)
	if err != nil {
		return nil, nil, err
	}

	_, _ = s.db.Collection("refresh_tokens").UpdateByID(ctx, token.ID, bson.M{
		"$set": bson.M{
			"revoked":         true,
			"replacedByToken": refreshID,
		},
	})

	return tokens, &account, nil
}

func (s *Service) issueTokens(ctx context.Context, accountID primitive.ObjectID, email, role string) (*TokenPair, error) {
	tokens, _, err := s.issueTokensWithID(ctx, accountID, email, role)
	return tokens, err
}

func (s *Service) issueTokensWithID(ctx context.Context, accountID primitive.ObjectID, email, role string) (*TokenPair, primitive.ObjectID, error) {
	accessToken, err := issueAccessToken(accountID, email, role, s.secret, s.accessTTL)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}

	plainRefresh := generateRefreshString()
	if plainRefresh == "" {
		return nil, primitive.NilObjectID, errors.New("could not generate refresh token")
	}

	now := time.Now()
	refresh := models.RefreshToken{
		AccountID: accountID,
		TokenHash: hashToken(plainRefresh),
		ExpiresAt: now.Add(s.refreshTTL),
		Revoked:   false,
		CreatedAt: now,
	}

	res, err := s.db.Collection("refresh_tokens").InsertOne(ctx, refresh)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	refreshID, _ := res.InsertedID.(primitive.ObjectID)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: plainRefresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, refreshID, nil
}
