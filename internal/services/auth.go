package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/paperrec-backend/internal/data/repos"
	"github.com/yungbote/paperrec-backend/internal/platform/apierr"
	"github.com/yungbote/paperrec-backend/internal/platform/ctxutil"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

// JWTClaims carries the numeric user id in Subject. Tokens minted elsewhere may use
// a user_id claim instead.
type JWTClaims struct {
	UserID    uint   `json:"user_id,omitempty"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// IssueToken signs an access token for an existing user. An empty sessionID gets a fresh one.
	IssueToken(ctx context.Context, userID uint, sessionID string) (string, error)
	// SetContextFromToken verifies tokenString and attaches the caller to ctx.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	log          *logger.Logger
	users        repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
	now          func() time.Time
}

func NewAuthService(baseLog *logger.Logger, users repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &authService{
		log:          baseLog.With("service", "AuthService"),
		users:        users,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		now:          time.Now,
	}
}

func (as *authService) IssueToken(ctx context.Context, userID uint, sessionID string) (string, error) {
	if as.jwtSecretKey == "" {
		return "", errors.New("jwt secret not configured")
	}
	if as.users != nil {
		u, err := as.users.GetByID(dbctx.Context{Ctx: ctx}, userID)
		if err != nil {
			return "", err
		}
		if u == nil {
			return "", fmt.Errorf("%w: user %d", apierr.ErrNotFound, userID)
		}
	}
	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.New().String()
	}
	now := as.now()
	claims := JWTClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	if as.jwtSecretKey == "" {
		return ctx, fmt.Errorf("%w: authentication disabled", apierr.ErrUnauthorized)
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", apierr.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("%w: invalid or expired token", apierr.ErrUnauthorized)
	}
	id := uint64(claims.UserID)
	if claims.Subject != "" {
		id, err = strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			id = 0
		}
	}
	if id == 0 {
		return ctx, fmt.Errorf("%w: token names no user", apierr.ErrUnauthorized)
	}

	rd := ctxutil.GetRequestData(ctx)
	next := &ctxutil.RequestData{UserID: uint(id), SessionID: claims.SessionID}
	if next.SessionID == "" && rd != nil {
		next.SessionID = rd.SessionID
	}
	return ctxutil.WithRequestData(ctx, next), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
