package auth

import (
	"context"
	goerrors "errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openretail/shopd/internal/domain"
	"github.com/openretail/shopd/internal/identity"
	"github.com/openretail/shopd/pkg/common"
)

// TopicLogin is published after a successful login.
const TopicLogin = "auth.login"

// Claims is the JWT payload carried by api tokens.
type Claims struct {
	Username   string `json:"usr"`
	Role       string `json:"rol"`
	CustomerID *int64 `json:"cid,string,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies credentials and issues/parses api tokens.
type Authenticator struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
}

func NewAuthenticator(db *gorm.DB, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{db: db, secret: []byte(secret), ttl: ttl}
}

// Login verifies the credentials against an active account and returns the
// principal. Every failure path returns the same ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*identity.Principal, error) {
	var user domain.User
	err := a.db.WithContext(ctx).
		Where("username = ? and status = ?", username, common.ENABLED).
		First(&user).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "query user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	role, err := identity.ParseRole(user.Role)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := a.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", user.ID).
		Update("last_login", time.Now().UTC()).Error; err != nil {
		zap.L().Warn("update last_login failed", zap.Error(err))
	}

	return &identity.Principal{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       role,
		CustomerID: user.CustomerID,
	}, nil
}

// IssueToken signs an HS256 token for the principal.
func (a *Authenticator) IssueToken(p *identity.Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		Username:   p.Username,
		Role:       string(p.Role),
		CustomerID: p.CustomerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// ParseToken validates a token string and rebuilds the principal.
func (a *Authenticator) ParseToken(tokenString string) (*identity.Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	uid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "parse token subject")
	}
	role, err := identity.ParseRole(claims.Role)
	if err != nil {
		return nil, errors.Wrap(err, "parse token role")
	}
	return &identity.Principal{
		UserID:     uid,
		Username:   claims.Username,
		Role:       role,
		CustomerID: claims.CustomerID,
	}, nil
}
