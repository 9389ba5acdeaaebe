package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/plantpedia/plantpedia/internal/config"
	"github.com/plantpedia/plantpedia/internal/models"
)

var (
	// ErrTokenExpired means the token was well-formed and correctly signed
	// but its expiry instant has passed. No clock skew is tolerated.
	ErrTokenExpired = errors.New("token: expired")
	// ErrInvalidSignature means the signature does not match the configured
	// secret.
	ErrInvalidSignature = errors.New("token: invalid signature")
	// ErrInvalidToken covers every other rejection: malformed text, wrong
	// issuer or audience, unexpected signing method.
	ErrInvalidToken = errors.New("token: invalid")
)

const dateLayout = "2006-01-02"

// Claims is the payload of an issued token. UserID and Username are always
// present; the profile fields default to empty when unknown.
type Claims struct {
	jwt.RegisteredClaims
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	LastName    string `json:"last_name,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	lifetime time.Duration
}

func New(cfg config.JWT) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, config.ErrNoSecret
	}
	minutes := cfg.ExpirationMinutes
	if minutes <= 0 {
		minutes = config.DefaultExpirationMinutes
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = config.DefaultIssuer
	}
	audience := cfg.Audience
	if audience == "" {
		audience = config.DefaultAudience
	}
	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   issuer,
		audience: audience,
		lifetime: time.Duration(minutes) * time.Minute,
	}, nil
}

func (t *TokenService) Lifetime() time.Duration {
	return t.lifetime
}

// Issue mints a signed token for user. The returned expiry matches the
// token's exp claim so cookie lifetimes can be aligned with it.
func (t *TokenService) Issue(user *models.UserAccount, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(t.lifetime)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID:    user.ID,
		Username:  username,
		LastName:  user.LastName,
		Gender:    user.Gender,
		AvatarURL: user.AvatarURL,
	}
	if !user.DateOfBirth.IsZero() {
		claims.DateOfBirth = user.DateOfBirth.Format(dateLayout)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: signing failed: %w", err)
	}
	return signed, exp, nil
}

// Verify validates signature, issuer, audience and expiry, and returns the
// claims. Rejections are classified as ErrTokenExpired, ErrInvalidSignature
// or ErrInvalidToken so the cookie gate can branch on them.
func (t *TokenService) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
