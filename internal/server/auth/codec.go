package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CodecConfig holds the signing material and token policy.
// AccessKey and RefreshKey must be distinct.
type CodecConfig struct {
	AccessKey       []byte
	RefreshKey      []byte
	Issuer          string
	Audience        string
	AccessLifetime  time.Duration
	RefreshLifetime time.Duration
}

// Codec issues and validates HS256 access and refresh tokens.
// It is safe for concurrent use.
type Codec struct {
	cfg CodecConfig
	now func() time.Time
}

type accessClaims struct {
	jwt.RegisteredClaims
	UserName string   `json:"name"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// NewCodec validates cfg and returns a ready Codec.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	switch {
	case len(cfg.AccessKey) == 0 || len(cfg.RefreshKey) == 0:
		return nil, errors.New("codec: signing keys must not be empty")
	case string(cfg.AccessKey) == string(cfg.RefreshKey):
		return nil, errors.New("codec: access and refresh keys must differ")
	case cfg.AccessLifetime <= 0 || cfg.RefreshLifetime <= 0:
		return nil, errors.New("codec: token lifetimes must be positive")
	case cfg.Issuer == "" || cfg.Audience == "":
		return nil, errors.New("codec: issuer and audience are required")
	}
	return &Codec{cfg: cfg, now: time.Now}, nil
}

// IssueAccessToken signs claims into a short-lived access token.
func (c *Codec) IssueAccessToken(claims Claims) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.cfg.Issuer,
			Subject:   claims.Subject,
			Audience:  jwt.ClaimStrings{c.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.AccessLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		UserName: claims.UserName,
		Email:    claims.Email,
		Roles:    claims.Roles,
	})

	s, err := token.SignedString(c.cfg.AccessKey)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return s, nil
}

// IssueRefreshToken signs a refresh token whose jti is id. It returns the
// token together with its expiry, truncated to the precision stored in it.
func (c *Codec) IssueRefreshToken(id string) (string, time.Time, error) {
	now := c.now()
	expires := now.Add(c.cfg.RefreshLifetime).Truncate(jwt.TimePrecision)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    c.cfg.Issuer,
		Audience:  jwt.ClaimStrings{c.cfg.Audience},
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        id,
	})

	s, err := token.SignedString(c.cfg.RefreshKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return s, expires, nil
}

// ValidateRefreshToken reports whether token is a well-formed refresh token
// signed with the refresh key, issued by us for our audience and not expired.
func (c *Codec) ValidateRefreshToken(token string) bool {
	return c.CheckRefreshToken(token) == nil
}

// CheckRefreshToken performs the same check as ValidateRefreshToken and
// returns common.ErrTokenExpired or common.ErrInvalidToken on failure.
func (c *Codec) CheckRefreshToken(token string) error {
	_, err := c.parse(token, &jwt.RegisteredClaims{}, c.cfg.RefreshKey)
	return err
}

// ParseAccessToken validates an access token and returns its claims.
func (c *Codec) ParseAccessToken(token string) (*Claims, error) {
	ac := &accessClaims{}
	if _, err := c.parse(token, ac, c.cfg.AccessKey); err != nil {
		return nil, err
	}
	if ac.Subject == "" {
		return nil, common.ErrInvalidToken
	}
	return &Claims{
		Subject:  ac.Subject,
		UserName: ac.UserName,
		Email:    ac.Email,
		Roles:    ac.Roles,
	}, nil
}

func (c *Codec) parse(token string, claims jwt.Claims, key []byte) (tok *jwt.Token, err error) {
	defer func() {
		// malformed input must never panic
		if r := recover(); r != nil {
			tok, err = nil, common.ErrInvalidToken
		}
	}()

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithAudience(c.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	tok, err = parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key, nil
	})
	switch {
	case err == nil && tok.Valid:
		return tok, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, common.ErrTokenExpired
	default:
		return nil, common.ErrInvalidToken
	}
}
