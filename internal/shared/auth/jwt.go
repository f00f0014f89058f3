package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"jobtracker-backend/internal/shared/telemetry"
)

// RoleAdmin grants access to every user's records.
const RoleAdmin = "admin"

const (
	devSecret         = "dev-secret"
	defaultCacheSize  = 1024
	defaultCacheTTL   = 5 * time.Minute
	jwksRefreshPeriod = time.Hour
	jwksHTTPTimeout   = 10 * time.Second
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	errMissingSecret = errors.New("jwt secret not configured")
)

// Claims is the identity carried by a verified token.
type Claims struct {
	Sub       string
	Email     string
	Name      string
	Role      string
	ExpiresAt time.Time
}

// IsAdmin reports whether the caller holds the admin role.
func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string   `json:"email,omitempty"`
	Name  string   `json:"name,omitempty"`
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

func (t *tokenClaims) role() string {
	if t.Role != "" {
		return t.Role
	}
	if slices.Contains(t.Roles, RoleAdmin) {
		return RoleAdmin
	}
	return ""
}

// Options configures a Verifier.
type Options struct {
	Env       string
	Secret    string
	JWKSURL   string
	Leeway    time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

// Verifier validates bearer tokens with either a shared HS256 secret or a
// remote JWKS. Verified claims are cached by token hash.
type Verifier struct {
	keyfunc func(ctx context.Context) jwt.Keyfunc
	methods []string
	leeway  time.Duration
	cache   *expirable.LRU[string, Claims]
	now     func() time.Time
}

// NewVerifier builds a Verifier from opts. A JWKS URL takes precedence over
// the shared secret.
func NewVerifier(opts Options) (*Verifier, error) {
	if opts.JWKSURL != "" {
		storage, err := jwkset.NewStorageFromHTTP(opts.JWKSURL, jwkset.HTTPClientStorageOptions{
			Client:                    &http.Client{Timeout: jwksHTTPTimeout},
			NoErrorReturnFirstHTTPReq: true,
			RefreshInterval:           jwksRefreshPeriod,
			RefreshErrorHandler: func(ctx context.Context, err error) {
				telemetry.Warn("auth.jwks.refresh_failed", map[string]any{
					"url":   opts.JWKSURL,
					"error": err.Error(),
				})
			},
		})
		if err != nil {
			return nil, fmt.Errorf("jwks storage: %w", err)
		}
		k, err := keyfunc.New(keyfunc.Options{Storage: storage})
		if err != nil {
			return nil, fmt.Errorf("jwks keyfunc: %w", err)
		}
		return NewKeyfuncVerifier(k, opts), nil
	}

	secret, err := secretKey(opts.Env, opts.Secret)
	if err != nil {
		return nil, err
	}
	v := newVerifier(opts)
	v.methods = []string{jwt.SigningMethodHS256.Alg()}
	v.keyfunc = func(context.Context) jwt.Keyfunc {
		return func(*jwt.Token) (any, error) { return secret, nil }
	}
	return v, nil
}

// NewKeyfuncVerifier builds a Verifier over asymmetric keys resolved by k.
func NewKeyfuncVerifier(k keyfunc.Keyfunc, opts Options) *Verifier {
	v := newVerifier(opts)
	v.methods = []string{
		jwt.SigningMethodRS256.Alg(),
		jwt.SigningMethodES256.Alg(),
		jwt.SigningMethodEdDSA.Alg(),
	}
	v.keyfunc = k.KeyfuncCtx
	return v
}

func newVerifier(opts Options) *Verifier {
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Verifier{
		leeway: opts.Leeway,
		cache:  expirable.NewLRU[string, Claims](size, nil, ttl),
		now:    time.Now,
	}
}

// Verify validates token and returns its claims. Tokens without a subject
// or expiry are rejected.
func (v *Verifier) Verify(ctx context.Context, token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}

	key := cacheKey(token)
	if claims, ok := v.cache.Get(key); ok {
		if v.now().Before(claims.ExpiresAt.Add(v.leeway)) {
			return claims, nil
		}
		v.cache.Remove(key)
		return Claims{}, ErrInvalidToken
	}

	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, v.keyfunc(ctx),
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if tc.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	claims := Claims{
		Sub:       tc.Subject,
		Email:     tc.Email,
		Name:      tc.Name,
		Role:      tc.role(),
		ExpiresAt: tc.ExpiresAt.Time,
	}
	v.cache.Add(key, claims)
	return claims, nil
}

// SignToken issues an HS256 token for claims. A zero ExpiresAt defaults to
// 24 hours from now.
func SignToken(secret string, claims Claims) (string, error) {
	if claims.Sub == "" {
		return "", errors.New("sub is required")
	}
	if secret == "" {
		return "", errMissingSecret
	}
	now := time.Now().UTC()
	exp := claims.ExpiresAt
	if exp.IsZero() {
		exp = now.Add(24 * time.Hour)
	}
	tc := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString([]byte(secret))
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func secretKey(env, secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		if env == "production" {
			return nil, fmt.Errorf("%w: JWT_SECRET or JWT_JWKS_URL required in production", errMissingSecret)
		}
		secret = devSecret
	}
	return []byte(secret), nil
}

// DevSecret returns the secret used when none is configured outside
// production.
func DevSecret() string {
	return devSecret
}
