package managers

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	log "github.com/sirupsen/logrus"

	"unistay-server/internal/interfaces"
	"unistay-server/internal/schemas"
)

const (
	codeTTL          = 12 * time.Minute
	maxCodeAttempts  = 5
	codeRedrawBudget = 10
	rateWindow       = time.Hour
	rateWindowMax    = 3
	linkTTL          = 15 * time.Minute
)

// Sentinel errors returned by the token manager. Handlers map these to the
// matching error codes and HTTP statuses.
var (
	ErrRateLimited     = errors.New("too many codes requested within the window")
	ErrCodeInvalid     = errors.New("code does not match")
	ErrCodeExpired     = errors.New("code expired")
	ErrTooManyAttempts = errors.New("attempt ceiling reached")
	ErrAlreadyVerified = errors.New("account already verified")
	ErrCodeGeneration  = errors.New("could not draw a unique code")
	ErrLinkExpired     = errors.New("verification link expired")
	ErrLinkMalformed   = errors.New("verification link malformed")
)

// CodeVerification is the result of a successful code check.
type CodeVerification struct {
	UserID  uuid.UUID
	TokenID uuid.UUID
}

// TokenMgr defines the interface for verification code management.
// All database operations run on the transaction supplied by the caller so
// that code issuance and verification stay atomic with the surrounding
// user mutation.
type TokenMgr interface {
	CreateVerificationCode(ctx context.Context, tx pgx.Tx, userId uuid.UUID, email, purpose string) (string, error)
	VerifyCode(ctx context.Context, tx pgx.Tx, email, code, purpose string) (*CodeVerification, error)
	MarkAsVerified(ctx context.Context, tx pgx.Tx, tokenId uuid.UUID) error
	IncrementAttempts(ctx context.Context, tx pgx.Tx, tokenId uuid.UUID) error
	RecentCodeCount(ctx context.Context, tx pgx.Tx, email, purpose string) (int, error)
	SignVerificationURL(code, email string) (string, error)
	VerifySignedURL(token string) (code, email string, err error)
	SweepExpired(ctx context.Context, pool interfaces.PgxPoolIface) error
}

// TokenManager issues and verifies six-digit verification codes backed by the
// tokens table, and signs short-lived verification URLs.
type TokenManager struct {
	secret  []byte
	baseURL string
}

// NewTokenManager creates a new TokenManager. The signed links use
// JWT_VERIFICATION_SECRET, falling back to JWT_SECRET when unset, and point
// at VERIFICATION_URL_BASE.
func NewTokenManager() (TokenMgr, error) {
	secret := os.Getenv("JWT_VERIFICATION_SECRET")
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		return nil, fmt.Errorf("neither JWT_VERIFICATION_SECRET nor JWT_SECRET is set")
	}

	baseURL := os.Getenv("VERIFICATION_URL_BASE")
	if baseURL == "" {
		baseURL = "https://unistay.tech/verify"
	}

	log.Info("Initializing token manager")
	return &TokenManager{secret: []byte(secret), baseURL: baseURL}, nil
}

// NewTokenManagerWithSecret creates a TokenManager with the given secret and
// link base, used in tests.
func NewTokenManagerWithSecret(secret, baseURL string) TokenMgr {
	return &TokenManager{secret: []byte(secret), baseURL: baseURL}
}

// CreateVerificationCode issues a fresh six-digit code for the given user and
// purpose. It enforces the hourly issuance ceiling, supersedes any still
// pending code for the same user and purpose, and redraws on the rare
// collision with another active code.
func (tm *TokenManager) CreateVerificationCode(ctx context.Context, tx pgx.Tx, userId uuid.UUID, email, purpose string) (string, error) {
	// Enforce the issuance ceiling over the sliding window
	count, err := tm.RecentCodeCount(ctx, tx, email, purpose)
	if err != nil {
		return "", err
	}
	if count >= rateWindowMax {
		return "", ErrRateLimited
	}

	// Supersede any still pending code for this user and purpose
	queryString := "UPDATE unistay_schema.tokens SET status = $1 WHERE user_id = $2 AND purpose = $3 AND status = $4"
	if _, err = tx.Exec(ctx, queryString, schemas.TokenExpired, userId, purpose, schemas.TokenPending); err != nil {
		return "", err
	}

	code, err := tm.drawUniqueCode(ctx, tx, purpose)
	if err != nil {
		return "", err
	}

	tokenId := uuid.New()
	createdAt := time.Now()
	expiresAt := createdAt.Add(codeTTL)

	queryString = "INSERT INTO unistay_schema.tokens (token_id, user_id, purpose, code, email, expires_at, attempts, status, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)"
	if _, err = tx.Exec(ctx, queryString, tokenId, userId, purpose, code, email, expiresAt, 0, schemas.TokenPending, createdAt); err != nil {
		return "", err
	}

	return code, nil
}

// VerifyCode checks the submitted code against the latest pending code for the
// email and purpose. Mismatches burn an attempt so that probing does not come
// for free, and both a lapsed expiry and a reached attempt ceiling settle the
// row as expired.
func (tm *TokenManager) VerifyCode(ctx context.Context, tx pgx.Tx, email, code, purpose string) (*CodeVerification, error) {
	queryString := "SELECT t.token_id, t.user_id, t.code, t.expires_at, t.attempts, u.verified_at " +
		"FROM unistay_schema.tokens t JOIN unistay_schema.users u ON u.user_id = t.user_id " +
		"WHERE t.email = $1 AND t.purpose = $2 AND t.status = $3 ORDER BY t.created_at DESC LIMIT 1"
	rows, err := tx.Query(ctx, queryString, email, purpose, schemas.TokenPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrCodeInvalid
	}

	var tokenId, userId uuid.UUID
	var storedCode string
	var expiresAt time.Time
	var attempts int
	var verifiedAt pgtype.Timestamptz
	if err = rows.Scan(&tokenId, &userId, &storedCode, &expiresAt, &attempts, &verifiedAt); err != nil {
		return nil, err
	}
	rows.Close()

	if purpose == schemas.PurposeEmailVerification && verifiedAt.Valid {
		return nil, ErrAlreadyVerified
	}

	if attempts >= maxCodeAttempts {
		if err = tm.expireToken(ctx, tx, tokenId); err != nil {
			return nil, err
		}
		return nil, ErrTooManyAttempts
	}

	if storedCode != code {
		if err = tm.IncrementAttempts(ctx, tx, tokenId); err != nil {
			return nil, err
		}
		if attempts+1 >= maxCodeAttempts {
			if err = tm.expireToken(ctx, tx, tokenId); err != nil {
				return nil, err
			}
			return nil, ErrTooManyAttempts
		}
		return nil, ErrCodeInvalid
	}

	if time.Now().After(expiresAt) {
		if err = tm.expireToken(ctx, tx, tokenId); err != nil {
			return nil, err
		}
		return nil, ErrCodeExpired
	}

	return &CodeVerification{UserID: userId, TokenID: tokenId}, nil
}

// MarkAsVerified settles a pending code after a successful verification.
func (tm *TokenManager) MarkAsVerified(ctx context.Context, tx pgx.Tx, tokenId uuid.UUID) error {
	queryString := "UPDATE unistay_schema.tokens SET status = $1 WHERE token_id = $2"
	_, err := tx.Exec(ctx, queryString, schemas.TokenVerified, tokenId)
	return err
}

// IncrementAttempts burns one verification attempt on the given code.
func (tm *TokenManager) IncrementAttempts(ctx context.Context, tx pgx.Tx, tokenId uuid.UUID) error {
	queryString := "UPDATE unistay_schema.tokens SET attempts = attempts + 1 WHERE token_id = $1"
	_, err := tx.Exec(ctx, queryString, tokenId)
	return err
}

// RecentCodeCount counts the codes issued for the email and purpose within
// the sliding rate window.
func (tm *TokenManager) RecentCodeCount(ctx context.Context, tx pgx.Tx, email, purpose string) (int, error) {
	queryString := "SELECT COUNT(*) FROM unistay_schema.tokens WHERE email = $1 AND purpose = $2 AND created_at > $3"
	rows, err := tx.Query(ctx, queryString, email, purpose, time.Now().Add(-rateWindow))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err = rows.Scan(&count); err != nil {
			return 0, err
		}
	}

	return count, nil
}

// SignVerificationURL wraps the code and email in a short-lived signed token
// and returns the full verification URL.
func (tm *TokenManager) SignVerificationURL(code, email string) (string, error) {
	signed, err := tm.signVerificationClaims(code, email, linkTTL)
	if err != nil {
		return "", err
	}

	return tm.baseURL + "?token=" + signed, nil
}

// VerifySignedURL validates a signed verification token and returns the
// embedded code and email. Expired links yield ErrLinkExpired, anything else
// that fails to parse yields ErrLinkMalformed.
func (tm *TokenManager) VerifySignedURL(token string) (string, string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("invalid signing method")
		}

		return tm.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrLinkExpired
		}
		return "", "", ErrLinkMalformed
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", "", ErrLinkMalformed
	}

	code, ok := claims["code"].(string)
	if !ok {
		return "", "", ErrLinkMalformed
	}
	email, ok := claims["sub"].(string)
	if !ok {
		return "", "", ErrLinkMalformed
	}

	return code, email, nil
}

// SweepExpired deletes all codes whose expiry has passed. It runs on the pool
// outside any request transaction.
func (tm *TokenManager) SweepExpired(ctx context.Context, pool interfaces.PgxPoolIface) error {
	queryString := "DELETE FROM unistay_schema.tokens WHERE expires_at < $1"
	tag, err := pool.Exec(ctx, queryString, time.Now())
	if err != nil {
		return err
	}

	if tag.RowsAffected() > 0 {
		log.Debug("Swept ", tag.RowsAffected(), " expired verification codes")
	}

	return nil
}

func (tm *TokenManager) expireToken(ctx context.Context, tx pgx.Tx, tokenId uuid.UUID) error {
	queryString := "UPDATE unistay_schema.tokens SET status = $1 WHERE token_id = $2"
	_, err := tx.Exec(ctx, queryString, schemas.TokenExpired, tokenId)
	return err
}

func (tm *TokenManager) signVerificationClaims(code, email string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"iss":  "unistay.tech",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
		"sub":  email,
		"code": code,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

func (tm *TokenManager) drawUniqueCode(ctx context.Context, tx pgx.Tx, purpose string) (string, error) {
	// Only live codes can collide, stale rows awaiting the sweep do not count
	queryString := "SELECT COUNT(*) FROM unistay_schema.tokens WHERE code = $1 AND purpose = $2 AND status = $3 AND expires_at > $4"

	for i := 0; i < codeRedrawBudget; i++ {
		code := generateCode()

		rows, err := tx.Query(ctx, queryString, code, purpose, schemas.TokenPending, time.Now())
		if err != nil {
			return "", err
		}

		var count int
		if rows.Next() {
			if err = rows.Scan(&count); err != nil {
				rows.Close()
				return "", err
			}
		}
		rows.Close()

		if count == 0 {
			return code, nil
		}
	}

	return "", ErrCodeGeneration
}

func generateCode() string {
	// Random six-digit number, never with a leading zero
	return strconv.Itoa(rand.Intn(900000) + 100000)
}
