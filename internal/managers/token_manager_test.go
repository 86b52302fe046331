package managers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"

	"unistay-server/internal/schemas"
)

func setupTokenManager(t *testing.T) (TokenMgr, pgxmock.PgxPoolIface, pgx.Tx) {
	t.Helper()

	poolMock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("could not create mock pool: %v", err)
	}

	poolMock.ExpectBegin()
	tx, err := poolMock.Begin(context.Background())
	if err != nil {
		t.Fatalf("could not begin mock transaction: %v", err)
	}

	tokenMgr := NewTokenManagerWithSecret("test-secret", "https://unistay.test/verify")
	return tokenMgr, poolMock, tx
}

func TestCreateVerificationCode(t *testing.T) {
	userId := uuid.New()
	email := "student@example.com"

	t.Run("IssuesSixDigitCode", func(t *testing.T) {
		tokenMgr, poolMock, tx := setupTokenManager(t)

		poolMock.ExpectQuery("SELECT COUNT").WithArgs(email, schemas.PurposeEmailVerification, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		poolMock.ExpectExec("UPDATE unistay_schema.tokens SET status").
			WithArgs(schemas.TokenExpired, userId, schemas.PurposeEmailVerification, schemas.TokenPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		poolMock.ExpectQuery("SELECT COUNT").WithArgs(pgxmock.AnyArg(), schemas.PurposeEmailVerification, schemas.TokenPending, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		poolMock.ExpectExec("INSERT INTO unistay_schema.tokens").
			WithArgs(pgxmock.AnyArg(), userId, schemas.PurposeEmailVerification, pgxmock.AnyArg(), email, pgxmock.AnyArg(), 0, schemas.TokenPending, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		code, err := tokenMgr.CreateVerificationCode(context.Background(), tx, userId, email, schemas.PurposeEmailVerification)
		assert.NoError(t, err)
		assert.Regexp(t, "^[1-9][0-9]{5}$", code)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("RejectsFourthCodeWithinWindow", func(t *testing.T) {
		tokenMgr, poolMock, tx := setupTokenManager(t)

		poolMock.ExpectQuery("SELECT COUNT").WithArgs(email, schemas.PurposeEmailVerification, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

		_, err := tokenMgr.CreateVerificationCode(context.Background(), tx, userId, email, schemas.PurposeEmailVerification)
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("RedrawsOnCollision", func(t *testing.T) {
		tokenMgr, poolMock, tx := setupTokenManager(t)

		poolMock.ExpectQuery("SELECT COUNT").WithArgs(email, schemas.PurposeEmailVerification, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		poolMock.ExpectExec("UPDATE unistay_schema.tokens SET status").
			WithArgs(schemas.TokenExpired, userId, schemas.PurposeEmailVerification, schemas.TokenPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		// first draw collides with another active code, second one is free
		poolMock.ExpectQuery("SELECT COUNT").WithArgs(pgxmock.AnyArg(), schemas.PurposeEmailVerification, schemas.TokenPending, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
		poolMock.ExpectQuery("SELECT COUNT").WithArgs(pgxmock.AnyArg(), schemas.PurposeEmailVerification, schemas.TokenPending, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		poolMock.ExpectExec("INSERT INTO unistay_schema.tokens").
			WithArgs(pgxmock.AnyArg(), userId, schemas.PurposeEmailVerification, pgxmock.AnyArg(), email, pgxmock.AnyArg(), 0, schemas.TokenPending, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		code, err := tokenMgr.CreateVerificationCode(context.Background(), tx, userId, email, schemas.PurposeEmailVerification)
		assert.NoError(t, err)
		assert.Len(t, code, 6)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("GivesUpAfterRedrawBudget", func(t *testing.T) {
		tokenMgr, poolMock, tx := setupTokenManager(t)

		poolMock.ExpectQuery("SELECT COUNT").WithArgs(email, schemas.PurposeEmailVerification, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		poolMock.ExpectExec("UPDATE unistay_schema.tokens SET status").
			WithArgs(schemas.TokenExpired, userId, schemas.PurposeEmailVerification, schemas.TokenPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		for i := 0; i < codeRedrawBudget; i++ {
			poolMock.ExpectQuery("SELECT COUNT").WithArgs(pgxmock.AnyArg(), schemas.PurposeEmailVerification, schemas.TokenPending, pgxmock.AnyArg()).
				WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
		}

		_, err := tokenMgr.CreateVerificationCode(context.Background(), tx, userId, email, schemas.PurposeEmailVerification)
		assert.ErrorIs(t, err, ErrCodeGeneration)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})
}

func TestVerifyCode(t *testing.T) {
	email := "student@example.com"
	tokenId := uuid.New()
	userId := uuid.New()

	pendingRow := func(code string, expiresAt time.Time, attempts int, verifiedAt interface{}) *pgxmock.Rows {
		return pgxmock.NewRows([]string{"token_id", "user_id", "code", "expires_at", "attempts", "verified_at"}).
			AddRow(tokenId.String(), userId.String(), code, expiresAt, attempts, verifiedAt)
	}

	t.Run("MatchingCodeReturnsVerification", func(t *testing.T) {
		tokenMgr, poolMock, tx := setupTokenManager(t)

		poolMock.ExpectQuery("SELECT t.token_id").WithArgs(email, schemas.PurposeEmailVerification, schemas.TokenPending).
			WillReturnRows(pendingRow("123456", time.Now().Add(5*time.Minute), 2, nil))

		verification, err := tokenMgr.VerifyCode(context.Background(), tx, email, "123456", schemas.PurposeEmailVerification)
		assert.NoError(t, err)
		assert.Equal(t, userId, verification.UserID)
		assert.Equal(t, tokenId, verification.TokenID)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("NoPendingCode", func(t *testing.T) {
		tokenMgr, poolMock, tx := setupTokenManager(t)

		poolMock.ExpectQuery("SELECT t.token_id").WithArgs(email, schemas.PurposeEmailVerification, schemas.TokenPending).
			WillReturnRows(pgxmock.NewRows([]string{"token_id", "user_id", "code", "expires_at", "attempts", "verified_at"}))

		_, err := tokenMgr.VerifyCode(context.Background(), tx, email, "123456", schemas.PurposeEmailVerification)
		assert.ErrorIs(t, err, ErrCodeInvalid)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("MismatchBurnsAnAttempt", func(t *testing.T) {
		tokenMgr, poolMock, tx := setupTokenManager(t)

		poolMock.ExpectQuery("SELECT t.token_id").WithArgs(email, schemas.PurposeEmailVerification, schemas.TokenPending).
			WillReturnRows(pendingRow("123456", time.Now().Add(5*time.Minute), 1, nil))
		poolMock.ExpectExec("UPDATE unistay_schema.tokens SET attempts").WithArgs(tokenId).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		_, err := tokenMgr.VerifyCode(context.Background(), tx, email, "654321", schemas.PurposeEmailVerification)
		assert.ErrorIs(t, err, ErrCodeInvalid)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("FifthMismatchExpiresTheCode", func(t *testing.T) {
		tokenMgr, poolMock, tx := setupTokenManager(t)

		poolMock.ExpectQuery("SELECT t.token_id").WithArgs(email, schemas.PurposeEmailVerification, schemas.TokenPending).
			WillReturnRows(pendingRow("123456", time.Now().Add(5*time.Minute), 4, nil))
		poolMock.ExpectExec("UPDATE unistay_schema.tokens SET attempts").WithArgs(tokenId).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		poolMock.ExpectExec("UPDATE unistay_schema.tokens SET status").WithArgs(schemas.TokenExpired, tokenId).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		_, err := tokenMgr.VerifyCode(context.Background(), tx, email, "654321", schemas.PurposeEmailVerification)
		assert.ErrorIs(t, err, ErrTooManyAttempts)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("CeilingAlreadyReached", func(t *testing.T) {
		tokenMgr, poolMock, tx := setupTokenManager(t)

		poolMock.ExpectQuery("SELECT t.token_id").WithArgs(email, schemas.PurposeEmailVerification, schemas.TokenPending).
			WillReturnRows(pendingRow("123456", time.Now().Add(5*time.Minute), 5, nil))
		poolMock.ExpectExec("UPDATE unistay_schema.tokens SET status").WithArgs(schemas.TokenExpired, tokenId).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		_, err := tokenMgr.VerifyCode(context.Background(), tx, email, "123456", schemas.PurposeEmailVerification)
		assert.ErrorIs(t, err, ErrTooManyAttempts)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("LapsedExpirySettlesTheRow", func(t *testing.T) {
		tokenMgr, poolMock, tx := setupTokenManager(t)

		poolMock.ExpectQuery("SELECT t.token_id").WithArgs(email, schemas.PurposeEmailVerification, schemas.TokenPending).
			WillReturnRows(pendingRow("123456", time.Now().Add(-time.Minute), 0, nil))
		poolMock.ExpectExec("UPDATE unistay_schema.tokens SET status").WithArgs(schemas.TokenExpired, tokenId).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		_, err := tokenMgr.VerifyCode(context.Background(), tx, email, "123456", schemas.PurposeEmailVerification)
		assert.ErrorIs(t, err, ErrCodeExpired)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("VerifiedAccountShortCircuits", func(t *testing.T) {
		tokenMgr, poolMock, tx := setupTokenManager(t)

		poolMock.ExpectQuery("SELECT t.token_id").WithArgs(email, schemas.PurposeEmailVerification, schemas.TokenPending).
			WillReturnRows(pendingRow("123456", time.Now().Add(5*time.Minute), 0, time.Now()))

		_, err := tokenMgr.VerifyCode(context.Background(), tx, email, "123456", schemas.PurposeEmailVerification)
		assert.ErrorIs(t, err, ErrAlreadyVerified)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("ResetCodeIgnoresVerifiedAt", func(t *testing.T) {
		tokenMgr, poolMock, tx := setupTokenManager(t)

		poolMock.ExpectQuery("SELECT t.token_id").WithArgs(email, schemas.PurposeResetPassword, schemas.TokenPending).
			WillReturnRows(pendingRow("123456", time.Now().Add(5*time.Minute), 0, time.Now()))

		verification, err := tokenMgr.VerifyCode(context.Background(), tx, email, "123456", schemas.PurposeResetPassword)
		assert.NoError(t, err)
		assert.Equal(t, userId, verification.UserID)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})
}

func TestSignedVerificationURL(t *testing.T) {
	tokenMgr := &TokenManager{secret: []byte("test-secret"), baseURL: "https://unistay.test/verify"}

	t.Run("RoundTrip", func(t *testing.T) {
		url, err := tokenMgr.SignVerificationURL("123456", "student@example.com")
		assert.NoError(t, err)
		assert.Contains(t, url, "https://unistay.test/verify?token=")

		signed := url[len("https://unistay.test/verify?token="):]
		code, email, err := tokenMgr.VerifySignedURL(signed)
		assert.NoError(t, err)
		assert.Equal(t, "123456", code)
		assert.Equal(t, "student@example.com", email)
	})

	t.Run("ExpiredLink", func(t *testing.T) {
		signed, err := tokenMgr.signVerificationClaims("123456", "student@example.com", -time.Minute)
		assert.NoError(t, err)

		_, _, err = tokenMgr.VerifySignedURL(signed)
		assert.ErrorIs(t, err, ErrLinkExpired)
	})

	t.Run("MalformedLink", func(t *testing.T) {
		_, _, err := tokenMgr.VerifySignedURL("not-a-token")
		assert.ErrorIs(t, err, ErrLinkMalformed)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := &TokenManager{secret: []byte("other-secret"), baseURL: "https://unistay.test/verify"}
		signed, err := other.signVerificationClaims("123456", "student@example.com", linkTTL)
		assert.NoError(t, err)

		_, _, err = tokenMgr.VerifySignedURL(signed)
		assert.ErrorIs(t, err, ErrLinkMalformed)
	})
}

func TestSweepExpired(t *testing.T) {
	poolMock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("could not create mock pool: %v", err)
	}

	tokenMgr := NewTokenManagerWithSecret("test-secret", "https://unistay.test/verify")

	poolMock.ExpectExec("DELETE FROM unistay_schema.tokens").WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	assert.NoError(t, tokenMgr.SweepExpired(context.Background(), poolMock))
	assert.NoError(t, poolMock.ExpectationsWereMet())
}
