// Package handlers implements the HTTP endpoints of the API. Each handler
// runs its mutations inside a per-request transaction on the shared pool.
package handlers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"

	"unistay-server/internal/managers"
	"unistay-server/internal/schemas"
	"unistay-server/internal/utils"
)

const codeValidityMinutes = 12

type UserHdl interface {
	RegisterUser(c *gin.Context)
	VerifyUser(c *gin.Context)
	VerifyUserByLink(c *gin.Context)
	ResendVerificationCode(c *gin.Context)
	LoginUser(c *gin.Context)
	ForgotPassword(c *gin.Context)
	ResetPassword(c *gin.Context)
	ListUsers(c *gin.Context)
	GetUser(c *gin.Context)
	UpdateUser(c *gin.Context)
	ChangePassword(c *gin.Context)
	DeleteUser(c *gin.Context)
}

type UserHandler struct {
	DatabaseManager managers.DatabaseMgr
	JWTManager      managers.JWTMgr
	MailManager     managers.MailMgr
	TokenManager    managers.TokenMgr
	Validator       *utils.Validator
}

func NewUserHandler(databaseManager *managers.DatabaseMgr, jwtManager *managers.JWTMgr, mailManager *managers.MailMgr, tokenManager *managers.TokenMgr) UserHdl {
	return &UserHandler{
		DatabaseManager: *databaseManager,
		JWTManager:      *jwtManager,
		MailManager:     *mailManager,
		TokenManager:    *tokenManager,
		Validator:       utils.GetValidator(),
	}
}

// RegisterUser creates the user, its role row and the first verification code
// in one transaction, and mails the code together with a signed link.
func (handler *UserHandler) RegisterUser(c *gin.Context) {
	registrationRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.RegistrationRequest)

	// MX lookups are skipped outside production, like the mail sending itself
	if os.Getenv("ENVIRONMENT") == "production" && !handler.Validator.VerifyEmail(registrationRequest.Email) {
		utils.WriteAndLogError(c, schemas.EmailUnreachable, http.StatusBadRequest, errors.New("email unreachable"))
		return
	}

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	if err = checkEmailPhoneTaken(c, tx, registrationRequest.Email, registrationRequest.Phone); err != nil {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registrationRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	userId := uuid.New()
	createdAt := time.Now()

	queryString := "INSERT INTO unistay_schema.users (user_id, full_name, email, phone, password, created_at) VALUES ($1, $2, $3, $4, $5, $6)"
	if _, err = tx.Exec(c, queryString, userId, registrationRequest.FullName, registrationRequest.Email, registrationRequest.Phone, hashedPassword, createdAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	queryString = "INSERT INTO unistay_schema.user_roles (user_id, role) VALUES ($1, $2)"
	if _, err = tx.Exec(c, queryString, userId, registrationRequest.Role); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = handler.issueAndMailVerificationCode(c, tx, userId, registrationRequest.Email, registrationRequest.FullName); err != nil {
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	userDto := &schemas.UserDTO{
		UserId:   userId.String(),
		FullName: registrationRequest.FullName,
		Email:    registrationRequest.Email,
		Phone:    registrationRequest.Phone,
		Role:     registrationRequest.Role,
		Verified: false,
	}
	utils.WriteAndLogResponse(c, userDto, http.StatusCreated)
}

// VerifyUser settles a pending email verification code submitted as
// {email, code}.
func (handler *UserHandler) VerifyUser(c *gin.Context) {
	verifyRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.VerifyCodeRequest)
	handler.verifyWithCode(c, verifyRequest.Email, verifyRequest.Code)
}

// VerifyUserByLink unwraps a signed verification link into {email, code} and
// follows the same path as the code submission.
func (handler *UserHandler) VerifyUserByLink(c *gin.Context) {
	code, email, err := handler.TokenManager.VerifySignedURL(c.Param(utils.LinkTokenKey))
	if err != nil {
		if errors.Is(err, managers.ErrLinkExpired) {
			utils.WriteAndLogError(c, schemas.LinkExpired, http.StatusUnauthorized, err)
			return
		}
		utils.WriteAndLogError(c, schemas.LinkMalformed, http.StatusBadRequest, err)
		return
	}

	handler.verifyWithCode(c, email, code)
}

func (handler *UserHandler) verifyWithCode(c *gin.Context, email, code string) {
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	verification, err := handler.TokenManager.VerifyCode(c, tx, email, code, schemas.PurposeEmailVerification)
	if err != nil {
		writeCodeError(c, err)
		return
	}

	// Flip the account to verified and fetch the name for the confirmation mail
	var fullName string
	queryString := "UPDATE unistay_schema.users SET verified_at = $1 WHERE user_id = $2 RETURNING full_name"
	rows, err := tx.Query(c, queryString, time.Now(), verification.UserID)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if rows.Next() {
		if err = rows.Scan(&fullName); err != nil {
			rows.Close()
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}
	}
	rows.Close()

	if err = handler.TokenManager.MarkAsVerified(c, tx, verification.TokenID); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = handler.MailManager.SendConfirmationMail(email, fullName); err != nil {
		utils.WriteAndLogError(c, schemas.EmailNotSent, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

// ResendVerificationCode re-issues the email verification code for an
// unverified account.
func (handler *UserHandler) ResendVerificationCode(c *gin.Context) {
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	resendRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.ResendCodeRequest)

	userId, fullName, verified, err := retrieveUserByEmail(c, tx, resendRequest.Email)
	if err != nil {
		return
	}

	if verified {
		err = errors.New("already verified")
		utils.WriteAndLogError(c, schemas.UserAlreadyVerified, http.StatusAlreadyReported, err)
		return
	}

	if err = handler.issueAndMailVerificationCode(c, tx, userId, resendRequest.Email, fullName); err != nil {
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	verificationDto := &schemas.VerificationDTO{
		Email:            resendRequest.Email,
		ExpiresInMinutes: codeValidityMinutes,
	}
	utils.WriteAndLogResponse(c, verificationDto, http.StatusOK)
}

// LoginUser checks the credentials of a verified account and returns a JWT
// carrying the user id and role.
func (handler *UserHandler) LoginUser(c *gin.Context) {
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	loginRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.LoginRequest)

	queryString := "SELECT u.user_id, u.password, u.verified_at, r.role FROM unistay_schema.users u " +
		"JOIN unistay_schema.user_roles r ON r.user_id = u.user_id WHERE u.email = $1"
	rows, err := tx.Query(c, queryString, loginRequest.Email)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	if !rows.Next() {
		err = errors.New("user not found")
		utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
		return
	}

	var userId uuid.UUID
	var hashedPassword []byte
	var verifiedAt pgtype.Timestamptz
	var role string
	if err = rows.Scan(&userId, &hashedPassword, &verifiedAt, &role); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	rows.Close()

	if err = bcrypt.CompareHashAndPassword(hashedPassword, []byte(loginRequest.Password)); err != nil {
		utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
		return
	}

	if !verifiedAt.Valid {
		err = errors.New("user not verified")
		utils.WriteAndLogError(c, schemas.UserNotVerified, http.StatusForbidden, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	claims := handler.JWTManager.GenerateClaims(userId.String(), role)
	token, err := handler.JWTManager.GenerateJWT(claims)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.TokenDTO{Token: token}, http.StatusOK)
}

// ForgotPassword issues a password reset code for the account. The same
// handler backs the resend route, issuance is idempotent up to the rate
// ceiling.
func (handler *UserHandler) ForgotPassword(c *gin.Context) {
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	forgotRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.ForgotPasswordRequest)

	userId, fullName, _, err := retrieveUserByEmail(c, tx, forgotRequest.Email)
	if err != nil {
		return
	}

	code, err := handler.TokenManager.CreateVerificationCode(c, tx, userId, forgotRequest.Email, schemas.PurposeResetPassword)
	if err != nil {
		writeIssuanceError(c, err)
		return
	}

	if err = handler.MailManager.SendPasswordResetMail(forgotRequest.Email, fullName, code); err != nil {
		utils.WriteAndLogError(c, schemas.EmailNotSent, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	verificationDto := &schemas.VerificationDTO{
		Email:            forgotRequest.Email,
		ExpiresInMinutes: codeValidityMinutes,
	}
	utils.WriteAndLogResponse(c, verificationDto, http.StatusOK)
}

// ResetPassword consumes a valid reset code and rehashes the password.
func (handler *UserHandler) ResetPassword(c *gin.Context) {
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	resetRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.ResetPasswordRequest)

	verification, err := handler.TokenManager.VerifyCode(c, tx, resetRequest.Email, resetRequest.Code, schemas.PurposeResetPassword)
	if err != nil {
		writeCodeError(c, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(resetRequest.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	queryString := "UPDATE unistay_schema.users SET password = $1 WHERE user_id = $2"
	if _, err = tx.Exec(c, queryString, hashedPassword, verification.UserID); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = handler.TokenManager.MarkAsVerified(c, tx, verification.TokenID); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUsers returns the paginated user listing, admin only.
func (handler *UserHandler) ListUsers(c *gin.Context) {
	_, role, ok := extractClaims(c)
	if !ok {
		return
	}

	if role != schemas.RoleAdmin {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("admin only"))
		return
	}

	offset, limit := utils.ParsePaginationParams(c)

	queryString := "SELECT u.user_id, u.full_name, u.email, u.phone, r.role, u.verified_at FROM unistay_schema.users u " +
		"JOIN unistay_schema.user_roles r ON r.user_id = u.user_id ORDER BY u.created_at DESC"
	rows, err := handler.DatabaseManager.GetPool().Query(c, queryString)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	users := make([]*schemas.UserDTO, 0)
	for rows.Next() {
		user := &schemas.UserDTO{}
		var userId uuid.UUID
		var verifiedAt pgtype.Timestamptz
		if err = rows.Scan(&userId, &user.FullName, &user.Email, &user.Phone, &user.Role, &verifiedAt); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}
		user.UserId = userId.String()
		user.Verified = verifiedAt.Valid
		users = append(users, user)
	}

	utils.SendPaginatedResponse(c, users, offset, limit, len(users))
}

// GetUser returns a single user, visible to themself and to admins.
func (handler *UserHandler) GetUser(c *gin.Context) {
	callerId, role, ok := extractClaims(c)
	if !ok {
		return
	}

	userId, err := uuid.Parse(c.Param(utils.UserIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	if role != schemas.RoleAdmin && callerId != userId.String() {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("not the account owner"))
		return
	}

	queryString := "SELECT u.full_name, u.email, u.phone, r.role, u.verified_at FROM unistay_schema.users u " +
		"JOIN unistay_schema.user_roles r ON r.user_id = u.user_id WHERE u.user_id = $1"
	rows, err := handler.DatabaseManager.GetPool().Query(c, queryString, userId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	if !rows.Next() {
		utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, errors.New("user not found"))
		return
	}

	user := &schemas.UserDTO{UserId: userId.String()}
	var verifiedAt pgtype.Timestamptz
	if err = rows.Scan(&user.FullName, &user.Email, &user.Phone, &user.Role, &verifiedAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	user.Verified = verifiedAt.Valid

	utils.WriteAndLogResponse(c, user, http.StatusOK)
}

// UpdateUser changes the profile fields of the caller's own account.
func (handler *UserHandler) UpdateUser(c *gin.Context) {
	callerId, _, ok := extractClaims(c)
	if !ok {
		return
	}

	userId, err := uuid.Parse(c.Param(utils.UserIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	if callerId != userId.String() {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("not the account owner"))
		return
	}

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	updateRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.UpdateProfileRequest)

	// The new phone number must not belong to another account
	queryString := "SELECT user_id FROM unistay_schema.users WHERE phone = $1 AND user_id != $2"
	rows, err := tx.Query(c, queryString, updateRequest.Phone, userId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if rows.Next() {
		rows.Close()
		err = errors.New("phone taken")
		utils.WriteAndLogError(c, schemas.PhoneTaken, http.StatusConflict, err)
		return
	}
	rows.Close()

	queryString = "UPDATE unistay_schema.users SET full_name = $1, phone = $2 WHERE user_id = $3"
	if _, err = tx.Exec(c, queryString, updateRequest.FullName, updateRequest.Phone, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

// ChangePassword verifies the old password of the caller and rehashes the new one.
func (handler *UserHandler) ChangePassword(c *gin.Context) {
	callerId, _, ok := extractClaims(c)
	if !ok {
		return
	}

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	changeRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.ChangePasswordRequest)

	queryString := "SELECT password FROM unistay_schema.users WHERE user_id = $1"
	rows, err := tx.Query(c, queryString, callerId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	if !rows.Next() {
		err = errors.New("user not found")
		utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
		return
	}

	var hashedPassword []byte
	if err = rows.Scan(&hashedPassword); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	rows.Close()

	if err = bcrypt.CompareHashAndPassword(hashedPassword, []byte(changeRequest.OldPassword)); err != nil {
		utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
		return
	}

	newHashedPassword, err := bcrypt.GenerateFromPassword([]byte(changeRequest.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	queryString = "UPDATE unistay_schema.users SET password = $1 WHERE user_id = $2"
	if _, err = tx.Exec(c, queryString, newHashedPassword, callerId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteUser removes the account together with its role row and codes,
// allowed for the owner and for admins.
func (handler *UserHandler) DeleteUser(c *gin.Context) {
	callerId, role, ok := extractClaims(c)
	if !ok {
		return
	}

	userId, err := uuid.Parse(c.Param(utils.UserIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	if role != schemas.RoleAdmin && callerId != userId.String() {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("not the account owner"))
		return
	}

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	queryString := "DELETE FROM unistay_schema.tokens WHERE user_id = $1"
	if _, err = tx.Exec(c, queryString, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	queryString = "DELETE FROM unistay_schema.user_roles WHERE user_id = $1"
	if _, err = tx.Exec(c, queryString, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	queryString = "DELETE FROM unistay_schema.users WHERE user_id = $1"
	tag, err := tx.Exec(c, queryString, userId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if tag.RowsAffected() == 0 {
		err = errors.New("user not found")
		utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

// issueAndMailVerificationCode draws a code, signs the one-click link and
// sends the verification mail.
func (handler *UserHandler) issueAndMailVerificationCode(c *gin.Context, tx pgx.Tx, userId uuid.UUID, email, fullName string) error {
	code, err := handler.TokenManager.CreateVerificationCode(c, tx, userId, email, schemas.PurposeEmailVerification)
	if err != nil {
		writeIssuanceError(c, err)
		return err
	}

	link, err := handler.TokenManager.SignVerificationURL(code, email)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return err
	}

	if err = handler.MailManager.SendVerificationMail(email, fullName, code, link); err != nil {
		utils.WriteAndLogError(c, schemas.EmailNotSent, http.StatusInternalServerError, err)
		return err
	}

	return nil
}

// writeIssuanceError maps CreateVerificationCode failures to responses.
func writeIssuanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, managers.ErrRateLimited):
		utils.WriteAndLogError(c, schemas.RateLimitExceeded, http.StatusTooManyRequests, err)
	case errors.Is(err, managers.ErrCodeGeneration):
		utils.WriteAndLogError(c, schemas.CodeGenerationFailed, http.StatusInternalServerError, err)
	default:
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
	}
}

// writeCodeError maps VerifyCode failures to responses.
func writeCodeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, managers.ErrAlreadyVerified):
		utils.WriteAndLogError(c, schemas.UserAlreadyVerified, http.StatusAlreadyReported, err)
	case errors.Is(err, managers.ErrTooManyAttempts):
		utils.WriteAndLogError(c, schemas.MaxAttemptsExceeded, http.StatusTooManyRequests, err)
	case errors.Is(err, managers.ErrCodeExpired):
		utils.WriteAndLogError(c, schemas.CodeExpired, http.StatusUnauthorized, err)
	case errors.Is(err, managers.ErrCodeInvalid):
		utils.WriteAndLogError(c, schemas.InvalidCode, http.StatusUnauthorized, err)
	default:
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
	}
}

// retrieveUserByEmail looks up id, name and verification state by email.
func retrieveUserByEmail(c *gin.Context, tx pgx.Tx, email string) (uuid.UUID, string, bool, error) {
	queryString := "SELECT user_id, full_name, verified_at FROM unistay_schema.users WHERE email = $1"
	rows, err := tx.Query(c, queryString, email)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return uuid.UUID{}, "", false, err
	}
	defer rows.Close()

	if !rows.Next() {
		err = errors.New("user not found")
		utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
		return uuid.UUID{}, "", false, err
	}

	var userId uuid.UUID
	var fullName string
	var verifiedAt pgtype.Timestamptz
	if err = rows.Scan(&userId, &fullName, &verifiedAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return uuid.UUID{}, "", false, err
	}

	return userId, fullName, verifiedAt.Valid, nil
}

// checkEmailPhoneTaken rejects a signup when the email or phone is in use.
func checkEmailPhoneTaken(c *gin.Context, tx pgx.Tx, email, phone string) error {
	queryString := "SELECT email, phone FROM unistay_schema.users WHERE email = $1 OR phone = $2"
	rows, err := tx.Query(c, queryString, email, phone)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		var foundEmail, foundPhone string
		if err = rows.Scan(&foundEmail, &foundPhone); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return err
		}

		customErr := schemas.PhoneTaken
		if foundEmail == email {
			customErr = schemas.EmailTaken
		}

		err = errors.New("email or phone taken")
		utils.WriteAndLogError(c, customErr, http.StatusConflict, err)
		return err
	}

	return nil
}

// extractClaims pulls the caller's id and role out of the validated JWT.
func extractClaims(c *gin.Context) (string, string, bool) {
	claims, ok := c.Value(utils.ClaimsKey.String()).(jwt.MapClaims)
	if !ok {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("missing claims"))
		return "", "", false
	}

	userId, ok := claims["sub"].(string)
	if !ok {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("missing subject"))
		return "", "", false
	}

	role, ok := claims["role"].(string)
	if !ok {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("missing role"))
		return "", "", false
	}

	return userId, role, true
}
