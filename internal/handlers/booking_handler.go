package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	log "github.com/sirupsen/logrus"

	"unistay-server/internal/managers"
	"unistay-server/internal/schemas"
	"unistay-server/internal/utils"
)

const bookingColumns = "booking_id, property_id, agent_id, tenant_id, property_type, move_in_date, move_out_date, " +
	"duration, gender, special_request, amount, status, payment_status, created_at, updated_at"

// allowedTransitions is the booking status machine. Completed and cancelled
// are terminal.
var allowedTransitions = map[string][]string{
	schemas.BookingPending:   {schemas.BookingConfirmed, schemas.BookingCancelled},
	schemas.BookingConfirmed: {schemas.BookingCompleted, schemas.BookingCancelled},
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type BookingHdl interface {
	CreateBooking(c *gin.Context)
	GetBooking(c *gin.Context)
	GetAllBookings(c *gin.Context)
	GetBookingsByAgent(c *gin.Context)
	UpdateBookingStatus(c *gin.Context)
	DeleteBooking(c *gin.Context)
}

type BookingHandler struct {
	DatabaseManager managers.DatabaseMgr
	MailManager     managers.MailMgr
}

func NewBookingHandler(databaseManager *managers.DatabaseMgr, mailManager *managers.MailMgr) BookingHdl {
	return &BookingHandler{
		DatabaseManager: *databaseManager,
		MailManager:     *mailManager,
	}
}

// CreateBooking places a tenancy request on a property. Students always book
// for themselves, agents and admins book on behalf of a tenant named in the
// payload. The property's agent is resolved and frozen onto the booking.
func (handler *BookingHandler) CreateBooking(c *gin.Context) {
	callerId, role, ok := extractClaims(c)
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

	createRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.CreateBookingRequest)

	propertyId, err := uuid.Parse(createRequest.PropertyId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	// Resolve the property and its managing agent
	queryString := "SELECT p.agent_id, p.title, u.email, u.full_name FROM unistay_schema.properties p " +
		"LEFT JOIN unistay_schema.users u ON u.user_id = p.agent_id WHERE p.property_id = $1"
	rows, err := tx.Query(c, queryString, propertyId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if !rows.Next() {
		rows.Close()
		err = errors.New("property not found")
		utils.WriteAndLogError(c, schemas.PropertyNotFound, http.StatusNotFound, err)
		return
	}

	var agentId pgtype.UUID
	var propertyTitle string
	var agentEmail, agentName pgtype.Text
	if err = rows.Scan(&agentId, &propertyTitle, &agentEmail, &agentName); err != nil {
		rows.Close()
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	rows.Close()

	if !agentId.Valid {
		err = errors.New("property has no managing agent")
		utils.WriteAndLogError(c, schemas.PropertyUnmanaged, http.StatusBadRequest, err)
		return
	}

	// Resolve the tenant: students book for themselves, agents and admins
	// must name one
	var tenantId uuid.UUID
	if role == schemas.RoleStudent {
		if tenantId, err = uuid.Parse(callerId); err != nil {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
			return
		}
	} else {
		if createRequest.Tenant == "" {
			err = errors.New("tenant missing")
			utils.WriteAndLogError(c, schemas.TenantRequired, http.StatusBadRequest, err)
			return
		}
		if tenantId, err = uuid.Parse(createRequest.Tenant); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}
	}

	moveInDate, err := time.Parse(time.DateOnly, createRequest.MoveInDate)
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	var moveOutDate *time.Time
	if createRequest.MoveOutDate != "" {
		parsed, parseErr := time.Parse(time.DateOnly, createRequest.MoveOutDate)
		if parseErr != nil {
			err = parseErr
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}
		moveOutDate = &parsed
	}

	paymentStatus := createRequest.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = schemas.PaymentPending
	}

	bookingId := uuid.New()
	createdAt := time.Now()

	queryString = "INSERT INTO unistay_schema.bookings (booking_id, property_id, agent_id, tenant_id, property_type, " +
		"move_in_date, move_out_date, duration, gender, special_request, amount, status, payment_status, version, created_at, updated_at) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)"
	if _, err = tx.Exec(c, queryString, bookingId, propertyId, uuid.UUID(agentId.Bytes), tenantId, createRequest.PropertyType,
		moveInDate, moveOutDate, createRequest.Duration, createRequest.Gender, createRequest.SpecialRequest,
		createRequest.Amount, schemas.BookingPending, paymentStatus, 1, createdAt, createdAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	// The notification is advisory, a mail failure must not undo the booking
	if agentEmail.Valid {
		if mailErr := handler.MailManager.SendBookingRequestMail(agentEmail.String, agentName.String, propertyTitle); mailErr != nil {
			log.Warn("Could not send booking request mail: ", mailErr)
		}
	}

	bookingDto := &schemas.BookingDTO{
		BookingId:      bookingId.String(),
		PropertyId:     propertyId.String(),
		AgentId:        uuid.UUID(agentId.Bytes).String(),
		TenantId:       tenantId.String(),
		PropertyType:   createRequest.PropertyType,
		MoveInDate:     moveInDate.Format(time.DateOnly),
		Duration:       createRequest.Duration,
		Gender:         createRequest.Gender,
		SpecialRequest: createRequest.SpecialRequest,
		Amount:         createRequest.Amount,
		Status:         schemas.BookingPending,
		PaymentStatus:  paymentStatus,
		CreatedAt:      createdAt.Format(time.RFC3339),
	}
	if moveOutDate != nil {
		formatted := moveOutDate.Format(time.DateOnly)
		bookingDto.MoveOutDate = &formatted
	}
	utils.WriteAndLogResponse(c, bookingDto, http.StatusCreated)
}

// GetBooking returns a single booking, visible to its agent, its tenant and
// admins.
func (handler *BookingHandler) GetBooking(c *gin.Context) {
	callerId, role, ok := extractClaims(c)
	if !ok {
		return
	}

	bookingId, err := uuid.Parse(c.Param(utils.BookingIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	queryString := "SELECT " + bookingColumns + " FROM unistay_schema.bookings WHERE booking_id = $1"
	rows, err := handler.DatabaseManager.GetPool().Query(c, queryString, bookingId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	bookings, _, err := utils.CreateBookingDtoFromRows(rows)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if len(bookings) == 0 {
		utils.WriteAndLogError(c, schemas.BookingNotFound, http.StatusNotFound, errors.New("booking not found"))
		return
	}

	booking := bookings[0]
	if role != schemas.RoleAdmin && callerId != booking.AgentId && callerId != booking.TenantId {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("not a party to the booking"))
		return
	}

	utils.WriteAndLogResponse(c, booking, http.StatusOK)
}

// GetAllBookings returns the caller's bookings, scoped by role: agents see
// the bookings assigned to them, students the ones they rent, admins all.
func (handler *BookingHandler) GetAllBookings(c *gin.Context) {
	callerId, role, ok := extractClaims(c)
	if !ok {
		return
	}

	queryString := "SELECT " + bookingColumns + " FROM unistay_schema.bookings"
	args := make([]interface{}, 0, 1)
	switch role {
	case schemas.RoleAgent:
		queryString += " WHERE agent_id = $1"
		args = append(args, callerId)
	case schemas.RoleAdmin:
		// no filter
	default:
		queryString += " WHERE tenant_id = $1"
		args = append(args, callerId)
	}
	queryString += " ORDER BY created_at DESC"

	handler.writeBookingList(c, queryString, args...)
}

// GetBookingsByAgent returns the bookings assigned to the given agent,
// visible to that agent and to admins. Ownership is checked before the id is
// even parsed so probing with malformed ids reveals nothing.
func (handler *BookingHandler) GetBookingsByAgent(c *gin.Context) {
	callerId, role, ok := extractClaims(c)
	if !ok {
		return
	}

	agentIdParam := c.Param(utils.AgentIdKey)
	if role != schemas.RoleAdmin && callerId != agentIdParam {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("not the requested agent"))
		return
	}

	agentId, err := uuid.Parse(agentIdParam)
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	queryString := "SELECT " + bookingColumns + " FROM unistay_schema.bookings WHERE agent_id = $1 ORDER BY created_at DESC"
	handler.writeBookingList(c, queryString, agentId)
}

// UpdateBookingStatus moves a booking along the status machine. Only the
// assigned agent and admins may do so, and a concurrent update surfaces as a
// conflict instead of silently winning.
func (handler *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	callerId, role, ok := extractClaims(c)
	if !ok {
		return
	}

	bookingId, err := uuid.Parse(c.Param(utils.BookingIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	updateRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.UpdateBookingStatusRequest)

	queryString := "SELECT agent_id, status, version FROM unistay_schema.bookings WHERE booking_id = $1"
	rows, err := tx.Query(c, queryString, bookingId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if !rows.Next() {
		rows.Close()
		err = errors.New("booking not found")
		utils.WriteAndLogError(c, schemas.BookingNotFound, http.StatusNotFound, err)
		return
	}

	var agentId uuid.UUID
	var currentStatus string
	var version int
	if err = rows.Scan(&agentId, &currentStatus, &version); err != nil {
		rows.Close()
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	rows.Close()

	if role != schemas.RoleAdmin && callerId != agentId.String() {
		err = errors.New("not the assigned agent")
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	if !transitionAllowed(currentStatus, updateRequest.Status) {
		err = errors.New("transition " + currentStatus + " -> " + updateRequest.Status + " not allowed")
		utils.WriteAndLogError(c, schemas.InvalidStatusTransition, http.StatusBadRequest, err)
		return
	}

	queryString = "UPDATE unistay_schema.bookings SET status = $1, version = version + 1, updated_at = $2 WHERE booking_id = $3 AND version = $4"
	tag, err := tx.Exec(c, queryString, updateRequest.Status, time.Now(), bookingId, version)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if tag.RowsAffected() == 0 {
		err = errors.New("booking version moved")
		utils.WriteAndLogError(c, schemas.BookingConflict, http.StatusConflict, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteBooking removes a booking, allowed for admins, the assigned agent and
// the tenant.
func (handler *BookingHandler) DeleteBooking(c *gin.Context) {
	callerId, role, ok := extractClaims(c)
	if !ok {
		return
	}

	bookingId, err := uuid.Parse(c.Param(utils.BookingIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	queryString := "SELECT agent_id, tenant_id FROM unistay_schema.bookings WHERE booking_id = $1"
	rows, err := tx.Query(c, queryString, bookingId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if !rows.Next() {
		rows.Close()
		err = errors.New("booking not found")
		utils.WriteAndLogError(c, schemas.BookingNotFound, http.StatusNotFound, err)
		return
	}

	var agentId, tenantId uuid.UUID
	if err = rows.Scan(&agentId, &tenantId); err != nil {
		rows.Close()
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	rows.Close()

	if role != schemas.RoleAdmin && callerId != agentId.String() && callerId != tenantId.String() {
		err = errors.New("not a party to the booking")
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	queryString = "DELETE FROM unistay_schema.bookings WHERE booking_id = $1"
	if _, err = tx.Exec(c, queryString, bookingId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

func (handler *BookingHandler) writeBookingList(c *gin.Context, queryString string, args ...interface{}) {
	rows, err := handler.DatabaseManager.GetPool().Query(c, queryString, args...)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	bookings, lastUpdated, err := utils.CreateBookingDtoFromRows(rows)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	listDto := &schemas.BookingListDTO{
		Bookings: bookings,
		Count:    len(bookings),
	}
	if !lastUpdated.IsZero() {
		listDto.LastUpdated = lastUpdated.Format(time.RFC3339)
	}
	if listDto.Bookings == nil {
		listDto.Bookings = make([]*schemas.BookingDTO, 0)
	}

	utils.WriteAndLogResponse(c, listDto, http.StatusOK)
}
