package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"unistay-server/internal/managers"
	"unistay-server/internal/schemas"
	"unistay-server/internal/utils"
)

type PropertyHdl interface {
	CreateProperty(c *gin.Context)
	GetProperty(c *gin.Context)
	ListProperties(c *gin.Context)
	UpdateProperty(c *gin.Context)
	DeleteProperty(c *gin.Context)
}

type PropertyHandler struct {
	DatabaseManager managers.DatabaseMgr
}

func NewPropertyHandler(databaseManager *managers.DatabaseMgr) PropertyHdl {
	return &PropertyHandler{
		DatabaseManager: *databaseManager,
	}
}

// CreateProperty inserts a new listing owned by the calling agent.
func (handler *PropertyHandler) CreateProperty(c *gin.Context) {
	callerId, role, ok := extractClaims(c)
	if !ok {
		return
	}

	if role != schemas.RoleAgent {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("agent only"))
		return
	}

	agentId, err := uuid.Parse(callerId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	defer func() {
		utils.RollbackTransaction(c, tx, err)
	}()

	createRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.CreatePropertyRequest)

	propertyId := uuid.New()
	createdAt := time.Now()
	isAvailable := true
	if createRequest.IsAvailable != nil {
		isAvailable = *createRequest.IsAvailable
	}

	queryString := "INSERT INTO unistay_schema.properties (property_id, agent_id, title, location, price, room_type, images, amenities, is_available, created_at) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)"
	if _, err = tx.Exec(c, queryString, propertyId, agentId, createRequest.Title, createRequest.Location, createRequest.Price,
		createRequest.RoomType, createRequest.Images, createRequest.Amenities, isAvailable, createdAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	propertyDto := &schemas.PropertyDTO{
		PropertyId:  propertyId.String(),
		AgentId:     &agentId,
		Title:       createRequest.Title,
		Location:    createRequest.Location,
		Price:       createRequest.Price,
		RoomType:    createRequest.RoomType,
		Images:      createRequest.Images,
		Amenities:   createRequest.Amenities,
		IsAvailable: isAvailable,
		CreatedAt:   createdAt.Format(time.RFC3339),
	}
	utils.WriteAndLogResponse(c, propertyDto, http.StatusCreated)
}

// GetProperty returns a single listing, no authentication required.
func (handler *PropertyHandler) GetProperty(c *gin.Context) {
	propertyId, err := uuid.Parse(c.Param(utils.PropertyIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	queryString := "SELECT agent_id, title, location, price, room_type, images, amenities, is_available, created_at " +
		"FROM unistay_schema.properties WHERE property_id = $1"
	rows, err := handler.DatabaseManager.GetPool().Query(c, queryString, propertyId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	if !rows.Next() {
		utils.WriteAndLogError(c, schemas.PropertyNotFound, http.StatusNotFound, errors.New("property not found"))
		return
	}

	property, err := scanProperty(rows, propertyId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, property, http.StatusOK)
}

// ListProperties returns the paginated public listing browse, optionally
// filtered by availability.
func (handler *PropertyHandler) ListProperties(c *gin.Context) {
	offset, limit := utils.ParsePaginationParams(c)

	queryString := "SELECT property_id, agent_id, title, location, price, room_type, images, amenities, is_available, created_at " +
		"FROM unistay_schema.properties"
	args := make([]interface{}, 0, 1)
	if available := c.Query(utils.AvailableParamKey); available != "" {
		queryString += " WHERE is_available = $1"
		args = append(args, available == "true")
	}
	queryString += " ORDER BY created_at DESC"

	rows, err := handler.DatabaseManager.GetPool().Query(c, queryString, args...)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	properties := make([]*schemas.PropertyDTO, 0)
	for rows.Next() {
		var propertyId uuid.UUID
		var agentId pgtype.UUID
		property := &schemas.PropertyDTO{}
		var createdAt time.Time
		if err = rows.Scan(&propertyId, &agentId, &property.Title, &property.Location, &property.Price,
			&property.RoomType, &property.Images, &property.Amenities, &property.IsAvailable, &createdAt); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}
		property.PropertyId = propertyId.String()
		if agentId.Valid {
			id := uuid.UUID(agentId.Bytes)
			property.AgentId = &id
		}
		property.CreatedAt = createdAt.Format(time.RFC3339)
		properties = append(properties, property)
	}

	utils.SendPaginatedResponse(c, properties, offset, limit, len(properties))
}

// UpdateProperty rewrites a listing, allowed for the owning agent and admins.
func (handler *PropertyHandler) UpdateProperty(c *gin.Context) {
	callerId, role, ok := extractClaims(c)
	if !ok {
		return
	}

	propertyId, err := uuid.Parse(c.Param(utils.PropertyIdKey))
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

	if err = checkPropertyOwnership(c, tx, propertyId, callerId, role); err != nil {
		return
	}

	updateRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.UpdatePropertyRequest)

	isAvailable := true
	if updateRequest.IsAvailable != nil {
		isAvailable = *updateRequest.IsAvailable
	}

	queryString := "UPDATE unistay_schema.properties SET title = $1, location = $2, price = $3, room_type = $4, images = $5, amenities = $6, is_available = $7 " +
		"WHERE property_id = $8"
	if _, err = tx.Exec(c, queryString, updateRequest.Title, updateRequest.Location, updateRequest.Price,
		updateRequest.RoomType, updateRequest.Images, updateRequest.Amenities, isAvailable, propertyId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteProperty removes a listing, allowed for the owning agent and admins.
func (handler *PropertyHandler) DeleteProperty(c *gin.Context) {
	callerId, role, ok := extractClaims(c)
	if !ok {
		return
	}

	propertyId, err := uuid.Parse(c.Param(utils.PropertyIdKey))
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

	if err = checkPropertyOwnership(c, tx, propertyId, callerId, role); err != nil {
		return
	}

	queryString := "DELETE FROM unistay_schema.properties WHERE property_id = $1"
	if _, err = tx.Exec(c, queryString, propertyId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

// checkPropertyOwnership ensures the listing exists and that the caller may
// modify it.
func checkPropertyOwnership(c *gin.Context, tx pgx.Tx, propertyId uuid.UUID, callerId, role string) error {
	queryString := "SELECT agent_id FROM unistay_schema.properties WHERE property_id = $1"
	rows, err := tx.Query(c, queryString, propertyId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		err = errors.New("property not found")
		utils.WriteAndLogError(c, schemas.PropertyNotFound, http.StatusNotFound, err)
		return err
	}

	var agentId pgtype.UUID
	if err = rows.Scan(&agentId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}

	if role == schemas.RoleAdmin {
		return nil
	}

	if !agentId.Valid || uuid.UUID(agentId.Bytes).String() != callerId {
		err = errors.New("not the managing agent")
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
		return err
	}

	return nil
}

func scanProperty(rows pgx.Rows, propertyId uuid.UUID) (*schemas.PropertyDTO, error) {
	property := &schemas.PropertyDTO{PropertyId: propertyId.String()}
	var agentId pgtype.UUID
	var createdAt time.Time

	if err := rows.Scan(&agentId, &property.Title, &property.Location, &property.Price,
		&property.RoomType, &property.Images, &property.Amenities, &property.IsAvailable, &createdAt); err != nil {
		return nil, err
	}

	if agentId.Valid {
		id := uuid.UUID(agentId.Bytes)
		property.AgentId = &id
	}
	property.CreatedAt = createdAt.Format(time.RFC3339)

	return property, nil
}
