package utils

const (
	// UserIdKey is the key for user ID used in routing parameters.
	UserIdKey = "userId"

	// PropertyIdKey is the key for property ID used in routing parameters.
	PropertyIdKey = "propertyId"

	// BookingIdKey is the key for booking ID used in routing parameters.
	BookingIdKey = "bookingId"

	// AgentIdKey is the key for agent ID used in routing parameters.
	AgentIdKey = "agentId"

	// LinkTokenKey is the key for the signed verification link token used in routing parameters.
	LinkTokenKey = "token"

	// OffsetParamKey is the key for offset used in pagination query parameters.
	OffsetParamKey = "offset"

	// LimitParamKey is the key for limit used in pagination query parameters.
	LimitParamKey = "limit"

	// AvailableParamKey is the key for the availability filter used in query parameters.
	AvailableParamKey = "available"
)
