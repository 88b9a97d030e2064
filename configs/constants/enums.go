package constants

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleStaff UserRole = "staff"
	RoleUser  UserRole = "user"
)

func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleStaff
}

type EventType int

const (
	EventTypeRequest EventType = 0
	EventTypeOffer   EventType = 1
)

func (t EventType) Valid() bool {
	return t == EventTypeRequest || t == EventTypeOffer
}

// Listing filter values accepted by /api/cards.
const (
	CardTypeRequest = "request"
	CardTypeHelp    = "help"
)

type VerificationStatus int

const (
	VerificationPending  VerificationStatus = 0
	VerificationApproved VerificationStatus = 1
	VerificationRejected VerificationStatus = 2
)

type ServiceCategory int

const (
	ServiceFullTime ServiceCategory = 1
	ServicePartTime ServiceCategory = 2
	ServiceMerchant ServiceCategory = 3
)

func (s ServiceCategory) Valid() bool {
	return s >= ServiceFullTime && s <= ServiceMerchant
}

type OrderStatus int

const (
	OrderPending   OrderStatus = 0
	OrderAccepted  OrderStatus = 1
	OrderCompleted OrderStatus = 2
	OrderCancelled OrderStatus = 3
)

func (s OrderStatus) Valid() bool {
	return s >= OrderPending && s <= OrderCancelled
}

func (s OrderStatus) Open() bool {
	return s == OrderPending || s == OrderAccepted
}

var OpenOrderStatuses = []OrderStatus{OrderPending, OrderAccepted}

const (
	SystemBotID      uint = 0
	SystemBotName         = "system_bot"
	SystemRoomPrefix      = "system_"
	EventRoomPrefix       = "event_"
)

// Realtime gateway event names.
const (
	WSEventConnectSuccess = "connectSuccess"
	WSEventMyself         = "myself"
	WSEventJoinRoom       = "joinRoom"
	WSEventLeaveRoom      = "leaveRoom"
	WSEventJoined         = "joined"
	WSEventLeft           = "left"
	WSEventChatMessage    = "chat message"
	WSEventError          = "error"
)

const (
	DefaultUserAvatar = "/img/user.svg"
	MaxImageSizeMB    = 10
	MaxUploadFiles    = 10
	MaxIDCardFiles    = 2
	MaxCertFiles      = 5
)

const (
	MaxChatMessageLength   = 1000
	DefaultHistoryPageSize = 20
	MaxHistoryPageSize     = 100
	UserListLimit          = 50
)
