package constants

// Error messages returned to clients.
const (
	ErrMsgInternalServerError = "Internal server error."
	ErrMsgBadRequest          = "Bad request."
	ErrMsgValidationFailed    = "Validation failed."
	ErrMsgJSONTypeMismatch    = "JSON field has the wrong type."
	ErrMsgJSONSyntaxError     = "Malformed JSON body."
	ErrMsgNotFound            = "Resource not found."
	ErrMsgInvalidID           = "Invalid id."
	ErrMsgNoFieldsToUpdate    = "Nothing to update."

	ErrMsgUnauthorized   = "User is not logged in."
	ErrMsgTokenExpired   = "Login expired or token invalid, please log in again."
	ErrMsgForbidden      = "You are not allowed to do this."
	ErrMsgAdminLoginFail = "Wrong staff name or password."

	ErrMsgPhoneRequired      = "Phone number is required."
	ErrMsgLoginFields        = "Phone number and verification code are required."
	ErrMsgRequiredFields     = "Please fill in all required fields."
	ErrMsgInvalidVerifyCode  = "Wrong verification code."
	ErrMsgPhoneRegistered    = "This phone number is already registered."
	ErrMsgIDCardRegistered   = "This id card number is already registered."
	ErrMsgIDCardUsed         = "This id card number is used by another account."
	ErrMsgDuplicateRegister  = "Duplicate registration data, check phone and id card number."
	ErrMsgPhoneNotRegistered = "This phone number is not registered."
	ErrMsgUserNotFound       = "User does not exist."

	ErrMsgMultipartRequired = "Please submit the form as multipart/form-data."
	ErrMsgInvalidEventType  = "EventType must be 0 (request) or 1 (offer)."
	ErrMsgInvalidPrice      = "Price must be a non-negative number."
	ErrMsgInvalidCardType   = "type must be request or help."
	ErrMsgInvalidPhotos     = "Photos must be a JSON array of image paths."
	ErrMsgPhotoInUse        = "A photo belongs to another record."
	ErrMsgEventNotFound     = "Event does not exist."
	ErrMsgNotEventCreator   = "Only the creator can change this event."
	ErrMsgEventHasOpenOrder = "The event still has open orders."

	ErrMsgNoImages          = "No image uploaded."
	ErrMsgTooManyFiles      = "Too many files uploaded."
	ErrMsgFileTooLarge      = "File is too large."
	ErrMsgInvalidFileType   = "Only image files can be uploaded."
	ErrMsgInvalidUploadPath = "Invalid upload path."
	ErrMsgFileInUse         = "The file is still referenced and cannot be deleted."

	ErrMsgServiceCategoryRequired = "Please fill in the service category."
	ErrMsgInvalidServiceCategory  = "Service category must be 1, 2 or 3."
	ErrMsgIDCardPhotoRequired     = "Please upload the id card photo."
	ErrMsgCertPhotoRequired       = "Please upload the professional certificate photo."
	ErrMsgVerificationNotFound    = "Verification record does not exist."
	ErrMsgVerificationNotPending  = "Only a pending verification can be reviewed."

	ErrMsgOrderNotFound        = "Order does not exist."
	ErrMsgOwnEvent             = "You cannot order your own offer."
	ErrMsgOnlyCreatorOrders    = "Only the creator can open an order for a request."
	ErrMsgDuplicateOpenOrder   = "You already have an open order for this event."
	ErrMsgOrderStateConflict   = "The order status does not allow this operation."
	ErrMsgNotOrderParticipant  = "You are not part of this order."
	ErrMsgProviderNotVerified  = "Only approved providers can accept orders."
	ErrMsgNotAssignedProvider  = "This order is assigned to another provider."
	ErrMsgCannotAcceptOwnOrder = "You cannot accept your own order."
	ErrMsgInvalidOrderRole     = "role must be consumer or provider."
	ErrMsgInvalidOrderStatus   = "status must be between 0 and 3."

	ErrMsgOrderNotCompleted = "Only completed orders can be reviewed."
	ErrMsgAlreadyReviewed   = "You have already reviewed this order."

	ErrMsgRoomIDRequired = "roomId is required."
	ErrMsgRoomNotFound   = "Chat room does not exist."
	ErrMsgNotRoomMember  = "You are not a member of this chat room."
	ErrMsgOwnRoom        = "You cannot open a chat with yourself."
	ErrMsgEmptyMessage   = "Message text is empty."
	ErrMsgMessageTooLong = "Message text is too long."
	ErrMsgNotJoinedRoom  = "Join the room before sending messages."
	ErrMsgUnknownEvent   = "Unknown event."
)

// Success messages.
const (
	MsgSuccessLogin          = "Login successful."
	MsgSuccessRegister       = "Registration successful."
	MsgSuccessProfileUpdated = "Profile updated."
	MsgSuccessEventCreated   = "Event published."
	MsgSuccessEventUpdated   = "Event updated."
	MsgSuccessEventDeleted   = "Event deleted."
	MsgSuccessFileUpload     = "Upload successful."
	MsgSuccessFileDeleted    = "File deleted."
	MsgVerificationSubmitted = "Verification submitted, please wait for review."
	MsgVerificationUpdated   = "Verification updated, status is pending review."
	MsgVerificationApproved  = "Verification approved."
	MsgVerificationRejected  = "Verification rejected."
	MsgSuccessUserDeleted    = "User deleted."
	MsgSuccessOrderCreated   = "Order created."
	MsgSuccessOrderAccepted  = "Order accepted."
	MsgSuccessOrderCompleted = "Order completed."
	MsgSuccessOrderCancelled = "Order cancelled."
	MsgSuccessOrderUpdated   = "Order updated."
	MsgSuccessReviewCreated  = "Review submitted."
	MsgSuccessAdminLogin     = "Staff login successful."
	MsgWelcome               = "Connected to the chat server."
)

// System notification templates, the %s placeholder is the event title.
const (
	NotifyOrderCreated           = "Your order \"%s\" was created, please wait for the provider to confirm."
	NotifyOrderAcceptedConsumer  = "Your order \"%s\" was accepted by %s, please keep in touch."
	NotifyOrderAcceptedProvider  = "You accepted the order \"%s\"."
	NotifyOrderCompletedConsumer = "Your order \"%s\" is completed, please review the provider."
	NotifyOrderCompletedProvider = "Order \"%s\" is completed, please review the requester."
	NotifyOrderCancelled         = "Your order \"%s\" was cancelled."
	NotifyOrderUpdated           = "Your order \"%s\" was modified by the provider, please check it."
	NotifyVerificationSubmitted  = "Your verification was updated, status is pending review."
	NotifyVerificationApproved   = "Your verification was approved. %s"
	NotifyVerificationRejected   = "Your verification was rejected. %s"
)
