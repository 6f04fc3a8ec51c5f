package pairchatv1

// ErrorDomain is the errdetails.ErrorInfo domain of pairchat errors.
const ErrorDomain = "pairchat.v1"

// ErrorInfo reasons carried by failed calls. Clients map them back to the
// matching Go sentinel errors.
const (
	ReasonLogNotFound        = "LOG_NOT_FOUND"
	ReasonInvalidMessage     = "INVALID_MESSAGE"
	ReasonPermissionDenied   = "PERMISSION_DENIED"
	ReasonUploadFailed       = "UPLOAD_FAILED"
	ReasonProfileNotFound    = "PROFILE_NOT_FOUND"
	ReasonInvalidCredentials = "INVALID_CREDENTIALS"
	ReasonEmailTaken         = "EMAIL_TAKEN"
	ReasonValidation         = "VALIDATION"
	ReasonNotParticipant     = "NOT_PARTICIPANT"
)

// MetadataField is the ErrorInfo metadata key naming the invalid form field
// of a VALIDATION error.
const MetadataField = "field"
