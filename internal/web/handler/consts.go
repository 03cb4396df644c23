package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// ErrNilACDFatalLogMsg is used if router, cfg or auth service pointer is nil.
	ErrNilACDFatalLogMsg = "router, cfg or auth service is nil"

	// ErrorCodeInternal marks responses of unhandled errors.
	ErrorCodeInternal = "INTERNAL_ERROR"

	// ErrorCodeValidation marks responses of rejected request bodies.
	ErrorCodeValidation = "VALIDATION_ERROR"

	// HeaderTotalCount carries the unpaginated size of list responses.
	HeaderTotalCount = "X-Total-Count"
)
