package apperror

// Kind is the stable machine-readable error category returned to clients.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindInvalidInterval     Kind = "invalid_interval"
	KindOutsideWorkHours    Kind = "outside_work_hours"
	KindDurationOutOfBounds Kind = "duration_out_of_bounds"
	KindPastBooking         Kind = "past_booking"
	KindSlotTaken           Kind = "slot_taken"
	KindForbidden           Kind = "forbidden"
	KindAlreadyCancelled    Kind = "already_cancelled"
	KindInvalidExtension    Kind = "invalid_extension"
	KindInvalidInput        Kind = "invalid_input"
	KindConflict            Kind = "conflict"
	KindUnauthorized        Kind = "unauthorized"
)

// AppError is a custom error type that includes an HTTP status code, an error kind
// and optionally the request field that caused it.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Kind    Kind   // Machine-readable category
	Field   string // Offending input field, if any
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same kind and message,
// so copies produced by WithField still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// WithField returns a copy of the error annotated with the offending field.
func (e *AppError) WithField(field string) *AppError {
	cp := *e
	cp.Field = field
	return &cp
}

// New creates a new AppError with a status code, kind and message.
func New(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}
