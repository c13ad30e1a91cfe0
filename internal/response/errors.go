package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrPermissionDenied  ErrCode = "PERMISSION_DENIED"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrStaffAccessOnly   ErrCode = "STAFF_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrActionForbidden  ErrCode = "ACTION_FORBIDDEN"

	// ─── Enrollment ────────────────────────────────────────────────────
	ErrOfferingClosed    ErrCode = "OFFERING_CLOSED"
	ErrAlreadyEnrolled   ErrCode = "ALREADY_ENROLLED"
	ErrSeatsExhausted    ErrCode = "SEATS_EXHAUSTED"
	ErrNotCancelable     ErrCode = "NOT_CANCELABLE"
	ErrInvalidDecision   ErrCode = "INVALID_DECISION"
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrCapacityLocked    ErrCode = "CAPACITY_LOCKED"
	ErrNotEnrolled       ErrCode = "NOT_ENROLLED"
	ErrBusy              ErrCode = "BUSY"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Legajo, email o contraseña incorrectos."
	case ErrSessionActive:
		return "Ya tenés una sesión abierta en otro dispositivo."
	case ErrSessionInvalidated:
		return "Tu sesión finalizó. Volvé a iniciar sesión."
	case ErrTokenRequired:
		return "Se requiere un token de autenticación."
	case ErrTokenInvalid:
		return "El token de autenticación no es válido o expiró."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "No tenés permiso para realizar esta operación."
	case ErrPermissionDenied:
		return "Permiso denegado."
	case ErrStudentAccessOnly:
		return "Este recurso es exclusivo para estudiantes."
	case ErrStaffAccessOnly:
		return "Este recurso es exclusivo para docentes y administradores."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Los datos enviados no son válidos."
	case ErrInvalidID:
		return "El identificador no tiene un formato válido."
	case ErrInvalidPayload:
		return "El cuerpo de la solicitud no es válido."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "El recurso solicitado no existe."
	case ErrConflict:
		return "El recurso ya existe."
	case ErrDependencyExists:
		return "No se puede eliminar porque otros datos dependen de este registro."
	case ErrActionForbidden:
		return "Esta acción no está permitida."

	// ─── Enrollment ────────────────────────────────────────────────────
	case ErrOfferingClosed:
		return "La inscripción para esta comisión o mesa ya está cerrada."
	case ErrAlreadyEnrolled:
		return "Ya tenés una inscripción activa en esta comisión o mesa."
	case ErrSeatsExhausted:
		return "No quedan cupos disponibles."
	case ErrNotCancelable:
		return "La inscripción ya fue resuelta y no puede cancelarse."
	case ErrInvalidDecision:
		return "La decisión no es válida para este tipo de inscripción."
	case ErrInvalidTransition:
		return "La inscripción ya fue resuelta."
	case ErrCapacityLocked:
		return "No se puede modificar el cupo porque ya hay inscriptos."
	case ErrNotEnrolled:
		return "Hay estudiantes que no están inscriptos en esta comisión."
	case ErrBusy:
		return "El sistema está ocupado. Intentá nuevamente en unos segundos."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Demasiadas solicitudes. Intentá nuevamente más tarde."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Ocurrió un error interno del servidor."
	default:
		return "Ocurrió un error inesperado."
	}
}
