package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
// Таксономия: валидация (операция не дошла до хранилища), конфликт
// (инвариант нарушен на уровне данных), ошибка состояния (сущность не в
// том статусе), не найдено, хранилище недоступно.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации
	ErrValidationFailed      = errors.New("validation failed")
	ErrPlayerNameRequired    = errors.New("player full name is required")
	ErrInvalidPhoneFormat    = errors.New("invalid phone number format")
	ErrInvalidSkillTier      = errors.New("invalid skill tier")
	ErrServiceNameRequired   = errors.New("service name is required")
	ErrNegativeUnitPrice     = errors.New("service unit price cannot be negative")
	ErrInvalidServiceStatus  = errors.New("invalid service status")
	ErrQuantityNotPositive   = errors.New("quantity must be a positive integer")
	ErrExpenseNameRequired   = errors.New("expense name is required")
	ErrAmountNotPositive     = errors.New("amount must be positive")
	ErrInvalidCoverageRange  = errors.New("membership coverage end must be after coverage start")
	ErrInvalidReportRange    = errors.New("invalid report granularity or window size")
	ErrCheckoutTotalMismatch = errors.New("expected total does not match the recomputed session total")
	ErrPasswordTooShort      = errors.New("password is too short")

	// Ошибки конфликтов
	ErrPlayerAlreadyCheckedIn = errors.New("player already has an open session")
	ErrPlayerPhoneConflict    = errors.New("phone number is already in use in this club")
	ErrServiceNameConflict    = errors.New("service name is already in use in this club")

	// Ошибки состояния: операция против сущности в неверном статусе.
	// Никогда не игнорируются молча.
	ErrSessionNotPlaying      = errors.New("session is not in playing state")
	ErrSessionAlreadyFinished = errors.New("session is already finished")
	ErrServiceInactive        = errors.New("service is inactive; pass override to attach anyway")
	// Советующее правило: членство покрывает кортовое время, нужен
	// явный оверрайд оператора.
	ErrMembershipCoversService = errors.New("player has an active membership covering time-based services; pass override to attach anyway")

	// Ошибки по сущностям (дают больше контекста, чем ErrNotFound)
	ErrPlayerNotFound   = errors.New("player not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrLineItemNotFound = errors.New("session line item not found")
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrClubNotFound     = errors.New("club not found")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrCrossClubForbidden     = errors.New("cross-club access requires the admin role")

	// Транзиентная недоступность хранилища: ядро само не ретраит,
	// вызывающая сторона может предложить ручной повтор.
	ErrStoreUnavailable = errors.New("ledger store is temporarily unavailable")

	// Файловое хранилище не сконфигурировано (R2-переменные не заданы).
	ErrStorageNotConfigured = errors.New("file storage is not configured")
)
