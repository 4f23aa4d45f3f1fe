package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/club-billing/middleware"
	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // Ошибка программиста: dst не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	if err != nil {
		return err
	}

	return nil
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

func serviceUnavailableResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusServiceUnavailable, message)
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		idStr = chi.URLParam(r, "id")
		if idStr == "" {
			return 0, fmt.Errorf("missing %s or id in URL path", paramName)
		}
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", paramName)
	}
	return id, nil
}

// resolveClubID вычисляет область данных запроса. Обычный сотрудник
// жёстко привязан к клубу из токена; admin может выбрать клуб через
// ?club_id= или опустить его и получить данные всех клубов (clubID=0).
func resolveClubID(r *http.Request) (int, error) {
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		return 0, err
	}
	tokenClubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		return 0, err
	}

	if role != models.RoleAdmin {
		if tokenClubID <= 0 {
			return 0, errors.New("token does not carry a club")
		}
		return tokenClubID, nil
	}

	if queryClubID := r.URL.Query().Get("club_id"); queryClubID != "" {
		clubID, err := strconv.Atoi(queryClubID)
		if err != nil || clubID <= 0 {
			return 0, fmt.Errorf("invalid club_id query parameter: %q", queryClubID)
		}
		return clubID, nil
	}
	return 0, nil
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Не найдено
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrServiceNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrLineItemNotFound),
		errors.Is(err, services.ErrExpenseNotFound),
		errors.Is(err, services.ErrClubNotFound):
		notFoundResponse(w, r)

	// Конфликты данных и ошибки состояния: и то и другое 409 — операция
	// корректна сама по себе, но противоречит текущему состоянию.
	case errors.Is(err, services.ErrPlayerAlreadyCheckedIn),
		errors.Is(err, services.ErrPlayerPhoneConflict),
		errors.Is(err, services.ErrServiceNameConflict),
		errors.Is(err, services.ErrAuthEmailTaken),
		errors.Is(err, services.ErrSessionNotPlaying),
		errors.Is(err, services.ErrSessionAlreadyFinished),
		errors.Is(err, services.ErrServiceInactive),
		errors.Is(err, services.ErrMembershipCoversService):
		conflictResponse(w, r, err.Error())

	// Валидация
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPlayerNameRequired),
		errors.Is(err, services.ErrInvalidPhoneFormat),
		errors.Is(err, services.ErrInvalidSkillTier),
		errors.Is(err, services.ErrServiceNameRequired),
		errors.Is(err, services.ErrNegativeUnitPrice),
		errors.Is(err, services.ErrInvalidServiceStatus),
		errors.Is(err, services.ErrQuantityNotPositive),
		errors.Is(err, services.ErrExpenseNameRequired),
		errors.Is(err, services.ErrAmountNotPositive),
		errors.Is(err, services.ErrInvalidCoverageRange),
		errors.Is(err, services.ErrInvalidReportRange),
		errors.Is(err, services.ErrCheckoutTotalMismatch),
		errors.Is(err, services.ErrPasswordTooShort):
		badRequestResponse(w, r, err)

	// Аутентификация и доступ
	case errors.Is(err, services.ErrAuthInvalidCredentials):
		unauthorizedResponse(w, r, err.Error())
	case errors.Is(err, services.ErrForbiddenOperation),
		errors.Is(err, services.ErrCrossClubForbidden):
		forbiddenResponse(w, r, err.Error())

	// Хранилище недоступно: транзиентно, ручной повтор на стороне клиента
	case errors.Is(err, services.ErrStoreUnavailable),
		errors.Is(err, services.ErrStorageNotConfigured):
		serviceUnavailableResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
