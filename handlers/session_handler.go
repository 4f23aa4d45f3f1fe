package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
	"github.com/Dosada05/club-billing/services"
)

type SessionHandler struct {
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if clubID == 0 {
		badRequestResponse(w, r, errors.New("club_id is required to check in a player"))
		return
	}

	var payload struct {
		PlayerID int `json:"player_id"`
	}
	if err := readJSON(w, r, &payload); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.CheckIn(r.Context(), clubID, payload.PlayerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"session": session}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// expected_total опционален: витрина может прислать сумму, которую
	// видел оператор, итог всё равно пересчитывается на сервере.
	var payload struct {
		ExpectedTotal *int64 `json:"expected_total"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &payload); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	session, err := h.sessionService.CheckOut(r.Context(), clubID, sessionID, payload.ExpectedTotal)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"session": session}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) GetSessionByID(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.GetSession(r.Context(), clubID, sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"session": session}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filter := repositories.ListSessionsFilter{ClubID: clubID}
	query := r.URL.Query()

	if statusStr := query.Get("status"); statusStr != "" {
		status, err := models.ParseSessionStatus(statusStr)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		filter.Status = &status
	}
	if playerStr := query.Get("player_id"); playerStr != "" {
		playerID, err := strconv.Atoi(playerStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid player_id parameter"))
			return
		}
		filter.PlayerID = &playerID
	}
	if fromStr := query.Get("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid from parameter, expected RFC3339"))
			return
		}
		filter.From = &from
	}
	if toStr := query.Get("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid to parameter, expected RFC3339"))
			return
		}
		filter.To = &to
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	sessions, err := h.sessionService.ListSessions(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"sessions": sessions}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
