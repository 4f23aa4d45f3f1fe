package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Dosada05/club-billing/repositories"
	"github.com/Dosada05/club-billing/services"
)

type MembershipHandler struct {
	membershipService services.MembershipService
}

func NewMembershipHandler(membershipService services.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

func (h *MembershipHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if clubID == 0 {
		badRequestResponse(w, r, errors.New("club_id is required to record a payment"))
		return
	}

	var payload struct {
		PlayerID      int       `json:"player_id"`
		Amount        int64     `json:"amount"`
		PaymentDate   time.Time `json:"payment_date"`
		CoverageStart time.Time `json:"coverage_start"`
		CoverageEnd   time.Time `json:"coverage_end"`
	}
	if err := readJSON(w, r, &payload); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if payload.PaymentDate.IsZero() {
		payload.PaymentDate = time.Now()
	}

	payment, err := h.membershipService.RecordPayment(r.Context(), services.RecordPaymentInput{
		ClubID:        clubID,
		PlayerID:      payload.PlayerID,
		Amount:        payload.Amount,
		PaymentDate:   payload.PaymentDate,
		CoverageStart: payload.CoverageStart,
		CoverageEnd:   payload.CoverageEnd,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"payment": payment}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MembershipHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filter := repositories.ListMembershipPaymentsFilter{ClubID: clubID}
	query := r.URL.Query()

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

	payments, err := h.membershipService.ListPayments(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"payments": payments}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
