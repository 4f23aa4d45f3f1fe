package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Dosada05/club-billing/repositories"
	"github.com/Dosada05/club-billing/services"
)

type ExpenseHandler struct {
	expenseService services.ExpenseService
}

func NewExpenseHandler(expenseService services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

type expensePayload struct {
	Name   string    `json:"name"`
	Amount int64     `json:"amount"`
	Date   time.Time `json:"date"`
}

func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if clubID == 0 {
		badRequestResponse(w, r, errors.New("club_id is required to create an expense"))
		return
	}

	var payload expensePayload
	if err := readJSON(w, r, &payload); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if payload.Date.IsZero() {
		payload.Date = time.Now()
	}

	expense, err := h.expenseService.CreateExpense(r.Context(), services.ExpenseInput{
		ClubID: clubID,
		Name:   payload.Name,
		Amount: payload.Amount,
		Date:   payload.Date,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"expense": expense}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filter := repositories.ListExpensesFilter{ClubID: clubID}
	query := r.URL.Query()

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

	expenses, err := h.expenseService.ListExpenses(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"expenses": expenses}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	expenseID, err := getIDFromURL(r, "expenseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var payload expensePayload
	if err := readJSON(w, r, &payload); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(r.Context(), clubID, expenseID, services.ExpenseInput{
		ClubID: clubID,
		Name:   payload.Name,
		Amount: payload.Amount,
		Date:   payload.Date,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"expense": expense}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	expenseID, err := getIDFromURL(r, "expenseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.expenseService.DeleteExpense(r.Context(), clubID, expenseID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "expense deleted"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
