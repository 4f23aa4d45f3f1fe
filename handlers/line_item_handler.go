package handlers

import (
	"net/http"

	"github.com/Dosada05/club-billing/services"
)

type LineItemHandler struct {
	lineItemService services.LineItemService
}

func NewLineItemHandler(lineItemService services.LineItemService) *LineItemHandler {
	return &LineItemHandler{lineItemService: lineItemService}
}

func (h *LineItemHandler) AddLineItem(w http.ResponseWriter, r *http.Request) {
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

	var payload struct {
		ServiceID int  `json:"service_id"`
		Quantity  int  `json:"quantity"`
		Override  bool `json:"override"`
	}
	if err := readJSON(w, r, &payload); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.lineItemService.AddLineItem(r.Context(), services.AddLineItemInput{
		ClubID:    clubID,
		SessionID: sessionID,
		ServiceID: payload.ServiceID,
		Quantity:  payload.Quantity,
		Override:  payload.Override,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"result": result}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LineItemHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	lineItemID, err := getIDFromURL(r, "lineItemID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var payload struct {
		Delta int `json:"delta"`
	}
	if err := readJSON(w, r, &payload); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.lineItemService.AdjustQuantity(r.Context(), clubID, lineItemID, payload.Delta)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"result": result}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LineItemHandler) RemoveLineItem(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	lineItemID, err := getIDFromURL(r, "lineItemID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.lineItemService.RemoveLineItem(r.Context(), clubID, lineItemID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"result": result}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
