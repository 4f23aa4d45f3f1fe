package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
	"github.com/Dosada05/club-billing/services"
)

type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type servicePayload struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	UnitLabel string `json:"unit_label"`
	Status    string `json:"status,omitempty"`
	TimeBased bool   `json:"time_based"`
}

func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if clubID == 0 {
		badRequestResponse(w, r, errors.New("club_id is required to create a service"))
		return
	}

	var payload servicePayload
	if err := readJSON(w, r, &payload); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	service, err := h.catalogService.CreateService(r.Context(), services.CreateServiceInput{
		ClubID:    clubID,
		Name:      payload.Name,
		UnitPrice: payload.UnitPrice,
		UnitLabel: payload.UnitLabel,
		TimeBased: payload.TimeBased,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"service": service}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CatalogHandler) GetServiceByID(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	serviceID, err := getIDFromURL(r, "serviceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	service, err := h.catalogService.GetServiceByID(r.Context(), clubID, serviceID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"service": service}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filter := repositories.ListServicesFilter{ClubID: clubID}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status, err := models.ParseServiceStatus(statusStr)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		filter.Status = &status
	}

	serviceList, err := h.catalogService.ListServices(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"services": serviceList}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	serviceID, err := getIDFromURL(r, "serviceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var payload servicePayload
	if err := readJSON(w, r, &payload); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if payload.Status == "" {
		payload.Status = string(models.ServiceStatusActive)
	}

	service, err := h.catalogService.UpdateService(r.Context(), clubID, serviceID, services.UpdateServiceInput{
		Name:      payload.Name,
		UnitPrice: payload.UnitPrice,
		UnitLabel: payload.UnitLabel,
		Status:    payload.Status,
		TimeBased: payload.TimeBased,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"service": service}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
