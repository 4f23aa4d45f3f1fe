package handlers

import (
	"net/http"

	"github.com/Dosada05/club-billing/middleware"
	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/services"
)

type ClubHandler struct {
	clubService services.ClubService
}

func NewClubHandler(clubService services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: clubService}
}

func (h *ClubHandler) GetClubByID(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	role, _ := middleware.GetUserRoleFromContext(r.Context())
	tokenClubID, _ := middleware.GetClubIDFromContext(r.Context())
	if role != models.RoleAdmin && tokenClubID != clubID {
		forbiddenResponse(w, r, "access to another club is forbidden")
		return
	}

	club, err := h.clubService.GetClubByID(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"club": club}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) ListClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubService.ListClubs(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"clubs": clubs}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) UploadClubLogo(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	role, _ := middleware.GetUserRoleFromContext(r.Context())
	tokenClubID, _ := middleware.GetClubIDFromContext(r.Context())
	if role != models.RoleAdmin && tokenClubID != clubID {
		forbiddenResponse(w, r, "access to another club is forbidden")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	file, fileHeader, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	club, err := h.clubService.UploadClubLogo(r.Context(), clubID, file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"club": club}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
