package httpapi

import (
	"net/http"

	"festflow/internal/domain"
	"festflow/internal/service"

	"go.uber.org/zap"
)

// RegistrationHandler 队伍报名/删除与单人分配/释放
type RegistrationHandler struct {
	registration  service.RegistrationService
	accommodation service.AccommodationService
	logger        *zap.Logger
}

func NewRegistrationHandler(registration service.RegistrationService, accommodation service.AccommodationService, logger *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registration:  registration,
		accommodation: accommodation,
		logger:        logger,
	}
}

// CreateTeamForEvent POST /api/v1/teams/add-to-event
func (h *RegistrationHandler) CreateTeamForEvent(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTeamRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.EventID == "" {
		writeError(w, r, h.logger, domain.InvalidArgument("http", "event_id is required"))
		return
	}

	resp, err := h.registration.CreateTeamForEvent(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

// DeleteTeam DELETE /api/v1/teams/{id}
func (h *RegistrationHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.registration.DeleteTeam(r.Context(), teamID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// AllocateRoom POST /api/v1/participants/{id}/allocate
// 无可用房间返回 409
func (h *RegistrationHandler) AllocateRoom(w http.ResponseWriter, r *http.Request) {
	participantID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.accommodation.AllocateRoom(r.Context(), participantID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	switch resp.Outcome {
	case service.AllocationNoRoom:
		writeJSON(w, http.StatusConflict, Result[*service.AllocateRoomResponse]{
			Code: ResultError, Type: "error", Kind: string(domain.KindResourceExhausted),
			Message: "no room available", Result: resp,
		})
	case service.AllocationCreated:
		writeJSON(w, http.StatusCreated, Ok(resp))
	default:
		writeJSON(w, http.StatusOK, Ok(resp))
	}
}

// ReleaseReservation DELETE /api/v1/participants/{id}/reservation
func (h *RegistrationHandler) ReleaseReservation(w http.ResponseWriter, r *http.Request) {
	participantID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.accommodation.ReleaseReservation(r.Context(), participantID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
