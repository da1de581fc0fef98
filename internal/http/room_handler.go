package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"festflow/internal/service"

	"go.uber.org/zap"
)

// RoomHandler 房间管理与住宿名单导出
type RoomHandler struct {
	accommodation service.AccommodationService
	roster        *service.RosterExporter
	logger        *zap.Logger
}

func NewRoomHandler(accommodation service.AccommodationService, roster *service.RosterExporter, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{accommodation: accommodation, roster: roster, logger: logger}
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRoomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	room, err := h.accommodation.CreateRoom(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(room))
}

func (h *RoomHandler) ListOccupancy(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.accommodation.ListRoomOccupancy(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(rooms))
}

func (h *RoomHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	participants, err := h.accommodation.ListRoomParticipants(r.Context(), roomID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(participants))
}

// ExportRoster GET /api/v1/rooms/roster.xlsx
func (h *RoomHandler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	data, err := h.roster.Export(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	filename := fmt.Sprintf("accommodation_roster_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
