package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（Go 1.22 method/path 模式）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) RegisterHealthRoutes() {
	r.Handle("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "ok"}))
	})
}

// RegisterRegistrationRoutes 报名与住宿分配
func (r *Router) RegisterRegistrationRoutes(h *RegistrationHandler) {
	r.Handle("POST /api/v1/teams/add-to-event", h.CreateTeamForEvent)
	r.Handle("DELETE /api/v1/teams/{id}", h.DeleteTeam)
	r.Handle("POST /api/v1/participants/{id}/allocate", h.AllocateRoom)
	r.Handle("DELETE /api/v1/participants/{id}/reservation", h.ReleaseReservation)
}

// RegisterRoomRoutes 房间管理
func (r *Router) RegisterRoomRoutes(h *RoomHandler) {
	r.Handle("POST /api/v1/rooms", h.CreateRoom)
	r.Handle("GET /api/v1/rooms/occupancy", h.ListOccupancy)
	r.Handle("GET /api/v1/rooms/roster.xlsx", h.ExportRoster)
	r.Handle("GET /api/v1/rooms/{id}/participants", h.ListParticipants)
}

// RegisterCatalogRoutes fest/event/college/club
func (r *Router) RegisterCatalogRoutes(h *CatalogHandler) {
	r.Handle("POST /api/v1/fests", h.CreateFest)
	r.Handle("GET /api/v1/fests/{id}", h.GetFest)

	r.Handle("POST /api/v1/events", h.CreateEvent)
	r.Handle("GET /api/v1/events", h.ListEvents)
	r.Handle("GET /api/v1/events/{id}", h.GetEvent)
	r.Handle("GET /api/v1/events/{id}/stats", h.GetEventStats)
	r.Handle("GET /api/v1/events/{id}/teams", h.ListEventTeams)
	r.Handle("GET /api/v1/teams/{id}/participants", h.ListTeamParticipants)

	r.Handle("POST /api/v1/colleges", h.CreateCollege)
	r.Handle("GET /api/v1/colleges/{id}", h.GetCollege)
	r.Handle("POST /api/v1/clubs", h.CreateClub)
	r.Handle("GET /api/v1/clubs/{id}", h.GetClub)
}
