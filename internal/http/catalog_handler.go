package httpapi

import (
	"net/http"

	"festflow/internal/domain"
	"festflow/internal/service"

	"go.uber.org/zap"
)

// CatalogHandler fest/event/college/club 直通接口
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

func NewCatalogHandler(catalog service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// create 解析请求体 -> 调用 -> 201
func create[Req any, Resp any](h *CatalogHandler, w http.ResponseWriter, r *http.Request, fn func(*http.Request, Req) (Resp, error)) {
	var req Req
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := fn(r, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

// get 读取路径 id -> 调用 -> 200
func get[Resp any](h *CatalogHandler, w http.ResponseWriter, r *http.Request, fn func(*http.Request, string) (Resp, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := fn(r, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *CatalogHandler) CreateFest(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, func(r *http.Request, req service.CreateFestRequest) (*service.FestView, error) {
		return h.catalog.CreateFest(r.Context(), req)
	})
}

func (h *CatalogHandler) GetFest(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, func(r *http.Request, id string) (*service.FestView, error) {
		return h.catalog.GetFest(r.Context(), id)
	})
}

func (h *CatalogHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, func(r *http.Request, req service.CreateEventRequest) (*service.EventView, error) {
		return h.catalog.CreateEvent(r.Context(), req)
	})
}

func (h *CatalogHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, func(r *http.Request, id string) (*service.EventView, error) {
		return h.catalog.GetEvent(r.Context(), id)
	})
}

func (h *CatalogHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.catalog.ListEvents(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(events))
}

func (h *CatalogHandler) GetEventStats(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, func(r *http.Request, id string) (*domain.EventStats, error) {
		return h.catalog.GetEventStats(r.Context(), id)
	})
}

func (h *CatalogHandler) ListEventTeams(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, func(r *http.Request, id string) ([]service.TeamView, error) {
		return h.catalog.ListEventTeams(r.Context(), id)
	})
}

func (h *CatalogHandler) ListTeamParticipants(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, func(r *http.Request, id string) ([]service.ParticipantView, error) {
		return h.catalog.ListTeamParticipants(r.Context(), id)
	})
}

func (h *CatalogHandler) CreateCollege(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, func(r *http.Request, req service.CreateCollegeRequest) (*service.CollegeView, error) {
		return h.catalog.CreateCollege(r.Context(), req)
	})
}

func (h *CatalogHandler) GetCollege(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, func(r *http.Request, id string) (*service.CollegeView, error) {
		return h.catalog.GetCollege(r.Context(), id)
	})
}

func (h *CatalogHandler) CreateClub(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, func(r *http.Request, req service.CreateClubRequest) (*service.ClubView, error) {
		return h.catalog.CreateClub(r.Context(), req)
	})
}

func (h *CatalogHandler) GetClub(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, func(r *http.Request, id string) (*service.ClubView, error) {
		return h.catalog.GetClub(r.Context(), id)
	})
}
