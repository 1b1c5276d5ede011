package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ciceromayk/parametrico/internal/budget"
	"github.com/ciceromayk/parametrico/internal/calc"
	"github.com/ciceromayk/parametrico/internal/export"
	"github.com/ciceromayk/parametrico/internal/session"
	"github.com/ciceromayk/parametrico/internal/store"
)

type projectView struct {
	Project *budget.Project `json:"project"`
	Summary calc.Summary    `json:"summary"`
	Dirty   bool            `json:"dirty"`
}

type referenceView struct {
	FloorTypes         []budget.FloorType     `json:"floor_types"`
	ConstructionStages []budget.Band          `json:"construction_stages"`
	IndirectCostItems  []budget.Band          `json:"indirect_cost_items"`
	SiteAdminItems     []budget.SiteAdminItem `json:"site_admin_items"`
}

type floorsRequest struct {
	Floors []budget.Floor `json:"floors"`
}

type percentageRequest struct {
	Name       string   `json:"name"`
	Percentage *float64 `json:"percentage"`
}

type referenceRequest struct {
	ArchiveID int    `json:"archive_id"`
	Item      string `json:"item"`
}

type siteAdminRequest struct {
	Monthly            map[string]float64 `json:"monthly"`
	ConstructionMonths int                `json:"construction_months"`
}

type fixedIndirectRequest struct {
	Costs map[string]float64 `json:"costs"`
}

type stagesResponse struct {
	Stages        budget.PercentageSet `json:"stages"`
	Redistributed bool                 `json:"redistributed"`
}

type indirectResponse struct {
	Indirect budget.PercentageSet `json:"indirect"`
}

func (h *handler) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.version})
}

func (h *handler) handleReference(c *gin.Context) {
	c.JSON(http.StatusOK, referenceView{
		FloorTypes:         budget.FloorTypes,
		ConstructionStages: budget.ConstructionStages,
		IndirectCostItems:  budget.IndirectCostItems,
		SiteAdminItems:     budget.SiteAdminItems,
	})
}

func (h *handler) handleListProjects(c *gin.Context) {
	projects, err := h.manager.List()
	if err != nil {
		h.respondError(c, "server.handleListProjects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *handler) handleCreateProject(c *gin.Context) {
	var input budget.ProjectInput
	if !h.bind(c, &input) {
		return
	}
	s, err := h.manager.Create(input)
	if err != nil {
		h.respondError(c, "server.handleCreateProject", err)
		return
	}
	h.writeView(c, http.StatusCreated, "server.handleCreateProject", s)
}

func (h *handler) handleDeleteProject(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	if err := h.manager.Delete(id); err != nil {
		h.respondError(c, "server.handleDeleteProject", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) handleOpenProject(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	s, err := h.manager.Open(id)
	if err != nil {
		h.respondError(c, "server.handleOpenProject", err)
		return
	}
	h.writeView(c, http.StatusOK, "server.handleOpenProject", s)
}

func (h *handler) handleGetProject(c *gin.Context) {
	s, ok := h.openSession(c, "server.handleGetProject")
	if !ok {
		return
	}
	h.writeView(c, http.StatusOK, "server.handleGetProject", s)
}

func (h *handler) handleSaveProject(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	if _, err := h.manager.Save(id); err != nil {
		h.respondError(c, "server.handleSaveProject", err)
		return
	}
	s, err := h.manager.Get(id)
	if err != nil {
		h.respondError(c, "server.handleSaveProject", err)
		return
	}
	h.writeView(c, http.StatusOK, "server.handleSaveProject", s)
}

func (h *handler) handleDiscardProject(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	if err := h.manager.Discard(id); err != nil {
		h.respondError(c, "server.handleDiscardProject", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) handleUpdateInfo(c *gin.Context) {
	s, ok := h.openSession(c, "server.handleUpdateInfo")
	if !ok {
		return
	}
	var input budget.ProjectInput
	if !h.bind(c, &input) {
		return
	}
	if err := s.UpdateInfo(input); err != nil {
		h.respondError(c, "server.handleUpdateInfo", err)
		return
	}
	h.writeView(c, http.StatusOK, "server.handleUpdateInfo", s)
}

func (h *handler) handleSetFloors(c *gin.Context) {
	s, ok := h.openSession(c, "server.handleSetFloors")
	if !ok {
		return
	}
	var req floorsRequest
	if !h.bind(c, &req) {
		return
	}
	if _, err := s.SetFloors(req.Floors); err != nil {
		h.respondError(c, "server.handleSetFloors", err)
		return
	}
	h.writeView(c, http.StatusOK, "server.handleSetFloors", s)
}

func (h *handler) handleAddFloor(c *gin.Context) {
	s, ok := h.openSession(c, "server.handleAddFloor")
	if !ok {
		return
	}
	s.AddFloor()
	h.writeView(c, http.StatusOK, "server.handleAddFloor", s)
}

func (h *handler) handleRemoveLastFloor(c *gin.Context) {
	s, ok := h.openSession(c, "server.handleRemoveLastFloor")
	if !ok {
		return
	}
	s.RemoveLastFloor()
	h.writeView(c, http.StatusOK, "server.handleRemoveLastFloor", s)
}

func (h *handler) handleSetStage(c *gin.Context) {
	s, ok := h.openSession(c, "server.handleSetStage")
	if !ok {
		return
	}
	var req percentageRequest
	if !h.bind(c, &req) {
		return
	}
	if req.Percentage == nil {
		h.badRequest(c, "percentage is required")
		return
	}
	stages, redistributed, err := s.SetStagePercentage(req.Name, *req.Percentage)
	if err != nil {
		h.respondError(c, "server.handleSetStage", err)
		return
	}
	c.JSON(http.StatusOK, stagesResponse{Stages: stages, Redistributed: redistributed})
}

func (h *handler) handleApplyStageReference(c *gin.Context) {
	s, ok := h.openSession(c, "server.handleApplyStageReference")
	if !ok {
		return
	}
	var req referenceRequest
	if !h.bind(c, &req) {
		return
	}
	entry, err := h.manager.Reference(store.CategoryStages, req.ArchiveID)
	if err != nil {
		h.respondError(c, "server.handleApplyStageReference", err)
		return
	}
	stages, redistributed, err := s.ApplyStageReference(req.Item, entry)
	if err != nil {
		h.respondError(c, "server.handleApplyStageReference", err)
		return
	}
	c.JSON(http.StatusOK, stagesResponse{Stages: stages, Redistributed: redistributed})
}

func (h *handler) handleSetIndirect(c *gin.Context) {
	s, ok := h.openSession(c, "server.handleSetIndirect")
	if !ok {
		return
	}
	var req percentageRequest
	if !h.bind(c, &req) {
		return
	}
	if req.Percentage == nil {
		h.badRequest(c, "percentage is required")
		return
	}
	set, err := s.SetIndirectPercentage(req.Name, *req.Percentage)
	if err != nil {
		h.respondError(c, "server.handleSetIndirect", err)
		return
	}
	c.JSON(http.StatusOK, indirectResponse{Indirect: set})
}

func (h *handler) handleApplyIndirectReference(c *gin.Context) {
	s, ok := h.openSession(c, "server.handleApplyIndirectReference")
	if !ok {
		return
	}
	var req referenceRequest
	if !h.bind(c, &req) {
		return
	}
	entry, err := h.manager.Reference(store.CategoryIndirect, req.ArchiveID)
	if err != nil {
		h.respondError(c, "server.handleApplyIndirectReference", err)
		return
	}
	set, err := s.ApplyIndirectReference(req.Item, entry)
	if err != nil {
		h.respondError(c, "server.handleApplyIndirectReference", err)
		return
	}
	c.JSON(http.StatusOK, indirectResponse{Indirect: set})
}

func (h *handler) handleSetSiteAdmin(c *gin.Context) {
	s, ok := h.openSession(c, "server.handleSetSiteAdmin")
	if !ok {
		return
	}
	var req siteAdminRequest
	if !h.bind(c, &req) {
		return
	}
	if err := s.SetSiteAdmin(req.Monthly, req.ConstructionMonths); err != nil {
		h.respondError(c, "server.handleSetSiteAdmin", err)
		return
	}
	h.writeView(c, http.StatusOK, "server.handleSetSiteAdmin", s)
}

func (h *handler) handleSetFixedIndirect(c *gin.Context) {
	s, ok := h.openSession(c, "server.handleSetFixedIndirect")
	if !ok {
		return
	}
	var req fixedIndirectRequest
	if !h.bind(c, &req) {
		return
	}
	if err := s.SetFixedIndirect(req.Costs); err != nil {
		h.respondError(c, "server.handleSetFixedIndirect", err)
		return
	}
	h.writeView(c, http.StatusOK, "server.handleSetFixedIndirect", s)
}

func (h *handler) handleListArchive(c *gin.Context) {
	archive, err := h.manager.Archive(c.Param("category"))
	if err != nil {
		h.respondError(c, "server.handleListArchive", err)
		return
	}
	entries, err := archive.List()
	if err != nil {
		h.respondError(c, "server.handleListArchive", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *handler) handleArchive(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}

	var (
		entry store.Entry
		err   error
	)
	switch category := c.Param("category"); category {
	case store.CategoryStages:
		entry, err = h.manager.ArchiveStages(id)
	case store.CategoryIndirect:
		entry, err = h.manager.ArchiveIndirect(id)
	default:
		_, err = h.manager.Archive(category)
	}
	if err != nil {
		h.respondError(c, "server.handleArchive", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *handler) handleExport(c *gin.Context) {
	s, ok := h.openSession(c, "server.handleExport")
	if !ok {
		return
	}

	p := s.Project()
	report, err := export.NewReport(p)
	if err != nil {
		h.respondError(c, "server.handleExport", err)
		return
	}
	format := c.Param("format")
	data, contentType, err := export.Render(format, report)
	if err != nil {
		h.respondError(c, "server.handleExport", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.FileName("orcamento", p, format)+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func (h *handler) writeView(c *gin.Context, status int, op string, s *session.Session) {
	summary, err := s.Summary()
	if err != nil {
		h.respondError(c, op, err)
		return
	}
	c.JSON(status, projectView{Project: s.Project(), Summary: summary, Dirty: s.Dirty()})
}
