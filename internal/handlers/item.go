package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bytecrate/itemgraph/internal/item"
	"github.com/bytecrate/itemgraph/internal/platform/logger"
	"github.com/bytecrate/itemgraph/internal/requestdata"
	"github.com/bytecrate/itemgraph/internal/services"
)

type ItemHandler struct {
	log         *logger.Logger
	itemService services.ItemService
}

func NewItemHandler(log *logger.Logger, itemService services.ItemService) *ItemHandler {
	return &ItemHandler{
		log:         log.With("handler", "ItemHandler"),
		itemService: itemService,
	}
}

type createItemRequest struct {
	TypeSlug   string         `json:"type_slug"`
	Attributes map[string]any `json:"attributes"`
}

type updateItemRequest struct {
	Attributes map[string]any `json:"attributes"`
}

func (h *ItemHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "missing_tenant", nil)
		return
	}
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	it, err := h.itemService.CreateItem(c.Request.Context(), rd.TenantID, req.TypeSlug, req.Attributes)
	if errors.Is(err, item.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": it.Errors()})
		return
	}
	if err != nil {
		h.log.Error("CreateItem failed", "error", err, "tenant_id", rd.TenantID, "type_slug", req.TypeSlug)
		RespondError(c, http.StatusInternalServerError, "create_item_failed", err)
		return
	}
	RespondOK(c, gin.H{"item": it.Row()})
}

func (h *ItemHandler) Update(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "missing_tenant", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	it, err := h.itemService.UpdateItem(c.Request.Context(), rd.TenantID, id, req.Attributes)
	if errors.Is(err, item.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "item_not_found", err)
		return
	}
	if errors.Is(err, item.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": it.Errors()})
		return
	}
	if err != nil {
		h.log.Error("UpdateItem failed", "error", err, "tenant_id", rd.TenantID, "item_id", id)
		RespondError(c, http.StatusInternalServerError, "update_item_failed", err)
		return
	}
	RespondOK(c, gin.H{"item": it.Row()})
}

func (h *ItemHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "missing_tenant", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}

	row, err := h.itemService.GetItem(c.Request.Context(), rd.TenantID, id)
	if errors.Is(err, item.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "item_not_found", err)
		return
	}
	if err != nil {
		h.log.Error("GetItem failed", "error", err, "tenant_id", rd.TenantID, "item_id", id)
		RespondError(c, http.StatusInternalServerError, "load_item_failed", err)
		return
	}
	RespondOK(c, gin.H{"item": row})
}

func (h *ItemHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "missing_tenant", nil)
		return
	}
	typeSlug := c.Query("type")
	if typeSlug == "" {
		RespondError(c, http.StatusBadRequest, "missing_type", nil)
		return
	}

	rows, err := h.itemService.ListItems(c.Request.Context(), rd.TenantID, typeSlug)
	if err != nil {
		h.log.Error("ListItems failed", "error", err, "tenant_id", rd.TenantID, "type_slug", typeSlug)
		RespondError(c, http.StatusInternalServerError, "load_items_failed", err)
		return
	}
	RespondOK(c, gin.H{"items": rows})
}

func (h *ItemHandler) ListLinked(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "missing_tenant", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}
	relation := c.Param("relation")

	rows, err := h.itemService.ListLinked(c.Request.Context(), rd.TenantID, id, relation)
	if errors.Is(err, item.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "item_not_found", err)
		return
	}
	if err != nil {
		h.log.Error("ListLinked failed", "error", err, "tenant_id", rd.TenantID, "item_id", id, "relation", relation)
		RespondError(c, http.StatusInternalServerError, "load_links_failed", err)
		return
	}
	RespondOK(c, gin.H{"items": rows})
}

func (h *ItemHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "missing_tenant", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}

	err = h.itemService.SoftDeleteItem(c.Request.Context(), rd.TenantID, id)
	if errors.Is(err, item.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "item_not_found", err)
		return
	}
	if err != nil {
		h.log.Error("SoftDeleteItem failed", "error", err, "tenant_id", rd.TenantID, "item_id", id)
		RespondError(c, http.StatusInternalServerError, "delete_item_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *ItemHandler) Restore(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "missing_tenant", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}

	err = h.itemService.RestoreItem(c.Request.Context(), rd.TenantID, id)
	if errors.Is(err, item.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "item_not_found", err)
		return
	}
	if err != nil {
		h.log.Error("RestoreItem failed", "error", err, "tenant_id", rd.TenantID, "item_id", id)
		RespondError(c, http.StatusInternalServerError, "restore_item_failed", err)
		return
	}
	RespondOK(c, gin.H{"restored": true})
}
