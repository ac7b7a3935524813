package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bytecrate/itemgraph/internal/platform/logger"
	"github.com/bytecrate/itemgraph/internal/requestdata"
	"github.com/bytecrate/itemgraph/internal/schema"
	"github.com/bytecrate/itemgraph/internal/services"
)

type SchemaHandler struct {
	log           *logger.Logger
	schemaService services.SchemaService
}

func NewSchemaHandler(log *logger.Logger, schemaService services.SchemaService) *SchemaHandler {
	return &SchemaHandler{
		log:           log.With("handler", "SchemaHandler"),
		schemaService: schemaService,
	}
}

func (h *SchemaHandler) Put(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "missing_tenant", nil)
		return
	}
	var in services.SchemaInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	in.Slug = c.Param("slug")

	row, err := h.schemaService.PutSchema(c.Request.Context(), rd.TenantID, in)
	if err != nil {
		status := schemaCode(err)
		if status == http.StatusInternalServerError {
			h.log.Error("PutSchema failed", "error", err, "tenant_id", rd.TenantID, "slug", in.Slug)
		}
		RespondError(c, status, "put_schema_failed", err)
		return
	}
	RespondOK(c, gin.H{"schema": row})
}

func (h *SchemaHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "missing_tenant", nil)
		return
	}

	row, err := h.schemaService.GetSchema(c.Request.Context(), rd.TenantID, c.Param("slug"))
	if err != nil {
		RespondError(c, schemaCode(err), "load_schema_failed", err)
		return
	}
	RespondOK(c, gin.H{"schema": row})
}

func (h *SchemaHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "missing_tenant", nil)
		return
	}

	rows, err := h.schemaService.ListSchemas(c.Request.Context(), rd.TenantID)
	if err != nil {
		h.log.Error("ListSchemas failed", "error", err, "tenant_id", rd.TenantID)
		RespondError(c, http.StatusInternalServerError, "load_schemas_failed", err)
		return
	}
	RespondOK(c, gin.H{"schemas": rows})
}

func (h *SchemaHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "missing_tenant", nil)
		return
	}

	if err := h.schemaService.DeleteSchema(c.Request.Context(), rd.TenantID, c.Param("slug")); err != nil {
		RespondError(c, schemaCode(err), "delete_schema_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// schemaCode distinguishes "not found" schema errors for status mapping.
func schemaCode(err error) int {
	if errors.Is(err, schema.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, schema.ErrFormat) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
