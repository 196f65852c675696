package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-catalog-api/internal/application"
	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/helpers"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/response"
)

const maxImageBytes = 5 << 20

// DocumentHandler serves one catalog collection.
type DocumentHandler struct {
	Svc        *application.DocumentService
	Collection string
	Logger     *logrus.Logger
}

func NewDocumentHandler(svc *application.DocumentService, collection string, logger *logrus.Logger) *DocumentHandler {
	return &DocumentHandler{Svc: svc, Collection: collection, Logger: logger}
}

func views(docs []*entity.Document) []map[string]any {
	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.View())
	}
	return out
}

// decodeBodies accepts a single JSON object or an array of objects.
func decodeBodies(raw []byte) ([]map[string]any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}, nil
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, application.ErrInvalidDocument
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, application.ErrInvalidDocument
}

func (h *DocumentHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, application.ErrDocumentNotFound):
		response.Error[any](c, http.StatusNotFound, "Document not found", nil)
	case errors.Is(err, application.ErrInvalidDocument):
		response.Error[any](c, http.StatusBadRequest, "invalid document", nil)
	case errors.Is(err, application.ErrFeatureDisabled):
		response.Error[any](c, http.StatusServiceUnavailable, "image storage is not configured", nil)
	default:
		helpers.LogError(h.Logger, op+" failed", err, logrus.Fields{"collection": h.Collection})
		response.Error[any](c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// Create POST /api/{collection}
func (h *DocumentHandler) Create(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	bodies, err := decodeBodies(raw)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"payload": "expected a JSON object or array of objects"})
		return
	}
	docs, err := h.Svc.Create(c.Request.Context(), h.Collection, bodies)
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	response.Success(c, http.StatusCreated, views(docs), "created", gin.H{"count": len(docs)})
}

// List GET /api/{collection}
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context(), h.Collection)
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	response.Success(c, http.StatusOK, views(docs), "ok", gin.H{"count": len(docs)})
}

// Search GET /api/{collection}/search?q=&size=
func (h *DocumentHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.SearchDocuments(c.Request.Context(), h.Collection, c.Query("q"), size)
	if err != nil {
		h.fail(c, "search", err)
		return
	}
	response.Success(c, http.StatusOK, hits, "ok", gin.H{"count": len(hits)})
}

// Get GET /api/{collection}/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	d, err := h.Svc.Get(c.Request.Context(), h.Collection, c.Param("id"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	response.Success(c, http.StatusOK, d.View(), "ok", nil)
}

// Update PUT /api/{collection}/:id merges the body into the stored document.
func (h *DocumentHandler) Update(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"payload": "expected a JSON object"})
		return
	}
	d, err := h.Svc.Update(c.Request.Context(), h.Collection, c.Param("id"), patch)
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	response.Success(c, http.StatusOK, d.View(), "updated", nil)
}

// Delete DELETE /api/{collection}/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), h.Collection, c.Param("id")); err != nil {
		h.fail(c, "delete", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"_id": c.Param("id")}, "deleted", nil)
}

// DeleteAll DELETE /api/{collection}
func (h *DocumentHandler) DeleteAll(c *gin.Context) {
	n, err := h.Svc.DeleteAll(c.Request.Context(), h.Collection)
	if err != nil {
		h.fail(c, "delete all", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": n}, "deleted", nil)
}

// UploadImage POST /api/{collection}/:id/image (multipart field "file")
func (h *DocumentHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", nil)
		return
	}
	if fh.Size > maxImageBytes {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer f.Close()

	d, err := h.Svc.UploadImage(c.Request.Context(), h.Collection, c.Param("id"), f, fh.Filename, ct)
	if err != nil {
		h.fail(c, "upload image", err)
		return
	}
	response.Success(c, http.StatusOK, d.View(), "image uploaded", nil)
}
