package procedures

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"procedure-backend/internal/shared/server/middleware"
	"procedure-backend/internal/shared/server/respond"
)

// multipart framing allowance on top of the file size limit
const formOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches procedure routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/procedures", h.submit)
	rg.POST("/procedures/analyze", h.preview)
	rg.GET("/procedures", h.list)
	rg.GET("/procedures/:id", h.get)
	rg.GET("/procedures/:id/file", h.download)
}

func viewerFrom(c *gin.Context) Viewer {
	return Viewer{
		ID:   middleware.UserIDFromContext(c),
		Role: middleware.UserRoleFromContext(c),
	}
}

func (h *Handler) submit(c *gin.Context) {
	upload, ok := h.readUpload(c)
	if !ok {
		return
	}

	p, err := h.Svc.Submit(c.Request.Context(), SubmitInput{
		Owner:      viewerFrom(c),
		Title:      c.PostForm("title"),
		Department: c.PostForm("department"),
		FileName:   upload.fileName,
		MimeType:   upload.mimeType,
		Data:       upload.data,
		RequestID:  middleware.RequestIDFromContext(c),
	})

	var rejected *RejectedError
	switch {
	case errors.As(err, &rejected):
		c.Set(middleware.ProcedureIDKey, rejected.Procedure.ID)
		c.Set(middleware.QualityKey, rejected.Procedure.Score)
		respond.Error(c, http.StatusUnprocessableEntity, "quality_below_minimum", rejected.Error(), gin.H{
			"minimumScore": rejected.MinScore,
			"procedure":    toResponse(rejected.Procedure),
		})
		return
	case err != nil:
		h.writeError(c, err)
		return
	}

	c.Set(middleware.ProcedureIDKey, p.ID)
	c.Set(middleware.QualityKey, p.Score)
	respond.Created(c, c.Request.URL.Path+"/"+p.ID, toResponse(p))
}

func (h *Handler) preview(c *gin.Context) {
	upload, ok := h.readUpload(c)
	if !ok {
		return
	}
	res, err := h.Svc.Preview(c.Request.Context(), PreviewInput{
		FileName: upload.fileName,
		MimeType: upload.mimeType,
		Data:     upload.data,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(middleware.QualityKey, res.Score)
	respond.OK(c, gin.H{
		"analysis":     res,
		"minimumScore": h.Svc.MinScore(),
		"accepted":     res.Accepted(h.Svc.MinScore()),
	})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), viewerFrom(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(middleware.ProcedureIDKey, p.ID)
	respond.OK(c, toResponse(p))
}

func (h *Handler) download(c *gin.Context) {
	p, rc, err := h.Svc.OpenFile(c.Request.Context(), viewerFrom(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer rc.Close()
	c.Set(middleware.ProcedureIDKey, p.ID)
	respond.Attachment(c, p.FileName, p.MimeType, p.SizeBytes, rc)
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	status := Status(c.Query("status"))
	if status != "" && status != StatusAccepted && status != StatusRejected {
		respond.Error(c, http.StatusBadRequest, "validation_error", "status must be accepted or rejected", nil)
		return
	}

	items, err := h.Svc.List(c.Request.Context(), viewerFrom(c), Filter{
		Department: c.Query("department"),
		Status:     status,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]procedureSummary, 0, len(items))
	for _, p := range items {
		resp = append(resp, toSummary(p))
	}
	respond.List(c, resp, limit, offset)
}

type upload struct {
	fileName string
	mimeType string
	data     []byte
}

func (h *Handler) readUpload(c *gin.Context) (upload, bool) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+formOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", ErrTooLarge.Error(), gin.H{"maxBytes": h.MaxUploadBytes})
			return upload{}, false
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return upload{}, false
	}
	if h.MaxUploadBytes > 0 && fileHeader.Size > h.MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", ErrTooLarge.Error(), gin.H{"maxBytes": h.MaxUploadBytes})
		return upload{}, false
	}

	data, err := readFile(fileHeader)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return upload{}, false
	}
	return upload{
		fileName: fileHeader.Filename,
		mimeType: fileHeader.Header.Get("Content-Type"),
		data:     data,
	}, true
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), gin.H{"maxBytes": h.MaxUploadBytes})
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "procedure not found", nil)
	case c.Request.Context().Err() != nil:
		respond.Error(c, http.StatusRequestTimeout, "canceled", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "procedure request failed", nil)
	}
}
