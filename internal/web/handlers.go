package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rshade/qrbatch/internal/logging"
	"github.com/rshade/qrbatch/internal/pipeline"
	"github.com/rshade/qrbatch/internal/records"
	"github.com/rshade/qrbatch/internal/render"
	"github.com/rshade/qrbatch/internal/style"
)

// MsgNoFile is returned when a bulk request has no file part.
const MsgNoFile = pipeline.MsgNoFile

type qrRequest struct {
	Data  string       `json:"data"`
	Style style.Config `json:"style"`
	// Logo is base64 in JSON.
	Logo []byte `json:"logo,omitempty"`
	Size int    `json:"size,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
	Index  int    `json:"index,omitempty"`
	Name   string `json:"name,omitempty"`
	RunID  string `json:"run_id,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.opts.Version})
}

func (s *Server) handleQR(c *gin.Context) {
	req := qrRequest{Style: s.opts.Style}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request payload"})
		return
	}
	if req.Data == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "data is required"})
		return
	}

	st := req.Style.WithDefaults()
	st.Logo = req.Logo
	if req.Size > 0 {
		st.Width, st.Height = req.Size, req.Size
	}

	img, err := s.opts.SingleRenderer.Render(c.Request.Context(), render.Request{Data: req.Data, Style: st})
	if err != nil {
		c.JSON(renderStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, st.Format.ContentType(), img)
}

func (s *Server) handleBulk(c *gin.Context) {
	if !s.bulkMu.TryLock() {
		c.JSON(http.StatusConflict, errorResponse{Error: "a bulk run is already in progress"})
		return
	}
	defer s.bulkMu.Unlock()

	fh, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: MsgNoFile})
		return
	}

	st, err := s.formStyle(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	out := &pipeline.MemoryDeliverer{}
	p, err := pipeline.New(pipeline.Options{
		Concurrency:   s.opts.Concurrency,
		FailurePolicy: s.opts.FailurePolicy,
		Renderer:      s.opts.Renderer,
		Deliverer:     out,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	run, err := p.Execute(c.Request.Context(), pipeline.MultipartSource(fh), st)
	if err != nil {
		s.writeBulkError(c, run, err)
		return
	}

	name, data, _ := out.Delivered()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("X-QRBatch-Run-ID", run.ID)
	c.Header("X-QRBatch-Skipped", strconv.Itoa(len(run.Failures)))
	c.Data(http.StatusOK, "application/zip", data)
}

// formStyle overlays multipart style fields and the optional logo onto the
// server's base style.
func (s *Server) formStyle(c *gin.Context) (style.Config, error) {
	st := s.opts.Style
	for _, field := range style.Fields {
		v, ok := c.GetPostForm(field)
		if !ok || v == "" {
			continue
		}
		if err := st.Set(field, v); err != nil {
			return st, err
		}
	}

	logo, err := c.FormFile("logo")
	if errors.Is(err, http.ErrMissingFile) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	st.Logo, err = readPart(logo)
	if err != nil {
		return st, fmt.Errorf("reading logo: %w", err)
	}
	return st, nil
}

func (s *Server) writeBulkError(c *gin.Context, run *pipeline.Run, err error) {
	resp := errorResponse{Error: err.Error()}
	if run != nil {
		resp.Status = run.Status
		resp.RunID = run.ID
	}

	var renderErr *pipeline.RenderError
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, records.ErrEmptyInput):
		code = http.StatusUnprocessableEntity
		resp.Error = pipeline.StatusNoRecords
	case errors.As(err, &renderErr):
		code = http.StatusUnprocessableEntity
		resp.Index = renderErr.Index
		resp.Name = renderErr.Name
	case errors.Is(err, records.ErrUnsupportedFormat):
		code = http.StatusUnsupportedMediaType
	case isTooLarge(err):
		code = http.StatusRequestEntityTooLarge
	case c.Request.Context().Err() != nil:
		code = http.StatusServiceUnavailable
	}

	logging.FromContext(c.Request.Context()).Warn().Err(err).Int("status", code).Msg("bulk run rejected")
	c.JSON(code, resp)
}

func renderStatus(err error) int {
	switch {
	case errors.Is(err, style.ErrInvalidStyle), errors.Is(err, render.ErrLogo):
		return http.StatusBadRequest
	case errors.Is(err, render.ErrEncode), errors.Is(err, render.ErrCanvasTooSmall):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
