package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thywilljoshua/matchgame/internal/apperr"
	"github.com/thywilljoshua/matchgame/internal/extract"
)

// handleUpload accepts a multipart "file", extracts its text and answers with
// the generated scene and statements.
func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes+multipartOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			handleError(c, apperr.New(http.StatusRequestEntityTooLarge, "File too large", fmt.Errorf("%w: %v", apperr.ErrTooLarge, err)))
			return
		}
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			handleError(c, apperr.Rejected("No file part"))
			return
		}
		handleError(c, apperr.New(http.StatusBadRequest, "Invalid upload", fmt.Errorf("%w: %v", apperr.ErrInputRejected, err)))
		return
	}
	if fh.Filename == "" {
		handleError(c, apperr.Rejected("No selected file"))
		return
	}
	if !extract.Allowed(fh.Filename, s.cfg.AllowedExtensions) {
		handleError(c, apperr.Rejected(invalidTypeMessage(s.cfg.AllowedExtensions)))
		return
	}
	if fh.Size > s.cfg.MaxUploadBytes {
		handleError(c, apperr.New(http.StatusRequestEntityTooLarge, "File too large", apperr.ErrTooLarge))
		return
	}

	data, err := readUpload(fh)
	if err != nil {
		s.fail(c, "read upload", err)
		return
	}
	// The saved copy is an archive only; nothing reads it back.
	path := filepath.Join(s.cfg.UploadDir, uuid.NewString()+"_"+secureFilename(fh.Filename))
	if err := c.SaveUploadedFile(fh, path); err != nil {
		s.fail(c, "save upload", err)
		return
	}

	text, err := extract.Text(fh.Filename, data)
	if err != nil {
		s.log.Warn("text extraction failed", "file", fh.Filename, "error", err)
	}
	if strings.TrimSpace(text) == "" {
		handleError(c, apperr.ErrExtractionEmpty)
		return
	}
	s.log.Info("extracted document text", "file", fh.Filename, "chars", len(text))

	g, err := s.game.Play(c.Request.Context(), text)
	if err != nil {
		s.fail(c, "generate game", err)
		return
	}
	resp, err := g.Response()
	if err != nil {
		s.fail(c, "encode response", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) fail(c *gin.Context, stage string, err error) {
	if errors.Is(err, context.Canceled) {
		s.log.Info("client went away", "stage", stage, "path", c.Request.URL.Path)
		c.AbortWithStatus(apperr.StatusClientClosedRequest)
		return
	}
	s.log.Error("upload processing failed", "stage", stage, "path", c.Request.URL.Path, "error", err)
	handleError(c, err)
}

func handleError(c *gin.Context, err error) {
	appErr := apperr.MapError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}

// multipartOverhead leaves room for boundaries and part headers on top of the
// file size limit.
const multipartOverhead = 64 << 10

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func invalidTypeMessage(exts []string) string {
	list := make([]string, len(exts))
	for i, e := range exts {
		list[i] = "." + strings.TrimPrefix(strings.ToLower(e), ".")
	}
	return fmt.Sprintf("Invalid file type. Only %s files are allowed.", strings.Join(list, ", "))
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// secureFilename keeps only the base name with a conservative character set.
func secureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeName.ReplaceAllString(strings.ReplaceAll(name, " ", "_"), "")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "upload"
	}
	return name
}
