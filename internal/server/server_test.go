package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thywilljoshua/matchgame/internal/ai"
	"github.com/thywilljoshua/matchgame/internal/apperr"
	"github.com/thywilljoshua/matchgame/internal/config"
	"github.com/thywilljoshua/matchgame/internal/game"
	"github.com/thywilljoshua/matchgame/internal/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingPlayer struct{}

func (failingPlayer) Play(ctx context.Context, text string) (*game.Game, error) {
	return nil, errors.New("layout exploded")
}

type recordingPlayer struct {
	text string
	next Player
}

func (r *recordingPlayer) Play(ctx context.Context, text string) (*game.Game, error) {
	r.text = text
	return r.next.Play(ctx, text)
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.UploadDir = filepath.Join(t.TempDir(), "uploads")
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config, p Player) *Server {
	t.Helper()
	if p == nil {
		p = game.NewService(ai.Noop{}, nil, game.Options{Seed: 1})
	}
	srv, err := NewServer(cfg, p, nil)
	require.NoError(t, err)
	return srv
}

func docx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func uploadRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, testConfig(t), nil)
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadSuccess(t *testing.T) {
	cfg := testConfig(t)
	rec := &recordingPlayer{next: game.NewService(ai.Noop{}, nil, game.Options{Seed: 1})}
	srv := newTestServer(t, cfg, rec)

	w := serve(srv, uploadRequest(t, "file", "aws logging.docx", docx(t, "CloudWatch Logs", "stores logs")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CloudWatch Logs\nstores logs", rec.text)

	var resp game.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, game.DefaultNarrative(), resp.Statements)

	var scene struct {
		Cells []map[string]any `json:"cells"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.JSON), &scene))
	assert.Len(t, scene.Cells, 1+3*len(game.DefaultPairs()))

	saved, err := filepath.Glob(filepath.Join(cfg.UploadDir, "*_aws_logging.docx"))
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestUploadsWithSameNameAreKeptApart(t *testing.T) {
	cfg := testConfig(t)
	rec := &recordingPlayer{next: game.NewService(ai.Noop{}, nil, game.Options{Seed: 1})}
	srv := newTestServer(t, cfg, rec)

	w := serve(srv, uploadRequest(t, "file", "notes.docx", docx(t, "first upload")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "first upload", rec.text)

	w = serve(srv, uploadRequest(t, "file", "notes.docx", docx(t, "second upload")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "second upload", rec.text)

	saved, err := filepath.Glob(filepath.Join(cfg.UploadDir, "*_notes.docx"))
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestUploadRejections(t *testing.T) {
	srv := newTestServer(t, testConfig(t), nil)

	t.Run("no file part", func(t *testing.T) {
		w := serve(srv, uploadRequest(t, "other", "a.docx", []byte("x")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No file part", errorBody(t, w))
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		w := serve(srv, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No file part", errorBody(t, w))
	})

	t.Run("wrong extension", func(t *testing.T) {
		w := serve(srv, uploadRequest(t, "file", "notes.pdf", []byte("%PDF-1.4")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid file type. Only .docx files are allowed.", errorBody(t, w))
	})

	t.Run("unreadable docx", func(t *testing.T) {
		w := serve(srv, uploadRequest(t, "file", "broken.docx", []byte("not a zip")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorBody(t, w), "Could not extract any text")
	})

	t.Run("empty docx", func(t *testing.T) {
		w := serve(srv, uploadRequest(t, "file", "empty.docx", docx(t, "   ")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorBody(t, w), "Could not extract any text")
	})
}

func TestUploadTooLarge(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxUploadBytes = 64
	srv := newTestServer(t, cfg, nil)

	w := serve(srv, uploadRequest(t, "file", "big.docx", bytes.Repeat([]byte("a"), 1024)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func TestUploadTooLargeStopsReading(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxUploadBytes = 64
	srv := newTestServer(t, cfg, nil)

	big := uploadRequest(t, "file", "big.docx", bytes.Repeat([]byte("a"), 8<<20))
	body := &countingReader{r: big.Body}
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", big.Header.Get("Content-Type"))

	w := serve(srv, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "File too large", errorBody(t, w))
	assert.LessOrEqual(t, body.n, cfg.MaxUploadBytes+multipartOverhead+1)

	entries, err := os.ReadDir(cfg.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type canceledPlayer struct{}

func (canceledPlayer) Play(ctx context.Context, text string) (*game.Game, error) {
	return nil, context.Canceled
}

func TestUploadClientCanceled(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	srv, err := NewServer(testConfig(t), canceledPlayer{}, log)
	require.NoError(t, err)

	w := serve(srv, uploadRequest(t, "file", "a.docx", docx(t, "S3")))
	assert.Equal(t, apperr.StatusClientClosedRequest, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("client went away").Len())
}

func TestUploadUnexpectedFailure(t *testing.T) {
	srv := newTestServer(t, testConfig(t), failingPlayer{})

	w := serve(srv, uploadRequest(t, "file", "a.docx", docx(t, "S3")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, errorBody(t, w), "layout exploded")
}

func TestSecureFilename(t *testing.T) {
	assert.Equal(t, "report.docx", secureFilename("report.docx"))
	assert.Equal(t, "passwd", secureFilename("../../etc/passwd"))
	assert.Equal(t, "evil.docx", secureFilename(`C:\temp\evil.docx`))
	assert.Equal(t, "my_file.docx", secureFilename("my file.docx"))
	assert.Equal(t, "upload", secureFilename("..."))
}

func TestInvalidTypeMessage(t *testing.T) {
	assert.Equal(t, "Invalid file type. Only .docx, .pdf files are allowed.", invalidTypeMessage([]string{"docx", ".PDF"}))
}
