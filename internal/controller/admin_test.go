package controller

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryabkov/filegallery/internal/models"
	"github.com/ryabkov/filegallery/internal/storage"
	"github.com/ryabkov/filegallery/internal/util"
)

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadFiles(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, map[string]string{
		"cat.png": "png-bytes",
		"read me": "text-bytes",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/files/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	require.NoError(t, env.controller.UploadFiles(env.echo.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	files, err := env.storage.ListFiles(context.Background(), true, 0)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	env := newTestEnv(t)
	env.controller.uploadConfig = &util.UploadConfig{MaxUploadBytes: 4}

	body, contentType := multipartBody(t, map[string]string{
		"big.bin": "way more than four bytes",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/files/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	err := env.controller.UploadFiles(env.echo.NewContext(req, rec))

	var responseErr util.ResponseError
	require.ErrorAs(t, err, &responseErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, responseErr.Status)

	files, listErr := env.storage.ListFiles(context.Background(), true, 0)
	require.NoError(t, listErr)
	assert.Empty(t, files)
}

func TestUploadRejectsEmptyBatch(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/files/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	err := env.controller.UploadFiles(env.echo.NewContext(req, rec))

	var responseErr util.ResponseError
	require.ErrorAs(t, err, &responseErr)
	assert.Equal(t, http.StatusBadRequest, responseErr.Status)
}

func TestUpdateFileRequiresBothFields(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.storage.CreateFile(context.Background(), models.File{
		ID:        "f1",
		CreatedAt: time.Now().UTC(),
	}))

	cases := map[string]string{
		"missing description": `{"title":"New title"}`,
		"missing title":       `{"description":"New description"}`,
		"empty body":          `{}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/api/admin/files/f1", strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			ctx := env.echo.NewContext(req, rec)
			ctx.SetParamNames("id")
			ctx.SetParamValues("f1")

			err := env.controller.UpdateFile(ctx)

			var responseErr util.ResponseError
			require.ErrorAs(t, err, &responseErr)
			assert.Equal(t, http.StatusBadRequest, responseErr.Status)
		})
	}
}

func TestUpdateFileRenames(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.storage.CreateFile(context.Background(), models.File{
		ID:        "f1",
		Title:     "old",
		CreatedAt: time.Now().UTC(),
	}))

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/files/f1",
		strings.NewReader(`{"title":"New title","description":"New description"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := env.echo.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("f1")

	require.NoError(t, env.controller.UpdateFile(ctx))

	file, err := env.storage.GetFile(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "New title", file.Title)
	assert.Equal(t, "New description", file.Description)
}

func TestHideAndRestoreEndpoints(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.storage.CreateFile(context.Background(), models.File{
		ID:        "f1",
		CreatedAt: time.Now().UTC(),
	}))

	hideReq := httptest.NewRequest(http.MethodDelete, "/api/admin/files/f1", nil)
	hideRec := httptest.NewRecorder()
	hideCtx := env.echo.NewContext(hideReq, hideRec)
	hideCtx.SetParamNames("id")
	hideCtx.SetParamValues("f1")
	require.NoError(t, env.controller.HideFile(hideCtx))

	file, err := env.storage.GetFile(context.Background(), "f1")
	require.NoError(t, err)
	assert.True(t, file.Hidden())

	restoreReq := httptest.NewRequest(http.MethodPost, "/api/admin/files/f1/restore", nil)
	restoreRec := httptest.NewRecorder()
	restoreCtx := env.echo.NewContext(restoreReq, restoreRec)
	restoreCtx.SetParamNames("id")
	restoreCtx.SetParamValues("f1")
	require.NoError(t, env.controller.RestoreFile(restoreCtx))

	file, err = env.storage.GetFile(context.Background(), "f1")
	require.NoError(t, err)
	assert.False(t, file.Hidden())
}

func TestHideUnknownFile(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/files/missing", nil)
	rec := httptest.NewRecorder()
	ctx := env.echo.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("missing")

	err := env.controller.HideFile(ctx)
	assert.ErrorIs(t, err, storage.ErrFileNotFound)
}
