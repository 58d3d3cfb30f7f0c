package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ryabkov/filegallery/internal/models"
	"github.com/ryabkov/filegallery/internal/util"
)

// ListAllFiles (GET /api/admin/files) includes hidden files.
func (c *Controller) ListAllFiles(ctx echo.Context) error {
	files, err := c.gallery.ListAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.FileListResponse{Items: files})
}

// GetFileMetadata (GET /api/admin/files/:id).
func (c *Controller) GetFileMetadata(ctx echo.Context) error {
	file, err := c.gallery.GetMetadata(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.FileResponse{Item: *file})
}

// UpdateFile (PATCH /api/admin/files/:id) renames/describes a file. Both
// fields are required.
func (c *Controller) UpdateFile(ctx echo.Context) error {
	var req models.UpdateFileRequest
	if err := ctx.Bind(&req); err != nil {
		return util.NewResponseError(http.StatusBadRequest, "invalid payload")
	}
	if req.Title == "" || req.Description == "" {
		return util.NewResponseError(http.StatusBadRequest, "title and description are required")
	}

	if err := c.gallery.UpdateInfo(ctx.Request().Context(), ctx.Param("id"), req.Title, req.Description); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.OKResponse{OK: true})
}

// HideFile (DELETE /api/admin/files/:id) soft-deletes: the row and the
// stored bytes stay, only visibility changes.
func (c *Controller) HideFile(ctx echo.Context) error {
	if err := c.gallery.Hide(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.OKResponse{OK: true})
}

// RestoreFile (POST /api/admin/files/:id/restore).
func (c *Controller) RestoreFile(ctx echo.Context) error {
	if err := c.gallery.Restore(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.OKResponse{OK: true})
}

// UploadFiles (POST /api/admin/files/upload) accepts a multipart batch in
// the "files" field. Each file is checked against the size ceiling before
// a byte of it is stored.
func (c *Controller) UploadFiles(ctx echo.Context) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return util.NewResponseError(http.StatusBadRequest, "invalid multipart payload")
	}

	uploads := form.File["files"]
	if len(uploads) == 0 {
		return util.NewResponseError(http.StatusBadRequest, "no files uploaded")
	}

	items := make([]models.File, 0, len(uploads))
	for _, header := range uploads {
		if header.Size > c.uploadConfig.MaxUploadBytes {
			return util.NewResponseError(http.StatusRequestEntityTooLarge, "file too large: %s", header.Filename)
		}

		src, err := header.Open()
		if err != nil {
			return util.NewResponseError(http.StatusBadRequest, "unreadable upload: %s", header.Filename)
		}

		file, err := c.gallery.Upload(
			ctx.Request().Context(),
			header.Filename,
			header.Header.Get(echo.HeaderContentType),
			src,
		)
		src.Close()
		if err != nil {
			return err
		}
		items = append(items, *file)
	}

	return ctx.JSON(http.StatusOK, models.FileListResponse{Items: items})
}
