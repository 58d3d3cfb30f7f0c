package controller

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ryabkov/filegallery/internal/filestore"
	"github.com/ryabkov/filegallery/internal/models"
)

// ListFiles (GET /api/files) returns the public gallery: visible files
// only, newest first.
func (c *Controller) ListFiles(ctx echo.Context) error {
	limit := 0
	if v := ctx.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	files, err := c.gallery.ListVisible(ctx.Request().Context(), limit)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.FileListResponse{Items: files})
}

// GetFileContent (GET /api/files/:id) streams the stored bytes. Images
// render inline, everything else downloads.
func (c *Controller) GetFileContent(ctx echo.Context) error {
	file, content, err := c.gallery.OpenContent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	defer content.Close()

	disposition := "attachment"
	if file.IsImage {
		disposition = "inline"
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(
		`%s; filename="%s"; filename*=UTF-8''%s`,
		disposition,
		filestore.SanitizeName(file.OriginalName),
		url.PathEscape(file.OriginalName),
	))

	return ctx.Stream(http.StatusOK, file.MimeType, content)
}

// VoteFile (POST /api/files/:id/vote) reconciles a client-reported vote
// transition. A malformed or empty body means "none" on both sides, which
// degenerates to a plain count read.
func (c *Controller) VoteFile(ctx echo.Context) error {
	var req models.VoteRequest
	_ = ctx.Bind(&req)
	if req.PrevVote == "" {
		req.PrevVote = models.VoteNone
	}
	if req.NextVote == "" {
		req.NextVote = models.VoteNone
	}

	counts, err := c.gallery.Vote(ctx.Request().Context(), ctx.Param("id"), req.PrevVote, req.NextVote)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, counts)
}

// LikeFile (POST /api/files/:id/like) is the quick-vote path for clients
// that track no previous state.
func (c *Controller) LikeFile(ctx echo.Context) error {
	counts, err := c.gallery.Vote(ctx.Request().Context(), ctx.Param("id"), models.VoteNone, models.VoteLike)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, counts)
}

// DislikeFile (POST /api/files/:id/dislike).
func (c *Controller) DislikeFile(ctx echo.Context) error {
	counts, err := c.gallery.Vote(ctx.Request().Context(), ctx.Param("id"), models.VoteNone, models.VoteDislike)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, counts)
}
