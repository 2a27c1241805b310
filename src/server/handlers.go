package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"galleryserv/src/app"
	"galleryserv/src/errs"

	"github.com/gin-gonic/gin"
)

type (
	AppHandler struct {
		gallery *app.Gallery
	}

	CreateFolderBody struct {
		Folder string `json:"folder" binding:"required"`
	}

	UploadURLBody struct {
		Filename    string `json:"filename" binding:"required"`
		Folder      string `json:"folder" binding:"required"`
		ContentType string `json:"contentType"`
	}

	DeletePhotoBody struct {
		Filename string `json:"filename" binding:"required"`
	}

	DeleteFolderBody struct {
		Folder string `json:"folder" binding:"required"`
	}
)

const folderQueryParam = "folder"

func NewAppHandler(gallery *app.Gallery) *AppHandler {
	return &AppHandler{gallery: gallery}
}

func (a *AppHandler) GetFolders(c *gin.Context) {
	const op = "fetch folders"
	principal, ok := requirePrincipal(c, op)
	if !ok {
		return
	}
	folders, err := a.gallery.ListAlbums(c.Request.Context(), principal)
	if err != nil {
		abortWithError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

func (a *AppHandler) GetPhotos(c *gin.Context) {
	const op = "fetch photos"
	principal, ok := requirePrincipal(c, op)
	if !ok {
		return
	}
	photos, err := a.gallery.ListPhotos(c.Request.Context(), principal, c.Query(folderQueryParam))
	if err != nil {
		abortWithError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

func (a *AppHandler) CreateFolder(c *gin.Context) {
	const op = "create folder"
	principal, ok := requirePrincipal(c, op)
	if !ok {
		return
	}
	var body CreateFolderBody
	if !bindBody(c, op, &body, "Folder name is required") {
		return
	}
	name, err := a.gallery.CreateAlbum(c.Request.Context(), principal, body.Folder)
	if err != nil {
		abortWithError(c, op, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Folder %s created successfully", name),
		"folder":  name,
	})
}

func (a *AppHandler) GenerateUploadURL(c *gin.Context) {
	const op = "generate upload URL"
	principal, ok := requirePrincipal(c, op)
	if !ok {
		return
	}
	var body UploadURLBody
	if !bindBody(c, op, &body, "Filename and folder are required") {
		return
	}
	grant, err := a.gallery.IssueUploadURL(c.Request.Context(), principal, body.Folder, body.Filename, body.ContentType)
	if err != nil {
		abortWithError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, grant)
}

func (a *AppHandler) DeletePhoto(c *gin.Context) {
	const op = "delete photo"
	principal, ok := requirePrincipal(c, op)
	if !ok {
		return
	}
	var body DeletePhotoBody
	if !bindBody(c, op, &body, "Filename is required") {
		return
	}
	if err := a.gallery.DeletePhoto(c.Request.Context(), principal, body.Filename); err != nil {
		abortWithError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "File deleted successfully",
		"filename": body.Filename,
	})
}

func (a *AppHandler) DeleteFolder(c *gin.Context) {
	const op = "delete folder"
	principal, ok := requirePrincipal(c, op)
	if !ok {
		return
	}
	var body DeleteFolderBody
	if !bindBody(c, op, &body, "Folder name is required") {
		return
	}
	deleted, err := a.gallery.DeleteAlbum(c.Request.Context(), principal, body.Folder)
	if err != nil {
		abortWithError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Folder deleted successfully",
		"folder":       strings.TrimSpace(body.Folder),
		"filesDeleted": deleted,
	})
}

func requirePrincipal(c *gin.Context, op string) (app.Principal, bool) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		abortWithError(c, op, errs.New(errs.KindUnauthorized, "Missing or invalid Authorization header"))
	}
	return principal, ok
}

// bindBody decodes the JSON body into dst. An absent body and a body that
// fails the binding rules are both client errors.
func bindBody(c *gin.Context, op string, dst any, missing string) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		abortWithError(c, op, errs.New(errs.KindBadRequest, "Request body is required"))
		return false
	}
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	message := missing
	switch {
	case errors.Is(err, io.EOF):
		message = "Request body is required"
	case isSyntaxError(err):
		message = "Request body must be valid JSON"
	}
	abortWithError(c, op, errs.Wrap(errs.KindBadRequest, message, err))
	return false
}

func isSyntaxError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}
