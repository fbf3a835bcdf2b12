package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"folio/auth"
	"folio/media"
)

// ApiError is the JSON body of a failed upload.
type ApiError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func (e ApiError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

var (
	errMissingFile  = ApiError{ErrorCode: "missing_file", Message: "no file in the request"}
	errNotImage     = ApiError{ErrorCode: "not_image", Message: "only images can be uploaded"}
	errTooLarge     = ApiError{ErrorCode: "too_large", Message: "images are limited to 10 MiB"}
	errEmptyFile    = ApiError{ErrorCode: "empty_file", Message: "the file is empty"}
	errUploadFailed = ApiError{ErrorCode: "upload_failed", Message: "the image could not be stored"}
)

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload stores one image from the multipart field "file" and answers with
// its public URL.
func (h *Handler) Upload(c echo.Context) error {
	f, err := readUpload(c)
	if err != nil {
		return sendUploadError(c, err)
	}
	url, err := h.Blog.UploadImage(c.Request().Context(), auth.SessionFrom(c), f)
	if err != nil {
		return sendUploadError(c, err)
	}
	return c.JSON(http.StatusCreated, uploadResponse{URL: url})
}

// readUpload reads the multipart field "file". The body is cut one byte past
// the size limit so the media checks still see it as too large.
func readUpload(c echo.Context) (media.File, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return media.File{}, errMissingFile
	}
	if fh.Size > media.MaxImageSize {
		return media.File{}, media.ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return media.File{}, errMissingFile
	}
	defer src.Close()

	body, err := io.ReadAll(io.LimitReader(src, media.MaxImageSize+1))
	if err != nil {
		return media.File{}, errMissingFile
	}
	return media.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        body,
	}, nil
}

func uploadError(err error) (int, ApiError) {
	switch {
	case errors.Is(err, errMissingFile):
		return http.StatusBadRequest, errMissingFile
	case errors.Is(err, media.ErrNotImage):
		return http.StatusUnsupportedMediaType, errNotImage
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, errTooLarge
	case errors.Is(err, media.ErrEmpty):
		return http.StatusBadRequest, errEmptyFile
	}
	return http.StatusInternalServerError, errUploadFailed
}

func sendUploadError(c echo.Context, err error) error {
	code, body := uploadError(err)
	if code == http.StatusInternalServerError {
		c.Logger().Error(err)
	}
	return c.JSON(code, body)
}
