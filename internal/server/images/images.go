// Package images exposes the image collection over HTTP: a cacheable
// listing and an upload endpoint that normalizes images to the canonical
// encoding.
package images

import (
	"errors"
	"io"
	"net/http"

	"github.com/golook/golook/internal/codec"
	"github.com/golook/golook/internal/server/fail"
	storepkg "github.com/golook/golook/internal/store"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Images struct {
	store          *storepkg.Store
	maxUploadBytes int64

	// newID mints identifiers for uploads, overridable in tests
	newID func() string
}

func New(group *echo.Group, store *storepkg.Store, maxUploadBytes int64) *Images {
	images := &Images{
		store:          store,
		maxUploadBytes: maxUploadBytes,
		newID:          uuid.NewString,
	}

	group.GET("", images.list)
	group.POST("", images.upload)

	return images
}

func (images *Images) list(c echo.Context) error {
	return c.JSON(http.StatusOK, images.store.List())
}

func (images *Images) upload(c echo.Context) error {
	body := c.Request().Body

	if images.maxUploadBytes > 0 {
		body = http.MaxBytesReader(nil, body, images.maxUploadBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var maxBytesError *http.MaxBytesError

		if errors.As(err, &maxBytesError) {
			return fail.Fail(c, http.StatusRequestEntityTooLarge,
				"upload exceeds the %d byte limit", maxBytesError.Limit)
		}

		return fail.Fail(c, http.StatusBadRequest, "failed to read upload: %v", err)
	}

	id := images.newID()

	entry, err := images.store.Save(c.Request().Context(), id, data)
	if err != nil {
		if errors.Is(err, codec.ErrDecode) {
			return fail.Fail(c, http.StatusBadRequest, "failed to save image %q: %v", id, err)
		}

		return fail.Fail(c, http.StatusInternalServerError, "failed to save image %q: %v", id, err)
	}

	c.Response().Header().Set("Location", "/images/"+id+".jpeg")

	return c.JSON(http.StatusCreated, entry)
}
