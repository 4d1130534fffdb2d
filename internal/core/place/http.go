// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package place

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yatra/internal/platform/constants"
	"github.com/taibuivan/yatra/internal/platform/ctxutil"
	"github.com/taibuivan/yatra/internal/platform/middleware"
	requestutil "github.com/taibuivan/yatra/internal/platform/request"
	"github.com/taibuivan/yatra/internal/platform/respond"
	"github.com/taibuivan/yatra/internal/platform/sec"
	"github.com/taibuivan/yatra/pkg/pagination"
)

// Handler exposes the place hierarchies over HTTP.
type Handler struct {
	service  *Service
	maxBytes int64
}

// NewHandler creates a [Handler]. maxUpload bounds the file part of a write.
func NewHandler(service *Service, maxUpload int64) *Handler {
	return &Handler{service: service, maxBytes: maxUpload + constants.MultipartOverhead}
}

// Routes mounts under /places; every route is scoped to /{taxonomy}/{level}.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Route("/{taxonomy}/{level}", func(kindRoute chi.Router) {
		kindRoute.Use(tagKind)

		// Public
		kindRoute.Get("/", handler.listPlaces)
		kindRoute.Get("/slug/{slug}", handler.getPlaceBySlug)
		kindRoute.Get("/{id}", handler.getPlace)
		kindRoute.Get("/{id}/children", handler.listChildren)

		// Moderator
		kindRoute.Group(func(modRoute chi.Router) {
			modRoute.Use(middleware.RequireRole(sec.RoleModerator))

			modRoute.Post("/", handler.createPlace)
			modRoute.Patch("/{id}", handler.updatePlace)
			modRoute.Post("/{id}/gallery", handler.addGalleryImage)
			modRoute.Delete("/{id}/gallery", handler.removeGalleryImage)

			// Admin strict only
			modRoute.With(middleware.RequireRole(sec.RoleAdmin)).Delete("/{id}", handler.deletePlace)
		})
	})

	return router
}

// # Reads

func (handler *Handler) listPlaces(writer http.ResponseWriter, request *http.Request) {
	kind, err := kindOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	parentID, err := requestutil.OptionalInt64Query(request, FieldParentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	filter := Filter{
		ParentID: parentID,
		Query:    strings.TrimSpace(request.URL.Query().Get("q")),
	}

	places, total, err := handler.service.List(request.Context(), kind, filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, places, paginationParams.Meta(total))
}

func (handler *Handler) getPlace(writer http.ResponseWriter, request *http.Request) {
	kind, id, err := kindAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	place, err := handler.service.Get(request.Context(), kind, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, place)
}

func (handler *Handler) getPlaceBySlug(writer http.ResponseWriter, request *http.Request) {
	kind, err := kindOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	parentID, err := requestutil.OptionalInt64Query(request, FieldParentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	place, err := handler.service.GetBySlug(request.Context(), kind, parentID, requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, place)
}

func (handler *Handler) listChildren(writer http.ResponseWriter, request *http.Request) {
	kind, id, err := kindAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	children, err := handler.service.Children(request.Context(), kind, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, children)
}

// # Writes

func (handler *Handler) createPlace(writer http.ResponseWriter, request *http.Request) {
	kind, err := kindOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := requestutil.ParseMultipart(writer, request, handler.maxBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Input
	if err := requestutil.DecodeData(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	file, release, err := requestutil.File(request, constants.FormFieldFile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer release()

	place, err := handler.service.Create(request.Context(), kind, input, file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, place)
}

func (handler *Handler) updatePlace(writer http.ResponseWriter, request *http.Request) {
	kind, id, err := kindAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := requestutil.ParseMultipart(writer, request, handler.maxBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	if err := requestutil.DecodeData(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	file, release, err := requestutil.File(request, constants.FormFieldFile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer release()

	place, err := handler.service.Update(request.Context(), kind, id, patch, file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, place)
}

func (handler *Handler) deletePlace(writer http.ResponseWriter, request *http.Request) {
	kind, id, err := kindAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.service.Delete(request.Context(), kind, id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Gallery

func (handler *Handler) addGalleryImage(writer http.ResponseWriter, request *http.Request) {
	kind, id, err := kindAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := requestutil.ParseMultipart(writer, request, handler.maxBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	file, release, err := requestutil.File(request, constants.FormFieldFile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer release()

	place, err := handler.service.AddGalleryImage(request.Context(), kind, id, file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, place)
}

// galleryRemoval is the body of DELETE /{id}/gallery.
type galleryRemoval struct {
	Image string `json:"image"`
}

func (handler *Handler) removeGalleryImage(writer http.ResponseWriter, request *http.Request) {
	kind, id, err := kindAndID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body galleryRemoval
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	place, err := handler.service.RemoveGalleryImage(request.Context(), kind, id, body.Image)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, place)
}

// # Helpers

// tagKind labels the request logger with the addressed place kind.
func tagKind(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		kind := requestutil.Param(request, "taxonomy") + "/" + requestutil.Param(request, "level")
		ctx := ctxutil.WithLogAttrs(request.Context(), slog.String("place_kind", strings.ToLower(kind)))
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func kindOf(request *http.Request) (Kind, error) {
	return ParseKind(requestutil.Param(request, "taxonomy"), requestutil.Param(request, "level"))
}

func kindAndID(request *http.Request) (Kind, int64, error) {
	kind, err := kindOf(request)
	if err != nil {
		return Kind{}, 0, err
	}
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		return Kind{}, 0, err
	}
	return kind, id, nil
}
