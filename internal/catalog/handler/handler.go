package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/ricestyle/catalog-service/internal/catalog"
	"github.com/ricestyle/catalog-service/internal/catalog/dto"
	"github.com/ricestyle/catalog-service/pkg/logger"
)

// CatalogHandler exposes the category catalog view over HTTP. Filter input is
// never rejected here; the use case drops whatever it cannot interpret.
type CatalogHandler struct {
	uc     catalog.UseCase
	logger logger.Logger
}

func NewCatalogHandler(uc catalog.UseCase, log logger.Logger) *CatalogHandler {
	return &CatalogHandler{uc: uc, logger: log}
}

// RegisterRoutes mounts the catalog endpoints on the given router.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories/{categoryID}/catalog", h.GetCatalog)
}

func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid category id"})
		return
	}

	q := dto.ParseQuery(r.URL.Query())

	view, err := h.uc.BuildCatalogView(r.Context(), categoryID, q)
	if err != nil {
		h.logger.Error("failed to build catalog view",
			zap.Int64("category_id", categoryID),
			zap.Error(err),
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "internal error"})
		return
	}

	render.JSON(w, r, view)
}
