package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jurgenvdlecq/seatemail/catalog"
	"github.com/Jurgenvdlecq/seatemail/pkg/logger"
)

const maxSuggestions = 5

type CatalogHandler struct {
	store *catalog.Store
}

func NewCatalogHandler(store *catalog.Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// List returns the whole price list.
func (h *CatalogHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Current().Entries())
}

// Search looks up the starting price for merk, model and motor.
func (h *CatalogHandler) Search(c *gin.Context) {
	brand, modelName, engine := c.Query("merk"), c.Query("model"), c.Query("motor")

	cat := h.store.Current()
	entry, err := cat.Lookup(brand, modelName, engine)
	switch {
	case errors.Is(err, catalog.ErrIncompleteQuery):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Vul eerst merk, model én motor/uitvoering in om de prijs te laten invullen.",
		})
	case errors.Is(err, catalog.ErrNotFound):
		suggestions := cat.Suggest(brand, modelName, engine, maxSuggestions)
		if suggestions == nil {
			suggestions = []catalog.Suggestion{}
		}
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Geen prijs gevonden voor: %s %s (%s). Controleer spelling of vraag IT om de prijslijst bij te werken.",
				brand, modelName, engine),
			"suggesties": suggestions,
		})
	case err != nil:
		logger.Error(c.Request.Context(), "catalog lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Interne serverfout."})
	default:
		c.JSON(http.StatusOK, entry)
	}
}

// Reload reads the price list from disk again.
func (h *CatalogHandler) Reload(c *gin.Context) {
	if err := h.store.Reload(c.Request.Context()); err != nil {
		logger.Error(c.Request.Context(), "catalog reload failed", "path", h.store.Path(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Kon de prijslijst niet herladen."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"aantal": h.store.Current().Len()})
}
