// README: Contractor availability handlers feeding the surge supply signal.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roadcall/internal/modules/contractors"
	"roadcall/internal/types"
)

type ContractorHandler struct {
	store *contractors.Store
	log   *zap.Logger
}

func NewContractorHandler(store *contractors.Store, log *zap.Logger) *ContractorHandler {
	return &ContractorHandler{store: store, log: log}
}

type availabilityRequest struct {
	Available bool    `json:"available"`
	Lat       float64 `json:"lat" binding:"min=-90,max=90"`
	Lng       float64 `json:"lng" binding:"min=-180,max=180"`
}

func (h *ContractorHandler) UpdateAvailability(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing contractor id"})
		return
	}

	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var err error
	if req.Available {
		err = h.store.SetAvailable(c.Request.Context(), types.ID(id), types.Point{Lat: req.Lat, Lng: req.Lng})
	} else {
		err = h.store.SetUnavailable(c.Request.Context(), types.ID(id))
	}
	if err != nil {
		h.log.Error("availability update failed", zap.Error(err), zap.String("contractor_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update availability"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contractorId": id, "available": req.Available})
}
