package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/greencycle/ewaste-BE/internal/auction"
	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/greencycle/ewaste-BE/internal/token"
	"github.com/greencycle/ewaste-BE/internal/util"
	"github.com/rs/zerolog/log"
)

func (server *Server) listComponents(c *gin.Context) {
	components, err := server.dbStore.ListComponentsOnSale(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, components)
}

func (server *Server) getComponentDetails(c *gin.Context) {
	componentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid component ID format")))
		return
	}

	details, err := server.dbStore.GetComponentDetailsByID(c, componentID)
	if err != nil {
		handleDBError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// getComponentBySlug resolves a shareable listing URL by slug, then serves
// the same detail shape as the by-ID endpoint.
func (server *Server) getComponentBySlug(c *gin.Context) {
	component, err := server.dbStore.GetComponentBySlug(c, c.Param("slug"))
	if err != nil {
		handleDBError(c, err)
		return
	}

	details, err := server.dbStore.GetComponentDetailsByID(c, component.ID)
	if err != nil {
		handleDBError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

type createComponentRequest struct {
	Name           string                `form:"name" binding:"required"`
	Description    *string               `form:"description"`
	Condition      string                `form:"condition" binding:"required"`
	Price          int64                 `form:"price"`
	AuctionEndTime *time.Time            `form:"auction_end_time" time_format:"2006-01-02T15:04:05Z07:00"`
	Image          *multipart.FileHeader `form:"image"`
}

func (server *Server) createComponent(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	var req createComponentRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid request body: %w", err)))
		return
	}

	imageURL := server.config.DefaultImageURL
	if req.Image != nil {
		uploadedURL, err := server.uploadFileToCloudinary("component", req.Name, componentImageFolder, req.Image)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse(err))
			return
		}
		imageURL = uploadedURL
	}

	component, err := server.engine.CreateListing(c, authPayload.Subject, auction.CreateListingParams{
		Name:           req.Name,
		Description:    req.Description,
		Condition:      db.ComponentCondition(req.Condition),
		Price:          req.Price,
		ImageURL:       imageURL,
		AuctionEndTime: req.AuctionEndTime,
	})
	if err != nil {
		handleEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, component)
}

type placeBidRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

func (server *Server) placeBid(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	componentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid component ID format")))
		return
	}

	var req placeBidRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid request body: %w", err)))
		return
	}

	details, err := server.engine.PlaceBid(c, componentID, authPayload.Subject, req.Amount)
	if err != nil {
		handleEngineError(c, err)
		return
	}

	log.Info().
		Str("component_id", componentID.String()).
		Str("bidder_id", authPayload.Subject).
		Int64("amount", req.Amount).
		Msg("bid placed")

	c.JSON(http.StatusOK, details)
}

func (server *Server) buyComponent(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	componentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid component ID format")))
		return
	}

	component, err := server.engine.BuyNow(c, componentID, authPayload.Subject)
	if err != nil {
		handleEngineError(c, err)
		return
	}

	log.Info().
		Str("component_id", componentID.String()).
		Str("buyer_id", authPayload.Subject).
		Msg("component purchased")

	c.JSON(http.StatusOK, component)
}

func (server *Server) deleteComponent(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	componentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid component ID format")))
		return
	}

	component, err := server.engine.DeleteListing(c, authPayload.Subject, db.UserRole(authPayload.Role), componentID)
	if err != nil {
		handleEngineError(c, err)
		return
	}

	// The uploaded image goes with the listing; the shared placeholder
	// stays. Cleanup is best-effort.
	if component.ImageURL != server.config.DefaultImageURL {
		publicID, err := util.ExtractPublicIDFromURL(component.ImageURL)
		if err == nil {
			err = server.fileStore.DeleteFile(publicID, "")
		}
		if err != nil {
			log.Err(err).Str("component_id", componentID.String()).Msg("failed to delete listing image")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "listing deleted"})
}
