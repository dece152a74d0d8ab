package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/greencycle/ewaste-BE/internal/validator"
	"github.com/rs/zerolog/log"
)

func (server *Server) listShops(c *gin.Context) {
	shops, err := server.dbStore.ListShops(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, shops)
}

type createShopRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description *string  `json:"description"`
	Address     string   `json:"address" binding:"required"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Categories  []string `json:"categories"`
}

func (server *Server) createShop(c *gin.Context) {
	var req createShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid request body: %w", err)))
		return
	}

	var violations []*FieldViolation
	if err := validator.ValidateString(req.Name, 1, 200); err != nil {
		violations = append(violations, fieldViolation("name", err))
	}
	if req.Latitude != nil {
		if err := validator.ValidateLatitude(*req.Latitude); err != nil {
			violations = append(violations, fieldViolation("latitude", err))
		}
	}
	if req.Longitude != nil {
		if err := validator.ValidateLongitude(*req.Longitude); err != nil {
			violations = append(violations, fieldViolation("longitude", err))
		}
	}
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	var latitude, longitude float64
	if req.Latitude != nil && req.Longitude != nil {
		latitude, longitude = *req.Latitude, *req.Longitude
	} else {
		var err error
		latitude, longitude, err = server.geocoder.Geocode(c, req.Address)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, errorResponse(fmt.Errorf("failed to geocode address: %w", err)))
			return
		}
	}

	shopID, err := uuid.NewV7()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	categories := req.Categories
	if categories == nil {
		categories = []string{}
	}

	shop, err := server.dbStore.CreateShop(c, db.CreateShopParams{
		ID:          shopID,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Latitude:    latitude,
		Longitude:   longitude,
		Categories:  categories,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	// The periodic resync will pick the shop up even if indexing fails here.
	if err = server.locator.Index(c, shop); err != nil {
		log.Err(err).Str("shop_id", shop.ID.String()).Msg("failed to index new shop")
	}

	c.JSON(http.StatusCreated, shop)
}

type nearbyShopsRequest struct {
	Latitude  float64 `form:"lat" binding:"required"`
	Longitude float64 `form:"lng" binding:"required"`
	RadiusKm  float64 `form:"radius_km,default=10"`
	Limit     int     `form:"limit,default=20"`
}

type nearbyShopResponse struct {
	db.Shop
	DistanceKm float64 `json:"distance_km"`
}

func (server *Server) listNearbyShops(c *gin.Context) {
	var req nearbyShopsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid query parameters: %w", err)))
		return
	}

	var violations []*FieldViolation
	if err := validator.ValidateLatitude(req.Latitude); err != nil {
		violations = append(violations, fieldViolation("lat", err))
	}
	if err := validator.ValidateLongitude(req.Longitude); err != nil {
		violations = append(violations, fieldViolation("lng", err))
	}
	if req.RadiusKm <= 0 {
		violations = append(violations, fieldViolation("radius_km", fmt.Errorf("must be greater than 0")))
	}
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	nearby, err := server.locator.Nearby(c, req.Latitude, req.Longitude, req.RadiusKm, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	shops := make([]nearbyShopResponse, 0, len(nearby))
	for _, hit := range nearby {
		shop, err := server.dbStore.GetShopByID(c, hit.ShopID)
		if err != nil {
			// Deleted from Postgres but still indexed; skip until resync.
			log.Warn().Err(err).Str("shop_id", hit.ShopID.String()).Msg("indexed shop missing from database")
			continue
		}
		shops = append(shops, nearbyShopResponse{Shop: shop, DistanceKm: hit.DistanceKm})
	}

	c.JSON(http.StatusOK, shops)
}

func (server *Server) deleteShop(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid shop ID format")))
		return
	}

	if _, err = server.dbStore.GetShopByID(c, shopID); err != nil {
		handleDBError(c, err)
		return
	}

	if err = server.dbStore.DeleteShop(c, shopID); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	if err = server.locator.Remove(c, shopID); err != nil {
		log.Err(err).Str("shop_id", shopID.String()).Msg("failed to remove shop from geo index")
	}

	c.JSON(http.StatusOK, gin.H{"message": "shop deleted"})
}
