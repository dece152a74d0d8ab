package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/greencycle/ewaste-BE/internal/token"
)

func (server *Server) listNotifications(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	notifications, err := server.dbStore.ListNotificationsByRecipient(c, authPayload.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// getOwnNotification loads a notification and enforces that it belongs to
// the authenticated user. Foreign notifications read as not found rather
// than leaking their existence.
func (server *Server) getOwnNotification(c *gin.Context) (uuid.UUID, bool) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid notification ID format")))
		return uuid.Nil, false
	}

	notification, err := server.dbStore.GetNotificationByID(c, notificationID)
	if err != nil {
		handleDBError(c, err)
		return uuid.Nil, false
	}

	if notification.RecipientID != authPayload.Subject {
		c.JSON(http.StatusNotFound, errorResponse(fmt.Errorf("notification %s not found", notificationID)))
		return uuid.Nil, false
	}

	return notificationID, true
}

func (server *Server) markNotificationRead(c *gin.Context) {
	notificationID, ok := server.getOwnNotification(c)
	if !ok {
		return
	}

	notification, err := server.dbStore.MarkNotificationRead(c, notificationID)
	if err != nil {
		handleDBError(c, err)
		return
	}

	c.JSON(http.StatusOK, notification)
}

func (server *Server) deleteNotification(c *gin.Context) {
	notificationID, ok := server.getOwnNotification(c)
	if !ok {
		return
	}

	if err := server.dbStore.DeleteNotification(c, notificationID); err != nil {
		handleDBError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}
