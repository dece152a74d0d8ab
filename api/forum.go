package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/greencycle/ewaste-BE/internal/token"
	"github.com/greencycle/ewaste-BE/internal/util"
	"github.com/greencycle/ewaste-BE/internal/validator"
)

func (server *Server) listForumPosts(c *gin.Context) {
	posts, err := server.dbStore.ListForumPosts(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (server *Server) getForumPostDetails(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid post ID format")))
		return
	}

	post, err := server.dbStore.GetForumPostByID(c, postID)
	if err != nil {
		handleDBError(c, err)
		return
	}

	author, err := server.dbStore.GetUserByID(c, post.AuthorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	replies, err := server.dbStore.ListForumRepliesByPost(c, postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, db.ForumPostDetails{
		ForumPost:  post,
		AuthorName: author.Name,
		Replies:    replies,
	})
}

type createForumPostRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

func (server *Server) createForumPost(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	var req createForumPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid request body: %w", err)))
		return
	}

	var violations []*FieldViolation
	if err := validator.ValidateString(req.Title, 3, 200); err != nil {
		violations = append(violations, fieldViolation("title", err))
	}
	if err := validator.ValidateString(req.Body, 1, 10000); err != nil {
		violations = append(violations, fieldViolation("body", err))
	}
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	postID, err := uuid.NewV7()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	post, err := server.dbStore.CreateForumPost(c, db.CreateForumPostParams{
		ID:       postID,
		AuthorID: authPayload.Subject,
		Title:    req.Title,
		Body:     req.Body,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (server *Server) deleteForumPost(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid post ID format")))
		return
	}

	post, err := server.dbStore.GetForumPostByID(c, postID)
	if err != nil {
		handleDBError(c, err)
		return
	}

	if post.AuthorID != authPayload.Subject && authPayload.Role != string(db.UserRoleAdmin) {
		c.JSON(http.StatusForbidden, errorResponse(ErrForumPostNotOwned))
		return
	}

	if err = server.dbStore.DeleteForumPost(c, postID); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

type createForumReplyRequest struct {
	Body string `json:"body" binding:"required"`
}

func (server *Server) createForumReply(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid post ID format")))
		return
	}

	var req createForumReplyRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid request body: %w", err)))
		return
	}

	if err = validator.ValidateString(req.Body, 1, 10000); err != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError([]*FieldViolation{fieldViolation("body", err)}))
		return
	}

	post, err := server.dbStore.GetForumPostByID(c, postID)
	if err != nil {
		handleDBError(c, err)
		return
	}

	replyID, err := uuid.NewV7()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	reply, err := server.dbStore.CreateForumReply(c, db.CreateForumReplyParams{
		ID:       replyID,
		PostID:   postID,
		AuthorID: authPayload.Subject,
		Body:     req.Body,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	// Ephemeral heads-up to the post author; lost when they are offline,
	// which is fine for forum activity.
	if post.AuthorID != authPayload.Subject {
		if event, err := json.Marshal(map[string]any{
			"type":    string(db.NotificationTypeForumReply),
			"post_id": postID.String(),
			"title":   "New reply to your post",
			"message": fmt.Sprintf("Someone replied to %q.", util.TruncateContent(post.Title, 60)),
		}); err == nil {
			server.hub.Push(post.AuthorID, event)
		}
	}

	c.JSON(http.StatusCreated, reply)
}
