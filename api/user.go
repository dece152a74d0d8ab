package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/greencycle/ewaste-BE/internal/token"
	"github.com/greencycle/ewaste-BE/internal/util"
	"github.com/greencycle/ewaste-BE/internal/validator"
)

type registerUserRequest struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	ContactInfo *string `json:"contact_info"`
}

func (req *registerUserRequest) validate() []*FieldViolation {
	var violations []*FieldViolation

	if err := validator.ValidateString(req.Name, 1, 100); err != nil {
		violations = append(violations, fieldViolation("name", err))
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		violations = append(violations, fieldViolation("email", err))
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		violations = append(violations, fieldViolation("password", err))
	}

	return violations
}

func (server *Server) registerUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid request body: %w", err)))
		return
	}

	if violations := req.validate(); violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	hashedPassword, err := util.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	user, err := server.dbStore.CreateUser(c, db.CreateUserParams{
		ID:             util.NewUserID(),
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           db.UserRoleMember,
		ContactInfo:    req.ContactInfo,
	})
	if err != nil {
		if errCode, constraintName := db.ErrorDescription(err); errCode == db.UniqueViolationCode && constraintName == db.UniqueEmailConstraint {
			c.JSON(http.StatusConflict, errorResponse(fmt.Errorf("email %s is already registered", req.Email)))
			return
		}

		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusCreated, user)
}

type loginUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginUserResponse struct {
	AccessToken string  `json:"access_token"`
	User        db.User `json:"user"`
}

func (server *Server) loginUser(c *gin.Context) {
	var req loginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("invalid request body: %w", err)))
		return
	}

	user, err := server.dbStore.GetUserByEmail(c, req.Email)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, errorResponse(errors.New("incorrect email or password")))
			return
		}

		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	if err = util.CheckPassword(req.Password, user.HashedPassword); err != nil {
		c.JSON(http.StatusUnauthorized, errorResponse(errors.New("incorrect email or password")))
		return
	}

	accessToken, _, err := server.tokenMaker.CreateToken(user.ID, string(user.Role), server.config.AccessTokenDuration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, loginUserResponse{
		AccessToken: accessToken,
		User:        user,
	})
}

func (server *Server) getCurrentUser(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	user, err := server.dbStore.GetUserByID(c, authPayload.Subject)
	if err != nil {
		handleDBError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
