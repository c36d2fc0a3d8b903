package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/gin-gonic/gin"
)

// Messages returned in the {"error": ...} body. Clients match on them.
const (
	msgAllFieldsRequired   = "All fields are required"
	msgUserExists          = "User already exists"
	msgFailedToCreateUser  = "Failed to create user"
	msgServerError         = "Server error"
	msgCredentialsRequired = "Email and password are required"
	msgInvalidCredentials  = "Invalid credentials"
	msgDatabaseError       = "Database error"
	msgTokenRequired       = "Access token required"
	msgInvalidToken        = "Invalid token"
	msgUserNotFound        = "User not found"
)

type operation int

const (
	opRegister operation = iota
	opLogin
	opProfile
)

// respondError sends the error payload {"error": message}.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// writeServiceError maps an error returned by the user service to a status
// and a stable message. Internal detail is logged, never returned.
func (s *Server) writeServiceError(c *gin.Context, op operation, err error) {
	status, msg := serviceErrorStatus(op, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "route", c.FullPath(), "error", err.Error())
	}
	respondError(c, status, msg)
}

func serviceErrorStatus(op operation, err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		if op == opLogin {
			return http.StatusBadRequest, msgCredentialsRequired
		}
		return http.StatusBadRequest, msgAllFieldsRequired
	case errors.Is(err, common.ErrorDuplicateUser):
		return http.StatusBadRequest, msgUserExists
	case errors.Is(err, common.ErrorInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, msgUserNotFound
	case errors.Is(err, common.ErrorPersistence):
		if op == opRegister {
			return http.StatusInternalServerError, msgFailedToCreateUser
		}
		return http.StatusInternalServerError, msgDatabaseError
	default:
		return http.StatusInternalServerError, msgServerError
	}
}
