package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgAllFieldsRequired)
		return
	}

	res, err := s.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeServiceError(c, opRegister, err)
		return
	}

	s.logger.Info(c.Request.Context(), "user registered", "user_id", res.User.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"token":   res.Token,
		"user":    res.User,
	})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgCredentialsRequired)
		return
	}

	res, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(c, opLogin, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

func (s *Server) profile(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, msgTokenRequired)
		return
	}

	user, err := s.users.Profile(c.Request.Context(), id)
	if err != nil {
		s.writeServiceError(c, opProfile, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Profile()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Server is running!",
		"timestamp": s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}
