package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/teamgate/internal/credentials"
	"github.com/smallbiznis/teamgate/internal/providers/email"
	tokendomain "github.com/smallbiznis/teamgate/internal/token/domain"
	userdomain "github.com/smallbiznis/teamgate/internal/user/domain"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User   userdomain.View   `json:"user"`
	Tokens *credentials.Pair `json:"tokens"`
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.usersvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pair, err := s.issuer.IssuePair(user)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{User: user.ToView(), Tokens: pair})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, err := s.issuer.VerifyRefresh(strings.TrimSpace(req.RefreshToken))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Re-load the account so a deactivated user cannot renew a session.
	user, err := s.usersvc.FindByID(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if !user.Active {
		AbortWithError(c, userdomain.ErrUserInactive)
		return
	}

	pair, err := s.issuer.IssuePair(user)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{User: user.ToView(), Tokens: pair})
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword always answers 202 with the same body so the endpoint
// cannot be used to probe which addresses have accounts.
func (s *Server) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	accepted := gin.H{"status": "accepted"}

	user, err := s.usersvc.FindByEmail(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusAccepted, accepted)
		return
	}

	token, err := s.tokensvc.Issue(ctx, tokendomain.IssueRequest{
		Kind:  tokendomain.KindPasswordReset,
		TTL:   tokendomain.PasswordResetTTL,
		Email: user.Email,
	})
	if err != nil {
		s.log.Error("password reset token issue failed", zap.Error(err))
		c.JSON(http.StatusAccepted, accepted)
		return
	}

	resetURL := s.cfg.FrontendBaseURL + "/reset-password/" + token.Value
	if err := s.mailer.SendTemplate(ctx, []string{user.Email}, email.TemplatePasswordReset, map[string]any{
		"first_name": user.FirstName,
		"reset_url":  resetURL,
	}); err != nil {
		s.log.Warn("password reset dispatch failed", zap.Error(err))
	}

	c.JSON(http.StatusAccepted, accepted)
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	token, err := s.tokensvc.ValidateAndConsume(ctx, c.Param("token"), tokendomain.KindPasswordReset)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	user, err := s.usersvc.FindByEmail(ctx, token.Email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.usersvc.ResetPassword(ctx, user.ID, req.Password); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SendVerificationEmail re-sends the verification link for the signed-in
// account. Accounts created through invite acceptance are already verified
// and answer 204 without minting a token.
func (s *Server) SendVerificationEmail(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()
	user, err := s.usersvc.FindByID(ctx, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if user.EmailVerified {
		c.Status(http.StatusNoContent)
		return
	}

	token, err := s.tokensvc.Issue(ctx, tokendomain.IssueRequest{
		Kind:  tokendomain.KindEmailVerification,
		TTL:   tokendomain.EmailVerificationTTL,
		Email: user.Email,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	verifyURL := s.cfg.FrontendBaseURL + "/verify-email/" + token.Value
	if err := s.mailer.SendTemplate(ctx, []string{user.Email}, email.TemplateVerifyEmail, map[string]any{
		"first_name": user.FirstName,
		"verify_url": verifyURL,
	}); err != nil {
		s.log.Warn("verification dispatch failed", zap.Error(err))
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) VerifyEmail(c *gin.Context) {
	ctx := c.Request.Context()
	token, err := s.tokensvc.ValidateAndConsume(ctx, c.Param("token"), tokendomain.KindEmailVerification)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	user, err := s.usersvc.FindByEmail(ctx, token.Email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.usersvc.VerifyEmail(ctx, user.ID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) Me(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.usersvc.FindByID(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.ToView())
}
