package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invitationdomain "github.com/smallbiznis/teamgate/internal/invitation/domain"
	tokendomain "github.com/smallbiznis/teamgate/internal/token/domain"
	userdomain "github.com/smallbiznis/teamgate/internal/user/domain"
	"go.uber.org/zap"
)

type InviteRequest struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) Invite(c *gin.Context) {
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	issued, err := s.issueInvite(c, req, nil)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issued)
}

type AcceptInviteRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

func (s *Server) AcceptInvite(c *gin.Context) {
	var req AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if req.Password != req.ConfirmPassword {
		AbortWithError(c, newValidationError("confirm_password", "mismatch", "passwords do not match"))
		return
	}

	result, err := s.invitesvc.Accept(c.Request.Context(), invitationdomain.AcceptRequest{
		TokenValue: c.Param("token"),
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

type pendingInviteView struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at"`
}

func (s *Server) ListPendingInvites(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	tokens, err := s.invitesvc.ListPending(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	invites := make([]pendingInviteView, 0, len(tokens))
	for _, token := range tokens {
		invites = append(invites, pendingInviteView{
			Email:     token.Email,
			Role:      token.Role,
			ExpiresAt: token.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	c.JSON(http.StatusOK, gin.H{"invites": invites})
}

// issueInvite assembles inviter context and runs the shared issue flow for
// both the bare invite endpoint and the employee-provisioning one.
func (s *Server) issueInvite(c *gin.Context, req InviteRequest, employee *tokendomain.EmployeeProvisioning) (*invitationdomain.PendingInvite, error) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return nil, ErrUnauthorized
	}
	orgID, ok := orgIDFromContext(c)
	if !ok {
		return nil, ErrUnauthorized
	}

	ctx := c.Request.Context()

	if s.limiter.Enabled() {
		result, err := s.limiter.AllowInvite(ctx, orgID.String())
		if err != nil {
			s.log.Warn("invite rate limiter unavailable, failing open", zap.Error(err))
		} else if !result.Allowed {
			c.Header("Retry-After", formatRetryAfter(result.RetryAfter))
			return nil, ErrTooManyRequests
		}

		lockToken, acquired, err := s.limiter.TryLockInvite(ctx, orgID.String(), req.Email)
		if err != nil {
			s.log.Warn("invite lock unavailable, proceeding unlocked", zap.Error(err))
		} else if !acquired {
			return nil, ErrTooManyRequests
		} else {
			defer func() {
				if err := s.limiter.ReleaseInvite(ctx, orgID.String(), req.Email, lockToken); err != nil {
					s.log.Warn("invite lock release failed", zap.Error(err))
				}
			}()
		}
	}

	inviter, err := s.usersvc.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	org, err := s.orgrepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	inviterName := strings.TrimSpace(inviter.FirstName + " " + inviter.LastName)
	if inviterName == "" {
		inviterName = inviter.Email
	}

	return s.invitesvc.Issue(ctx, invitationdomain.IssueRequest{
		InviterID:   inviter.ID,
		InviterName: inviterName,
		OrgID:       org.ID,
		OrgName:     org.Name,
		Email:       req.Email,
		Role:        userdomain.Role(strings.ToLower(strings.TrimSpace(req.Role))),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Employee:    employee,
	})
}
