package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/teamgate/internal/authorization"
	"github.com/smallbiznis/teamgate/internal/config"
	"github.com/smallbiznis/teamgate/internal/credentials"
	"github.com/smallbiznis/teamgate/internal/department"
	departmentdomain "github.com/smallbiznis/teamgate/internal/department/domain"
	"github.com/smallbiznis/teamgate/internal/employee"
	employeedomain "github.com/smallbiznis/teamgate/internal/employee/domain"
	"github.com/smallbiznis/teamgate/internal/invitation"
	invitationdomain "github.com/smallbiznis/teamgate/internal/invitation/domain"
	"github.com/smallbiznis/teamgate/internal/observability"
	obslogger "github.com/smallbiznis/teamgate/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/teamgate/internal/observability/metrics"
	obstracing "github.com/smallbiznis/teamgate/internal/observability/tracing"
	"github.com/smallbiznis/teamgate/internal/organization"
	organizationdomain "github.com/smallbiznis/teamgate/internal/organization/domain"
	"github.com/smallbiznis/teamgate/internal/providers/email"
	"github.com/smallbiznis/teamgate/internal/ratelimit"
	"github.com/smallbiznis/teamgate/internal/token"
	tokendomain "github.com/smallbiznis/teamgate/internal/token/domain"
	"github.com/smallbiznis/teamgate/internal/user"
	userdomain "github.com/smallbiznis/teamgate/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	credentials.Module,
	email.Module,
	token.Module,
	user.Module,
	department.Module,
	employee.Module,
	organization.Module,
	invitation.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	log       *zap.Logger
	issuer    *credentials.Issuer
	authzSvc  authorization.Service
	limiter   *ratelimit.AuthLimiter
	mailer    email.Provider
	tokensvc  tokendomain.Service
	usersvc   userdomain.Service
	invitesvc invitationdomain.Service
	deptsvc   departmentdomain.Service
	employees employeedomain.Repository
	orgrepo   organizationdomain.Repository
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	Log       *zap.Logger
	Issuer    *credentials.Issuer
	AuthzSvc  authorization.Service
	Limiter   *ratelimit.AuthLimiter `optional:"true"`
	Mailer    email.Provider
	TokenSvc  tokendomain.Service
	UserSvc   userdomain.Service
	InviteSvc invitationdomain.Service
	DeptSvc   departmentdomain.Service
	Employees employeedomain.Repository
	OrgRepo   organizationdomain.Repository
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		log:       p.Log.Named("http.server"),
		issuer:    p.Issuer,
		authzSvc:  p.AuthzSvc,
		limiter:   p.Limiter,
		mailer:    p.Mailer,
		tokensvc:  p.TokenSvc,
		usersvc:   p.UserSvc,
		invitesvc: p.InviteSvc,
		deptsvc:   p.DeptSvc,
		employees: p.Employees,
		orgrepo:   p.OrgRepo,
	}

	svc.registerAuthRoutes()
	svc.registerHRMRoutes()
	svc.registerOrgRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/v1/auth")

	auth.POST("/login", s.ClientRateLimit(), s.Login)
	auth.POST("/refresh", s.Refresh)
	auth.POST("/forgot-password", s.ClientRateLimit(), s.ForgotPassword)
	auth.POST("/reset-password/:token", s.ClientRateLimit(), s.ResetPassword)
	auth.POST("/verify-email/:token", s.VerifyEmail)
	auth.POST("/accept-invite/:token", s.ClientRateLimit(), s.AcceptInvite)

	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/verify-email", s.AuthRequired(), s.SendVerificationEmail)
	auth.POST("/invite",
		s.AuthRequired(),
		s.RequireOrgAction(authorization.ObjectInvitation, authorization.ActionInvitationCreate),
		s.Invite,
	)
	auth.GET("/invites",
		s.AuthRequired(),
		s.RequireOrgAction(authorization.ObjectInvitation, authorization.ActionInvitationView),
		s.ListPendingInvites,
	)
}

func (s *Server) registerHRMRoutes() {
	hrm := s.engine.Group("/v1/hrm", s.AuthRequired())

	hrm.POST("/employees",
		s.RequireOrgAction(authorization.ObjectEmployee, authorization.ActionEmployeeCreate),
		s.CreateEmployee,
	)
	hrm.GET("/employees",
		s.RequireOrgAction(authorization.ObjectEmployee, authorization.ActionEmployeeView),
		s.ListEmployees,
	)
	hrm.GET("/departments",
		s.RequireOrgAction(authorization.ObjectDepartment, authorization.ActionDepartmentView),
		s.ListDepartments,
	)
}

func (s *Server) registerOrgRoutes() {
	org := s.engine.Group("/v1/org", s.AuthRequired())

	org.GET("",
		s.RequireOrgAction(authorization.ObjectOrganization, authorization.ActionOrganizationView),
		s.GetOrganization,
	)
}
