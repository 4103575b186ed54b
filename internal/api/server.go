package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/skarbek/skarbek-api/docs"
	v1 "github.com/skarbek/skarbek-api/internal/api/handler/v1"
	"github.com/skarbek/skarbek-api/internal/api/middleware"
	"github.com/skarbek/skarbek-api/internal/config"
	"github.com/skarbek/skarbek-api/internal/domain"
	"github.com/skarbek/skarbek-api/internal/mailer"
	"github.com/skarbek/skarbek-api/internal/metrics"
	"github.com/skarbek/skarbek-api/internal/pkg/jwthelper"
	"github.com/skarbek/skarbek-api/internal/pkg/password"
	"github.com/skarbek/skarbek-api/internal/repository"
	"github.com/skarbek/skarbek-api/internal/repository/dao"
	"github.com/skarbek/skarbek-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	Auth *service.AuthService
}

type handlers struct {
	auth          *v1.AuthHandler
	parents       *v1.ParentHandler
	campaigns     *v1.CampaignHandler
	contributions *v1.ContributionHandler
	me            *v1.MeHandler
}

func NewServer(conf *config.AppConfig, db *gorm.DB, mail mailer.Sender) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	generator, err := password.NewGenerator(conf.Password.TempLength, conf.Password.TempAlphabet)
	if err != nil {
		return nil, fmt.Errorf("password.NewGenerator -> %w", err)
	}

	tokens := jwthelper.NewManager(conf.API.JWTSigningKey)
	tx := dao.NewTransactor(db)

	s.MountMiddlewares()

	h := s.initHandlers(db, tx, tokens, mail, generator)
	s.MountHandlers(tokens, h)

	return s, nil
}

func (s *Server) initHandlers(db *gorm.DB, tx *dao.Transactor, tokens *jwthelper.Manager, mail mailer.Sender, generator *password.Generator) handlers {
	adminRepo := repository.NewAdminRepository(dao.NewAdminDAO(db))
	parentRepo := repository.NewParentRepository(dao.NewParentDAO(db))
	campaignRepo := repository.NewCampaignRepository(dao.NewCampaignDAO(db))
	contributionRepo := repository.NewContributionRepository(dao.NewContributionDAO(db))

	s.Auth = service.NewAuthService(tx, adminRepo, parentRepo, tokens, service.TokenTTL{
		Admin:  s.Config.API.AdminTokenTTL,
		Parent: s.Config.API.ParentTokenTTL,
	}, s.Config.Password.Policy())
	parentSvc := service.NewParentService(tx, parentRepo, mail, generator, s.Config.Password.Policy())
	campaignSvc := service.NewCampaignService(tx, campaignRepo)
	contributionSvc := service.NewContributionService(tx, campaignRepo, parentRepo, contributionRepo)
	rosterSvc := service.NewRosterService(tx, campaignRepo, parentRepo, contributionRepo)

	return handlers{
		auth:          v1.NewAuthHandler(s.Auth),
		parents:       v1.NewParentHandler(parentSvc),
		campaigns:     v1.NewCampaignHandler(campaignSvc, rosterSvc),
		contributions: v1.NewContributionHandler(contributionSvc),
		me:            v1.NewMeHandler(parentSvc, contributionSvc),
	}
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.Logger())
	s.Router.Use(middleware.Metrics())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(tokens middleware.TokenVerifier, h handlers) {
	gate := middleware.NewAuthenticator(tokens).VerifyJWT()

	s.Router.POST("/admin/login", h.auth.HandleAdminLogin)
	s.Router.POST("/parents/login", h.auth.HandleParentLogin)

	public := s.Router.Group("/campaigns")
	{
		public.GET("", h.campaigns.HandleListPublicCampaigns)
		public.GET("/:campaignID/status", h.contributions.HandleContributionStatus)
	}

	admin := s.Router.Group("/admin", gate, middleware.RequireRole(domain.RoleAdmin))
	{
		admin.POST("/parents", h.parents.HandleCreateParent)
		admin.GET("/parents", h.parents.HandleListParents)
		admin.PUT("/parents/:parentID", h.parents.HandleUpdateParent)
		admin.DELETE("/parents/:parentID", h.parents.HandleDeleteParent)
		admin.POST("/parents/:parentID/hide", h.parents.HandleHideParent)
		admin.POST("/parents/:parentID/unhide", h.parents.HandleUnhideParent)
		admin.POST("/parents/:parentID/change-password", h.parents.HandleResetPassword)

		admin.POST("/campaigns", h.campaigns.HandleCreateCampaign)
		admin.GET("/campaigns", h.campaigns.HandleListCampaigns)
		admin.PUT("/campaigns/:campaignID", h.campaigns.HandleUpdateCampaign)
		admin.DELETE("/campaigns/:campaignID", h.campaigns.HandleDeleteCampaign)
		admin.POST("/campaigns/:campaignID/close", h.campaigns.HandleCloseCampaign)
		admin.GET("/campaigns/:campaignID/roster", h.campaigns.HandleGetRoster)

		admin.POST("/contributions", h.contributions.HandleCreateContribution)
		admin.GET("/contributions", h.contributions.HandleOverview)
		admin.POST("/contributions/mark-paid", h.contributions.HandleMarkPaid)
	}

	// The initial password change is the only parent route reachable while
	// the temporary password is still in use.
	parent := s.Router.Group("/parents", gate, middleware.ResolveParent(s.Auth))
	{
		parent.POST("/change-password-initial", h.auth.HandleChangeInitialPassword)
	}

	gated := s.Router.Group("/parents", gate, middleware.ResolveParent(s.Auth), middleware.RequirePasswordChanged(s.Auth))
	{
		gated.GET("/me", h.me.HandleMe)
		gated.GET("/campaigns", h.me.HandleMyCampaigns)
		gated.GET("/contributions", h.me.HandleMyContributions)
		gated.POST("/contributions", h.me.HandleSubmitContribution)
	}

	s.Router.GET("/health", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Title = "Skarbek API"
	docs.SwaggerInfo.Description = "Class fund collection: campaigns, parents and their contributions."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
