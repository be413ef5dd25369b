package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dadosgov/cnpq-api/internal/middleware"
	"github.com/dadosgov/cnpq-api/internal/service"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Beneficiaries *BeneficiaryHandler
	Institutions  *InstitutionHandler
	Programs      *ProgramHandler
	Payments      *PaymentHandler
	Metrics       *service.MetricsService
	AuthService   *service.AuthService
}

// RegisterRoutes mounts the API surface on the engine. All record routes
// require a valid token; mutations additionally require the admin role.
func RegisterRoutes(r *gin.Engine, apiPrefix string, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}

	api := r.Group(apiPrefix)

	authn := middleware.Auth(h.AuthService)
	admin := middleware.RequireAdmin()

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.GET("/me", authn, h.Auth.Me)
		auth.GET("/users", authn, admin, h.Auth.ListUsers)
	}

	beneficiaries := api.Group("/beneficiarios", authn)
	{
		beneficiaries.GET("", h.Beneficiaries.List)
		beneficiaries.GET("/export", admin, h.Beneficiaries.Export)
		beneficiaries.GET("/:id", h.Beneficiaries.Get)
		beneficiaries.POST("", admin, h.Beneficiaries.Create)
		beneficiaries.PUT("/:id", admin, h.Beneficiaries.Update)
		beneficiaries.DELETE("/:id", admin, h.Beneficiaries.Delete)
	}

	institutions := api.Group("/instituicoes", authn)
	{
		institutions.GET("", h.Institutions.List)
		institutions.GET("/stats", h.Institutions.Stats)
		institutions.GET("/export", admin, h.Institutions.Export)
		institutions.GET("/:id", h.Institutions.Get)
		institutions.POST("", admin, h.Institutions.Create)
		institutions.PUT("/:id", admin, h.Institutions.Update)
		institutions.DELETE("/:id", admin, h.Institutions.Delete)
	}

	programs := api.Group("/programas", authn)
	{
		programs.GET("", h.Programs.List)
		programs.GET("/stats", h.Programs.Stats)
		programs.GET("/export", admin, h.Programs.Export)
		programs.GET("/:id", h.Programs.Get)
		programs.POST("", admin, h.Programs.Create)
		programs.PUT("/:id", admin, h.Programs.Update)
		programs.DELETE("/:id", admin, h.Programs.Delete)
	}

	payments := api.Group("/pagamentos", authn)
	{
		payments.GET("", h.Payments.List)
		payments.GET("/stats", h.Payments.Stats)
		payments.GET("/export", admin, h.Payments.Export)
		payments.GET("/beneficiario/:id", h.Payments.ListByBeneficiary)
		payments.GET("/instituicao/:id", h.Payments.ListByInstitution)
		payments.GET("/programa/:id", h.Payments.ListByProgram)
		payments.GET("/:id", h.Payments.Get)
		payments.POST("", admin, h.Payments.Create)
		payments.PUT("/:id", admin, h.Payments.Update)
		payments.DELETE("/:id", admin, h.Payments.Delete)
	}
}
