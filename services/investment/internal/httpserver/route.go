package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/authclient"
	"github.com/Skotchmaster/tradefund/pkg/metrics"
	authmw "github.com/Skotchmaster/tradefund/pkg/middleware/auth"
	"github.com/Skotchmaster/tradefund/pkg/roles"
)

type Deps struct {
	ProjectHandler    *ProjectHTTP
	InvestmentHandler *InvestmentHTTP
	DividendHandler   *DividendHTTP
	ReportHandler     *ReportHTTP
	JWTSecret         []byte
	AuthClient        *authclient.Client
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	metrics.Register(e)

	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)
	owner := authMW.RequireRoles(roles.ProjectOwner)
	ownerOrStaff := authMW.RequireRoles(append([]string{roles.ProjectOwner}, roles.InvestmentStaff...)...)
	investor := authMW.RequireRoles(roles.Investor)
	staff := authMW.RequireRoles(roles.InvestmentStaff...)

	g := e.Group("/investment")

	projects := g.Group("/projects")
	projects.GET("", d.ProjectHandler.ListPublic)
	projects.GET("/mine", d.ProjectHandler.ListMine, owner)
	projects.GET("/:id", d.ProjectHandler.GetProject, authMW.OptionalAuth)
	projects.POST("", d.ProjectHandler.CreateProject, owner)
	projects.PATCH("/:id", d.ProjectHandler.PatchProject, ownerOrStaff)
	projects.POST("/:id/submit", d.ProjectHandler.Transition("submit"), owner)
	projects.POST("/:id/close", d.ProjectHandler.Transition("close"), ownerOrStaff)
	projects.POST("/:id/investments", d.InvestmentHandler.Invest, investor)
	projects.GET("/:id/investments", d.InvestmentHandler.ListForProject, ownerOrStaff)
	projects.POST("/:id/dividends", d.DividendHandler.Distribute, ownerOrStaff)
	projects.GET("/:id/dividends", d.DividendHandler.ListForProject, authMW.RequireAuth)
	projects.POST("/:id/reports", d.ReportHandler.Create, owner)
	projects.GET("/:id/reports", d.ReportHandler.List, authMW.RequireAuth)

	investments := g.Group("/investments")
	investments.GET("/mine", d.InvestmentHandler.ListMine, investor)
	investments.GET("/:id", d.InvestmentHandler.Get, authMW.RequireAuth)

	g.GET("/payouts/mine", d.DividendHandler.MyPayouts, investor)

	reports := g.Group("/reports")
	reports.GET("/:id", d.ReportHandler.Get, authMW.RequireAuth)
	reports.PATCH("/:id", d.ReportHandler.Patch, ownerOrStaff)
	reports.DELETE("/:id", d.ReportHandler.Delete, ownerOrStaff)

	admin := g.Group("/admin", staff)
	admin.GET("/projects", d.ProjectHandler.ListForReview)
	admin.POST("/projects/:id/approve", d.ProjectHandler.Transition("approve"))
	admin.POST("/projects/:id/reject", d.ProjectHandler.Transition("reject"))
	admin.GET("/investments", d.InvestmentHandler.ListForReview)
	admin.POST("/investments/:id/confirm", d.InvestmentHandler.Confirm)
	admin.POST("/investments/:id/reject", d.InvestmentHandler.Reject)
}
