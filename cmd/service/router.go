package service

import (
	"github.com/gin-gonic/gin"

	"github.com/opencurrent/opencurrent/app/core"
	"github.com/opencurrent/opencurrent/app/logic/v1/process"
	"github.com/opencurrent/opencurrent/app/response"
	"github.com/opencurrent/opencurrent/cmd/service/handler"
	"github.com/opencurrent/opencurrent/cmd/service/middleware"
	"github.com/opencurrent/opencurrent/pkg/metrics"
)

func serve(core *core.Core, proc *process.IngestProcess) {
	httpSrv := &handler.HttpSrv{
		Core:    core,
		Engine:  core.HttpEngine(),
		Process: proc,
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func GetIPLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string) gin.HandlerFunc {
		return middleware.UseLimit(appCore, key, func(c *gin.Context) string {
			return key + ":" + c.ClientIP()
		})
	}
}

func setupHttpRouter(s *handler.HttpSrv) {
	ipLimit := GetIPLimitBuilder(s.Core)

	s.Engine.Use(gin.Recovery())
	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.ErrorCounter(s.Core))

	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	apiV1 := s.Engine.Group("/api/v1")
	{
		apiV1.POST("/ingest", ipLimit("ingest"), s.StartIngest)
		apiV1.GET("/ingest/:session/status", s.IngestStatus)
		apiV1.POST("/chat", ipLimit("chat"), s.Chat)
		apiV1.POST("/summarize", ipLimit("summarize"), s.Summarize)
		apiV1.POST("/search", ipLimit("search"), s.Search)
		apiV1.GET("/history", s.ListHistory)

		knowledge := apiV1.Group("/knowledge")
		{
			knowledge.POST("", s.SaveKnowledge)
			knowledge.GET("/list", s.ListKnowledge)
			knowledge.DELETE("/:id", s.DeleteKnowledge)
		}
	}
}
