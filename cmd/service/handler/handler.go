package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/opencurrent/opencurrent/app/core"
	"github.com/opencurrent/opencurrent/app/logic/v1/process"
)

// HttpSrv HTTP服务结构
type HttpSrv struct {
	Core    *core.Core
	Engine  *gin.Engine
	Process *process.IngestProcess
}
