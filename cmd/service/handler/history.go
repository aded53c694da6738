package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/opencurrent/opencurrent/app/logic/v1"
	"github.com/opencurrent/opencurrent/app/response"
)

func (s *HttpSrv) ListHistory(c *gin.Context) {
	logic := v1.NewHistoryLogic(c, s.Core)
	doc, err := logic.List()
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, doc)
}
