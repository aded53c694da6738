package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/opencurrent/opencurrent/app/logic/v1"
	"github.com/opencurrent/opencurrent/app/response"
	"github.com/opencurrent/opencurrent/pkg/utils"
)

type SummarizeRequest struct {
	URL string `json:"url" binding:"required,url"`
}

func (s *HttpSrv) Summarize(c *gin.Context) {
	var (
		err error
		req SummarizeRequest
	)

	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	timer := s.Core.Metrics().ApiResponseTimer("summarize")
	defer timer.ObserveDuration()

	logic := v1.NewSummaryLogic(c, s.Core)
	entity, err := logic.Summarize(req.URL)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, entity)
}
