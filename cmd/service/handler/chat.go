package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/opencurrent/opencurrent/app/logic/v1"
	"github.com/opencurrent/opencurrent/app/response"
	"github.com/opencurrent/opencurrent/pkg/utils"
)

type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Question  string `json:"question" binding:"required"`
}

func (s *HttpSrv) Chat(c *gin.Context) {
	var (
		err error
		req ChatRequest
	)

	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	timer := s.Core.Metrics().ApiResponseTimer("chat")
	defer timer.ObserveDuration()

	logic := v1.NewChatLogic(c, s.Core)
	answer, err := logic.Answer(req.SessionID, req.Question)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, answer)
}
