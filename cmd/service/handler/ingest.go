package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/opencurrent/opencurrent/app/logic/v1"
	"github.com/opencurrent/opencurrent/app/response"
	"github.com/opencurrent/opencurrent/pkg/errors"
	"github.com/opencurrent/opencurrent/pkg/i18n"
	"github.com/opencurrent/opencurrent/pkg/types"
	"github.com/opencurrent/opencurrent/pkg/utils"
)

type StartIngestRequest struct {
	URL string `json:"url" binding:"required,url"`
}

type StartIngestResponse struct {
	SessionID string             `json:"session_id"`
	Status    types.IngestStatus `json:"status"`
	Message   string             `json:"message"`
}

func (s *HttpSrv) StartIngest(c *gin.Context) {
	var (
		err error
		req StartIngestRequest
	)

	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewIngestLogic(c, s.Core, s.Process)
	receipt, err := logic.StartIngest(req.URL)
	if err != nil {
		response.APIError(c, err)
		return
	}

	l := response.InjectResponseLocalizer(c)
	lang := response.GetLangFromRequestOrDefault(c)
	messageKey := i18n.MESSAGE_INGEST_STARTED
	if receipt.Already {
		messageKey = i18n.MESSAGE_ALREADY_INGESTED
	}

	response.APISuccess(c, StartIngestResponse{
		SessionID: receipt.SessionID,
		Status:    receipt.Status,
		Message:   l.Get(lang, messageKey),
	})
}

func (s *HttpSrv) IngestStatus(c *gin.Context) {
	sessionID, exist := c.Params.Get("session")
	if !exist {
		response.APIError(c, errors.New("handler.IngestStatus", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest))
		return
	}

	logic := v1.NewIngestLogic(c, s.Core, s.Process)
	result, err := logic.Status(sessionID)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, result)
}
