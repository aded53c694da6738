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

type SaveKnowledgeRequest struct {
	Title             string   `json:"title" binding:"required"`
	Link              string   `json:"link" binding:"required,url"`
	Summary           string   `json:"summary" binding:"required"`
	SubjectName       string   `json:"subject_name"`
	PublicationDate   string   `json:"publication_date"`
	Location          string   `json:"location"`
	ContactEmails     []string `json:"contact_emails"`
	Organizations     []string `json:"organizations"`
	FinancialMentions []string `json:"financial_mentions"`
	Projects          []string `json:"projects"`
	Locations         []string `json:"locations"`
}

func (s *HttpSrv) SaveKnowledge(c *gin.Context) {
	var (
		err error
		req SaveKnowledgeRequest
	)

	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewKnowledgeLogic(c, s.Core)
	saved, err := logic.Save(types.KnowledgeEntry{
		Title:             req.Title,
		Link:              req.Link,
		Summary:           req.Summary,
		SubjectName:       req.SubjectName,
		PublicationDate:   req.PublicationDate,
		Location:          req.Location,
		ContactEmails:     req.ContactEmails,
		Organizations:     req.Organizations,
		FinancialMentions: req.FinancialMentions,
		Projects:          req.Projects,
		Locations:         req.Locations,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, saved)
}

func (s *HttpSrv) DeleteKnowledge(c *gin.Context) {
	id, exist := c.Params.Get("id")
	if !exist {
		response.APIError(c, errors.New("handler.DeleteKnowledge", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest))
		return
	}

	logic := v1.NewKnowledgeLogic(c, s.Core)
	if err := logic.Delete(id); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

type ListKnowledgeResponse struct {
	List []types.KnowledgeEntry `json:"list"`
}

func (s *HttpSrv) ListKnowledge(c *gin.Context) {
	logic := v1.NewKnowledgeLogic(c, s.Core)
	entries, err := logic.List()
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, ListKnowledgeResponse{List: entries})
}
