package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/opencurrent/opencurrent/app/logic/v1"
	"github.com/opencurrent/opencurrent/app/response"
	"github.com/opencurrent/opencurrent/pkg/types"
	"github.com/opencurrent/opencurrent/pkg/utils"
)

type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

type SearchResponse struct {
	Results []types.SearchResult `json:"results"`
}

func (s *HttpSrv) Search(c *gin.Context) {
	var (
		err error
		req SearchRequest
	)

	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewSearchLogic(c, s.Core)
	results, err := logic.Search(req.Query)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, SearchResponse{Results: results})
}
