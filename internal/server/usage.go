package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/usageworks/accounting/internal/auth"
	beventdomain "github.com/usageworks/accounting/internal/billingevent/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

type eventView struct {
	UUID       string  `json:"uuid"`
	EventStart string  `json:"event_start"`
	EventEnd   string  `json:"event_end"`
	Item       string  `json:"item"`
	Workspace  string  `json:"workspace"`
	Quantity   float64 `json:"quantity"`
	User       *string `json:"user"`
}

func renderEvents(events []beventdomain.Event) []eventView {
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		var user *string
		if e.User != nil {
			s := e.User.String()
			user = &s
		}
		out = append(out, eventView{
			UUID:       e.UUID.String(),
			EventStart: e.EventStart.UTC().Format(timeLayout),
			EventEnd:   e.EventEnd.UTC().Format(timeLayout),
			Item:       e.SKU,
			Workspace:  e.Workspace,
			Quantity:   e.Quantity,
			User:       user,
		})
	}
	return out
}

// Responses differ per token, so shared caches must key on the token.
func setScopedCacheHeaders(c *gin.Context) {
	c.Header("Vary", "Cookie,Authorization,Accept-Encoding")
	c.Header("Cache-Control", "private,max-age=5")
}

func (s *Server) GetWorkspaceUsage(c *gin.Context) {
	claims, err := auth.ParseBearer(c.GetHeader("Authorization"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	workspace := c.Param("workspace")
	if !claims.CanReadWorkspace(workspace) {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	params, err := parseUsageParams(c, true)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	events, err := s.eventSvc.Find(c.Request.Context(), beventdomain.Query{
		Workspace:   &workspace,
		Start:       params.Start,
		End:         params.End,
		After:       params.After,
		Limit:       params.Limit,
		Aggregation: params.Aggregation,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	setScopedCacheHeaders(c)
	c.JSON(http.StatusOK, renderEvents(events))
}

func (s *Server) GetAccountUsage(c *gin.Context) {
	claims, err := auth.ParseBearer(c.GetHeader("Authorization"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	account, err := uuid.Parse(c.Param("account_id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if !claims.CanReadAccount(account) {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	params, err := parseUsageParams(c, false)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	events, err := s.eventSvc.Find(c.Request.Context(), beventdomain.Query{
		Account: &account,
		Start:   params.Start,
		End:     params.End,
		After:   params.After,
		Limit:   params.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	setScopedCacheHeaders(c)
	c.JSON(http.StatusOK, renderEvents(events))
}
