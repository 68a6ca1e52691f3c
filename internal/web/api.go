package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roach88/numberdesk/internal/desk"
	"github.com/roach88/numberdesk/internal/record"
)

// Error codes in JSON error bodies.
const (
	codeInvalidRequest       = "invalid_request"
	codeRowNotFound          = "row_not_found"
	codeConfirmationRequired = "confirmation_required"
	codeUpdateFailed         = "update_failed"
	codeFetchFailed          = "fetch_failed"
	codeRateLimited          = "rate_limited"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: code, Message: message})
}

func (s *Server) handleRows(c *gin.Context) {
	p, err := parseParams(c.Request.URL.Query(), s.pageSize)
	if err != nil {
		abortError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, s.desk.Query(p))
}

type statusRequest struct {
	Status    string `json:"status" binding:"required"`
	Confirmed bool   `json:"confirmed"`
}

func (s *Server) handleStatus(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortError(c, http.StatusBadRequest, codeInvalidRequest, "row index must be an integer")
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	status, err := record.ParseStatus(req.Status)
	if err != nil {
		abortError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	// The browser asks the user before sending; the server only checks
	// that it did.
	if desk.NeedsConfirmation(status) && !req.Confirmed {
		abortError(c, http.StatusConflict, codeConfirmationRequired,
			"Are you sure you want to change the status to "+string(status)+"?")
		return
	}

	change, err := s.desk.RequestStatusChange(c.Request.Context(), index, status, desk.Confirmed(req.Confirmed))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, change)
	case errors.Is(err, desk.ErrRowNotFound):
		abortError(c, http.StatusNotFound, codeRowNotFound, err.Error())
	case errors.Is(err, desk.ErrDeclined):
		abortError(c, http.StatusConflict, codeConfirmationRequired, err.Error())
	default:
		slog.Debug("status change failed", "row", index, "error", err)
		abortError(c, http.StatusBadGateway, codeUpdateFailed, desk.MsgUpdateFailed)
	}
}

func (s *Server) handleRefresh(c *gin.Context) {
	if err := s.desk.Refresh(c.Request.Context()); err != nil {
		abortError(c, http.StatusBadGateway, codeFetchFailed, desk.MsgLoadFailed)
		return
	}
	c.JSON(http.StatusOK, s.desk.Status())
}

type noticesResponse struct {
	Active  []desk.Notice `json:"active"`
	History []desk.Notice `json:"history"`
}

func (s *Server) handleNotices(c *gin.Context) {
	n := s.desk.Notices()
	resp := noticesResponse{Active: n.Active(), History: n.History()}
	if resp.History == nil {
		resp.History = []desk.Notice{}
	}
	c.JSON(http.StatusOK, resp)
}

type healthResponse struct {
	Status string      `json:"status"`
	Desk   desk.Status `json:"desk"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Desk: s.desk.Status()})
}
