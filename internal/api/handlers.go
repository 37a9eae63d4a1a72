package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type eventResponse struct {
	Seq       uint64             `json:"seq"`
	Ordinal   uint64             `json:"ordinal"`
	Timestamp uint64             `json:"timestamp"`
	Name      string             `json:"name"`
	Summary   string             `json:"summary"`
	Data      domain.ParsedEvent `json:"data"`
}

func toEventResponses(events []domain.EventEnvelope) []eventResponse {
	out := make([]eventResponse, len(events))
	for i, e := range events {
		out[i] = eventResponse{
			Seq:       e.Seq,
			Ordinal:   e.Ordinal,
			Timestamp: e.Timestamp,
			Name:      e.Event.ContractEventName(),
			Summary:   e.Event.String(),
			Data:      e.Event,
		}
	}
	return out
}

func renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrNotInitialized):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnknownProposal), errors.Is(err, domain.ErrOperationNotPending):
		status = http.StatusNotFound
	case domain.KindOf(err) != domain.KindUnknown:
		status = http.StatusBadRequest
	case strings.Contains(err.Error(), "ambiguous"):
		status = http.StatusBadRequest
	}
	resp := errorResponse{Error: err.Error()}
	if kind := domain.KindOf(err); kind != domain.KindUnknown {
		resp.Kind = kind.String()
	}
	c.JSON(status, resp)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) statusHandler(c *gin.Context) {
	sys, err := s.workspace.Open(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"addresses":   sys.Addresses(),
		"clock":       sys.Clock(),
		"settings":    sys.Settings(),
		"totalSupply": sys.TotalSupply(),
		"timelock":    sys.Timelock(),
		"boxValue":    sys.BoxValue(),
	})
}

// list proposals, optionally filtered by ?state=active,queued
func (s *Server) listProposalsHandler(c *gin.Context) {
	var params usecase.ListProposalsParams
	if raw := c.Query("state"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			state, err := models.ParseProposalState(part)
			if err != nil {
				c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			params.States = append(params.States, state)
		}
	}

	result, err := s.listProposals.Run(c.Request.Context(), params)
	if err != nil {
		renderError(c, err)
		return
	}
	proposals := result.Proposals
	if proposals == nil {
		proposals = []*models.ProposalView{}
	}
	c.JSON(http.StatusOK, gin.H{
		"proposals": proposals,
		"total":     result.Summary.Total,
		"byState":   result.Summary.ByState,
		"clock":     result.Clock,
	})
}

func (s *Server) proposalDetailsHandler(c *gin.Context) {
	result, err := s.showProposal.Run(c.Request.Context(), usecase.ShowProposalParams{
		Proposal:   c.Param("id"),
		WithEvents: true,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"proposal":              result.Proposal,
		"operation":             result.Operation,
		"clock":                 result.Clock,
		"totalSupplyAtSnapshot": result.TotalSupplyAtSnapshot,
		"events":                toEventResponses(result.Events),
	})
}

func (s *Server) listOperationsHandler(c *gin.Context) {
	pending := c.Query("pending") == "true"
	result, err := s.showTimelock.Run(c.Request.Context(), usecase.ShowTimelockParams{PendingOnly: pending})
	if err != nil {
		renderError(c, err)
		return
	}
	ops := result.Operations
	if ops == nil {
		ops = []*models.OperationView{}
	}
	c.JSON(http.StatusOK, gin.H{
		"timelock":   result.Timelock,
		"clock":      result.Clock,
		"operations": ops,
	})
}

func (s *Server) operationDetailsHandler(c *gin.Context) {
	result, err := s.showTimelock.Run(c.Request.Context(), usecase.ShowTimelockParams{Operation: c.Param("id")})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"operation": result.Operations[0],
		"clock":     result.Clock,
	})
}

func (s *Server) listRolesHandler(c *gin.Context) {
	result, err := s.listRoles.Run(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"timelock":         result.Timelock,
		"governor":         result.Governor,
		"members":          result.Members,
		"openExecution":    result.Anyone,
		"selfAdministered": result.SelfAdmin,
	})
}

// list events, filtered by ?name=, ?proposal=, ?after= and ?limit=
func (s *Server) listEventsHandler(c *gin.Context) {
	filter := domain.EventFilter{
		Name:       c.Query("name"),
		ProposalID: c.Query("proposal"),
	}
	if raw := c.Query("after"); raw != "" {
		after, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid after: " + raw})
			return
		}
		filter.AfterSeq = after
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid limit: " + raw})
			return
		}
		filter.Limit = limit
	}

	events, err := s.listEvents.Run(c.Request.Context(), usecase.ListEventsParams{Filter: filter})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": toEventResponses(events)})
}
