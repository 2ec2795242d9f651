package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/listenupapp/pagetrail-server/internal/domain"
)

func (s *Server) registerBadgeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBadges",
		Method:      http.MethodGet,
		Path:        "/api/v1/badges",
		Summary:     "List badges",
		Description: "Returns every badge a reader can earn, in evaluation order",
		Tags:        []string{"Badges"},
	}, s.handleListBadges)

	huma.Register(s.api, huma.Operation{
		OperationID: "evaluateBadges",
		Method:      http.MethodPost,
		Path:        "/api/v1/readers/{readerID}/badges/evaluate",
		Summary:     "Re-evaluate badges",
		Description: "Runs badge evaluation against the current catalog and saves new awards",
		Tags:        []string{"Badges"},
	}, s.handleEvaluateBadges)
}

// ListBadgesOutput wraps the badge catalog.
type ListBadgesOutput struct {
	Body struct {
		Badges []domain.BadgeDefinition `json:"badges" doc:"Badge definitions"`
	}
}

func (s *Server) handleListBadges(_ context.Context, _ *struct{}) (*ListBadgesOutput, error) {
	out := &ListBadgesOutput{}
	out.Body.Badges = domain.BadgeDefinitions
	return out, nil
}

// EvaluateBadgesInput identifies the reader to evaluate.
type EvaluateBadgesInput struct {
	ReaderID string `path:"readerID" doc:"Reader ID"`
}

// EvaluateBadgesResponse reports the badges granted by a re-evaluation.
type EvaluateBadgesResponse struct {
	Success   bool             `json:"success" doc:"Always true on success"`
	NewBadges []domain.BadgeID `json:"new_badges" doc:"Badges granted by this evaluation"`
	Reader    *domain.Reader   `json:"reader" doc:"Reader after evaluation"`
}

// EvaluateBadgesOutput wraps the evaluation response for Huma.
type EvaluateBadgesOutput struct {
	Body EvaluateBadgesResponse
}

func (s *Server) handleEvaluateBadges(ctx context.Context, input *EvaluateBadgesInput) (*EvaluateBadgesOutput, error) {
	reader, earned, err := s.services.Progress.EvaluateBadges(ctx, input.ReaderID)
	if err != nil {
		return nil, err
	}
	return &EvaluateBadgesOutput{
		Body: EvaluateBadgesResponse{
			Success:   true,
			NewBadges: nonNil(earned),
			Reader:    reader,
		},
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
