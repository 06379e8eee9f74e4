package assignment

import (
	"context"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
)

type AssignmentService interface {
	Upsert(ctx context.Context, req UpsertAssignmentRequest) (AssignmentResponse, error)
	Delete(ctx context.Context, id int64, actor user.Actor) error
	GetByID(ctx context.Context, id int64) (AssignmentResponse, error)
	List(ctx context.Context, filter ListAssignmentsFilter) ([]AssignmentResponse, error)

	// RankCandidates orders every eligible employee for one slot.
	RankCandidates(ctx context.Context, req RankCandidatesRequest) ([]CandidateResponse, error)
	// Suggest proposes assignments for a day without persisting them.
	Suggest(ctx context.Context, req SuggestRequest) ([]SuggestionResponse, error)
	// AcceptSuggestions persists suggestions one by one through the conflict rules.
	AcceptSuggestions(ctx context.Context, req AcceptSuggestionsRequest) (AcceptSuggestionsResponse, error)
}
