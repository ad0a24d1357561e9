package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"rumbo/internal/models/db_models"
	"rumbo/internal/models/request_models"
	"rumbo/internal/models/response_models"
	"rumbo/internal/repositories"
	"rumbo/pkg/utils"
)

type TravelerTestServiceInterface interface {
	ListQuestions(ctx context.Context) ([]response_models.QuestionResponse, error)
	StartTest(ctx context.Context, userID string) (*response_models.StartedTestResponse, error)
	ScoreTest(ctx context.Context, testID uuid.UUID) (map[uuid.UUID]int, error)
	Classify(ctx context.Context, testID uuid.UUID) (uuid.UUID, error)
	SubmitAndComplete(ctx context.Context, testID uuid.UUID, answers map[string]request_models.AnswerSelection) (*response_models.TravelerTestResponse, error)
}

type TravelerTestService struct {
	repo repositories.TravelerTestRepository
}

func NewTravelerTestService(repo repositories.TravelerTestRepository) TravelerTestServiceInterface {
	return &TravelerTestService{repo: repo}
}

func (s *TravelerTestService) ListQuestions(ctx context.Context) ([]response_models.QuestionResponse, error) {
	questions, err := s.repo.ListQuestions(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	responses := make([]response_models.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		options := make([]response_models.QuestionOptionResponse, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, response_models.QuestionOptionResponse{
				ID:          o.ID.String(),
				Text:        o.Text,
				Description: o.Description,
			})
		}
		responses = append(responses, response_models.QuestionResponse{
			ID:          q.ID.String(),
			Text:        q.Text,
			Order:       q.Order,
			Category:    q.Category,
			MultiSelect: q.MultiSelect,
			Options:     options,
		})
	}
	return responses, nil
}

func (s *TravelerTestService) StartTest(ctx context.Context, userID string) (*response_models.StartedTestResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", utils.ErrValidation)
	}

	test, err := s.repo.StartTest(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &response_models.StartedTestResponse{
		TestID:    test.ID.String(),
		StartedAt: test.StartedAt,
	}, nil
}

// ScoreTest folds the stored answers of a test into a per-type score map.
// Types no answered option contributes to are omitted.
func (s *TravelerTestService) ScoreTest(ctx context.Context, testID uuid.UUID) (map[uuid.UUID]int, error) {
	test, err := s.repo.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if test == nil {
		return nil, fmt.Errorf("%w: traveler test %s", utils.ErrNotFound, testID)
	}

	answers, err := s.repo.GetActiveAnswers(ctx, testID)
	if err != nil {
		return nil, err
	}
	optionIDs := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		optionIDs = append(optionIDs, a.QuestionOptionID)
	}

	return s.scoreOptions(ctx, optionIDs)
}

func (s *TravelerTestService) scoreOptions(ctx context.Context, optionIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	if len(optionIDs) == 0 {
		return map[uuid.UUID]int{}, nil
	}

	scores, err := s.repo.GetScoresForOptions(ctx, optionIDs)
	if err != nil {
		return nil, err
	}

	byOption := make(map[uuid.UUID][]db_models.QuestionOptionScore)
	for _, score := range scores {
		byOption[score.QuestionOptionID] = append(byOption[score.QuestionOptionID], score)
	}

	result := make(map[uuid.UUID]int)
	for _, optionID := range optionIDs {
		for _, score := range byOption[optionID] {
			result[score.TravelerTypeID] += score.Score
		}
	}
	return result, nil
}

// Classify picks the winning type. The tiebreak is total: highest score,
// then earliest created type, then smallest id, so reruns on an unchanged
// test always agree.
func (s *TravelerTestService) Classify(ctx context.Context, testID uuid.UUID) (uuid.UUID, error) {
	scores, err := s.ScoreTest(ctx, testID)
	if err != nil {
		return uuid.Nil, err
	}

	types, err := s.repo.ListTravelerTypes(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	winner, ok := pickWinner(scores, types)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: answers produce no classification", utils.ErrValidation)
	}
	return winner, nil
}

// pickWinner selects the max-score type under the documented total order.
func pickWinner(scores map[uuid.UUID]int, types []db_models.TravelerType) (uuid.UUID, bool) {
	candidates := make([]db_models.TravelerType, 0, len(types))
	for _, t := range types {
		if _, ok := scores[t.ID]; ok {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return uuid.Nil, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		si, sj := scores[candidates[i].ID], scores[candidates[j].ID]
		if si != sj {
			return si > sj
		}
		if candidates[i].CreatedAt != candidates[j].CreatedAt {
			return candidates[i].CreatedAt < candidates[j].CreatedAt
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	return candidates[0].ID, true
}

func (s *TravelerTestService) SubmitAndComplete(ctx context.Context, testID uuid.UUID, answers map[string]request_models.AnswerSelection) (*response_models.TravelerTestResponse, error) {
	test, err := s.repo.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if test == nil {
		return nil, fmt.Errorf("%w: traveler test %s", utils.ErrNotFound, testID)
	}
	if test.CompletedAt != nil {
		return nil, fmt.Errorf("%w: test already completed", utils.ErrConcurrency)
	}

	optionIDs, err := s.validateAnswers(ctx, answers)
	if err != nil {
		return nil, err
	}

	// Score the submitted set directly; the winner depends only on the
	// chosen options, not on what is stored yet.
	scores, err := s.scoreOptions(ctx, optionIDs)
	if err != nil {
		return nil, err
	}
	types, err := s.repo.ListTravelerTypes(ctx)
	if err != nil {
		return nil, err
	}
	winner, ok := pickWinner(scores, types)
	if !ok {
		return nil, fmt.Errorf("%w: answers produce no classification", utils.ErrValidation)
	}

	winnerType, err := s.repo.GetTravelerType(ctx, winner)
	if err != nil {
		return nil, err
	}
	if winnerType == nil {
		return nil, fmt.Errorf("%w: traveler type %s", utils.ErrNotFound, winner)
	}

	if err := s.repo.CompleteTest(ctx, testID, optionIDs, winner, winnerType.Preferences); err != nil {
		return nil, err
	}

	scoreMap := make(map[string]int, len(scores))
	for typeID, score := range scores {
		scoreMap[typeID.String()] = score
	}

	completed, err := s.repo.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	var completedAt int64
	if completed != nil && completed.CompletedAt != nil {
		completedAt = *completed.CompletedAt
	}

	return &response_models.TravelerTestResponse{
		TestID:      testID.String(),
		CompletedAt: completedAt,
		TravelerType: response_models.TravelerTypeResponse{
			ID:          winnerType.ID.String(),
			Name:        winnerType.Name,
			Description: winnerType.Description,
			Preferences: winnerType.Preferences,
		},
		Scores: scoreMap,
	}, nil
}

// validateAnswers checks existence, ownership and arity, returning the flat
// option-id list in question order.
func (s *TravelerTestService) validateAnswers(ctx context.Context, answers map[string]request_models.AnswerSelection) ([]uuid.UUID, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: no answers submitted", utils.ErrValidation)
	}

	questionIDs := make([]uuid.UUID, 0, len(answers))
	parsed := make(map[uuid.UUID][]uuid.UUID, len(answers))
	for rawQuestionID, selection := range answers {
		questionID, err := uuid.Parse(rawQuestionID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid question id %q", utils.ErrValidation, rawQuestionID)
		}
		if len(selection) == 0 {
			return nil, fmt.Errorf("%w: question %s has no selected option", utils.ErrValidation, rawQuestionID)
		}

		seen := make(map[uuid.UUID]bool, len(selection))
		options := make([]uuid.UUID, 0, len(selection))
		for _, rawOptionID := range selection {
			optionID, err := uuid.Parse(rawOptionID)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid option id %q", utils.ErrValidation, rawOptionID)
			}
			if seen[optionID] {
				continue
			}
			seen[optionID] = true
			options = append(options, optionID)
		}

		questionIDs = append(questionIDs, questionID)
		parsed[questionID] = options
	}

	questions, err := s.repo.GetQuestionsByIDs(ctx, questionIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]db_models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	// Stable iteration keeps the inserted answer order deterministic.
	sort.Slice(questionIDs, func(i, j int) bool {
		return questionIDs[i].String() < questionIDs[j].String()
	})

	flat := make([]uuid.UUID, 0, len(answers))
	for _, questionID := range questionIDs {
		question, ok := byID[questionID]
		if !ok {
			return nil, fmt.Errorf("%w: question %s", utils.ErrNotFound, questionID)
		}

		selected := parsed[questionID]
		if !question.MultiSelect && len(selected) != 1 {
			return nil, fmt.Errorf("%w: question %s accepts a single option", utils.ErrValidation, questionID)
		}

		owned := make(map[uuid.UUID]bool, len(question.Options))
		for _, o := range question.Options {
			owned[o.ID] = true
		}
		for _, optionID := range selected {
			if !owned[optionID] {
				return nil, fmt.Errorf("%w: option %s does not belong to question %s", utils.ErrValidation, optionID, questionID)
			}
		}

		flat = append(flat, selected...)
	}
	return flat, nil
}
