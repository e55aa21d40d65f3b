package qnarepo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/prepnest/prepnest/internal/domain/qna"
)

func TestMemoryQuestionRepository_Find(t *testing.T) {
	repo := NewMemoryQuestionRepository()
	ctx := context.Background()

	now := time.Now().UTC()
	math := qna.Question{ID: uuid.New(), Title: "Q1", Description: "D1", Category: "math", Tags: []string{"algebra"}, CreatedAt: now}
	physics := qna.Question{ID: uuid.New(), Title: "Q2", Description: "D2", Category: "physics", Tags: []string{"optics", "light"}, CreatedAt: now.Add(time.Second)}
	untagged := qna.Question{ID: uuid.New(), Title: "Q3", Description: "D3", CreatedAt: now.Add(2 * time.Second)}
	for _, q := range []qna.Question{math, physics, untagged} {
		require.NoError(t, repo.Create(ctx, q))
	}

	all, err := repo.Find(ctx, qna.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, math.ID, all[0].ID, "ordered by creation time")

	byCategory, err := repo.Find(ctx, qna.Filter{Category: "math"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	require.Equal(t, math.ID, byCategory[0].ID)

	byTags, err := repo.Find(ctx, qna.Filter{Tags: []string{"light", "sound"}})
	require.NoError(t, err)
	require.Len(t, byTags, 1)
	require.Equal(t, physics.ID, byTags[0].ID)

	none, err := repo.Find(ctx, qna.Filter{Category: "math", Tags: []string{"optics"}})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestMemoryQuestionRepository_AppendAnswerConcurrent(t *testing.T) {
	repo := NewMemoryQuestionRepository()
	ctx := context.Background()

	question := qna.Question{ID: uuid.New(), Title: "Q", Description: "D", Answers: []uuid.UUID{}}
	require.NoError(t, repo.Create(ctx, question))

	const writers = 32
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_ = repo.AppendAnswer(ctx, question.ID, uuid.New())
		}()
	}
	wg.Wait()

	got, found, err := repo.FindByID(ctx, question.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got.Answers, writers, "no append may be lost")
}

func TestMemoryQuestionRepository_SetAcceptedAnswer(t *testing.T) {
	repo := NewMemoryQuestionRepository()
	ctx := context.Background()

	question := qna.Question{ID: uuid.New(), Title: "Q", Description: "D"}
	require.NoError(t, repo.Create(ctx, question))
	first := uuid.New()
	second := uuid.New()

	require.ErrorIs(t, repo.SetAcceptedAnswer(ctx, uuid.New(), first), qna.ErrNotFound)

	require.NoError(t, repo.SetAcceptedAnswer(ctx, question.ID, first))
	require.NoError(t, repo.SetAcceptedAnswer(ctx, question.ID, first), "same answer is idempotent")
	require.ErrorIs(t, repo.SetAcceptedAnswer(ctx, question.ID, second), qna.ErrAnswerConflict)

	got, _, err := repo.FindByID(ctx, question.ID)
	require.NoError(t, err)
	require.Equal(t, first, *got.AcceptedAnswer)
}

func TestMemoryQuestionRepository_CopiesRecords(t *testing.T) {
	repo := NewMemoryQuestionRepository()
	ctx := context.Background()

	question := qna.Question{ID: uuid.New(), Title: "Q", Description: "D", Tags: []string{"a"}}
	require.NoError(t, repo.Create(ctx, question))

	got, _, err := repo.FindByID(ctx, question.ID)
	require.NoError(t, err)
	got.Tags[0] = "mutated"
	got.Answers = append(got.Answers, uuid.New())

	fresh, _, err := repo.FindByID(ctx, question.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, fresh.Tags)
	require.Empty(t, fresh.Answers)
}

func TestMemoryAnswerRepository(t *testing.T) {
	repo := NewMemoryAnswerRepository()
	ctx := context.Background()

	first := qna.Answer{ID: uuid.New(), Question: uuid.New(), AnswerText: "A1"}
	second := qna.Answer{ID: uuid.New(), Question: first.Question, AnswerText: "A2"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	// ListByIDs preserves the requested ordering and skips unknown ids
	got, err := repo.ListByIDs(ctx, []uuid.UUID{second.ID, uuid.New(), first.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "A2", got[0].AnswerText)
	require.Equal(t, "A1", got[1].AnswerText)

	require.ErrorIs(t, repo.MarkAccepted(ctx, uuid.New()), qna.ErrNotFound)
	require.NoError(t, repo.MarkAccepted(ctx, first.ID))
	require.NoError(t, repo.MarkAccepted(ctx, first.ID), "idempotent at the storage layer")

	answer, found, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, answer.IsAccepted)
}
