package pipeline_test

import (
	"context"
	"testing"

	"github.com/aretw0/kinder/internal/testutils"
	"github.com/aretw0/kinder/pkg/adapters/memory"
	"github.com/aretw0/kinder/pkg/domain"
	"github.com/aretw0/kinder/pkg/messages"
	"github.com/aretw0/kinder/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const user = int64(1000)

func readySession(step domain.Step, history ...int64) *domain.Session {
	sess := domain.NewSession(user, history)
	sess.Step = step
	sess.Criteria = domain.Criteria{
		Age:    domain.IntPtr(25),
		Gender: domain.IntPtr(domain.GenderFemale),
		City:   domain.IntPtr(1),
		Status: domain.IntPtr(2),
	}
	return sess
}

func publicProfiles(ids ...int64) []domain.Candidate {
	out := make([]domain.Candidate, len(ids))
	for i, id := range ids {
		out[i] = domain.Candidate{ID: id}
	}
	return out
}

type fixture struct {
	dir     *memory.Directory
	history *memory.HistoryStore
	sender  *testutils.RecordingSender
	p       *pipeline.Pipeline
}

func newFixture(dir *memory.Directory, cfg pipeline.Config) *fixture {
	f := &fixture{
		dir:     dir,
		history: memory.NewHistoryStore(),
		sender:  &testutils.RecordingSender{},
	}
	cfg.DeliveryDelay = 0
	f.p = pipeline.New(f.dir, f.history, f.sender, pipeline.WithConfig(cfg))
	return f
}

func TestRun_SkipsKnownCandidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(memory.NewDirectory(publicProfiles(11, 12, 13), nil), pipeline.DefaultConfig())
	require.NoError(t, f.history.AppendHistory(ctx, user, []int64{12}))

	sess := readySession(domain.StepStatus, 12)
	res, err := f.p.Run(ctx, sess)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeDelivered, res.Outcome)
	assert.Len(t, res.Delivered, 2)
	assert.Equal(t, pipeline.DefaultBatchSize, sess.Offset, "offset advances by the batch size, not the candidate count")
	assert.Equal(t, domain.StepFinal, sess.Step)

	stored, err := f.history.ReadHistory(ctx, user)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{11, 12, 13}, stored)
	assert.True(t, sess.HasShown(11))
	assert.True(t, sess.HasShown(13))

	texts := f.sender.Texts(user)
	require.Len(t, texts, 3)
	assert.Equal(t, messages.Default().FirstBatch, texts[0])
	assert.Equal(t, "https://vk.com/id11", texts[1])
	assert.Equal(t, "https://vk.com/id13", texts[2])
}

func TestRun_NextBatchIntro(t *testing.T) {
	f := newFixture(memory.NewDirectory(publicProfiles(1, 2), nil), pipeline.DefaultConfig())
	sess := readySession(domain.StepFinal)
	sess.PendingBatch = publicProfiles(9)

	_, err := f.p.Run(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, messages.Default().NextBatch, f.sender.Texts(user)[0])
}

func TestRun_FirstDeliveryAfterExhaustedPageKeepsInstructions(t *testing.T) {
	ctx := context.Background()
	page := []domain.Candidate{{ID: 1, IsPrivate: true}, {ID: 2, IsPrivate: true}, {ID: 3}}
	f := newFixture(memory.NewDirectory(page, nil), pipeline.Config{BatchSize: 2, PageSize: 2, MediaCount: 0})

	sess := readySession(domain.StepStatus)
	res, err := f.p.Run(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeExhaustedPage, res.Outcome)
	require.Equal(t, domain.StepFinal, sess.Step)

	f.sender.Reset()
	res, err = f.p.Run(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeDelivered, res.Outcome)
	assert.Equal(t, []string{messages.Default().FirstBatch, "https://vk.com/id3"}, f.sender.Texts(user))
}

func TestRun_DirectoryError(t *testing.T) {
	ctx := context.Background()
	dir := memory.NewDirectory(publicProfiles(1, 2, 3), nil)
	dir.SetSearchError(testutils.ErrUnavailable)
	f := newFixture(dir, pipeline.DefaultConfig())

	sess := readySession(domain.StepStatus)
	sess.Offset = 10

	res, err := f.p.Run(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDirectoryError, res.Outcome)
	assert.Equal(t, domain.StepStatus, sess.Step)
	assert.Equal(t, 10, sess.Offset)
	assert.Equal(t, []string{messages.Default().DirectoryDown}, f.sender.Texts(user))

	stored, _ := f.history.ReadHistory(ctx, user)
	assert.Empty(t, stored)
}

func TestRun_NoResults(t *testing.T) {
	t.Run("from status", func(t *testing.T) {
		f := newFixture(memory.NewDirectory(nil, nil), pipeline.DefaultConfig())
		sess := readySession(domain.StepStatus)

		res, err := f.p.Run(context.Background(), sess)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNoResults, res.Outcome)
		assert.Equal(t, domain.StepStatus, sess.Step)
		assert.Equal(t, 0, sess.Offset)
		assert.Equal(t, messages.Default().NotFound, f.sender.Last(user))
	})

	t.Run("from final", func(t *testing.T) {
		f := newFixture(memory.NewDirectory(publicProfiles(1), nil), pipeline.DefaultConfig())
		sess := readySession(domain.StepFinal)
		sess.Offset = 5

		res, err := f.p.Run(context.Background(), sess)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNoResults, res.Outcome)
		assert.Equal(t, domain.StepAgain, sess.Step)
		assert.Equal(t, 5, sess.Offset)
		assert.Equal(t, messages.Default().NoMoreResults, f.sender.Last(user))
	})
}

func TestRun_ExhaustedPageAdvancesOffset(t *testing.T) {
	ctx := context.Background()
	page := []domain.Candidate{{ID: 1}, {ID: 2, IsPrivate: true}, {ID: 3}}
	f := newFixture(memory.NewDirectory(page, nil), pipeline.DefaultConfig())

	sess := readySession(domain.StepFinal, 1, 3)
	res, err := f.p.Run(ctx, sess)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeExhaustedPage, res.Outcome)
	assert.Equal(t, pipeline.DefaultBatchSize, sess.Offset)
	assert.Equal(t, domain.StepFinal, sess.Step)
	assert.Equal(t, []string{messages.Default().PageExhausted}, f.sender.Texts(user))

	stored, _ := f.history.ReadHistory(ctx, user)
	assert.Empty(t, stored, "nothing is persisted when nothing is delivered")
}

func TestRun_StorageErrorSkipsDelivery(t *testing.T) {
	history := &testutils.FailingHistory{AppendErr: testutils.ErrUnavailable}
	sender := &testutils.RecordingSender{}
	p := pipeline.New(memory.NewDirectory(publicProfiles(1, 2), nil), history, sender,
		pipeline.WithConfig(pipeline.Config{DeliveryDelay: 0}))

	sess := readySession(domain.StepStatus)
	res, err := p.Run(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeStorageError, res.Outcome)
	assert.Equal(t, 0, sess.Offset)
	assert.Equal(t, domain.StepStatus, sess.Step)
	assert.False(t, sess.HasShown(1))
	assert.Equal(t, []string{messages.Default().Internal}, sender.Texts(user))
}

func TestRun_MediaRanking(t *testing.T) {
	media := map[int64][]domain.MediaRef{
		7: {
			{OwnerID: 7, ID: 1, Likes: 1},
			{OwnerID: 7, ID: 2, Likes: 10, Comments: 5},
			{OwnerID: 7, ID: 3, Likes: 3},
			{OwnerID: 7, ID: 4, Likes: 12},
		},
	}
	f := newFixture(memory.NewDirectory(publicProfiles(7, 8), media), pipeline.DefaultConfig())

	res, err := f.p.Run(context.Background(), readySession(domain.StepStatus))
	require.NoError(t, err)
	require.Len(t, res.Delivered, 2)

	assert.Equal(t, "photo7_2,photo7_4,photo7_3", domain.Attachments(res.Delivered[0].Media))
	assert.Empty(t, res.Delivered[1].Media, "candidates without photos are still delivered")

	msgs := f.sender.Messages()
	require.Len(t, msgs, 3)
	assert.Len(t, msgs[1].Media, 3)
}

func TestRun_MediaErrorStillDelivers(t *testing.T) {
	dir := memory.NewSampleDirectory(4)
	dir.SetMediaError(testutils.ErrUnavailable)
	f := newFixture(dir, pipeline.DefaultConfig())

	res, err := f.p.Run(context.Background(), readySession(domain.StepStatus))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDelivered, res.Outcome)
	for _, c := range res.Delivered {
		assert.Empty(t, c.Media)
	}
}

// panickyMedia is a directory whose media lookups blow up.
type panickyMedia struct {
	*memory.Directory
}

func (panickyMedia) TopMedia(context.Context, int64, int) ([]domain.MediaRef, error) {
	panic("malformed photos payload")
}

func TestRun_MediaPanicIsAMediaFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(memory.NewSampleDirectory(4), pipeline.DefaultConfig())
	p := pipeline.New(panickyMedia{f.dir}, f.history, f.sender, pipeline.WithConfig(pipeline.Config{DeliveryDelay: 0}))

	sess := readySession(domain.StepStatus)
	var (
		res pipeline.Result
		err error
	)
	require.NotPanics(t, func() { res, err = p.Run(ctx, sess) })
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeDelivered, res.Outcome)
	require.NotEmpty(t, res.Delivered)
	for _, c := range res.Delivered {
		assert.Empty(t, c.Media)
	}
	assert.Equal(t, domain.StepFinal, sess.Step)
	assert.True(t, sess.HasShown(res.Delivered[0].ID), "the session records what was persisted")
}

func TestRun_IncompleteCriteria(t *testing.T) {
	f := newFixture(memory.NewSampleDirectory(3), pipeline.DefaultConfig())
	sess := domain.NewSession(user, nil)
	sess.Step = domain.StepStatus

	_, err := f.p.Run(context.Background(), sess)
	assert.ErrorIs(t, err, domain.ErrIncompleteCriteria)
	assert.Empty(t, f.dir.Searches())
}

func TestRun_NoRepeatAcrossRuns(t *testing.T) {
	ctx := context.Background()
	// Page size larger than batch size: consecutive pages overlap.
	f := newFixture(memory.NewSampleDirectory(60), pipeline.Config{BatchSize: 5, PageSize: 15})

	sess := readySession(domain.StepStatus)
	delivered := map[int64]int{}
	successful := 0
	for i := 0; i < 20; i++ {
		res, err := f.p.Run(ctx, sess)
		require.NoError(t, err)
		if res.Outcome == domain.OutcomeDelivered {
			successful++
		}
		for _, c := range res.Delivered {
			delivered[c.ID]++
		}
		if sess.Step == domain.StepAgain {
			break
		}
	}

	for id, n := range delivered {
		assert.Equal(t, 1, n, "candidate %d delivered %d times", id, n)
	}

	stored, err := f.history.ReadHistory(ctx, user)
	require.NoError(t, err)
	ids := make([]int64, 0, len(delivered))
	for id := range delivered {
		ids = append(ids, id)
	}
	assert.ElementsMatch(t, ids, stored)
	assert.Greater(t, successful, 1)
}

func TestRun_PaginationMonotonic(t *testing.T) {
	f := newFixture(memory.NewDirectory(publicProfiles(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12), nil),
		pipeline.Config{BatchSize: 3, PageSize: 3})

	sess := readySession(domain.StepStatus)
	for n := 1; n <= 4; n++ {
		res, err := f.p.Run(context.Background(), sess)
		require.NoError(t, err)
		require.Equal(t, domain.OutcomeDelivered, res.Outcome)
		assert.Equal(t, n*3, sess.Offset)
	}

	searches := f.dir.Searches()
	require.Len(t, searches, 4)
	for i, call := range searches {
		assert.Equal(t, i*3, call.Offset)
		assert.Equal(t, 3, call.Count)
	}
}
