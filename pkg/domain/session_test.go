package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSession(t *testing.T) {
	s := NewSession(1, []int64{10, 20, 10})

	assert.Equal(t, StepNone, s.Step)
	assert.Zero(t, s.Offset)
	assert.False(t, s.Criteria.Complete())
	assert.Len(t, s.Shown, 2)
	assert.True(t, s.HasShown(20))
	assert.False(t, s.HasShown(30))
}

func TestSession_Restart(t *testing.T) {
	s := NewSession(1, []int64{5})
	s.Step = StepFinal
	s.Offset = 15
	s.Criteria = Criteria{Age: IntPtr(30), Gender: IntPtr(GenderMale), City: IntPtr(1), Status: IntPtr(0)}
	s.PendingBatch = []Candidate{{ID: 6}}
	s.MarkShown(6)

	s.Restart()

	assert.Equal(t, StepAge, s.Step)
	assert.Zero(t, s.Offset)
	assert.Equal(t, Criteria{}, s.Criteria)
	assert.Nil(t, s.PendingBatch)
	assert.True(t, s.HasShown(5))
	assert.True(t, s.HasShown(6))
}

func TestSession_CloneIsDeep(t *testing.T) {
	s := NewSession(1, []int64{1})
	s.Criteria.Age = IntPtr(20)
	s.PendingBatch = []Candidate{{ID: 1}}

	c := s.Clone()
	c.MarkShown(2)
	*c.Criteria.Age = 40
	c.PendingBatch[0].ID = 99

	assert.False(t, s.HasShown(2))
	assert.Equal(t, 20, *s.Criteria.Age)
	assert.Equal(t, int64(1), s.PendingBatch[0].ID)
}

func TestCandidateRendering(t *testing.T) {
	c := Candidate{ID: 123}
	assert.Equal(t, "https://vk.com/id123", c.ProfileURL())

	refs := []MediaRef{{OwnerID: 123, ID: 1}, {OwnerID: 123, ID: 2, Likes: 3, Comments: 4}}
	assert.Equal(t, "photo123_1,photo123_2", Attachments(refs))
	assert.Equal(t, 7, refs[1].Popularity())
	assert.Equal(t, "", Attachments(nil))
}

func TestLifecycleHooks_NilSafe(t *testing.T) {
	var h LifecycleHooks
	assert.NotPanics(t, func() {
		h.Transition(context.Background(), &TransitionEvent{})
		h.Pipeline(context.Background(), &PipelineEvent{})
		h.Directory(context.Background(), &DirectoryEvent{})
	})
}

func TestMergeHooks(t *testing.T) {
	var calls []string
	a := LifecycleHooks{OnPipeline: func(context.Context, *PipelineEvent) { calls = append(calls, "a") }}
	b := LifecycleHooks{
		OnPipeline:   func(context.Context, *PipelineEvent) { calls = append(calls, "b") },
		OnTransition: func(context.Context, *TransitionEvent) { calls = append(calls, "b-transition") },
	}

	merged := MergeHooks(a, LifecycleHooks{}, b)
	merged.Pipeline(context.Background(), &PipelineEvent{})
	merged.Transition(context.Background(), &TransitionEvent{})
	merged.Directory(context.Background(), &DirectoryEvent{})

	assert.Equal(t, []string{"a", "b", "b-transition"}, calls)
}
