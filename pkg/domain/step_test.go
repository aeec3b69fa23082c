package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_NamesRoundTrip(t *testing.T) {
	for _, step := range Steps() {
		assert.True(t, step.Valid())
		parsed, err := ParseStep(step.String())
		require.NoError(t, err)
		assert.Equal(t, step, parsed)
	}

	_, err := ParseStep("nowhere")
	assert.Error(t, err)
	assert.Equal(t, "step(42)", Step(42).String())
	assert.False(t, Step(-1).Valid())
}

func TestStep_JSON(t *testing.T) {
	sess := NewSession(7, nil)
	sess.Step = StepCity

	data, err := json.Marshal(sess)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"step":"city"`)

	var back Session
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, StepCity, back.Step)

	_, err = json.Marshal(struct{ S Step }{S: Step(99)})
	assert.Error(t, err)
}
