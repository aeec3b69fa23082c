package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/kinder/pkg/adapters/console"
	"github.com/aretw0/kinder/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListen_ReadsLines(t *testing.T) {
	c := console.New(strings.NewReader("hi\n  \n21\n"), &bytes.Buffer{}, console.WithUserID(9))
	out := make(chan domain.Event, 3)

	require.NoError(t, c.Listen(context.Background(), out))
	close(out)

	var got []domain.Event
	for ev := range out {
		got = append(got, ev)
	}
	require.Len(t, got, 3)
	assert.Equal(t, domain.Event{UserID: 9, Text: "hi", FromUser: true, ToBot: true, HasText: true}, got[0])
	assert.False(t, got[1].HasText)
	assert.True(t, got[2].Direct())
}

func TestListen_StopsOnCancel(t *testing.T) {
	c := console.New(strings.NewReader("a\nb\nc\n"), &bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan domain.Event) // nobody reads

	done := make(chan error, 1)
	go func() { done <- c.Listen(ctx, out) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Listen did not return")
	}
}

func TestSend_PlainProfile(t *testing.T) {
	var buf bytes.Buffer
	c := console.New(strings.NewReader(""), &buf, console.WithProfile(termenv.Ascii))

	media := []domain.MediaRef{{OwnerID: 4, ID: 1}}
	require.NoError(t, c.Send(context.Background(), console.LocalUser, "line one\nline two", media))

	assert.Equal(t, "kinder> line one\n        line two\n  attachments: photo4_1\n", buf.String())
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	console.New(strings.NewReader(""), &buf, console.WithProfile(termenv.Ascii)).PrintBanner()
	assert.Contains(t, buf.String(), "Ctrl+D")
}
