package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationTag(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		defaultTag string
		want       string
		wantPrompt string
	}{
		{"answer", "v3\n", "", "v3", "Enter migration_tag: "},
		{"answer trimmed", "  v3  \r\n", "", "v3", "Enter migration_tag: "},
		{"empty answer no default", "\n", "", "", "Enter migration_tag: "},
		{"empty answer uses default", "\n", "v2", "v2", "Enter migration_tag [v2]: "},
		{"answer overrides default", "v1\n", "v2", "v1", "Enter migration_tag [v2]: "},
		{"no trailing newline", "v4", "", "v4", "Enter migration_tag: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := New(strings.NewReader(tt.input), &out)

			got, err := p.MigrationTag(context.Background(), tt.defaultTag)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPrompt, out.String())
		})
	}
}

func TestMigrationTag_EOF(t *testing.T) {
	p := New(strings.NewReader(""), io.Discard)

	_, err := p.MigrationTag(context.Background(), "")

	assert.ErrorIs(t, err, ErrNoInput)
}

func TestAsk_SequentialAnswers(t *testing.T) {
	p := New(strings.NewReader("first\nsecond\n"), io.Discard)

	a, err := p.Ask(context.Background(), "? ")
	require.NoError(t, err)
	b, err := p.Ask(context.Background(), "? ")
	require.NoError(t, err)

	assert.Equal(t, "first", a)
	assert.Equal(t, "second", b)
}

func TestAsk_ContextCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := New(r, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Ask(ctx, "? ")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAsk_AfterCancelReceivesPendingLine(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := New(r, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Ask(ctx, "? ")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	go func() {
		_, _ = io.WriteString(w, "v7\nv8\n")
	}()

	first, err := p.Ask(context.Background(), "? ")
	require.NoError(t, err)
	assert.Equal(t, "v7", first)

	second, err := p.Ask(context.Background(), "? ")
	require.NoError(t, err)
	assert.Equal(t, "v8", second)
}
