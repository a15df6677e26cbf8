package executor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/pkgdeck/internal/engine/executor"
)

func TestFramer_Feed(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []executor.Frame
		tail   string
	}{
		{
			name:   "newline terminated",
			chunks: []string{"one\ntwo\n"},
			want:   []executor.Frame{{Text: "one"}, {Text: "two"}},
		},
		{
			name:   "split across chunks",
			chunks: []string{"hel", "lo\nwor", "ld"},
			want:   []executor.Frame{{Text: "hello"}},
			tail:   "world",
		},
		{
			name:   "crlf and blank lines dropped",
			chunks: []string{"a\r\n\n   \nb\r\n"},
			want:   []executor.Frame{{Text: "a"}, {Text: "b"}},
		},
		{
			name:   "ansi stripped",
			chunks: []string{"\x1b[1;32m::\x1b[0m Synchronizing\n"},
			want:   []executor.Frame{{Text: ":: Synchronizing"}},
		},
		{
			name:   "progress redraw marked",
			chunks: []string{"core [###] 50%\r", "core [####] 60%\r"},
			want:   []executor.Frame{{Text: "core [###] 50%", Progress: true, Redraw: true}},
			tail:   "core [####] 60%",
		},
		{
			name:   "bare carriage return ends a plain line",
			chunks: []string{"checking keys\rdone\n"},
			want:   []executor.Frame{{Text: "checking keys", Redraw: true}, {Text: "done"}},
		},
		{
			name:   "crlf terminated progress lines are not redraws",
			chunks: []string{"(1/2) keys [####] 100%\r\n(2/2) integrity [####] 100%\r\n"},
			want: []executor.Frame{
				{Text: "(1/2) keys [####] 100%", Progress: true},
				{Text: "(2/2) integrity [####] 100%", Progress: true},
			},
		},
		{
			name:   "crlf split across chunks",
			chunks: []string{"extra [####] 100%\r", "\nnext\n"},
			want:   []executor.Frame{{Text: "extra [####] 100%", Progress: true}, {Text: "next"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f executor.Framer
			var got []executor.Frame
			for _, c := range tt.chunks {
				got = append(got, f.Feed([]byte(c))...)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.tail, f.Pending())
		})
	}
}

func TestIsProgress(t *testing.T) {
	assert.True(t, executor.IsProgress("extra [#####-----] 50%"))
	assert.False(t, executor.IsProgress("[sudo] password for me:"))
	assert.False(t, executor.IsProgress("100% done"))
}

func TestFramer_TakeHeldCarriageReturn(t *testing.T) {
	var f executor.Framer
	assert.Empty(t, f.Feed([]byte("core [##] 20%\r")))

	frame, ok := f.Take()
	assert.True(t, ok)
	assert.Equal(t, executor.Frame{Text: "core [##] 20%", Progress: true, Redraw: true}, frame)

	_, ok = f.Take()
	assert.False(t, ok)
}

func TestPatterns(t *testing.T) {
	p, err := executor.CompilePatterns(
		[]string{`(?i)password.*:\s*$`},
		[]string{`(?i)sorry, try again`},
		[]string{`(?i)account (is )?locked`},
	)
	assert.NoError(t, err)
	assert.True(t, p.IsPrompt("[sudo] password for me: "))
	assert.True(t, p.IsRejection("Sorry, try again."))
	assert.True(t, p.IsLockout("account is locked"))
	assert.False(t, p.IsPrompt("password changed"))

	_, err = executor.CompilePatterns([]string{"("}, nil, nil)
	assert.Error(t, err)
}
