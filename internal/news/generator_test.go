package news

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kalambet/newsetl/internal/format"
	"github.com/kalambet/newsetl/internal/record"
)

type mockTextGenerator struct {
	generateFn func(ctx context.Context, model, prompt string) (string, error)
	calls      int
	lastModel  string
	lastPrompt string
}

func (m *mockTextGenerator) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	m.calls++
	m.lastModel = model
	m.lastPrompt = prompt
	if m.generateFn != nil {
		return m.generateFn(ctx, model, prompt)
	}
	return "", nil
}

func reply(text string, err error) *mockTextGenerator {
	return &mockTextGenerator{
		generateFn: func(context.Context, string, string) (string, error) { return text, err },
	}
}

func TestGenerate_UsesModelAndPersonalizedPrompt(t *testing.T) {
	m := reply("Invista hoje!", nil)
	g := NewGenerator(m, "gemini-test")

	got := g.Generate(context.Background(), &record.Record{ID: 1, Name: "Ana"})
	if got != "Invista hoje!" {
		t.Errorf("Generate = %q", got)
	}
	if m.lastModel != "gemini-test" {
		t.Errorf("model = %q, want gemini-test", m.lastModel)
	}
	if !strings.Contains(m.lastPrompt, "Ana") {
		t.Errorf("prompt %q does not mention the user's name", m.lastPrompt)
	}
	if !strings.Contains(m.lastPrompt, "100 caracteres") {
		t.Errorf("prompt %q does not state the length cap", m.lastPrompt)
	}
}

func TestGenerate_CleansMarkdown(t *testing.T) {
	g := NewGenerator(reply("**Ana**,  invista\n\n`já`!", nil), "m")

	if got := g.Generate(context.Background(), &record.Record{Name: "Ana"}); got != "Ana, invista já!" {
		t.Errorf("Generate = %q, want %q", got, "Ana, invista já!")
	}
}

func TestGenerate_TruncatesTo100Characters(t *testing.T) {
	long := strings.Repeat("investimento ", 40)
	g := NewGenerator(reply(long, nil), "m")

	got := g.Generate(context.Background(), &record.Record{Name: "Ana"})
	if n := utf8.RuneCountInString(got); n != MaxLength {
		t.Errorf("length = %d, want %d", n, MaxLength)
	}
}

func TestGenerate_FallbackOnError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"api error", &GenerationError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}},
		{"unexpected error", errors.New("connection reset")},
		{"wrapped unexpected", &GenerationError{Err: context.DeadlineExceeded}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(reply("ignored", tt.err), "m")
			got := g.Generate(context.Background(), &record.Record{Name: "Bia"})

			want := "Bia, investir com consistência fortalece seu futuro financeiro."
			if got != want {
				t.Errorf("Generate = %q, want %q", got, want)
			}
		})
	}
}

func TestGenerate_FallbackOnEmptyText(t *testing.T) {
	g := NewGenerator(reply("  ** **  ", nil), "m")

	got := g.Generate(context.Background(), &record.Record{Name: "Caio"})
	if got != Fallback("Caio") {
		t.Errorf("Generate = %q, want fallback", got)
	}
}

func TestGenerate_FallbackTruncatedForLongNames(t *testing.T) {
	name := strings.Repeat("Maximiliano ", 10)
	g := NewGenerator(reply("", errors.New("boom")), "m")

	got := g.Generate(context.Background(), &record.Record{Name: name})
	if n := utf8.RuneCountInString(got); n != MaxLength {
		t.Fatalf("length = %d, want %d", n, MaxLength)
	}
	if want := format.Truncate(format.Clean(Fallback(name)), MaxLength); got != want {
		t.Errorf("Generate = %q, want %q", got, want)
	}
}

func TestGenerate_DefaultName(t *testing.T) {
	m := reply("", nil)
	g := NewGenerator(m, "m")

	got := g.Generate(context.Background(), &record.Record{ID: 9})
	if !strings.HasPrefix(got, "Cliente,") {
		t.Errorf("Generate = %q, want fallback for Cliente", got)
	}
	if !strings.Contains(m.lastPrompt, "Cliente") {
		t.Errorf("prompt %q should address Cliente", m.lastPrompt)
	}
}

func TestGenerate_HasDeadline(t *testing.T) {
	m := &mockTextGenerator{
		generateFn: func(ctx context.Context, _, _ string) (string, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("generation context has no deadline")
			}
			return "ok", nil
		},
	}
	NewGenerator(m, "m").Generate(context.Background(), &record.Record{Name: "Ana"})
	if m.calls != 1 {
		t.Errorf("calls = %d, want 1", m.calls)
	}
}

func TestGenerationError_Message(t *testing.T) {
	err := &GenerationError{Code: 400, Status: "INVALID_ARGUMENT", Message: "bad model"}
	if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "bad model") {
		t.Errorf("Error() = %q", err.Error())
	}

	wrapped := &GenerationError{Err: context.Canceled}
	if !errors.Is(wrapped, context.Canceled) {
		t.Error("GenerationError should unwrap to its cause")
	}
}
