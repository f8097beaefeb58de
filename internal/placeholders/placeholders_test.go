package placeholders

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompileBindsSectionsAndPassthrough(t *testing.T) {
	calls := 0
	sections := map[string]Value{
		"greeting": Literal("Hello"),
		"clock": Func(func(Scope) string {
			calls++
			return "noon"
		}),
	}
	table := Compile("{section.greeting} {section.clock} {foo} {section.missing} {section.greeting}", sections)

	var keys []string
	for _, e := range table.Entries() {
		keys = append(keys, e.Key)
	}
	want := []string{"section.greeting", "section.clock", "foo", "section.missing"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}

	resolved := table.Resolve(EmptyScope)
	wantResolved := map[string]string{
		"{section.greeting}": "Hello",
		"{section.clock}":    "noon",
		"{foo}":              "foo",
		"{section.missing}":  "section.missing",
	}
	if diff := cmp.Diff(wantResolved, resolved); diff != "" {
		t.Fatalf("unexpected resolution (-want +got):\n%s", diff)
	}
	if calls != 1 {
		t.Fatalf("expected resolver to run once per resolve, ran %d times", calls)
	}
}

func TestCompileOnlyResolvesOneSectionLevel(t *testing.T) {
	sections := map[string]Value{"a": Literal("x")}
	table := Compile("{section} {section.a.b}", sections)
	for _, e := range table.Entries() {
		if !e.Value.IsPassthrough() {
			t.Fatalf("expected %s to pass through", e.Token)
		}
	}
}

func TestCompileIgnoresUnterminatedBraces(t *testing.T) {
	table := Compile("{open and {closed}", nil)
	if table.Len() != 1 {
		t.Fatalf("expected one placeholder, got %d", table.Len())
	}
	if got := table.Entries()[0].Key; got != "open and {closed" {
		t.Fatalf("unexpected key %q", got)
	}

	if got := Compile("{never closed", nil).Len(); got != 0 {
		t.Fatalf("expected no placeholders, got %d", got)
	}
}

func TestPassthroughUsesScope(t *testing.T) {
	scope := ScopeFunc(func(path string) (string, bool) {
		if path == "notification.type" {
			return "info", true
		}
		return "", false
	})
	table := Compile("{notification.type}/{notification.nope}", nil)
	got := Substitute("{notification.type}/{notification.nope}", table.Resolve(scope), nil)
	if got != "info/notification.nope" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestSubstituteIsSinglePass(t *testing.T) {
	tests := []struct {
		name     string
		template string
		resolved map[string]string
		fixed    map[string]string
		want     string
	}{
		{
			name:     "replacement is not rescanned",
			template: "{a}-{b}",
			resolved: map[string]string{"{a}": "{b}", "{b}": "B"},
			want:     "{b}-B",
		},
		{
			name:     "fixed wins on collision",
			template: "{totalCount}",
			resolved: map[string]string{"{totalCount}": "section"},
			fixed:    map[string]string{"{totalCount}": "3"},
			want:     "3",
		},
		{
			name:     "duplicates all replaced",
			template: "{x}{x}{x}",
			fixed:    map[string]string{"{x}": "1"},
			want:     "111",
		},
		{
			name:     "nothing to replace",
			template: "plain {text",
			want:     "plain {text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Substitute(tt.template, tt.resolved, tt.fixed)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNilResolverRendersEmpty(t *testing.T) {
	if got := Func(nil).Resolve(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
