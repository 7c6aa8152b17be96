package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "duplicate key",
			code:    "R001",
			wantMsg: "Duplicate key among siblings",
			wantCat: CategoryUsage,
		},
		{
			name:    "structural error",
			code:    "R005",
			wantMsg: "Unknown VNode kind",
			wantCat: CategoryStructural,
		},
		{
			name:    "config error",
			code:    "C121",
			wantMsg: "Invalid configuration file",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "R999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryUsage, "key %q reused", "a")
	if err.Message != `key "a" reused` {
		t.Errorf("Message = %q, want %q", err.Message, `key "a" reused`)
	}
	if err.Category != CategoryUsage {
		t.Errorf("Category = %q, want %q", err.Category, CategoryUsage)
	}
}

func TestReconcileError_Error(t *testing.T) {
	err := New("R002")
	if got, want := err.Error(), "R002: Emitted event has no listener"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err2 := &ReconcileError{Message: "plain"}
	if err2.Error() != "plain" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "plain")
	}

	cause := stderrors.New("boom")
	err3 := New("R006").Wrap(cause)
	if !strings.HasSuffix(err3.Error(), ": boom") {
		t.Errorf("Error() = %q, want suffix %q", err3.Error(), ": boom")
	}
	if !stderrors.Is(err3, cause) {
		t.Error("errors.Is should see the wrapped cause")
	}
}

func TestWithAttrs(t *testing.T) {
	err := New("R001").With("key", "a").With("parent", "ul")

	v, ok := err.Attr("key")
	if !ok || v != "a" {
		t.Errorf("Attr(key) = %v, %v; want a, true", v, ok)
	}
	if _, ok := err.Attr("missing"); ok {
		t.Error("Attr(missing) should not be found")
	}

	args := err.LogArgs()
	want := []any{"code", "R001", "category", "usage", "key", "a", "parent", "ul"}
	if len(args) != len(want) {
		t.Fatalf("LogArgs() len = %d, want %d", len(args), len(want))
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("LogArgs()[%d] = %v, want %v", i, args[i], want[i])
		}
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "R006") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("R007")
	if FromError(orig, "R006") != orig {
		t.Error("FromError should pass through a ReconcileError")
	}

	wrapped := FromError(stderrors.New("io"), "C121")
	if wrapped.Code != "C121" || wrapped.Wrapped == nil {
		t.Errorf("FromError = %+v, want code C121 with wrapped cause", wrapped)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("R001").With("key", "a").WithSuggestion("Use unique keys")
	out := err.Format()

	for _, want := range []string{"WARN R001: Duplicate key among siblings", "key=a", "Hint: Use unique keys", "Learn more:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}

	cfg := New("C120").Format()
	if !strings.Contains(cfg, "ERROR C120") {
		t.Errorf("config errors should format as ERROR, got:\n%s", cfg)
	}
}

func TestFormatCompact(t *testing.T) {
	got := New("R003").With("prop", "title").FormatCompact()
	want := "R003: Attempt to mutate a prop prop=title"
	if got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Fprint() = %q", buf.String())
	}
}

func TestRegistryCodesSorted(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("registry is empty")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Errorf("codes not sorted: %q before %q", codes[i-1], codes[i])
		}
	}
	for _, code := range codes {
		tpl, _ := GetTemplate(code)
		if tpl.Message == "" || tpl.Category == "" {
			t.Errorf("template %s is incomplete: %+v", code, tpl)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q longer than 10", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}
