package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "ayamsys.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "ayamsys.yaml" {
			t.Errorf("expected context file=ayamsys.yaml, got %v", file)
		}
	})

	t.Run("Error string is stable", func(t *testing.T) {
		err := MissingPathError("translation unit not found").
			WithContext("path", "/k/nurbs/apt.c").
			WithContext("name", "apt.c").
			WithCause(errors.New("stat failed")).
			Build()

		want := "[missing_path] translation unit not found name=apt.c path=/k/nurbs/apt.c: stat failed"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := CompilationError("cc failed").Build()
		wrapped := fmt.Errorf("stage compile_native: %w", inner)

		if !IsClassified(wrapped) {
			t.Error("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryCompilation) {
			t.Error("expected compilation category through wrap")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected plain errors to default to internal")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("permission denied")
		err := WrapError(originalErr, CategoryWrite, "write bindings").
			WithContext("path", "/out/bindings.go").
			Fatal().
			Build()

		if err.Category() != CategoryWrite {
			t.Errorf("expected category %s, got %s", CategoryWrite, err.Category())
		}
		if !err.IsFatal() {
			t.Error("expected fatal severity")
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			fixable  bool
		}{
			{"MissingPathError", MissingPathError("test"), CategoryMissingPath, true},
			{"CompilationError", CompilationError("test"), CategoryCompilation, true},
			{"ParseError", ParseError("test"), CategoryParse, true},
			{"WriteError", WriteError("test"), CategoryWrite, false},
			{"ToolchainError", ToolchainError("test"), CategoryToolchain, true},
			{"ConfigError", ConfigError("test"), CategoryConfig, true},
			{"ValidationError", ValidationError("test"), CategoryValidation, true},
			{"CanceledError", CanceledError("test"), CategoryCanceled, false},
			{"InternalError", InternalError("test"), CategoryInternal, false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if !err.IsFatal() {
					t.Errorf("expected %s to be fatal", tt.name)
				}
				if err.UserFixable() != tt.fixable {
					t.Errorf("expected UserFixable()=%v", tt.fixable)
				}
			})
		}
	})
}

func TestErrorContext(t *testing.T) {
	ctx1 := make(ErrorContext)
	ctx1 = ctx1.Set("key1", "value1")
	ctx1 = ctx1.Set("shared", "original")

	ctx2 := make(ErrorContext)
	ctx2 = ctx2.Set("key2", "value2")
	ctx2 = ctx2.Set("shared", "overridden")

	merged := ctx1.Merge(ctx2)

	value1, _ := merged.GetString("key1")
	value2, _ := merged.GetString("key2")
	shared, _ := merged.GetString("shared")

	if value1 != "value1" || value2 != "value2" {
		t.Errorf("merge lost keys: %v", merged)
	}
	if shared != "overridden" {
		t.Errorf("expected shared=overridden, got %s", shared)
	}
	if _, ok := merged.Get("nonexistent"); ok {
		t.Error("expected nonexistent key to not exist")
	}
}
