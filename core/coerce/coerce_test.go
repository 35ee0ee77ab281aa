package coerce

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/artpar/cmdgate/core/schema"
	"github.com/artpar/cmdgate/domain/mention"
)

func floatPtr(f float64) *float64 { return &f }

func TestApply_String(t *testing.T) {
	opt := schema.Option{Name: "word", Type: schema.OptionTypeString}

	t.Run("identity", func(t *testing.T) {
		v, cerr := Apply(opt, "hello world")
		if cerr != nil {
			t.Fatalf("Apply() error = %v", cerr)
		}
		got, ok := v.AsString()
		if !ok || got != "hello world" {
			t.Errorf("AsString() = (%q, %v), want (%q, true)", got, ok, "hello world")
		}
	})

	t.Run("empty token is a valid string", func(t *testing.T) {
		v, cerr := Apply(opt, "")
		if cerr != nil {
			t.Fatalf("Apply() error = %v", cerr)
		}
		if !v.IsSet() {
			t.Error("IsSet() = false, want true for empty string token")
		}
	})

	t.Run("choice accepted", func(t *testing.T) {
		withChoices := opt
		withChoices.Choices = []string{"rock", "paper", "scissors"}
		if _, cerr := Apply(withChoices, "paper"); cerr != nil {
			t.Errorf("Apply() error = %v, want nil", cerr)
		}
	})

	t.Run("choice rejected", func(t *testing.T) {
		withChoices := opt
		withChoices.Choices = []string{"rock", "paper", "scissors"}
		_, cerr := Apply(withChoices, "lizard")
		if cerr == nil {
			t.Fatal("Apply() error = nil, want choice error")
		}
		if cerr.Code != CodeChoice {
			t.Errorf("Error.Code = %q, want %q", cerr.Code, CodeChoice)
		}
		if want := "must be one of: rock, paper, scissors"; cerr.Message != want {
			t.Errorf("Error.Message = %q, want %q", cerr.Message, want)
		}
	})

	t.Run("choice comparison is exact", func(t *testing.T) {
		withChoices := opt
		withChoices.Choices = []string{"Rock"}
		if _, cerr := Apply(withChoices, "rock"); cerr == nil {
			t.Error("Apply() accepted case-mismatched choice")
		}
	})
}

func TestApply_Number(t *testing.T) {
	opt := schema.Option{Name: "count", Type: schema.OptionTypeNumber}

	t.Run("parses decimals", func(t *testing.T) {
		for raw, want := range map[string]float64{"15": 15, "-3.5": -3.5, ".5": 0.5, "+2": 2} {
			v, cerr := Apply(opt, raw)
			if cerr != nil {
				t.Fatalf("Apply(%q) error = %v", raw, cerr)
			}
			if got, _ := v.AsNumber(); got != want {
				t.Errorf("Apply(%q) = %v, want %v", raw, got, want)
			}
		}
	})

	t.Run("rejects non-numbers", func(t *testing.T) {
		for _, raw := range []string{"abc", "15x", "1e5", "0x10", "NaN", "Inf", ""} {
			_, cerr := Apply(opt, raw)
			if cerr == nil {
				t.Errorf("Apply(%q) error = nil, want type error", raw)
				continue
			}
			if cerr.Code != CodeType {
				t.Errorf("Apply(%q) code = %q, want %q", raw, cerr.Code, CodeType)
			}
		}
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		bounded := opt
		bounded.Min = floatPtr(1)
		bounded.Max = floatPtr(10)

		for _, raw := range []string{"1", "10", "5.5"} {
			if _, cerr := Apply(bounded, raw); cerr != nil {
				t.Errorf("Apply(%q) error = %v, want nil (inclusive bounds)", raw, cerr)
			}
		}
		for raw, wantMsg := range map[string]string{
			"0.999": "must be at least 1",
			"10.01": "must be at most 10",
		} {
			_, cerr := Apply(bounded, raw)
			if cerr == nil {
				t.Errorf("Apply(%q) error = nil, want range error", raw)
				continue
			}
			if cerr.Code != CodeRange || cerr.Message != wantMsg {
				t.Errorf("Apply(%q) = (%q, %q), want (%q, %q)", raw, cerr.Code, cerr.Message, CodeRange, wantMsg)
			}
		}
	})

	t.Run("choices compare parsed values", func(t *testing.T) {
		withChoices := opt
		withChoices.Choices = []string{"7.0", "13"}

		if _, cerr := Apply(withChoices, "7"); cerr != nil {
			t.Errorf(`Apply("7") error = %v, want nil ("7" equals choice "7.0")`, cerr)
		}
		if _, cerr := Apply(withChoices, "8"); cerr == nil || cerr.Code != CodeChoice {
			t.Errorf(`Apply("8") = %v, want choice error`, cerr)
		}
	})
}

func TestApply_Boolean(t *testing.T) {
	opt := schema.Option{Name: "flag", Type: schema.OptionTypeBoolean}

	truthy := []string{"true", "yes", "on", "1", "TRUE", "Yes", "ON"}
	for _, raw := range truthy {
		v, cerr := Apply(opt, raw)
		if cerr != nil {
			t.Errorf("Apply(%q) error = %v, want nil", raw, cerr)
			continue
		}
		if got, _ := v.AsBool(); !got {
			t.Errorf("Apply(%q) = false, want true", raw)
		}
	}

	falsy := []string{"false", "no", "off", "0", "FALSE", "No", "OFF"}
	for _, raw := range falsy {
		v, cerr := Apply(opt, raw)
		if cerr != nil {
			t.Errorf("Apply(%q) error = %v, want nil", raw, cerr)
			continue
		}
		if got, _ := v.AsBool(); got {
			t.Errorf("Apply(%q) = true, want false", raw)
		}
	}

	for _, raw := range []string{"maybe", "2", "", "tru", "yess"} {
		if _, cerr := Apply(opt, raw); cerr == nil || cerr.Code != CodeType {
			t.Errorf("Apply(%q) = %v, want type error", raw, cerr)
		}
	}
}

func TestParseBool_CanonicalRoundTrip(t *testing.T) {
	for _, b := range []bool{true, false} {
		got, ok := ParseBool(Canonical(b))
		if !ok || got != b {
			t.Errorf("ParseBool(Canonical(%v)) = (%v, %v), want (%v, true)", b, got, ok, b)
		}
	}
}

func TestApply_Mentionable(t *testing.T) {
	opt := schema.Option{Name: "target", Type: schema.OptionTypeMentionable}

	tests := []struct {
		raw      string
		wantKind mention.Kind
	}{
		{"<@123>", mention.KindUser},
		{"<@!123>", mention.KindUser},
		{"<@&456>", mention.KindRole},
		{"<#789>", mention.KindChannel},
	}
	for _, tt := range tests {
		v, cerr := Apply(opt, tt.raw)
		if cerr != nil {
			t.Errorf("Apply(%q) error = %v, want nil", tt.raw, cerr)
			continue
		}
		ref, ok := v.AsMention()
		if !ok || ref.Kind != tt.wantKind {
			t.Errorf("Apply(%q) kind = %q, want %q", tt.raw, ref.Kind, tt.wantKind)
		}
	}

	_, cerr := Apply(opt, "@not-a-mention")
	if cerr == nil || cerr.Code != CodeType {
		t.Fatalf("Apply(malformed mention) = %v, want type error", cerr)
	}
	if !strings.Contains(cerr.Message, "mention") {
		t.Errorf("Error.Message = %q, want it to name mentions", cerr.Message)
	}
}

func TestApply_Custom(t *testing.T) {
	parseDuration := func(raw string) (any, error) {
		return time.ParseDuration(raw)
	}
	opt := schema.Option{Name: "delay", Type: schema.OptionTypeCustom, Coerce: parseDuration}

	t.Run("success", func(t *testing.T) {
		v, cerr := Apply(opt, "90s")
		if cerr != nil {
			t.Fatalf("Apply() error = %v", cerr)
		}
		got, ok := v.AsAny()
		if !ok {
			t.Fatal("AsAny() not set")
		}
		if d, ok := got.(time.Duration); !ok || d != 90*time.Second {
			t.Errorf("AsAny() = %v, want 90s duration", got)
		}
	})

	t.Run("error forwarded verbatim", func(t *testing.T) {
		custom := opt
		custom.Coerce = func(raw string) (any, error) {
			return nil, errors.New("expected a color name")
		}
		_, cerr := Apply(custom, "nope")
		if cerr == nil || cerr.Code != CodeCustom {
			t.Fatalf("Apply() = %v, want custom error", cerr)
		}
		if cerr.Message != "expected a color name" {
			t.Errorf("Error.Message = %q, want the coerce func's message", cerr.Message)
		}
	})

	t.Run("missing coerce func", func(t *testing.T) {
		broken := schema.Option{Name: "x", Type: schema.OptionTypeCustom}
		if _, cerr := Apply(broken, "y"); cerr == nil {
			t.Error("Apply() error = nil, want error for missing coerce func")
		}
	})
}

func TestApply_Idempotent(t *testing.T) {
	opt := schema.Option{Name: "count", Type: schema.OptionTypeNumber, Min: floatPtr(0)}

	first, err1 := Apply(opt, "42")
	second, err2 := Apply(opt, "42")
	if err1 != nil || err2 != nil {
		t.Fatalf("Apply() errors = %v, %v", err1, err2)
	}
	if first != second {
		t.Errorf("Apply() not deterministic: %+v vs %+v", first, second)
	}
}

func TestUnset(t *testing.T) {
	opt := schema.Option{Name: "days", Type: schema.OptionTypeNumber}
	v := Unset(opt)

	if v.IsSet() {
		t.Error("Unset().IsSet() = true, want false")
	}
	if v.Name != "days" || v.Type != schema.OptionTypeNumber {
		t.Errorf("Unset() = %+v, want name and type carried", v)
	}
	if _, ok := v.AsNumber(); ok {
		t.Error("AsNumber() on unset value = ok, want false")
	}
}

func TestValue_AccessorsEnforceType(t *testing.T) {
	opt := schema.Option{Name: "count", Type: schema.OptionTypeNumber}
	v, cerr := Apply(opt, "5")
	if cerr != nil {
		t.Fatalf("Apply() error = %v", cerr)
	}

	if _, ok := v.AsString(); ok {
		t.Error("AsString() on number value = ok, want false")
	}
	if _, ok := v.AsBool(); ok {
		t.Error("AsBool() on number value = ok, want false")
	}
	if _, ok := v.AsMention(); ok {
		t.Error("AsMention() on number value = ok, want false")
	}
	if got, ok := v.AsNumber(); !ok || got != 5 {
		t.Errorf("AsNumber() = (%v, %v), want (5, true)", got, ok)
	}
}
