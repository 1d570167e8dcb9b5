package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "mediarelay/internal/platform/testkit"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"", "info"},
		{"  nonsense ", "info"},
	}
	for _, c := range cases {
		if got := strings.ToLower(parseLevel(c.in).String()); got != c.want {
			t.Fatalf("parseLevel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInit_NamedAndContextFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{
		Level:   "debug",
		Format:  "json",
		Service: "relay-test",
		Writer:  &buf,
	})

	Get().Info().Msg("root-msg")
	Named("chunker").Info().Msg("named-msg")

	ctx := WithJob(WithRequest(context.Background(), "req-1"), "kc_post_42")
	C(ctx).Info().Msg("ctx-msg")

	out := buf.String()
	kit.MustContain(t, out, "root-msg")
	kit.MustContain(t, out, "named-msg")
	kit.MustContain(t, out, `"component":"chunker"`)
	kit.MustContain(t, out, "ctx-msg")
	kit.MustContain(t, out, `"request_id":"req-1"`)
	kit.MustContain(t, out, `"job":"kc_post_42"`)
	kit.MustContain(t, out, `"service":"relay-test"`)
}

func TestWithJob_EmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	if WithJob(ctx, "") != ctx {
		t.Fatalf("empty job should return ctx unchanged")
	}
	if WithRequest(ctx, "") != ctx {
		t.Fatalf("empty request id should return ctx unchanged")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "relay-courier")
	t.Setenv("LOG_CALLER", "yes")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || opt.Service != "relay-courier" || !opt.Caller {
		t.Fatalf("FromEnv mismatch: %+v", opt)
	}
}
