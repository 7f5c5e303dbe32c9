package observability

import (
	"reflect"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = abc , bad, =x, team=core")
	want := map[string]string{"api-key": "abc", "team": "core"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parseHeaders = %#v, want %#v", got, want)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty header string should yield nil")
	}
}

func TestSampleRatioClamp(t *testing.T) {
	t.Setenv("OTEL_SAMPLER_RATIO", "4")
	if r := otelSampleRatio(); r != 1 {
		t.Fatalf("ratio = %v, want 1", r)
	}
	t.Setenv("OTEL_SAMPLER_RATIO", "junk")
	if r := otelSampleRatio(); r != 0.1 {
		t.Fatalf("ratio = %v, want 0.1", r)
	}
}
