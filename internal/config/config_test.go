package config

import (
	"reflect"
	"testing"
)

func TestSplitList(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: []string{}},
		{name: "trimmed", input: " k1 , k2,k3 ", want: []string{"k1", "k2", "k3"}},
		{name: "drops blanks", input: "k1,,  ,k2", want: []string{"k1", "k2"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitList(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %#v want %#v", got, tc.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_KEYS", "a, b")
	t.Setenv("PULL_ON_START", "no")
	t.Setenv("API_RATE_LIMIT_RPS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.APIKeys, []string{"a", "b"}) {
		t.Fatalf("keys=%#v", cfg.APIKeys)
	}
	if cfg.PullOnStart {
		t.Fatal("PULL_ON_START=no should disable the eager run")
	}
	if cfg.APIRateLimitRPS != 5 {
		t.Fatalf("rps=%d", cfg.APIRateLimitRPS)
	}
	if cfg.SinkTable != "productdetails" {
		t.Fatalf("table=%s", cfg.SinkTable)
	}
}
