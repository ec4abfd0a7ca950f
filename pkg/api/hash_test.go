package api

import "testing"

func TestHashPasswordKnownDigests(t *testing.T) {
	cases := map[string]string{
		"":         "d41d8cd98f00b204e9800998ecf8427e",
		"password": "5f4dcc3b5aa765d61d8327deb882cf99",
	}
	for in, want := range cases {
		if got := HashPassword(in); got != want {
			t.Fatalf("HashPassword(%q) = %s want %s", in, got, want)
		}
	}
}

func TestHashPasswordDeterministicAndDistinct(t *testing.T) {
	inputs := []string{"", " ", "M4d3f1r3", "m4d3f1r3", "M4d3f1r3 ", "päss", "a much longer passphrase with spaces"}
	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		first := HashPassword(in)
		if again := HashPassword(in); again != first {
			t.Fatalf("HashPassword(%q) not deterministic: %s vs %s", in, first, again)
		}
		if len(first) != 32 {
			t.Fatalf("HashPassword(%q) length = %d", in, len(first))
		}
		if prev, ok := seen[first]; ok {
			t.Fatalf("digest collision between %q and %q", prev, in)
		}
		seen[first] = in
	}
}
