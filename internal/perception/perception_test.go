package perception

import "testing"

func TestCleanReply(t *testing.T) {
	cases := map[string]string{
		"cat, dog":             "cat, dog",
		"  \"cat, dog.\"  ":    "cat, dog",
		"No target found.":     "",
		"NO TARGET FOUND":      "",
		"":                     "",
		"ball, french flag.\n": "ball, french flag",
	}
	for in, want := range cases {
		if got := CleanReply(in); got != want {
			t.Fatalf("CleanReply(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMIMEType(t *testing.T) {
	if MIMEType("PNG") != "image/png" || MIMEType("jpg") != "image/jpeg" || MIMEType("") != "image/jpeg" {
		t.Fatalf("unexpected MIME mapping")
	}
}
