package language

import "testing"

func TestScan(t *testing.T) {
	cases := []struct {
		raw       string
		want      []string
		triggered bool
	}{
		{"cat, French Flag, dog", []string{"cat", "dog"}, true},
		{"unknown", nil, false},
		{"", nil, false},
		{" , ,", nil, false},
		{"Unknown, ball", []string{"ball"}, false},
		{"a small french flag", nil, true},
		{"ball, ball, BALL", []string{"ball"}, false},
		{"flag", []string{"flag"}, false},
	}
	sw := NewSwitcher("")
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			set, triggered := sw.Scan(tc.raw)
			if triggered != tc.triggered {
				t.Fatalf("triggered = %v, want %v", triggered, tc.triggered)
			}
			got := set.Names()
			if len(got) != len(tc.want) {
				t.Fatalf("names = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("names = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestScan_CustomTrigger(t *testing.T) {
	sw := NewSwitcher("  Spanish FLAG ")
	set, triggered := sw.Scan("spanish flag, french flag")
	if !triggered {
		t.Fatalf("expected custom trigger to be detected")
	}
	if !set.Contains("french flag") || set.Len() != 1 {
		t.Fatalf("unexpected set %v", set.Names())
	}
	if sw.Trigger() != "spanish flag" || NewSwitcher(" ").Trigger() != DefaultTrigger {
		t.Fatalf("trigger not normalized: %q", sw.Trigger())
	}
}

func TestNext(t *testing.T) {
	sw := NewSwitcher("")
	cases := []struct {
		active   Tag
		trigger  bool
		want     Tag
		switched bool
	}{
		{Primary, true, Secondary, true},
		{Secondary, true, Secondary, false},
		{Secondary, false, Primary, true},
		{Primary, false, Primary, false},
	}
	for _, tc := range cases {
		got, switched := sw.Next(tc.active, tc.trigger)
		if got != tc.want || switched != tc.switched {
			t.Fatalf("Next(%v, %v) = (%v, %v), want (%v, %v)", tc.active, tc.trigger, got, switched, tc.want, tc.switched)
		}
	}
}

func TestParseTag(t *testing.T) {
	if ParseTag("Secondary") != Secondary || ParseTag("primary") != Primary || ParseTag("") != Primary {
		t.Fatalf("ParseTag mismatch")
	}
}
