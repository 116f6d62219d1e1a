package runtime

import (
	"bytes"
	"io"
	"sort"
	"strings"
	"testing"
)

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name      string
		base      []string
		overrides []string
		want      []string
	}{
		{
			name:      "override existing key",
			base:      []string{"PATH=/usr/bin", "HOME=/root"},
			overrides: []string{"HOME=/build"},
			want:      []string{"HOME=/build", "PATH=/usr/bin"},
		},
		{
			name:      "add new key",
			base:      []string{"PATH=/usr/bin"},
			overrides: []string{"CI=true"},
			want:      []string{"CI=true", "PATH=/usr/bin"},
		},
		{
			name:      "empty base",
			base:      nil,
			overrides: []string{"DEBIAN_FRONTEND=noninteractive"},
			want:      []string{"DEBIAN_FRONTEND=noninteractive"},
		},
		{
			name:      "empty overrides",
			base:      []string{"PATH=/usr/bin"},
			overrides: nil,
			want:      []string{"PATH=/usr/bin"},
		},
		{
			name:      "value with equals sign",
			base:      []string{"MAVEN_OPTS=-Xmx512m -Dfoo=bar"},
			overrides: nil,
			want:      []string{"MAVEN_OPTS=-Xmx512m -Dfoo=bar"},
		},
		{
			name:      "malformed entries skipped",
			base:      []string{"NOEQUALS", "PATH=/usr/bin"},
			overrides: []string{"ALSO_BAD", "CI=true"},
			want:      []string{"CI=true", "PATH=/usr/bin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeEnv(tt.base, tt.overrides)
			sort.Strings(got)

			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d\ngot:  %v\nwant: %v", len(got), len(tt.want), got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNextExecID(t *testing.T) {
	a := nextExecID()
	b := nextExecID()
	if a == b {
		t.Fatalf("nextExecID returned duplicate: %q", a)
	}
	if !strings.HasPrefix(a, "exec-") || !strings.HasPrefix(b, "exec-") {
		t.Fatalf("unexpected exec ID format: %q, %q", a, b)
	}
}

func TestEOFSignalReader(t *testing.T) {
	sr := &eofSignalReader{r: bytes.NewReader([]byte("abc")), eof: make(chan struct{})}

	got, err := io.ReadAll(sr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("read %q, want %q", got, "abc")
	}

	select {
	case <-sr.eof:
	default:
		t.Fatal("eof channel not closed after reader was drained")
	}
}
