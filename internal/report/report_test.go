package report

import (
	"bytes"
	"errors"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 Bytes"},
		{1, "1.0 Bytes"},
		{1023, "1023.0 Bytes"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{2048, "2.0 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
		{1099511627776, "1.0 TB"},
		{1125899906842624, "1024.0 TB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestReporterLines(t *testing.T) {
	var out, errOut bytes.Buffer
	r := New(&out, &errOut, false)

	r.Found(2)
	r.Deleted("/tmp/x/a/node_modules")
	r.Skipped("/tmp/x/b/node_modules")
	r.Failed("/tmp/x/c/node_modules", errors.New("permission denied"))
	r.Freed(2048)

	wantOut := "Found 2 matching files/directories.\n" +
		"File/Directory /tmp/x/a/node_modules deleted successfully.\n" +
		"Skipping file/directory /tmp/x/b/node_modules\n" +
		"2.0 KB freed.\n"
	if out.String() != wantOut {
		t.Errorf("stdout =\n%q\nexpected\n%q", out.String(), wantOut)
	}

	wantErr := "Failed to delete file/directory /tmp/x/c/node_modules. Reason permission denied\n"
	if errOut.String() != wantErr {
		t.Errorf("stderr = %q, expected %q", errOut.String(), wantErr)
	}
}

func TestReporterFoundVariants(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "Target file/directory not found.\n"},
		{1, "Found 1 matching file/directory.\n"},
		{3, "Found 3 matching files/directories.\n"},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		New(&out, &out, false).Found(tt.n)
		if out.String() != tt.want {
			t.Errorf("Found(%d) = %q, expected %q", tt.n, out.String(), tt.want)
		}
	}
}

func TestReporterDryRunLines(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, &out, false)
	r.WouldRemove("/tmp/x/dist")
	r.WouldFree(1536)

	want := "Would remove file/directory /tmp/x/dist\n1.5 KB would be freed.\n"
	if out.String() != want {
		t.Errorf("output = %q, expected %q", out.String(), want)
	}
}

func TestReporterColorKeepsText(t *testing.T) {
	var out bytes.Buffer
	New(&out, &out, true).Deleted("/tmp/x")
	if !bytes.Contains(out.Bytes(), []byte("File/Directory /tmp/x deleted successfully.")) {
		t.Errorf("styled output lost its text: %q", out.String())
	}
}
