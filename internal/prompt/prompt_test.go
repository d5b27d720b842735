package prompt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestConfirmAnswers(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"yes", "y\n", true},
		{"crlf yes", "y\r\n", true},
		{"no", "n\n", false},
		{"upper case", "Y\n", false},
		{"spelled out", "yes\n", false},
		{"padded", " y\n", false},
		{"empty line", "\n", false},
		{"no trailing newline", "y", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := Open(strings.NewReader(tt.answer), &out)
			defer p.Close()

			got, err := p.Confirm("/tmp/x/node_modules")
			if err != nil {
				t.Fatalf("Confirm failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, expected %v", tt.answer, got, tt.want)
			}
			if out.String() != "Remove file/directory /tmp/x/node_modules [y/n]? " {
				t.Errorf("unexpected prompt %q", out.String())
			}
		})
	}
}

func TestConfirmReadsOneLinePerRequest(t *testing.T) {
	var out bytes.Buffer
	p := Open(strings.NewReader("y\nn\ny\n"), &out)
	defer p.Close()

	want := []bool{true, false, true}
	for i, w := range want {
		got, err := p.Confirm("p")
		if err != nil {
			t.Fatalf("Confirm %d failed: %v", i, err)
		}
		if got != w {
			t.Errorf("answer %d = %v, expected %v", i, got, w)
		}
	}

	if _, err := p.Confirm("p"); !errors.Is(err, ErrInputClosed) {
		t.Errorf("expected ErrInputClosed once input is exhausted, got %v", err)
	}
}

func TestConfirmEmptyInput(t *testing.T) {
	p := Open(strings.NewReader(""), io.Discard)
	defer p.Close()

	if _, err := p.Confirm("p"); !errors.Is(err, ErrInputClosed) {
		t.Fatalf("expected ErrInputClosed, got %v", err)
	}
}

type trackingReader struct {
	io.Reader
	closed int
}

func (r *trackingReader) Close() error {
	r.closed++
	return nil
}

func TestCloseLeavesCallerInputOpen(t *testing.T) {
	in := &trackingReader{Reader: strings.NewReader("y\n")}
	p := Open(in, io.Discard)

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if in.closed != 0 {
		t.Errorf("caller's input closed %d times, expected it left open", in.closed)
	}
	if _, err := p.Confirm("p"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}

func TestAlways(t *testing.T) {
	ok, err := Always{}.Confirm("anything")
	if !ok || err != nil {
		t.Errorf("Always.Confirm = %v, %v", ok, err)
	}
}
