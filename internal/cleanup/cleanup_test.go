package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/sarthakgaur/del-files/internal/config"
	"github.com/sarthakgaur/del-files/internal/fsops"
	"github.com/sarthakgaur/del-files/internal/prompt"
	"github.com/sarthakgaur/del-files/internal/scan"
)

type recordingReporter struct {
	events []string
}

func (r *recordingReporter) Deleted(path string)     { r.events = append(r.events, "deleted "+path) }
func (r *recordingReporter) Skipped(path string)     { r.events = append(r.events, "skipped "+path) }
func (r *recordingReporter) WouldRemove(path string) { r.events = append(r.events, "would "+path) }
func (r *recordingReporter) Failed(path string, err error) {
	r.events = append(r.events, "failed "+path)
}

// scriptedConfirmer answers from a fixed list, then reports closed input
type scriptedConfirmer struct {
	answers []bool
	asked   []string
}

func (s *scriptedConfirmer) Confirm(path string) (bool, error) {
	s.asked = append(s.asked, path)
	if len(s.asked) > len(s.answers) {
		return false, prompt.ErrInputClosed
	}
	return s.answers[len(s.asked)-1], nil
}

type historyRow struct {
	runID  string
	action string
	isDir  bool
}

type fakeHistory struct {
	rows []historyRow
	err  error
}

func (f *fakeHistory) RecordOutcome(runID string, o Outcome, isDir bool) error {
	f.rows = append(f.rows, historyRow{runID, o.Action(), isDir})
	return f.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func assertEvents(t *testing.T, got, want []string) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events =\n%v\nexpected\n%v", got, want)
	}
}

// threeMatches lays out three 100-byte files under root and returns them as matches
func threeMatches(t *testing.T, root string) []scan.Match {
	t.Helper()
	var matches []scan.Match
	for i := 1; i <= 3; i++ {
		p := filepath.Join(root, fmt.Sprintf("d%d", i), "target")
		writeFile(t, p, 100)
		matches = append(matches, scan.Match{Path: p, Name: "target", Depth: 2})
	}
	return matches
}

func TestDeclinedItemsAreNeverTouched(t *testing.T) {
	root := t.TempDir()
	matches := threeMatches(t, root)

	cfg := &config.Config{Directory: root, Size: true}
	confirmer := &scriptedConfirmer{answers: []bool{true, false, true}}
	fakeDeleter := &fsops.FakeDeleter{}
	rep := &recordingReporter{}

	cleaner := NewCleaner(cfg, confirmer, rep, quietLogger())
	cleaner.SetDeleter(fakeDeleter)

	res, err := cleaner.Remove(context.Background(), matches)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	wantCalls := []string{"rmall:" + matches[0].Path, "rmall:" + matches[2].Path}
	if !reflect.DeepEqual(fakeDeleter.Calls, wantCalls) {
		t.Errorf("calls = %v, expected %v", fakeDeleter.Calls, wantCalls)
	}
	if len(confirmer.asked) != 3 {
		t.Errorf("asked %d times, expected 3", len(confirmer.asked))
	}

	skipped := res.Outcomes[1]
	if !skipped.Skipped || skipped.Bytes != 0 || skipped.Succeeded {
		t.Errorf("declined outcome = %+v", skipped)
	}
	if res.Freed != 200 {
		t.Errorf("Freed = %d, expected 200", res.Freed)
	}

	assertEvents(t, rep.events, []string{
		"deleted " + matches[0].Path,
		"skipped " + matches[1].Path,
		"deleted " + matches[2].Path,
	})
}

func TestFreedCountsOnlySuccesses(t *testing.T) {
	root := t.TempDir()
	matches := threeMatches(t, root)

	cfg := &config.Config{Directory: root, SkipConfirmation: true, Size: true}
	fakeDeleter := &fsops.FakeDeleter{
		Fail: map[string]error{matches[1].Path: os.ErrPermission},
	}
	rep := &recordingReporter{}

	cleaner := NewCleaner(cfg, nil, rep, quietLogger())
	cleaner.SetDeleter(fakeDeleter)

	res, err := cleaner.Remove(context.Background(), matches)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if res.Freed != 200 {
		t.Errorf("Freed = %d, expected 200", res.Freed)
	}
	failed := res.Outcomes[1]
	if failed.Succeeded || !errors.Is(failed.Err, os.ErrPermission) {
		t.Errorf("failed outcome = %+v", failed)
	}
	if failed.Bytes != 100 {
		t.Errorf("failed outcome keeps its measured size, got %d", failed.Bytes)
	}
	if res.Deleted() != 2 || res.Failed() != 1 {
		t.Errorf("deleted=%d failed=%d, expected 2 and 1", res.Deleted(), res.Failed())
	}
	if len(fakeDeleter.Calls) != 3 {
		t.Errorf("batch should continue past a failure, calls = %v", fakeDeleter.Calls)
	}

	assertEvents(t, rep.events, []string{
		"deleted " + matches[0].Path,
		"failed " + matches[1].Path,
		"deleted " + matches[2].Path,
	})
}

func TestSizeNotRequestedLeavesBytesZero(t *testing.T) {
	root := t.TempDir()
	matches := threeMatches(t, root)

	cfg := &config.Config{Directory: root, SkipConfirmation: true}
	cleaner := NewCleaner(cfg, nil, &recordingReporter{}, quietLogger())
	cleaner.SetDeleter(&fsops.FakeDeleter{})

	res, err := cleaner.Remove(context.Background(), matches)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	for _, o := range res.Outcomes {
		if o.Bytes != 0 {
			t.Errorf("%s measured %d bytes without size requested", o.Path, o.Bytes)
		}
	}
	if res.Freed != 0 {
		t.Errorf("Freed = %d, expected 0", res.Freed)
	}
}

func TestMeasurementFailureIsPerItem(t *testing.T) {
	root := t.TempDir()
	present := filepath.Join(root, "b", "target")
	writeFile(t, present, 10)

	matches := []scan.Match{
		{Path: filepath.Join(root, "gone"), Name: "gone", Depth: 1},
		{Path: present, Name: "target", Depth: 2},
	}

	cfg := &config.Config{Directory: root, SkipConfirmation: true, Size: true}
	fakeDeleter := &fsops.FakeDeleter{}
	cleaner := NewCleaner(cfg, nil, &recordingReporter{}, quietLogger())
	cleaner.SetDeleter(fakeDeleter)

	res, err := cleaner.Remove(context.Background(), matches)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if res.Outcomes[0].Err == nil {
		t.Error("expected a measurement error for the vanished entry")
	}
	wantCalls := []string{"rmall:" + present}
	if !reflect.DeepEqual(fakeDeleter.Calls, wantCalls) {
		t.Errorf("calls = %v, expected %v", fakeDeleter.Calls, wantCalls)
	}
	if res.Freed != 10 {
		t.Errorf("Freed = %d, expected 10", res.Freed)
	}
}

func TestInputClosedAbortsBatch(t *testing.T) {
	root := t.TempDir()
	matches := threeMatches(t, root)

	cfg := &config.Config{Directory: root}
	confirmer := &scriptedConfirmer{answers: []bool{true}}
	fakeDeleter := &fsops.FakeDeleter{}

	cleaner := NewCleaner(cfg, confirmer, &recordingReporter{}, quietLogger())
	cleaner.SetDeleter(fakeDeleter)

	res, err := cleaner.Remove(context.Background(), matches)
	if !errors.Is(err, prompt.ErrInputClosed) {
		t.Fatalf("expected ErrInputClosed, got %v", err)
	}
	if len(res.Outcomes) != 1 {
		t.Errorf("expected the partial result of 1 outcome, got %d", len(res.Outcomes))
	}
	if len(fakeDeleter.Calls) != 1 {
		t.Errorf("no item after the closed prompt may be touched, calls = %v", fakeDeleter.Calls)
	}
}

func TestRemoveRequiresConfirmer(t *testing.T) {
	root := t.TempDir()
	cleaner := NewCleaner(&config.Config{Directory: root}, nil, &recordingReporter{}, quietLogger())
	cleaner.SetDeleter(&fsops.FakeDeleter{})

	_, err := cleaner.Remove(context.Background(), threeMatches(t, root))
	if !errors.Is(err, ErrNoConfirmer) {
		t.Errorf("expected ErrNoConfirmer, got %v", err)
	}
}

func TestRemoveStopsWhenCancelled(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fakeDeleter := &fsops.FakeDeleter{}
	cleaner := NewCleaner(&config.Config{Directory: root, SkipConfirmation: true}, nil, &recordingReporter{}, quietLogger())
	cleaner.SetDeleter(fakeDeleter)

	_, err := cleaner.Remove(ctx, threeMatches(t, root))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(fakeDeleter.Calls) != 0 {
		t.Errorf("calls after cancellation: %v", fakeDeleter.Calls)
	}
}

func TestHistoryRecordsEveryOutcome(t *testing.T) {
	root := t.TempDir()
	matches := threeMatches(t, root)
	matches[2].IsDir = true

	cfg := &config.Config{Directory: root}
	confirmer := &scriptedConfirmer{answers: []bool{true, false, true}}
	fakeDeleter := &fsops.FakeDeleter{
		Fail: map[string]error{matches[2].Path: os.ErrPermission},
	}
	history := &fakeHistory{err: errors.New("disk full")}

	cleaner := NewCleaner(cfg, confirmer, &recordingReporter{}, quietLogger())
	cleaner.SetDeleter(fakeDeleter)
	cleaner.SetHistory(history, "run-1")

	// History failures are logged, never returned
	if _, err := cleaner.Remove(context.Background(), matches); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	want := []historyRow{
		{"run-1", "DELETE", false},
		{"run-1", "SKIP", false},
		{"run-1", "ERROR", true},
	}
	if !reflect.DeepEqual(history.rows, want) {
		t.Errorf("history = %+v, expected %+v", history.rows, want)
	}
}

// TestScenario runs the collector and the cleaner against a real tree:
// two node_modules directories of 1 KB each are removed and 2 KB are freed.
func TestScenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "node_modules", "pkg.js"), 1024)
	writeFile(t, filepath.Join(root, "b", "node_modules", "pkg.js"), 1024)
	writeFile(t, filepath.Join(root, "b", "src", "main.js"), 10)

	cfg := &config.Config{
		Directory:        root,
		Targets:          config.NewNameSet("node_modules"),
		Recurse:          true,
		SkipConfirmation: true,
		Size:             true,
	}

	matches, err := scan.NewScanner(nil, quietLogger()).Collect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	res, err := NewCleaner(cfg, nil, &recordingReporter{}, quietLogger()).Remove(context.Background(), matches)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if res.Freed != 2048 {
		t.Errorf("Freed = %d, expected 2048", res.Freed)
	}
	for _, m := range matches {
		if _, err := os.Lstat(m.Path); !os.IsNotExist(err) {
			t.Errorf("%s still exists", m.Path)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "b", "src", "main.js")); err != nil {
		t.Errorf("unrelated file removed: %v", err)
	}
}

// vanishingConfirmer answers yes after the path has been removed behind our back
type vanishingConfirmer struct {
	t *testing.T
}

func (v vanishingConfirmer) Confirm(path string) (bool, error) {
	if err := os.RemoveAll(path); err != nil {
		v.t.Fatalf("remove %s: %v", path, err)
	}
	return true, nil
}

func TestVanishedMatchIsAFailure(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "proj", "node_modules")

	for _, size := range []bool{false, true} {
		t.Run(fmt.Sprintf("size=%v", size), func(t *testing.T) {
			writeFile(t, filepath.Join(target, "pkg.js"), 64)

			cfg := &config.Config{Directory: root, Size: size}
			rep := &recordingReporter{}
			history := &fakeHistory{}
			cleaner := NewCleaner(cfg, vanishingConfirmer{t: t}, rep, quietLogger())
			cleaner.SetHistory(history, "run-1")

			res, err := cleaner.Remove(context.Background(), []scan.Match{
				{Path: target, Name: "node_modules", IsDir: true, Depth: 2},
			})
			if err != nil {
				t.Fatalf("Remove failed: %v", err)
			}

			o := res.Outcomes[0]
			if o.Succeeded || !errors.Is(o.Err, fs.ErrNotExist) {
				t.Errorf("vanished outcome = %+v, expected a not-exist failure", o)
			}
			if res.Deleted() != 0 || res.Failed() != 1 || res.Freed != 0 {
				t.Errorf("deleted=%d failed=%d freed=%d, expected 0, 1, 0", res.Deleted(), res.Failed(), res.Freed)
			}
			assertEvents(t, rep.events, []string{"failed " + target})
			if len(history.rows) != 1 || history.rows[0].action != "ERROR" {
				t.Errorf("history rows = %+v, expected one ERROR", history.rows)
			}
		})
	}
}
