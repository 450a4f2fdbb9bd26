package docs

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

type fakeDeps map[string][]string

func (f fakeDeps) Predecessors(name string) []string {
	return f[name]
}

func TestStoreRecordIsWriteOnce(t *testing.T) {
	s := NewStore()

	if err := s.Record("utils.helpers.mean", "Compute the mean.", SourceGenerated); err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	err := s.Record("utils.helpers.mean", "Overwrite attempt.", SourceGenerated)
	if !errors.Is(err, ErrAlreadyRecorded) {
		t.Fatalf("expected ErrAlreadyRecorded, got %v", err)
	}
	if got, _ := s.Get("utils.helpers.mean"); got != "Compute the mean." {
		t.Fatalf("expected first text to survive, got %q", got)
	}

	if err := s.Record("main.analyze", "   \n", SourceGenerated); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if s.Has("main.analyze") {
		t.Fatalf("blank text must not create an entry")
	}
}

func TestStoreTracksSourcesAndOrder(t *testing.T) {
	s := NewStore()
	mustRecord(t, s, "b", "B doc", SourceExisting)
	mustRecord(t, s, "a", "A doc", SourceGenerated)
	mustRecord(t, s, "c", "C doc", SourceGenerated)

	if s.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", s.Len())
	}
	if got := fmt.Sprint(s.Names()); got != "[b a c]" {
		t.Fatalf("expected recording order, got %s", got)
	}
	if got := fmt.Sprint(s.SortedNames()); got != "[a b c]" {
		t.Fatalf("expected sorted names, got %s", got)
	}
	if s.Count(SourceExisting) != 1 || s.Count(SourceGenerated) != 2 {
		t.Fatalf("unexpected source counts")
	}
	entry, ok := s.Entry("b")
	if !ok || entry.Source != SourceExisting {
		t.Fatalf("unexpected entry %#v", entry)
	}

	snap := s.Snapshot()
	snap["a"] = "mutated"
	if got, _ := s.Get("a"); got != "A doc" {
		t.Fatalf("snapshot must be a copy, store returned %q", got)
	}
}

func TestStoreConcurrentRecordKeepsOneWinner(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.Record("shared", fmt.Sprintf("text %d", i), SourceGenerated); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if wins != 1 || s.Len() != 1 {
		t.Fatalf("expected exactly one successful record, got wins=%d len=%d", wins, s.Len())
	}
}

func TestAssembleFiltersSortsAndCaps(t *testing.T) {
	s := NewStore()
	mustRecord(t, s, "utils.helpers.mean", "Mean doc.", SourceGenerated)
	mustRecord(t, s, "services.math_service.square", "Square doc.", SourceGenerated)
	mustRecord(t, s, "a.first", "First doc.", SourceExisting)

	deps := fakeDeps{
		"services.stats_service.rms": {"utils.helpers.mean", "services.math_service.square", "missing.dep"},
		"wide":                       {"utils.helpers.mean", "services.math_service.square", "a.first"},
	}

	got := Assemble("services.stats_service.rms", deps, s, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %#v", got)
	}
	if got[0].Name != "services.math_service.square" || got[1].Name != "utils.helpers.mean" {
		t.Fatalf("expected entries sorted by name, got %#v", got)
	}

	capped := Assemble("wide", deps, s, 2)
	if len(capped) != 2 || capped[0].Name != "a.first" || capped[1].Name != "services.math_service.square" {
		t.Fatalf("expected the two lexically first entries, got %#v", capped)
	}

	if none := Assemble("unknown", deps, s, 2); len(none) != 0 {
		t.Fatalf("expected no context for unknown symbol, got %#v", none)
	}
}

func TestAssembleDoesNotMutateInputs(t *testing.T) {
	s := NewStore()
	mustRecord(t, s, "b", "B", SourceGenerated)
	mustRecord(t, s, "a", "A", SourceGenerated)
	deps := fakeDeps{"x": {"b", "a"}}

	Assemble("x", deps, s, 5)
	if deps["x"][0] != "b" {
		t.Fatalf("Assemble must not reorder the predecessor slice")
	}
	if s.Len() != 2 {
		t.Fatalf("Assemble must not change the store")
	}
}

func TestRender(t *testing.T) {
	got := Render([]ContextEntry{{Name: "utils.helpers.mean", Text: "Mean doc."}})
	if len(got) != 1 || got[0] != "Function `utils.helpers.mean`:\nMean doc." {
		t.Fatalf("unexpected rendering %#v", got)
	}
}

func mustRecord(t *testing.T, s *Store, name, text string, source Source) {
	t.Helper()
	if err := s.Record(name, text, source); err != nil {
		t.Fatalf("record %s: %v", name, err)
	}
}
