package depset

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

func leaf(t *testing.T, a *Arena, label string, values ...string) Ref {
	t.Helper()
	ref, err := a.Add(Node{Label: label, Values: map[Projection][]string{ClangDeps: values}})
	if err != nil {
		t.Fatalf("add %s: %v", label, err)
	}
	return ref
}

func TestEmptySet(t *testing.T) {
	a := NewArena()
	if got := a.Project(Empty, ClangDeps); got != nil {
		t.Fatalf("Project(Empty) = %v, want nil", got)
	}
	if got := a.Labels(Empty); len(got) != 0 {
		t.Fatalf("Labels(Empty) = %v, want none", got)
	}
	if got := a.Children(Empty); got != nil {
		t.Fatalf("Children(Empty) = %v, want nil", got)
	}
	if a.Len() != 0 {
		t.Fatalf("Len = %d, want 0", a.Len())
	}
}

func TestProjectPreorderVisitsOnce(t *testing.T) {
	a := NewArena()
	core := leaf(t, a, "CoreFoundation", "-cf")
	objc := leaf(t, a, "ObjectiveC", "-objc")
	found, err := a.Add(Node{Label: "Foundation", Values: map[Projection][]string{ClangDeps: {"-f1", "-f2"}}}, core, objc)
	if err != nil {
		t.Fatal(err)
	}
	// objc is reachable through Foundation and directly; it must appear once
	ui, err := a.Add(Node{Label: "UIKit", Values: map[Projection][]string{ClangDeps: {"-ui"}}}, found, objc)
	if err != nil {
		t.Fatal(err)
	}

	got := a.Project(ui, ClangDeps)
	want := []string{"-ui", "-f1", "-f2", "-cf", "-objc"}
	if !slices.Equal(got, want) {
		t.Fatalf("Project = %v, want %v", got, want)
	}
	labels := a.Labels(ui)
	wantLabels := []string{"UIKit", "Foundation", "CoreFoundation", "ObjectiveC"}
	if !slices.Equal(labels, wantLabels) {
		t.Fatalf("Labels = %v, want %v", labels, wantLabels)
	}
}

func TestProjectMemoized(t *testing.T) {
	a := NewArena()
	x := leaf(t, a, "X", "-x")
	y, err := a.Add(Node{Label: "Y", Values: map[Projection][]string{ClangDeps: {"-y"}}}, x)
	if err != nil {
		t.Fatal(err)
	}
	first := a.Project(y, ClangDeps)
	second := a.Project(y, ClangDeps)
	if len(first) == 0 || &first[0] != &second[0] {
		t.Fatalf("expected the memoized slice to be returned on the second call")
	}
}

func TestProjectMissingProjection(t *testing.T) {
	a := NewArena()
	x := leaf(t, a, "X", "-x")
	if got := a.Project(x, Projection("swift_deps")); len(got) != 0 {
		t.Fatalf("Project(unknown) = %v, want empty", got)
	}
}

func TestAddDropsDuplicateAndEmptyChildren(t *testing.T) {
	a := NewArena()
	x := leaf(t, a, "X")
	y := leaf(t, a, "Y")
	group, err := a.Add(Node{}, x, Empty, y, x)
	if err != nil {
		t.Fatal(err)
	}
	if got := a.Children(group); !slices.Equal(got, []Ref{x, y}) {
		t.Fatalf("Children = %v, want [%d %d]", got, x, y)
	}
	if got := a.Labels(group); !slices.Equal(got, []string{"X", "Y"}) {
		t.Fatalf("Labels = %v, unlabeled group should be skipped", got)
	}
}

func TestAddUnknownChild(t *testing.T) {
	a := NewArena()
	if _, err := a.Add(Node{Label: "X"}, Ref(5)); err == nil {
		t.Fatalf("expected error for unknown child")
	}
	if a.Len() != 0 {
		t.Fatalf("failed Add must not grow the arena")
	}
}

func TestAddCopiesValues(t *testing.T) {
	a := NewArena()
	vals := []string{"-a"}
	ref, err := a.Add(Node{Label: "X", Values: map[Projection][]string{ClangDeps: vals}})
	if err != nil {
		t.Fatal(err)
	}
	vals[0] = "-mutated"
	if got := a.Project(ref, ClangDeps); !slices.Equal(got, []string{"-a"}) {
		t.Fatalf("Project = %v, caller mutation leaked into arena", got)
	}
}

func TestConcurrentProject(t *testing.T) {
	a := NewArena()
	prev := Empty
	for i := range 32 {
		ref, err := a.Add(Node{Label: string(rune('A' + i%26)), Values: map[Projection][]string{ClangDeps: {"-v"}}}, prev)
		if err != nil {
			t.Fatal(err)
		}
		prev = ref
	}
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := a.Project(prev, ClangDeps); len(got) != 32 {
				errs <- errors.New("wrong projection length")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
