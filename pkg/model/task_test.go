package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestDraftValidate(t *testing.T) {
	d := Draft{Name: "  Buy milk  ", Date: 1700000000000}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if d.Name != "Buy milk" {
		t.Errorf("Expected trimmed name, got %q", d.Name)
	}

	empty := Draft{Name: "   ", Date: 1700000000000}
	err := empty.Validate()
	if !errors.Is(err, ErrValidation) || !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected empty name validation failure, got %v", err)
	}

	noDate := Draft{Name: "x"}
	if err := noDate.Validate(); KindOf(err) != KindValidation {
		t.Errorf("Expected validation kind, got %v", err)
	}
}

func TestSortByDateIsStable(t *testing.T) {
	tasks := []Task{
		{ID: "a", Date: 30},
		{ID: "b", Date: 10},
		{ID: "c", Date: 30},
		{ID: "d", Date: 20},
	}
	SortByDate(tasks)

	want := []string{"b", "d", "a", "c"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("Expected order %v, got %v", want, tasks)
		}
	}
}

func TestFind(t *testing.T) {
	tasks := []Task{{ID: "a"}, {ID: "b"}}
	if i := Find(tasks, "b"); i != 1 {
		t.Errorf("Expected index 1, got %d", i)
	}
	if i := Find(tasks, "zzz"); i != -1 {
		t.Errorf("Expected -1 for unknown id, got %d", i)
	}
}

func TestFailureKindThroughWrapping(t *testing.T) {
	base := Fail(KindProvider, "create", errors.New("invalid app_id"))
	wrapped := fmt.Errorf("add task: %w", base)

	if KindOf(wrapped) != KindProvider {
		t.Errorf("Expected provider kind, got %q", KindOf(wrapped))
	}
	if !errors.Is(wrapped, ErrProvider) {
		t.Error("Expected errors.Is to match ErrProvider")
	}
	if errors.Is(wrapped, ErrTransport) {
		t.Error("Did not expect ErrTransport to match")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("Expected empty kind for plain errors")
	}
}
