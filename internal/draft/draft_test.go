package draft

import (
	"context"
	"errors"
	"testing"
)

func TestKeys(t *testing.T) {
	if got := ResponseKey("a1", "c9"); got != "assessment_responses_draft_a1_c9" {
		t.Errorf("ResponseKey = %q", got)
	}
	if got := SchemaKey("job-3"); got != "assessments_draft_job-3" {
		t.Errorf("SchemaKey = %q", got)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	v, err := m.Get(ctx, "k")
	if err != nil || v != nil {
		t.Fatalf("Get on empty store = %q, %v", v, err)
	}

	if err := m.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, _ = m.Get(ctx, "k")
	if string(v) != "two" {
		t.Errorf("Get = %q, want two", v)
	}
	if m.Writes() != 2 {
		t.Errorf("Writes = %d, want 2", m.Writes())
	}

	if err := m.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Has("k") {
		t.Error("key still present after Remove")
	}
	if err := m.Remove(ctx, "k"); err != nil {
		t.Errorf("Remove of absent key: %v", err)
	}
}

func TestLoadSave(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	type payload struct {
		Answers map[string]string `json:"answers"`
	}

	var got payload
	ok, err := Load(ctx, m, "k", &got)
	if err != nil || ok {
		t.Fatalf("Load on empty store = %v, %v", ok, err)
	}

	want := payload{Answers: map[string]string{"q1": "yes"}}
	if err := Save(ctx, m, "k", want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ok, err = Load(ctx, m, "k", &got)
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	if got.Answers["q1"] != "yes" {
		t.Errorf("Load = %+v", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_ = m.Set(ctx, "bad", []byte("{"))
	var v map[string]any
	if _, err := Load(ctx, m, "bad", &v); err == nil {
		t.Error("expected decode error")
	}

	boom := errors.New("disk gone")
	m.FailGet = boom
	if _, err := Load(ctx, m, "bad", &v); !errors.Is(err, boom) {
		t.Errorf("Load error = %v, want wrapped %v", err, boom)
	}

	m.FailSet = boom
	if err := Save(ctx, m, "k", v); !errors.Is(err, boom) {
		t.Errorf("Save error = %v, want wrapped %v", err, boom)
	}
}
