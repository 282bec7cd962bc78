package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSeedHasSmallAndLargerVariant(t *testing.T) {
	store := NewMemoryStore(Seed())

	if got := store.Default().ID; got != "deepseek-r1:1.5b" {
		t.Fatalf("unexpected default model: %s", got)
	}
	if _, ok := store.FindByID("deepseek-r1:3b"); !ok {
		t.Fatal("expected deepseek-r1:3b in catalog")
	}
	if _, ok := store.FindByID("gpt-4"); ok {
		t.Fatal("unexpected model found")
	}
}

func TestEmptyStoreDefault(t *testing.T) {
	store := NewMemoryStore(nil)
	if got := store.Default(); got.ID != "" {
		t.Fatalf("expected zero default, got %+v", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.toml")
	content := `
[[models]]
id = "qwen2.5-coder:7b"
label = "Qwen Coder 7B"

[[models]]
id = "codellama:13b"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	items, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 models, got %d", len(items))
	}
	if items[1].Label != "codellama:13b" {
		t.Fatalf("expected label fallback to id, got %q", items[1].Label)
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":     ``,
		"missingID": "[[models]]\nlabel = \"x\"\n",
		"duplicate": "[[models]]\nid = \"a\"\n[[models]]\nid = \"a\"\n",
		"malformed": "[[models]\nid = ",
	}

	for name, content := range cases {
		path := filepath.Join(t.TempDir(), name+".toml")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write catalog: %v", err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
