package embedding

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeVocab writes a vocab.txt with the special tokens followed by the
// given entries, returning its path.
func writeVocab(t *testing.T, tokens ...string) string {
	t.Helper()
	all := append([]string{"[PAD]", "[UNK]", "[CLS]", "[SEP]"}, tokens...)
	path := filepath.Join(t.TempDir(), "vocab.txt")
	if err := os.WriteFile(path, []byte(strings.Join(all, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadVocab(t *testing.T) {
	v, err := loadVocab(writeVocab(t, "micro", "##processor"))
	if err != nil {
		t.Fatalf("loadVocab failed: %v", err)
	}

	if v.clsID != 2 || v.sepID != 3 || v.unkID != 1 {
		t.Errorf("special IDs = cls:%d sep:%d unk:%d, want 2/3/1", v.clsID, v.sepID, v.unkID)
	}
	if v.lookup("micro") != 4 {
		t.Errorf("lookup(micro) = %d, want 4", v.lookup("micro"))
	}
	if v.lookup("unknown-token") != v.unkID {
		t.Error("unknown token should map to [UNK]")
	}
}

func TestLoadVocabMissingSpecial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.txt")
	if err := os.WriteFile(path, []byte("hello\nworld\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadVocab(path); err == nil {
		t.Error("expected error for vocab without special tokens")
	}
}

func TestBasicTokenize(t *testing.T) {
	tok := &tokenizer{}

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"lowercase and split", "Quantum Error", []string{"quantum", "error"}},
		{"punctuation split", "on-die cache", []string{"on", "-", "die", "cache"}},
		{"accents stripped", "Schrödinger", []string{"schrodinger"}},
		{"control chars removed", "a\x00b", []string{"ab"}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.basicTokenize(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("basicTokenize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestWordpiece(t *testing.T) {
	v, err := loadVocab(writeVocab(t, "micro", "##processor", "cache"))
	if err != nil {
		t.Fatal(err)
	}
	tok := &tokenizer{vocab: v}

	got := tok.wordpiece([]string{"microprocessor", "cache", "zzz"})
	want := []string{"micro", "##processor", "cache", "[UNK]"}
	if len(got) != len(want) {
		t.Fatalf("wordpiece = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("subtoken %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenizeShape(t *testing.T) {
	v, err := loadVocab(writeVocab(t, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	tok := &tokenizer{vocab: v}

	ids, mask, typeIDs, seqLen := tok.tokenize("cache cache")

	// [CLS] cache cache [SEP]
	if seqLen != 4 {
		t.Fatalf("seqLen = %d, want 4", seqLen)
	}
	if int64(len(ids)) != seqLen || int64(len(mask)) != seqLen || int64(len(typeIDs)) != seqLen {
		t.Fatal("slice lengths should equal seqLen")
	}
	if ids[0] != v.clsID || ids[seqLen-1] != v.sepID {
		t.Error("sequence should be wrapped in [CLS]/[SEP]")
	}
	for i, m := range mask {
		if m != 1 {
			t.Errorf("mask[%d] = %d, want 1", i, m)
		}
	}
	for i, tid := range typeIDs {
		if tid != 0 {
			t.Errorf("typeIDs[%d] = %d, want 0", i, tid)
		}
	}
}

func TestTokenizeTruncates(t *testing.T) {
	v, err := loadVocab(writeVocab(t, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	tok := &tokenizer{vocab: v}

	long := strings.Repeat("cache ", maxSeqLen*2)
	_, _, _, seqLen := tok.tokenize(long)
	if seqLen != maxSeqLen {
		t.Errorf("seqLen = %d, want %d", seqLen, maxSeqLen)
	}
}

func TestMeanPool(t *testing.T) {
	// Two tokens of dim 2, second masked out.
	hidden := []float32{1, 2, 100, 200}
	mask := []int64{1, 0}

	pooled := meanPool(hidden, mask, 2, 2)
	if pooled[0] != 1 || pooled[1] != 2 {
		t.Errorf("meanPool = %v, want [1 2]", pooled)
	}

	// Both tokens counted.
	mask = []int64{1, 1}
	pooled = meanPool(hidden, mask, 2, 2)
	if pooled[0] != 50.5 || pooled[1] != 101 {
		t.Errorf("meanPool = %v, want [50.5 101]", pooled)
	}
}
