package service

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"mediarelay/internal/core/exchange"
	kit "mediarelay/internal/platform/testkit"

	"mediarelay/internal/services/chunker/domain"
)

func media(sizes ...int64) []domain.Media {
	out := make([]domain.Media, len(sizes))
	for i, s := range sizes {
		out[i] = domain.Media{Path: fmt.Sprintf("%03d.jpg", i+1), Size: s}
	}
	return out
}

func TestPlan_CountsAndCaps(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	const maxItems, maxBytes = 4, 100
	for round := 0; round < 200; round++ {
		n := r.IntN(30)
		sizes := make([]int64, n)
		for i := range sizes {
			sizes[i] = r.Int64N(130)
		}
		in := media(sizes...)
		chunks, skipped := Plan(in, "cap", maxItems, maxBytes)

		var got []string
		for i, c := range chunks {
			if len(c.Files) == 0 && n > len(skipped) {
				t.Fatalf("round %d: empty chunk %d", round, i)
			}
			if len(c.Files) > maxItems {
				t.Fatalf("round %d: chunk %d has %d files", round, i, len(c.Files))
			}
			var sum int64
			for _, f := range c.Files {
				for _, m := range in {
					if m.Path == f {
						sum += m.Size
					}
				}
			}
			if sum > maxBytes {
				t.Fatalf("round %d: chunk %d carries %d bytes", round, i, sum)
			}
			if (i == 0) != (c.Caption == "cap") {
				t.Fatalf("round %d: caption on chunk %d = %q", round, i, c.Caption)
			}
			got = append(got, c.Files...)
		}
		for _, m := range skipped {
			if m.Size <= maxBytes {
				t.Fatalf("round %d: %s skipped at %d bytes", round, m.Path, m.Size)
			}
		}
		if sent := len(got); sent+len(skipped) != n {
			t.Fatalf("round %d: %d sent + %d skipped != %d media", round, sent, len(skipped), n)
		}
		for i := 1; i < len(got); i++ {
			if got[i-1] >= got[i] {
				t.Fatalf("round %d: order not kept: %v", round, got)
			}
		}
	}
}

func TestPlan_Boundaries(t *testing.T) {
	cases := []struct {
		name  string
		sizes []int64
		want  []int
	}{
		{"item cap", []int64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, []int{10, 2}},
		{"byte cap exact fit", []int64{60, 40, 1}, []int{2, 1}},
		{"byte cap overflow", []int64{60, 41}, []int{1, 1}},
		{"oversize skipped", []int64{10, 101, 10}, []int{2}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			chunks, _ := Plan(media(c.sizes...), "", 10, 100)
			if len(chunks) != len(c.want) {
				t.Fatalf("chunks = %d, want %d", len(chunks), len(c.want))
			}
			for i, w := range c.want {
				if len(chunks[i].Files) != w {
					t.Fatalf("chunk %d has %d files, want %d", i, len(chunks[i].Files), w)
				}
			}
		})
	}
}

func TestPlan_TextOnly(t *testing.T) {
	chunks, _ := Plan(nil, "hello", 10, 100)
	if len(chunks) != 1 || len(chunks[0].Files) != 0 || chunks[0].Caption != "hello" {
		t.Fatalf("chunks = %+v", chunks)
	}
	if chunks, _ := Plan(nil, "", 10, 100); len(chunks) != 0 {
		t.Fatalf("empty job should plan nothing, got %+v", chunks)
	}
	chunks, skipped := Plan(media(500), "only link", 10, 100)
	if len(skipped) != 1 || len(chunks) != 1 || chunks[0].Caption != "only link" {
		t.Fatalf("all media skipped should fall back to text: %+v", chunks)
	}
}

func TestCaption(t *testing.T) {
	links := []exchange.FallbackRecord{
		{URL: "https://kemono.cr/data/a.mp4", Name: "a.mp4"},
		{URL: "https://kemono.cr/data/b.mp4"},
	}
	got := Caption("My title", links, 2000)
	want := "My title\n[ 1/ 2] [a.mp4](https://kemono.cr/data/a.mp4)\n[ 2/ 2] https://kemono.cr/data/b.mp4"
	if got != want {
		t.Fatalf("Caption =\n%s\nwant\n%s", got, want)
	}
	if got := Caption("  \t", nil, 2000); got != "" {
		t.Fatalf("blank title caption = %q", got)
	}
	long := Caption(strings.Repeat("é", 2500), nil, 2000)
	if utf8.RuneCountInString(long) != 2000 {
		t.Fatalf("caption runes = %d", utf8.RuneCountInString(long))
	}
}

func TestClassify(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "job")
	kit.WriteFile(t, filepath.Join(dir, "002_b.PNG"), []byte("bb"))
	kit.WriteFile(t, filepath.Join(dir, "001_a.jpg"), []byte("a"))
	kit.WriteFile(t, filepath.Join(dir, "003_c.url.json"), []byte(`{"url":"u","name":"c"}`))
	kit.WriteFile(t, filepath.Join(dir, exchange.TitleFile), []byte(" Title \n"))
	kit.WriteFile(t, filepath.Join(dir, exchange.BodyFile), []byte("body"))
	kit.WriteFile(t, filepath.Join(dir, "notes.zip"), []byte("z"))
	kit.WriteFile(t, filepath.Join(dir, ".004_d.jpg-1.part"), []byte("partial"))

	f, err := Classify(dir, exchange.MediaExtensions)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(f.Media) != 2 || filepath.Base(f.Media[0].Path) != "001_a.jpg" || f.Media[1].Size != 2 {
		t.Fatalf("media = %+v", f.Media)
	}
	if f.Title != "Title" || f.Body != "body" || len(f.Fallbacks) != 1 || f.Name != "job" {
		t.Fatalf("folder = %+v", f)
	}
}
