package vector

import (
	"strings"
	"testing"
)

func TestExtractKeywordsFrequencyAndOrder(t *testing.T) {
	keywords := ExtractKeywords("the hero meets the dragon, the dragon flees")

	if len(keywords) == 0 {
		t.Fatal("expected keywords, got none")
	}
	if keywords[0].Term != "the" || keywords[0].Weight != 3 {
		t.Errorf("expected 'the' with weight 3 first, got %q/%v", keywords[0].Term, keywords[0].Weight)
	}
	if keywords[1].Term != "dragon" || keywords[1].Weight != 2 {
		t.Errorf("expected 'dragon' with weight 2 second, got %q/%v", keywords[1].Term, keywords[1].Weight)
	}
	for _, kw := range keywords {
		if kw.Weight < 1 {
			t.Errorf("term %q has non-positive weight %v", kw.Term, kw.Weight)
		}
	}
}

func TestExtractKeywordsTopCap(t *testing.T) {
	var b strings.Builder
	for _, word := range []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf",
		"hotel", "india", "juliet", "kilo", "lima", "mike", "november",
		"oscar", "papa", "quebec", "romeo", "sierra", "tango", "uniform",
		"victor", "whiskey", "xray", "yankee", "zulu",
	} {
		b.WriteString(word)
		b.WriteString(" ")
	}

	keywords := ExtractKeywords(b.String())
	if len(keywords) != MaxKeywords {
		t.Errorf("expected %d keywords, got %d", MaxKeywords, len(keywords))
	}
}

func TestExtractKeywordsDiscardsSingleRuneTerms(t *testing.T) {
	for _, kw := range ExtractKeywords("a hero of b realms 山 c") {
		if kw.Term == "a" || kw.Term == "b" || kw.Term == "c" || kw.Term == "山" {
			t.Errorf("single-rune term %q should be discarded", kw.Term)
		}
	}
}

func TestExtractKeywordsCJKRuns(t *testing.T) {
	keywords := ExtractKeywords("主角进入森林, 主角很高兴 and smiles")

	terms := make(map[string]float64)
	for _, kw := range keywords {
		terms[kw.Term] = kw.Weight
	}
	if terms["主角进入森林"] != 1 {
		t.Errorf("expected CJK run as one term, got %v", terms)
	}
	if terms["smiles"] != 1 {
		t.Errorf("expected latin term alongside CJK, got %v", terms)
	}
}

func TestExtractKeywordsEmptyInput(t *testing.T) {
	if kws := ExtractKeywords(""); kws != nil {
		t.Errorf("empty text should yield no keywords, got %v", kws)
	}
	if kws := ExtractKeywords("123 !!! ..."); kws != nil {
		t.Errorf("separator-only text should yield no keywords, got %v", kws)
	}
}

func TestExtractKeywordsDeterministic(t *testing.T) {
	const text = "wind fire water earth wind fire water earth"
	first := ExtractKeywords(text)
	for i := 0; i < 10; i++ {
		again := ExtractKeywords(text)
		if len(again) != len(first) {
			t.Fatalf("run %d: length changed: %d vs %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: order changed at %d: %v vs %v", i, j, again[j], first[j])
			}
		}
	}
}

func TestFromText(t *testing.T) {
	v := FromText("the hero enters the forest")

	if v.Kind() != KindSparse {
		t.Fatalf("expected sparse vector, got %q", v.Kind())
	}
	if v.IsZero() {
		t.Fatal("vector of non-empty text should not be zero")
	}
	if len(v.Terms()) > MaxKeywords {
		t.Errorf("vector exceeds %d terms: %d", MaxKeywords, len(v.Terms()))
	}
	if v.Terms()["the"] != 2 {
		t.Errorf("expected weight 2 for 'the', got %v", v.Terms()["the"])
	}

	empty := FromText("?!")
	if !empty.IsZero() {
		t.Errorf("text with no valid terms should yield a zero vector")
	}
	if empty.Kind() != KindSparse {
		t.Errorf("even an empty lexical vector is tagged sparse, got %q", empty.Kind())
	}
}
