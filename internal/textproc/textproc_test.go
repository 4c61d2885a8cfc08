package textproc

import (
	"reflect"
	"testing"
)

func TestTokenizeLowercasesAndSplitsOnNonWordRunes(t *testing.T) {
	got := Tokenize("Hello, World! Go-lang 2024")
	want := []string{"hello", "world", "go", "lang", "2024"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeKeepsUnderscoreAndDuplicates(t *testing.T) {
	got := Tokenize("snake_case snake_case")
	want := []string{"snake_case", "snake_case"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeEmptyInput(t *testing.T) {
	if got := Tokenize(""); len(got) != 0 {
		t.Errorf("Tokenize(\"\") = %v, want empty", got)
	}
	if got := Tokenize("...!!!"); len(got) != 0 {
		t.Errorf("Tokenize(punctuation) = %v, want empty", got)
	}
}

func TestRemoveStopwords(t *testing.T) {
	got := RemoveStopwords([]string{"the", "quick", "fox", "is", "in", "a", "box"})
	want := []string{"quick", "fox", "box"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RemoveStopwords() = %v, want %v", got, want)
	}
}

func TestProcessPreservesTermFrequency(t *testing.T) {
	got := Process("python is great and python is fast")
	want := []string{"python", "great", "python", "fast"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Process() = %v, want %v", got, want)
	}
}

func TestProcessAllStopwords(t *testing.T) {
	if got := Process("the is a of"); len(got) != 0 {
		t.Errorf("Process(stopwords only) = %v, want empty", got)
	}
}

func TestUniqueTermsDeduplicatesAndSorts(t *testing.T) {
	got := UniqueTerms("python loves python, go loves go")
	want := []string{"go", "loves", "python"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueTerms() = %v, want %v", got, want)
	}
}

func TestWeightedTextDoublesTitle(t *testing.T) {
	tokens := Process(WeightedText("Python Basics", "python rocks"))
	count := 0
	for _, token := range tokens {
		if token == "basics" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("title term appeared %d times in weighted text, want 2", count)
	}
}
