package domain

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"simple", "politics,economy", []string{"politics", "economy"}},
		{"whitespace trimmed", " politics , economy ", []string{"politics", "economy"}},
		{"empty segments dropped", "politics,,economy,", []string{"politics", "economy"}},
		{"empty input", "", []string{}},
		{"only delimiters", ",,,", []string{}},
		{"order preserved", "c,a,b", []string{"c", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTags(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitTags(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"draft", "pending_approval", "published", "scheduled", "rejected"} {
		if _, err := ParseStatus(valid); err != nil {
			t.Errorf("ParseStatus(%q) returned error: %v", valid, err)
		}
	}

	if _, err := ParseStatus("archived"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseStatus(archived) error = %v, want ErrValidation", err)
	}
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"reporter", "editor", "admin"} {
		if _, err := ParseRole(valid); err != nil {
			t.Errorf("ParseRole(%q) returned error: %v", valid, err)
		}
	}

	if _, err := ParseRole("superuser"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseRole(superuser) error = %v, want ErrValidation", err)
	}
}

func TestNewArticleStartsAsDraft(t *testing.T) {
	author := uuid.New()
	article := NewArticle(author, "Title", "Body", "", []string{"tag"})

	if article.Status != StatusDraft {
		t.Errorf("new article status = %s, want draft", article.Status)
	}
	if article.AuthorID != author {
		t.Errorf("author id = %s, want %s", article.AuthorID, author)
	}
	if article.PublishedAt != nil {
		t.Error("new article should have no publish time")
	}
	if article.ID == uuid.Nil {
		t.Error("new article should have an id")
	}
}

func TestSnapshotCopiesTags(t *testing.T) {
	article := NewArticle(uuid.New(), "Title", "Body", "http://doc", []string{"a", "b"})
	snap := article.Snapshot()

	snap.Tags[0] = "mutated"
	if article.Tags[0] != "a" {
		t.Error("mutating a snapshot's tags must not affect the article")
	}
	if snap.ArticleID != article.ID {
		t.Errorf("snapshot article id = %s, want %s", snap.ArticleID, article.ID)
	}
	if snap.Version != 0 {
		t.Errorf("snapshot version = %d, want 0 before storage assigns it", snap.Version)
	}
}
