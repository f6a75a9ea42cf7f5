package models

import (
	"reflect"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"  foo, bar ,, baz  ", []string{"foo", "bar", "baz"}},
		{"", []string{}},
		{" , , ", []string{}},
		{"one", []string{"one"}},
		{"dup,dup", []string{"dup", "dup"}}, // duplicates kept
	}
	for _, c := range cases {
		got := NormalizeTags(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("NormalizeTags(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestJoinTagsRoundTrip(t *testing.T) {
	tags := []string{"travel", "summer"}
	if got := NormalizeTags(JoinTags(tags)); !reflect.DeepEqual(got, tags) {
		t.Errorf("round trip = %v, want %v", got, tags)
	}
}

func TestDraftEmpty(t *testing.T) {
	cases := []struct {
		name  string
		draft Draft
		want  bool
	}{
		{"all blank", Draft{}, true},
		{"whitespace only", Draft{Title: "   ", Content: "\n"}, true},
		{"has title", Draft{Title: "x"}, false},
		{"has content", Draft{Content: "body"}, false},
		{"has attachment", Draft{Attachments: []Attachment{{Name: "a.png"}}}, false},
	}
	for _, c := range cases {
		if got := c.draft.Empty(); got != c.want {
			t.Errorf("%s: Empty() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	n := Note{
		ID:          1,
		Tags:        []string{"a"},
		Attachments: []Attachment{{Name: "f"}},
	}
	c := n.Clone()
	c.Tags[0] = "changed"
	c.Attachments[0].Name = "changed"
	if n.Tags[0] != "a" || n.Attachments[0].Name != "f" {
		t.Error("Clone shares backing arrays with the original")
	}
}
