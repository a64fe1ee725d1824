package richtext

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		doc  Node
		want string
	}{
		{
			name: "empty document",
			doc:  Node{Type: "doc"},
			want: "",
		},
		{
			name: "single paragraph",
			doc: Node{Type: "doc", Content: []Node{
				{Type: "paragraph", Content: []Node{
					{Type: "text", Text: "hello world"},
				}},
			}},
			want: "hello world",
		},
		{
			name: "inline marks concatenate",
			doc: Node{Type: "doc", Content: []Node{
				{Type: "paragraph", Content: []Node{
					{Type: "text", Text: "plain "},
					{Type: "text", Text: "bold"},
					{Type: "text", Text: " tail"},
				}},
			}},
			want: "plain bold tail",
		},
		{
			name: "blocks join with newlines",
			doc: Node{Type: "doc", Content: []Node{
				{Type: "heading", Content: []Node{{Type: "text", Text: "Title"}}},
				{Type: "paragraph", Content: []Node{{Type: "text", Text: "Body text."}}},
			}},
			want: "Title\nBody text.",
		},
		{
			name: "empty paragraphs dropped",
			doc: Node{Type: "doc", Content: []Node{
				{Type: "paragraph", Content: []Node{{Type: "text", Text: "first"}}},
				{Type: "paragraph"},
				{Type: "paragraph", Content: []Node{{Type: "text", Text: "second"}}},
			}},
			want: "first\nsecond",
		},
		{
			name: "nested list items",
			doc: Node{Type: "doc", Content: []Node{
				{Type: "bulletList", Content: []Node{
					{Type: "listItem", Content: []Node{
						{Type: "paragraph", Content: []Node{{Type: "text", Text: "one"}}},
					}},
					{Type: "listItem", Content: []Node{
						{Type: "paragraph", Content: []Node{{Type: "text", Text: "two"}}},
					}},
				}},
			}},
			want: "one\ntwo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.doc); got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	data := []byte(`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"from json"}]}]}`)
	got, err := ExtractJSON(data)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	if got != "from json" {
		t.Errorf("ExtractJSON = %q", got)
	}

	if _, err := ExtractJSON([]byte("{not json")); err == nil {
		t.Error("ExtractJSON accepted invalid JSON")
	}
}
