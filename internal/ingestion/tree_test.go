package ingestion

import (
	"encoding/json"
	"errors"
	"testing"
)

func pair(key string, ctx string) Pair {
	return Pair{
		Description: Label{Key: key},
		Value:       Label{Context: Context{"v": json.RawMessage(ctx)}},
	}
}

func TestFind(t *testing.T) {
	doc := &DetailDocument{
		Sections: []Section{
			LeafSection(pair("a", `"leaf-a"`)),
			{Kind: SectionEmpty},
			GroupSection(pair("b", `"row-b"`), pair("c", `"row-c"`)),
			LeafSection(pair("c", `"leaf-c"`)),
			GroupSection(pair("a", `"row-a"`)),
		},
	}

	tests := []struct {
		key  string
		want string
	}{
		{"a", "leaf-a"},
		{"b", "row-b"},
		{"c", "row-c"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			ctx, err := Find(doc, tt.key)
			if err != nil {
				t.Fatalf("Find(%q): %v", tt.key, err)
			}
			got, err := ctx.String("v")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Find(%q) = %q, esperava %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestFindKeyNotFound(t *testing.T) {
	doc := &DetailDocument{
		Sections: []Section{GroupSection(pair("a", `1`))},
	}

	_, err := Find(doc, "history.details.order.fill.price.key")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("esperava ErrKeyNotFound, obteve %v", err)
	}

	var knf *KeyNotFoundError
	if !errors.As(err, &knf) || knf.Key != "history.details.order.fill.price.key" {
		t.Errorf("erro sem a chave: %v", err)
	}
}

func TestFindEmptyDocument(t *testing.T) {
	if _, err := Find(&DetailDocument{}, "x"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("esperava ErrKeyNotFound, obteve %v", err)
	}
	if _, err := Find(nil, "x"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("esperava ErrKeyNotFound para nil, obteve %v", err)
	}
}

func TestFindDecodedDocumentKeepsOrder(t *testing.T) {
	body := `{
		"heading": {"key": "h"},
		"sections": [
			{"rows": [
				{"value": {"context": {"v": "sem-description"}}},
				{"description": {"key": "k"}, "value": {"context": {"v": "primeira"}}}
			]},
			{"description": {"key": "k"}, "value": {"context": {"v": "segunda"}}},
			{"title": "seção sem pares"}
		]
	}`
	doc := mustDecodeDetail(t, body)

	if len(doc.Sections) != 3 {
		t.Fatalf("esperava 3 seções, obteve %d", len(doc.Sections))
	}
	if doc.Sections[0].Kind != SectionGroup || len(doc.Sections[0].Rows) != 1 {
		t.Errorf("primeira seção = %+v", doc.Sections[0])
	}
	if doc.Sections[1].Kind != SectionLeaf {
		t.Errorf("segunda seção deveria ser folha: %+v", doc.Sections[1])
	}
	if doc.Sections[2].Kind != SectionEmpty {
		t.Errorf("terceira seção deveria ser vazia: %+v", doc.Sections[2])
	}

	ctx, err := Find(doc, "k")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := ctx.String("v"); v != "primeira" {
		t.Errorf("Find = %q, esperava a primeira ocorrência", v)
	}
}

func TestFindSearchesRowsOfLeafSection(t *testing.T) {
	body := `{
		"heading": {"key": "h"},
		"sections": [
			{
				"description": {"key": "other"},
				"value": {"context": {"v": "folha"}},
				"rows": [
					{"description": {"key": "target"}, "value": {"context": {"v": "linha"}}}
				]
			},
			{"description": {"key": "target"}, "value": {"context": {"v": "depois"}}}
		]
	}`
	doc := mustDecodeDetail(t, body)

	if doc.Sections[0].Kind != SectionLeaf || len(doc.Sections[0].Rows) != 1 {
		t.Fatalf("primeira seção = %+v", doc.Sections[0])
	}

	ctx, err := Find(doc, "target")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if v, _ := ctx.String("v"); v != "linha" {
		t.Errorf("Find = %q, esperava a linha da primeira seção", v)
	}

	ctx, err = Find(doc, "other")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if v, _ := ctx.String("v"); v != "folha" {
		t.Errorf("Find = %q, esperava a description da folha", v)
	}
}
