package persist

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/dshills/mdstudio/internal/session"
)

// EncodeDocuments serializes docs as the value of the files key.
func EncodeDocuments(docs []session.Document) (string, error) {
	if docs == nil {
		docs = []session.Document{}
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeDocuments parses the value of the files key. It only accepts a
// non-empty JSON array of objects whose id, name and content are strings,
// with non-empty unique ids. Anything else reports false and no documents;
// partially valid input is never trusted.
func DecodeDocuments(raw string) ([]session.Document, bool) {
	if !gjson.Valid(raw) {
		return nil, false
	}
	root := gjson.Parse(raw)
	if !root.IsArray() {
		return nil, false
	}

	items := root.Array()
	if len(items) == 0 {
		return nil, false
	}

	docs := make([]session.Document, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if !item.IsObject() {
			return nil, false
		}
		id, name, content := item.Get("id"), item.Get("name"), item.Get("content")
		if id.Type != gjson.String || name.Type != gjson.String || content.Type != gjson.String {
			return nil, false
		}
		if id.Str == "" {
			return nil, false
		}
		if _, dup := seen[id.Str]; dup {
			return nil, false
		}
		seen[id.Str] = struct{}{}
		docs = append(docs, session.Document{ID: id.Str, Name: name.Str, Content: content.Str})
	}
	return docs, true
}
