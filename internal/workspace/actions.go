package workspace

import "github.com/dshills/mdstudio/internal/engine/transform"

// Action is a named formatting command offered by the toolbar.
type Action struct {
	Name  string
	Label string
	Op    transform.Op
}

var actions = []Action{
	{Name: "bold", Label: "Bold", Op: transform.Op{Kind: transform.KindWrap, Before: "**"}},
	{Name: "italic", Label: "Italic", Op: transform.Op{Kind: transform.KindWrap, Before: "*"}},
	{Name: "strikethrough", Label: "Strikethrough", Op: transform.Op{Kind: transform.KindWrap, Before: "~~"}},
	{Name: "code", Label: "Inline code", Op: transform.Op{Kind: transform.KindWrap, Before: "`"}},
	{Name: "link", Label: "Link", Op: transform.Op{Kind: transform.KindWrap, Before: "[", After: "](url)"}},
	{Name: "heading", Label: "Heading", Op: transform.Op{Kind: transform.KindLinePrefix, Before: "# "}},
	{Name: "bullet", Label: "Bullet list", Op: transform.Op{Kind: transform.KindLinePrefix, Before: "- "}},
	{Name: "ordered", Label: "Numbered list", Op: transform.Op{Kind: transform.KindLinePrefix, Before: "1. "}},
	{Name: "checklist", Label: "Checklist", Op: transform.Op{Kind: transform.KindLinePrefix, Before: "- [ ] "}},
	{Name: "quote", Label: "Quote", Op: transform.Op{Kind: transform.KindLinePrefix, Before: "> "}},
	{Name: "codeblock", Label: "Code block", Op: transform.Op{Kind: transform.KindBlock, Before: "\n\n```\n\n```\n"}},
	{Name: "table", Label: "Table", Op: transform.Op{Kind: transform.KindBlock, Before: "\n\n| Column | Column |\n| ------ | ------ |\n| Cell | Cell |\n\n"}},
	{Name: "image", Label: "Image", Op: transform.Op{Kind: transform.KindBlock, Before: "![](url)"}},
}

// Actions returns the toolbar actions in display order.
func Actions() []Action {
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// LookupAction finds an action by name.
func LookupAction(name string) (Action, bool) {
	for _, a := range actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}
