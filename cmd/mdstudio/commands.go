package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dshills/mdstudio/internal/engine/position"
	"github.com/dshills/mdstudio/internal/engine/transform"
	"github.com/dshills/mdstudio/internal/session"
	"github.com/dshills/mdstudio/internal/theme"
	"github.com/dshills/mdstudio/internal/workspace"
)

var errUsage = errors.New("wrong arguments")

type cli struct {
	ws     *workspace.Workspace
	unit   position.Unit
	yes    bool
	stdin  io.Reader
	stdout io.Writer
}

type command struct {
	name    string
	usage   string
	summary string
	run     func(c *cli, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"list", "", "List open documents", (*cli).list},
		{"new", "[name]", "Create a document and make it active", (*cli).create},
		{"close", "<doc>", "Close a document (-y skips the unsaved check)", (*cli).close},
		{"rename", "<doc> <name>", "Rename a document", (*cli).rename},
		{"activate", "<doc>", "Make a document active", (*cli).activate},
		{"next", "", "Activate the next document", (*cli).next},
		{"prev", "", "Activate the previous document", (*cli).prev},
		{"show", "[doc]", "Print a document's content", (*cli).show},
		{"edit", "<doc> <file|->", "Replace a document's content", (*cli).edit},
		{"format", "<action> <start> <end>", "Apply a toolbar action to the active document", (*cli).format},
		{"actions", "", "List toolbar actions", (*cli).actions},
		{"export-md", "[doc] [file|-]", "Write a document as markdown", (*cli).exportMarkdown},
		{"theme", "[light|dark|toggle]", "Show or change the theme", (*cli).theme},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// resolve finds a document by id, 1-based tab position, or unique id prefix.
func (c *cli) resolve(ref string) (session.Document, error) {
	docs := c.ws.Documents()
	for _, d := range docs {
		if d.ID == ref {
			return d, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(docs) {
		return docs[n-1], nil
	}
	var match []session.Document
	for _, d := range docs {
		if strings.HasPrefix(d.ID, ref) {
			match = append(match, d)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return session.Document{}, fmt.Errorf("%w: %s", session.ErrDocumentNotFound, ref)
	default:
		return session.Document{}, fmt.Errorf("ambiguous document %q", ref)
	}
}

func (c *cli) resolveOrActive(args []string) (session.Document, error) {
	if len(args) == 0 {
		return c.ws.Active(), nil
	}
	return c.resolve(args[0])
}

func (c *cli) list(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	activeID := c.ws.Active().ID
	for i, d := range c.ws.Documents() {
		marker := " "
		if d.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(c.stdout, "%s %d  %s  %s  [%s]\n", marker, i+1, d.ID, d.DisplayName(), c.ws.Status(d.ID))
	}
	return nil
}

func (c *cli) create(args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	doc := c.ws.Create()
	if len(args) == 1 {
		c.ws.Rename(doc.ID, args[0])
	}
	fmt.Fprintln(c.stdout, doc.ID)
	return nil
}

func (c *cli) close(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	doc, err := c.resolve(args[0])
	if err != nil {
		return err
	}
	if c.ws.RequestClose(doc.ID) {
		fmt.Fprintf(c.stdout, "closed %s\n", doc.DisplayName())
		return nil
	}
	if _, pending := c.ws.PendingClose(); !pending {
		fmt.Fprintln(c.stdout, "kept: the last document cannot be closed")
		return nil
	}
	if !c.yes {
		c.ws.CancelClose()
		return fmt.Errorf("%s has unsaved changes; rerun with -y to close it", doc.DisplayName())
	}
	if err := c.ws.ConfirmClose(); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "closed %s\n", doc.DisplayName())
	return nil
}

func (c *cli) rename(args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	doc, err := c.resolve(args[0])
	if err != nil {
		return err
	}
	c.ws.Rename(doc.ID, args[1])
	return nil
}

func (c *cli) activate(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	doc, err := c.resolve(args[0])
	if err != nil {
		return err
	}
	c.ws.Activate(doc.ID)
	return nil
}

func (c *cli) next(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	fmt.Fprintln(c.stdout, c.ws.Next().DisplayName())
	return nil
}

func (c *cli) prev(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	fmt.Fprintln(c.stdout, c.ws.Previous().DisplayName())
	return nil
}

func (c *cli) show(args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	doc, err := c.resolveOrActive(args)
	if err != nil {
		return err
	}
	_, err = io.WriteString(c.stdout, doc.Content)
	return err
}

func (c *cli) edit(args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	doc, err := c.resolve(args[0])
	if err != nil {
		return err
	}
	var data []byte
	if args[1] == "-" {
		data, err = io.ReadAll(c.stdin)
	} else {
		data, err = os.ReadFile(args[1])
	}
	if err != nil {
		return err
	}
	c.ws.EditContent(doc.ID, string(data))
	return nil
}

// format takes either byte offsets ("4 9") or line:column points
// ("0:4 1:2", columns in the configured unit).
func (c *cli) format(args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	if strings.Contains(args[1], ":") || strings.Contains(args[2], ":") {
		start, err := parsePoint(args[1])
		if err != nil {
			return err
		}
		end, err := parsePoint(args[2])
		if err != nil {
			return err
		}
		ed := &staticEditor{start: start, end: end}
		c.ws.AttachLineColumnEditor(ed, c.unit)
		if _, err := c.ws.Apply(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "selection %s-%s\n", ed.start, ed.end)
		return nil
	}

	start, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: start %q", errUsage, args[1])
	}
	end, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("%w: end %q", errUsage, args[2])
	}
	s := &staticSurface{sel: transform.NewRange(start, end)}
	c.ws.SetSurface(s)
	if _, err := c.ws.Apply(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "selection %s\n", s.sel)
	return nil
}

func parsePoint(s string) (position.Point, error) {
	l, col, ok := strings.Cut(s, ":")
	if !ok {
		return position.Point{}, fmt.Errorf("%w: point %q", errUsage, s)
	}
	line, err := strconv.Atoi(l)
	if err != nil {
		return position.Point{}, fmt.Errorf("%w: point %q", errUsage, s)
	}
	column, err := strconv.Atoi(col)
	if err != nil {
		return position.Point{}, fmt.Errorf("%w: point %q", errUsage, s)
	}
	return position.Point{Line: line, Column: column}, nil
}

func (c *cli) actions(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	for _, a := range workspace.Actions() {
		fmt.Fprintf(c.stdout, "%-14s %-12s %s\n", a.Name, a.Op.Kind, a.Label)
	}
	return nil
}

func (c *cli) exportMarkdown(args []string) error {
	if len(args) > 2 {
		return errUsage
	}
	doc, err := c.resolveOrActive(args)
	if err != nil {
		return err
	}
	blob, err := c.ws.ExportMarkdown(doc.ID)
	if err != nil {
		return err
	}

	target := blob.Filename
	if len(args) == 2 {
		target = args[1]
	}
	if target == "-" {
		_, err = blob.WriteTo(c.stdout)
		return err
	}
	if err := os.WriteFile(target, blob.Data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "wrote %s\n", target)
	return nil
}

func (c *cli) theme(args []string) error {
	m := c.ws.Theme()
	switch {
	case len(args) == 0:
	case len(args) == 1 && args[0] == "toggle":
		m.Toggle()
	case len(args) == 1:
		t, err := theme.Parse(args[0])
		if err != nil {
			return err
		}
		if err := m.Set(t); err != nil {
			return err
		}
	default:
		return errUsage
	}
	fmt.Fprintln(c.stdout, m.Preference())
	return nil
}

// staticSurface holds a fixed byte selection for one command.
type staticSurface struct {
	sel transform.Range
}

func (s *staticSurface) Selection() (transform.Range, bool) { return s.sel, true }
func (s *staticSurface) SetSelection(sel transform.Range)   { s.sel = sel }

// staticEditor holds a fixed line/column selection for one command.
type staticEditor struct {
	start, end position.Point
}

func (e *staticEditor) Selection() (position.Point, position.Point, bool) {
	return e.start, e.end, true
}

func (e *staticEditor) SetSelection(start, end position.Point) {
	e.start, e.end = start, end
}
