package cli

import (
	"fmt"
	"io"
	"strings"

	"entity-resolver/internal/domain/entity"

	"github.com/charmbracelet/lipgloss"
)

// Renderer prints resolved entities for a terminal.
type Renderer struct {
	out    io.Writer
	title  lipgloss.Style
	key    lipgloss.Style
	muted  lipgloss.Style
	ok     lipgloss.Style
	failed lipgloss.Style
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{
		out:    out,
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		key:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failed: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Entity prints one entity: a heading, then its metadata in display order.
func (r *Renderer) Entity(e entity.Entity) {
	fmt.Fprintf(r.out, "%s %s\n", r.title.Render(e.Context.EntityTypeName), r.muted.Render("on "+e.Context.Network))
	fmt.Fprintf(r.out, "  %s %s\n", r.key.Render(e.UniqueIdentifierLabel+":"), e.UniqueIdentifier)

	keys := e.Metadata.Keys()
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}
	for _, k := range keys {
		v, _ := e.Metadata.Get(k)
		label := k + ":" + strings.Repeat(" ", width-len(k))
		fmt.Fprintf(r.out, "  %s %s\n", r.key.Render(label), r.Value(v))
	}
}

// Entities prints a list of entities separated by blank lines.
func (r *Renderer) Entities(entities []entity.Entity) {
	if len(entities) == 0 {
		fmt.Fprintln(r.out, r.muted.Render("no entities"))
		return
	}
	for i, e := range entities {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		r.Entity(e)
	}
}

// Value formats a metadata value.
func (r *Renderer) Value(v entity.TypedValue) string {
	switch v.Type {
	case entity.ValueStatus:
		switch p := v.Payload.(type) {
		case bool:
			if p {
				return r.ok.Render("success")
			}
			return r.failed.Render("failed")
		default:
			return fmt.Sprintf("%v", p)
		}
	case entity.ValueList:
		if items, ok := v.Payload.([]string); ok {
			return strings.Join(items, ", ")
		}
	}
	return fmt.Sprintf("%v", v.Payload)
}

// Refs prints associated references as resolvable command arguments.
func (r *Renderer) Refs(refs []entity.AssociatedRef) {
	if len(refs) == 0 {
		fmt.Fprintln(r.out, r.muted.Render("no associated entities"))
		return
	}
	for _, ref := range refs {
		fmt.Fprintf(r.out, "%s %s %s=%s\n",
			r.muted.Render(ref.NetworkLabel), r.title.Render(ref.EntityType), r.key.Render(ref.FieldName), ref.FieldValue)
	}
}

// Networks prints the registered networks with their entity types and getter fields.
func (r *Renderer) Networks(defs []entity.NetworkDefinition) {
	if len(defs) == 0 {
		fmt.Fprintln(r.out, r.muted.Render("no networks registered"))
		return
	}
	for _, def := range defs {
		fmt.Fprintln(r.out, r.title.Render(def.Label))
		for _, et := range def.EntityTypes {
			fields := make([]string, 0, len(et.Getters))
			for _, g := range et.Getters {
				if g.GetMany != nil {
					fields = append(fields, g.Field+" (many)")
				} else {
					fields = append(fields, g.Field)
				}
			}
			fmt.Fprintf(r.out, "  %s %s\n", et.Name, r.muted.Render("by "+strings.Join(fields, ", ")))
		}
	}
}
