// Package er holds the entity-relationship model consumed by the layout and
// draw engine.
//
// A [Diagram] is an explicit context object populated incrementally during one
// parse pass (AddEntity, AddAttributes, AddRelationship) and read wholesale at
// render time. Entities preserve declaration order, and so do the attributes
// within each entity, because visual row order must match the order in which
// attributes were first mentioned.
//
// The model performs no referential validation: a relationship may name an
// entity that was never declared. Dangling references are a layout-time
// concern and surface as skipped edges, not as model errors.
package er

import "slices"

// Cardinality describes how many instances of one entity participate at a
// relationship endpoint.
type Cardinality int

const (
	// ZeroOrOne allows at most one related instance.
	ZeroOrOne Cardinality = iota
	// ZeroOrMore allows any number of related instances, including none.
	ZeroOrMore
	// OneOrMore requires at least one related instance.
	OneOrMore
	// ExactlyOne requires precisely one related instance.
	ExactlyOne
	// MDParent marks the parent side of a hierarchical (weak) relationship.
	MDParent
)

// String returns the lowercase name of the cardinality.
func (c Cardinality) String() string {
	switch c {
	case ZeroOrOne:
		return "zero-or-one"
	case ZeroOrMore:
		return "zero-or-more"
	case OneOrMore:
		return "one-or-more"
	case ExactlyOne:
		return "exactly-one"
	case MDParent:
		return "parent"
	}
	return "unknown"
}

// Identification distinguishes identifying from non-identifying relationships.
// Identifying relationships are drawn with a solid edge, non-identifying ones
// with a dashed edge.
type Identification int

const (
	// Identifying means the child entity's existence depends on the parent.
	Identifying Identification = iota
	// NonIdentifying means the entities exist independently.
	NonIdentifying
)

// String returns the lowercase name of the identification kind.
func (i Identification) String() string {
	if i == NonIdentifying {
		return "non-identifying"
	}
	return "identifying"
}

// Attribute is a single named attribute of an entity. Type and Keys are
// optional and may be filled in by later declarations of the same name.
type Attribute struct {
	Name string   // Unique within the owning entity
	Type string   // Optional type label (e.g., "int", "string")
	Keys []string // Optional key-type tags (e.g., "PK", "FK"), rendered comma-joined
}

// Entity is a named box in the diagram with an ordered set of attributes.
type Entity struct {
	Name       string
	Alias      string // Optional display alias; Label falls back to Name
	Attributes *OrderedMap[string, *Attribute]
}

// Label returns the alias if present, otherwise the entity name.
func (e *Entity) Label() string {
	if e.Alias != "" {
		return e.Alias
	}
	return e.Name
}

// RelSpec carries the cardinality and identification semantics of one
// relationship.
type RelSpec struct {
	CardA          Cardinality // Cardinality at the A endpoint
	CardB          Cardinality // Cardinality at the B endpoint
	Identification Identification
}

// Relationship connects two entities, optionally down to a specific attribute
// on each side. Endpoints are referenced by name and never validated against
// the entity map.
type Relationship struct {
	EntityA    string
	AttributeA string // Optional attribute on the A side
	EntityB    string
	AttributeB string // Optional attribute on the B side
	Role       string // Label drawn at the edge midpoint
	Spec       RelSpec
}

// Diagram is the model store for one entity-relationship diagram.
//
// The zero value is not usable - use NewDiagram. Diagram is not safe for
// concurrent use; the rendering contract is a single-threaded populate pass
// followed by read-only consumption.
type Diagram struct {
	entities      *OrderedMap[string, *Entity]
	relationships []Relationship

	title    string
	accTitle string
	accDescr string
}

// NewDiagram creates an empty diagram model.
func NewDiagram() *Diagram {
	return &Diagram{entities: NewOrderedMap[string, *Entity]()}
}

// AddEntity returns the entity with the given name, creating it with an empty
// attribute map if absent. When the entity already exists without an alias,
// the given alias is adopted; an alias that is already set is never replaced.
func (d *Diagram) AddEntity(name, alias string) *Entity {
	if e, ok := d.entities.Get(name); ok {
		if e.Alias == "" && alias != "" {
			e.Alias = alias
		}
		return e
	}
	e := &Entity{
		Name:       name,
		Alias:      alias,
		Attributes: NewOrderedMap[string, *Attribute](),
	}
	d.entities.Set(name, e)
	return e
}

// AddAttributes merges the given attributes into the named entity, creating
// the entity if needed.
//
// The merge is non-destructive: a bare re-declaration (name only) leaves the
// existing record untouched, while a declaration with a type or key tags
// overlays those fields onto the existing record. Attribute row order is
// fixed at first insertion and never changes on re-declaration.
func (d *Diagram) AddAttributes(entityName string, attrs []Attribute) {
	e := d.AddEntity(entityName, "")
	for i := range attrs {
		in := attrs[i]
		existing, ok := e.Attributes.Get(in.Name)
		if !ok {
			a := in
			a.Keys = slices.Clone(in.Keys)
			e.Attributes.Set(in.Name, &a)
			continue
		}
		mergeAttribute(existing, in)
	}
}

// mergeAttribute overlays non-empty fields of in onto existing.
// Omitted fields are preserved, so a later bare reference is a no-op.
func mergeAttribute(existing *Attribute, in Attribute) {
	if in.Type != "" {
		existing.Type = in.Type
	}
	if len(in.Keys) > 0 {
		existing.Keys = slices.Clone(in.Keys)
	}
}

// AddRelationship appends a relationship between two entities. Relationships
// are append-only: no deduplication and no validation of the endpoint names.
func (d *Diagram) AddRelationship(entityA, role, entityB string, spec RelSpec) {
	d.relationships = append(d.relationships, Relationship{
		EntityA: entityA,
		EntityB: entityB,
		Role:    role,
		Spec:    spec,
	})
}

// AddRelationshipBetween appends a relationship anchored to specific
// attributes on each side. Like AddRelationship it performs no validation.
func (d *Diagram) AddRelationshipBetween(entityA, attributeA, role, entityB, attributeB string, spec RelSpec) {
	d.relationships = append(d.relationships, Relationship{
		EntityA:    entityA,
		AttributeA: attributeA,
		EntityB:    entityB,
		AttributeB: attributeB,
		Role:       role,
		Spec:       spec,
	})
}

// Entities returns the live entity map in declaration order.
// Callers must treat the result as read-only.
func (d *Diagram) Entities() *OrderedMap[string, *Entity] { return d.entities }

// Relationships returns the live relationship list in declaration order.
// Callers must treat the result as read-only.
func (d *Diagram) Relationships() []Relationship { return d.relationships }

// SetTitle sets the diagram title drawn above the content.
func (d *Diagram) SetTitle(t string) { d.title = t }

// Title returns the diagram title.
func (d *Diagram) Title() string { return d.title }

// SetAccTitle sets the accessible title emitted as an SVG <title> child.
func (d *Diagram) SetAccTitle(t string) { d.accTitle = t }

// AccTitle returns the accessible title.
func (d *Diagram) AccTitle() string { return d.accTitle }

// SetAccDescr sets the accessible description emitted as an SVG <desc> child.
func (d *Diagram) SetAccDescr(t string) { d.accDescr = t }

// AccDescr returns the accessible description.
func (d *Diagram) AccDescr() string { return d.accDescr }

// Clear empties both collections and resets title and accessibility state,
// returning the diagram to its freshly constructed state.
func (d *Diagram) Clear() {
	d.entities = NewOrderedMap[string, *Entity]()
	d.relationships = nil
	d.title = ""
	d.accTitle = ""
	d.accDescr = ""
}
