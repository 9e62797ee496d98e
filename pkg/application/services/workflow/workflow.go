package workflow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jayjaydesai/WorkBot/pkg/domain/services"
)

// Field identifies the typed Line attribute a column feeds
type Field int

const (
	FieldItem Field = iota
	FieldIdentifier
	FieldPosted
	FieldAvailable
	FieldPool
	FieldDemand
	FieldLevel
	FieldDecision
	FieldNote
	FieldETADays
	FieldETASurplus
)

// String method for Field enum
func (f Field) String() string {
	switch f {
	case FieldItem:
		return "item"
	case FieldIdentifier:
		return "identifier"
	case FieldPosted:
		return "posted"
	case FieldAvailable:
		return "available"
	case FieldPool:
		return "pool"
	case FieldDemand:
		return "demand"
	case FieldLevel:
		return "level"
	case FieldDecision:
		return "decision"
	case FieldNote:
		return "note"
	case FieldETADays:
		return "eta days"
	case FieldETASurplus:
		return "eta surplus"
	default:
		return "unknown"
	}
}

// Numeric reports whether cells of the field are quantities
func (f Field) Numeric() bool {
	switch f {
	case FieldPosted, FieldAvailable, FieldPool, FieldDemand, FieldETADays, FieldETASurplus:
		return true
	default:
		return false
	}
}

// Column binds a field to the header names it may appear under.
// The first name is the one reported when the column is missing.
type Column struct {
	Field    Field
	Names    []string
	Required bool
}

// PriorityStrategy selects how the normalizer derives a line's priority key
type PriorityStrategy int

const (
	// InputOrder leaves the key empty so rows are allocated in input order
	InputOrder PriorityStrategy = iota
	// LevelThenPosted ranks storage level A highest, then larger posted quantities
	LevelThenPosted
)

// Workflow is a complete engine profile: how to read a sheet and how to decide it
type Workflow struct {
	Name        string
	Columns     []Column
	Priority    PriorityStrategy
	Aggregation services.AggregationPolicy
	Classifier  services.ClassifierPolicy
	Annotation  services.AnnotationPolicy
	Rules       []services.Rule
}

// Column returns the column bound to the field
func (w *Workflow) Column(f Field) (Column, bool) {
	for _, c := range w.Columns {
		if c.Field == f {
			return c, true
		}
	}
	return Column{}, false
}

// RuleNames lists the pre-decision rules in the order they run
func (w *Workflow) RuleNames() []string {
	names := make([]string, len(w.Rules))
	for i, r := range w.Rules {
		names[i] = r.Name()
	}
	return names
}

// Replen is the pallet replenishment profile. Lines are bulk pallets of an item; the pool is the
// pick face shortfall repeated on every row; a pallet is judged by posted over allocated.
func Replen() *Workflow {
	return &Workflow{
		Name: "replen",
		Columns: []Column{
			{Field: FieldItem, Names: []string{"item number", "item", "part number"}, Required: true},
			{Field: FieldIdentifier, Names: []string{"licence plate", "license plate", "location x", "location"}, Required: true},
			{Field: FieldPosted, Names: []string{"posted quantity", "posted qty"}, Required: true},
			{Field: FieldPool, Names: []string{"diff", "replen stock", "shortfall"}, Required: true},
			{Field: FieldDemand, Names: []string{"diff", "replen stock", "shortfall"}, Required: true},
			{Field: FieldLevel, Names: []string{"level"}},
			{Field: FieldAvailable, Names: []string{"available quantity", "available qty"}},
			{Field: FieldDecision, Names: []string{"decision"}},
			{Field: FieldNote, Names: []string{"note"}},
		},
		Priority:    LevelThenPosted,
		Aggregation: services.AggregationPolicy{Pool: services.Shared, Demand: services.Shared},
		Classifier:  services.DefaultClassifierPolicy(services.PostedOverAllocated),
		Annotation:  services.AnnotationPolicy{Style: services.CutoffNotes, Cutoff: services.DefaultCutoff},
		Rules: []services.Rule{
			services.PresetDecisionRule{},
			services.SingleLineRule{},
			services.ExactPalletRule{},
		},
	}
}

// Greplen is the backorder release profile. Lines are customer backorders of a part; the pool is
// the actual stock repeated on every row and the demand is the sum of backorders.
func Greplen() *Workflow {
	return &Workflow{
		Name: "greplen",
		Columns: []Column{
			{Field: FieldItem, Names: []string{"part number", "item number", "index part number"}, Required: true},
			{Field: FieldIdentifier, Names: []string{"sales back order", "order number", "record id"}, Required: true},
			{Field: FieldPosted, Names: []string{"backorder", "back order"}, Required: true},
			{Field: FieldPool, Names: []string{"actual stock"}, Required: true},
			{Field: FieldDemand, Names: []string{"backorder", "back order"}, Required: true},
			{Field: FieldETADays, Names: []string{"number of days eta", "eta days"}},
			{Field: FieldETASurplus, Names: []string{"eta qty differencetotal", "eta surplus"}},
			{Field: FieldDecision, Names: []string{"decision"}},
			{Field: FieldNote, Names: []string{"note"}},
		},
		Priority:    InputOrder,
		Aggregation: services.AggregationPolicy{Pool: services.Shared, Demand: services.Sum},
		Classifier:  services.DefaultClassifierPolicy(services.AllocatedOverDemand),
		Annotation:  services.AnnotationPolicy{Style: services.CoverageNotes},
		Rules: []services.Rule{
			services.PresetDecisionRule{},
			services.StockOutRule{},
			services.FullCoverageRule{},
			services.ETAHoldRule{Days: services.DefaultETAHoldDays},
			services.LowAvailabilityRule{Cutoff: services.DefaultLowAvailabilityCutoff},
		},
	}
}

var builtins = map[string]func() *Workflow{
	"replen":  Replen,
	"greplen": Greplen,
}

// Lookup returns a fresh copy of the named built-in workflow
func Lookup(name string) (*Workflow, error) {
	ctor, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown workflow %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names lists the built-in workflows
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
