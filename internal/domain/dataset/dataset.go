// Package dataset models the read-only metadata snapshot of a statistical table
// as supplied by the metadata provider.
package dataset

import (
	"strings"
	"time"
)

// Value is a single category of a variable.
type Value struct {
	Code string `yaml:"code" json:"code"`
	Text string `yaml:"text" json:"text"`
}

// Grouping is an aggregation of values.
type Grouping struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// ValueSet is a named subset of values.
type ValueSet struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Variable is a dimension of the table.
type Variable struct {
	Name      string     `yaml:"name" json:"name"`
	Code      string     `yaml:"code" json:"code"`
	IsTime    bool       `yaml:"time" json:"time"`
	Values    []Value    `yaml:"values" json:"values"`
	Groupings []Grouping `yaml:"groupings" json:"groupings"`
	ValueSets []ValueSet `yaml:"valuesets" json:"valuesets"`
}

// Metadata is the table metadata used to build an index document.
type Metadata struct {
	Title     string     `yaml:"title" json:"title"`
	Matrix    string     `yaml:"matrix" json:"matrix"`
	TableID   string     `yaml:"table_id" json:"table_id"`
	Synonyms  string     `yaml:"synonyms" json:"synonyms"`
	Variables []Variable `yaml:"variables" json:"variables"`
}

// Dataset couples metadata with its location inside a database.
type Dataset struct {
	ID        string    `yaml:"id" json:"id"`
	Path      string    `yaml:"path" json:"path"`
	Table     string    `yaml:"table" json:"table"`
	Title     string    `yaml:"title" json:"title"`
	Published time.Time `yaml:"published" json:"published"`
	Meta      *Metadata `yaml:"meta" json:"meta"`
}

// VariableNames joins the variable names.
func (m *Metadata) VariableNames() string {
	return m.join(func(v *Variable, add func(string)) { add(v.Name) })
}

// TimeValues joins the value texts of all time variables.
func (m *Metadata) TimeValues() string {
	return m.join(func(v *Variable, add func(string)) {
		if !v.IsTime {
			return
		}
		for _, val := range v.Values {
			add(val.Text)
		}
	})
}

// AllValues joins the value texts of all variables.
func (m *Metadata) AllValues() string {
	return m.join(func(v *Variable, add func(string)) {
		for _, val := range v.Values {
			add(val.Text)
		}
	})
}

// AllCodes joins the value codes of all variables.
func (m *Metadata) AllCodes() string {
	return m.join(func(v *Variable, add func(string)) {
		for _, val := range v.Values {
			add(val.Code)
		}
	})
}

// AllGroupings joins the grouping names of all variables.
func (m *Metadata) AllGroupings() string {
	return m.join(func(v *Variable, add func(string)) {
		for _, g := range v.Groupings {
			add(g.Name)
		}
	})
}

// AllGroupingCodes joins the grouping ids of all variables.
func (m *Metadata) AllGroupingCodes() string {
	return m.join(func(v *Variable, add func(string)) {
		for _, g := range v.Groupings {
			add(g.ID)
		}
	})
}

// AllValueSets joins the value set names of all variables.
func (m *Metadata) AllValueSets() string {
	return m.join(func(v *Variable, add func(string)) {
		for _, vs := range v.ValueSets {
			add(vs.Name)
		}
	})
}

// AllValueSetCodes joins the value set ids of all variables.
func (m *Metadata) AllValueSetCodes() string {
	return m.join(func(v *Variable, add func(string)) {
		for _, vs := range v.ValueSets {
			add(vs.ID)
		}
	})
}

// TableIDOrMatrix returns the table id, falling back to the matrix code.
func (m *Metadata) TableIDOrMatrix() string {
	if m.TableID != "" {
		return m.TableID
	}
	return m.Matrix
}

func (m *Metadata) join(collect func(v *Variable, add func(string))) string {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}
	for i := range m.Variables {
		collect(&m.Variables[i], add)
	}
	return strings.Join(parts, " ")
}
