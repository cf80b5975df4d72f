package operator

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/pxsearch/internal/domain"
)

// Operator combines query terms that carry no explicit boolean operator.
type Operator string

// Operator constants.
const (
	// Or matches documents containing any of the terms.
	Or  Operator = "OR"
	And Operator = "AND"
)

// Default is the operator used when none is configured.
const Default = Or

// IsValid checks if the operator is one of the supported values.
func (o Operator) IsValid() bool {
	return o == Or || o == And
}

// Parse reads an operator case-insensitively. An empty string yields Default.
func Parse(s string) (Operator, error) {
	if s == "" {
		return Default, nil
	}
	o := Operator(strings.ToUpper(strings.TrimSpace(s)))
	if !o.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidOperator, s)
	}
	return o, nil
}

// OrDefault returns o, or Default when o is empty.
func (o Operator) OrDefault() Operator {
	if o == "" {
		return Default
	}
	return o
}
