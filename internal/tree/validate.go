package tree

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var errNilChild = errors.New("child is nil")

type fieldCheck struct {
	name  string
	value any
	rules []validation.Rule
}

// Validate checks the structural invariants of the tree depth-first in
// pre-order and returns the first violation as a *ValidationError.
func Validate(root *Node) error {
	if root == nil {
		return &ValidationError{Path: "", Err: errors.New("tree is nil")}
	}
	return validateNode(root, root.Label)
}

func validateNode(n *Node, labelPath string) error {
	checks := []fieldCheck{
		{keyLabel, n.Label, []validation.Rule{validation.Required}},
		{keyType, n.Type, []validation.Rule{validation.Required, validation.In(Directory, File)}},
	}
	if n.Type == File {
		checks = append(checks,
			fieldCheck{keyPath, n.Path, []validation.Rule{validation.Required}},
			fieldCheck{keyDate, n.Date, []validation.Rule{validation.Required}},
			fieldCheck{keyCreatedOn, n.CreatedOn, []validation.Rule{validation.Required}},
		)
	}

	for _, c := range checks {
		if err := validation.Validate(c.value, c.rules...); err != nil {
			return &ValidationError{Path: labelPath, Field: c.name, Err: err}
		}
	}

	for i, child := range n.Children {
		if child == nil {
			return &ValidationError{Path: fmt.Sprintf("%s[%d]", labelPath, i), Field: keyChildren, Err: errNilChild}
		}
		if err := validateNode(child, childPath(labelPath, child.Label, i)); err != nil {
			return err
		}
	}
	return nil
}

func childPath(parent, label string, index int) string {
	if label == "" {
		return fmt.Sprintf("%s[%d]", parent, index)
	}
	if parent == "" {
		return label
	}
	return parent + "." + label
}
