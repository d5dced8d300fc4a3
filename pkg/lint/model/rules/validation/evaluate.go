package validation

import (
	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// Result maps a model name to its offending columns in table order.
// Models without findings are absent.
type Result map[string][]string

// Evaluate finds string columns with no length limit that lack a length or
// inclusion validator. Models without a table, backed by the migrations
// table, or whose table does not exist are skipped.
//
// A column missing a name or type, or a duplicate column name, on an
// evaluated model is reported as an error wrapping core.ErrInvalidModel and
// no result is returned.
func Evaluate(models []core.Model) (Result, error) {
	result := make(Result)

	for i := range models {
		model := &models[i]
		if !model.Auditable() {
			continue
		}
		if err := model.Validate(); err != nil {
			return nil, err
		}

		var offending []string
		for j := range model.Columns {
			column := &model.Columns[j]
			if !validatorNeeded(column) {
				continue
			}
			if stiTypeColumn(model, column) || polymorphicTypeColumn(model, column) {
				continue
			}
			if validatorPresent(model, column) {
				continue
			}
			offending = append(offending, column.Name)
		}

		if len(offending) > 0 {
			result[model.Name] = offending
		}
	}

	return result, nil
}

func validatorNeeded(column *core.Column) bool {
	return column.Type == core.ColumnTypeString && column.Limit == nil
}

func stiTypeColumn(model *core.Model, column *core.Column) bool {
	return column.Name == model.InheritanceColumn
}

func polymorphicTypeColumn(model *core.Model, column *core.Column) bool {
	for _, assoc := range model.Associations {
		if assoc.Kind == core.AssociationBelongsTo && assoc.Polymorphic && assoc.ForeignTypeColumn == column.Name {
			return true
		}
	}
	return false
}

func validatorPresent(model *core.Model, column *core.Column) bool {
	for i := range model.Validators {
		v := &model.Validators[i]
		if !v.HasAttribute(column.Name) {
			continue
		}
		switch v.Kind {
		case core.ValidatorLength:
			// a lower bound alone leaves the length unbounded
			if !v.HasOption(core.OptionMinimum) || v.HasOption(core.OptionMaximum) {
				return true
			}
		case core.ValidatorInclusion:
			return true
		}
	}
	return false
}
