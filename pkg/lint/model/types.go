package model

import (
	"fmt"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// Context provides all data needed for model-level analysis.
type Context struct {
	models []core.Model
	byName map[string]int
}

// NewContext creates a context over the given models. Model names must be
// unique; the slice order is preserved.
func NewContext(models []core.Model) (*Context, error) {
	byName := make(map[string]int, len(models))
	for i := range models {
		name := models[i].Name
		if name == "" {
			return nil, fmt.Errorf("model at index %d has no name: %w", i, core.ErrInvalidModel)
		}
		if _, dup := byName[name]; dup {
			return nil, &core.ModelError{Model: name, Reason: "declared more than once"}
		}
		byName[name] = i
	}
	return &Context{models: models, byName: byName}, nil
}

// Models returns the models in declaration order.
func (c *Context) Models() []core.Model {
	return c.models
}

// GetModel returns a specific model by name.
func (c *Context) GetModel(name string) (*core.Model, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return &c.models[i], true
}

// Len returns the number of models.
func (c *Context) Len() int {
	return len(c.models)
}
