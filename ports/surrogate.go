package ports

import (
	"context"

	"fabflow/domain/core"
	"fabflow/domain/process"
)

// SurrogateModel predicts the achieved process metric for a candidate recipe.
// Implementations must be deterministic: the optimizer relies on identical
// predictions for identical recipes.
type SurrogateModel interface {
	// Ref identifies the model in the registry
	Ref() core.ModelRef

	// Predict returns the modeled metric (nm) for the recipe
	Predict(recipe *process.RecipeParameters) (float64, error)
}

// ModelResolverPort resolves a tool's surrogate model reference to a model
type ModelResolverPort interface {
	// Resolve returns the model for ref, or an error wrapping
	// core.ErrModelUnresolved when the registry has no such model
	Resolve(ctx context.Context, ref core.ModelRef) (SurrogateModel, error)
}
