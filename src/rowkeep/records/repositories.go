package records

import (
	"fmt"

	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
)

// Handles holds the execution handles the built-in tables live on.
// Spawn condition values are server state; tributes are game content and
// may live in a separate content database. A nil Content uses State.
type Handles struct {
	State   repository.Executor
	Content repository.Executor
}

// Repositories is a container for the built-in table repositories
type Repositories struct {
	SpawnConditionValues *SpawnConditionValueRepository
	Tributes             *TributeRepository
}

// NewRepositories constructs every built-in repository
func NewRepositories(h Handles, opts ...repository.Option) (*Repositories, error) {
	content := h.Content
	if content == nil {
		content = h.State
	}

	scv, err := NewSpawnConditionValueRepository(h.State, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s repository: %w", TableSpawnConditionValues, err)
	}

	tributes, err := NewTributeRepository(content, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s repository: %w", TableTributes, err)
	}

	return &Repositories{
		SpawnConditionValues: scv,
		Tributes:             tributes,
	}, nil
}
