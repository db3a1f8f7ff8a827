package records

import (
	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
)

// SpawnConditionValue is one row of spawn_condition_values
type SpawnConditionValue struct {
	ID         int64  `json:"id"`
	Value      int8   `json:"value"`
	Zone       string `json:"zone"`
	InstanceID int64  `json:"instance_id"`
}

// Fields implements repository.Record
func (v *SpawnConditionValue) Fields() []any {
	return []any{&v.ID, &v.Value, &v.Zone, &v.InstanceID}
}

// SpawnConditionValueRepository is the typed repository for spawn_condition_values
type SpawnConditionValueRepository = repository.Repository[SpawnConditionValue]

// NewSpawnConditionValueRepository creates the spawn_condition_values repository on exec
func NewSpawnConditionValueRepository(exec repository.Executor, opts ...repository.Option) (*SpawnConditionValueRepository, error) {
	s := SpawnConditionValuesSchema()
	codec, err := repository.NewStructCodec[SpawnConditionValue](s)
	if err != nil {
		return nil, err
	}
	return repository.New[SpawnConditionValue](exec, s, codec, opts...)
}
