package records

import (
	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
)

// Tribute is one row of tributes
type Tribute struct {
	ID      int64  `json:"id"`
	Unknown int64  `json:"unknown"`
	Name    string `json:"name"`
	Descr   string `json:"descr"`
	IsGuild int8   `json:"isguild"`
}

// Fields implements repository.Record
func (t *Tribute) Fields() []any {
	return []any{&t.ID, &t.Unknown, &t.Name, &t.Descr, &t.IsGuild}
}

// Guild reports whether the tribute is a guild tribute
func (t Tribute) Guild() bool {
	return t.IsGuild != 0
}

// TributeRepository is the typed repository for tributes
type TributeRepository = repository.Repository[Tribute]

// NewTributeRepository creates the tributes repository on exec
func NewTributeRepository(exec repository.Executor, opts ...repository.Option) (*TributeRepository, error) {
	s := TributesSchema()
	codec, err := repository.NewStructCodec[Tribute](s)
	if err != nil {
		return nil, err
	}
	return repository.New[Tribute](exec, s, codec, opts...)
}
