package records_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/bitswalk/rowkeep/src/common/errors"
	"github.com/bitswalk/rowkeep/src/rowkeep/db"
	"github.com/bitswalk/rowkeep/src/rowkeep/db/migrations"
	"github.com/bitswalk/rowkeep/src/rowkeep/records"
	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
	"github.com/bitswalk/rowkeep/src/rowkeep/schema"
)

func setupRepositories(t *testing.T) *records.Repositories {
	t.Helper()

	database, err := db.New(db.Config{})
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { database.Shutdown() })

	if err := migrations.NewRunner(database.DB(), database.Dialect()).Run(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repos, err := records.NewRepositories(records.Handles{State: database.DB()}, repository.WithDialect(database.Dialect()))
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}
	return repos
}

func TestRegister(t *testing.T) {
	reg := schema.NewRegistry()
	if err := records.Register(reg); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 tables, got %d", reg.Len())
	}
	if err := records.Register(reg); !stderrors.Is(err, errors.ErrTableAlreadyRegistered) {
		t.Fatalf("expected duplicate registration error, got %v", err)
	}
	for _, s := range records.Schemas() {
		if err := s.Validate(); err != nil {
			t.Fatalf("built-in schema %s invalid: %v", s.Table, err)
		}
	}
}

func TestSpawnConditionValues_InsertUpdateFind(t *testing.T) {
	ctx := context.Background()
	repo := setupRepositories(t).SpawnConditionValues

	if repo.PrimaryKey() != "id" || len(repo.Columns()) != 4 {
		t.Fatalf("unexpected metadata: %s %v", repo.PrimaryKey(), repo.Columns())
	}

	rec, err := repo.Insert(ctx, records.SpawnConditionValue{Value: 5, Zone: "az1", InstanceID: 10})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if rec.ID == 0 || rec.Value != 5 || rec.Zone != "az1" || rec.InstanceID != 10 {
		t.Fatalf("unexpected inserted record %+v", rec)
	}

	rec.Value = 9
	n, err := repo.Update(ctx, rec)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 row updated, got %d (%v)", n, err)
	}

	got, err := repo.Find(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Value != 9 {
		t.Fatalf("expected value 9, got %+v", got)
	}
}

func TestSpawnConditionValues_SlotIsImmutable(t *testing.T) {
	ctx := context.Background()
	repo := setupRepositories(t).SpawnConditionValues

	rec, _ := repo.Insert(ctx, records.SpawnConditionValue{Value: 1, Zone: "qeynos", InstanceID: 0})
	rec.Zone = "halas"
	rec.InstanceID = 3
	repo.Update(ctx, rec)

	got, _ := repo.Find(ctx, rec.ID)
	if got.Zone != "qeynos" || got.InstanceID != 0 {
		t.Fatalf("zone and instance must not change on update, got %+v", got)
	}
}

func TestTributes_SentinelContract(t *testing.T) {
	ctx := context.Background()
	tributes := repository.NewSentinel(setupRepositories(t).Tributes)

	batch := []records.Tribute{
		{Name: "Tribute of Valor", Descr: "Increases the valor of the faithful", IsGuild: 0},
		{Name: "Guild's Resolve", Descr: "A 'guild' blessing", IsGuild: 1},
		{Name: "Tribute of Wisdom", Descr: "", Unknown: 7},
	}
	if n := tributes.InsertMany(ctx, batch); n != 3 {
		t.Fatalf("expected 3 rows inserted, got %d", n)
	}

	all := tributes.All(ctx)
	if len(all) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(all))
	}

	guild := tributes.GetWhere(ctx, "isguild = 1")
	if len(guild) != 1 || guild[0].Name != "Guild's Resolve" || !guild[0].Guild() {
		t.Fatalf("unexpected guild tributes %+v", guild)
	}

	if got := tributes.FindOne(ctx, 999); got != tributes.NewEntity() {
		t.Fatalf("missing tribute should be the empty record, got %+v", got)
	}

	id := guild[0].ID
	if n := tributes.DeleteOne(ctx, id); n != 1 {
		t.Fatalf("expected 1 row deleted, got %d", n)
	}
	if got := tributes.FindOne(ctx, id); got != tributes.NewEntity() {
		t.Fatalf("deleted tribute should be the empty record, got %+v", got)
	}
	if n := tributes.DeleteOne(ctx, id); n != 0 {
		t.Fatalf("expected 0 rows deleted, got %d", n)
	}
}

func TestNewRepositories_SeparateContentHandle(t *testing.T) {
	ctx := context.Background()

	state, err := db.New(db.Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer state.Shutdown()
	content, err := db.New(db.Config{Driver: db.DriverSQLite})
	if err != nil {
		t.Fatal(err)
	}
	defer content.Shutdown()

	for _, d := range []*db.Database{state, content} {
		if err := migrations.NewRunner(d.DB(), d.Dialect()).Run(ctx); err != nil {
			t.Fatal(err)
		}
	}

	repos, err := records.NewRepositories(records.Handles{State: state.DB(), Content: content.DB()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repos.Tributes.Insert(ctx, records.Tribute{Name: "content only"}); err != nil {
		t.Fatal(err)
	}

	var n int
	if err := state.DB().QueryRow("SELECT COUNT(*) FROM tributes").Scan(&n); err != nil || n != 0 {
		t.Fatalf("tributes should be written to the content handle, state has %d (%v)", n, err)
	}
	if err := content.DB().QueryRow("SELECT COUNT(*) FROM tributes").Scan(&n); err != nil || n != 1 {
		t.Fatalf("expected 1 tribute in content handle, got %d (%v)", n, err)
	}
}
