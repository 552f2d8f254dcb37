package generate

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crudforge/crudforge/pkg/schema"
)

func blogSchema() *schema.Memory {
	users := &schema.Table{
		Name:       "users",
		PrimaryKey: "id",
		Columns: []schema.Column{
			{Name: "id", SQLType: "bigserial", PrimaryKey: true},
			{Name: "name", SQLType: "varchar(255)"},
			{Name: "email", SQLType: "varchar(255)", Unique: true},
			{Name: "created_at", SQLType: "timestamp"},
			{Name: "updated_at", SQLType: "timestamp"},
		},
	}
	posts := &schema.Table{
		Name:       "posts",
		PrimaryKey: "id",
		Columns: []schema.Column{
			{Name: "id", SQLType: "bigserial", PrimaryKey: true},
			{Name: "user_id", SQLType: "bigint"},
			{Name: "title", SQLType: "varchar(255)"},
			{Name: "body", SQLType: "text"},
			{Name: "published_at", SQLType: "timestamp", Nullable: true},
			{Name: "created_at", SQLType: "timestamp"},
			{Name: "updated_at", SQLType: "timestamp"},
		},
		ForeignKeys: []schema.ForeignKey{
			{Name: "posts_user_id_fkey", Column: "user_id", ReferencedTable: "users", ReferencedColumn: "id"},
		},
	}
	return schema.NewMemory(users, posts)
}

func TestRunOneWritesEveryArtifact(t *testing.T) {
	sink := NewMemorySink()
	runner := NewRunner(blogSchema(), sink, Options{Module: "example.com/blog"})

	summary, err := runner.RunOne(context.Background(), "posts")
	require.NoError(t, err)
	require.Equal(t, 0, summary.ExitCode())

	// The tests artifact also emits the shared testutil helper.
	wantRecords := len(All()) + 1
	assert.Len(t, summary.Records, wantRecords)
	assert.Equal(t, wantRecords, summary.CountByAction(ActionWritten))
	assert.Equal(t, []string{"posts"}, summary.Tables)

	model, ok := sink.Files["internal/models/post.go"]
	require.True(t, ok, "model file missing; wrote: %v", reflect.ValueOf(sink.Files).MapKeys())
	assert.Contains(t, string(model), "type Post struct")
	assert.Contains(t, string(model), `func (Post) TableName() string`)

	for _, path := range []string{
		"internal/repository/post_repository.go",
		"internal/service/post_service.go",
		"internal/handlers/post_handler.go",
		"internal/requests/post_requests.go",
		"internal/resources/post_resource.go",
		"internal/routes/post_routes.go",
		"internal/factories/post_factory.go",
		"internal/seeders/post_seeder.go",
		"internal/policies/post_policy.go",
		"tests/post_crud_test.go",
		"internal/testutil/db.go",
		"docs/posts.md",
		"docs/openapi/posts.yaml",
	} {
		assert.Contains(t, sink.Files, path)
	}
}

func TestRunOneUnknownTableIsFatal(t *testing.T) {
	runner := NewRunner(blogSchema(), NewMemorySink(), Options{})

	_, err := runner.RunOne(context.Background(), "missing")
	require.Error(t, err)
}

func TestRunAllCoversEveryTable(t *testing.T) {
	sink := NewMemorySink()
	runner := NewRunner(blogSchema(), sink, Options{})

	summary, err := runner.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"posts", "users"}, summary.Tables)
	assert.Equal(t, 0, summary.ExitCode())
	assert.Contains(t, sink.Files, "internal/models/post.go")
	assert.Contains(t, sink.Files, "internal/models/user.go")
}

func TestRunTablesBatchIsolation(t *testing.T) {
	sink := NewMemorySink()
	runner := NewRunner(blogSchema(), sink, Options{})

	summary := runner.RunTables(context.Background(), []string{"posts", "missing", "users"})

	require.Len(t, summary.Errors, 1, "only the broken table should fail")
	assert.Equal(t, "missing", summary.Errors[0].Table)
	assert.Equal(t, "analysis", summary.Errors[0].Artifact)
	assert.Equal(t, 1, summary.ExitCode())

	// The healthy tables still generated.
	assert.Equal(t, []string{"posts", "users"}, summary.Tables)
	assert.Contains(t, sink.Files, "internal/models/post.go")
	assert.Contains(t, sink.Files, "internal/models/user.go")
}

// faultySink fails writes under one path prefix and delegates the rest.
type faultySink struct {
	*MemorySink
	failUnder string
}

func (f *faultySink) WriteFile(path string, data []byte) error {
	if strings.HasPrefix(path, f.failUnder) {
		return errors.New("write refused")
	}
	return f.MemorySink.WriteFile(path, data)
}

func TestGeneratorFailureDoesNotAbortSiblings(t *testing.T) {
	sink := &faultySink{MemorySink: NewMemorySink(), failUnder: "internal/service/"}
	runner := NewRunner(blogSchema(), sink, Options{})

	summary := runner.RunTables(context.Background(), []string{"posts", "users"})

	require.Len(t, summary.Errors, 2, "one service failure per table")
	assert.Equal(t, "posts", summary.Errors[0].Table)
	assert.Equal(t, "users", summary.Errors[1].Table)
	for _, e := range summary.Errors {
		assert.Equal(t, "service", e.Artifact)
		assert.Contains(t, e.Message, "write refused")
	}
	assert.Equal(t, 1, summary.ExitCode())

	// The failed artifact wrote nothing, its siblings and the next table
	// still ran to completion.
	assert.Equal(t, []string{"posts", "users"}, summary.Tables)
	assert.NotContains(t, sink.Files, "internal/service/post_service.go")
	assert.Contains(t, sink.Files, "internal/models/post.go")
	assert.Contains(t, sink.Files, "internal/handlers/post_handler.go")
	assert.Contains(t, sink.Files, "internal/handlers/user_handler.go")
	assert.Contains(t, sink.Files, "docs/openapi/users.yaml")
}

type explodingGenerator struct{}

func (explodingGenerator) Name() string { return "exploding" }

func (explodingGenerator) Generate(Input) ([]FileRecord, error) {
	panic("bad column math")
}

func TestGeneratorPanicBecomesError(t *testing.T) {
	recs, err := runGenerator(explodingGenerator{}, Input{})
	require.Error(t, err)
	assert.Nil(t, recs)
	assert.Contains(t, err.Error(), "generator panicked")
	assert.Contains(t, err.Error(), "bad column math")
}

func TestSummaryRecordsConnection(t *testing.T) {
	src := blogSchema().WithConnection("blog")
	runner := NewRunner(src, NewMemorySink(), Options{})

	summary, err := runner.RunOne(context.Background(), "posts")
	require.NoError(t, err)
	assert.Equal(t, "blog", summary.Connection)
}

func TestDryRunWritesNothing(t *testing.T) {
	sink := NewMemorySink()
	runner := NewRunner(blogSchema(), sink, Options{DryRun: true})

	summary, err := runner.RunOne(context.Background(), "posts")
	require.NoError(t, err)

	assert.Empty(t, sink.Files, "dry run must not write")
	assert.Equal(t, len(All())+1, summary.CountByAction(ActionPlanned))
	assert.Zero(t, summary.CountByAction(ActionWritten))
}

func TestExistingFilesSkippedWithoutForce(t *testing.T) {
	ctx := context.Background()
	sink := NewMemorySink()
	runner := NewRunner(blogSchema(), sink, Options{})

	_, err := runner.RunOne(ctx, "posts")
	require.NoError(t, err)

	edited := []byte("// locally edited\n")
	sink.Files["internal/models/post.go"] = edited

	summary, err := runner.RunOne(ctx, "posts")
	require.NoError(t, err)

	assert.Equal(t, len(All())+1, summary.CountByAction(ActionSkipped))
	assert.Equal(t, edited, sink.Files["internal/models/post.go"], "skip must not clobber edits")
}

func TestForceOverwrites(t *testing.T) {
	ctx := context.Background()
	sink := NewMemorySink()

	first := NewRunner(blogSchema(), sink, Options{})
	_, err := first.RunOne(ctx, "posts")
	require.NoError(t, err)
	sink.Files["internal/models/post.go"] = []byte("stale")

	forced := NewRunner(blogSchema(), sink, Options{Force: true})
	summary, err := forced.RunOne(ctx, "posts")
	require.NoError(t, err)

	assert.Equal(t, len(All())+1, summary.CountByAction(ActionWritten))
	assert.Contains(t, string(sink.Files["internal/models/post.go"]), "type Post struct")
}

func TestGenerationDeterministic(t *testing.T) {
	ctx := context.Background()

	run := func() map[string][]byte {
		sink := NewMemorySink()
		runner := NewRunner(blogSchema(), sink, Options{Module: "example.com/blog"})
		summary, err := runner.RunAll(ctx)
		require.NoError(t, err)
		require.Equal(t, 0, summary.ExitCode())
		return sink.Files
	}

	first := run()
	second := run()

	require.Equal(t, len(first), len(second))
	for path, data := range first {
		assert.Equal(t, string(data), string(second[path]), "output for %s differs between runs", path)
	}
}

func TestOnlyAndSkipSelection(t *testing.T) {
	ctx := context.Background()

	sink := NewMemorySink()
	runner := NewRunner(blogSchema(), sink, Options{Only: []string{"model", "docs"}})
	summary, err := runner.RunOne(ctx, "posts")
	require.NoError(t, err)

	assert.Len(t, summary.Records, 2)
	assert.Contains(t, sink.Files, "internal/models/post.go")
	assert.Contains(t, sink.Files, "docs/posts.md")
	assert.NotContains(t, sink.Files, "internal/handlers/post_handler.go")

	sink = NewMemorySink()
	runner = NewRunner(blogSchema(), sink, Options{Skip: []string{"openapi"}})
	summary, err = runner.RunOne(ctx, "posts")
	require.NoError(t, err)

	assert.Len(t, summary.Records, len(All()))
	assert.NotContains(t, sink.Files, "docs/openapi/posts.yaml")
}

func TestLowConfidenceRelationsBecomeWarnings(t *testing.T) {
	src := blogSchema()
	src.Add(&schema.Table{
		Name:       "comments",
		PrimaryKey: "id",
		Columns: []schema.Column{
			{Name: "id", SQLType: "bigserial", PrimaryKey: true},
			{Name: "body", SQLType: "text"},
			{Name: "commentable_type", SQLType: "varchar(255)"},
			{Name: "commentable_id", SQLType: "bigint"},
		},
	})

	runner := NewRunner(src, NewMemorySink(), Options{})
	summary, err := runner.RunOne(context.Background(), "posts")
	require.NoError(t, err)

	require.NotEmpty(t, summary.Warnings)
	found := false
	for _, w := range summary.Warnings {
		if strings.Contains(w, "commentable") {
			found = true
		}
	}
	assert.True(t, found, "warnings should name the guessed morph: %v", summary.Warnings)
}

func TestSummaryGrouped(t *testing.T) {
	summary := &Summary{
		Records: []FileRecord{
			{Artifact: "model", Path: "a.go", Action: ActionWritten},
			{Artifact: "docs", Path: "a.md", Action: ActionWritten},
			{Artifact: "model", Path: "b.go", Action: ActionSkipped},
		},
	}

	groups := summary.Grouped()
	require.Len(t, groups, 2)
	assert.Equal(t, "docs", groups[0].Artifact)
	assert.Equal(t, "model", groups[1].Artifact)
	assert.Len(t, groups[1].Records, 2)
}

func TestValidationRulesAppearInRequests(t *testing.T) {
	sink := NewMemorySink()
	runner := NewRunner(blogSchema(), sink, Options{})

	_, err := runner.RunOne(context.Background(), "posts")
	require.NoError(t, err)

	requests := string(sink.Files["internal/requests/post_requests.go"])
	assert.Contains(t, requests, "required|string|max:255", "title rule should survive verbatim")
	assert.Contains(t, requests, "required|string", "body rule")
	assert.Contains(t, requests, `binding:"required,max=255"`)
}
