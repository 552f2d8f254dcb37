package generate

import (
	"github.com/crudforge/crudforge/pkg/naming"
	"github.com/crudforge/crudforge/pkg/render"
	"github.com/crudforge/crudforge/pkg/typemap"
)

// PolicyGenerator emits permissive authorization defaults. Tables owning a
// user_id column get an owner check on mutations.
type PolicyGenerator struct{}

// Name implements Generator.
func (PolicyGenerator) Name() string { return "policy" }

// Generate implements Generator.
func (g PolicyGenerator) Generate(in Input) ([]FileRecord, error) {
	repl := baseRepl(in)
	repl["package"] = "policies"

	repl["owner_check"] = ""
	if owner := in.Table.Column("user_id"); owner != nil && !owner.Nullable {
		if canon, _ := typemap.Canonical(owner.SQLType); canon == "integer" {
			repl["owner_check"] = "actor.Identifier() == row.UserID || "
		}
	}

	content := render.Render(render.MustStub("policy"), repl)

	rec, err := in.emit(g.Name(), "internal/policies/"+naming.Snake(repl["model"])+"_policy.go", content)
	if err != nil {
		return nil, err
	}
	return []FileRecord{rec}, nil
}

// TestsGenerator emits a CRUD test skeleton for the generated repository.
type TestsGenerator struct{}

// Name implements Generator.
func (TestsGenerator) Name() string { return "tests" }

// Generate implements Generator.
func (g TestsGenerator) Generate(in Input) ([]FileRecord, error) {
	repl := baseRepl(in)
	repl["package"] = "tests"
	repl["pk_accessor"] = "row." + naming.Field(repl["primary_key"])

	content := render.Render(render.MustStub("model_test"), repl)

	rec, err := in.emit(g.Name(), "tests/"+naming.Snake(repl["model"])+"_crud_test.go", content)
	if err != nil {
		return nil, err
	}

	// Shared test helper, written once and skipped for subsequent tables.
	helper, err := in.emit(g.Name(), "internal/testutil/db.go", render.MustStub("testutil"))
	if err != nil {
		return nil, err
	}
	return []FileRecord{rec, helper}, nil
}
