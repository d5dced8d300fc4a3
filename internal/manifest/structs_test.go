package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnNames(m core.Model) []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Name
	}
	return names
}

func findDef(t *testing.T, defs []Definition, name string) Definition {
	t.Helper()
	for _, d := range defs {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("model %s not found", name)
	return Definition{}
}

func TestLoadStructs(t *testing.T) {
	defs, err := LoadStructs("testdata/models")
	require.NoError(t, err)

	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"User", "Pet", "Profile"}, names)

	t.Run("user", func(t *testing.T) {
		user := findDef(t, defs, "User")
		assert.Equal(t, "users", user.TableName)
		assert.Equal(t, SourceStruct, user.Source)
		assert.False(t, user.InlineColumns)
		assert.Equal(t, "testdata/models/user.go", user.File)
		assert.Equal(t, []string{
			"id", "created_at", "updated_at", "deleted_at",
			"name", "nickname", "email_address", "status", "bio", "handle", "code", "type", "last_seen",
		}, columnNames(user.Model))

		name, _ := user.Column("name")
		assert.Equal(t, core.ColumnTypeString, name.Type)
		assert.Nil(t, name.Limit)

		nickname, _ := user.Column("nickname")
		assert.Equal(t, core.IntPtr(32), nickname.Limit)

		bio, _ := user.Column("bio")
		assert.Equal(t, core.ColumnTypeText, bio.Type)

		handle, _ := user.Column("handle")
		assert.Equal(t, core.IntPtr(40), handle.Limit)

		lastSeen, _ := user.Column("last_seen")
		assert.Equal(t, core.ColumnTypeDatetime, lastSeen.Type)
		assert.Equal(t, 13, lastSeen.Position)

		require.Len(t, user.Associations, 2)
		assert.Equal(t, core.Association{Kind: core.AssociationHasMany, Name: "pets"}, user.Associations[0])
		assert.Equal(t, core.Association{Kind: core.AssociationHasOne, Name: "profile"}, user.Associations[1])
	})

	t.Run("user validators", func(t *testing.T) {
		user := findDef(t, defs, "User")

		var kinds []core.ValidatorKind
		for _, v := range user.Validators {
			kinds = append(kinds, v.Kind)
		}
		assert.Equal(t, []core.ValidatorKind{
			core.ValidatorLength, core.ValidatorOther, core.ValidatorOther,
			core.ValidatorInclusion,
			core.ValidatorLength,
		}, kinds)

		assert.Equal(t, []string{"email_address"}, user.Validators[0].Attributes)
		assert.Equal(t, map[string]any{"maximum": 255}, user.Validators[0].Options)
		assert.Equal(t, map[string]any{"in": []string{"active", "banned"}}, user.Validators[3].Options)
		assert.Equal(t, []string{"code"}, user.Validators[4].Attributes)
		assert.Equal(t, map[string]any{"minimum": 3}, user.Validators[4].Options)
	})

	t.Run("pet", func(t *testing.T) {
		pet := findDef(t, defs, "Pet")
		assert.Equal(t, "animals", pet.TableName)
		assert.Equal(t, []string{"id", "name", "owner_id", "owner_type"}, columnNames(pet.Model))

		id, _ := pet.Column("id")
		assert.False(t, id.Nullable)

		require.Len(t, pet.Associations, 1)
		assert.Equal(t, core.Association{
			Kind:              core.AssociationBelongsTo,
			Name:              "owner",
			Polymorphic:       true,
			ForeignTypeColumn: "owner_type",
		}, pet.Associations[0])

		require.Len(t, pet.Validators, 1)
		assert.Equal(t, map[string]any{"minimum": 8, "maximum": 8}, pet.Validators[0].Options)
	})

	t.Run("profile", func(t *testing.T) {
		profile := findDef(t, defs, "Profile")
		assert.Equal(t, "profiles", profile.TableName)
		assert.Equal(t, []string{"created_at", "updated_at", "id", "user_id", "url"}, columnNames(profile.Model))

		url, _ := profile.Column("url")
		assert.Equal(t, core.IntPtr(255), url.Limit)
		assert.False(t, url.Nullable)

		require.Len(t, profile.Associations, 1)
		assert.Equal(t, core.AssociationBelongsTo, profile.Associations[0].Kind)
		assert.Equal(t, "user", profile.Associations[0].Name)
	})
}

func TestLoadStructs_Errors(t *testing.T) {
	t.Run("invalid source", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.go"), []byte("package models\ntype X struct {"), 0o600))

		_, err := LoadStructs(dir)
		require.Error(t, err)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "invalid Go source", perr.Message)
	})

	t.Run("bad size", func(t *testing.T) {
		dir := t.TempDir()
		src := "package models\ntype Tag struct {\n\tName string `gorm:\"size:big\"`\n}\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tag.go"), []byte(src), 0o600))

		_, err := LoadStructs(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid size "big"`)
	})

	t.Run("missing dir", func(t *testing.T) {
		_, err := LoadStructs(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
	})
}

func TestLoadStructs_SkipsTests(t *testing.T) {
	dir := t.TempDir()
	src := "package models\ntype Tag struct {\n\tName string `validate:\"max=5\"`\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tag_test.go"), []byte(src), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.go"), []byte("package models\n"), 0o600))

	defs, err := LoadStructs(dir)
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Name":       "name",
		"UserID":     "user_id",
		"HTTPServer": "http_server",
		"LastSeenAt": "last_seen_at",
		"URL":        "url",
		"OAuth2Key":  "o_auth2_key",
	}
	for in, want := range tests {
		assert.Equal(t, want, toSnakeCase(in), in)
	}
}

func TestTableNameFor(t *testing.T) {
	tests := map[string]string{
		"User":     "users",
		"Category": "categories",
		"Day":      "days",
		"Address":  "addresses",
		"Box":      "boxes",
		"Match":    "matches",
		"BlogPost": "blog_posts",
	}
	for in, want := range tests {
		assert.Equal(t, want, tableNameFor(in), in)
	}
}
