package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/autostruct/internal/catalog"
	"github.com/koustreak/autostruct/internal/typemap"
)

func userModel() Model {
	return Model{
		Ident:  "User",
		Schema: "public",
		Table:  "users",
		Fields: []Field{
			{Ident: "ID", Column: "id", Type: typemap.Type{Kind: typemap.Named, Name: "int64"}, Comment: "primary key, identity"},
			{Ident: "Email", Column: "email", Type: typemap.Type{Kind: typemap.Named, Name: "string"}},
			{Ident: "LastSeen", Column: "last_seen", Type: typemap.Ptr(typemap.Type{Kind: typemap.Qual, Pkg: "time", Name: "Time"})},
		},
	}
}

func moodAux() typemap.Aux {
	return typemap.Aux{
		Kind:   typemap.AuxEnum,
		Name:   catalog.QualifiedName{Schema: "public", Name: "mood"},
		Ident:  "Mood",
		Labels: []string{"sad", "ok", "happy"},
	}
}

func TestTableProfileNone(t *testing.T) {
	e := New("models", ProfileNone)

	src, err := e.Table(userModel())
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "// Code generated by autostruct. DO NOT EDIT.")
	assert.Contains(t, out, "package models")
	assert.Contains(t, out, `// User corresponds to table "public.users".`)
	assert.Contains(t, out, "type User struct {")
	// Field names and types are gofmt-aligned into columns.
	assert.Regexp(t, `ID\s+int64`, out)
	assert.Contains(t, out, "// primary key, identity")
	assert.Contains(t, out, "LastSeen *time.Time")
	assert.Contains(t, out, `"time"`)
	assert.NotContains(t, out, `db:"`)
	assert.NotContains(t, out, "UserTable")
}

func TestTableProfileSQLX(t *testing.T) {
	e := New("models", ProfileSQLX)

	src, err := e.Table(userModel())
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "db:\"id\"")
	assert.Contains(t, out, "db:\"last_seen\"")
	assert.Contains(t, out, `const UserTable = "public.users"`)
}

func TestAuxFile(t *testing.T) {
	e := New("models", ProfileNone)
	e.Register([]typemap.Aux{moodAux()})
	e.Register([]typemap.Aux{
		{
			Kind:  typemap.AuxStruct,
			Name:  catalog.QualifiedName{Schema: "public", Name: "site_info"},
			Ident: "SiteInfo",
			Fields: []typemap.Field{
				{Ident: "URL", Column: "url", Type: typemap.Type{Kind: typemap.Named, Name: "string"}},
				{Ident: "Status", Column: "status", Type: typemap.Type{Kind: typemap.Named, Name: "Mood"}},
			},
		},
	})

	src, ok, err := e.AuxFile()
	require.NoError(t, err)
	require.True(t, ok)

	out := string(src)
	assert.Contains(t, out, "type Mood string")
	assert.Contains(t, out, `MoodSad   Mood = "sad"`)
	assert.Contains(t, out, `MoodOk    Mood = "ok"`)
	assert.Contains(t, out, `MoodHappy Mood = "happy"`)
	assert.Contains(t, out, "type SiteInfo struct {")
	assert.Contains(t, out, "Status Mood")
	assert.Contains(t, out, "func MoodValues() []Mood {")
	assert.Contains(t, out, "MoodSad, MoodOk, MoodHappy")

	enums, structs := e.AuxCount()
	assert.Equal(t, 1, enums)
	assert.Equal(t, 1, structs)
}

func TestAuxFileEmpty(t *testing.T) {
	e := New("models", ProfileNone)
	_, ok, err := e.AuxFile()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterDeduplicates(t *testing.T) {
	e := New("models", ProfileNone)
	// Two tables whose columns both reference the same enum type.
	e.Register([]typemap.Aux{moodAux()})
	e.Register([]typemap.Aux{moodAux()})

	src, ok, err := e.AuxFile()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, strings.Count(string(src), "type Mood string"))
}

func TestSingleFile(t *testing.T) {
	e := New("models", ProfileNone)
	e.Register([]typemap.Aux{moodAux()})

	src, err := e.Single([]Model{userModel()})
	require.NoError(t, err)

	out := string(src)
	// Declarations come before the structs that use them.
	assert.Less(t, strings.Index(out, "type Mood string"), strings.Index(out, "type User struct"))
}

func TestRenderDeterministic(t *testing.T) {
	a, err := New("models", ProfileSQLX).Table(userModel())
	require.NoError(t, err)
	b, err := New("models", ProfileSQLX).Table(userModel())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
