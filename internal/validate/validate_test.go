package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/taskhub/internal/errs"
)

func mustDefault(t *testing.T) *Validator {
	t.Helper()
	v, err := Default()
	require.NoError(t, err)
	return v
}

func TestDefault_LoadsEverySchema(t *testing.T) {
	v := mustDefault(t)
	for _, id := range []string{Register, Login, TaskCreate, TaskUpdate, CategoryCreate, CategoryUpdate, NoteCreate, NoteUpdate} {
		require.True(t, v.HasSchema(id), id)
	}
	require.False(t, v.HasSchema(base+"defs.json"))
}

func TestValidate_Register(t *testing.T) {
	v := mustDefault(t)
	cases := []struct {
		name string
		doc  string
		ok   bool
	}{
		{"valid", `{"email":"a@b.co","password":"secret","name":"A"}`, true},
		{"bad email", `{"email":"nope","password":"secret","name":"A"}`, false},
		{"short password", `{"email":"a@b.co","password":"12345","name":"A"}`, false},
		{"missing name", `{"email":"a@b.co","password":"secret"}`, false},
		{"not json", `{"email":`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateBytes([]byte(tc.doc), Register)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errs.ErrValidation)
			var ve *Error
			require.True(t, errors.As(err, &ve))
			require.NotEmpty(t, ve.Details)
		})
	}
}

func TestValidate_TaskCreate(t *testing.T) {
	v := mustDefault(t)
	ok := []string{
		`{"title":"t"}`,
		`{"title":"t","priority":"high","status":"in_progress","due_date":"2026-05-01"}`,
		`{"title":"t","due_date":"2026-05-01T10:00:00Z","category_id":3,"subtasks":[{"title":"s"}]}`,
		`{"title":"t","due_date":null,"category_id":null,"description":null}`,
	}
	for _, doc := range ok {
		require.NoError(t, v.ValidateBytes([]byte(doc), TaskCreate), doc)
	}
	bad := []string{
		`{}`,
		`{"title":""}`,
		`{"title":"t","priority":"urgent"}`,
		`{"title":"t","status":"closed"}`,
		`{"title":"t","due_date":"tomorrow"}`,
		`{"title":"t","category_id":0}`,
		`{"title":"t","subtasks":[{"is_completed":true}]}`,
	}
	for _, doc := range bad {
		require.ErrorIs(t, v.ValidateBytes([]byte(doc), TaskCreate), errs.ErrValidation, doc)
	}
}

func TestValidate_TaskUpdate_AllOptional(t *testing.T) {
	v := mustDefault(t)
	require.NoError(t, v.ValidateBytes([]byte(`{}`), TaskUpdate))
	require.NoError(t, v.ValidateBytes([]byte(`{"subtasks":[]}`), TaskUpdate))
	require.Error(t, v.ValidateBytes([]byte(`{"title":null}`), TaskUpdate))
}

func TestValidate_CategoryColor(t *testing.T) {
	v := mustDefault(t)
	for _, c := range []string{`"#fff"`, `"#A1B2C3"`, `""`, `null`} {
		require.NoError(t, v.ValidateBytes([]byte(`{"name":"n","color":`+c+`}`), CategoryCreate), c)
	}
	for _, c := range []string{`"red"`, `"#ffff"`, `"fff"`, `12`} {
		require.Error(t, v.ValidateBytes([]byte(`{"name":"n","color":`+c+`}`), CategoryCreate), c)
	}
}

func TestValidate_Note(t *testing.T) {
	v := mustDefault(t)
	require.NoError(t, v.ValidateBytes([]byte(`{"title":"n","content":"c"}`), NoteCreate))
	require.Error(t, v.ValidateBytes([]byte(`{"content":"c"}`), NoteCreate))
	require.NoError(t, v.ValidateBytes([]byte(`{"content":"c"}`), NoteUpdate))
}

func TestValidate_UnknownSchema(t *testing.T) {
	v := mustDefault(t)
	err := v.ValidateBytes([]byte(`{}`), "nope")
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrValidation)
}

func TestNewValidator_RequiresID(t *testing.T) {
	_, err := NewValidator([]string{`{"type":"object"}`}, nil)
	require.Error(t, err)
}
