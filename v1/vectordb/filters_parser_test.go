package vectordb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhere_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		expr, err := ParseWhere(in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if expr != nil {
			t.Errorf("expected nil expression for %q, got %v", in, expr)
		}
	}
}

func TestParseWhere_Comparisons(t *testing.T) {
	tests := []struct {
		input string
		want  *Comparison
	}{
		{"category = 'news'", &Comparison{Field: FieldPath{"category"}, Op: OpEq, Value: "news"}},
		{"category == 'news'", &Comparison{Field: FieldPath{"category"}, Op: OpEq, Value: "news"}},
		{"year != 2020", &Comparison{Field: FieldPath{"year"}, Op: OpNe, Value: int64(2020)}},
		{"year <> 2020", &Comparison{Field: FieldPath{"year"}, Op: OpNe, Value: int64(2020)}},
		{"score < 1.5", &Comparison{Field: FieldPath{"score"}, Op: OpLt, Value: 1.5}},
		{"score <= -2", &Comparison{Field: FieldPath{"score"}, Op: OpLte, Value: int64(-2)}},
		{"score > 1e3", &Comparison{Field: FieldPath{"score"}, Op: OpGt, Value: 1000.0}},
		{"score >= .5", &Comparison{Field: FieldPath{"score"}, Op: OpGte, Value: 0.5}},
		{"published = TRUE", &Comparison{Field: FieldPath{"published"}, Op: OpEq, Value: true}},
		{"published = false", &Comparison{Field: FieldPath{"published"}, Op: OpEq, Value: false}},
		{"published", &Comparison{Field: FieldPath{"published"}, Op: OpEq, Value: true}},
		{"title = 'it''s'", &Comparison{Field: FieldPath{"title"}, Op: OpEq, Value: "it's"}},
		{`"my field" = 1`, &Comparison{Field: FieldPath{"my field"}, Op: OpEq, Value: int64(1)}},
		{"`select` = 1", &Comparison{Field: FieldPath{"select"}, Op: OpEq, Value: int64(1)}},
		{"meta.author.name = 'ada'", &Comparison{Field: FieldPath{"meta", "author", "name"}, Op: OpEq, Value: "ada"}},
		{"title LIKE 'intro%'", &Comparison{Field: FieldPath{"title"}, Op: OpLike, Value: "intro%"}},
		{"10 < year", &Comparison{Field: FieldPath{"year"}, Op: OpGt, Value: int64(10)}},
		{"'news' = category", &Comparison{Field: FieldPath{"category"}, Op: OpEq, Value: "news"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := ParseWhere(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr)
		})
	}
}

func TestParseWhere_Lists(t *testing.T) {
	expr, err := ParseWhere("tag IN ('a', 'b', 3)")
	require.NoError(t, err)
	assert.Equal(t, &InList{Field: FieldPath{"tag"}, Values: []any{"a", "b", int64(3)}}, expr)

	expr, err = ParseWhere("tag not in (1)")
	require.NoError(t, err)
	assert.Equal(t, &InList{Field: FieldPath{"tag"}, Values: []any{int64(1)}, Negate: true}, expr)
}

func TestParseWhere_NullChecks(t *testing.T) {
	expr, err := ParseWhere("deleted_at IS NULL")
	require.NoError(t, err)
	assert.Equal(t, &NullCheck{Field: FieldPath{"deleted_at"}}, expr)

	expr, err = ParseWhere("deleted_at is not null")
	require.NoError(t, err)
	assert.Equal(t, &NullCheck{Field: FieldPath{"deleted_at"}, Negate: true}, expr)
}

func TestParseWhere_NotLike(t *testing.T) {
	expr, err := ParseWhere("title NOT LIKE '%draft%'")
	require.NoError(t, err)
	assert.Equal(t, &Not{Expr: &Comparison{Field: FieldPath{"title"}, Op: OpLike, Value: "%draft%"}}, expr)
}

func TestParseWhere_Precedence(t *testing.T) {
	// AND binds tighter than OR.
	expr, err := ParseWhere("a = 1 OR b = 2 AND c = 3")
	require.NoError(t, err)
	assert.Equal(t, "(a = 1 OR (b = 2 AND c = 3))", expr.String())

	expr, err = ParseWhere("(a = 1 OR b = 2) AND NOT c = 3")
	require.NoError(t, err)
	assert.Equal(t, "((a = 1 OR b = 2) AND NOT c = 3)", expr.String())

	expr, err = ParseWhere("NOT NOT a = 1")
	require.NoError(t, err)
	assert.Equal(t, "NOT NOT a = 1", expr.String())
}

func TestParseWhere_Errors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"category = 'news", "unterminated string literal at position 11"},
		{"a = 1 AND", "unexpected end of expression"},
		{"a = NULL", "NULL can only be compared with IS NULL or IS NOT NULL"},
		{"a = b", "comparing two fields is not supported"},
		{"1 = 2", "comparison requires a field"},
		{"a IN (b)", "IN lists may only contain literals"},
		{"a IN 1", "expected '('"},
		{"a LIKE 3", "LIKE requires a string pattern"},
		{"a IS 3", "expected NULL"},
		{"(a = 1", "expected ')'"},
		{"a = 1 b = 2", "unexpected \"b\""},
		{"a ! 1", "unexpected '!'"},
		{"a = 1 ; drop", "unexpected character ';'"},
		{"TRUE", "constant true is not a valid filter"},
		{"a NOT 1", "expected IN or LIKE after NOT"},
		{`"" = 1`, "empty quoted identifier"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseWhere(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFilter), "expected ErrInvalidFilter, got %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestAllOf(t *testing.T) {
	if AllOf() != nil {
		t.Errorf("expected nil for no expressions")
	}
	if AllOf(nil, nil) != nil {
		t.Errorf("expected nil for nil expressions")
	}

	single := NewComparison("a", OpEq, 1)
	if AllOf(nil, single) != single {
		t.Errorf("expected the single expression back")
	}

	joined := AllOf(NewComparison("a", OpEq, 1), NewIsNull("b"), NewIn("c", "x", "y"))
	assert.Equal(t, "((a = 1 AND b IS NULL) AND c IN ('x', 'y'))", joined.String())
}

func TestWalkFields(t *testing.T) {
	expr, err := ParseWhere("a = 1 AND (meta.b IS NULL OR NOT c IN (1, 2))")
	require.NoError(t, err)

	var fields []string
	WalkFields(expr, func(p FieldPath) {
		fields = append(fields, p.String())
	})
	assert.Equal(t, []string{"a", "meta.b", "c"}, fields)
}

func TestFieldPath(t *testing.T) {
	p := FieldPath{"meta", "author"}
	assert.Equal(t, "meta", p.Column())
	assert.Equal(t, []string{"author"}, p.Nested())
	assert.Nil(t, FieldPath{"a"}.Nested())
	assert.Equal(t, "", FieldPath{}.Column())
}
