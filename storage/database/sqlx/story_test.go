package sqlxrepos

import (
	"testing"

	"github.com/datastorylab/showtell/core"
)

func Test_storyRepository_orderClause(t *testing.T) {
	repo := storyRepository{}

	tests := []struct {
		name     string
		ordering []core.DBOrdering
		want     string
	}{
		{name: "nil defaults to newest first", want: "si.created_at DESC"},
		{name: "single field", ordering: []core.DBOrdering{{Field: "email", Ascending: true}}, want: "si.email ASC"},
		{name: "week maps to its column", ordering: []core.DBOrdering{{Field: "week"}}, want: "si.week_id DESC"},
		{
			name:     "multiple fields",
			ordering: []core.DBOrdering{{Field: "student_name", Ascending: true}, {Field: "created_at"}},
			want:     "si.student_name ASC, si.created_at DESC",
		},
		{
			// anything outside the whitelist never reaches the SQL text
			name:     "unknown fields dropped",
			ordering: []core.DBOrdering{{Field: "si.email; DROP TABLE students"}},
			want:     "si.created_at DESC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repo.orderClause(tt.ordering); got != tt.want {
				t.Errorf("orderClause() = %q; want %q", got, tt.want)
			}
		})
	}
}
