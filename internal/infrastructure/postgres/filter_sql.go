package postgres

import (
	"strconv"
	"strings"

	"github.com/oksasatya/roommate-finder/internal/domain/repository"
)

// whereBuilder accumulates AND-ed equality predicates with numbered placeholders.
type whereBuilder struct {
	conds []string
	args  []any
}

func (b *whereBuilder) eq(column string, v any) {
	b.args = append(b.args, v)
	b.conds = append(b.conds, column+" = $"+strconv.Itoa(len(b.args)))
}

func (b *whereBuilder) ne(column string, v any) {
	b.args = append(b.args, v)
	b.conds = append(b.conds, column+" <> $"+strconv.Itoa(len(b.args)))
}

func (b *whereBuilder) eqIfSet(column, v string) {
	if v != "" {
		b.eq(column, v)
	}
}

func (b *whereBuilder) clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the SQL tail.
func (b *whereBuilder) page(limit, offset int) string {
	b.args = append(b.args, limit, offset)
	n := len(b.args)
	return " LIMIT $" + strconv.Itoa(n-1) + " OFFSET $" + strconv.Itoa(n)
}

func buildProfileQuery(f repository.ProfileFilter) (string, []any) {
	b := &whereBuilder{}
	b.eqIfSet("gender", f.Gender)
	b.eqIfSet("degree", f.Degree)
	b.eqIfSet("course", f.Course)
	b.eqIfSet("diet", f.Diet)
	b.eqIfSet("sleep", f.Sleep)
	b.eqIfSet("neat", f.Neat)
	b.eqIfSet("study", f.Study)
	b.eqIfSet("drug", f.Drug)
	b.eqIfSet("country", f.Country)
	if f.HaveProperty != nil {
		b.eq("have_property", *f.HaveProperty)
	}
	if f.VisibleOnly {
		b.eq("visibility", true)
	}
	if f.ExcludeUserID != "" {
		b.ne("user_id", f.ExcludeUserID)
	}
	limit, offset := f.Page()
	sql := `SELECT ` + profileColumns + ` FROM profiles` + b.clause() +
		` ORDER BY updated_at DESC, id` + b.page(limit, offset)
	return sql, b.args
}

func buildPostQuery(f repository.PostFilter) (string, []any) {
	b := &whereBuilder{}
	b.eqIfSet("user_id", f.UserID)
	limit, offset := f.Page()
	sql := `SELECT id, user_id, title, content, created_at FROM forum_posts` + b.clause() +
		` ORDER BY created_at DESC, id` + b.page(limit, offset)
	return sql, b.args
}
