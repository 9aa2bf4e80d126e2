package repo

import (
	"strconv"
	"strings"
	"time"

	"expensetracker/src/core/domain"
	"expensetracker/src/core/query"
)

// orderNewestFirst is appended to every list query.
const orderNewestFirst = " ORDER BY date DESC, created_at DESC"

// dialect captures the differences between the SQL stores: placeholder
// syntax, the projected columns and how times are encoded.
type dialect struct {
	name        string
	columns     string
	placeholder func(n int) string
	encodeTime  func(t time.Time) any
	// nowExpr is the SQL expression used for updated_at; empty means bind the current time.
	nowExpr string
}

var postgresDialect = dialect{
	name:        "postgres",
	columns:     "id::text, title, amount::text, category, date, created_at, updated_at",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	encodeTime:  func(t time.Time) any { return t.UTC() },
	nowExpr:     "now()",
}

// sqliteTimeLayout is fixed width for every year ParseDate accepts, so
// stored times compare correctly as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

var sqliteDialect = dialect{
	name:        "sqlite",
	columns:     "id, title, amount, category, date, created_at, updated_at",
	placeholder: func(int) string { return "?" },
	encodeTime:  func(t time.Time) any { return formatSQLiteTime(t) },
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	return time.ParseInLocation(sqliteTimeLayout, s, time.UTC)
}

// args accumulates bind values and hands out matching placeholders.
type args struct {
	d      dialect
	values []any
}

func (a *args) bind(v any) string {
	a.values = append(a.values, v)
	return a.d.placeholder(len(a.values))
}

// where compiles a filter into a WHERE clause. Values are always bound,
// never interpolated. An empty filter yields an empty clause.
func (d dialect) where(f query.Filter, a *args) string {
	var conds []string
	if f.Category != nil {
		conds = append(conds, "category = "+a.bind(*f.Category))
	}
	if f.From != nil {
		conds = append(conds, "date >= "+a.bind(d.encodeTime(*f.From)))
	}
	if f.Before != nil {
		conds = append(conds, "date < "+a.bind(d.encodeTime(*f.Before)))
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// selectExpenses builds the list query for a filter.
func (d dialect) selectExpenses(f query.Filter) (string, []any) {
	a := &args{d: d}
	sql := "SELECT " + d.columns + " FROM expenses" + d.where(f, a) + orderNewestFirst
	return sql, a.values
}

// selectByID builds the point lookup.
func (d dialect) selectByID(id string) (string, []any) {
	a := &args{d: d}
	sql := "SELECT " + d.columns + " FROM expenses WHERE id = " + a.bind(id)
	return sql, a.values
}

// updateExpense builds an UPDATE ... RETURNING for the supplied patch fields.
// Only allow-listed columns can appear in the SET clause.
func (d dialect) updateExpense(id string, p domain.ExpensePatch, now time.Time) (string, []any) {
	a := &args{d: d}
	var sets []string
	if p.Title != nil {
		sets = append(sets, "title = "+a.bind(*p.Title))
	}
	if p.Amount != nil {
		sets = append(sets, "amount = "+a.bind(p.Amount.String()))
	}
	if p.Category != nil {
		sets = append(sets, "category = "+a.bind(*p.Category))
	}
	if p.Date != nil {
		sets = append(sets, "date = "+a.bind(d.encodeTime(*p.Date)))
	}
	if d.nowExpr != "" {
		sets = append(sets, "updated_at = "+d.nowExpr)
	} else {
		sets = append(sets, "updated_at = "+a.bind(d.encodeTime(now)))
	}

	sql := "UPDATE expenses SET " + strings.Join(sets, ", ") +
		" WHERE id = " + a.bind(id) +
		" RETURNING " + d.columns
	return sql, a.values
}
