package storage

import "strings"

// DayOrderExpr sorts a day_of_week column Monday first.
const DayOrderExpr = `CASE day_of_week
		WHEN 'monday' THEN 1
		WHEN 'tuesday' THEN 2
		WHEN 'wednesday' THEN 3
		WHEN 'thursday' THEN 4
		WHEN 'friday' THEN 5
		WHEN 'saturday' THEN 6
		WHEN 'sunday' THEN 7
	END`

// LikeEscape is the escape character paired with EscapeLike.
const LikeEscape = `\`

// EscapeLike quotes LIKE wildcards so a search term matches literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ContainsPattern returns a LIKE pattern matching s anywhere in a column.
func ContainsPattern(s string) string {
	return "%" + EscapeLike(s) + "%"
}
