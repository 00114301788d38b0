package repotest

import "github.com/jackc/pgx/v5/pgconn"

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// foreignKeyViolation mirrors the error Postgres raises when a delete would orphan table.column.
func foreignKeyViolation(table, column string) error {
	return &pgconn.PgError{
		Code:           "23503",
		TableName:      table,
		ConstraintName: table + "_" + column + "_fkey",
	}
}
