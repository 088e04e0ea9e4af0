package dynamosql

import (
	"context"
)

// ConvertRows converts cursor rows into dest.
// Useful for one-time conversion. For repeated use, consider creating DataMapper.
//
// Example:
//
//	var dest []MyModel
//	rows, err := cur.FetchAll(ctx)
//	err = dynamosql.ConvertRows(ctx, &dest, cur.Columns(), rows)
func ConvertRows(ctx context.Context, dest interface{}, columns []Column, rows []Row) (err error) {
	mapper, err := NewMapperFor(dest)
	if err == nil {
		err = mapper.AppendRows(ctx, columns, rows)
	}
	return
}

// FetchAllInto fetches every remaining row of cur into dest.
func FetchAllInto(ctx context.Context, cur *Cursor, dest interface{}) error {
	rows, err := cur.FetchAll(ctx)
	if err != nil {
		return err
	}
	return ConvertRows(ctx, dest, cur.Columns(), rows)
}
