package script

import (
	"context"

	"github.com/risor-io/risor/object"

	"github.com/jward/rdf2csv/internal/table"
)

// Host functions hand out plain Risor strings and ints. Risor cannot hold
// references into the table, so every edit goes back through a function.

// columns() → list of column names
func makeColumnsFn(t *table.Table) *object.Builtin {
	return object.NewBuiltin("columns", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("columns", 0, len(args))
		}
		items := make([]object.Object, len(t.Columns))
		for i, c := range t.Columns {
			items[i] = object.NewString(c)
		}
		return object.NewList(items)
	})
}

// row_count() → int
func makeRowCountFn(t *table.Table) *object.Builtin {
	return object.NewBuiltin("row_count", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("row_count", 0, len(args))
		}
		return object.NewInt(int64(t.Len()))
	})
}

// row_key(row) → subject identifier of the row
func makeRowKeyFn(t *table.Table) *object.Builtin {
	return object.NewBuiltin("row_key", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("row_key", 1, len(args))
		}
		row, errObj := rowArg("row_key", args[0], t)
		if errObj != nil {
			return errObj
		}
		return object.NewString(t.Keys[row])
	})
}

// get(row, column) → string
func makeGetFn(t *table.Table) *object.Builtin {
	return object.NewBuiltin("get", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("get", 2, len(args))
		}
		row, ok := args[0].(*object.Int)
		if !ok {
			return object.Errorf("get: row must be an int, got %s", args[0].Type())
		}
		col, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("get: column must be a string, got %s", args[1].Type())
		}
		v, err := t.Get(int(row.Value()), col.Value())
		if err != nil {
			return object.Errorf("get: %v", err)
		}
		return object.NewString(v)
	})
}

// set(row, column, value)
func makeSetFn(t *table.Table) *object.Builtin {
	return object.NewBuiltin("set", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 {
			return object.NewArgsError("set", 3, len(args))
		}
		row, ok := args[0].(*object.Int)
		if !ok {
			return object.Errorf("set: row must be an int, got %s", args[0].Type())
		}
		col, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("set: column must be a string, got %s", args[1].Type())
		}
		if err := t.Set(int(row.Value()), col.Value(), stringValue(args[2])); err != nil {
			return object.Errorf("set: %v", err)
		}
		return object.Nil
	})
}

// rename_column(from, to)
func makeRenameColumnFn(t *table.Table) *object.Builtin {
	return object.NewBuiltin("rename_column", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("rename_column", 2, len(args))
		}
		from, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("rename_column: from must be a string, got %s", args[0].Type())
		}
		to, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("rename_column: to must be a string, got %s", args[1].Type())
		}
		if err := t.RenameColumn(from.Value(), to.Value()); err != nil {
			return object.Errorf("rename_column: %v", err)
		}
		return object.Nil
	})
}

// drop_column(column)
func makeDropColumnFn(t *table.Table) *object.Builtin {
	return object.NewBuiltin("drop_column", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("drop_column", 1, len(args))
		}
		col, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("drop_column: column must be a string, got %s", args[0].Type())
		}
		if err := t.DropColumn(col.Value()); err != nil {
			return object.Errorf("drop_column: %v", err)
		}
		return object.Nil
	})
}

// delete_row(row)
func makeDeleteRowFn(t *table.Table) *object.Builtin {
	return object.NewBuiltin("delete_row", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("delete_row", 1, len(args))
		}
		row, errObj := rowArg("delete_row", args[0], t)
		if errObj != nil {
			return errObj
		}
		if err := t.DeleteRow(row); err != nil {
			return object.Errorf("delete_row: %v", err)
		}
		return object.Nil
	})
}

func rowArg(fn string, arg object.Object, t *table.Table) (int, object.Object) {
	i, ok := arg.(*object.Int)
	if !ok {
		return 0, object.Errorf("%s: row must be an int, got %s", fn, arg.Type())
	}
	row := int(i.Value())
	if row < 0 || row >= t.Len() {
		return 0, object.Errorf("%s: row %d out of range [0,%d)", fn, row, t.Len())
	}
	return row, nil
}

// stringValue renders a Risor value as cell text. Strings are taken as is.
func stringValue(obj object.Object) string {
	switch v := obj.(type) {
	case *object.String:
		return v.Value()
	case *object.NilType:
		return ""
	default:
		return obj.Inspect()
	}
}
