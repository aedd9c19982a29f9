package database

import (
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Statement is one SurrealQL statement with its bound parameters
type Statement struct {
	Query string
	Vars  map[string]interface{}
}

// TxBuilder collects statements into a single BEGIN/COMMIT block. Each
// statement's parameters are renamed ($id -> $v3_id) so several statements
// may bind the same name. LET variables are not renamed and are shared by
// the whole block.
type TxBuilder struct {
	statements []string
	vars       map[string]interface{}
	seq        int
}

func NewTxBuilder() *TxBuilder {
	return &TxBuilder{vars: make(map[string]interface{})}
}

// Add appends query and returns how its parameters were renamed
func (tb *TxBuilder) Add(query string, vars map[string]interface{}) map[string]string {
	// Longest first, so renaming $id cannot touch $id_list
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	renamed := make(map[string]string, len(names))
	for _, name := range names {
		tb.seq++
		alias := fmt.Sprintf("v%d_%s", tb.seq, name)
		param := regexp.MustCompile(`\$` + regexp.QuoteMeta(name) + `\b`)
		query = param.ReplaceAllLiteralString(query, "$"+alias)
		tb.vars[alias] = vars[name]
		renamed[name] = alias
	}

	tb.statements = append(tb.statements, query)
	return renamed
}

// AddRaw appends a statement that binds no parameters
func (tb *TxBuilder) AddRaw(query string) {
	tb.statements = append(tb.statements, query)
}

func (tb *TxBuilder) Len() int {
	return len(tb.statements)
}

// Build renders the block. An empty builder renders to "".
func (tb *TxBuilder) Build() (string, map[string]interface{}) {
	if len(tb.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		sb.WriteString(stmt)
		if end := strings.TrimSpace(stmt); !strings.HasSuffix(end, ";") && !strings.HasSuffix(end, "}") {
			sb.WriteByte(';')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("COMMIT TRANSACTION;")
	return sb.String(), tb.vars
}

// ThrowIfEmpty aborts the block with ConflictMarker when the array held by
// variable is empty, which is how a failed guard cancels the writes around it
func ThrowIfEmpty(variable string) string {
	return fmt.Sprintf("IF array::len(%s) = 0 { THROW %q; };", variable, ConflictMarker)
}

// ExecuteTransaction sends the block; an empty builder is a no-op
func ExecuteTransaction(ctx context.Context, db Database, tb *TxBuilder) ([]interface{}, error) {
	query, vars := tb.Build()
	if query == "" {
		return nil, nil
	}
	return db.Query(ctx, query, vars)
}

// RunAtomic executes unguarded statements as one transaction
func RunAtomic(ctx context.Context, db Database, stmts ...Statement) error {
	tb := NewTxBuilder()
	for _, s := range stmts {
		tb.Add(s.Query, s.Vars)
	}
	_, err := ExecuteTransaction(ctx, db, tb)
	return err
}

// LastResult returns the value of the block's final statement, where a
// trailing RETURN leaves it
func LastResult(results []interface{}) (interface{}, error) {
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	last, ok := results[len(results)-1].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result shape", ErrQuery)
	}
	if last["result"] == nil {
		return nil, ErrNotFound
	}
	return last["result"], nil
}
