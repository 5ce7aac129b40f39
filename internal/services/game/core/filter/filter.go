// Package filter provides AIP-160 filter expression parsing for the
// action log, translated either to SQL or to an in-memory predicate.
package filter

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
	"github.com/louisbranch/killchain/internal/services/game/domain/action"
)

// ActionDeclarations returns the field declarations for action log
// filtering.
func ActionDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("type", filtering.TypeString),
		filtering.DeclareIdent("target", filtering.TypeString),
		filtering.DeclareIdent("success", filtering.TypeBool),
		filtering.DeclareIdent("stealth_cost", filtering.TypeInt),
		filtering.DeclareIdent("detection", filtering.TypeInt),
		filtering.DeclareIdent("at", filtering.TypeTimestamp),
		// Bool literals parse as plain identifiers and must be declared
		// for expressions like `success = false` to type-check.
		filtering.DeclareIdent("true", filtering.TypeBool),
		filtering.DeclareIdent("false", filtering.TypeBool),
	)
}

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "action_type = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// fieldMapping maps filter field names to SQL column names.
var fieldMapping = map[string]string{
	"type":         "action_type",
	"target":       "target",
	"success":      "success",
	"stealth_cost": "stealth_cost",
	"detection":    "detection",
	"at":           "at",
}

func invalid(msg string, cause error) error {
	if cause != nil {
		return apperrors.Wrap(apperrors.CodeFilterInvalid, msg, cause)
	}
	return apperrors.New(apperrors.CodeFilterInvalid, msg)
}

func parse(filterStr string) (*expr.Expr, error) {
	decls, err := ActionDeclarations()
	if err != nil {
		return nil, fmt.Errorf("create declarations: %w", err)
	}
	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, invalid("parse filter", err)
	}
	return parsed.CheckedExpr.Expr, nil
}

// ParseActionFilter parses an AIP-160 filter expression and returns a
// SQL condition. Returns an empty condition for an empty filter string.
func ParseActionFilter(filterStr string) (SQLCondition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return SQLCondition{}, nil
	}
	root, err := parse(filterStr)
	if err != nil {
		return SQLCondition{}, err
	}
	return translateExpr(root)
}

func translateExpr(e *expr.Expr) (SQLCondition, error) {
	if e == nil {
		return SQLCondition{}, nil
	}
	call, ok := e.ExprKind.(*expr.Expr_CallExpr)
	if !ok {
		return SQLCondition{}, invalid(fmt.Sprintf("unsupported expression type: %T", e.ExprKind), nil)
	}
	return translateCall(call.CallExpr)
}

func translateCall(call *expr.Expr_Call) (SQLCondition, error) {
	switch call.Function {
	case "_&&_", "AND":
		return translateLogical(call.Args, "AND")
	case "_||_", "OR":
		return translateLogical(call.Args, "OR")
	case "_==_", "=":
		return translateComparison(call.Args, "=")
	case "_!=_", "!=":
		return translateComparison(call.Args, "!=")
	case "_<_", "<":
		return translateComparison(call.Args, "<")
	case "_<=_", "<=":
		return translateComparison(call.Args, "<=")
	case "_>_", ">":
		return translateComparison(call.Args, ">")
	case "_>=_", ">=":
		return translateComparison(call.Args, ">=")
	default:
		return SQLCondition{}, invalid("unsupported function: "+call.Function, nil)
	}
}

func translateLogical(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, invalid(op+" requires 2 arguments", nil)
	}
	left, err := translateExpr(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	right, err := translateExpr(args[1])
	if err != nil {
		return SQLCondition{}, err
	}
	return SQLCondition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func translateComparison(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, invalid("comparison requires 2 arguments", nil)
	}
	field, err := extractFieldName(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	column, ok := fieldMapping[field]
	if !ok {
		return SQLCondition{}, invalid("unknown field: "+field, nil)
	}
	value, err := extractValue(args[1])
	if err != nil {
		return SQLCondition{}, err
	}
	// Timestamps and booleans are stored as integers.
	if t, ok := value.(time.Time); ok {
		value = t.UTC().UnixMilli()
	}
	if b, ok := value.(bool); ok {
		if b {
			value = int64(1)
		} else {
			value = int64(0)
		}
	}
	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", column, op),
		Params: []any{value},
	}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", invalid("nil expression", nil)
	}
	ident, ok := e.ExprKind.(*expr.Expr_IdentExpr)
	if !ok {
		return "", invalid(fmt.Sprintf("expected identifier, got %T", e.ExprKind), nil)
	}
	return ident.IdentExpr.Name, nil
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, invalid("nil expression", nil)
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_IdentExpr:
		// The parser emits bool literals as identifiers.
		switch kind.IdentExpr.Name {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, invalid("unsupported identifier in value position: "+kind.IdentExpr.Name, nil)
	case *expr.Expr_CallExpr:
		if kind.CallExpr.Function == "timestamp" && len(kind.CallExpr.Args) == 1 {
			return extractTimestampValue(kind.CallExpr.Args[0])
		}
		return nil, invalid("unsupported function in value position: "+kind.CallExpr.Function, nil)
	default:
		return nil, invalid(fmt.Sprintf("expected constant or timestamp, got %T", kind), nil)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, invalid("nil constant", nil)
	}
	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return int64(kind.Uint64Value), nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, invalid(fmt.Sprintf("unsupported constant type: %T", kind), nil)
	}
}

func extractTimestampValue(e *expr.Expr) (time.Time, error) {
	if e == nil {
		return time.Time{}, invalid("nil timestamp argument", nil)
	}
	constExpr, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return time.Time{}, invalid("timestamp argument must be a constant string", nil)
	}
	strVal, ok := constExpr.ConstExpr.ConstantKind.(*expr.Constant_StringValue)
	if !ok {
		return time.Time{}, invalid("timestamp argument must be a string", nil)
	}
	t, err := time.Parse(time.RFC3339, strVal.StringValue)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, strVal.StringValue)
		if err != nil {
			return time.Time{}, invalid("invalid timestamp format: "+strVal.StringValue, nil)
		}
	}
	return t.UTC(), nil
}

// Predicate reports whether an action log entry matches a filter.
type Predicate func(action.Entry) bool

// ActionPredicate compiles an AIP-160 filter into an in-memory
// predicate. An empty filter matches everything.
func ActionPredicate(filterStr string) (Predicate, error) {
	if strings.TrimSpace(filterStr) == "" {
		return func(action.Entry) bool { return true }, nil
	}
	root, err := parse(filterStr)
	if err != nil {
		return nil, err
	}
	return compileExpr(root)
}

func compileExpr(e *expr.Expr) (Predicate, error) {
	if e == nil {
		return nil, invalid("nil expression", nil)
	}
	call, ok := e.ExprKind.(*expr.Expr_CallExpr)
	if !ok {
		return nil, invalid(fmt.Sprintf("unsupported expression type: %T", e.ExprKind), nil)
	}
	switch call.CallExpr.Function {
	case "_&&_", "AND":
		return compileLogical(call.CallExpr.Args, true)
	case "_||_", "OR":
		return compileLogical(call.CallExpr.Args, false)
	case "_==_", "=":
		return compileComparison(call.CallExpr.Args, "=")
	case "_!=_", "!=":
		return compileComparison(call.CallExpr.Args, "!=")
	case "_<_", "<":
		return compileComparison(call.CallExpr.Args, "<")
	case "_<=_", "<=":
		return compileComparison(call.CallExpr.Args, "<=")
	case "_>_", ">":
		return compileComparison(call.CallExpr.Args, ">")
	case "_>=_", ">=":
		return compileComparison(call.CallExpr.Args, ">=")
	default:
		return nil, invalid("unsupported function: "+call.CallExpr.Function, nil)
	}
}

func compileLogical(args []*expr.Expr, and bool) (Predicate, error) {
	if len(args) != 2 {
		return nil, invalid("logical operator requires 2 arguments", nil)
	}
	left, err := compileExpr(args[0])
	if err != nil {
		return nil, err
	}
	right, err := compileExpr(args[1])
	if err != nil {
		return nil, err
	}
	if and {
		return func(e action.Entry) bool { return left(e) && right(e) }, nil
	}
	return func(e action.Entry) bool { return left(e) || right(e) }, nil
}

func compileComparison(args []*expr.Expr, op string) (Predicate, error) {
	if len(args) != 2 {
		return nil, invalid("comparison requires 2 arguments", nil)
	}
	field, err := extractFieldName(args[0])
	if err != nil {
		return nil, err
	}
	if _, ok := fieldMapping[field]; !ok {
		return nil, invalid("unknown field: "+field, nil)
	}
	value, err := extractValue(args[1])
	if err != nil {
		return nil, err
	}

	switch field {
	case "type", "target":
		want, ok := value.(string)
		if !ok {
			return nil, invalid(field+" requires a string value", nil)
		}
		isType := field == "type"
		return func(e action.Entry) bool {
			got := e.Target
			if isType {
				got = string(e.Type)
			}
			return compareStrings(got, want, op)
		}, nil
	case "success":
		want, ok := value.(bool)
		if !ok {
			return nil, invalid("success requires a bool value", nil)
		}
		switch op {
		case "=":
			return func(e action.Entry) bool { return e.Success == want }, nil
		case "!=":
			return func(e action.Entry) bool { return e.Success != want }, nil
		default:
			return nil, invalid("success supports only equality", nil)
		}
	case "stealth_cost", "detection":
		want, ok := value.(int64)
		if !ok {
			return nil, invalid(field+" requires an integer value", nil)
		}
		isCost := field == "stealth_cost"
		return func(e action.Entry) bool {
			got := int64(e.Detection)
			if isCost {
				got = int64(e.StealthCost)
			}
			return compareInts(got, want, op)
		}, nil
	case "at":
		want, ok := value.(time.Time)
		if !ok {
			return nil, invalid("at requires a timestamp value", nil)
		}
		ms := want.UnixMilli()
		return func(e action.Entry) bool {
			return compareInts(e.At.UTC().UnixMilli(), ms, op)
		}, nil
	default:
		return nil, invalid("unknown field: "+field, nil)
	}
}

func compareStrings(got, want, op string) bool {
	switch op {
	case "=":
		return got == want
	case "!=":
		return got != want
	case "<":
		return got < want
	case "<=":
		return got <= want
	case ">":
		return got > want
	default:
		return got >= want
	}
}

func compareInts(got, want int64, op string) bool {
	switch op {
	case "=":
		return got == want
	case "!=":
		return got != want
	case "<":
		return got < want
	case "<=":
		return got <= want
	case ">":
		return got > want
	default:
		return got >= want
	}
}
