package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// parseValue converts a command-line literal into a typed document value.
// Recognized, in order: null, true/false, integers, floats, RFC 3339
// timestamps, JSON objects/arrays/strings. Anything else stays a string.
func parseValue(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	switch trimmed {
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && trimmed != "" && !strings.ContainsAny(trimmed, "xXnN") {
		return f, nil
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t.UTC(), nil
	}
	if trimmed != "" && strings.ContainsRune(`{["`, rune(trimmed[0])) {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
			return nil, fmt.Errorf("invalid JSON literal %q: %w", trimmed, err)
		}
		return v, nil
	}
	return raw, nil
}

// parseAssignment splits `field=value` and parses the value.
func parseAssignment(expr string) (string, any, error) {
	field, raw, ok := strings.Cut(expr, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return "", nil, fmt.Errorf("expected field=value, got %q", expr)
	}
	if strings.HasPrefix(field, "$") {
		return "", nil, fmt.Errorf("field %q may not start with $", field)
	}
	value, err := parseValue(raw)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", field, err)
	}
	return field, value, nil
}

// buildSet turns repeated --set flags into a $set document. _id cannot be
// changed and a field may only be set once.
func buildSet(exprs []string) (bson.D, error) {
	if len(exprs) == 0 {
		return nil, fmt.Errorf("at least one --set field=value is required")
	}
	set := make(bson.D, 0, len(exprs))
	seen := make(map[string]bool, len(exprs))
	for _, expr := range exprs {
		field, value, err := parseAssignment(expr)
		if err != nil {
			return nil, err
		}
		if field == "_id" {
			return nil, fmt.Errorf("_id cannot be modified")
		}
		if seen[field] {
			return nil, fmt.Errorf("field %q set more than once", field)
		}
		seen[field] = true
		set = append(set, bson.E{Key: field, Value: value})
	}
	return set, nil
}

// idFilter matches a document by _id, trying an ObjectID first.
func idFilter(id string) bson.D {
	id = strings.TrimSpace(id)
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return bson.D{{Key: "_id", Value: oid}}
	}
	return bson.D{{Key: "_id", Value: id}}
}

// buildFilter combines --filter k=v pairs into an equality filter.
func buildFilter(exprs []string) (bson.D, error) {
	filter := bson.D{}
	for _, expr := range exprs {
		field, value, err := parseAssignment(expr)
		if err != nil {
			return nil, err
		}
		if field == "_id" {
			if s, ok := value.(string); ok {
				filter = append(filter, idFilter(s)...)
				continue
			}
		}
		filter = append(filter, bson.E{Key: field, Value: value})
	}
	return filter, nil
}
