package sexp

import (
	"fmt"
	"strconv"
)

// S-expression navigation helpers

func elements(s Sexp) []Sexp {
	l, ok := s.(*List)
	if !ok || l == nil {
		return nil
	}
	return l.elements
}

// FindNode searches for a child node with the given key (first symbol)
// Example: FindNode(sexp, "at") finds (at 100 50) in a list
func FindNode(s Sexp, key string) (Sexp, bool) {
	for _, item := range elements(s) {
		if item.IsLeaf() {
			if sym, ok := item.(Symbol); ok && string(sym) == key {
				return item, true
			}
			continue
		}
		if name, err := GetNodeName(item); err == nil && name == key {
			return item, true
		}
	}
	return nil, false
}

// FindAllNodes finds all child lists with the given key
func FindAllNodes(s Sexp, key string) []Sexp {
	var results []Sexp
	for _, item := range elements(s) {
		if item.IsLeaf() {
			continue
		}
		if name, err := GetNodeName(item); err == nil && name == key {
			results = append(results, item)
		}
	}
	return results
}

// GetListItems returns all items in a list (excluding the first symbol/key)
// Example: GetListItems((layers "F.Cu" "B.Cu")) returns ["F.Cu", "B.Cu"]
func GetListItems(s Sexp) []Sexp {
	items := elements(s)
	if len(items) <= 1 {
		return nil
	}
	return items[1:]
}

// GetString extracts a string value at the given index in a list
// Index 0 is the key, 1 is first value, etc.
func GetString(s Sexp, index int) (string, error) {
	if s == nil || s.IsLeaf() {
		return "", fmt.Errorf("expected list, got leaf")
	}
	items := elements(s)
	if index < 0 || index >= len(items) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(items))
	}
	if sym, ok := items[index].(Symbol); ok {
		return string(sym), nil
	}
	return "", fmt.Errorf("expected symbol at index %d, got %T", index, items[index])
}

// GetStrings returns the symbols following the key of a list.
func GetStrings(s Sexp) []string {
	var out []string
	for _, item := range GetListItems(s) {
		if sym, ok := item.(Symbol); ok {
			out = append(out, string(sym))
		}
	}
	return out
}

// GetFloat extracts a float value at the given index
func GetFloat(s Sexp, index int) (float64, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float at index %d: %w", index, err)
	}
	return val, nil
}

// GetInt extracts an integer value at the given index
func GetInt(s Sexp, index int) (int, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int at index %d: %w", index, err)
	}
	return val, nil
}

// GetPosition extracts a PositionAngle from an (at X Y [angle]) node.
func GetPosition(s Sexp) (PositionAngle, error) {
	key, err := GetString(s, 0)
	if err != nil {
		return PositionAngle{}, err
	}
	if key != "at" {
		return PositionAngle{}, fmt.Errorf("expected 'at', got %q", key)
	}
	pos, err := GetPositionXY(s)
	if err != nil {
		return PositionAngle{}, err
	}
	result := PositionAngle{Position: pos}
	if angle, err := GetFloat(s, 3); err == nil {
		result.Angle = Angle(angle)
	}
	return result, nil
}

// GetPositionXY extracts just X,Y coordinates (no angle)
// Used for (start X Y), (end X Y), (xy X Y), etc.
func GetPositionXY(s Sexp) (Position, error) {
	x, err := GetFloat(s, 1)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse X: %w", err)
	}
	y, err := GetFloat(s, 2)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse Y: %w", err)
	}
	return Position{X: x, Y: y}, nil
}

// GetSize extracts a (size W H) node. A single value gives a square.
func GetSize(s Sexp) (Size, error) {
	w, err := GetFloat(s, 1)
	if err != nil {
		return Size{}, fmt.Errorf("failed to parse width: %w", err)
	}
	h, err := GetFloat(s, 2)
	if err != nil {
		h = w
	}
	return Size{Width: w, Height: h}, nil
}

// HasSymbol checks if a list contains a specific symbol
func HasSymbol(s Sexp, symbol string) bool {
	for _, item := range elements(s) {
		if sym, ok := item.(Symbol); ok && string(sym) == symbol {
			return true
		}
	}
	return false
}

// GetNodeName returns the first symbol of a list (the node type/name)
func GetNodeName(s Sexp) (string, error) {
	if sym, ok := s.(Symbol); ok {
		return string(sym), nil
	}
	items := elements(s)
	if len(items) == 0 {
		return "", fmt.Errorf("expected non-empty list")
	}
	if sym, ok := items[0].(Symbol); ok {
		return string(sym), nil
	}
	return "", fmt.Errorf("expected symbol at head of list")
}
