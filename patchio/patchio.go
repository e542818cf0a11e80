// Package patchio applies RFC 6902 patches and RFC 7386 merge patches to a
// form and diffs form states back into patch operations. It is the bridge
// between a backend that speaks JSON Patch and the controller's transactional
// Patch: operations are applied to the exported nested document, the result
// is flattened, and every registered field whose value changed commits as one
// transaction.
package patchio

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	json "github.com/goccy/go-json"

	formwork "github.com/quharo/formwork"
)

// Operation is one RFC 6902 operation.
type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// Apply runs the operations against the form's nested document and commits
// the outcome as a single Patch transaction. Before decoding, operations are
// normalized the way lenient producers expect: a replace on a missing path
// becomes an add, a remove on a missing path is dropped. Paths that do not
// land on a registered field are ignored.
func Apply(c *formwork.Controller, ops []Operation) error {
	if len(ops) == 0 {
		return nil
	}
	before := c.State().Nested()
	currentJSON, err := json.Marshal(before)
	if err != nil {
		return fmt.Errorf("patchio: marshal current state: %w", err)
	}
	patchJSON, err := json.Marshal(normalizeOps(currentJSON, ops))
	if err != nil {
		return fmt.Errorf("patchio: marshal operations: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return fmt.Errorf("patchio: decode patch: %w", err)
	}
	modified, err := patch.Apply(currentJSON)
	if err != nil {
		return fmt.Errorf("patchio: apply patch: %w", err)
	}
	var after map[string]any
	if err := json.Unmarshal(modified, &after); err != nil {
		return fmt.Errorf("patchio: unmarshal patched state: %w", err)
	}
	return commitDoc(c, before, after)
}

// Merge applies an RFC 7386 merge-patch document the same way.
func Merge(c *formwork.Controller, doc []byte) error {
	before := c.State().Nested()
	currentJSON, err := json.Marshal(before)
	if err != nil {
		return fmt.Errorf("patchio: marshal current state: %w", err)
	}
	modified, err := jsonpatch.MergePatch(currentJSON, doc)
	if err != nil {
		return fmt.Errorf("patchio: merge patch: %w", err)
	}
	var after map[string]any
	if err := json.Unmarshal(modified, &after); err != nil {
		return fmt.Errorf("patchio: unmarshal patched state: %w", err)
	}
	return commitDoc(c, before, after)
}

// commitDoc flattens both documents and hands the changed registered keys to
// the controller as one transaction. Values removed by the patch commit as
// nil. JSON numbers are re-coerced to the type the field carries, so an int
// field stays an int field after a round trip through a float64-only wire
// format.
func commitDoc(c *formwork.Controller, before, after map[string]any) error {
	flatBefore := formwork.Flatten(before)
	flatAfter := formwork.Flatten(after)
	values := make(map[string]any)
	for _, key := range c.Keys() {
		av, inAfter := flatAfter[key]
		_, inBefore := flatBefore[key]
		switch {
		case inAfter:
			values[key] = c.CoerceValue(key, av)
		case inBefore:
			values[key] = nil
		}
	}
	if len(values) == 0 {
		return nil
	}
	return c.Patch(values)
}

// Diff produces the operations that transform one nested document into
// another: add for new keys, remove for vanished ones, replace for changed
// leaves. Output order is deterministic (sorted per level, removes last).
func Diff(before, after map[string]any) []Operation {
	var ops []Operation
	diffMap("", before, after, &ops)
	return ops
}

// DiffStates diffs the nested exports of two form snapshots.
func DiffStates(before, after formwork.FormState) []Operation {
	return Diff(before.Nested(), after.Nested())
}

func diffMap(prefix string, before, after map[string]any, ops *[]Operation) {
	keys := make([]string, 0, len(after))
	for k := range after {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		path := prefix + "/" + escapeToken(k)
		av := after[k]
		bv, inBefore := before[k]
		if !inBefore {
			*ops = append(*ops, Operation{Op: "add", Path: path, Value: av})
			continue
		}
		am, aIsMap := av.(map[string]any)
		bm, bIsMap := bv.(map[string]any)
		if aIsMap && bIsMap {
			diffMap(path, bm, am, ops)
			continue
		}
		if !reflect.DeepEqual(bv, av) {
			*ops = append(*ops, Operation{Op: "replace", Path: path, Value: av})
		}
	}
	removed := make([]string, 0)
	for k := range before {
		if _, ok := after[k]; !ok {
			removed = append(removed, k)
		}
	}
	sort.Strings(removed)
	for _, k := range removed {
		*ops = append(*ops, Operation{Op: "remove", Path: prefix + "/" + escapeToken(k)})
	}
}

// FieldPointer converts a dotted field key to its JSON Pointer in the nested
// document, escaping "~" and "/" per RFC 6901.
func FieldPointer(key string) string {
	if key == "" {
		return ""
	}
	segs := strings.Split(key, ".")
	for i, s := range segs {
		segs[i] = escapeToken(s)
	}
	return "/" + strings.Join(segs, "/")
}

func escapeToken(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

func unescapeToken(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
}

// normalizeOps downgrades operations that would fail on the current document:
// replace on a missing path becomes add, remove on a missing path is dropped.
func normalizeOps(currentJSON []byte, ops []Operation) []Operation {
	var doc any
	if err := json.Unmarshal(currentJSON, &doc); err != nil {
		return ops
	}
	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		switch op.Op {
		case "replace":
			if !pathExists(doc, op.Path) {
				op.Op = "add"
			}
			fixed = append(fixed, op)
		case "remove":
			if pathExists(doc, op.Path) {
				fixed = append(fixed, op)
			}
		default:
			fixed = append(fixed, op)
		}
	}
	return fixed
}

func pathExists(doc any, path string) bool {
	if path == "" {
		return true
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	cur := doc
	for _, token := range strings.Split(path[1:], "/") {
		token = unescapeToken(token)
		switch node := cur.(type) {
		case map[string]any:
			value, ok := node[token]
			if !ok {
				return false
			}
			cur = value
		case []any:
			index, err := strconv.Atoi(token)
			if err != nil || index < 0 || index >= len(node) {
				return false
			}
			cur = node[index]
		default:
			return false
		}
	}
	return true
}
