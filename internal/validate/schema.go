package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ppiankov/briefguard/internal/model"
)

// Schema validates raw structured output against the StructuredOutput shape.
// Validation runs in two passes: a type pass over the decoded JSON tree (presence,
// primitive types, integral numbers) and a constraint pass over the typed struct
// (length bounds, enums). Every violation is collected as "<path>: <message>".
type Schema struct {
	validate *validator.Validate
}

// NewSchema builds a schema validator. The instance is safe for concurrent use.
func NewSchema() *Schema {
	v := validator.New()

	// Report JSON field names so issue paths match the payload the model produced
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateOutputGroups, model.StructuredOutput{})

	return &Schema{validate: v}
}

// validateOutputGroups requires at least one impact bullet and one action overall.
// Per-group sizes are repaired by the normalizer and not enforced here.
func validateOutputGroups(sl validator.StructLevel) {
	out := sl.Current().Interface().(model.StructuredOutput)

	bullets := 0
	for _, g := range out.Impact.Groups() {
		bullets += len(*g)
	}
	if bullets == 0 {
		sl.ReportError(out.Impact, "impact", "Impact", "impact_nonempty", "")
	}

	actions := 0
	for _, g := range out.PossibleActions.Groups() {
		actions += len(*g)
	}
	if actions == 0 {
		sl.ReportError(out.PossibleActions, "possibleActions", "PossibleActions", "actions_nonempty", "")
	}
}

// Check validates a JSON payload. On success it returns the decoded output and no
// issues; otherwise it returns every violation found, type issues first.
func (s *Schema) Check(payload []byte) (*model.StructuredOutput, []string) {
	var doc interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, []string{fmt.Sprintf("$: invalid JSON: %v", err)}
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, []string{"$: must be a JSON object"}
	}

	w := &typeWalker{bad: make(map[string]bool)}
	w.walkStruct("", reflect.TypeOf(model.StructuredOutput{}), obj)

	var out model.StructuredOutput
	if err := json.Unmarshal(payload, &out); err != nil {
		// Type mismatches are already reported by the type pass; Unmarshal keeps
		// decoding the remaining fields after one.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, append(w.issues, fmt.Sprintf("$: %v", err))
		}
	}

	issues := w.issues
	if err := s.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, append(issues, fmt.Sprintf("$: %v", err))
		}
		for _, fe := range verrs {
			path := fieldPath(fe)
			if w.covers(path) {
				continue
			}
			issues = append(issues, path+": "+constraintMessage(fe))
		}
	}

	if len(issues) > 0 {
		return nil, dedupe(issues)
	}
	return &out, nil
}

// typeWalker walks a decoded JSON tree alongside a Go type
type typeWalker struct {
	issues []string
	bad    map[string]bool
}

func (w *typeWalker) report(path, msg string) {
	w.issues = append(w.issues, path+": "+msg)
	w.bad[path] = true
}

// covers reports whether path is at or below a path with a type issue
func (w *typeWalker) covers(path string) bool {
	for bad := range w.bad {
		if path == bad || strings.HasPrefix(path, bad+".") || strings.HasPrefix(path, bad+"[") {
			return true
		}
	}
	return false
}

func (w *typeWalker) walkStruct(path string, t reflect.Type, obj map[string]interface{}) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fieldPath := joinPath(path, name)

		v, present := obj[name]
		if !present || v == nil {
			if !strings.Contains(opts, "omitempty") {
				w.report(fieldPath, "is required")
			}
			continue
		}
		w.walkValue(fieldPath, f.Type, v)
	}
}

func (w *typeWalker) walkValue(path string, t reflect.Type, v interface{}) {
	switch t.Kind() {
	case reflect.String:
		if _, ok := v.(string); !ok {
			w.report(path, "must be a string")
		}
	case reflect.Int, reflect.Int64, reflect.Int32:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
			w.report(path, "must be an integer")
		} else if f > math.MaxInt32 || f < math.MinInt32 {
			// json.Unmarshal would leave the field at zero
			w.report(path, "must be an integer in range")
		}
	case reflect.Slice:
		arr, ok := v.([]interface{})
		if !ok {
			w.report(path, "must be an array")
			return
		}
		for i, elem := range arr {
			elemPath := fmt.Sprintf("%s[%d]", path, i)
			if elem == nil {
				w.report(elemPath, "must not be null")
				continue
			}
			w.walkValue(elemPath, t.Elem(), elem)
		}
	case reflect.Struct:
		obj, ok := v.(map[string]interface{})
		if !ok {
			w.report(path, "must be an object")
			return
		}
		w.walkStruct(path, t, obj)
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// fieldPath turns "StructuredOutput.summaryBullets[2].text" into "summaryBullets[2].text"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func constraintMessage(fe validator.FieldError) string {
	collection := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array || fe.Kind() == reflect.Map
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		switch {
		case collection:
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		case fe.Kind() == reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		default:
			return fmt.Sprintf("must be >= %s", fe.Param())
		}
	case "max":
		switch {
		case collection:
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		case fe.Kind() == reflect.String:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			return fmt.Sprintf("must be <= %s", fe.Param())
		}
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", strings.Join(strings.Fields(fe.Param()), ", "))
	case "impact_nonempty":
		return "must contain at least one bullet"
	case "actions_nonempty":
		return "must contain at least one action"
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}

// dedupe keeps the first occurrence of each issue
func dedupe(issues []string) []string {
	seen := make(map[string]bool, len(issues))
	out := issues[:0]
	for _, issue := range issues {
		if seen[issue] {
			continue
		}
		seen[issue] = true
		out = append(out, issue)
	}
	return out
}
