package percolator

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SierraSoftworks/connor"
)

// ErrCompile wraps every query compilation failure so callers can map the
// whole family to a single error class.
var ErrCompile = errors.New("query compile error")

// Predicate is an immutable boolean function over a document's fields. A
// compiled predicate holds no mutable state and is safe to evaluate from any
// number of goroutines at once.
type Predicate interface {
	Test(doc *Document) (bool, error)
}

// Compile turns a query definition into a Predicate. Supported constructs:
//
//	{"term": {"field1": "value"}}
//	{"range": {"field1": {"gte": 1, "lt": 10}}}
//	{"bool": {"must": [...], "should": [...], "must_not": [...]}}
//	{"match_all": {}}
//
// Compilation is pure: a failed Compile leaves no trace anywhere.
func Compile(source json.RawMessage) (Predicate, error) {

	definition := map[string]json.RawMessage{}
	err := json.Unmarshal(source, &definition)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCompile, err.Error())
	}
	if len(definition) != 1 {
		return nil, fmt.Errorf("%w: query must have exactly one root construct", ErrCompile)
	}

	for name, body := range definition {
		switch name {
		case "term":
			return compileTerm(body)
		case "range":
			return compileRange(body)
		case "bool":
			return compileBool(body)
		case "match_all":
			return &matchAll{}, nil
		default:
			return nil, fmt.Errorf("%w: unsupported construct '%s'", ErrCompile, name)
		}
	}

	return nil, fmt.Errorf("%w: empty query", ErrCompile)
}

type matchAll struct{}

func (p *matchAll) Test(doc *Document) (bool, error) {
	return true, nil
}

// filterPredicate delegates leaf evaluation to connor, the same filtration
// engine used for document traversal filters.
type filterPredicate struct {
	filter map[string]interface{}
}

func (p *filterPredicate) Test(doc *Document) (bool, error) {
	return connor.Match(p.filter, doc.Fields)
}

func compileTerm(body json.RawMessage) (Predicate, error) {

	term := map[string]interface{}{}
	err := json.Unmarshal(body, &term)
	if err != nil {
		return nil, fmt.Errorf("%w: term: %s", ErrCompile, err.Error())
	}
	if len(term) != 1 {
		return nil, fmt.Errorf("%w: term must have exactly one field", ErrCompile)
	}

	for field, value := range term {
		switch value.(type) {
		case string, float64, bool, nil:
			return &filterPredicate{filter: map[string]interface{}{field: value}}, nil
		default:
			return nil, fmt.Errorf("%w: term value for field '%s' must be scalar", ErrCompile, field)
		}
	}

	return nil, fmt.Errorf("%w: empty term", ErrCompile)
}

var rangeBounds = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

func compileRange(body json.RawMessage) (Predicate, error) {

	definition := map[string]map[string]interface{}{}
	err := json.Unmarshal(body, &definition)
	if err != nil {
		return nil, fmt.Errorf("%w: range: %s", ErrCompile, err.Error())
	}
	if len(definition) != 1 {
		return nil, fmt.Errorf("%w: range must have exactly one field", ErrCompile)
	}

	for field, bounds := range definition {
		if len(bounds) == 0 {
			return nil, fmt.Errorf("%w: range for field '%s' has no bounds", ErrCompile, field)
		}
		operators := map[string]interface{}{}
		for bound, value := range bounds {
			operator, supported := rangeBounds[bound]
			if !supported {
				return nil, fmt.Errorf("%w: unsupported range bound '%s'", ErrCompile, bound)
			}
			operators[operator] = value
		}
		return &filterPredicate{filter: map[string]interface{}{field: operators}}, nil
	}

	return nil, fmt.Errorf("%w: empty range", ErrCompile)
}

type boolPredicate struct {
	must    []Predicate
	should  []Predicate
	mustNot []Predicate
}

func compileBool(body json.RawMessage) (Predicate, error) {

	clauses := map[string]json.RawMessage{}
	err := json.Unmarshal(body, &clauses)
	if err != nil {
		return nil, fmt.Errorf("%w: bool: %s", ErrCompile, err.Error())
	}

	predicate := &boolPredicate{}
	for clause, subqueries := range clauses {
		compiled, err := compileClause(subqueries)
		if err != nil {
			return nil, err
		}
		switch clause {
		case "must":
			predicate.must = compiled
		case "should":
			predicate.should = compiled
		case "must_not":
			predicate.mustNot = compiled
		default:
			return nil, fmt.Errorf("%w: unsupported bool clause '%s'", ErrCompile, clause)
		}
	}

	return predicate, nil
}

// compileClause accepts both a single query object and an array of them.
func compileClause(body json.RawMessage) ([]Predicate, error) {

	subqueries := []json.RawMessage{}
	err := json.Unmarshal(body, &subqueries)
	if err != nil {
		subqueries = []json.RawMessage{body}
	}

	predicates := make([]Predicate, 0, len(subqueries))
	for _, subquery := range subqueries {
		predicate, err := Compile(subquery)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, predicate)
	}

	return predicates, nil
}

func (p *boolPredicate) Test(doc *Document) (bool, error) {

	for _, predicate := range p.must {
		match, err := predicate.Test(doc)
		if err != nil {
			return false, err
		}
		if !match {
			return false, nil
		}
	}

	for _, predicate := range p.mustNot {
		match, err := predicate.Test(doc)
		if err != nil {
			return false, err
		}
		if match {
			return false, nil
		}
	}

	if len(p.should) == 0 {
		return true, nil
	}
	for _, predicate := range p.should {
		match, err := predicate.Test(doc)
		if err != nil {
			return false, err
		}
		if match {
			return true, nil
		}
	}

	return false, nil
}
