package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kurihiro0119/jira-effort-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/jira-effort-metrics/internal/errors"
)

// Sprint attribute extraction patterns. Sprint membership arrives as opaque
// serialized strings ("...,name=<value>,goal=,..."); the attribute value is
// whatever sits between its key and the next key.
var sprintPatterns = map[string]*regexp.Regexp{
	"name":      regexp.MustCompile(`name=(.*?),goal=`),
	"startDate": regexp.MustCompile(`startDate=(.*?),endDate=`),
	"endDate":   regexp.MustCompile(`endDate=(.*?),completeDate=`),
}

// leafKind identifies the shape of a resolved leaf value. The set is closed:
// downstream code matches over it instead of probing value types.
type leafKind int

const (
	leafAbsent leafKind = iota
	leafScalar
	leafStringList
	leafObjectList
)

// leaf is a resolved field value, classified once at the API boundary
type leaf struct {
	kind    leafKind
	scalar  domain.Value
	strings []string
	objects []map[string]interface{}
}

// Parser deterministically flattens raw issue records into canonical rows
type Parser struct{}

// New creates a Parser
func New() *Parser {
	return &Parser{}
}

// Parse flattens one raw record into one row. Every canonical field is
// present in the result; fields absent from the record map to null. Parse
// only fails on a record whose shape the path resolution cannot navigate.
func (p *Parser) Parse(record domain.RawIssueRecord) (domain.Row, error) {
	row := make(domain.Row, len(domain.Header))
	for _, field := range domain.Header {
		if field == "sprints" {
			v, err := SprintInfo(record, "name")
			if err != nil {
				return nil, err
			}
			row[field] = v
			continue
		}
		v, err := LeafValue(record, fieldPaths[field])
		if err != nil {
			return nil, err
		}
		row[field] = v
	}
	return row, nil
}

// LeafValue resolves an ordered key path against a record and renders the
// leaf as a scalar: string lists join with ",", object lists join their
// "name" attributes with ",", empty lists resolve to the empty string and
// absence at any depth resolves to null.
func LeafValue(record domain.RawIssueRecord, keys []string) (domain.Value, error) {
	lf, err := resolve(record, keys)
	if err != nil {
		return domain.Null(), err
	}

	switch lf.kind {
	case leafAbsent:
		return domain.Null(), nil
	case leafScalar:
		return lf.scalar, nil
	case leafStringList:
		return domain.String(strings.Join(lf.strings, ",")), nil
	default:
		names := make([]string, 0, len(lf.objects))
		for _, obj := range lf.objects {
			name, ok := obj["name"].(string)
			if !ok {
				return domain.Null(), apperrors.NewMalformedRecordError(
					fmt.Sprintf("object list at %s has an entry without a name", strings.Join(keys, ".")))
			}
			names = append(names, name)
		}
		return domain.String(strings.Join(names, ",")), nil
	}
}

// SprintInfo extracts one attribute ("name", "startDate" or "endDate") from
// every serialized sprint string on the record and joins the values with
// ",". An issue with no sprint field resolves to null, not an empty string.
func SprintInfo(record domain.RawIssueRecord, attr string) (domain.Value, error) {
	pattern, ok := sprintPatterns[attr]
	if !ok {
		return domain.Null(), apperrors.NewBadRequestError(fmt.Sprintf("unknown sprint attribute %q", attr))
	}

	lf, err := resolve(record, fieldPaths["sprints"])
	if err != nil {
		return domain.Null(), err
	}
	if lf.kind == leafAbsent {
		return domain.Null(), nil
	}
	if lf.kind != leafStringList {
		return domain.Null(), apperrors.NewMalformedRecordError("sprint field is not a list of serialized sprint strings")
	}

	values := make([]string, 0, len(lf.strings))
	for _, s := range lf.strings {
		if m := pattern.FindStringSubmatch(s); m != nil {
			values = append(values, m[1])
		}
	}
	return domain.String(strings.Join(values, ",")), nil
}

// resolve descends the record along keys and classifies whatever it finds.
// A missing key or a null at any depth is Absent; a non-mapping, non-null
// intermediate is a malformed record.
func resolve(record domain.RawIssueRecord, keys []string) (leaf, error) {
	var current interface{} = map[string]interface{}(record)
	for i, key := range keys {
		m, ok := current.(map[string]interface{})
		if !ok {
			return leaf{}, apperrors.NewMalformedRecordError(
				fmt.Sprintf("expected object at %s, got %T", strings.Join(keys[:i], "."), current))
		}
		next, ok := m[key]
		if !ok || next == nil {
			return leaf{kind: leafAbsent}, nil
		}
		current = next
	}
	return classify(current, keys)
}

// classify maps a raw leaf onto the closed leaf kind set
func classify(v interface{}, keys []string) (leaf, error) {
	switch val := v.(type) {
	case string:
		return leaf{kind: leafScalar, scalar: domain.String(val)}, nil
	case float64:
		return leaf{kind: leafScalar, scalar: domain.Number(val)}, nil
	case bool:
		return leaf{kind: leafScalar, scalar: domain.Bool(val)}, nil
	case []interface{}:
		if len(val) == 0 {
			return leaf{kind: leafStringList}, nil
		}
		switch val[0].(type) {
		case string:
			strs := make([]string, 0, len(val))
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					return leaf{}, apperrors.NewMalformedRecordError(
						fmt.Sprintf("mixed list at %s", strings.Join(keys, ".")))
				}
				strs = append(strs, s)
			}
			return leaf{kind: leafStringList, strings: strs}, nil
		case map[string]interface{}:
			objs := make([]map[string]interface{}, 0, len(val))
			for _, item := range val {
				obj, ok := item.(map[string]interface{})
				if !ok {
					return leaf{}, apperrors.NewMalformedRecordError(
						fmt.Sprintf("mixed list at %s", strings.Join(keys, ".")))
				}
				objs = append(objs, obj)
			}
			return leaf{kind: leafObjectList, objects: objs}, nil
		default:
			return leaf{}, apperrors.NewMalformedRecordError(
				fmt.Sprintf("unsupported list element at %s", strings.Join(keys, ".")))
		}
	default:
		return leaf{}, apperrors.NewMalformedRecordError(
			fmt.Sprintf("unsupported leaf value at %s: %T", strings.Join(keys, "."), v))
	}
}
