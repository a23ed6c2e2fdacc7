package mapping

import (
	"sort"
)

// Description summarizes what the interpreter reads from a mapping.
type Description struct {
	SubjectTemplate string            `json:"subject_template"`
	TermType        string            `json:"term_type"`
	SubjectColumns  []string          `json:"subject_columns"`
	Classes         []string          `json:"classes,omitempty"`
	DatatypeMap     map[string]string `json:"datatype_map"`
	ObjectTemplates []ObjectTemplate  `json:"object_templates,omitempty"`
	Predicates      []string          `json:"predicates"`
	SkippedJoins    int               `json:"skipped_joins"`
}

// ObjectTemplate pairs a predicate with the template of its object map.
type ObjectTemplate struct {
	Predicate    string   `json:"predicate"`
	Template     string   `json:"template"`
	Placeholders []string `json:"placeholders"`
}

// Describe runs every interpretation step and collects the results.
// Predicates are listed in mapping order.
func (in *Interpreter) Describe() (*Description, error) {
	sm, err := in.SubjectTemplate()
	if err != nil {
		return nil, err
	}
	dtMap, err := in.DatatypeMap()
	if err != nil {
		return nil, err
	}
	poms, err := in.predicateObjectMaps()
	if err != nil {
		return nil, err
	}

	d := &Description{
		SubjectTemplate: sm.Template,
		TermType:        sm.TermType,
		SubjectColumns:  sm.Columns(),
		Classes:         sm.Classes,
		DatatypeMap:     dtMap,
	}

	seen := make(map[string]bool)
	for _, pom := range poms {
		for _, om := range pom.objectMaps {
			if om.joins {
				d.SkippedJoins++
			}
		}
		for _, p := range pom.predicates {
			if seen[p] {
				continue
			}
			seen[p] = true
			d.Predicates = append(d.Predicates, p)

			pattern, ok, err := in.ObjectTemplate(p)
			if err != nil {
				return nil, err
			}
			if ok {
				d.ObjectTemplates = append(d.ObjectTemplates, ObjectTemplate{
					Predicate:    p,
					Template:     pattern.Source(),
					Placeholders: pattern.Placeholders(),
				})
			}
		}
	}
	sort.SliceStable(d.ObjectTemplates, func(i, j int) bool {
		return d.ObjectTemplates[i].Predicate < d.ObjectTemplates[j].Predicate
	})
	return d, nil
}
