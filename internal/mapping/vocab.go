package mapping

import (
	"github.com/jward/rdf2csv/internal/errors"
	"github.com/jward/rdf2csv/internal/rdf"
	"github.com/jward/rdf2csv/internal/store"
)

// objects returns the objects of node's statements whose predicate is the
// vocabulary term local in any configured namespace.
func (in *Interpreter) objects(node rdf.Term, local string) ([]rdf.Term, error) {
	var out []rdf.Term
	for _, ns := range in.namespaces {
		objs, err := store.Objects(in.mapping, node, rdf.IRI(ns+local))
		if err != nil {
			return nil, errors.Wrapf(err, "query %s", local)
		}
		out = append(out, objs...)
	}
	return out, nil
}

// valuesOf returns the objects of every statement using the vocabulary
// term local, whatever the subject.
func (in *Interpreter) valuesOf(local string) ([]rdf.Term, error) {
	var out []rdf.Term
	for _, ns := range in.namespaces {
		quads, err := store.All(in.mapping, store.Pattern{Predicate: store.Ref(rdf.IRI(ns + local))})
		if err != nil {
			return nil, errors.Wrapf(err, "query %s", local)
		}
		for _, q := range quads {
			out = append(out, q.Object)
		}
	}
	return out, nil
}

func values(terms []rdf.Term) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Value
	}
	return out
}

type predicateObjectMap struct {
	node       rdf.Term
	predicates []string
	objectMaps []objectMap
}

func (p predicateObjectMap) hasPredicate(iri string) bool {
	for _, pred := range p.predicates {
		if pred == iri {
			return true
		}
	}
	return false
}

type objectMap struct {
	node              rdf.Term
	templates         []string
	datatypeTemplates []string
	// joins marks a referencing object map (parentTriplesMap). Joins across
	// triples maps are not reconstructed.
	joins bool
}

// predicateObjectMaps reads every predicate-object map once. Predicates
// come from the predicate shortcut or from a constant-valued predicate map.
func (in *Interpreter) predicateObjectMaps() ([]predicateObjectMap, error) {
	if in.pomsLoaded {
		return in.poms, nil
	}
	nodes, err := in.valuesOf("predicateObjectMap")
	if err != nil {
		return nil, err
	}

	var poms []predicateObjectMap
	for _, node := range nodes {
		pom := predicateObjectMap{node: node}

		preds, err := in.objects(node, "predicate")
		if err != nil {
			return nil, err
		}
		pom.predicates = values(preds)
		predMaps, err := in.objects(node, "predicateMap")
		if err != nil {
			return nil, err
		}
		for _, pm := range predMaps {
			consts, err := in.objects(pm, "constant")
			if err != nil {
				return nil, err
			}
			pom.predicates = append(pom.predicates, values(consts)...)
		}

		oms, err := in.objects(node, "objectMap")
		if err != nil {
			return nil, err
		}
		for _, omNode := range oms {
			om, err := in.readObjectMap(omNode)
			if err != nil {
				return nil, err
			}
			if om.joins {
				in.log.Debugw("skipping referencing object map", "node", omNode.String(), "predicates", pom.predicates)
			}
			pom.objectMaps = append(pom.objectMaps, om)
		}
		poms = append(poms, pom)
	}

	in.poms, in.pomsLoaded = poms, true
	return poms, nil
}

func (in *Interpreter) readObjectMap(node rdf.Term) (objectMap, error) {
	om := objectMap{node: node}

	templates, err := in.objects(node, "template")
	if err != nil {
		return om, err
	}
	om.templates = values(templates)

	datatypeMaps, err := in.objects(node, "datatypeMap")
	if err != nil {
		return om, err
	}
	for _, dm := range datatypeMaps {
		dts, err := in.objects(dm, "template")
		if err != nil {
			return om, err
		}
		om.datatypeTemplates = append(om.datatypeTemplates, values(dts)...)
	}

	parents, err := in.objects(node, "parentTriplesMap")
	if err != nil {
		return om, err
	}
	om.joins = len(parents) > 0
	return om, nil
}
