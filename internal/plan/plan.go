// Package plan decodes task plans written in YAML or JSON into configurable
// tasks.
//
// A plan is a list of tasks, each naming its kind in the type key:
//
//	tasks:
//	  - type: StartUp
//	    client_type: Official
//	    start_game: true
//	  - type: Fight
//	    stage: 1-7
//	    medicine: 2
//	    drops: {"30012": 10}
//	  - type: Award
package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/foxwhite25/maabridge/pkg/tasks"
)

var (
	ErrMissingType = errors.New("task has no type")
	ErrUnknownType = errors.New("unknown task type")
	ErrEmptyPlan   = errors.New("plan has no tasks")
	ErrInvalid     = errors.New("invalid task parameter")
)

// Plan is an ordered list of tasks to append to one connection.
type Plan struct {
	Name  string
	Tasks []tasks.Configurable
}

type document struct {
	Name  string      `yaml:"name"`
	Tasks []yaml.Node `yaml:"tasks"`
}

// Load reads and parses the plan at path.
func Load(fs afero.Fs, path string) (*Plan, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	p, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a plan document.
func Parse(r io.Reader) (*Plan, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyPlan
		}
		return nil, err
	}
	if len(doc.Tasks) == 0 {
		return nil, ErrEmptyPlan
	}

	p := &Plan{Name: doc.Name, Tasks: make([]tasks.Configurable, 0, len(doc.Tasks))}
	for i := range doc.Tasks {
		t, err := decodeTask(&doc.Tasks[i])
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		p.Tasks = append(p.Tasks, t)
	}
	return p, nil
}

// ParseTask decodes a single task object.
func ParseTask(data []byte) (tasks.Configurable, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return decodeTask(node.Content[0])
	}
	return decodeTask(&node)
}

// Names lists the task names of p in order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		names[i] = t.Name()
	}
	return names
}

func decodeTask(node *yaml.Node) (tasks.Configurable, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping", ErrInvalid)
	}
	var head struct {
		Type string `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, err
	}
	if head.Type == "" {
		return nil, ErrMissingType
	}

	decoder, ok := decoders[strings.ToLower(head.Type)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}
	return decoder(node)
}

// decodeStrict decodes node into v, rejecting keys v does not declare.
func decodeStrict(node *yaml.Node, v any) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(v)
}
