package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"sort"

	"gopkg.in/yaml.v2"
)

// ParseConfig parses a YAML (or JSON) representation of a Config.
//
// Only the keys "name", "doc", "initial", and "states" are allowed at
// the top level, and only "doc" and "transitions" are allowed in a
// state.  Anything else gives a BadConfig error.  The order of the
// states is preserved.
func ParseConfig(bs []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(bs, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadConfig reads and parses the given file.
func ReadConfig(filename string) (*Config, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	c, err := ParseConfig(bs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return c, nil
}

// UnmarshalYAML decodes via a yaml.MapSlice so we can keep the state
// order and complain about unknown keys.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var m yaml.MapSlice
	if err := unmarshal(&m); err != nil {
		return err
	}

	*c = Config{}

	for _, item := range m {
		key := asString(item.Key)
		switch key {
		case "name":
			c.Name = asString(item.Value)
		case "doc":
			c.Doc = asString(item.Value)
		case "initial":
			c.Initial = asString(item.Value)
		case "states":
			states, err := yamlStates(item.Value)
			if err != nil {
				return err
			}
			c.States = states
		default:
			return &BadConfig{key, "unknown key"}
		}
	}

	return nil
}

// MarshalYAML emits the states in order.
func (c *Config) MarshalYAML() (interface{}, error) {
	m := yaml.MapSlice{}
	if c.Name != "" {
		m = append(m, yaml.MapItem{Key: "name", Value: c.Name})
	}
	if c.Doc != "" {
		m = append(m, yaml.MapItem{Key: "doc", Value: c.Doc})
	}
	m = append(m, yaml.MapItem{Key: "initial", Value: c.Initial})

	states := make(yaml.MapSlice, 0, len(c.States))
	for _, s := range c.States {
		if s == nil {
			continue
		}
		x := yaml.MapSlice{}
		if s.Doc != "" {
			x = append(x, yaml.MapItem{Key: "doc", Value: s.Doc})
		}
		ts := make(yaml.MapSlice, 0, len(s.Transitions))
		for _, event := range sortedKeys(s.Transitions) {
			ts = append(ts, yaml.MapItem{Key: event, Value: s.Transitions[event]})
		}
		x = append(x, yaml.MapItem{Key: "transitions", Value: ts})
		states = append(states, yaml.MapItem{Key: s.Name, Value: x})
	}
	m = append(m, yaml.MapItem{Key: "states", Value: states})

	return m, nil
}

func yamlStates(x interface{}) ([]*State, error) {
	items, err := asMapSlice(x)
	if err != nil {
		return nil, &BadConfig{"states", err.Error()}
	}
	acc := make([]*State, 0, len(items))
	for _, item := range items {
		name := asString(item.Key)
		st := &State{
			Name: name,
		}
		props, err := asMapSlice(item.Value)
		if err != nil {
			return nil, &BadConfig{name, err.Error()}
		}
		for _, prop := range props {
			key := asString(prop.Key)
			switch key {
			case "doc":
				st.Doc = asString(prop.Value)
			case "transitions":
				ts, err := asMapSlice(prop.Value)
				if err != nil {
					return nil, &BadConfig{name + ".transitions", err.Error()}
				}
				st.Transitions = make(map[string]string, len(ts))
				for _, t := range ts {
					st.Transitions[asString(t.Key)] = asString(t.Value)
				}
			default:
				return nil, &BadConfig{name + "." + key, "unknown key"}
			}
		}
		acc = append(acc, st)
	}
	return acc, nil
}

// asMapSlice accepts a MapSlice, a plain map (order then is sorted),
// or nil.
func asMapSlice(x interface{}) (yaml.MapSlice, error) {
	switch vv := x.(type) {
	case nil:
		return nil, nil
	case yaml.MapSlice:
		return vv, nil
	case map[interface{}]interface{}:
		acc := make(yaml.MapSlice, 0, len(vv))
		for k, v := range vv {
			acc = append(acc, yaml.MapItem{Key: k, Value: v})
		}
		sort.Slice(acc, func(i, j int) bool {
			return asString(acc[i].Key) < asString(acc[j].Key)
		})
		return acc, nil
	default:
		return nil, fmt.Errorf("expected a mapping, not %T", x)
	}
}

func asString(x interface{}) string {
	switch vv := x.(type) {
	case nil:
		return ""
	case string:
		return vv
	default:
		return fmt.Sprint(vv)
	}
}

func sortedKeys(m map[string]string) []string {
	acc := make([]string, 0, len(m))
	for k := range m {
		acc = append(acc, k)
	}
	sort.Strings(acc)
	return acc
}

// jsonState is the JSON form of a State (sans name).
type jsonState struct {
	Doc         string            `json:"doc,omitempty"`
	Transitions map[string]string `json:"transitions"`
}

// MarshalJSON renders "states" as an object with keys in state order.
func (c *Config) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	field := func(key string, val interface{}) error {
		js, err := json.Marshal(val)
		if err != nil {
			return err
		}
		if 1 < buf.Len() {
			buf.WriteByte(',')
		}
		buf.WriteString(`"` + key + `":`)
		buf.Write(js)
		return nil
	}

	buf.WriteByte('{')
	if c.Name != "" {
		if err := field("name", c.Name); err != nil {
			return nil, err
		}
	}
	if c.Doc != "" {
		if err := field("doc", c.Doc); err != nil {
			return nil, err
		}
	}
	if err := field("initial", c.Initial); err != nil {
		return nil, err
	}

	var states bytes.Buffer
	states.WriteByte('{')
	first := true
	for _, s := range c.States {
		if s == nil {
			continue
		}
		name, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		ts := s.Transitions
		if ts == nil {
			ts = map[string]string{}
		}
		js, err := json.Marshal(&jsonState{Doc: s.Doc, Transitions: ts})
		if err != nil {
			return nil, err
		}
		if !first {
			states.WriteByte(',')
		}
		first = false
		states.Write(name)
		states.WriteByte(':')
		states.Write(js)
	}
	states.WriteByte('}')

	if err := field("states", json.RawMessage(states.Bytes())); err != nil {
		return nil, err
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON is the JSON counterpart of UnmarshalYAML.
func (c *Config) UnmarshalJSON(bs []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(bs, &top); err != nil {
		return err
	}

	*c = Config{}

	for key, raw := range top {
		var err error
		switch key {
		case "name":
			err = json.Unmarshal(raw, &c.Name)
		case "doc":
			err = json.Unmarshal(raw, &c.Doc)
		case "initial":
			err = json.Unmarshal(raw, &c.Initial)
		case "states":
			c.States, err = jsonStates(raw)
		default:
			return &BadConfig{key, "unknown key"}
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func jsonStates(raw json.RawMessage) ([]*State, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if d, is := tok.(json.Delim); !is || d != '{' {
		return nil, &BadConfig{"states", "expected an object"}
	}

	acc := make([]*State, 0, 8)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)
		var js jsonState
		if err := dec.Decode(&js); err != nil {
			return nil, &BadConfig{name, err.Error()}
		}
		acc = append(acc, &State{
			Name:        name,
			Doc:         js.Doc,
			Transitions: js.Transitions,
		})
	}

	return acc, nil
}
