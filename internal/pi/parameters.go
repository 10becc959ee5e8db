package pi

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/daryltucker/rorb-fews/internal/model"
)

// Parameters is a decoded PI parameter document.
type Parameters struct {
	Path   string
	Groups []Group
}

type parametersDoc struct {
	XMLName xml.Name `xml:"parameters"`
	Groups  []Group  `xml:"group"`
}

// Group is one <group> of parameters. FEWS repeats a group id once per
// location, distinguished by a key parameter (e.g. rorb.isaId).
type Group struct {
	ID         string      `xml:"id,attr"`
	Parameters []Parameter `xml:"parameter"`
}

// Parameter holds whichever typed value the document provides.
type Parameter struct {
	ID          string  `xml:"id,attr"`
	StringValue *string `xml:"stringValue"`
	DblValue    *string `xml:"dblValue"`
	IntValue    *string `xml:"intValue"`
	BoolValue   *string `xml:"boolValue"`
}

// ReadParametersFile decodes the parameter file at path.
func ReadParametersFile(path string) (*Parameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, model.WrapInputError(path, "open parameters", err)
	}
	defer f.Close()

	p, err := ReadParameters(f)
	if err != nil {
		return nil, withFile(err, path)
	}
	p.Path = path
	return p, nil
}

// ReadParameters decodes a parameter document.
func ReadParameters(r io.Reader) (*Parameters, error) {
	var doc parametersDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, model.WrapInputError("", "decode parameters", err)
	}
	return &Parameters{Groups: doc.Groups}, nil
}

// Param returns the parameter with id in g.
func (g Group) Param(id string) (Parameter, bool) {
	for _, p := range g.Parameters {
		if p.ID == id {
			return p, true
		}
	}
	return Parameter{}, false
}

// Setting returns parameter id from the first group with groupID that
// declares it.
func (p *Parameters) Setting(groupID, id string) (Parameter, error) {
	found := false
	for _, g := range p.Groups {
		if g.ID != groupID {
			continue
		}
		found = true
		if v, ok := g.Param(id); ok {
			return v, nil
		}
	}
	if !found {
		return Parameter{}, fmt.Errorf("group %q: %w", groupID, ErrNotFound)
	}
	return Parameter{}, fmt.Errorf("parameter %q in group %q: %w", id, groupID, ErrNotFound)
}

// Keyed returns parameter id from the group with groupID whose key
// parameter holds keyValue.
func (p *Parameters) Keyed(groupID, keyParam, keyValue, id string) (Parameter, error) {
	for _, g := range p.Groups {
		if g.ID != groupID {
			continue
		}
		key, ok := g.Param(keyParam)
		if !ok || strings.TrimSpace(key.String()) != keyValue {
			continue
		}
		v, ok := g.Param(id)
		if !ok {
			return Parameter{}, fmt.Errorf("parameter %q in group %q (%s=%s): %w", id, groupID, keyParam, keyValue, ErrNotFound)
		}
		return v, nil
	}
	return Parameter{}, fmt.Errorf("group %q with %s=%s: %w", groupID, keyParam, keyValue, ErrNotFound)
}

// String returns the raw text of the first populated value.
func (p Parameter) String() string {
	for _, v := range []*string{p.StringValue, p.DblValue, p.IntValue, p.BoolValue} {
		if v != nil {
			return strings.TrimSpace(*v)
		}
	}
	return ""
}

// Float parses the value as a float.
func (p Parameter) Float() (float64, error) {
	s := p.String()
	if s == "" {
		return 0, fmt.Errorf("parameter %q has no value", p.ID)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %w", p.ID, err)
	}
	return v, nil
}

// Int parses the value as an integer. Integral floats such as "3.0" are
// accepted.
func (p Parameter) Int() (int, error) {
	s := p.String()
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := p.Float()
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("parameter %q: %s is not an integer", p.ID, s)
	}
	return int(f), nil
}

// Bool parses the value as a boolean.
func (p Parameter) Bool() (bool, error) {
	v, err := strconv.ParseBool(strings.ToLower(p.String()))
	if err != nil {
		return false, fmt.Errorf("parameter %q: %w", p.ID, err)
	}
	return v, nil
}
