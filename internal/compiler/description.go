package compiler

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/utm/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format is a machine description encoding.
type Format string

const (
	FormatProperties Format = "properties"
	FormatYAML       Format = "yaml"
	FormatJSON       Format = "json"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".properties", ".tm":
		return FormatProperties, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	}
	return "", false
}

// rawDescription is the format-independent shape of a description.
// Keys are matched after lower-casing and dropping "_" and "-", so
// "initialState", "initial_state" and "initial-state" are equivalent.
type rawDescription struct {
	Name         string `mapstructure:"name"`
	Variant      string `mapstructure:"variant"`
	InitialState string `mapstructure:"initialstate"`
	AcceptState  string `mapstructure:"acceptstate"`
	RejectState  string `mapstructure:"rejectstate"`
	Blank        string `mapstructure:"blank"`
	RuleCount    int    `mapstructure:"rulecount"`
	Strict       bool   `mapstructure:"strict"`
	Rules        any    `mapstructure:"rules"`
}

// Decode parses a machine description. name is used when the description does not carry one.
func Decode(name string, format Format, data []byte, opts ...Option) (*domain.MachineDescription, Report, error) {
	fields, err := decodeFields(format, data)
	if err != nil {
		return nil, Report{}, fmt.Errorf("failed to parse %s description %q: %w", format, name, err)
	}

	var raw rawDescription
	if err := decodeInto(normalizeKeys(fields), &raw); err != nil {
		return nil, Report{}, fmt.Errorf("failed to decode description %q: %w", name, err)
	}
	if raw.Name == "" {
		raw.Name = name
	}
	return resolve(raw, opts)
}

// DecodeFile decodes data using the format implied by path. The machine name
// defaults to the file stem.
func DecodeFile(path string, data []byte, opts ...Option) (*domain.MachineDescription, Report, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, Report{}, fmt.Errorf("unsupported description format: %s", filepath.Ext(path))
	}
	return Decode(Stem(path), format, data, opts...)
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func decodeFields(format Format, data []byte) (map[string]any, error) {
	switch format {
	case FormatProperties:
		return parseProperties(data)
	case FormatYAML:
		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case FormatJSON:
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func decodeInto(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		key := strings.ToLower(k)
		key = strings.ReplaceAll(key, "_", "")
		key = strings.ReplaceAll(key, "-", "")
		out[key] = v
	}
	return out
}

func resolve(raw rawDescription, opts []Option) (*domain.MachineDescription, Report, error) {
	o := newOptions(opts)
	if raw.Strict {
		o.Strict = true
	}
	if o.RuleCount == 0 {
		o.RuleCount = raw.RuleCount
	}

	variant := domain.Classical
	if raw.Variant != "" {
		v, err := domain.ParseVariant(raw.Variant)
		if err != nil {
			return nil, Report{}, err
		}
		variant = v
	}

	rawRules, err := rulesFrom(raw.Rules)
	if err != nil {
		return nil, Report{}, err
	}
	table, report, err := CompileRules(rawRules, WithRuleCount(o.RuleCount), WithStrict(o.Strict))
	if err != nil {
		return nil, report, err
	}

	cfg := domain.NewMachineConfig(table.Count(), domain.State(raw.InitialState))
	if raw.AcceptState != "" {
		cfg.AcceptState = domain.State(raw.AcceptState)
	}
	if raw.RejectState != "" {
		cfg.RejectState = domain.State(raw.RejectState)
	}
	if raw.Blank != "" {
		cfg.Blank, _ = domain.FirstSymbol(raw.Blank)
	}

	desc := &domain.MachineDescription{
		Name:    raw.Name,
		Variant: variant,
		Config:  cfg,
		Rules:   table,
	}
	if err := desc.Validate(); err != nil {
		return nil, report, err
	}
	return desc, report, nil
}

// rulesFrom accepts a flat token string, a list of flat strings, or a list of
// structured rules.
func rulesFrom(v any) ([]RawRule, error) {
	switch rules := v.(type) {
	case nil:
		return nil, nil
	case string:
		return SplitRules(Tokenize(rules))
	case []any:
		var flat []string
		var structured []RawRule
		for i, item := range rules {
			switch r := item.(type) {
			case string:
				flat = append(flat, r)
			case map[string]any:
				var rr RawRule
				if err := decodeInto(normalizeKeys(r), &rr); err != nil {
					return nil, &domain.MalformedRuleTableError{Rule: i, Reason: err.Error()}
				}
				structured = append(structured, rr)
			default:
				return nil, &domain.MalformedRuleTableError{Rule: i, Reason: fmt.Sprintf("unsupported rule type %T", item)}
			}
		}
		if len(flat) > 0 && len(structured) > 0 {
			return nil, &domain.MalformedRuleTableError{Rule: -1, Reason: "cannot mix flat and structured rules"}
		}
		if len(flat) > 0 {
			return SplitRules(Tokenize(strings.Join(flat, ",")))
		}
		return structured, nil
	default:
		return nil, &domain.MalformedRuleTableError{Rule: -1, Reason: fmt.Sprintf("unsupported rules type %T", v)}
	}
}
