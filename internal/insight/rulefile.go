package insight

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/wonny/jbp-analytics/internal/contracts"
)

// RuleFile is the YAML layout of a rule table
type RuleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML rule table
// ⭐ SSOT: KnownFields(true)로 오타/미사용 필드 즉시 실패
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a YAML rule table
func ParseRules(data []byte) ([]Rule, error) {
	var file RuleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode rule file: %w", err)
	}

	if err := ValidateRules(file.Rules); err != nil {
		return nil, err
	}
	return file.Rules, nil
}

// HashRules fingerprints a rule table so logs show which table produced an insight
func HashRules(rules []Rule) (string, error) {
	jsonBytes, err := json.Marshal(rules)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// ValidationError describes an invalid rule table entry
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validMetrics = map[Metric]bool{
	MetricROI:              true,
	MetricIncrementalROI:   true,
	MetricProductGrowth:    true,
	MetricMarketShare:      true,
	MetricGrowthPercentage: true,
	MetricInvestmentLevel:  true,
}

var validComparators = map[Comparator]bool{
	GreaterThan:    true,
	GreaterOrEqual: true,
	LessThan:       true,
	LessOrEqual:    true,
	Equal:          true,
	NotEqual:       true,
}

// ValidateRules checks a rule table before it is used
func ValidateRules(rules []Rule) error {
	if len(rules) == 0 {
		return ValidationError{"rules", "at least one rule is required"}
	}

	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		field := fmt.Sprintf("rules[%d]", i)

		if r.ID == "" {
			return ValidationError{field + ".id", "required"}
		}
		if seen[r.ID] {
			return ValidationError{field + ".id", fmt.Sprintf("duplicate id %q", r.ID)}
		}
		seen[r.ID] = true

		if r.Action == "" {
			return ValidationError{field + ".action", "required"}
		}
		if _, ok := priorityWeights[r.Priority]; !ok {
			return ValidationError{field + ".priority", fmt.Sprintf("unknown priority %q", r.Priority)}
		}
		if r.Confidence <= 0 || r.Confidence > 1 {
			return ValidationError{field + ".confidence", "must be in (0, 1]"}
		}
		if len(r.Conditions) == 0 {
			return ValidationError{field + ".when", "at least one condition is required"}
		}

		for j, c := range r.Conditions {
			cf := fmt.Sprintf("%s.when[%d]", field, j)
			if !validMetrics[c.Metric] {
				return ValidationError{cf + ".metric", fmt.Sprintf("unknown metric %q", c.Metric)}
			}
			if !validComparators[c.Comparator] {
				return ValidationError{cf + ".op", fmt.Sprintf("unknown comparator %q", c.Comparator)}
			}
			if c.Metric == MetricInvestmentLevel && c.Comparator != Equal && c.Comparator != NotEqual {
				return ValidationError{cf + ".op", "investment_level only supports eq and ne"}
			}
		}

		if r.Message == "" {
			return ValidationError{field + ".message", "required"}
		}
		tmpl, err := template.New(r.ID).Parse(r.Message)
		if err != nil {
			return ValidationError{field + ".message", err.Error()}
		}
		// unknown fields only fail at execution time
		if err := tmpl.Execute(io.Discard, contracts.MetricsContext{}); err != nil {
			return ValidationError{field + ".message", err.Error()}
		}
	}
	return nil
}

// ResolveRules loads the table at path, or returns DefaultRules when path is empty
func ResolveRules(path string) ([]Rule, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	return LoadRules(path)
}
