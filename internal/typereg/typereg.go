// Package typereg is the static registry of component types: which scalar
// fields each type requires and which multi-valued attribute groups it may
// carry. Validation, catalog writes, and detail fetches all consult it
// instead of branching per type.
package typereg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nkvtd/pc-forge/internal/model/entity"
)

// Descriptor describes one component type.
type Descriptor struct {
	// Required scalar attribute fields, in declaration order.
	Required []string
	// Keys of multi-valued attribute groups, empty for most types.
	Groups []string
}

var registry = map[string]Descriptor{
	entity.ComponentTypeCPU: {
		Required: []string{"socket", "cores", "threads", "baseClock", "tdp"},
	},
	entity.ComponentTypeGPU: {
		Required: []string{"chipset", "memory", "memoryType", "coreClock", "tdp"},
	},
	entity.ComponentTypeMemory: {
		Required: []string{"memoryType", "capacity", "speed", "modules", "casLatency"},
	},
	entity.ComponentTypeStorage: {
		Required: []string{"storageType", "capacity", "formFactor", "interface"},
	},
	entity.ComponentTypePowerSupply: {
		Required: []string{"wattage", "efficiencyRating", "formFactor", "modular"},
	},
	entity.ComponentTypeMotherboard: {
		Required: []string{"socket", "chipset", "formFactor", "memorySlots", "maxMemory"},
	},
	entity.ComponentTypeCase: {
		Required: []string{"caseType", "formFactor", "color"},
		Groups:   []string{"storageFormFactors", "psFormFactors", "moboFormFactors"},
	},
	entity.ComponentTypeCooler: {
		Required: []string{"coolerType", "fanRPM", "noiseLevel"},
		Groups:   []string{"cpuSockets"},
	},
	entity.ComponentTypeMemoryCard: {
		Required: []string{"cardType", "capacity", "readSpeed"},
	},
	entity.ComponentTypeOpticalDrive: {
		Required: []string{"driveType", "interface", "writeSpeed"},
	},
	entity.ComponentTypeSoundCard: {
		Required: []string{"channels", "sampleRate", "snr"},
	},
	entity.ComponentTypeCables: {
		Required: []string{"cableType", "length"},
	},
	entity.ComponentTypeNetworkAdapter: {
		Required: []string{"adapterType", "speed", "interface"},
	},
	entity.ComponentTypeNetworkCard: {
		Required: []string{"speed", "interface", "ports"},
	},
}

// ErrUnknownType reports a type tag outside the closed enumeration. It is a
// distinct failure from missing fields so callers can tell the two apart.
type ErrUnknownType struct {
	Type string
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown component type %q", e.Type)
}

// ErrInvalidAttrs reports required fields that are absent or empty, and group
// keys supplied as scalars where a sequence is expected.
type ErrInvalidAttrs struct {
	Type          string
	MissingFields []string
	BadGroups     []string
}

func (e *ErrInvalidAttrs) Error() string {
	var parts []string
	if len(e.MissingFields) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.MissingFields, ", "))
	}
	if len(e.BadGroups) > 0 {
		parts = append(parts, "groups must be lists: "+strings.Join(e.BadGroups, ", "))
	}
	return fmt.Sprintf("invalid attributes for type %q: %s", e.Type, strings.Join(parts, "; "))
}

// IsKnownType reports membership in the closed enumeration.
func IsKnownType(componentType string) bool {
	_, ok := registry[componentType]
	return ok
}

// Types returns the enumeration, sorted.
func Types() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// RequiredFields returns the required scalar fields of a type in declaration
// order.
func RequiredFields(componentType string) ([]string, error) {
	desc, ok := registry[componentType]
	if !ok {
		return nil, &ErrUnknownType{Type: componentType}
	}
	return desc.Required, nil
}

// Groups returns the multi-valued group keys of a type, nil for unknown or
// group-less types.
func Groups(componentType string) []string {
	return registry[componentType].Groups
}

// Validate checks attrs against the type's descriptor. Every required field
// must be present and non-empty; any supplied known group key must hold a
// sequence, never a scalar. Scalar value types and ranges are deliberately
// not checked.
func Validate(componentType string, attrs map[string]interface{}) error {
	desc, ok := registry[componentType]
	if !ok {
		return &ErrUnknownType{Type: componentType}
	}

	verr := &ErrInvalidAttrs{Type: componentType}
	for _, field := range desc.Required {
		v, present := attrs[field]
		if !present || isEmpty(v) {
			verr.MissingFields = append(verr.MissingFields, field)
		}
	}
	for _, group := range desc.Groups {
		v, present := attrs[group]
		if !present {
			continue
		}
		if !isSequence(v) {
			verr.BadGroups = append(verr.BadGroups, group)
		}
	}

	if len(verr.MissingFields) > 0 || len(verr.BadGroups) > 0 {
		return verr
	}
	return nil
}

func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func isSequence(v interface{}) bool {
	switch v.(type) {
	case []interface{}, []string:
		return true
	}
	return false
}
