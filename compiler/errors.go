package compiler

import "fmt"

// ConfigError reports a descriptor that cannot be compiled, for example a
// string constraint recorded on a numeric field. It surfaces only when
// compilation reaches the offending field.
type ConfigError struct {
	Type   string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("compiler: %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("compiler: %s.%s: %s", e.Type, e.Field, e.Reason)
}
